package handler

import (
	"net/http"

	"tallerpos/internal/dto"
	"tallerpos/internal/middleware"
	"tallerpos/internal/service"

	"github.com/gin-gonic/gin"
)

type ReembolsosHandler struct{ svc service.ReembolsoService }

func NewReembolsosHandler(svc service.ReembolsoService) *ReembolsosHandler {
	return &ReembolsosHandler{svc: svc}
}

// VentasReembolsables godoc
// @Summary      Ventas de la caja abierta con algo por reembolsar
// @Tags         reembolsos
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array} dto.VentaReembolsableResponse
// @Failure      409  {object} apierror.APIError "caja_cerrada"
// @Router       /v1/reembolsos/ventas [get]
func (h *ReembolsosHandler) VentasReembolsables(c *gin.Context) {
	resp, err := h.svc.VentasReembolsables(c.Request.Context(), middleware.GetCredential(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Seleccionar godoc
// @Summary      Seleccionar la venta a reembolsar
// @Description  Reemplaza cualquier seleccion previa de la terminal. Las lineas de servicio y las ya reembolsadas por completo no aparecen.
// @Tags         reembolsos
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        X-Terminal-ID header string true "Terminal"
// @Param        body body dto.SeleccionarVentaRequest true "Venta"
// @Success      200  {object} dto.ReembolsoBorradorResponse
// @Failure      404  {object} apierror.APIError "venta_no_encontrada"
// @Router       /v1/reembolsos/seleccion [post]
func (h *ReembolsosHandler) Seleccionar(c *gin.Context) {
	var req dto.SeleccionarVentaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Seleccionar(c.Request.Context(), middleware.GetCredential(c), middleware.GetTerminalID(c), req.IDVenta)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Obtener godoc
// @Summary      Seleccion actual
// @Tags         reembolsos
// @Produce      json
// @Security     BearerAuth
// @Param        X-Terminal-ID header string true "Terminal"
// @Success      200  {object} dto.ReembolsoBorradorResponse
// @Router       /v1/reembolsos/seleccion [get]
func (h *ReembolsosHandler) Obtener(c *gin.Context) {
	resp, err := h.svc.Obtener(c.Request.Context(), middleware.GetTerminalID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Preparar godoc
// @Summary      Cantidad a reembolsar de una linea
// @Description  La cantidad se ajusta al rango [0, disponible].
// @Tags         reembolsos
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        X-Terminal-ID header string true "Terminal"
// @Param        id_detalle path int true "ID del detalle de venta"
// @Param        body body dto.PrepararCantidadRequest true "Cantidad"
// @Success      200  {object} dto.ReembolsoBorradorResponse
// @Failure      409  {object} apierror.APIError "sin_seleccion"
// @Router       /v1/reembolsos/seleccion/items/{id_detalle} [put]
func (h *ReembolsosHandler) Preparar(c *gin.Context) {
	detalleID, ok := paramInt64(c, "id_detalle")
	if !ok {
		return
	}
	var req dto.PrepararCantidadRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Preparar(c.Request.Context(), middleware.GetTerminalID(c), detalleID, req.Cantidad)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Descartar godoc
// @Summary      Descartar la seleccion
// @Tags         reembolsos
// @Produce      json
// @Security     BearerAuth
// @Param        X-Terminal-ID header string true "Terminal"
// @Success      200  {object} dto.ReembolsoBorradorResponse
// @Router       /v1/reembolsos/seleccion [delete]
func (h *ReembolsosHandler) Descartar(c *gin.Context) {
	resp, err := h.svc.Descartar(c.Request.Context(), middleware.GetTerminalID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Registrar godoc
// @Summary      Registrar el reembolso
// @Tags         reembolsos
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        X-Terminal-ID header string true "Terminal"
// @Param        body body dto.RegistrarReembolsoRequest true "Motivo"
// @Success      201  {object} dto.ReembolsoResponse
// @Failure      422  {object} apierror.APIError "motivo_requerido | nada_preparado"
// @Router       /v1/reembolsos [post]
func (h *ReembolsosHandler) Registrar(c *gin.Context) {
	var req dto.RegistrarReembolsoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Registrar(c.Request.Context(), middleware.GetCredential(c), middleware.GetTerminalID(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Recientes godoc
// @Summary      Reembolsos recientes de la terminal
// @Tags         reembolsos
// @Produce      json
// @Security     BearerAuth
// @Param        X-Terminal-ID header string true "Terminal"
// @Param        limit query int false "Maximo de registros (default 20)"
// @Success      200  {array} dto.ReembolsoRegistroResponse
// @Router       /v1/reembolsos/recientes [get]
func (h *ReembolsosHandler) Recientes(c *gin.Context) {
	var f dto.RecientesFilter
	if !bindQuery(c, &f) {
		return
	}
	resp, err := h.svc.Recientes(c.Request.Context(), middleware.GetTerminalID(c), f.Limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
