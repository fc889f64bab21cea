package handler

import (
	"fmt"
	"net/http"

	"tallerpos/internal/dto"
	"tallerpos/internal/middleware"
	"tallerpos/internal/service"

	"github.com/gin-gonic/gin"
)

type VentasHandler struct{ svc service.VentaService }

func NewVentasHandler(svc service.VentaService) *VentasHandler { return &VentasHandler{svc: svc} }

// Validar godoc
// @Summary      Validar el cobro
// @Description  Verifica caja abierta, carrito con items y monto recibido suficiente, y calcula el cambio. No registra nada.
// @Tags         ventas
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        X-Terminal-ID header string true "Terminal"
// @Param        body body dto.CobrarRequest true "Monto recibido"
// @Success      200  {object} dto.ValidacionVentaResponse
// @Failure      409  {object} apierror.APIError "caja_cerrada | carrito_vacio"
// @Failure      422  {object} apierror.APIError "pago_insuficiente"
// @Router       /v1/ventas/validar [post]
func (h *VentasHandler) Validar(c *gin.Context) {
	var req dto.CobrarRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Validar(c.Request.Context(), middleware.GetCredential(c), middleware.GetTerminalID(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Registrar godoc
// @Summary      Registrar la venta
// @Description  Envia el carrito al servidor. Si falla, el carrito se conserva y el reintento reutiliza la misma Idempotency-Key.
// @Tags         ventas
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        X-Terminal-ID header string true "Terminal"
// @Param        body body dto.CobrarRequest true "Monto recibido"
// @Success      201  {object} dto.VentaResponse
// @Failure      409  {object} apierror.APIError "caja_cerrada | carrito_vacio"
// @Failure      422  {object} apierror.APIError "pago_insuficiente"
// @Failure      502  {object} apierror.APIError
// @Router       /v1/ventas [post]
func (h *VentasHandler) Registrar(c *gin.Context) {
	var req dto.CobrarRequest
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
// @Summary      Ventas recientes de la terminal
// @Description  Registro local de envios (exitosos y fallidos) con el total local y el devuelto por el servidor.
// @Tags         ventas
// @Produce      json
// @Security     BearerAuth
// @Param        X-Terminal-ID header string true "Terminal"
// @Param        limit query int false "Maximo de registros (default 20)"
// @Success      200  {array} dto.VentaRegistroResponse
// @Router       /v1/ventas/recientes [get]
func (h *VentasHandler) Recientes(c *gin.Context) {
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

// Comprobante godoc
// @Summary      Descargar el comprobante de una venta
// @Tags         ventas
// @Produce      application/pdf
// @Security     BearerAuth
// @Param        id path int true "ID de la venta"
// @Success      200
// @Failure      404  {object} apierror.APIError
// @Router       /v1/ventas/{id}/comprobante [get]
func (h *VentasHandler) Comprobante(c *gin.Context) {
	id, ok := paramInt64(c, "id")
	if !ok {
		return
	}
	doc, err := h.svc.Comprobante(c.Request.Context(), middleware.GetCredential(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	defer doc.Body.Close()

	contentType := doc.ContentType
	if contentType == "" {
		contentType = "application/pdf"
	}
	c.DataFromReader(http.StatusOK, doc.ContentLength, contentType, doc.Body, map[string]string{
		"Content-Disposition": fmt.Sprintf(`inline; filename="venta-%d.pdf"`, id),
	})
}
