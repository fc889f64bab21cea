package handler

import (
	"net/http"

	"tallerpos/internal/dto"
	"tallerpos/internal/middleware"
	"tallerpos/internal/service"

	"github.com/gin-gonic/gin"
)

type CarritoHandler struct{ svc service.CarritoService }

func NewCarritoHandler(svc service.CarritoService) *CarritoHandler {
	return &CarritoHandler{svc: svc}
}

// Obtener godoc
// @Summary      Carrito de la terminal
// @Tags         carrito
// @Produce      json
// @Security     BearerAuth
// @Param        X-Terminal-ID header string true "Terminal"
// @Success      200  {object} dto.CarritoResponse
// @Router       /v1/carrito [get]
func (h *CarritoHandler) Obtener(c *gin.Context) {
	resp, err := h.svc.Obtener(c.Request.Context(), middleware.GetTerminalID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Escanear godoc
// @Summary      Agregar un item por codigo o nombre
// @Description  Busca el termino en el catalogo y agrega una unidad. Un item ya presente suma uno si el stock lo permite.
// @Tags         carrito
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        X-Terminal-ID header string true "Terminal"
// @Param        body body dto.EscanearRequest true "Codigo o nombre"
// @Success      200  {object} dto.CarritoMutacionResponse
// @Failure      404  {object} apierror.APIError "producto_no_encontrado"
// @Failure      409  {object} apierror.APIError "stock_agotado | stock_insuficiente"
// @Router       /v1/carrito/items [post]
func (h *CarritoHandler) Escanear(c *gin.Context) {
	var req dto.EscanearRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Escanear(c.Request.Context(), middleware.GetCredential(c), middleware.GetTerminalID(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// CambiarCantidad godoc
// @Summary      Cambiar la cantidad de una linea
// @Tags         carrito
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        X-Terminal-ID header string true "Terminal"
// @Param        tipo path string true "accesorio | bicicleta | producto | servicio"
// @Param        id   path int    true "ID del item"
// @Param        body body dto.CambiarCantidadRequest true "Nueva cantidad"
// @Success      200  {object} dto.CarritoMutacionResponse
// @Failure      409  {object} apierror.APIError "stock_insuficiente"
// @Failure      422  {object} apierror.APIError "cantidad_invalida"
// @Router       /v1/carrito/items/{tipo}/{id} [put]
func (h *CarritoHandler) CambiarCantidad(c *gin.Context) {
	key, ok := paramItemKey(c)
	if !ok {
		return
	}
	var req dto.CambiarCantidadRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.CambiarCantidad(c.Request.Context(), middleware.GetTerminalID(c), key, req.Cantidad)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Quitar godoc
// @Summary      Quitar una linea
// @Tags         carrito
// @Produce      json
// @Security     BearerAuth
// @Param        X-Terminal-ID header string true "Terminal"
// @Param        tipo path string true "Tipo de item"
// @Param        id   path int    true "ID del item"
// @Success      200  {object} dto.CarritoResponse
// @Router       /v1/carrito/items/{tipo}/{id} [delete]
func (h *CarritoHandler) Quitar(c *gin.Context) {
	key, ok := paramItemKey(c)
	if !ok {
		return
	}
	resp, err := h.svc.Quitar(c.Request.Context(), middleware.GetTerminalID(c), key)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// AsignarCliente godoc
// @Summary      Asignar cliente por NIT
// @Tags         carrito
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        X-Terminal-ID header string true "Terminal"
// @Param        body body dto.AsignarClienteRequest true "NIT"
// @Success      200  {object} dto.CarritoResponse
// @Failure      404  {object} apierror.APIError "cliente_no_encontrado"
// @Router       /v1/carrito/cliente [put]
func (h *CarritoHandler) AsignarCliente(c *gin.Context) {
	var req dto.AsignarClienteRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.AsignarCliente(c.Request.Context(), middleware.GetCredential(c), middleware.GetTerminalID(c), req.NIT)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// QuitarCliente godoc
// @Summary      Quitar el cliente del carrito
// @Tags         carrito
// @Produce      json
// @Security     BearerAuth
// @Param        X-Terminal-ID header string true "Terminal"
// @Success      200  {object} dto.CarritoResponse
// @Router       /v1/carrito/cliente [delete]
func (h *CarritoHandler) QuitarCliente(c *gin.Context) {
	resp, err := h.svc.QuitarCliente(c.Request.Context(), middleware.GetTerminalID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Cancelar godoc
// @Summary      Cancelar la venta en curso
// @Tags         carrito
// @Produce      json
// @Security     BearerAuth
// @Param        X-Terminal-ID header string true "Terminal"
// @Success      200  {object} dto.CarritoResponse
// @Router       /v1/carrito [delete]
func (h *CarritoHandler) Cancelar(c *gin.Context) {
	resp, err := h.svc.Cancelar(c.Request.Context(), middleware.GetTerminalID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
