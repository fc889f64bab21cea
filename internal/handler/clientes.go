package handler

import (
	"net/http"

	"tallerpos/internal/dto"
	"tallerpos/internal/middleware"
	"tallerpos/internal/model"
	"tallerpos/internal/service"

	"github.com/gin-gonic/gin"
)

type ClientesHandler struct {
	svc     service.ClienteService
	carrito service.CarritoService
}

func NewClientesHandler(svc service.ClienteService, carrito service.CarritoService) *ClientesHandler {
	return &ClientesHandler{svc: svc, carrito: carrito}
}

type crearClienteResponse struct {
	Cliente model.Cliente        `json:"cliente"`
	Carrito *dto.CarritoResponse `json:"carrito,omitempty"`
}

// Crear godoc
// @Summary      Crear cliente
// @Description  Alta rapida desde la terminal; con asignar_al_carrito queda vinculado a la venta en curso.
// @Tags         clientes
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        X-Terminal-ID header string true "Terminal"
// @Param        body body dto.CrearClienteRequest true "Datos del cliente"
// @Success      201  {object} crearClienteResponse
// @Failure      422  {object} apierror.APIError
// @Router       /v1/clientes [post]
func (h *ClientesHandler) Crear(c *gin.Context) {
	var req dto.CrearClienteRequest
	if !bindAndValidate(c, &req) {
		return
	}
	cl, err := h.svc.Crear(c.Request.Context(), middleware.GetCredential(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	resp := crearClienteResponse{Cliente: cl}
	if req.AsignarAlCarrito {
		carrito, err := h.carrito.VincularCliente(c.Request.Context(), middleware.GetTerminalID(c), cl)
		if err != nil {
			respondError(c, err)
			return
		}
		resp.Carrito = carrito
	}
	c.JSON(http.StatusCreated, resp)
}

// BuscarPorNIT godoc
// @Summary      Buscar cliente por NIT
// @Tags         clientes
// @Produce      json
// @Security     BearerAuth
// @Param        nit path string true "NIT"
// @Success      200  {object} model.Cliente
// @Failure      404  {object} apierror.APIError "cliente_no_encontrado"
// @Router       /v1/clientes/nit/{nit} [get]
func (h *ClientesHandler) BuscarPorNIT(c *gin.Context) {
	cl, err := h.svc.BuscarPorNIT(c.Request.Context(), middleware.GetCredential(c), c.Param("nit"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cl)
}

// Listar godoc
// @Summary      Listar clientes
// @Tags         clientes
// @Produce      json
// @Security     BearerAuth
// @Param        buscar query string false "Fragmento del nombre o NIT"
// @Success      200  {array} model.Cliente
// @Router       /v1/clientes [get]
func (h *ClientesHandler) Listar(c *gin.Context) {
	var f dto.ClientesFilter
	if !bindQuery(c, &f) {
		return
	}
	resp, err := h.svc.Listar(c.Request.Context(), middleware.GetCredential(c), f.Buscar)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Obtener godoc
// @Summary      Obtener cliente
// @Tags         clientes
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "ID del cliente"
// @Success      200  {object} model.Cliente
// @Failure      404  {object} apierror.APIError "cliente_no_encontrado"
// @Router       /v1/clientes/{id} [get]
func (h *ClientesHandler) Obtener(c *gin.Context) {
	id, ok := paramInt64(c, "id")
	if !ok {
		return
	}
	cl, err := h.svc.Obtener(c.Request.Context(), middleware.GetCredential(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cl)
}

// Actualizar godoc
// @Summary      Actualizar cliente
// @Tags         clientes
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path int true "ID del cliente"
// @Param        body body dto.ActualizarClienteRequest true "Datos del cliente"
// @Success      200  {object} model.Cliente
// @Failure      404  {object} apierror.APIError "cliente_no_encontrado"
// @Router       /v1/clientes/{id} [put]
func (h *ClientesHandler) Actualizar(c *gin.Context) {
	id, ok := paramInt64(c, "id")
	if !ok {
		return
	}
	var req dto.ActualizarClienteRequest
	if !bindAndValidate(c, &req) {
		return
	}
	cl, err := h.svc.Actualizar(c.Request.Context(), middleware.GetCredential(c), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cl)
}

// Eliminar godoc
// @Summary      Eliminar cliente
// @Tags         clientes
// @Security     BearerAuth
// @Param        id path int true "ID del cliente"
// @Success      204
// @Failure      404  {object} apierror.APIError "cliente_no_encontrado"
// @Router       /v1/clientes/{id} [delete]
func (h *ClientesHandler) Eliminar(c *gin.Context) {
	id, ok := paramInt64(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Eliminar(c.Request.Context(), middleware.GetCredential(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
