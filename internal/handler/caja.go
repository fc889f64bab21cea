package handler

import (
	"errors"
	"net/http"

	"tallerpos/internal/apierror"
	"tallerpos/internal/dto"
	"tallerpos/internal/middleware"
	"tallerpos/internal/service"

	"github.com/gin-gonic/gin"
)

type CajaHandler struct{ svc service.CajaService }

func NewCajaHandler(svc service.CajaService) *CajaHandler { return &CajaHandler{svc: svc} }

// Actual godoc
// @Summary Obtiene la sesion de caja abierta
// @Tags caja
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.CajaResponse
// @Failure 404 {object} apierror.APIError "No hay caja abierta"
// @Router /v1/caja/actual [get]
func (h *CajaHandler) Actual(c *gin.Context) {
	resp, err := h.svc.Actual(c.Request.Context(), middleware.GetCredential(c))
	if errors.Is(err, service.ErrSinCajaAbierta) {
		c.JSON(http.StatusNotFound, apierror.WithCode("caja_cerrada", err.Error()))
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Abrir godoc
// @Summary Abre una nueva sesion de caja
// @Tags caja
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.AbrirCajaRequest true "Monto inicial"
// @Success 201 {object} dto.CajaResponse
// @Failure 409 {object} apierror.APIError
// @Failure 422 {object} apierror.APIError
// @Router /v1/caja/abrir [post]
func (h *CajaHandler) Abrir(c *gin.Context) {
	var req dto.AbrirCajaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Abrir(c.Request.Context(), middleware.GetCredential(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Cerrar godoc
// @Summary Cierra la sesion de caja abierta
// @Tags caja
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.CerrarCajaRequest true "Monto final contado"
// @Success 200 {object} dto.CajaResponse
// @Failure 409 {object} apierror.APIError
// @Failure 422 {object} apierror.APIError
// @Router /v1/caja/cerrar [post]
func (h *CajaHandler) Cerrar(c *gin.Context) {
	var req dto.CerrarCajaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Cerrar(c.Request.Context(), middleware.GetCredential(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Historial godoc
// @Summary Historial de sesiones de caja
// @Tags caja
// @Produce json
// @Security BearerAuth
// @Param fecha_inicio query string false "YYYY-MM-DD (default: hace 30 dias)"
// @Param fecha_fin    query string false "YYYY-MM-DD (default: hoy)"
// @Success 200 {object} dto.HistorialResponse
// @Router /v1/caja/historial [get]
func (h *CajaHandler) Historial(c *gin.Context) {
	var f dto.HistorialFilter
	if !bindQuery(c, &f) {
		return
	}
	resp, err := h.svc.Historial(c.Request.Context(), middleware.GetCredential(c), f)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
