package handler

import (
	"errors"
	"net/http"
	"reflect"
	"strconv"

	"tallerpos/internal/apierror"
	"tallerpos/internal/backend"
	"tallerpos/internal/credential"
	"tallerpos/internal/infra"
	"tallerpos/internal/model"
	"tallerpos/internal/pos"
	"tallerpos/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var validate = validator.New()

func init() {
	// Register decimal.Decimal as a numeric type so that validator tags like
	// min=0, gt=0, required work without panicking ("Bad field type decimal.Decimal").
	validate.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if v, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := v.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
}

// bindAndValidate binds JSON body and runs go-playground/validator tags.
// Returns false and writes the error response if validation fails;
// the caller should return immediately without writing another response.
func bindAndValidate(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("JSON invalido: "+err.Error()))
		return false
	}
	return validateStruct(c, req)
}

// bindQuery is bindAndValidate for query-string filters.
func bindQuery(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindQuery(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Parametros invalidos: "+err.Error()))
		return false
	}
	return validateStruct(c, req)
}

func validateStruct(c *gin.Context, req interface{}) bool {
	if err := validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
			return false
		}
		fields := make(map[string]string)
		for _, fe := range verrs {
			fields[fe.Field()] = fe.Tag()
		}
		c.JSON(http.StatusUnprocessableEntity, apierror.NewValidation(fields))
		return false
	}
	return true
}

func paramInt64(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, apierror.New(name+" invalido"))
		return 0, false
	}
	return id, true
}

// paramItemKey reads the /:tipo/:id pair that identifies a cart line.
func paramItemKey(c *gin.Context) (model.ItemKey, bool) {
	tipo, err := model.ParseItemKind(c.Param("tipo"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return model.ItemKey{}, false
	}
	id, ok := paramInt64(c, "id")
	if !ok {
		return model.ItemKey{}, false
	}
	return model.ItemKey{Tipo: tipo, ID: id}, true
}

// ── Error mapping ─────────────────────────────────────────────────────────────

type errorMapping struct {
	err    error
	status int
	code   string
}

// Order matters: the first match wins.
var errorMappings = []errorMapping{
	{credential.ErrMissing, http.StatusUnauthorized, "no_autenticado"},
	{backend.ErrUnauthorized, http.StatusUnauthorized, "no_autenticado"},
	{backend.ErrForbidden, http.StatusForbidden, "acceso_denegado"},
	{infra.ErrCircuitOpen, http.StatusServiceUnavailable, "backend_no_disponible"},

	{service.ErrSinCajaAbierta, http.StatusConflict, "caja_cerrada"},
	{service.ErrCajaYaAbierta, http.StatusConflict, "caja_abierta"},
	{service.ErrMontoInvalido, http.StatusUnprocessableEntity, "monto_invalido"},
	{service.ErrRangoInvalido, http.StatusUnprocessableEntity, "rango_invalido"},
	{service.ErrTerminoVacio, http.StatusUnprocessableEntity, "termino_vacio"},
	{service.ErrProductoNoEncontrado, http.StatusNotFound, "producto_no_encontrado"},
	{service.ErrClienteNoEncontrado, http.StatusNotFound, "cliente_no_encontrado"},
	{service.ErrCarritoVacio, http.StatusConflict, "carrito_vacio"},
	{service.ErrPagoInsuficiente, http.StatusUnprocessableEntity, "pago_insuficiente"},
	{service.ErrVentaNoEncontrada, http.StatusNotFound, "venta_no_encontrada"},
	{service.ErrVentaFueraDeCaja, http.StatusConflict, "venta_fuera_de_caja"},
	{service.ErrSinSeleccion, http.StatusConflict, "sin_seleccion"},
	{service.ErrSinComprobante, http.StatusNotFound, "sin_comprobante"},

	{pos.ErrStockAgotado, http.StatusConflict, "stock_agotado"},
	{pos.ErrStockInsuficiente, http.StatusConflict, "stock_insuficiente"},
	{pos.ErrCantidadInvalida, http.StatusUnprocessableEntity, "cantidad_invalida"},
	{pos.ErrLineaNoEncontrada, http.StatusNotFound, "linea_no_encontrada"},
	{pos.ErrPrecioInvalido, http.StatusUnprocessableEntity, "precio_invalido"},
	{pos.ErrMotivoRequerido, http.StatusUnprocessableEntity, "motivo_requerido"},
	{pos.ErrNadaPreparado, http.StatusUnprocessableEntity, "nada_preparado"},
	{pos.ErrDetalleNoReembolsable, http.StatusNotFound, "detalle_no_reembolsable"},

	{backend.ErrNotFound, http.StatusNotFound, "no_encontrado"},
	// The write may have been recorded: the UI must not offer a blind retry.
	{backend.ErrInvalidResponse, http.StatusBadGateway, "respuesta_incierta"},
	{backend.ErrUnreachable, http.StatusBadGateway, "backend_no_disponible"},
}

// respondError writes the API error for err. Unknown errors are attached to
// the context and rendered as a 500 by middleware.ErrorHandler.
func respondError(c *gin.Context, err error) {
	for _, m := range errorMappings {
		if errors.Is(err, m.err) {
			c.JSON(m.status, apierror.WithCode(m.code, m.err.Error()))
			return
		}
	}

	var he *backend.HTTPError
	if errors.As(err, &he) {
		msg := he.Msg
		if msg == "" {
			msg = "El servidor rechazo la operacion"
		}
		if he.Status >= http.StatusInternalServerError {
			c.JSON(http.StatusBadGateway, apierror.WithCode("backend_error", msg))
			return
		}
		c.JSON(http.StatusUnprocessableEntity, apierror.WithCode("rechazado_por_servidor", msg))
		return
	}

	_ = c.Error(err)
}
