package service

import (
	"context"
	"fmt"
	"errors"
	"testing"
	"time"

	"tallerpos/internal/backend"
	"tallerpos/internal/dto"
	"tallerpos/internal/model"
	"tallerpos/internal/pos"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func carritoDeCien(t *testing.T) *pos.Carrito {
	t.Helper()
	c := pos.NuevoCarrito()
	_, err := c.Agregar(model.ItemCatalogo{Tipo: model.KindProducto, ID: 1, Nombre: "Cadena", PrecioVenta: dec("40"), Stock: 10})
	require.NoError(t, err)
	_, err = c.Agregar(model.ItemCatalogo{Tipo: model.KindServicio, ID: 1, Nombre: "Ajuste", PrecioVenta: dec("60")})
	require.NoError(t, err)
	return c
}

func TestValidarVenta(t *testing.T) {
	abierta := &model.SesionCaja{ID: 1}
	ayer := time.Now().Add(-24 * time.Hour)
	cerrada := &model.SesionCaja{ID: 1, FechaCierre: &ayer}

	tests := []struct {
		name     string
		carrito  *pos.Carrito
		sesion   *model.SesionCaja
		recibido *decimal.Decimal
		want     error
	}{
		{"exact payment", carritoDeCien(t), abierta, decPtr("100.00"), nil},
		{"overpayment", carritoDeCien(t), abierta, decPtr("150"), nil},
		{"one cent short", carritoDeCien(t), abierta, decPtr("99.99"), ErrPagoInsuficiente},
		{"no amount", carritoDeCien(t), abierta, nil, ErrPagoInsuficiente},
		{"empty cart", pos.NuevoCarrito(), abierta, decPtr("100"), ErrCarritoVacio},
		{"no session wins over empty cart", pos.NuevoCarrito(), cerrada, nil, ErrSinCajaAbierta},
		{"closed session", carritoDeCien(t), cerrada, decPtr("100"), ErrSinCajaAbierta},
		{"no session", carritoDeCien(t), nil, decPtr("100"), ErrSinCajaAbierta},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidarVenta(tt.carrito, tt.sesion, tt.recibido)
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestCambio(t *testing.T) {
	cambio, ok := Cambio(dec("100"), decPtr("100.00"))
	assert.True(t, ok)
	assert.True(t, cambio.IsZero())

	cambio, ok = Cambio(dec("100"), decPtr("120.25"))
	assert.True(t, ok)
	assert.Equal(t, "20.25", cambio.StringFixed(2))

	_, ok = Cambio(dec("100"), decPtr("99.99"))
	assert.False(t, ok)
	_, ok = Cambio(dec("100"), nil)
	assert.False(t, ok)
}

// cargar puts a 100.00 cart on the terminal.
func (h *harness) cargar(t *testing.T) {
	t.Helper()
	require.NoError(t, h.store.SaveCarrito(context.Background(), terminal, carritoDeCien(t)))
}

func TestVenta_ValidarPreviewsChange(t *testing.T) {
	h := newHarness(t)
	h.api.abrir(1)
	h.cargar(t)

	resp, err := h.ventas.Validar(context.Background(), testCred(), terminal, dto.CobrarRequest{MontoRecibido: decPtr("100")})
	require.NoError(t, err)
	require.NotNil(t, resp.Cambio)
	assert.True(t, resp.Cambio.IsZero())
	assert.Equal(t, "Q0.00", resp.CambioText)
	assert.Zero(t, h.api.count("CrearVenta"))
}

func TestVenta_GatingMakesNoSubmitAndKeepsCart(t *testing.T) {
	ctx := context.Background()

	t.Run("no session", func(t *testing.T) {
		h := newHarness(t)
		h.cargar(t)
		_, err := h.ventas.Registrar(ctx, testCred(), terminal, dto.CobrarRequest{MontoRecibido: decPtr("100")})
		assert.ErrorIs(t, err, ErrSinCajaAbierta)
		assert.Zero(t, h.api.count("CrearVenta"))
	})
	t.Run("empty cart", func(t *testing.T) {
		h := newHarness(t)
		h.api.abrir(1)
		_, err := h.ventas.Registrar(ctx, testCred(), terminal, dto.CobrarRequest{MontoRecibido: decPtr("100")})
		assert.ErrorIs(t, err, ErrCarritoVacio)
		assert.Zero(t, h.api.count("CrearVenta"))
	})
	t.Run("insufficient", func(t *testing.T) {
		h := newHarness(t)
		h.api.abrir(1)
		h.cargar(t)
		_, err := h.ventas.Registrar(ctx, testCred(), terminal, dto.CobrarRequest{MontoRecibido: decPtr("99.99")})
		assert.ErrorIs(t, err, ErrPagoInsuficiente)
		assert.Zero(t, h.api.count("CrearVenta"))

		c, err := h.store.LoadCarrito(ctx, terminal)
		require.NoError(t, err)
		assert.Equal(t, 2, c.Len())
		assert.Empty(t, c.ClavePendiente())
	})
}

func TestVenta_RegistrarClearsCart(t *testing.T) {
	h := newHarness(t)
	h.api.abrir(9)
	h.cargar(t)
	ctx := context.Background()
	_, err := h.carrito.VincularCliente(ctx, terminal, model.Cliente{ID: 4, NIT: "CF"})
	require.NoError(t, err)

	resp, err := h.ventas.Registrar(ctx, testCred(), terminal, dto.CobrarRequest{MontoRecibido: decPtr("150")})
	require.NoError(t, err)

	assert.Equal(t, int64(101), resp.IDVenta)
	assert.Equal(t, "50.00", resp.Cambio.StringFixed(2))
	assert.Equal(t, "/v1/ventas/101/comprobante", resp.ComprobanteURL)
	assert.False(t, resp.Discrepancia)

	require.Len(t, h.api.ventasCreadas, 1)
	nv := h.api.ventasCreadas[0]
	assert.Equal(t, int64(9), nv.CajaID)
	require.NotNil(t, nv.ClienteID)
	assert.Equal(t, int64(4), *nv.ClienteID)
	assert.True(t, dec("100").Equal(nv.Total))
	assert.Len(t, nv.Items, 2)
	require.Len(t, h.api.idemKeys, 1)
	assert.NotEmpty(t, h.api.idemKeys[0])

	c, err := h.store.LoadCarrito(ctx, terminal)
	require.NoError(t, err)
	assert.True(t, c.Vacio())
	assert.Nil(t, c.Cliente())
	assert.Empty(t, c.ClavePendiente())

	require.Len(t, h.journal.ventas, 1)
	assert.Equal(t, model.RegistroEnviado, h.journal.ventas[0].Estado)
	assert.Equal(t, h.api.idemKeys[0], h.journal.ventas[0].IdempotencyKey)
}

func TestVenta_NetworkFailureKeepsCartAndReusesKey(t *testing.T) {
	h := newHarness(t)
	h.api.abrir(1)
	h.cargar(t)
	ctx := context.Background()
	h.api.crearVentaErr = backend.ErrUnreachable

	_, err := h.ventas.Registrar(ctx, testCred(), terminal, dto.CobrarRequest{MontoRecibido: decPtr("100")})
	assert.ErrorIs(t, err, backend.ErrUnreachable)

	c, err := h.store.LoadCarrito(ctx, terminal)
	require.NoError(t, err)
	assert.Equal(t, 2, c.Len())
	assert.NotEmpty(t, c.ClavePendiente())

	h.api.crearVentaErr = nil
	_, err = h.ventas.Registrar(ctx, testCred(), terminal, dto.CobrarRequest{MontoRecibido: decPtr("100")})
	require.NoError(t, err)

	require.Len(t, h.api.idemKeys, 2)
	assert.Equal(t, h.api.idemKeys[0], h.api.idemKeys[1])

	require.Len(t, h.journal.ventas, 2)
	assert.Equal(t, model.RegistroFallido, h.journal.ventas[0].Estado)
	require.NotNil(t, h.journal.ventas[0].Error)
	assert.Equal(t, model.RegistroEnviado, h.journal.ventas[1].Estado)
}

func TestVenta_UnreadableResponseIsJournaledAsUncertain(t *testing.T) {
	h := newHarness(t)
	h.api.abrir(1)
	h.cargar(t)
	ctx := context.Background()
	h.api.crearVentaErr = fmt.Errorf("%w: respuesta sin venta", backend.ErrInvalidResponse)

	_, err := h.ventas.Registrar(ctx, testCred(), terminal, dto.CobrarRequest{MontoRecibido: decPtr("100")})
	assert.ErrorIs(t, err, backend.ErrInvalidResponse)

	c, err := h.store.LoadCarrito(ctx, terminal)
	require.NoError(t, err)
	assert.Equal(t, 2, c.Len())
	assert.Equal(t, h.api.idemKeys[0], c.ClavePendiente())

	require.Len(t, h.journal.ventas, 1)
	assert.Equal(t, model.RegistroIncierto, h.journal.ventas[0].Estado)
}

func TestVenta_RejectedSubmitKeepsBackendMessage(t *testing.T) {
	h := newHarness(t)
	h.api.abrir(1)
	h.cargar(t)
	h.api.crearVentaErr = &backend.HTTPError{Status: 422, Msg: "stock insuficiente"}

	_, err := h.ventas.Registrar(context.Background(), testCred(), terminal, dto.CobrarRequest{MontoRecibido: decPtr("100")})
	var he *backend.HTTPError
	require.True(t, errors.As(err, &he))
	require.Len(t, h.journal.ventas, 1)
	assert.Equal(t, "stock insuficiente", *h.journal.ventas[0].Error)
}

func TestVenta_TotalMismatchIsFlagged(t *testing.T) {
	h := newHarness(t)
	h.api.abrir(1)
	h.cargar(t)
	h.api.totalEcho = decPtr("95.00")

	resp, err := h.ventas.Registrar(context.Background(), testCred(), terminal, dto.CobrarRequest{MontoRecibido: decPtr("100")})
	require.NoError(t, err)
	assert.True(t, resp.Discrepancia)
	assert.True(t, h.journal.ventas[0].Discrepancia)
	assert.True(t, dec("95").Equal(*h.journal.ventas[0].TotalServidor))
	assert.True(t, dec("100").Equal(h.journal.ventas[0].TotalLocal))
}

func TestVenta_RecientesAndComprobante(t *testing.T) {
	h := newHarness(t)
	h.api.abrir(1)
	h.cargar(t)
	ctx := context.Background()

	resp, err := h.ventas.Registrar(ctx, testCred(), terminal, dto.CobrarRequest{MontoRecibido: decPtr("100")})
	require.NoError(t, err)

	recientes, err := h.ventas.Recientes(ctx, terminal, 20)
	require.NoError(t, err)
	require.Len(t, recientes, 1)
	assert.Equal(t, "Q100.00", recientes[0].TotalLocalText)

	h.api.ventas[resp.IDVenta] = model.Venta{ID: resp.IDVenta, ComprobanteRef: "/v.pdf"}
	doc, err := h.ventas.Comprobante(ctx, testCred(), resp.IDVenta)
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", doc.ContentType)

	h.api.ventas[55] = model.Venta{ID: 55}
	_, err = h.ventas.Comprobante(ctx, testCred(), 55)
	assert.ErrorIs(t, err, ErrSinComprobante)

	_, err = h.ventas.Comprobante(ctx, testCred(), 404)
	assert.ErrorIs(t, err, ErrVentaNoEncontrada)
}
