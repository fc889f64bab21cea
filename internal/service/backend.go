package service

import (
	"context"
	"errors"
	"time"

	"tallerpos/internal/backend"
	"tallerpos/internal/credential"
	"tallerpos/internal/model"

	"github.com/shopspring/decimal"
)

// ── Backend ports ─────────────────────────────────────────────────────────────
// Each service depends only on the slice of the backend it calls;
// *backend.Client satisfies all of them.

type CajaAPI interface {
	CajaActual(ctx context.Context, cred credential.Credential) (*model.SesionCaja, error)
	AbrirCaja(ctx context.Context, cred credential.Credential, montoInicial decimal.Decimal) (*model.SesionCaja, error)
	CerrarCaja(ctx context.Context, cred credential.Credential, cajaID int64, montoFinal decimal.Decimal) (*model.SesionCaja, error)
	HistorialCajas(ctx context.Context, cred credential.Credential, desde, hasta time.Time) ([]model.SesionCaja, error)
}

type CatalogoAPI interface {
	BuscarItem(ctx context.Context, cred credential.Credential, termino string, tipo model.ItemKind) (model.ItemCatalogo, error)
}

type VentasAPI interface {
	CrearVenta(ctx context.Context, cred credential.Credential, idemKey string, nv model.NuevaVenta) (model.Venta, error)
	ObtenerVenta(ctx context.Context, cred credential.Credential, id int64) (model.Venta, error)
	VentasPorCaja(ctx context.Context, cred credential.Credential, cajaID int64) ([]model.Venta, error)
	Comprobante(ctx context.Context, cred credential.Credential, ref string) (*backend.Document, error)
}

type ReembolsosAPI interface {
	CrearReembolso(ctx context.Context, cred credential.Credential, nr model.NuevoReembolso) (model.Reembolso, error)
}

type ClientesAPI interface {
	ClientePorNIT(ctx context.Context, cred credential.Credential, nit string) (model.Cliente, error)
	CrearCliente(ctx context.Context, cred credential.Credential, cl model.Cliente) (model.Cliente, error)
	ListarClientes(ctx context.Context, cred credential.Credential) ([]model.Cliente, error)
	ObtenerCliente(ctx context.Context, cred credential.Credential, id int64) (model.Cliente, error)
	ActualizarCliente(ctx context.Context, cred credential.Credential, id int64, cl model.Cliente) (model.Cliente, error)
	EliminarCliente(ctx context.Context, cred credential.Credential, id int64) error
}

// Backend is everything the terminal service consumes.
type Backend interface {
	CajaAPI
	CatalogoAPI
	VentasAPI
	ReembolsosAPI
	ClientesAPI
}

var _ Backend = (*backend.Client)(nil)

// ── Errors ────────────────────────────────────────────────────────────────────
// Gating errors are detected before any network call and mutate nothing.

var (
	ErrSinCajaAbierta       = errors.New("no hay una caja abierta")
	ErrCajaYaAbierta        = errors.New("ya existe una caja abierta")
	ErrMontoInvalido        = errors.New("el monto debe ser mayor a cero")
	ErrRangoInvalido        = errors.New("la fecha inicial es posterior a la final")
	ErrTerminoVacio         = errors.New("ingrese un codigo o nombre para buscar")
	ErrProductoNoEncontrado = errors.New("producto no encontrado")
	ErrClienteNoEncontrado  = errors.New("cliente no encontrado")
	ErrCarritoVacio         = errors.New("el carrito esta vacio")
	ErrPagoInsuficiente     = errors.New("el monto recibido es insuficiente")
	ErrVentaNoEncontrada    = errors.New("venta no encontrada")
	ErrVentaFueraDeCaja     = errors.New("la venta no pertenece a la caja abierta")
	ErrSinSeleccion         = errors.New("seleccione una venta para reembolsar")
	ErrSinComprobante       = errors.New("la venta no tiene comprobante")
)
