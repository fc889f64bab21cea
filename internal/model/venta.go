package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Venta is a sale as recorded by the backend (server of record).
type Venta struct {
	ID                int64
	Fecha             time.Time
	NumeroComprobante string
	CajaID            int64
	ClienteID         *int64
	ClienteNombre     string
	Total             decimal.Decimal
	MontoRecibido     *decimal.Decimal
	Cambio            *decimal.Decimal
	// Activa is false for voided sales.
	Activa bool
	// ComprobanteRef is the backend's reference to the receipt document (pdf_url).
	ComprobanteRef string
	Detalles       []DetalleVenta
}

// DetalleVenta is one recorded sale line.
type DetalleVenta struct {
	ID                  int64
	Tipo                ItemKind
	IDItem              int64
	Nombre              string
	Cantidad            int
	CantidadReembolsada int
	PrecioUnitario      decimal.Decimal
	Subtotal            decimal.Decimal
}

// SoloServicios reports whether the sale has no line that could ever be refunded.
func (v Venta) SoloServicios() bool {
	for _, d := range v.Detalles {
		if d.Tipo.ControlaStock() {
			return false
		}
	}
	return true
}

// NuevaVenta is what the terminal submits to create a sale.
type NuevaVenta struct {
	CajaID        int64
	ClienteID     *int64
	Total         decimal.Decimal
	MontoRecibido decimal.Decimal
	Items         []ItemVenta
}

type ItemVenta struct {
	Tipo           ItemKind
	IDItem         int64
	Cantidad       int
	PrecioUnitario decimal.Decimal
	Subtotal       decimal.Decimal
}
