package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Reembolso is a refund recorded by the backend against a completed sale.
type Reembolso struct {
	ID      int64
	VentaID int64
	Monto   decimal.Decimal
	Motivo  string
	Fecha   time.Time
	Items   []ItemReembolso
}

// NuevoReembolso is what the terminal submits.
type NuevoReembolso struct {
	VentaID int64
	Monto   decimal.Decimal
	Motivo  string
	Items   []ItemReembolso
}

type ItemReembolso struct {
	DetalleID int64
	Cantidad  int
	Subtotal  decimal.Decimal
}
