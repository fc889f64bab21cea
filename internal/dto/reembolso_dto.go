package dto

import (
	"time"

	"tallerpos/internal/model"
	"tallerpos/internal/money"
	"tallerpos/internal/pos"

	"github.com/shopspring/decimal"
)

// ─── Request DTOs ────────────────────────────────────────────────────────────

type SeleccionarVentaRequest struct {
	IDVenta int64 `json:"id_venta" validate:"required,min=1"`
}

// PrepararCantidadRequest accepts any integer; the quantity is clamped.
type PrepararCantidadRequest struct {
	Cantidad int `json:"cantidad"`
}

// RegistrarReembolsoRequest: the motive is checked by the service so a blank
// one yields the refund-specific message.
type RegistrarReembolsoRequest struct {
	Motivo string `json:"motivo" validate:"max=500"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type VentaReembolsableResponse struct {
	IDVenta           int64           `json:"id_venta"`
	NumeroComprobante string          `json:"numero_comprobante,omitempty"`
	Fecha             time.Time       `json:"fecha"`
	ClienteNombre     string          `json:"cliente_nombre,omitempty"`
	Total             decimal.Decimal `json:"total"`
	TotalText         string          `json:"total_texto"`
}

func NewVentaReembolsableResponse(v model.Venta, symbol string) VentaReembolsableResponse {
	return VentaReembolsableResponse{
		IDVenta:           v.ID,
		NumeroComprobante: v.NumeroComprobante,
		Fecha:             v.Fecha,
		ClienteNombre:     v.ClienteNombre,
		Total:             v.Total,
		TotalText:         money.Format(symbol, v.Total),
	}
}

type LineaReembolsoResponse struct {
	IDDetalle        int64           `json:"id_detalle"`
	TipoItem         model.ItemKind  `json:"tipo_item"`
	IDItem           int64           `json:"id_item"`
	Nombre           string          `json:"nombre"`
	CantidadOriginal int             `json:"cantidad_original"`
	YaReembolsada    int             `json:"ya_reembolsada"`
	Disponible       int             `json:"disponible"`
	PrecioUnitario   decimal.Decimal `json:"precio_unitario"`
	Cantidad         int             `json:"cantidad_reembolso"`
	Subtotal         decimal.Decimal `json:"subtotal_reembolso"`
}

type ReembolsoBorradorResponse struct {
	Estado    pos.EstadoReembolso      `json:"estado"`
	IDVenta   *int64                   `json:"id_venta"`
	Lineas    []LineaReembolsoResponse `json:"lineas"`
	Total     decimal.Decimal          `json:"total"`
	TotalText string                   `json:"total_texto"`
}

func NewReembolsoBorradorResponse(b *pos.BorradorReembolso, symbol string) ReembolsoBorradorResponse {
	resp := ReembolsoBorradorResponse{
		Estado:    b.Estado(),
		Lineas:    []LineaReembolsoResponse{},
		Total:     decimal.Zero,
		TotalText: money.Format(symbol, decimal.Zero),
	}
	if b == nil {
		return resp
	}
	id := b.VentaID
	resp.IDVenta = &id
	resp.Total = b.Total()
	resp.TotalText = money.Format(symbol, resp.Total)
	for _, l := range b.Lineas {
		resp.Lineas = append(resp.Lineas, LineaReembolsoResponse{
			IDDetalle:        l.DetalleID,
			TipoItem:         l.Tipo,
			IDItem:           l.IDItem,
			Nombre:           l.Nombre,
			CantidadOriginal: l.CantidadOriginal,
			YaReembolsada:    l.YaReembolsada,
			Disponible:       l.Restante(),
			PrecioUnitario:   l.PrecioUnitario,
			Cantidad:         l.Cantidad,
			Subtotal:         l.Subtotal(),
		})
	}
	return resp
}

type ReembolsoResponse struct {
	IDReembolso int64           `json:"id_reembolso"`
	IDVenta     int64           `json:"id_venta"`
	Monto       decimal.Decimal `json:"monto"`
	MontoText   string          `json:"monto_texto"`
	Motivo      string          `json:"motivo"`
	Items       int             `json:"items"`
}

func NewReembolsoResponse(r model.Reembolso, symbol string) ReembolsoResponse {
	return ReembolsoResponse{
		IDReembolso: r.ID,
		IDVenta:     r.VentaID,
		Monto:       r.Monto,
		MontoText:   money.Format(symbol, r.Monto),
		Motivo:      r.Motivo,
		Items:       len(r.Items),
	}
}

// ReembolsoRegistroResponse is one entry of the terminal's local refund journal.
type ReembolsoRegistroResponse struct {
	ID          string          `json:"id"`
	Estado      string          `json:"estado"`
	IDVenta     int64           `json:"id_venta"`
	IDReembolso *int64          `json:"id_reembolso"`
	Monto       decimal.Decimal `json:"monto"`
	MontoText   string          `json:"monto_texto"`
	Motivo      string          `json:"motivo"`
	Items       int             `json:"items"`
	Error       *string         `json:"error,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

func NewReembolsoRegistroResponse(r model.ReembolsoRegistro, symbol string) ReembolsoRegistroResponse {
	return ReembolsoRegistroResponse{
		ID:          r.ID.String(),
		Estado:      r.Estado,
		IDVenta:     r.VentaID,
		IDReembolso: r.ReembolsoID,
		Monto:       r.Monto,
		MontoText:   money.Format(symbol, r.Monto),
		Motivo:      r.Motivo,
		Items:       r.Items,
		Error:       r.Error,
		CreatedAt:   r.CreatedAt,
	}
}
