package dto

import (
	"time"

	"tallerpos/internal/model"
	"tallerpos/internal/money"

	"github.com/shopspring/decimal"
)

// ─── Request DTOs ────────────────────────────────────────────────────────────

// CobrarRequest carries the cash tendered. A missing amount is treated as
// insufficient payment rather than a malformed request.
type CobrarRequest struct {
	MontoRecibido *decimal.Decimal `json:"monto_recibido"`
}

type RecientesFilter struct {
	Limit int `form:"limit,default=20" validate:"min=1,max=200"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type ValidacionVentaResponse struct {
	Total         decimal.Decimal  `json:"total"`
	MontoRecibido decimal.Decimal  `json:"monto_recibido"`
	Cambio        *decimal.Decimal `json:"cambio"`
	TotalText     string           `json:"total_texto"`
	CambioText    string           `json:"cambio_texto,omitempty"`
}

type DetalleVentaResponse struct {
	IDDetalle      int64           `json:"id_detalle"`
	TipoItem       model.ItemKind  `json:"tipo_item"`
	IDItem         int64           `json:"id_item"`
	Nombre         string          `json:"nombre"`
	Cantidad       int             `json:"cantidad"`
	PrecioUnitario decimal.Decimal `json:"precio_unitario"`
	Subtotal       decimal.Decimal `json:"subtotal"`
}

type VentaResponse struct {
	IDVenta           int64                  `json:"id_venta"`
	NumeroComprobante string                 `json:"numero_comprobante,omitempty"`
	Fecha             time.Time              `json:"fecha"`
	IDCaja            int64                  `json:"id_caja"`
	IDCliente         *int64                 `json:"id_cliente"`
	Total             decimal.Decimal        `json:"total"`
	MontoRecibido     decimal.Decimal        `json:"monto_recibido"`
	Cambio            decimal.Decimal        `json:"cambio"`
	TotalText         string                 `json:"total_texto"`
	CambioText        string                 `json:"cambio_texto"`
	Detalles          []DetalleVentaResponse `json:"detalles"`
	// ComprobanteURL is where the terminal fetches the receipt through this service.
	ComprobanteURL string `json:"comprobante_url,omitempty"`
	// Discrepancia is set when the backend recorded a total different from the cart's.
	Discrepancia bool `json:"discrepancia"`
}

func NewVentaResponse(v model.Venta, recibido, cambio decimal.Decimal, symbol string) VentaResponse {
	r := VentaResponse{
		IDVenta:           v.ID,
		NumeroComprobante: v.NumeroComprobante,
		Fecha:             v.Fecha,
		IDCaja:            v.CajaID,
		IDCliente:         v.ClienteID,
		Total:             v.Total,
		MontoRecibido:     recibido,
		Cambio:            cambio,
		TotalText:         money.Format(symbol, v.Total),
		CambioText:        money.Format(symbol, cambio),
		Detalles:          make([]DetalleVentaResponse, 0, len(v.Detalles)),
	}
	for _, d := range v.Detalles {
		r.Detalles = append(r.Detalles, DetalleVentaResponse{
			IDDetalle:      d.ID,
			TipoItem:       d.Tipo,
			IDItem:         d.IDItem,
			Nombre:         d.Nombre,
			Cantidad:       d.Cantidad,
			PrecioUnitario: d.PrecioUnitario,
			Subtotal:       d.Subtotal,
		})
	}
	return r
}

// VentaRegistroResponse is one entry of the terminal's local sales journal.
type VentaRegistroResponse struct {
	ID             string           `json:"id"`
	Estado         string           `json:"estado"`
	IDVenta        *int64           `json:"id_venta"`
	IDCaja         int64            `json:"id_caja"`
	Items          int              `json:"items"`
	TotalLocal     decimal.Decimal  `json:"total_local"`
	TotalServidor  *decimal.Decimal `json:"total_servidor"`
	MontoRecibido  decimal.Decimal  `json:"monto_recibido"`
	Cambio         decimal.Decimal  `json:"cambio"`
	Discrepancia   bool             `json:"discrepancia"`
	Error          *string          `json:"error,omitempty"`
	CreatedAt      time.Time        `json:"created_at"`
	TotalLocalText string           `json:"total_local_texto"`
}

func NewVentaRegistroResponse(r model.VentaRegistro, symbol string) VentaRegistroResponse {
	return VentaRegistroResponse{
		ID:             r.ID.String(),
		Estado:         r.Estado,
		IDVenta:        r.VentaID,
		IDCaja:         r.CajaID,
		Items:          r.Items,
		TotalLocal:     r.TotalLocal,
		TotalServidor:  r.TotalServidor,
		MontoRecibido:  r.MontoRecibido,
		Cambio:         r.Cambio,
		Discrepancia:   r.Discrepancia,
		Error:          r.Error,
		CreatedAt:      r.CreatedAt,
		TotalLocalText: money.Format(symbol, r.TotalLocal),
	}
}
