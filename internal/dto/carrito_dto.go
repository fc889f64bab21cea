package dto

import (
	"tallerpos/internal/model"
	"tallerpos/internal/money"
	"tallerpos/internal/pos"

	"github.com/shopspring/decimal"
)

// ─── Request DTOs ────────────────────────────────────────────────────────────

// EscanearRequest is a scanned barcode or a typed name fragment.
type EscanearRequest struct {
	Termino  string `json:"termino"   validate:"required,max=120"`
	TipoItem string `json:"tipo_item" validate:"omitempty,oneof=accesorio bicicleta producto servicio"`
}

type CambiarCantidadRequest struct {
	Cantidad int `json:"cantidad"`
}

type AsignarClienteRequest struct {
	NIT string `json:"nit" validate:"required,max=30"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type LineaResponse struct {
	TipoItem       model.ItemKind  `json:"tipo_item"`
	IDItem         int64           `json:"id_item"`
	Nombre         string          `json:"nombre"`
	PrecioUnitario decimal.Decimal `json:"precio_unitario"`
	Cantidad       int             `json:"cantidad"`
	// Stock is omitted for services.
	Stock        *int            `json:"stock,omitempty"`
	Subtotal     decimal.Decimal `json:"subtotal"`
	SubtotalText string          `json:"subtotal_texto"`
}

type CarritoResponse struct {
	Lineas    []LineaResponse `json:"lineas"`
	Cliente   *model.Cliente  `json:"cliente"`
	Items     int             `json:"items"`
	Total     decimal.Decimal `json:"total"`
	TotalText string          `json:"total_texto"`
}

func NewLineaResponse(l pos.Linea, symbol string) LineaResponse {
	r := LineaResponse{
		TipoItem:       l.Key.Tipo,
		IDItem:         l.Key.ID,
		Nombre:         l.Nombre,
		PrecioUnitario: l.PrecioUnitario,
		Cantidad:       l.Cantidad,
		Subtotal:       l.Subtotal(),
		SubtotalText:   money.Format(symbol, l.Subtotal()),
	}
	if l.Key.Tipo.ControlaStock() {
		stock := l.Stock
		r.Stock = &stock
	}
	return r
}

func NewCarritoResponse(c *pos.Carrito, symbol string) CarritoResponse {
	lineas := c.Lineas()
	resp := CarritoResponse{
		Lineas:    make([]LineaResponse, 0, len(lineas)),
		Cliente:   c.Cliente(),
		Total:     c.Total(),
		TotalText: money.Format(symbol, c.Total()),
	}
	for _, l := range lineas {
		resp.Lineas = append(resp.Lineas, NewLineaResponse(l, symbol))
		resp.Items += l.Cantidad
	}
	return resp
}

// CarritoMutacionResponse answers a cart mutation with the touched line and
// the whole cart, so the terminal can redraw without a second request.
type CarritoMutacionResponse struct {
	Linea   *LineaResponse  `json:"linea,omitempty"`
	Carrito CarritoResponse `json:"carrito"`
}
