package pos

import (
	"encoding/json"
	"errors"
	"strings"

	"tallerpos/internal/model"

	"github.com/shopspring/decimal"
)

var (
	ErrMotivoRequerido       = errors.New("ingrese un motivo para el reembolso")
	ErrNadaPreparado         = errors.New("seleccione al menos un item para reembolsar")
	ErrDetalleNoReembolsable = errors.New("el item no es reembolsable en esta venta")
)

// EstadoReembolso is the stage of the refund workflow for one terminal.
type EstadoReembolso string

const (
	SinSeleccion      EstadoReembolso = "sin_seleccion"
	VentaSeleccionada EstadoReembolso = "venta_seleccionada"
	ItemsPreparados   EstadoReembolso = "items_preparados"
	// NadaQueReembolsar is terminal: the selected sale has no refundable line.
	NadaQueReembolsar EstadoReembolso = "nada_que_reembolsar"
)

// LineaReembolso is a refundable sale line and the quantity staged against it.
type LineaReembolso struct {
	DetalleID        int64           `json:"id_detalle"`
	Tipo             model.ItemKind  `json:"tipo_item"`
	IDItem           int64           `json:"id_item"`
	Nombre           string          `json:"nombre"`
	CantidadOriginal int             `json:"cantidad_original"`
	YaReembolsada    int             `json:"ya_reembolsada"`
	PrecioUnitario   decimal.Decimal `json:"precio_unitario"`
	Cantidad         int             `json:"cantidad"`
}

// Restante is how many units can still be refunded on this line.
func (l LineaReembolso) Restante() int {
	if r := l.CantidadOriginal - l.YaReembolsada; r > 0 {
		return r
	}
	return 0
}

func (l LineaReembolso) Subtotal() decimal.Decimal {
	return l.PrecioUnitario.Mul(decimal.NewFromInt(int64(l.Cantidad)))
}

// BorradorReembolso stages a refund against one sale. A nil draft means no
// sale is selected.
type BorradorReembolso struct {
	VentaID           int64            `json:"id_venta"`
	NumeroComprobante string           `json:"numero_comprobante"`
	Lineas            []LineaReembolso `json:"lineas"`
}

// NuevoBorrador derives the refundable set of v: service lines and lines
// already fully refunded are dropped before staging is ever offered. Voided
// sales have nothing to refund.
func NuevoBorrador(v model.Venta) *BorradorReembolso {
	b := &BorradorReembolso{
		VentaID:           v.ID,
		NumeroComprobante: v.NumeroComprobante,
		Lineas:            []LineaReembolso{},
	}
	if !v.Activa {
		return b
	}
	for _, d := range v.Detalles {
		if !d.Tipo.ControlaStock() {
			continue
		}
		l := LineaReembolso{
			DetalleID:        d.ID,
			Tipo:             d.Tipo,
			IDItem:           d.IDItem,
			Nombre:           d.Nombre,
			CantidadOriginal: d.Cantidad,
			YaReembolsada:    d.CantidadReembolsada,
			PrecioUnitario:   d.PrecioUnitario,
		}
		if l.Restante() == 0 {
			continue
		}
		b.Lineas = append(b.Lineas, l)
	}
	return b
}

func (b *BorradorReembolso) Estado() EstadoReembolso {
	switch {
	case b == nil:
		return SinSeleccion
	case len(b.Lineas) == 0:
		return NadaQueReembolsar
	case b.Total().IsPositive():
		return ItemsPreparados
	default:
		return VentaSeleccionada
	}
}

// Preparar stages qty units of a line, clamped to [0, Restante()].
func (b *BorradorReembolso) Preparar(detalleID int64, qty int) (LineaReembolso, error) {
	for i := range b.Lineas {
		l := &b.Lineas[i]
		if l.DetalleID != detalleID {
			continue
		}
		l.Cantidad = min(max(qty, 0), l.Restante())
		return *l, nil
	}
	return LineaReembolso{}, ErrDetalleNoReembolsable
}

// Total is zero for a nil draft.
func (b *BorradorReembolso) Total() decimal.Decimal {
	total := decimal.Zero
	if b == nil {
		return total
	}
	for _, l := range b.Lineas {
		total = total.Add(l.Subtotal())
	}
	return total
}

// Validar checks the submit preconditions: a motive, then something staged.
// A nil draft has nothing staged.
func (b *BorradorReembolso) Validar(motivo string) error {
	if strings.TrimSpace(motivo) == "" {
		return ErrMotivoRequerido
	}
	if !b.Total().IsPositive() {
		return ErrNadaPreparado
	}
	return nil
}

// Solicitud assembles the refund to submit from the staged lines.
func (b *BorradorReembolso) Solicitud(motivo string) model.NuevoReembolso {
	req := model.NuevoReembolso{
		VentaID: b.VentaID,
		Monto:   b.Total(),
		Motivo:  strings.TrimSpace(motivo),
	}
	for _, l := range b.Lineas {
		if l.Cantidad == 0 {
			continue
		}
		req.Items = append(req.Items, model.ItemReembolso{
			DetalleID: l.DetalleID,
			Cantidad:  l.Cantidad,
			Subtotal:  l.Subtotal(),
		})
	}
	return req
}

// Decode restores a persisted draft, re-clamping staged quantities so a
// tampered or stale snapshot can never exceed the refundable bound.
func Decode(data []byte) (*BorradorReembolso, error) {
	var b BorradorReembolso
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, err
	}
	for i := range b.Lineas {
		l := &b.Lineas[i]
		l.Cantidad = min(max(l.Cantidad, 0), l.Restante())
	}
	return &b, nil
}
