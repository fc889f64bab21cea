package backend

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"tallerpos/internal/model"
	"tallerpos/internal/money"

	"github.com/shopspring/decimal"
)

// ── Wire formats ──────────────────────────────────────────────────────────────
// The backend is loose with types: ids, amounts and quantities arrive as
// numbers or strings, some fields have two spellings depending on the
// endpoint. Everything is normalized here into model types.

// envelope is the {ok, msg} wrapper every backend response carries.
type envelope struct {
	OK  *bool  `json:"ok"`
	Msg string `json:"msg"`
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Timestamp decodes the date formats the backend emits; "" and null are zero.
type Timestamp struct {
	time.Time
	Valid bool
}

func (t *Timestamp) UnmarshalJSON(b []byte) error {
	var s string
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		*t = Timestamp{}
		return nil
	}
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("backend: fecha invalida %s", b)
	}
	s = strings.TrimSpace(s)
	if s == "" {
		*t = Timestamp{}
		return nil
	}
	for _, layout := range timestampLayouts {
		if v, err := time.Parse(layout, s); err == nil {
			*t = Timestamp{Time: v, Valid: true}
			return nil
		}
	}
	return fmt.Errorf("backend: fecha invalida %q", s)
}

func (t Timestamp) Ptr() *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}

// Flag decodes booleans sent as true/false, 1/0 or their string forms.
type Flag struct {
	Value bool
	Set   bool
}

func (f *Flag) UnmarshalJSON(b []byte) error {
	s := strings.Trim(strings.ToLower(strings.TrimSpace(string(b))), `"`)
	switch s {
	case "null", "":
		*f = Flag{}
	case "true", "1", "t", "activa", "activo":
		*f = Flag{Value: true, Set: true}
	case "false", "0", "f", "anulada", "inactiva":
		*f = Flag{Value: false, Set: true}
	default:
		return fmt.Errorf("backend: valor booleano invalido %s", b)
	}
	return nil
}

// ── Cajas ─────────────────────────────────────────────────────────────────────

type cajaWire struct {
	IDCaja            money.Int    `json:"id_caja"`
	FechaApertura     Timestamp    `json:"fecha_apertura"`
	MontoInicial      money.Amount `json:"monto_inicial"`
	FechaCierre       Timestamp    `json:"fecha_cierre"`
	MontoFinal        money.Amount `json:"monto_final"`
	TotalVentas       money.Amount `json:"total_ventas"`
	TotalVentasReales money.Amount `json:"total_ventas_reales"`
}

func (w cajaWire) toModel() *model.SesionCaja {
	total := w.TotalVentas.Or(decimal.Zero)
	if w.TotalVentasReales.Valid {
		total = w.TotalVentasReales.Decimal
	}
	return &model.SesionCaja{
		ID:            int64(w.IDCaja),
		FechaApertura: w.FechaApertura.Time,
		MontoInicial:  w.MontoInicial.Or(decimal.Zero),
		FechaCierre:   w.FechaCierre.Ptr(),
		MontoFinal:    w.MontoFinal.Ptr(),
		TotalVentas:   total,
	}
}

type cajaResponse struct {
	envelope
	Caja *cajaWire `json:"caja"`
}

type historialResponse struct {
	envelope
	Historial []cajaWire `json:"historial"`
}

type abrirCajaRequest struct {
	MontoInicial json.Number `json:"monto_inicial"`
}

type cerrarCajaRequest struct {
	IDCaja     int64       `json:"id_caja"`
	MontoFinal json.Number `json:"monto_final"`
}

// ── Catalogo ──────────────────────────────────────────────────────────────────

type itemWire struct {
	ID          money.Int    `json:"id"`
	IDItem      money.Int    `json:"id_item"`
	TipoItem    string       `json:"tipo_item"`
	Nombre      string       `json:"nombre"`
	PrecioVenta money.Amount `json:"precio_venta"`
	PrecioCosto money.Amount `json:"precio_costo"`
	Stock       money.Int    `json:"stock"`
	ImagenURL   string       `json:"imagen_url"`
}

// toModel falls back to hint when the backend omits tipo_item.
func (w itemWire) toModel(hint model.ItemKind) (model.ItemCatalogo, error) {
	kind := hint
	if w.TipoItem != "" {
		k, err := model.ParseItemKind(w.TipoItem)
		if err != nil {
			return model.ItemCatalogo{}, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
		}
		kind = k
	}
	if kind == "" {
		kind = model.KindProducto
	}
	id := int64(w.ID)
	if id == 0 {
		id = int64(w.IDItem)
	}
	if !w.PrecioVenta.Valid {
		return model.ItemCatalogo{}, fmt.Errorf("%w: %q sin precio de venta", ErrInvalidResponse, w.Nombre)
	}
	return model.ItemCatalogo{
		Tipo:        kind,
		ID:          id,
		Nombre:      w.Nombre,
		PrecioVenta: w.PrecioVenta.Decimal,
		PrecioCosto: w.PrecioCosto.Or(decimal.Zero),
		Stock:       int(w.Stock),
		ImagenURL:   w.ImagenURL,
	}, nil
}

type buscarResponse struct {
	envelope
	Producto  *itemWire  `json:"producto"`
	Productos []itemWire `json:"productos"`
}

// ── Ventas ────────────────────────────────────────────────────────────────────

type detalleWire struct {
	IDDetalle           money.Int    `json:"id_detalle"`
	TipoItem            string       `json:"tipo_item"`
	IDItem              money.Int    `json:"id_item"`
	Nombre              string       `json:"nombre"`
	Cantidad            money.Int    `json:"cantidad"`
	CantidadReembolsada money.Int    `json:"cantidad_reembolsada"`
	PrecioUnitario      money.Amount `json:"precio_unitario"`
	Subtotal            money.Amount `json:"subtotal"`
}

type ventaWire struct {
	IDVenta           money.Int     `json:"id_venta"`
	FechaVenta        Timestamp     `json:"fecha_venta"`
	Fecha             Timestamp     `json:"fecha"`
	NumeroComprobante string        `json:"numero_comprobante"`
	NumComprobante    string        `json:"num_comprobante"`
	IDCaja            money.Int     `json:"id_caja"`
	IDCliente         money.Int     `json:"id_cliente"`
	NombreCliente     string        `json:"nombre_cliente"`
	ClienteNombre     string        `json:"cliente_nombre"`
	TotalVenta        money.Amount  `json:"total_venta"`
	Total             money.Amount  `json:"total"`
	MontoRecibido     money.Amount  `json:"monto_recibido"`
	Cambio            money.Amount  `json:"cambio"`
	EstadoVenta       Flag          `json:"estado_venta"`
	PDFURL            string        `json:"pdf_url"`
	Detalles          []detalleWire `json:"detalles"`
}

func (w ventaWire) toModel() (model.Venta, error) {
	v := model.Venta{
		ID:                int64(w.IDVenta),
		Fecha:             w.FechaVenta.Time,
		NumeroComprobante: firstNonEmpty(w.NumeroComprobante, w.NumComprobante),
		CajaID:            int64(w.IDCaja),
		ClienteNombre:     firstNonEmpty(w.NombreCliente, w.ClienteNombre),
		Total:             w.TotalVenta.Or(w.Total.Or(decimal.Zero)),
		MontoRecibido:     w.MontoRecibido.Ptr(),
		Cambio:            w.Cambio.Ptr(),
		// A sale is active unless the backend says otherwise.
		Activa:         !w.EstadoVenta.Set || w.EstadoVenta.Value,
		ComprobanteRef: w.PDFURL,
		Detalles:       make([]model.DetalleVenta, 0, len(w.Detalles)),
	}
	if !w.FechaVenta.Valid {
		v.Fecha = w.Fecha.Time
	}
	if w.IDCliente != 0 {
		id := int64(w.IDCliente)
		v.ClienteID = &id
	}
	for _, d := range w.Detalles {
		kind, err := model.ParseItemKind(d.TipoItem)
		if err != nil {
			return model.Venta{}, fmt.Errorf("%w: venta %d: %v", ErrInvalidResponse, v.ID, err)
		}
		precio := d.PrecioUnitario.Or(decimal.Zero)
		sub := d.Subtotal.Or(precio.Mul(decimal.NewFromInt(int64(d.Cantidad))))
		v.Detalles = append(v.Detalles, model.DetalleVenta{
			ID:                  int64(d.IDDetalle),
			Tipo:                kind,
			IDItem:              int64(d.IDItem),
			Nombre:              d.Nombre,
			Cantidad:            int(d.Cantidad),
			CantidadReembolsada: int(d.CantidadReembolsada),
			PrecioUnitario:      precio,
			Subtotal:            sub,
		})
	}
	return v, nil
}

type ventaResponse struct {
	envelope
	Venta *ventaWire `json:"venta"`
}

type ventasResponse struct {
	envelope
	Ventas []ventaWire `json:"ventas"`
}

type itemVentaRequest struct {
	TipoItem       model.ItemKind `json:"tipo_item"`
	IDItem         int64          `json:"id_item"`
	Cantidad       int            `json:"cantidad"`
	PrecioUnitario json.Number    `json:"precio_unitario"`
	Subtotal       json.Number    `json:"subtotal"`
}

type crearVentaRequest struct {
	IDCliente     *int64             `json:"id_cliente,omitempty"`
	IDCaja        int64              `json:"id_caja"`
	TotalVenta    json.Number        `json:"total_venta"`
	MontoRecibido json.Number        `json:"monto_recibido"`
	Items         []itemVentaRequest `json:"items"`
}

func newCrearVentaRequest(nv model.NuevaVenta) crearVentaRequest {
	req := crearVentaRequest{
		IDCliente:     nv.ClienteID,
		IDCaja:        nv.CajaID,
		TotalVenta:    money.Number(nv.Total),
		MontoRecibido: money.Number(nv.MontoRecibido),
		Items:         make([]itemVentaRequest, 0, len(nv.Items)),
	}
	for _, it := range nv.Items {
		req.Items = append(req.Items, itemVentaRequest{
			TipoItem:       it.Tipo,
			IDItem:         it.IDItem,
			Cantidad:       it.Cantidad,
			PrecioUnitario: money.Number(it.PrecioUnitario),
			Subtotal:       money.Number(it.Subtotal),
		})
	}
	return req
}

// ── Reembolsos ────────────────────────────────────────────────────────────────

type itemReembolsoRequest struct {
	IDDetalleVenta      int64       `json:"id_detalle_venta"`
	CantidadReembolsada int         `json:"cantidad_reembolsada"`
	SubtotalReembolso   json.Number `json:"subtotal_reembolso"`
}

type crearReembolsoRequest struct {
	IDVenta        int64                  `json:"id_venta"`
	MontoReembolso json.Number            `json:"monto_reembolso"`
	Motivo         string                 `json:"motivo"`
	Items          []itemReembolsoRequest `json:"items"`
}

func newCrearReembolsoRequest(nr model.NuevoReembolso) crearReembolsoRequest {
	req := crearReembolsoRequest{
		IDVenta:        nr.VentaID,
		MontoReembolso: money.Number(nr.Monto),
		Motivo:         nr.Motivo,
		Items:          make([]itemReembolsoRequest, 0, len(nr.Items)),
	}
	for _, it := range nr.Items {
		req.Items = append(req.Items, itemReembolsoRequest{
			IDDetalleVenta:      it.DetalleID,
			CantidadReembolsada: it.Cantidad,
			SubtotalReembolso:   money.Number(it.Subtotal),
		})
	}
	return req
}

type reembolsoWire struct {
	IDReembolso    money.Int    `json:"id_reembolso"`
	IDVenta        money.Int    `json:"id_venta"`
	MontoReembolso money.Amount `json:"monto_reembolso"`
	Motivo         string       `json:"motivo"`
	Fecha          Timestamp    `json:"fecha_reembolso"`
}

type reembolsoResponse struct {
	envelope
	Reembolso *reembolsoWire `json:"reembolso"`
}

// ── Clientes ──────────────────────────────────────────────────────────────────

type clienteWire struct {
	IDCliente money.Int `json:"id_cliente"`
	NIT       string    `json:"nit"`
	Nombre    string    `json:"nombre"`
	Email     string    `json:"email"`
	Direccion string    `json:"direccion"`
	Telefono  string    `json:"telefono"`
}

func (w clienteWire) toModel() model.Cliente {
	return model.Cliente{
		ID:        int64(w.IDCliente),
		NIT:       w.NIT,
		Nombre:    w.Nombre,
		Email:     w.Email,
		Direccion: w.Direccion,
		Telefono:  w.Telefono,
	}
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
