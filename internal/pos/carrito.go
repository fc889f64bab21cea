// Package pos holds the point-of-sale core: the cart of the sale in progress
// and the staging area of a refund. Both are plain in-memory values; callers
// serialize access per terminal and persist them between requests.
package pos

import (
	"encoding/json"
	"errors"

	"tallerpos/internal/model"

	"github.com/shopspring/decimal"
)

var (
	ErrStockAgotado      = errors.New("el producto no tiene stock disponible")
	ErrStockInsuficiente = errors.New("stock insuficiente para la cantidad solicitada")
	ErrCantidadInvalida  = errors.New("la cantidad debe ser al menos 1")
	ErrLineaNoEncontrada = errors.New("el item no esta en el carrito")
	ErrPrecioInvalido    = errors.New("el item no tiene un precio de venta valido")
)

// Linea is one cart line. Subtotal is always derived from its inputs.
type Linea struct {
	Key            model.ItemKey
	Nombre         string
	PrecioUnitario decimal.Decimal
	// Stock is the latest stock the lookup reported; ignored for services.
	Stock    int
	Cantidad int
}

func (l Linea) Subtotal() decimal.Decimal {
	return l.PrecioUnitario.Mul(decimal.NewFromInt(int64(l.Cantidad)))
}

func (l Linea) admite(cantidad int) bool {
	return !l.Key.Tipo.ControlaStock() || cantidad <= l.Stock
}

// Carrito is the sale in progress: insertion-ordered lines indexed by
// (kind, id), plus an optional client.
type Carrito struct {
	lineas  []*Linea
	indice  map[model.ItemKey]*Linea
	cliente *model.Cliente
	// clavePendiente is the idempotency key of a submit that has not succeeded yet.
	clavePendiente string
}

func NuevoCarrito() *Carrito {
	return &Carrito{indice: make(map[model.ItemKey]*Linea)}
}

// Agregar adds one unit of item, merging into an existing line with the same key.
// On any error the cart is left untouched.
func (c *Carrito) Agregar(item model.ItemCatalogo) (Linea, error) {
	if item.PrecioVenta.IsNegative() {
		return Linea{}, ErrPrecioInvalido
	}
	key := item.Key()
	if key.Tipo.ControlaStock() && item.Stock <= 0 {
		return Linea{}, ErrStockAgotado
	}

	if l, ok := c.indice[key]; ok {
		// Guard against the freshest stock the lookup just reported.
		tentativa := *l
		tentativa.Stock = item.Stock
		if !tentativa.admite(l.Cantidad + 1) {
			return *l, ErrStockInsuficiente
		}
		l.Stock = item.Stock
		l.Cantidad++
		c.mutado()
		return *l, nil
	}

	l := &Linea{
		Key:            key,
		Nombre:         item.Nombre,
		PrecioUnitario: item.PrecioVenta,
		Stock:          item.Stock,
		Cantidad:       1,
	}
	c.lineas = append(c.lineas, l)
	c.indice[key] = l
	c.mutado()
	return *l, nil
}

// CambiarCantidad sets the quantity of an existing line. Out-of-range requests
// are rejected and leave the line as it was.
func (c *Carrito) CambiarCantidad(key model.ItemKey, cantidad int) (Linea, error) {
	l, ok := c.indice[key]
	if !ok {
		return Linea{}, ErrLineaNoEncontrada
	}
	if cantidad < 1 {
		return *l, ErrCantidadInvalida
	}
	if !l.admite(cantidad) {
		return *l, ErrStockInsuficiente
	}
	if l.Cantidad != cantidad {
		l.Cantidad = cantidad
		c.mutado()
	}
	return *l, nil
}

// Quitar removes the line if present. Removing a missing key is not an error.
func (c *Carrito) Quitar(key model.ItemKey) bool {
	if _, ok := c.indice[key]; !ok {
		return false
	}
	delete(c.indice, key)
	for i, l := range c.lineas {
		if l.Key == key {
			c.lineas = append(c.lineas[:i], c.lineas[i+1:]...)
			break
		}
	}
	c.mutado()
	return true
}

func (c *Carrito) Linea(key model.ItemKey) (Linea, bool) {
	l, ok := c.indice[key]
	if !ok {
		return Linea{}, false
	}
	return *l, true
}

// Lineas returns a copy of the lines in insertion order.
func (c *Carrito) Lineas() []Linea {
	out := make([]Linea, 0, len(c.lineas))
	for _, l := range c.lineas {
		out = append(out, *l)
	}
	return out
}

func (c *Carrito) Len() int { return len(c.lineas) }

func (c *Carrito) Vacio() bool { return len(c.lineas) == 0 }

// Total is recomputed from the current lines on every call.
func (c *Carrito) Total() decimal.Decimal {
	total := decimal.Zero
	for _, l := range c.lineas {
		total = total.Add(l.Subtotal())
	}
	return total
}

func (c *Carrito) Cliente() *model.Cliente { return c.cliente }

func (c *Carrito) AsignarCliente(cl *model.Cliente) {
	c.cliente = cl
	c.mutado()
}

func (c *Carrito) QuitarCliente() {
	c.cliente = nil
	c.mutado()
}

func (c *Carrito) ClavePendiente() string { return c.clavePendiente }

func (c *Carrito) FijarClavePendiente(k string) { c.clavePendiente = k }

// mutado drops the pending idempotency key: a changed cart is a different sale.
func (c *Carrito) mutado() { c.clavePendiente = "" }

// Vaciar empties the cart, detaches the client and forgets any pending submit.
func (c *Carrito) Vaciar() {
	c.lineas = nil
	c.indice = make(map[model.ItemKey]*Linea)
	c.cliente = nil
	c.clavePendiente = ""
}

// ── Persistence ───────────────────────────────────────────────────────────────

type carritoSnapshot struct {
	Lineas         []lineaSnapshot `json:"lineas"`
	Cliente        *model.Cliente  `json:"cliente,omitempty"`
	ClavePendiente string          `json:"clave_pendiente,omitempty"`
}

type lineaSnapshot struct {
	Key            model.ItemKey   `json:"key"`
	Nombre         string          `json:"nombre"`
	PrecioUnitario decimal.Decimal `json:"precio_unitario"`
	Stock          int             `json:"stock"`
	Cantidad       int             `json:"cantidad"`
}

func (c *Carrito) MarshalJSON() ([]byte, error) {
	snap := carritoSnapshot{
		Lineas:         make([]lineaSnapshot, 0, len(c.lineas)),
		Cliente:        c.cliente,
		ClavePendiente: c.clavePendiente,
	}
	for _, l := range c.lineas {
		snap.Lineas = append(snap.Lineas, lineaSnapshot(*l))
	}
	return json.Marshal(snap)
}

func (c *Carrito) UnmarshalJSON(b []byte) error {
	var snap carritoSnapshot
	if err := json.Unmarshal(b, &snap); err != nil {
		return err
	}
	c.Vaciar()
	for _, s := range snap.Lineas {
		if _, dup := c.indice[s.Key]; dup {
			continue
		}
		l := Linea(s)
		c.lineas = append(c.lineas, &l)
		c.indice[l.Key] = &l
	}
	c.cliente = snap.Cliente
	c.clavePendiente = snap.ClavePendiente
	return nil
}
