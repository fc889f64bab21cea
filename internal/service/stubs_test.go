package service

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"tallerpos/internal/backend"
	"tallerpos/internal/credential"
	"tallerpos/internal/model"

	"github.com/shopspring/decimal"
)

// ── stubBackend ───────────────────────────────────────────────────────────────

type stubBackend struct {
	mu sync.Mutex

	sesion    *model.SesionCaja
	historial []model.SesionCaja
	items     map[string]model.ItemCatalogo
	ventas    map[int64]model.Venta
	clientes  map[string]model.Cliente

	crearVentaErr     error
	totalEcho         *decimal.Decimal
	crearReembolsoErr error

	calls          map[string]int
	idemKeys       []string
	ventasCreadas  []model.NuevaVenta
	reembolsos     []model.NuevoReembolso
	cerrarCajaID   int64
	historialDesde time.Time
	historialHasta time.Time
}

func newStubBackend() *stubBackend {
	return &stubBackend{
		items:    map[string]model.ItemCatalogo{},
		ventas:   map[int64]model.Venta{},
		clientes: map[string]model.Cliente{},
		calls:    map[string]int{},
	}
}

func (b *stubBackend) abrir(id int64) *stubBackend {
	b.sesion = &model.SesionCaja{ID: id, FechaApertura: time.Now(), MontoInicial: decimal.NewFromInt(500)}
	return b
}

func (b *stubBackend) hit(name string) {
	b.mu.Lock()
	b.calls[name]++
	b.mu.Unlock()
}

func (b *stubBackend) count(name string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calls[name]
}

func (b *stubBackend) CajaActual(_ context.Context, _ credential.Credential) (*model.SesionCaja, error) {
	b.hit("CajaActual")
	if !b.sesion.Abierta() {
		return nil, nil
	}
	s := *b.sesion
	return &s, nil
}

func (b *stubBackend) AbrirCaja(_ context.Context, _ credential.Credential, monto decimal.Decimal) (*model.SesionCaja, error) {
	b.hit("AbrirCaja")
	b.sesion = &model.SesionCaja{ID: 10, FechaApertura: time.Now(), MontoInicial: monto}
	s := *b.sesion
	return &s, nil
}

func (b *stubBackend) CerrarCaja(_ context.Context, _ credential.Credential, cajaID int64, monto decimal.Decimal) (*model.SesionCaja, error) {
	b.hit("CerrarCaja")
	b.cerrarCajaID = cajaID
	now := time.Now()
	b.sesion.FechaCierre = &now
	b.sesion.MontoFinal = &monto
	return &model.SesionCaja{ID: cajaID, FechaCierre: &now, MontoFinal: &monto}, nil
}

func (b *stubBackend) HistorialCajas(_ context.Context, _ credential.Credential, desde, hasta time.Time) ([]model.SesionCaja, error) {
	b.hit("HistorialCajas")
	b.historialDesde, b.historialHasta = desde, hasta
	return b.historial, nil
}

func (b *stubBackend) BuscarItem(_ context.Context, _ credential.Credential, termino string, _ model.ItemKind) (model.ItemCatalogo, error) {
	b.hit("BuscarItem")
	b.mu.Lock()
	defer b.mu.Unlock()
	item, ok := b.items[strings.ToLower(termino)]
	if !ok {
		return model.ItemCatalogo{}, backend.ErrNotFound
	}
	return item, nil
}

func (b *stubBackend) CrearVenta(_ context.Context, _ credential.Credential, key string, nv model.NuevaVenta) (model.Venta, error) {
	b.hit("CrearVenta")
	b.mu.Lock()
	defer b.mu.Unlock()
	b.idemKeys = append(b.idemKeys, key)
	if b.crearVentaErr != nil {
		return model.Venta{}, b.crearVentaErr
	}
	b.ventasCreadas = append(b.ventasCreadas, nv)
	total := nv.Total
	if b.totalEcho != nil {
		total = *b.totalEcho
	}
	return model.Venta{
		ID:             int64(100 + len(b.ventasCreadas)),
		CajaID:         nv.CajaID,
		Total:          total,
		Activa:         true,
		ComprobanteRef: "/ventas/comprobante.pdf",
	}, nil
}

func (b *stubBackend) ObtenerVenta(_ context.Context, _ credential.Credential, id int64) (model.Venta, error) {
	b.hit("ObtenerVenta")
	v, ok := b.ventas[id]
	if !ok {
		return model.Venta{}, &backend.HTTPError{Status: 404, Msg: "venta no existe"}
	}
	return v, nil
}

func (b *stubBackend) VentasPorCaja(_ context.Context, _ credential.Credential, cajaID int64) ([]model.Venta, error) {
	b.hit("VentasPorCaja")
	var out []model.Venta
	for id := int64(1); id <= 100; id++ {
		if v, ok := b.ventas[id]; ok && v.CajaID == cajaID {
			out = append(out, v)
		}
	}
	return out, nil
}

func (b *stubBackend) Comprobante(_ context.Context, _ credential.Credential, ref string) (*backend.Document, error) {
	b.hit("Comprobante")
	return &backend.Document{ContentType: "application/pdf"}, nil
}

func (b *stubBackend) CrearReembolso(_ context.Context, _ credential.Credential, nr model.NuevoReembolso) (model.Reembolso, error) {
	b.hit("CrearReembolso")
	if b.crearReembolsoErr != nil {
		return model.Reembolso{}, b.crearReembolsoErr
	}
	b.reembolsos = append(b.reembolsos, nr)
	return model.Reembolso{ID: 7}, nil
}

func (b *stubBackend) ClientePorNIT(_ context.Context, _ credential.Credential, nit string) (model.Cliente, error) {
	b.hit("ClientePorNIT")
	cl, ok := b.clientes[nit]
	if !ok {
		return model.Cliente{}, backend.ErrNotFound
	}
	return cl, nil
}

func (b *stubBackend) CrearCliente(_ context.Context, _ credential.Credential, cl model.Cliente) (model.Cliente, error) {
	b.hit("CrearCliente")
	cl.ID = int64(len(b.clientes) + 1)
	b.clientes[cl.NIT] = cl
	return cl, nil
}

func (b *stubBackend) ListarClientes(context.Context, credential.Credential) ([]model.Cliente, error) {
	b.hit("ListarClientes")
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]model.Cliente, 0, len(b.clientes))
	for _, cl := range b.clientes {
		out = append(out, cl)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (b *stubBackend) clientePorID(id int64) (model.Cliente, bool) {
	for _, cl := range b.clientes {
		if cl.ID == id {
			return cl, true
		}
	}
	return model.Cliente{}, false
}

func (b *stubBackend) ObtenerCliente(_ context.Context, _ credential.Credential, id int64) (model.Cliente, error) {
	b.hit("ObtenerCliente")
	b.mu.Lock()
	defer b.mu.Unlock()
	cl, ok := b.clientePorID(id)
	if !ok {
		return model.Cliente{}, backend.ErrNotFound
	}
	return cl, nil
}

func (b *stubBackend) ActualizarCliente(_ context.Context, _ credential.Credential, id int64, cl model.Cliente) (model.Cliente, error) {
	b.hit("ActualizarCliente")
	b.mu.Lock()
	defer b.mu.Unlock()
	old, ok := b.clientePorID(id)
	if !ok {
		return model.Cliente{}, backend.ErrNotFound
	}
	delete(b.clientes, old.NIT)
	cl.ID = id
	b.clientes[cl.NIT] = cl
	return cl, nil
}

func (b *stubBackend) EliminarCliente(_ context.Context, _ credential.Credential, id int64) error {
	b.hit("EliminarCliente")
	b.mu.Lock()
	defer b.mu.Unlock()
	cl, ok := b.clientePorID(id)
	if !ok {
		return backend.ErrNotFound
	}
	delete(b.clientes, cl.NIT)
	return nil
}

// ── stubJournal ───────────────────────────────────────────────────────────────

type stubJournal struct {
	mu         sync.Mutex
	ventas     []model.VentaRegistro
	reembolsos []model.ReembolsoRegistro
}

func (j *stubJournal) CreateVenta(_ context.Context, r *model.VentaRegistro) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.ventas = append(j.ventas, *r)
	return nil
}

func (j *stubJournal) ListVentas(_ context.Context, terminalID string, _ int) ([]model.VentaRegistro, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	var out []model.VentaRegistro
	for i := len(j.ventas) - 1; i >= 0; i-- {
		if j.ventas[i].TerminalID == terminalID {
			out = append(out, j.ventas[i])
		}
	}
	return out, nil
}

func (j *stubJournal) Purge(context.Context, time.Time) (int64, error) { return 0, nil }

func (j *stubJournal) CreateReembolso(_ context.Context, r *model.ReembolsoRegistro) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.reembolsos = append(j.reembolsos, *r)
	return nil
}

func (j *stubJournal) ListReembolsos(_ context.Context, terminalID string, _ int) ([]model.ReembolsoRegistro, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	var out []model.ReembolsoRegistro
	for _, r := range j.reembolsos {
		if r.TerminalID == terminalID {
			out = append(out, r)
		}
	}
	return out, nil
}

// ── stubCache ─────────────────────────────────────────────────────────────────

type stubCache struct {
	entries map[string]model.ItemCatalogo
}

func (c *stubCache) Get(_ context.Context, key string) (*model.ItemCatalogo, bool, error) {
	item, ok := c.entries[key]
	if !ok {
		return nil, false, nil
	}
	return &item, true, nil
}

func (c *stubCache) Set(_ context.Context, key string, item model.ItemCatalogo, _ time.Duration) error {
	c.entries[key] = item
	return nil
}

// ── fixtures ──────────────────────────────────────────────────────────────────

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func testCred() credential.Credential {
	c, _ := credential.New("tok-test")
	return c
}
