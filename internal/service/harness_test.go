package service

import (
	"testing"
	"time"

	"tallerpos/internal/cache"
	"tallerpos/internal/repository"
)

type harness struct {
	api        *stubBackend
	journal    *stubJournal
	store      repository.TerminalStore
	cajas      CajaService
	carrito    CarritoService
	ventas     VentaService
	reembolsos ReembolsoService
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	return newHarnessWithCache(t, nil)
}

// newHarnessWithCache wires the catalog lookup through c.
func newHarnessWithCache(t *testing.T, c cache.LookupCache) *harness {
	t.Helper()
	api := newStubBackend()
	journal := &stubJournal{}
	store := repository.NewMemoryTerminalStore(time.Hour)
	locks := NewTerminalLocks()

	cajas := NewCajaService(api, "Q", 30)
	catalogo := NewCatalogoService(api, c, 15*time.Second)
	clientes := NewClienteService(api)
	return &harness{
		api:        api,
		journal:    journal,
		store:      store,
		cajas:      cajas,
		carrito:    NewCarritoService(store, catalogo, clientes, locks, "Q"),
		ventas:     NewVentaService(api, cajas, store, journal, locks, "Q"),
		reembolsos: NewReembolsoService(api, api, cajas, store, journal, locks, "Q"),
	}
}
