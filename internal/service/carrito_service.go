package service

import (
	"context"

	"tallerpos/internal/credential"
	"tallerpos/internal/dto"
	"tallerpos/internal/model"
	"tallerpos/internal/pos"
	"tallerpos/internal/repository"

	"github.com/rs/zerolog/log"
)

// CarritoService drives the cart of the sale in progress on each terminal.
// Every mutation loads the cart, applies one pos.Carrito operation and saves
// it back while holding the terminal's lock.
type CarritoService interface {
	Obtener(ctx context.Context, terminalID string) (*dto.CarritoResponse, error)
	// Escanear looks the term up and adds one unit of the result.
	Escanear(ctx context.Context, cred credential.Credential, terminalID string, req dto.EscanearRequest) (*dto.CarritoMutacionResponse, error)
	CambiarCantidad(ctx context.Context, terminalID string, key model.ItemKey, cantidad int) (*dto.CarritoMutacionResponse, error)
	Quitar(ctx context.Context, terminalID string, key model.ItemKey) (*dto.CarritoResponse, error)
	AsignarCliente(ctx context.Context, cred credential.Credential, terminalID, nit string) (*dto.CarritoResponse, error)
	VincularCliente(ctx context.Context, terminalID string, cl model.Cliente) (*dto.CarritoResponse, error)
	QuitarCliente(ctx context.Context, terminalID string) (*dto.CarritoResponse, error)
	// Cancelar discards the sale in progress.
	Cancelar(ctx context.Context, terminalID string) (*dto.CarritoResponse, error)
}

type carritoService struct {
	store    repository.TerminalStore
	catalogo CatalogoService
	clientes ClienteService
	locks    *TerminalLocks
	symbol   string
}

func NewCarritoService(
	store repository.TerminalStore,
	catalogo CatalogoService,
	clientes ClienteService,
	locks *TerminalLocks,
	symbol string,
) CarritoService {
	return &carritoService{store: store, catalogo: catalogo, clientes: clientes, locks: locks, symbol: symbol}
}

// mutate runs fn on the terminal's cart under its lock and saves the result
// only when fn succeeds.
func (s *carritoService) mutate(ctx context.Context, terminalID string, fn func(c *pos.Carrito) error) (*pos.Carrito, error) {
	unlock := s.locks.Lock(terminalID)
	defer unlock()

	c, err := s.store.LoadCarrito(ctx, terminalID)
	if err != nil {
		return nil, err
	}
	if err := fn(c); err != nil {
		return c, err
	}
	if err := s.store.SaveCarrito(ctx, terminalID, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *carritoService) respond(c *pos.Carrito) *dto.CarritoResponse {
	resp := dto.NewCarritoResponse(c, s.symbol)
	return &resp
}

func (s *carritoService) Obtener(ctx context.Context, terminalID string) (*dto.CarritoResponse, error) {
	c, err := s.store.LoadCarrito(ctx, terminalID)
	if err != nil {
		return nil, err
	}
	return s.respond(c), nil
}

// ── Items ─────────────────────────────────────────────────────────────────────

func (s *carritoService) Escanear(ctx context.Context, cred credential.Credential, terminalID string, req dto.EscanearRequest) (*dto.CarritoMutacionResponse, error) {
	var tipo model.ItemKind
	if req.TipoItem != "" {
		k, err := model.ParseItemKind(req.TipoItem)
		if err != nil {
			return nil, err
		}
		tipo = k
	}

	// The lookup runs outside the terminal lock; the stock it reports is the
	// one the add is checked against.
	item, err := s.catalogo.Buscar(ctx, cred, req.Termino, tipo)
	if err != nil {
		return nil, err
	}

	var linea pos.Linea
	c, err := s.mutate(ctx, terminalID, func(c *pos.Carrito) error {
		var aerr error
		linea, aerr = c.Agregar(item)
		return aerr
	})
	if err != nil {
		log.Debug().Err(err).Str("terminal", terminalID).Str("item", item.Key().String()).Msg("item rechazado")
		return nil, err
	}
	lr := dto.NewLineaResponse(linea, s.symbol)
	return &dto.CarritoMutacionResponse{Linea: &lr, Carrito: *s.respond(c)}, nil
}

func (s *carritoService) CambiarCantidad(ctx context.Context, terminalID string, key model.ItemKey, cantidad int) (*dto.CarritoMutacionResponse, error) {
	var linea pos.Linea
	c, err := s.mutate(ctx, terminalID, func(c *pos.Carrito) error {
		var cerr error
		linea, cerr = c.CambiarCantidad(key, cantidad)
		return cerr
	})
	if err != nil {
		return nil, err
	}
	lr := dto.NewLineaResponse(linea, s.symbol)
	return &dto.CarritoMutacionResponse{Linea: &lr, Carrito: *s.respond(c)}, nil
}

func (s *carritoService) Quitar(ctx context.Context, terminalID string, key model.ItemKey) (*dto.CarritoResponse, error) {
	c, err := s.mutate(ctx, terminalID, func(c *pos.Carrito) error {
		c.Quitar(key)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.respond(c), nil
}

// ── Cliente ───────────────────────────────────────────────────────────────────

func (s *carritoService) AsignarCliente(ctx context.Context, cred credential.Credential, terminalID, nit string) (*dto.CarritoResponse, error) {
	cl, err := s.clientes.BuscarPorNIT(ctx, cred, nit)
	if err != nil {
		return nil, err
	}
	return s.VincularCliente(ctx, terminalID, cl)
}

func (s *carritoService) VincularCliente(ctx context.Context, terminalID string, cl model.Cliente) (*dto.CarritoResponse, error) {
	c, err := s.mutate(ctx, terminalID, func(c *pos.Carrito) error {
		c.AsignarCliente(&cl)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.respond(c), nil
}

func (s *carritoService) QuitarCliente(ctx context.Context, terminalID string) (*dto.CarritoResponse, error) {
	c, err := s.mutate(ctx, terminalID, func(c *pos.Carrito) error {
		if c.Cliente() != nil {
			c.QuitarCliente()
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.respond(c), nil
}

func (s *carritoService) Cancelar(ctx context.Context, terminalID string) (*dto.CarritoResponse, error) {
	c, err := s.mutate(ctx, terminalID, func(c *pos.Carrito) error {
		c.Vaciar()
		return nil
	})
	if err != nil {
		return nil, err
	}
	log.Info().Str("terminal", terminalID).Msg("venta cancelada")
	return s.respond(c), nil
}
