package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"tallerpos/internal/backend"
	"tallerpos/internal/cache"
	"tallerpos/internal/credential"
	"tallerpos/internal/model"

	"github.com/rs/zerolog/log"
)

// CatalogoService resolves a scanned code or typed fragment to one catalog item.
// The matching itself is the backend's; this layer only normalizes the term,
// caches hits briefly and turns a miss into ErrProductoNoEncontrado.
// Only items without stock control are cached: the cart's stock guard must
// always see the backend's current stock.
type CatalogoService interface {
	Buscar(ctx context.Context, cred credential.Credential, termino string, tipo model.ItemKind) (model.ItemCatalogo, error)
}

type catalogoService struct {
	api   CatalogoAPI
	cache cache.LookupCache
	ttl   time.Duration
}

func NewCatalogoService(api CatalogoAPI, c cache.LookupCache, ttl time.Duration) CatalogoService {
	if c == nil {
		c = cache.NoopLookupCache{}
	}
	return &catalogoService{api: api, cache: c, ttl: ttl}
}

func (s *catalogoService) Buscar(ctx context.Context, cred credential.Credential, termino string, tipo model.ItemKind) (model.ItemCatalogo, error) {
	termino = strings.TrimSpace(termino)
	if termino == "" {
		return model.ItemCatalogo{}, ErrTerminoVacio
	}

	key := cache.LookupKey(termino, tipo)
	if item, ok, err := s.cache.Get(ctx, key); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("lookup cache: lectura fallida")
	} else if ok && !item.Tipo.ControlaStock() {
		return *item, nil
	}

	item, err := s.api.BuscarItem(ctx, cred, termino, tipo)
	if errors.Is(err, backend.ErrNotFound) {
		return model.ItemCatalogo{}, ErrProductoNoEncontrado
	}
	if err != nil {
		return model.ItemCatalogo{}, err
	}

	if item.Tipo.ControlaStock() {
		return item, nil
	}
	if err := s.cache.Set(ctx, key, item, s.ttl); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("lookup cache: escritura fallida")
	}
	return item, nil
}
