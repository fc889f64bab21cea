// Package cache holds short-lived read-through caches in front of the backend.
package cache

import (
	"context"
	"strings"
	"time"

	"tallerpos/internal/model"
)

// LookupCache caches catalog lookups by (kind hint, term). Only hits are
// cached: a miss must always go back to the backend.
type LookupCache interface {
	Get(ctx context.Context, key string) (*model.ItemCatalogo, bool, error)
	Set(ctx context.Context, key string, item model.ItemCatalogo, ttl time.Duration) error
}

// LookupKey normalizes a search so "CASCO " and "casco" share an entry.
func LookupKey(termino string, tipo model.ItemKind) string {
	t := strings.ToLower(strings.TrimSpace(termino))
	if tipo == "" {
		return "lookup:*:" + t
	}
	return "lookup:" + string(tipo) + ":" + t
}

type NoopLookupCache struct{}

func (NoopLookupCache) Get(_ context.Context, _ string) (*model.ItemCatalogo, bool, error) {
	return nil, false, nil
}

func (NoopLookupCache) Set(_ context.Context, _ string, _ model.ItemCatalogo, _ time.Duration) error {
	return nil
}
