package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"tallerpos/internal/pos"

	"github.com/redis/go-redis/v9"
)

// TerminalStore persists the per-terminal working state between requests:
// the cart of the sale in progress and the refund being staged. Callers
// serialize access per terminal; the store itself only guarantees atomic
// whole-value reads and writes.
type TerminalStore interface {
	// LoadCarrito returns an empty cart when the terminal has none.
	LoadCarrito(ctx context.Context, terminalID string) (*pos.Carrito, error)
	SaveCarrito(ctx context.Context, terminalID string, c *pos.Carrito) error
	// LoadBorrador returns nil when no sale is selected for refund.
	LoadBorrador(ctx context.Context, terminalID string) (*pos.BorradorReembolso, error)
	SaveBorrador(ctx context.Context, terminalID string, b *pos.BorradorReembolso) error
	DeleteBorrador(ctx context.Context, terminalID string) error
}

// kv is the byte-level backend shared by the memory and Redis stores.
type kv interface {
	get(ctx context.Context, key string) ([]byte, bool, error)
	set(ctx context.Context, key string, val []byte, ttl time.Duration) error
	del(ctx context.Context, key string) error
}

type terminalStore struct {
	kv  kv
	ttl time.Duration
}

// NewMemoryTerminalStore keeps state in process memory; used when no Redis
// is configured and in tests. State is lost on restart.
func NewMemoryTerminalStore(ttl time.Duration) TerminalStore {
	return &terminalStore{kv: newMemoryKV(time.Now), ttl: ttl}
}

// NewRedisTerminalStore shares state across service instances. Entries expire
// after ttl of inactivity so abandoned carts do not pile up.
func NewRedisTerminalStore(rdb *redis.Client, ttl time.Duration) TerminalStore {
	return &terminalStore{kv: redisKV{rdb: rdb}, ttl: ttl}
}

func carritoKey(terminalID string) string  { return "terminal:" + terminalID + ":carrito" }
func borradorKey(terminalID string) string { return "terminal:" + terminalID + ":reembolso" }

func (s *terminalStore) LoadCarrito(ctx context.Context, terminalID string) (*pos.Carrito, error) {
	raw, ok, err := s.kv.get(ctx, carritoKey(terminalID))
	if err != nil {
		return nil, fmt.Errorf("load carrito %s: %w", terminalID, err)
	}
	c := pos.NuevoCarrito()
	if !ok {
		return c, nil
	}
	if err := json.Unmarshal(raw, c); err != nil {
		return nil, fmt.Errorf("decode carrito %s: %w", terminalID, err)
	}
	return c, nil
}

func (s *terminalStore) SaveCarrito(ctx context.Context, terminalID string, c *pos.Carrito) error {
	if c.Vacio() && c.Cliente() == nil && c.ClavePendiente() == "" {
		return s.kv.del(ctx, carritoKey(terminalID))
	}
	raw, err := json.Marshal(c)
	if err != nil {
		return err
	}
	return s.kv.set(ctx, carritoKey(terminalID), raw, s.ttl)
}

func (s *terminalStore) LoadBorrador(ctx context.Context, terminalID string) (*pos.BorradorReembolso, error) {
	raw, ok, err := s.kv.get(ctx, borradorKey(terminalID))
	if err != nil {
		return nil, fmt.Errorf("load reembolso %s: %w", terminalID, err)
	}
	if !ok {
		return nil, nil
	}
	b, err := pos.Decode(raw)
	if err != nil {
		return nil, fmt.Errorf("decode reembolso %s: %w", terminalID, err)
	}
	return b, nil
}

func (s *terminalStore) SaveBorrador(ctx context.Context, terminalID string, b *pos.BorradorReembolso) error {
	if b == nil {
		return s.DeleteBorrador(ctx, terminalID)
	}
	raw, err := json.Marshal(b)
	if err != nil {
		return err
	}
	return s.kv.set(ctx, borradorKey(terminalID), raw, s.ttl)
}

func (s *terminalStore) DeleteBorrador(ctx context.Context, terminalID string) error {
	return s.kv.del(ctx, borradorKey(terminalID))
}

// ── Redis ─────────────────────────────────────────────────────────────────────

type redisKV struct{ rdb *redis.Client }

func (r redisKV) get(ctx context.Context, key string) ([]byte, bool, error) {
	b, err := r.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return b, true, nil
}

func (r redisKV) set(ctx context.Context, key string, val []byte, ttl time.Duration) error {
	return r.rdb.Set(ctx, key, val, ttl).Err()
}

func (r redisKV) del(ctx context.Context, key string) error {
	return r.rdb.Del(ctx, key).Err()
}

// ── Memory ────────────────────────────────────────────────────────────────────

type memEntry struct {
	val     []byte
	expires time.Time // zero = never
}

type memoryKV struct {
	mu   sync.Mutex
	data map[string]memEntry
	now  func() time.Time
}

func newMemoryKV(now func() time.Time) *memoryKV {
	return &memoryKV{data: make(map[string]memEntry), now: now}
}

func (m *memoryKV) get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.data[key]
	if !ok {
		return nil, false, nil
	}
	if !e.expires.IsZero() && !m.now().Before(e.expires) {
		delete(m.data, key)
		return nil, false, nil
	}
	return append([]byte(nil), e.val...), true, nil
}

func (m *memoryKV) set(_ context.Context, key string, val []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e := memEntry{val: append([]byte(nil), val...)}
	if ttl > 0 {
		e.expires = m.now().Add(ttl)
	}
	m.data[key] = e
	return nil
}

func (m *memoryKV) del(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}
