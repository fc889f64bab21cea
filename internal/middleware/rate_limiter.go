package middleware

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"tallerpos/internal/apierror"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// ── Rate limiter ──────────────────────────────────────────────────────────────

// rateEntry tracks request counts per client within a fixed window.
type rateEntry struct {
	count     int
	windowEnd time.Time
	mu        sync.Mutex
}

// RateLimiter is a fixed-window limiter keyed by a request attribute
// (client IP, terminal id).
type RateLimiter struct {
	limit  int
	window time.Duration
	key    func(c *gin.Context) string
	now    func() time.Time

	mu      sync.Mutex
	entries map[string]*rateEntry
}

func NewRateLimiter(limit int, window time.Duration, key func(c *gin.Context) string) *RateLimiter {
	if key == nil {
		key = func(c *gin.Context) string { return c.ClientIP() }
	}
	return &RateLimiter{
		limit:   limit,
		window:  window,
		key:     key,
		now:     time.Now,
		entries: make(map[string]*rateEntry),
	}
}

// ByTerminal keys on X-Terminal-ID, falling back to the client IP.
func ByTerminal(c *gin.Context) string {
	if id := c.GetHeader(TerminalIDHeader); id != "" {
		return "t:" + id
	}
	return "ip:" + c.ClientIP()
}

func (l *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		k := l.key(c)

		l.mu.Lock()
		entry, exists := l.entries[k]
		if !exists {
			entry = &rateEntry{}
			l.entries[k] = entry
		}
		l.mu.Unlock()

		entry.mu.Lock()
		now := l.now()
		if now.After(entry.windowEnd) {
			entry.count = 0
			entry.windowEnd = now.Add(l.window)
		}
		entry.count++
		over := entry.count > l.limit
		retry := entry.windowEnd.Sub(now)
		entry.mu.Unlock()

		if over {
			c.Header("Retry-After", strconv.Itoa(int(retry.Seconds())+1))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, apierror.New("Demasiadas solicitudes. Intente nuevamente en un momento."))
			return
		}
		c.Next()
	}
}

// ── Purge ─────────────────────────────────────────────────────────────────────
// Expired entries are removed periodically so keys that never return do not
// accumulate.

const purgeInterval = 5 * time.Minute

// Run purges expired entries until ctx is done.
func (l *RateLimiter) Run(ctx context.Context) {
	ticker := time.NewTicker(purgeInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := l.purge(); n > 0 {
				log.Debug().Int("purged", n).Int("remaining", l.size()).Msg("rate limiter purged")
			}
		}
	}
}

func (l *RateLimiter) purge() int {
	now := l.now()
	l.mu.Lock()
	defer l.mu.Unlock()

	purged := 0
	for k, entry := range l.entries {
		entry.mu.Lock()
		if now.After(entry.windowEnd) {
			delete(l.entries, k)
			purged++
		}
		entry.mu.Unlock()
	}
	return purged
}

func (l *RateLimiter) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}
