package guard

import (
	"context"
	"sync"
	"time"

	autherror "github.com/realtycore/auth-service/internal/errors"
)

type bucket struct {
	count       int
	windowStart time.Time
}

// MemoryGuard keeps fixed-window counters in a mutex-protected map. It is
// the default backend when no Redis URL is configured.
type MemoryGuard struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	limits  Limits
	now     func() time.Time
}

func NewMemoryGuard(limits Limits) *MemoryGuard {
	return &MemoryGuard{
		buckets: make(map[string]*bucket),
		limits:  limits,
		now:     time.Now,
	}
}

func (g *MemoryGuard) Check(_ context.Context, kind Kind, addr string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	b, ok := g.buckets[key(kind, addr)]
	if !ok {
		return nil
	}

	now := g.now()
	windowEnd := b.windowStart.Add(g.limits.Window)
	if !now.Before(windowEnd) {
		// Window elapsed, counter resets on the next Record.
		return nil
	}

	if b.count >= g.limits.capFor(kind) {
		return &autherror.ThrottledError{RetryAfter: windowEnd.Sub(now)}
	}
	return nil
}

func (g *MemoryGuard) Record(_ context.Context, kind Kind, addr string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	k := key(kind, addr)
	now := g.now()

	b, ok := g.buckets[k]
	if !ok || !now.Before(b.windowStart.Add(g.limits.Window)) {
		g.buckets[k] = &bucket{count: 1, windowStart: now}
		return
	}
	b.count++
}
