package guard

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	autherror "github.com/realtycore/auth-service/internal/errors"
)

func newTestGuard() (*MemoryGuard, *time.Time) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	g := NewMemoryGuard(DefaultLimits())
	g.now = func() time.Time { return now }
	return g, &now
}

func TestMemoryGuard_RegisterCap(t *testing.T) {
	g, _ := newTestGuard()
	ctx := context.Background()
	addr := "203.0.113.9"

	for i := 0; i < DefaultRegisterCap; i++ {
		require.NoError(t, g.Check(ctx, KindRegister, addr), "attempt %d should be allowed", i+1)
		g.Record(ctx, KindRegister, addr)
	}

	// The 6th attempt within the window is throttled.
	err := g.Check(ctx, KindRegister, addr)
	require.Error(t, err)
	assert.True(t, errors.Is(err, autherror.ErrThrottled))

	var throttled *autherror.ThrottledError
	require.True(t, errors.As(err, &throttled))
	assert.Greater(t, throttled.RetryAfter, time.Duration(0))
}

func TestMemoryGuard_LoginCapHigherThanRegister(t *testing.T) {
	g, _ := newTestGuard()
	ctx := context.Background()
	addr := "203.0.113.9"

	for i := 0; i < DefaultLoginCap; i++ {
		require.NoError(t, g.Check(ctx, KindLogin, addr))
		g.Record(ctx, KindLogin, addr)
	}

	err := g.Check(ctx, KindLogin, addr)
	assert.True(t, errors.Is(err, autherror.ErrThrottled))
}

func TestMemoryGuard_WindowExpiryResetsCounter(t *testing.T) {
	g, now := newTestGuard()
	ctx := context.Background()
	addr := "198.51.100.4"

	for i := 0; i < DefaultRegisterCap; i++ {
		g.Record(ctx, KindRegister, addr)
	}
	require.Error(t, g.Check(ctx, KindRegister, addr))

	*now = now.Add(DefaultWindow + time.Second)

	assert.NoError(t, g.Check(ctx, KindRegister, addr))
	g.Record(ctx, KindRegister, addr)
	assert.NoError(t, g.Check(ctx, KindRegister, addr))
}

func TestMemoryGuard_KindsAndAddressesAreIndependent(t *testing.T) {
	g, _ := newTestGuard()
	ctx := context.Background()

	for i := 0; i < DefaultRegisterCap; i++ {
		g.Record(ctx, KindRegister, "203.0.113.9")
	}

	assert.Error(t, g.Check(ctx, KindRegister, "203.0.113.9"))
	assert.NoError(t, g.Check(ctx, KindLogin, "203.0.113.9"))
	assert.NoError(t, g.Check(ctx, KindRegister, "203.0.113.10"))
}

func TestMemoryGuard_ConcurrentRecords(t *testing.T) {
	g := NewMemoryGuard(Limits{Window: time.Minute, RegisterCap: 5, LoginCap: 10})
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			g.Record(ctx, KindLogin, "203.0.113.9")
		}()
	}
	wg.Wait()

	g.mu.Lock()
	count := g.buckets[key(KindLogin, "203.0.113.9")].count
	g.mu.Unlock()
	assert.Equal(t, 50, count)
}
