package guard

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	autherror "github.com/realtycore/auth-service/internal/errors"
)

func newRedisGuard(t *testing.T) (*RedisGuard, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewRedisGuard(client, DefaultLimits(), zap.NewNop()), mr
}

func TestRedisGuard_RegisterCap(t *testing.T) {
	g, _ := newRedisGuard(t)
	ctx := context.Background()
	addr := "203.0.113.9"

	for i := 0; i < DefaultRegisterCap; i++ {
		require.NoError(t, g.Check(ctx, KindRegister, addr))
		g.Record(ctx, KindRegister, addr)
	}

	err := g.Check(ctx, KindRegister, addr)
	require.Error(t, err)
	assert.True(t, errors.Is(err, autherror.ErrThrottled))

	var throttled *autherror.ThrottledError
	require.True(t, errors.As(err, &throttled))
	assert.Greater(t, throttled.RetryAfter, time.Duration(0))
}

func TestRedisGuard_WindowExpiryResetsCounter(t *testing.T) {
	g, mr := newRedisGuard(t)
	ctx := context.Background()
	addr := "198.51.100.4"

	for i := 0; i < DefaultRegisterCap; i++ {
		g.Record(ctx, KindRegister, addr)
	}
	require.Error(t, g.Check(ctx, KindRegister, addr))

	mr.FastForward(DefaultWindow + time.Second)

	assert.NoError(t, g.Check(ctx, KindRegister, addr))
}

func TestRedisGuard_FailsOpenWhenRedisDown(t *testing.T) {
	g, mr := newRedisGuard(t)
	ctx := context.Background()

	mr.Close()

	assert.NoError(t, g.Check(ctx, KindLogin, "203.0.113.9"))
	g.Record(ctx, KindLogin, "203.0.113.9") // must not panic
}
