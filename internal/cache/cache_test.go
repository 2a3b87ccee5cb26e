package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func backends(t *testing.T) map[string]Client {
	t.Helper()
	mr := miniredis.RunT(t)

	rc, err := New(context.Background(), Config{Kind: "redis", Addr: mr.Addr(), Prefix: "test:", DefaultTTL: time.Minute})
	require.NoError(t, err)
	t.Cleanup(func() { _ = rc.Close() })

	mc, err := New(context.Background(), Config{Kind: "memory", Prefix: "test:", DefaultTTL: time.Minute})
	require.NoError(t, err)

	return map[string]Client{"memory": mc, "redis": rc}
}

func TestClient_SetGetDelete(t *testing.T) {
	for name, c := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, c.Set(ctx, "k", "v", 0))

			v, err := c.Get(ctx, "k")
			require.NoError(t, err)
			assert.Equal(t, "v", v)

			require.NoError(t, c.Delete(ctx, "k"))
			_, err = c.Get(ctx, "k")
			assert.True(t, IsNotFound(err))
			assert.NoError(t, c.Ping(ctx))
		})
	}
}

func TestClient_TakeIsSingleUse(t *testing.T) {
	for name, c := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, c.Set(ctx, "nonce", "1", time.Minute))

			var wins int32
			var wg sync.WaitGroup
			for i := 0; i < 8; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					if _, err := c.Take(ctx, "nonce"); err == nil {
						atomic.AddInt32(&wins, 1)
					}
				}()
			}
			wg.Wait()
			assert.Equal(t, int32(1), atomic.LoadInt32(&wins))

			_, err := c.Take(ctx, "nonce")
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestMemory_Expiry(t *testing.T) {
	c := NewMemory("", time.Minute)
	ctx := context.Background()
	require.NoError(t, c.Set(ctx, "short", "v", 10*time.Millisecond))

	time.Sleep(30 * time.Millisecond)
	_, err := c.Get(ctx, "short")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRedis_ExpiryAndPrefix(t *testing.T) {
	mr := miniredis.RunT(t)
	c, err := NewRedis(context.Background(), Config{Addr: mr.Addr(), Prefix: "connector:"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	ctx := context.Background()
	require.NoError(t, c.Set(ctx, "n1", "v", time.Second))
	assert.True(t, mr.Exists("connector:n1"))

	mr.FastForward(2 * time.Second)
	_, err = c.Get(ctx, "n1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestNew_Errors(t *testing.T) {
	_, err := New(context.Background(), Config{Kind: "disk"})
	assert.Error(t, err)

	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()
	_, err = New(context.Background(), Config{Kind: "redis", Addr: addr})
	assert.Error(t, err)
}
