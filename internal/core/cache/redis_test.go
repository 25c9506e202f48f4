package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 需要真实 Redis：REDIS_ADDR=127.0.0.1:6379 go test ./internal/core/cache
func TestCache_Hit(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}
	c := New(addr, "", 0)
	defer c.Close()
	ctx := context.Background()
	require.NoError(t, c.Ping(ctx))

	key := "test:" + uuid.NewString()
	for want := int64(1); want <= 3; want++ {
		n, err := c.Hit(ctx, key, time.Minute)
		require.NoError(t, err)
		assert.Equal(t, want, n)
	}
	ttl, err := c.RDB.TTL(ctx, c.Prefix+key).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))
	assert.LessOrEqual(t, ttl, time.Minute)
}

func TestCache_HitUnreachable(t *testing.T) {
	c := New("127.0.0.1:1", "", 0)
	defer c.Close()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	_, err := c.Hit(ctx, "k", time.Minute)
	assert.Error(t, err)
}
