package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

type Cache struct {
	RDB    *redis.Client
	Prefix string
}

func New(addr, pass string, db int) *Cache {
	return &Cache{
		RDB:    redis.NewClient(&redis.Options{Addr: addr, Password: pass, DB: db}),
		Prefix: "ai-studio:",
	}
}

func (c *Cache) Ping(ctx context.Context) error { return c.RDB.Ping(ctx).Err() }

func (c *Cache) Close() error { return c.RDB.Close() }

// Hit 固定窗口计数：INCR，首次命中时设置过期
func (c *Cache) Hit(ctx context.Context, key string, window time.Duration) (int64, error) {
	k := c.Prefix + key
	pipe := c.RDB.TxPipeline()
	incr := pipe.Incr(ctx, k)
	pipe.ExpireNX(ctx, k, window)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("cache hit %s: %w", key, err)
	}
	return incr.Val(), nil
}
