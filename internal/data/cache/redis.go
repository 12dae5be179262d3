package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/arbor/internal/observability"
	"github.com/yungbote/arbor/internal/platform/logger"
)

const (
	keyPrefix = "arbor:tree:"
	genKey    = keyPrefix + "gen"
)

type redisCache struct {
	log *logger.Logger
	rdb *goredis.Client
	ttl time.Duration
}

// NewRedisCache connects to addr and verifies the connection before use.
func NewRedisCache(log *logger.Logger, addr string, ttl time.Duration) (TreeCache, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return nil, fmt.Errorf("missing redis address")
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &redisCache{
		log: log.With("service", "RedisTreeCache"),
		rdb: rdb,
		ttl: ttl,
	}, nil
}

func (c *redisCache) generation(ctx context.Context) (int64, error) {
	gen, err := c.rdb.Get(ctx, genKey).Int64()
	if errors.Is(err, goredis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return gen, nil
}

func (c *redisCache) entryKey(gen int64, key string) string {
	return fmt.Sprintf("%sg%d:%s", keyPrefix, gen, key)
}

func (c *redisCache) Get(ctx context.Context, key string, dest any) (bool, error) {
	gen, err := c.generation(ctx)
	if err != nil {
		return false, err
	}
	raw, err := c.rdb.Get(ctx, c.entryKey(gen, key)).Bytes()
	if errors.Is(err, goredis.Nil) {
		observability.Current().ObserveCache("get", "miss")
		return false, nil
	}
	if err != nil {
		observability.Current().ObserveCache("get", "error")
		return false, err
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		c.log.Warn("bad cache payload", "key", key, "error", err)
		observability.Current().ObserveCache("get", "decode_error")
		return false, nil
	}
	observability.Current().ObserveCache("get", "hit")
	return true, nil
}

func (c *redisCache) Set(ctx context.Context, key string, val any) error {
	gen, err := c.generation(ctx)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(val)
	if err != nil {
		return err
	}
	observability.Current().ObserveCache("set", "ok")
	return c.rdb.Set(ctx, c.entryKey(gen, key), raw, c.ttl).Err()
}

func (c *redisCache) Invalidate(ctx context.Context) error {
	// Old-generation entries age out through the TTL.
	observability.Current().ObserveCache("invalidate", "ok")
	return c.rdb.Incr(ctx, genKey).Err()
}

func (c *redisCache) Close() error {
	if c == nil || c.rdb == nil {
		return nil
	}
	return c.rdb.Close()
}
