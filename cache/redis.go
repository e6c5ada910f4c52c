package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ceyewan/aegis/cache/serializer"
	"github.com/ceyewan/aegis/clog"
	"github.com/ceyewan/aegis/metrics"
	"github.com/ceyewan/aegis/xerrors"
)

type redisCache struct {
	client     *redis.Client
	serializer serializer.Serializer
	prefix     string
	logger     clog.Logger
	meter      metrics.Meter
}

// newRedis 创建 Redis 缓存实例
func newRedis(cfg *Config, opt *options) (Cache, error) {
	s, err := serializer.New(cfg.Serializer)
	if err != nil {
		return nil, err
	}

	logger := opt.logger
	if logger == nil {
		logger = clog.Discard()
	}

	return &redisCache{
		client:     opt.redisClient,
		serializer: s,
		prefix:     cfg.Prefix,
		logger:     logger,
		meter:      opt.meter,
	}, nil
}

func (c *redisCache) key(key string) string {
	return c.prefix + key
}

func (c *redisCache) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	data, err := c.serializer.Marshal(value)
	if err != nil {
		return xerrors.Wrap(err, "cache: marshal value")
	}
	if ttl < 0 {
		ttl = 0
	}
	if err := c.client.Set(ctx, c.key(key), data, ttl).Err(); err != nil {
		return err
	}
	recordWrite(ctx, c.meter, DriverRedis)
	return nil
}

func (c *redisCache) Get(ctx context.Context, key string, dest any) error {
	data, err := c.client.Get(ctx, c.key(key)).Bytes()
	if err != nil {
		if xerrors.Is(err, redis.Nil) {
			recordLookup(ctx, c.meter, DriverRedis, false)
			return ErrCacheMiss
		}
		return err
	}
	recordLookup(ctx, c.meter, DriverRedis, true)
	return c.serializer.Unmarshal(data, dest)
}

func (c *redisCache) Delete(ctx context.Context, key string) error {
	return c.client.Del(ctx, c.key(key)).Err()
}

func (c *redisCache) Has(ctx context.Context, key string) (bool, error) {
	n, err := c.client.Exists(ctx, c.key(key)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (c *redisCache) Close() error {
	return c.client.Close()
}
