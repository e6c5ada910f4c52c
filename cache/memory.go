package cache

import (
	"context"
	"reflect"
	"time"

	"github.com/maypok86/otter/v2"
	"github.com/maypok86/otter/v2/stats"

	"github.com/ceyewan/aegis/clog"
	"github.com/ceyewan/aegis/metrics"
	"github.com/ceyewan/aegis/xerrors"
)

// defaultTTL 未指定 TTL 时使用的过期时间（100 年，模拟永久）
const defaultTTL = 24 * 365 * 100 * time.Hour

type memoryCache struct {
	cache  *otter.Cache[string, any]
	logger clog.Logger
	meter  metrics.Meter
}

// newMemory 创建内存缓存实例
func newMemory(cfg *Config, opt *options) (Cache, error) {
	capacity := cfg.Capacity
	if capacity <= 0 {
		capacity = 10000
	}

	logger := opt.logger
	if logger == nil {
		logger = clog.Discard()
	}

	// 写入过期策略（与 Redis TTL 语义一致）：
	// 过期时间从写入开始计算，读取不重置 TTL，
	// 具体 TTL 在 Set 时通过 SetExpiresAfter 覆盖
	c, err := otter.New(&otter.Options[string, any]{
		MaximumSize:      capacity,
		StatsRecorder:    stats.NewCounter(),
		ExpiryCalculator: otter.ExpiryWriting[string, any](defaultTTL),
	})
	if err != nil {
		return nil, xerrors.Wrap(err, "cache: failed to build otter cache")
	}

	return &memoryCache{
		cache:  c,
		logger: logger,
		meter:  opt.meter,
	}, nil
}

func (c *memoryCache) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	c.cache.Set(key, value)
	if ttl > 0 {
		c.cache.SetExpiresAfter(key, ttl)
	}
	recordWrite(ctx, c.meter, DriverMemory)
	return nil
}

func (c *memoryCache) Get(ctx context.Context, key string, dest any) error {
	val, ok := c.cache.GetIfPresent(key)
	recordLookup(ctx, c.meter, DriverMemory, ok)
	if !ok {
		return ErrCacheMiss
	}
	return assignValue(val, dest)
}

func (c *memoryCache) Delete(ctx context.Context, key string) error {
	c.cache.Invalidate(key)
	return nil
}

func (c *memoryCache) Has(ctx context.Context, key string) (bool, error) {
	_, ok := c.cache.GetIfPresent(key)
	return ok, nil
}

func (c *memoryCache) Close() error {
	return nil
}

// assignValue 将缓存中的原始对象赋值给 dest 指向的内容
func assignValue(val any, dest any) error {
	destValue := reflect.ValueOf(dest)
	if destValue.Kind() != reflect.Pointer || destValue.IsNil() {
		return xerrors.New("cache: dest must be a non-nil pointer")
	}

	elem := destValue.Elem()
	srcValue := reflect.ValueOf(val)
	if !srcValue.IsValid() {
		elem.Set(reflect.Zero(elem.Type()))
		return nil
	}
	if !srcValue.Type().AssignableTo(elem.Type()) {
		return xerrors.Newf("cache: cannot assign %s to %s", srcValue.Type(), elem.Type())
	}

	elem.Set(srcValue)
	return nil
}
