// Package cache 提供降级结果缓存组件，支持内存和 Redis 两种驱动。
//
// cache 是 Aegis 编排层的可选协作组件：主调用成功后写入结果，
// 主依赖不可用时编排器优先从缓存返回降级数据。编排器将缓存视为
// 不透明的 KV 存储，缓存不可用时被容忍（日志记录，不阻塞调用链路）。
//
// 基本使用：
//
//	// 内存缓存
//	store, _ := cache.New(&cache.Config{Driver: cache.DriverMemory}, cache.WithLogger(logger))
//
//	// Redis 缓存
//	store, _ := cache.New(&cache.Config{
//	    Driver:     cache.DriverRedis,
//	    Prefix:     "aegis:",
//	    Serializer: "msgpack",
//	}, cache.WithRedisClient(client))
//
//	err := store.Set(ctx, "seo:keywords:golang", result, 10*time.Minute)
//
//	var cached AnalysisResult
//	err = store.Get(ctx, "seo:keywords:golang", &cached)
package cache

import (
	"context"
	"time"

	"github.com/ceyewan/aegis/xerrors"
)

// 支持的驱动
const (
	DriverMemory = "memory"
	DriverRedis  = "redis"
)

// 错误定义
var (
	// ErrCacheMiss 缓存未命中
	ErrCacheMiss = xerrors.New("cache: miss")

	// ErrConfigNil 配置为空
	ErrConfigNil = xerrors.New("cache: config is nil")

	// ErrRedisClientNil Redis 驱动缺少客户端
	ErrRedisClientNil = xerrors.New("cache: redis client is required, use WithRedisClient")
)

// Cache 定义了结果缓存的核心能力
type Cache interface {
	// Set 写入键值，ttl <= 0 时表示不过期
	Set(ctx context.Context, key string, value any, ttl time.Duration) error

	// Get 读取键值到 dest（必须为指针），未命中返回 ErrCacheMiss
	Get(ctx context.Context, key string, dest any) error

	// Delete 删除键
	Delete(ctx context.Context, key string) error

	// Has 判断键是否存在
	Has(ctx context.Context, key string) (bool, error)

	// Close 释放底层资源
	Close() error
}

// Config 缓存配置
type Config struct {
	// Driver 驱动类型 (memory|redis)，默认 memory
	Driver string `json:"driver" yaml:"driver"`

	// Prefix 键前缀，仅 redis 驱动使用
	Prefix string `json:"prefix" yaml:"prefix"`

	// Serializer 序列化器 (json|msgpack)，仅 redis 驱动使用，默认 json
	Serializer string `json:"serializer" yaml:"serializer"`

	// Capacity 内存驱动的最大条目数，默认 10000
	Capacity int `json:"capacity" yaml:"capacity"`
}

// New 根据配置创建缓存实例
func New(cfg *Config, opts ...Option) (Cache, error) {
	if cfg == nil {
		return nil, ErrConfigNil
	}

	opt := options{}
	for _, o := range opts {
		o(&opt)
	}

	switch cfg.Driver {
	case DriverMemory, "":
		return newMemory(cfg, &opt)
	case DriverRedis:
		if opt.redisClient == nil {
			return nil, ErrRedisClientNil
		}
		return newRedis(cfg, &opt)
	default:
		return nil, xerrors.Newf("cache: unsupported driver: %s", cfg.Driver)
	}
}
