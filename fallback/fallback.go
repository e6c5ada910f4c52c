// Package fallback 提供面向外部依赖的分级降级编排器。
//
// 一次请求按固定顺序尝试四个层级：结果缓存 → 经熔断器保护的主实现 →
// 备用实现 → 静态模板。每个层级的结果都带有来源标记和质量分，
// 业务方据此决定是否接受降级数据。
//
// 基本使用：
//
//	orch, _ := fallback.NewOrchestrator(registry,
//	    fallback.WithLogger(logger),
//	    fallback.WithCache(store))
//
//	result, err := fallback.Execute(ctx, orch, "openai", fallback.Strategy[string]{
//	    CacheKey: "summary:" + articleID,
//	    CacheTTL: 10 * time.Minute,
//	    Primary:  func(ctx context.Context) (string, error) { return aiSummary(ctx, articleID) },
//	    Fallback: func(ctx context.Context) (string, error) { return extractLead(ctx, articleID) },
//	    Template: func(ctx context.Context) (string, error) { return defaultSummary, nil },
//	})
package fallback

import (
	"context"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/ceyewan/aegis/alert"
	"github.com/ceyewan/aegis/breaker"
	"github.com/ceyewan/aegis/cache"
	"github.com/ceyewan/aegis/clog"
	"github.com/ceyewan/aegis/metrics"
)

// Source 结果来源层级
type Source int

const (
	// SourcePrimary 主实现直接返回
	SourcePrimary Source = iota
	// SourceCache 结果缓存命中
	SourceCache
	// SourceFallback 备用实现返回
	SourceFallback
	// SourceTemplate 静态模板兜底
	SourceTemplate
)

// String 返回来源的可读名称
func (s Source) String() string {
	switch s {
	case SourcePrimary:
		return "primary"
	case SourceCache:
		return "cache"
	case SourceFallback:
		return "fallback"
	case SourceTemplate:
		return "template"
	default:
		return "unknown"
	}
}

// Quality 返回该来源的固定质量分
//
// 质量分是策略常量而非实测指标，表达"业务方应在多大程度上信任这份数据"。
func (s Source) Quality() float64 {
	switch s {
	case SourcePrimary:
		return 1.0
	case SourceCache:
		return 0.9
	case SourceFallback:
		return 0.7
	case SourceTemplate:
		return 0.5
	default:
		return 0
	}
}

// Producer 单个层级的生产函数
//
// 与熔断器包裹的操作同构：零参调用，返回结果或错误。
type Producer[T any] func(ctx context.Context) (T, error)

// Strategy 一次请求的分级策略
//
// Primary 必填，其余层级缺省时直接跳过。
type Strategy[T any] struct {
	// CacheKey 结果缓存键，为空时跳过缓存层（含回写）
	CacheKey string

	// CacheTTL 主实现成功后回写缓存的过期时间，<= 0 时使用缓存默认值
	CacheTTL time.Duration

	// Cache 自定义缓存查找，设置后优先于编排器的缓存存储
	Cache Producer[T]

	// Primary 主实现，经该依赖的熔断器执行
	Primary Producer[T]

	// Fallback 备用实现，主实现失败（含熔断拒绝）后执行
	Fallback Producer[T]

	// Template 静态模板，所有实时层级失败后的兜底
	Template Producer[T]
}

// Result 一次编排调用的结果
type Result[T any] struct {
	// Data 结果数据
	Data T

	// Source 结果来源层级
	Source Source

	// Quality 来源对应的质量分
	Quality float64

	// Latency 本次调用总耗时
	Latency time.Duration

	// Err 降级原因说明（仅降级结果携带，如主实现的错误信息）
	Err string
}

// Orchestrator 分级降级编排器
//
// 一个进程通常只需要一个实例，按依赖名路由到对应的熔断器。
// 并发安全。
type Orchestrator struct {
	registry *breaker.Registry
	store    cache.Cache
	sink     alert.Sink
	logger   clog.Logger
	meter    metrics.Meter
	group    singleflight.Group
}

// NewOrchestrator 创建编排器
//
// registry 必填，缓存存储、日志、指标、告警均通过 Option 注入。
func NewOrchestrator(registry *breaker.Registry, opts ...Option) (*Orchestrator, error) {
	if registry == nil {
		return nil, ErrRegistryNil
	}

	o := &Orchestrator{
		registry: registry,
		sink:     alert.Discard(),
		logger:   clog.Discard(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o, nil
}
