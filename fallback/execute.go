package fallback

import (
	"context"
	"fmt"
	"time"

	"github.com/ceyewan/aegis/alert"
	"github.com/ceyewan/aegis/breaker"
	"github.com/ceyewan/aegis/cache"
	"github.com/ceyewan/aegis/clog"
	"github.com/ceyewan/aegis/metrics"
	"github.com/ceyewan/aegis/xerrors"
)

// Execute 按分级策略执行一次请求
//
// 层级顺序固定：缓存 → 熔断保护的主实现 → 备用实现 → 静态模板。
// 缓存、指标、告警的故障都会被吞掉并记录日志，绝不阻断实时层级；
// 只有所有实时层级全部失败时才返回 *AllFailedError。
//
// 设置了 CacheKey 的并发同键请求会被合并为一次执行，避免缓存击穿
// 时主实现被打爆。注意：同一 CacheKey 必须始终对应同一结果类型；
// 合并执行使用首个调用方的 ctx，该调用方取消会使同批其它调用方
// 一并收到取消错误，对取消敏感的调用应留空 CacheKey 退出合并。
func Execute[T any](ctx context.Context, o *Orchestrator, dependency string, st Strategy[T]) (Result[T], error) {
	if st.Primary == nil {
		return Result[T]{}, ErrPrimaryRequired
	}

	if st.CacheKey == "" {
		return executeTiers(ctx, o, dependency, st)
	}

	v, err, _ := o.group.Do(dependency+"\x00"+st.CacheKey, func() (any, error) {
		return executeTiers(ctx, o, dependency, st)
	})
	if err != nil {
		return Result[T]{}, err
	}
	return v.(Result[T]), nil
}

func executeTiers[T any](ctx context.Context, o *Orchestrator, dependency string, st Strategy[T]) (Result[T], error) {
	start := time.Now()

	// 第一层：结果缓存。查找失败只记日志，坏掉的缓存不能挡住实时层级。
	if data, ok := lookupCache(ctx, o, dependency, st); ok {
		return finish(ctx, o, dependency, Result[T]{
			Data:    data,
			Source:  SourceCache,
			Quality: SourceCache.Quality(),
			Latency: time.Since(start),
		}), nil
	}

	// 第二层：经熔断器执行主实现
	brk := o.registry.Get(dependency)
	v, primaryErr := brk.Do(ctx, func(ctx context.Context) (any, error) {
		return st.Primary(ctx)
	})
	if primaryErr == nil {
		// comma-ok 断言：T 为接口类型且主实现合法返回 nil 时，v 是无类型 nil，
		// 强制断言会 panic
		data, _ := v.(T)
		storeResult(ctx, o, dependency, st, data)
		return finish(ctx, o, dependency, Result[T]{
			Data:    data,
			Source:  SourcePrimary,
			Quality: SourcePrimary.Quality(),
			Latency: time.Since(start),
		}), nil
	}

	var openErr *breaker.OpenError
	rejected := xerrors.As(primaryErr, &openErr)
	o.recordPrimaryFailure(ctx, dependency, rejected)
	o.logger.Warn("primary failed, degrading",
		clog.String("dependency", dependency),
		clog.Bool("breaker_rejected", rejected),
		clog.Error(primaryErr))

	// 第三层：备用实现，结果携带主实现的错误信息供排障
	if st.Fallback != nil {
		data, fallbackErr := st.Fallback(ctx)
		if fallbackErr == nil {
			return finish(ctx, o, dependency, Result[T]{
				Data:    data,
				Source:  SourceFallback,
				Quality: SourceFallback.Quality(),
				Latency: time.Since(start),
				Err:     primaryErr.Error(),
			}), nil
		}

		o.logger.Warn("fallback failed, degrading",
			clog.String("dependency", dependency),
			clog.Error(fallbackErr))
		return finalTier(ctx, o, dependency, st, start, primaryErr, fallbackErr)
	}

	return finalTier(ctx, o, dependency, st, start, primaryErr, nil)
}

// finalTier 所有实时层级失败后的兜底：静态模板，或致命错误
func finalTier[T any](ctx context.Context, o *Orchestrator, dependency string, st Strategy[T], start time.Time, primaryErr, fallbackErr error) (Result[T], error) {
	if st.Template != nil {
		data, templateErr := st.Template(ctx)
		if templateErr == nil {
			o.capture(ctx, "serving static template", alert.SeverityMedium, dependency)
			return finish(ctx, o, dependency, Result[T]{
				Data:    data,
				Source:  SourceTemplate,
				Quality: SourceTemplate.Quality(),
				Latency: time.Since(start),
				Err:     fmt.Sprintf("all live strategies failed: %v", primaryErr),
			}), nil
		}
		o.logger.Warn("template failed",
			clog.String("dependency", dependency),
			clog.Error(templateErr))
	}

	o.recordExhausted(ctx, dependency)
	o.capture(ctx, "all strategies exhausted", alert.SeverityHigh, dependency)
	return Result[T]{}, &AllFailedError{
		Dependency:  dependency,
		PrimaryErr:  primaryErr,
		FallbackErr: fallbackErr,
	}
}

// lookupCache 尝试缓存层，优先自定义生产函数，其次编排器的缓存存储
func lookupCache[T any](ctx context.Context, o *Orchestrator, dependency string, st Strategy[T]) (T, bool) {
	var zero T

	if st.Cache != nil {
		data, err := st.Cache(ctx)
		if err == nil {
			return data, true
		}
		o.logger.Debug("cache producer miss",
			clog.String("dependency", dependency),
			clog.Error(err))
		return zero, false
	}

	if st.CacheKey == "" || o.store == nil {
		return zero, false
	}

	var data T
	err := o.store.Get(ctx, cacheKey(dependency, st.CacheKey), &data)
	switch {
	case err == nil:
		return data, true
	case xerrors.Is(err, cache.ErrCacheMiss):
		return zero, false
	default:
		o.logger.Warn("cache lookup failed",
			clog.String("dependency", dependency),
			clog.String("key", st.CacheKey),
			clog.Error(err))
		return zero, false
	}
}

// storeResult 主实现成功后尽力回写缓存，失败只记日志
func storeResult[T any](ctx context.Context, o *Orchestrator, dependency string, st Strategy[T], data T) {
	if st.CacheKey == "" || o.store == nil {
		return
	}
	if err := o.store.Set(ctx, cacheKey(dependency, st.CacheKey), data, st.CacheTTL); err != nil {
		o.logger.Warn("cache write failed",
			clog.String("dependency", dependency),
			clog.String("key", st.CacheKey),
			clog.Error(err))
	}
}

func cacheKey(dependency, key string) string {
	return dependency + ":" + key
}

// finish 记录结果指标后原样返回
func finish[T any](ctx context.Context, o *Orchestrator, dependency string, r Result[T]) Result[T] {
	o.recordResult(ctx, dependency, r.Source, r.Latency)
	return r
}

// recordResult 记录一次成功（含降级）结果的指标
func (o *Orchestrator) recordResult(ctx context.Context, dependency string, source Source, latency time.Duration) {
	if o.meter == nil {
		return
	}
	if counter, e := o.meter.Counter(MetricResults, "Results by source tier"); e == nil && counter != nil {
		counter.Inc(ctx,
			metrics.L(LabelDependency, dependency),
			metrics.L(LabelSource, source.String()))
	}
	if histogram, e := o.meter.Histogram(MetricDuration, "Orchestration duration", metrics.WithUnit("seconds")); e == nil && histogram != nil {
		histogram.Record(ctx, latency.Seconds(), metrics.L(LabelDependency, dependency))
	}
}

// recordPrimaryFailure 记录一次主实现失败
func (o *Orchestrator) recordPrimaryFailure(ctx context.Context, dependency string, rejected bool) {
	if o.meter == nil {
		return
	}
	if counter, e := o.meter.Counter(MetricPrimaryFailures, "Primary failures"); e == nil && counter != nil {
		counter.Inc(ctx,
			metrics.L(LabelDependency, dependency),
			metrics.L(LabelRejected, fmt.Sprintf("%t", rejected)))
	}
}

// recordExhausted 记录一次全层级失败
func (o *Orchestrator) recordExhausted(ctx context.Context, dependency string) {
	if o.meter == nil {
		return
	}
	if counter, e := o.meter.Counter(MetricAllFailed, "Exhausted calls"); e == nil && counter != nil {
		counter.Inc(ctx, metrics.L(LabelDependency, dependency))
	}
}

// capture 上报告警，失败只记日志
func (o *Orchestrator) capture(ctx context.Context, message string, severity alert.Severity, dependency string) {
	event := alert.NewEvent(severity, alert.WithTag("dependency", dependency))
	if err := o.sink.Capture(ctx, message, event); err != nil {
		o.logger.Warn("alert capture failed", clog.Error(err))
	}
}
