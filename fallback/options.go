package fallback

import (
	"github.com/ceyewan/aegis/alert"
	"github.com/ceyewan/aegis/cache"
	"github.com/ceyewan/aegis/clog"
	"github.com/ceyewan/aegis/metrics"
)

// Option 编排器构造选项
type Option func(*Orchestrator)

// WithLogger 注入日志器，自动添加 fallback 命名空间
func WithLogger(logger clog.Logger) Option {
	return func(o *Orchestrator) {
		if logger == nil {
			logger = clog.Discard()
		}
		o.logger = logger.WithNamespace("fallback")
	}
}

// WithMeter 注入指标收集器
func WithMeter(meter metrics.Meter) Option {
	return func(o *Orchestrator) {
		o.meter = meter
	}
}

// WithCache 注入结果缓存存储
//
// 未注入时策略中的 CacheKey 不生效，只有自定义 Cache 生产函数会被调用。
func WithCache(store cache.Cache) Option {
	return func(o *Orchestrator) {
		o.store = store
	}
}

// WithAlertSink 注入告警下沉，用于上报降级到模板层和全部失败的事件
func WithAlertSink(sink alert.Sink) Option {
	return func(o *Orchestrator) {
		if sink == nil {
			sink = alert.Discard()
		}
		o.sink = sink
	}
}
