package monitor

import (
	"github.com/ceyewan/aegis/alert"
	"github.com/ceyewan/aegis/clog"
	"github.com/ceyewan/aegis/metrics"
)

// Option 巡检器构造选项
type Option func(*resilienceMonitor)

// WithLogger 注入日志器，自动添加 monitor 命名空间
func WithLogger(logger clog.Logger) Option {
	return func(m *resilienceMonitor) {
		if logger == nil {
			logger = clog.Discard()
		}
		m.logger = logger.WithNamespace("monitor")
	}
}

// WithMeter 注入指标收集器
func WithMeter(meter metrics.Meter) Option {
	return func(m *resilienceMonitor) {
		m.meter = meter
	}
}

// WithAlertSink 注入告警下沉，状态恶化迁移时上报
func WithAlertSink(sink alert.Sink) Option {
	return func(m *resilienceMonitor) {
		if sink == nil {
			sink = alert.Discard()
		}
		m.sink = sink
	}
}
