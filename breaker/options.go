package breaker

import (
	"github.com/ceyewan/aegis/clog"
	"github.com/ceyewan/aegis/metrics"
)

// Option 组件初始化选项函数
type Option func(*options)

// StateChangeFunc 状态迁移回调函数类型
//
// 在状态迁移发生后、锁已释放时调用，回调中可以安全读取熔断器。
type StateChangeFunc func(dependency string, from State, to State)

// options 组件初始化选项配置（内部使用，小写）
type options struct {
	logger        clog.Logger
	meter         metrics.Meter
	onStateChange StateChangeFunc
}

// WithLogger 设置 Logger，传入 nil 时使用 clog.Discard()
// 内部会自动添加 namespace: "breaker"
func WithLogger(logger clog.Logger) Option {
	return func(o *options) {
		if logger == nil {
			o.logger = clog.Discard()
		} else {
			o.logger = logger.WithNamespace("breaker")
		}
	}
}

// WithMeter 注入指标 Meter
func WithMeter(meter metrics.Meter) Option {
	return func(o *options) {
		o.meter = meter
	}
}

// WithOnStateChange 设置状态迁移回调
//
// 使用示例:
//
//	brk, _ := breaker.New("openai", cfg,
//		breaker.WithOnStateChange(func(dep string, from, to breaker.State) {
//			logger.Warn("breaker transition", clog.String("dependency", dep))
//		}),
//	)
func WithOnStateChange(fn StateChangeFunc) Option {
	return func(o *options) {
		o.onStateChange = fn
	}
}
