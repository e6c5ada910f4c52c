// Package monitor 提供熔断器注册表的周期性巡检。
//
// Monitor 在独立的 goroutine 中按固定间隔采集所有熔断器的快照，
// 输出健康日志和指标，并在熔断器状态发生恶化迁移时上报告警。
// 它是纯观测组件：只读快照，从不改变任何熔断器的状态。
//
// 基本使用：
//
//	mon, _ := monitor.New(registry, &monitor.Config{Interval: 30 * time.Second},
//	    monitor.WithLogger(logger),
//	    monitor.WithAlertSink(sink))
//	mon.Start()
//	defer mon.Stop()
package monitor

import (
	"time"

	"github.com/ceyewan/aegis/breaker"
	"github.com/ceyewan/aegis/xerrors"
)

// 配置默认值
const defaultInterval = 30 * time.Second

var (
	// ErrRegistryNil 未提供熔断器注册表
	ErrRegistryNil = xerrors.New("monitor: registry is nil")

	// ErrInvalidInterval 采样间隔非法
	ErrInvalidInterval = xerrors.New("monitor: interval must be positive")
)

// Monitor 巡检器接口
type Monitor interface {
	// Start 启动采样循环，重复调用无副作用
	Start()

	// Stop 停止采样循环并等待退出，未启动时调用安全
	Stop()

	// Running 返回采样循环是否在运行
	Running() bool
}

// Config 巡检配置
type Config struct {
	// Interval 采样间隔，默认 30s
	Interval time.Duration `json:"interval" yaml:"interval"`
}

func (c *Config) validate() error {
	if c.Interval == 0 {
		c.Interval = defaultInterval
	}
	if c.Interval < 0 {
		return ErrInvalidInterval
	}
	return nil
}

// New 创建巡检器
//
// cfg 为 nil 时使用默认配置。创建后需显式调用 Start 才开始采样。
func New(registry *breaker.Registry, cfg *Config, opts ...Option) (Monitor, error) {
	if registry == nil {
		return nil, ErrRegistryNil
	}
	if cfg == nil {
		cfg = &Config{}
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return newMonitor(registry, cfg.Interval, opts...), nil
}
