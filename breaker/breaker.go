// Package breaker 提供了熔断器组件，用于隔离不可靠的外部依赖。
//
// breaker 是 Aegis 韧性层的核心组件，它提供了：
// - 按依赖独立的三态熔断状态机（Closed / Open / HalfOpen）
// - 连续失败计数触发熔断，恢复超时后半开探测
// - 半开状态下单探测串行化，避免探测风暴
// - 按依赖名管理熔断器的 Registry
// - gRPC Unary Interceptor 无侵入集成
//
// ## 基本使用
//
//	brk, _ := breaker.New("openai", &breaker.Config{
//		FailureThreshold: 3,
//		RecoveryTimeout:  60 * time.Second,
//		SuccessThreshold: 2,
//	}, breaker.WithLogger(logger))
//
//	result, err := brk.Do(ctx, func(ctx context.Context) (any, error) {
//		return client.Complete(ctx, prompt)
//	})
//
// ## 配合 Registry
//
//	reg, _ := breaker.NewRegistry(nil, breaker.WithLogger(logger))
//	brk := reg.Get("search-api")
package breaker

import (
	"context"
	"time"

	"github.com/ceyewan/aegis/clog"
)

// ========================================
// 接口定义 (Interface Definitions)
// ========================================

// Operation 是熔断器包裹的调用单元
// 一次出站调用：返回结果或错误，超时控制由操作自身负责
type Operation func(ctx context.Context) (any, error)

// Breaker 熔断器核心接口
//
// 一个 Breaker 实例对应一个外部依赖，由该依赖的所有并发调用方共享。
type Breaker interface {
	// Do 执行受熔断保护的操作
	//
	// Open 状态且未到恢复时间时返回 *OpenError，且不会调用 op。
	// 操作自身的错误原样透传，调用方可以检查原始失败原因。
	Do(ctx context.Context, op Operation) (any, error)

	// State 返回当前熔断器状态
	State() State

	// Metrics 返回所有计数器和状态的不可变快照
	Metrics() Metrics

	// Reset 管理性复位：回到 Closed 并清零全部计数器（包括累计计数）
	Reset()

	// Name 返回该熔断器守护的依赖名
	Name() string
}

// State 熔断器状态
type State int

const (
	// StateClosed 闭合状态（正常放行）
	StateClosed State = iota
	// StateOpen 打开状态（熔断中，快速失败）
	StateOpen
	// StateHalfOpen 半开状态（探测恢复）
	StateHalfOpen
)

// String 返回状态的字符串表示
func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half_open"
	default:
		return "unknown"
	}
}

// ========================================
// 配置定义 (Configuration)
// ========================================

// Config 熔断器配置，构造后不可变
type Config struct {
	// FailureThreshold Closed 状态下触发熔断的连续失败次数（默认：5）
	FailureThreshold int `json:"failure_threshold" yaml:"failure_threshold" mapstructure:"failure_threshold"`

	// RecoveryTimeout Open 状态持续时间（默认：60s）
	// 超时后允许一次半开探测
	RecoveryTimeout time.Duration `json:"recovery_timeout" yaml:"recovery_timeout" mapstructure:"recovery_timeout"`

	// SuccessThreshold HalfOpen 状态下闭合所需的连续成功次数（默认：2）
	SuccessThreshold int `json:"success_threshold" yaml:"success_threshold" mapstructure:"success_threshold"`

	// MonitoringPeriod 监控采样周期（默认：30s）
	// 仅供 monitor 组件读取，熔断器自身不使用
	MonitoringPeriod time.Duration `json:"monitoring_period" yaml:"monitoring_period" mapstructure:"monitoring_period"`
}

// validate 校验配置并填充默认值（内部使用）
func (c *Config) validate() error {
	if c.FailureThreshold < 0 || c.SuccessThreshold < 0 {
		return ErrInvalidThreshold
	}
	if c.RecoveryTimeout < 0 || c.MonitoringPeriod < 0 {
		return ErrInvalidTimeout
	}
	if c.FailureThreshold == 0 {
		c.FailureThreshold = 5
	}
	if c.RecoveryTimeout == 0 {
		c.RecoveryTimeout = 60 * time.Second
	}
	if c.SuccessThreshold == 0 {
		c.SuccessThreshold = 2
	}
	if c.MonitoringPeriod == 0 {
		c.MonitoringPeriod = 30 * time.Second
	}
	return nil
}

// clone 返回配置副本，避免调用方后续修改影响熔断器
func (c *Config) clone() *Config {
	cp := *c
	return &cp
}

// ========================================
// 指标快照 (Metrics Snapshot)
// ========================================

// Metrics 熔断器指标快照
//
// FailureCount 只在 Closed/HalfOpen 的判定中有意义；
// SuccessCount 只在 HalfOpen 中有意义；
// TotalRequests/TotalFailures 为累计值，仅 Reset() 会清零。
type Metrics struct {
	Name            string    `json:"name"`
	State           State     `json:"state"`
	FailureCount    int       `json:"failure_count"`
	SuccessCount    int       `json:"success_count"`
	TotalRequests   int64     `json:"total_requests"`
	TotalFailures   int64     `json:"total_failures"`
	LastFailureTime time.Time `json:"last_failure_time"`
	LastSuccessTime time.Time `json:"last_success_time"`
	NextAttempt     time.Time `json:"next_attempt"`
}

// FailureRate 返回累计失败率，无请求时为 0
func (m Metrics) FailureRate() float64 {
	if m.TotalRequests == 0 {
		return 0
	}
	return float64(m.TotalFailures) / float64(m.TotalRequests)
}

// ========================================
// 工厂函数 (Factory Functions)
// ========================================

// New 创建熔断器实例
//
// 参数:
//   - name: 依赖名（如 "openai"、"search-api"）
//   - cfg: 熔断器配置，nil 时使用默认值
//   - opts: 可选参数 (Logger, Meter, OnStateChange)
func New(name string, cfg *Config, opts ...Option) (Breaker, error) {
	if name == "" {
		return nil, ErrNameEmpty
	}
	if cfg == nil {
		cfg = &Config{}
	}
	cfg = cfg.clone()
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	opt := options{}
	for _, o := range opts {
		o(&opt)
	}
	if opt.logger == nil {
		opt.logger = clog.Discard()
	}

	opt.logger.Debug("creating circuit breaker",
		clog.String("dependency", name),
		clog.Int("failure_threshold", cfg.FailureThreshold),
		clog.Duration("recovery_timeout", cfg.RecoveryTimeout),
		clog.Int("success_threshold", cfg.SuccessThreshold))

	return newBreaker(name, cfg, &opt), nil
}
