package breaker

import (
	"context"
	"sync"
	"time"

	"github.com/ceyewan/aegis/clog"
	"github.com/ceyewan/aegis/metrics"
)

// circuitBreaker 熔断器实现（非导出）
//
// 所有可变状态由 mu 串行化。被包裹的操作在锁外执行，
// 锁只保护计数器读写和状态迁移的原子性。
type circuitBreaker struct {
	name          string
	cfg           *Config
	logger        clog.Logger
	meter         metrics.Meter
	onStateChange StateChangeFunc

	mu              sync.Mutex
	state           State
	failureCount    int
	successCount    int
	totalRequests   int64
	totalFailures   int64
	lastFailureTime time.Time
	lastSuccessTime time.Time
	nextAttempt     time.Time
	// probeInFlight 为 true 时表示半开探测尚未返回，
	// 期间其它调用一律快速失败（单探测策略）
	probeInFlight bool
}

// transition 一次状态迁移，在锁外完成通知
type transition struct {
	from State
	to   State
}

// newBreaker 创建熔断器实例（内部函数）
// cfg 已在 New() 中完成 validate()
func newBreaker(name string, cfg *Config, opt *options) Breaker {
	return &circuitBreaker{
		name:          name,
		cfg:           cfg,
		logger:        opt.logger,
		meter:         opt.meter,
		onStateChange: opt.onStateChange,
		state:         StateClosed,
	}
}

// Do 执行受熔断保护的操作
func (cb *circuitBreaker) Do(ctx context.Context, op Operation) (any, error) {
	if op == nil {
		return nil, ErrOperationNil
	}

	if err := cb.admit(); err != nil {
		cb.recordReject(ctx)
		return nil, err
	}

	start := time.Now()
	result, err := op(ctx)
	duration := time.Since(start)

	var tr *transition
	if err != nil {
		tr = cb.onFailure()
	} else {
		tr = cb.onSuccess()
	}
	cb.notify(tr)
	cb.recordCall(ctx, err, duration)

	// 操作错误原样透传，调用方依赖原始失败原因决定是否降级
	return result, err
}

// admit 判定当前调用是否放行，并完成 Open→HalfOpen 迁移
func (cb *circuitBreaker) admit() error {
	cb.mu.Lock()

	cb.totalRequests++
	now := time.Now()

	switch cb.state {
	case StateClosed:
		cb.mu.Unlock()
		return nil

	case StateOpen:
		if now.Before(cb.nextAttempt) {
			retryAfter := cb.nextAttempt.Sub(now)
			cb.mu.Unlock()
			return &OpenError{Dependency: cb.name, RetryAfter: retryAfter}
		}
		// 恢复超时已过，进入半开并放行本次调用作为探测
		tr := cb.setState(StateHalfOpen)
		cb.successCount = 0
		cb.probeInFlight = true
		cb.mu.Unlock()
		cb.notify(tr)
		return nil

	case StateHalfOpen:
		if cb.probeInFlight {
			retryAfter := cb.nextAttempt.Sub(now)
			if retryAfter < 0 {
				retryAfter = 0
			}
			cb.mu.Unlock()
			return &OpenError{Dependency: cb.name, RetryAfter: retryAfter}
		}
		cb.probeInFlight = true
		cb.mu.Unlock()
		return nil
	}

	cb.mu.Unlock()
	return nil
}

// onSuccess 成功处理器
func (cb *circuitBreaker) onSuccess() *transition {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.lastSuccessTime = time.Now()
	cb.successCount++

	switch cb.state {
	case StateHalfOpen:
		cb.probeInFlight = false
		if cb.successCount >= cb.cfg.SuccessThreshold {
			tr := cb.setState(StateClosed)
			cb.failureCount = 0
			cb.successCount = 0
			return tr
		}
	case StateClosed:
		// 一次成功抹去此前的失败记录，无泄漏桶衰减
		cb.failureCount = 0
	}
	return nil
}

// onFailure 失败处理器
func (cb *circuitBreaker) onFailure() *transition {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	now := time.Now()
	cb.lastFailureTime = now
	cb.failureCount++
	cb.totalFailures++

	switch cb.state {
	case StateClosed:
		if cb.failureCount >= cb.cfg.FailureThreshold {
			tr := cb.setState(StateOpen)
			cb.nextAttempt = now.Add(cb.cfg.RecoveryTimeout)
			return tr
		}
	case StateHalfOpen:
		// 半开状态零失败容忍：单次失败立即重新打开
		cb.probeInFlight = false
		tr := cb.setState(StateOpen)
		cb.nextAttempt = now.Add(cb.cfg.RecoveryTimeout)
		return tr
	}
	return nil
}

// setState 迁移状态并返回迁移记录，必须在持锁状态下调用
func (cb *circuitBreaker) setState(to State) *transition {
	if cb.state == to {
		return nil
	}
	tr := &transition{from: cb.state, to: to}
	cb.state = to
	return tr
}

// notify 在锁外发布状态迁移：日志、指标、回调
func (cb *circuitBreaker) notify(tr *transition) {
	if tr == nil {
		return
	}

	cb.logger.Info("circuit breaker state changed",
		clog.String("dependency", cb.name),
		clog.String("from", tr.from.String()),
		clog.String("to", tr.to.String()))

	if cb.meter != nil {
		if counter, err := cb.meter.Counter(MetricStateChanges, "Circuit breaker state changes"); err == nil && counter != nil {
			counter.Inc(context.Background(),
				metrics.L(metrics.LabelDependency, cb.name),
				metrics.L(LabelFromState, tr.from.String()),
				metrics.L(LabelToState, tr.to.String()))
		}
	}

	if cb.onStateChange != nil {
		cb.onStateChange(cb.name, tr.from, tr.to)
	}
}

// State 返回当前熔断器状态
func (cb *circuitBreaker) State() State {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}

// Metrics 返回所有计数器和状态的不可变快照
func (cb *circuitBreaker) Metrics() Metrics {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	return Metrics{
		Name:            cb.name,
		State:           cb.state,
		FailureCount:    cb.failureCount,
		SuccessCount:    cb.successCount,
		TotalRequests:   cb.totalRequests,
		TotalFailures:   cb.totalFailures,
		LastFailureTime: cb.lastFailureTime,
		LastSuccessTime: cb.lastSuccessTime,
		NextAttempt:     cb.nextAttempt,
	}
}

// Reset 管理性复位，清零全部计数器并回到 Closed
func (cb *circuitBreaker) Reset() {
	cb.mu.Lock()
	tr := cb.setState(StateClosed)
	cb.failureCount = 0
	cb.successCount = 0
	cb.totalRequests = 0
	cb.totalFailures = 0
	cb.lastFailureTime = time.Time{}
	cb.lastSuccessTime = time.Time{}
	cb.nextAttempt = time.Time{}
	cb.probeInFlight = false
	cb.mu.Unlock()

	cb.logger.Info("circuit breaker reset", clog.String("dependency", cb.name))
	cb.notify(tr)
}

// Name 返回该熔断器守护的依赖名
func (cb *circuitBreaker) Name() string {
	return cb.name
}

// recordCall 记录一次真实调用的指标
func (cb *circuitBreaker) recordCall(ctx context.Context, err error, duration time.Duration) {
	if cb.meter == nil {
		return
	}

	if counter, e := cb.meter.Counter(MetricRequestsTotal, "Total requests"); e == nil && counter != nil {
		counter.Inc(ctx, metrics.L(metrics.LabelDependency, cb.name))
	}

	if histogram, e := cb.meter.Histogram(MetricRequestDuration, "Request duration", metrics.WithUnit("seconds")); e == nil && histogram != nil {
		histogram.Record(ctx, duration.Seconds(), metrics.L(metrics.LabelDependency, cb.name))
	}

	name := MetricSuccessTotal
	desc := "Successful requests"
	if err != nil {
		name = MetricFailuresTotal
		desc = "Failed requests"
	}
	if counter, e := cb.meter.Counter(name, desc); e == nil && counter != nil {
		counter.Inc(ctx, metrics.L(metrics.LabelDependency, cb.name))
	}
}

// recordReject 记录一次被熔断拒绝的调用
func (cb *circuitBreaker) recordReject(ctx context.Context) {
	if cb.meter == nil {
		return
	}
	if counter, e := cb.meter.Counter(MetricRejectsTotal, "Rejected requests"); e == nil && counter != nil {
		counter.Inc(ctx, metrics.L(metrics.LabelDependency, cb.name))
	}
}
