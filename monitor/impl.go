package monitor

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ceyewan/aegis/alert"
	"github.com/ceyewan/aegis/breaker"
	"github.com/ceyewan/aegis/clog"
	"github.com/ceyewan/aegis/metrics"
)

// resilienceMonitor Monitor 的默认实现
type resilienceMonitor struct {
	registry *breaker.Registry
	interval time.Duration
	logger   clog.Logger
	meter    metrics.Meter
	sink     alert.Sink

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	done    chan struct{}

	// lastStates 上一轮采样的状态，用于检测迁移。仅采样 goroutine 访问。
	lastStates map[string]breaker.State
}

func newMonitor(registry *breaker.Registry, interval time.Duration, opts ...Option) *resilienceMonitor {
	m := &resilienceMonitor{
		registry:   registry,
		interval:   interval,
		logger:     clog.Discard(),
		sink:       alert.Discard(),
		lastStates: make(map[string]breaker.State),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *resilienceMonitor) Start() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.running {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	m.done = make(chan struct{})
	m.running = true

	go m.loop(ctx, m.done)
	m.logger.Info("monitor started", clog.Duration("interval", m.interval))
}

func (m *resilienceMonitor) Stop() {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}
	m.running = false
	cancel := m.cancel
	done := m.done
	m.mu.Unlock()

	cancel()
	<-done
	m.logger.Info("monitor stopped")
}

func (m *resilienceMonitor) Running() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.running
}

func (m *resilienceMonitor) loop(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.sample(ctx)
		}
	}
}

// sample 采集一轮所有熔断器的快照
func (m *resilienceMonitor) sample(ctx context.Context) {
	snapshot := m.registry.Snapshot()

	for name, metric := range snapshot {
		rate := metric.FailureRate()

		m.logger.Info("breaker health",
			clog.String("dependency", name),
			clog.String("state", metric.State.String()),
			clog.Int64("total_requests", metric.TotalRequests),
			clog.Int64("total_failures", metric.TotalFailures),
			clog.Float64("failure_rate", rate))

		m.exportGauges(ctx, name, metric, rate)

		if metric.State != breaker.StateClosed {
			m.notifyUnhealthy(ctx, name, metric, rate)
		}
		m.lastStates[name] = metric.State
	}
}

// exportGauges 输出每个依赖的健康指标
func (m *resilienceMonitor) exportGauges(ctx context.Context, name string, metric breaker.Metrics, rate float64) {
	if m.meter == nil {
		return
	}

	labels := []metrics.Label{metrics.L(metrics.LabelDependency, name)}

	if gauge, err := m.meter.Gauge(MetricBreakerState, "Breaker state code"); err == nil && gauge != nil {
		gauge.Set(ctx, float64(metric.State), labels...)
	}
	if gauge, err := m.meter.Gauge(MetricFailureRate, "Cumulative failure rate"); err == nil && gauge != nil {
		gauge.Set(ctx, rate, labels...)
	}
	if gauge, err := m.meter.Gauge(MetricTotalRequests, "Total requests observed"); err == nil && gauge != nil {
		gauge.Set(ctx, float64(metric.TotalRequests), labels...)
	}
	if gauge, err := m.meter.Gauge(MetricTotalFailures, "Total failures observed"); err == nil && gauge != nil {
		gauge.Set(ctx, float64(metric.TotalFailures), labels...)
	}
}

// notifyUnhealthy 对不健康的熔断器上报告警：Open 为高危，HalfOpen 为中危（恢复前兆）
func (m *resilienceMonitor) notifyUnhealthy(ctx context.Context, name string, metric breaker.Metrics, rate float64) {
	severity := alert.SeverityHigh
	if metric.State == breaker.StateHalfOpen {
		severity = alert.SeverityMedium
	}

	message := fmt.Sprintf("breaker %s is %s", name, metric.State)
	opts := []alert.EventOption{
		alert.WithTag("dependency", name),
		alert.WithTag("state", metric.State.String()),
		alert.WithExtra("failure_rate", rate),
		alert.WithExtra("total_requests", metric.TotalRequests),
		alert.WithExtra("total_failures", metric.TotalFailures),
	}
	if last, seen := m.lastStates[name]; seen && last != metric.State {
		opts = append(opts, alert.WithTag("previous_state", last.String()))
	}

	if err := m.sink.Capture(ctx, message, alert.NewEvent(severity, opts...)); err != nil {
		m.logger.Warn("alert capture failed",
			clog.String("dependency", name),
			clog.Error(err))
	}
}
