package monitor

// 巡检指标名，随每轮采样刷新
const (
	// MetricBreakerState 状态码 (0=closed, 1=open, 2=half_open)
	MetricBreakerState = "breaker_state"

	// MetricFailureRate 累计失败率
	MetricFailureRate = "breaker_failure_rate"

	// MetricTotalRequests 累计请求数
	MetricTotalRequests = "breaker_total_requests"

	// MetricTotalFailures 累计失败数
	MetricTotalFailures = "breaker_total_failures"
)
