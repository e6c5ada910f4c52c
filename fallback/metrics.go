package fallback

// 编排器指标名，注册到应用注入的 metrics.Meter
const (
	// MetricResults 按来源层级统计的结果总数
	MetricResults = "fallback_results_total"

	// MetricPrimaryFailures 主实现失败总数（含熔断拒绝）
	MetricPrimaryFailures = "fallback_primary_failures_total"

	// MetricAllFailed 所有层级均失败的调用总数
	MetricAllFailed = "fallback_exhausted_total"

	// MetricDuration 编排调用总耗时
	MetricDuration = "fallback_duration_seconds"
)

// 指标标签键
const (
	LabelDependency = "dependency"
	LabelSource     = "source"
	LabelRejected   = "rejected"
)
