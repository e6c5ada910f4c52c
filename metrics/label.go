package metrics

// Label 指标标签结构体
// 用于为指标添加维度信息，实现指标的细粒度分组和筛选。
//
// 注意：高基数（大量唯一值）的标签会影响监控系统性能，
// 标签值应当相对稳定（依赖名、状态名），避免请求 ID 之类的值。
type Label struct {
	// Key 标签键，建议使用小写字母、数字和下划线
	Key string

	// Value 标签值
	Value string
}

// L 便捷构造函数，创建一个 Label 实例
//
//	counter.Inc(ctx, metrics.L("dependency", "openai"))
func L(key, value string) Label {
	return Label{Key: key, Value: value}
}

// 常见的标签
const (
	LabelDependency = "dependency"
	LabelState      = "state"
	LabelSource     = "source"
	LabelOutcome    = "outcome"
)

// 常见的结果
const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
)
