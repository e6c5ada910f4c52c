package cache

import (
	"context"

	"github.com/ceyewan/aegis/metrics"
)

// 缓存指标名
const (
	// MetricHits 缓存命中总数
	MetricHits = "cache_hits_total"

	// MetricMisses 缓存未命中总数
	MetricMisses = "cache_misses_total"

	// MetricWrites 缓存写入总数
	MetricWrites = "cache_writes_total"
)

// LabelDriver 驱动标签键
const LabelDriver = "driver"

// recordLookup 记录一次读取的命中情况
func recordLookup(ctx context.Context, meter metrics.Meter, driver string, hit bool) {
	if meter == nil {
		return
	}

	name := MetricHits
	desc := "Cache hits"
	if !hit {
		name = MetricMisses
		desc = "Cache misses"
	}
	if counter, err := meter.Counter(name, desc); err == nil && counter != nil {
		counter.Inc(ctx, metrics.L(LabelDriver, driver))
	}
}

// recordWrite 记录一次写入
func recordWrite(ctx context.Context, meter metrics.Meter, driver string) {
	if meter == nil {
		return
	}
	if counter, err := meter.Counter(MetricWrites, "Cache writes"); err == nil && counter != nil {
		counter.Inc(ctx, metrics.L(LabelDriver, driver))
	}
}
