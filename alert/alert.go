// Package alert 提供告警下沉组件，用于上报熔断状态迁移和关键故障。
//
// Sink 由应用在构造 monitor/fallback 组件时显式注入，不依赖任何
// 全局可达的告警客户端。所有实现都是 fire-and-forget 语义：
// 发送失败由调用方记录日志，绝不向业务链路传播。
//
// 基本使用：
//
//	sink := alert.NewLogSink(logger)
//	_ = sink.Capture(ctx, "circuit breaker opened",
//	    alert.NewEvent(alert.SeverityHigh,
//	        alert.WithTag("dependency", "openai"),
//	        alert.WithExtra("failure_rate", 0.83)))
package alert

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Severity 告警级别
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Event 一次告警事件
type Event struct {
	// ID 事件唯一标识
	ID string `json:"id"`

	// Severity 告警级别
	Severity Severity `json:"severity"`

	// Tags 低基数的分类标签（依赖名、状态名）
	Tags map[string]string `json:"tags,omitempty"`

	// Extra 附加上下文（失败率、计数器快照）
	Extra map[string]any `json:"extra,omitempty"`

	// Timestamp 事件产生时间
	Timestamp time.Time `json:"timestamp"`
}

// Sink 告警下沉接口
type Sink interface {
	// Capture 上报一条告警消息
	// 返回错误仅用于调用方记录日志，不应阻断业务
	Capture(ctx context.Context, message string, event Event) error
}

// EventOption 事件构造选项
type EventOption func(*Event)

// WithTag 添加分类标签
func WithTag(key, value string) EventOption {
	return func(e *Event) {
		if e.Tags == nil {
			e.Tags = make(map[string]string)
		}
		e.Tags[key] = value
	}
}

// WithExtra 添加附加上下文
func WithExtra(key string, value any) EventOption {
	return func(e *Event) {
		if e.Extra == nil {
			e.Extra = make(map[string]any)
		}
		e.Extra[key] = value
	}
}

// NewEvent 创建告警事件，自动填充 ID 和时间戳
func NewEvent(severity Severity, opts ...EventOption) Event {
	e := Event{
		ID:        uuid.NewString(),
		Severity:  severity,
		Timestamp: time.Now(),
	}
	for _, opt := range opts {
		opt(&e)
	}
	return e
}
