package alert

import (
	"context"

	"github.com/ceyewan/aegis/clog"
)

// logSink 将告警写入结构化日志（非导出）
type logSink struct {
	logger clog.Logger
}

// NewLogSink 创建日志告警下沉
//
// 适合开发环境或未接入外部告警系统的部署。
// logger 为 nil 时使用 clog.Discard()。
func NewLogSink(logger clog.Logger) Sink {
	if logger == nil {
		logger = clog.Discard()
	}
	return &logSink{logger: logger.WithNamespace("alert")}
}

func (s *logSink) Capture(ctx context.Context, message string, event Event) error {
	fields := []clog.Field{
		clog.String("event_id", event.ID),
		clog.String("severity", string(event.Severity)),
		clog.Time("timestamp", event.Timestamp),
	}
	for k, v := range event.Tags {
		fields = append(fields, clog.String(k, v))
	}
	for k, v := range event.Extra {
		fields = append(fields, clog.Any(k, v))
	}

	switch event.Severity {
	case SeverityHigh, SeverityCritical:
		s.logger.Error(message, fields...)
	case SeverityMedium:
		s.logger.Warn(message, fields...)
	default:
		s.logger.Info(message, fields...)
	}
	return nil
}

// noopSink 丢弃所有告警（非导出）
type noopSink struct{}

// Discard 创建一个丢弃所有告警的 Sink
func Discard() Sink {
	return &noopSink{}
}

func (s *noopSink) Capture(ctx context.Context, message string, event Event) error {
	return nil
}
