package alert

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ceyewan/aegis/clog"
)

// recordingLogger 记录日志调用的 clog.Logger 桩
type recordingLogger struct {
	mu     sync.Mutex
	errors []string
	warns  []string
	infos  []string
}

func (l *recordingLogger) Debug(msg string, fields ...clog.Field) {}
func (l *recordingLogger) Info(msg string, fields ...clog.Field) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.infos = append(l.infos, msg)
}
func (l *recordingLogger) Warn(msg string, fields ...clog.Field) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.warns = append(l.warns, msg)
}
func (l *recordingLogger) Error(msg string, fields ...clog.Field) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.errors = append(l.errors, msg)
}
func (l *recordingLogger) Fatal(msg string, fields ...clog.Field) {}
func (l *recordingLogger) With(fields ...clog.Field) clog.Logger { return l }
func (l *recordingLogger) WithNamespace(parts ...string) clog.Logger { return l }
func (l *recordingLogger) SetLevel(level clog.Level) error { return nil }

func TestNewEvent(t *testing.T) {
	e := NewEvent(SeverityHigh,
		WithTag("dependency", "openai"),
		WithExtra("failure_rate", 0.8))

	assert.NotEmpty(t, e.ID)
	assert.False(t, e.Timestamp.IsZero())
	assert.Equal(t, SeverityHigh, e.Severity)
	assert.Equal(t, "openai", e.Tags["dependency"])
	assert.Equal(t, 0.8, e.Extra["failure_rate"])

	// 每个事件应有独立 ID
	assert.NotEqual(t, e.ID, NewEvent(SeverityLow).ID)
}

func TestLogSinkSeverityRouting(t *testing.T) {
	logger := &recordingLogger{}
	sink := NewLogSink(logger)
	ctx := context.Background()

	require.NoError(t, sink.Capture(ctx, "breaker opened", NewEvent(SeverityHigh)))
	require.NoError(t, sink.Capture(ctx, "breaker probing", NewEvent(SeverityMedium)))
	require.NoError(t, sink.Capture(ctx, "all good", NewEvent(SeverityLow)))

	assert.Equal(t, []string{"breaker opened"}, logger.errors)
	assert.Equal(t, []string{"breaker probing"}, logger.warns)
	assert.Equal(t, []string{"all good"}, logger.infos)
}

func TestLogSinkNilLogger(t *testing.T) {
	sink := NewLogSink(nil)
	require.NoError(t, sink.Capture(context.Background(), "dropped", NewEvent(SeverityLow)))
}

func TestDiscard(t *testing.T) {
	require.NoError(t, Discard().Capture(context.Background(), "ignored", NewEvent(SeverityCritical)))
}

func TestNewNATSSinkNilConn(t *testing.T) {
	_, err := NewNATSSink(nil, "")
	require.Error(t, err)
}
