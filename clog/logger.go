package clog

// Logger 日志接口，提供结构化日志记录功能
//
// 支持五个日志级别：Debug、Info、Warn、Error、Fatal。
//
// 基本使用：
//
//	logger.Info("request served", clog.String("dependency", "openai"))
//
// 创建子 Logger：
//
//	child := logger.With(clog.String("module", "monitor"))
//	namespaced := logger.WithNamespace("fallback")
type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)
	Fatal(msg string, fields ...Field)

	// With 创建一个带有预设字段的子 Logger，预设字段会出现在所有日志中
	With(fields ...Field) Logger

	// WithNamespace 创建一个扩展命名空间的子 Logger
	//
	// 命名空间会追加到现有命名空间后面，以 "." 连接：
	//
	//	logger := clog.New(cfg, clog.WithNamespace("aegis"))
	//	brk := logger.WithNamespace("breaker") // namespace = "aegis.breaker"
	WithNamespace(parts ...string) Logger

	// SetLevel 运行时动态调整日志级别
	SetLevel(level Level) error
}
