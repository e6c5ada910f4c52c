// Package config 提供韧性层的配置加载与热更新能力，基于 Viper 实现。
//
// 支持 YAML/JSON 文件、.env 文件和环境变量三类来源，
// 优先级：环境变量 > .env > 环境特定配置 > 基础配置。
// 配置文件变化时通过 Watch 通道实时通知应用，典型用途是
// 在不重启进程的情况下调整各依赖的熔断阈值。
//
// 基本使用：
//
//	loader := config.MustLoad(
//	    config.WithConfigName("resilience"),
//	    config.WithConfigPaths("./config"),
//	    config.WithEnvPrefix("AEGIS"),
//	)
//
//	var breakers map[string]breaker.Config
//	if err := loader.UnmarshalKey("breakers", &breakers); err != nil {
//	    panic(err)
//	}
//
//	ch, _ := loader.Watch(ctx, "breakers.openai.failure_threshold")
//	for event := range ch {
//	    // 重建对应依赖的熔断器
//	}
package config

import (
	"context"
	"time"
)

// Loader 配置加载器核心接口
type Loader interface {
	// Load 从所有来源加载配置并启动文件监听
	Load(ctx context.Context) error

	// Get 获取原始配置值
	Get(key string) any

	// Unmarshal 将整个配置反序列化到结构体
	Unmarshal(v any) error

	// UnmarshalKey 将指定 key 的配置反序列化到结构体
	UnmarshalKey(key string, v any) error

	// Watch 监听指定 key 的变更，通过 context 取消监听
	Watch(ctx context.Context, key string) (<-chan Event, error)

	// Validate 验证当前配置的有效性
	Validate() error
}

// Event 配置变更事件
type Event struct {
	Key       string // 配置 key
	Value     any    // 新值
	OldValue  any    // 旧值
	Source    string // "file" | "env"
	Timestamp time.Time
}

// New 创建配置加载器，需显式调用 Load
func New(opts ...Option) (Loader, error) {
	return newLoader(opts...)
}

// MustLoad 创建并加载配置，失败时 panic
//
// 适合进程启动阶段，配置加载失败时快速失败。
func MustLoad(opts ...Option) Loader {
	l, err := newLoader(opts...)
	if err != nil {
		panic(err)
	}
	if err := l.Load(context.Background()); err != nil {
		panic(err)
	}
	return l
}
