package config

import (
	"strings"

	"github.com/ceyewan/aegis/clog"
)

// options 加载器内部配置
type options struct {
	name      string
	paths     []string
	fileType  string
	envPrefix string
	logger    clog.Logger
}

func defaultOptions() *options {
	return &options{
		name:      "config",
		paths:     []string{".", "./config"},
		fileType:  "yaml",
		envPrefix: "AEGIS",
		logger:    clog.Discard(),
	}
}

// Option 加载器构造选项
type Option func(*options)

// WithConfigName 设置配置文件名称（不带扩展名），默认 config
func WithConfigName(name string) Option {
	return func(o *options) {
		o.name = name
	}
}

// WithConfigPath 追加配置文件搜索路径
func WithConfigPath(path string) Option {
	return func(o *options) {
		o.paths = append(o.paths, path)
	}
}

// WithConfigPaths 设置配置文件搜索路径（覆盖默认值）
func WithConfigPaths(paths ...string) Option {
	return func(o *options) {
		o.paths = paths
	}
}

// WithConfigType 设置配置文件类型 (yaml, json)，默认 yaml
func WithConfigType(typ string) Option {
	return func(o *options) {
		o.fileType = typ
	}
}

// WithEnvPrefix 设置环境变量前缀，默认 AEGIS
func WithEnvPrefix(prefix string) Option {
	return func(o *options) {
		o.envPrefix = strings.ToUpper(prefix)
	}
}

// WithLogger 注入日志器，自动添加 config 命名空间
func WithLogger(logger clog.Logger) Option {
	return func(o *options) {
		if logger == nil {
			logger = clog.Discard()
		}
		o.logger = logger.WithNamespace("config")
	}
}
