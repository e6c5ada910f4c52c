package metrics

// Config 指标组件配置
type Config struct {
	// Enabled 是否启用指标收集，false 时返回 noop Meter
	Enabled bool `json:"enabled" yaml:"enabled"`

	// ServiceName 服务名，作为 service.name 资源属性
	ServiceName string `json:"serviceName" yaml:"serviceName"`

	// Version 服务版本，作为 service.version 资源属性
	Version string `json:"version" yaml:"version"`

	// Port Prometheus HTTP 服务器端口，0 表示不启动
	Port int `json:"port" yaml:"port"`

	// Path 指标暴露路径，例如 "/metrics"
	Path string `json:"path" yaml:"path"`
}
