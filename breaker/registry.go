package breaker

import "sync"

// Registry 按依赖名管理熔断器的集合
//
// 进程内一个 Registry 实例对应一组外部依赖；每个依赖名首次 Get 时
// 惰性创建熔断器，此后所有调用方共享同一实例。Registry 由应用启动时
// 显式构造并注入编排器和监控器，不使用包级全局状态。
type Registry struct {
	defaults *Config
	opts     []Option

	mu        sync.RWMutex
	breakers  map[string]Breaker
	overrides map[string]*Config
}

// NewRegistry 创建熔断器注册表
//
// 参数:
//   - defaults: 新建熔断器的默认配置，nil 时使用包默认值
//   - opts: 传递给每个新建熔断器的选项 (Logger, Meter, OnStateChange)
func NewRegistry(defaults *Config, opts ...Option) (*Registry, error) {
	if defaults == nil {
		defaults = &Config{}
	}
	defaults = defaults.clone()
	if err := defaults.validate(); err != nil {
		return nil, err
	}

	return &Registry{
		defaults:  defaults,
		opts:      opts,
		breakers:  make(map[string]Breaker),
		overrides: make(map[string]*Config),
	}, nil
}

// Configure 为指定依赖设置专属配置
//
// 只对尚未创建的熔断器生效；已存在的实例保持原配置。
// 返回配置校验错误。
func (r *Registry) Configure(name string, cfg *Config) error {
	if name == "" {
		return ErrNameEmpty
	}
	if cfg == nil {
		return ErrConfigNil
	}
	cfg = cfg.clone()
	if err := cfg.validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.overrides[name] = cfg
	return nil
}

// Get 获取指定依赖的熔断器，不存在时惰性创建
func (r *Registry) Get(name string) Breaker {
	r.mu.RLock()
	brk, ok := r.breakers[name]
	r.mu.RUnlock()
	if ok {
		return brk
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	// 双重检查，避免并发重复创建
	if brk, ok := r.breakers[name]; ok {
		return brk
	}

	cfg := r.defaults
	if override, ok := r.overrides[name]; ok {
		cfg = override
	}

	// 配置已在 NewRegistry/Configure 中校验过，这里不会出错
	brk, _ = New(name, cfg, r.opts...)
	r.breakers[name] = brk
	return brk
}

// Names 返回已创建的熔断器依赖名列表
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.breakers))
	for name := range r.breakers {
		names = append(names, name)
	}
	return names
}

// Snapshot 返回全部熔断器的指标快照，键为依赖名
func (r *Registry) Snapshot() map[string]Metrics {
	r.mu.RLock()
	breakers := make([]Breaker, 0, len(r.breakers))
	for _, brk := range r.breakers {
		breakers = append(breakers, brk)
	}
	r.mu.RUnlock()

	// 在注册表锁外读取各熔断器，避免持锁串行化所有调用方
	snapshot := make(map[string]Metrics, len(breakers))
	for _, brk := range breakers {
		snapshot[brk.Name()] = brk.Metrics()
	}
	return snapshot
}

// Reset 复位指定依赖的熔断器，不存在时返回 false
func (r *Registry) Reset(name string) bool {
	r.mu.RLock()
	brk, ok := r.breakers[name]
	r.mu.RUnlock()
	if !ok {
		return false
	}
	brk.Reset()
	return true
}

// ResetAll 复位全部熔断器
func (r *Registry) ResetAll() {
	r.mu.RLock()
	breakers := make([]Breaker, 0, len(r.breakers))
	for _, brk := range r.breakers {
		breakers = append(breakers, brk)
	}
	r.mu.RUnlock()

	for _, brk := range breakers {
		brk.Reset()
	}
}
