package breaker

import (
	"context"

	"github.com/ceyewan/aegis/metrics"

	"google.golang.org/grpc"
)

// UnaryClientInterceptor 返回 gRPC 一元调用客户端拦截器
// 按 KeyFunc 生成的依赖名从 Registry 取熔断器，为每个出站调用提供熔断保护
//
// 使用示例:
//
//	reg, _ := breaker.NewRegistry(cfg, breaker.WithLogger(logger))
//	conn, _ := grpc.NewClient(
//		"localhost:9001",
//		grpc.WithUnaryInterceptor(reg.UnaryClientInterceptor()),
//	)
func (r *Registry) UnaryClientInterceptor(opts ...InterceptorOption) grpc.UnaryClientInterceptor {
	cfg := &interceptorConfig{keyFunc: ServiceLevelKey()}
	for _, o := range opts {
		o(cfg)
	}

	return func(ctx context.Context, method string, req, reply any, cc *grpc.ClientConn, invoker grpc.UnaryInvoker, callOpts ...grpc.CallOption) error {
		key := cfg.keyFunc(ctx, method, cc)
		brk := r.Get(key)

		_, err := brk.Do(ctx, func(ctx context.Context) (any, error) {
			return nil, invoker(ctx, method, req, reply, cc, callOpts...)
		})

		r.recordInterceptorCall(ctx, brk, key, method, err)
		return err
	}
}

// recordInterceptorCall 记录方法级别的拦截器指标
func (r *Registry) recordInterceptorCall(ctx context.Context, brk Breaker, key, method string, err error) {
	cb, ok := brk.(*circuitBreaker)
	if !ok || cb.meter == nil {
		return
	}

	result := "success"
	if err != nil {
		result = "failure"
	}
	if counter, e := cb.meter.Counter(MetricGRPCCallsTotal, "Intercepted gRPC calls"); e == nil && counter != nil {
		counter.Inc(ctx,
			metrics.L(metrics.LabelDependency, key),
			metrics.L(LabelMethod, method),
			metrics.L(LabelResult, result))
	}
}
