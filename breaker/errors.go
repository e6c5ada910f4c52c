package breaker

import (
	"fmt"
	"time"

	"github.com/ceyewan/aegis/xerrors"
)

// 错误定义
var (
	// ErrNameEmpty 依赖名为空
	ErrNameEmpty = xerrors.New("breaker: dependency name is empty")

	// ErrConfigNil 配置为空
	ErrConfigNil = xerrors.New("breaker: config is nil")

	// ErrInvalidThreshold 阈值配置非法
	ErrInvalidThreshold = xerrors.New("breaker: threshold must not be negative")

	// ErrInvalidTimeout 超时配置非法
	ErrInvalidTimeout = xerrors.New("breaker: timeout must not be negative")

	// ErrOperationNil 操作为空
	ErrOperationNil = xerrors.New("breaker: operation is nil")

	// ErrOpenState 熔断器处于打开状态，调用被拒绝
	// 使用 xerrors.Is(err, ErrOpenState) 匹配 *OpenError
	ErrOpenState = xerrors.New("breaker: circuit breaker is open")
)

// OpenError 熔断拒绝错误，携带剩余等待时间
//
// Do 在 Open 状态拒绝调用、或 HalfOpen 状态已有在途探测时返回此错误。
// 调用方（通常是 fallback 编排器）据此转入降级路径。
type OpenError struct {
	// Dependency 被熔断的依赖名
	Dependency string

	// RetryAfter 距下次允许探测的剩余时间
	RetryAfter time.Duration
}

func (e *OpenError) Error() string {
	return fmt.Sprintf("breaker: circuit open for %q, retry after %s", e.Dependency, e.RetryAfter)
}

// Unwrap 使 *OpenError 匹配 ErrOpenState 哨兵
func (e *OpenError) Unwrap() error {
	return ErrOpenState
}
