package fallback

import (
	"fmt"

	"github.com/ceyewan/aegis/xerrors"
)

var (
	// ErrRegistryNil 未提供熔断器注册表
	ErrRegistryNil = xerrors.New("fallback: registry is nil")

	// ErrPrimaryRequired 策略缺少主实现
	ErrPrimaryRequired = xerrors.New("fallback: strategy.Primary is required")

	// ErrAllFailed 所有实时层级均失败的哨兵，用 errors.Is 匹配
	ErrAllFailed = xerrors.New("fallback: all strategies failed")
)

// AllFailedError 主实现、备用实现（以及模板，若提供）全部失败
//
// 这是编排器唯一的致命结果，必须透传给业务方。
type AllFailedError struct {
	// Dependency 依赖名
	Dependency string

	// PrimaryErr 主实现的失败原因
	PrimaryErr error

	// FallbackErr 备用实现的失败原因，未提供备用实现时为 nil
	FallbackErr error
}

func (e *AllFailedError) Error() string {
	if e.FallbackErr != nil {
		return fmt.Sprintf("fallback: all strategies failed for %q: primary: %v; fallback: %v",
			e.Dependency, e.PrimaryErr, e.FallbackErr)
	}
	return fmt.Sprintf("fallback: all strategies failed for %q: primary: %v", e.Dependency, e.PrimaryErr)
}

func (e *AllFailedError) Unwrap() error {
	return ErrAllFailed
}
