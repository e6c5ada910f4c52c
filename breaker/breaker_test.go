package breaker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBreaker(t *testing.T, cfg *Config) Breaker {
	t.Helper()
	brk, err := New("test-dependency", cfg)
	require.NoError(t, err)
	return brk
}

func failN(t *testing.T, brk Breaker, n int, err error) {
	t.Helper()
	for i := 0; i < n; i++ {
		_, got := brk.Do(context.Background(), func(ctx context.Context) (any, error) {
			return nil, err
		})
		require.ErrorIs(t, got, err)
	}
}

func TestNewValidation(t *testing.T) {
	_, err := New("", nil)
	require.ErrorIs(t, err, ErrNameEmpty)

	_, err = New("dep", &Config{FailureThreshold: -1})
	require.ErrorIs(t, err, ErrInvalidThreshold)

	_, err = New("dep", &Config{RecoveryTimeout: -time.Second})
	require.ErrorIs(t, err, ErrInvalidTimeout)
}

func TestNewDefaults(t *testing.T) {
	brk := newTestBreaker(t, nil)
	assert.Equal(t, StateClosed, brk.State())
	assert.Equal(t, "test-dependency", brk.Name())
}

func TestDoNilOperation(t *testing.T) {
	brk := newTestBreaker(t, nil)
	_, err := brk.Do(context.Background(), nil)
	require.ErrorIs(t, err, ErrOperationNil)
}

func TestOperationErrorPassthrough(t *testing.T) {
	brk := newTestBreaker(t, nil)
	opErr := errors.New("upstream timeout")

	_, err := brk.Do(context.Background(), func(ctx context.Context) (any, error) {
		return nil, opErr
	})
	// 原始错误必须原样透传，不得包装
	require.Equal(t, opErr, err)
}

func TestClosedToOpenOnThreshold(t *testing.T) {
	brk := newTestBreaker(t, &Config{FailureThreshold: 3, RecoveryTimeout: time.Minute})
	opErr := errors.New("boom")

	failN(t, brk, 2, opErr)
	assert.Equal(t, StateClosed, brk.State())

	failN(t, brk, 1, opErr)
	assert.Equal(t, StateOpen, brk.State())

	m := brk.Metrics()
	assert.Equal(t, int64(3), m.TotalRequests)
	assert.Equal(t, int64(3), m.TotalFailures)
	assert.False(t, m.NextAttempt.IsZero())
}

func TestOpenRejectsWithoutInvoking(t *testing.T) {
	brk := newTestBreaker(t, &Config{FailureThreshold: 1, RecoveryTimeout: time.Minute})
	failN(t, brk, 1, errors.New("boom"))
	require.Equal(t, StateOpen, brk.State())

	invoked := 0
	_, err := brk.Do(context.Background(), func(ctx context.Context) (any, error) {
		invoked++
		return "ok", nil
	})

	// 拒绝期间被包裹的操作绝不能被调用
	assert.Equal(t, 0, invoked)
	require.ErrorIs(t, err, ErrOpenState)

	var openErr *OpenError
	require.ErrorAs(t, err, &openErr)
	assert.Equal(t, "test-dependency", openErr.Dependency)
	assert.Greater(t, openErr.RetryAfter, time.Duration(0))
}

func TestSuccessResetsFailureCount(t *testing.T) {
	brk := newTestBreaker(t, &Config{FailureThreshold: 3})
	failN(t, brk, 2, errors.New("boom"))

	_, err := brk.Do(context.Background(), func(ctx context.Context) (any, error) {
		return "ok", nil
	})
	require.NoError(t, err)

	// 一次成功抹去此前的失败历史
	assert.Equal(t, 0, brk.Metrics().FailureCount)
	failN(t, brk, 2, errors.New("boom"))
	assert.Equal(t, StateClosed, brk.State())
}

func TestRecoveryProbeClosesBreaker(t *testing.T) {
	brk := newTestBreaker(t, &Config{
		FailureThreshold: 2,
		RecoveryTimeout:  50 * time.Millisecond,
		SuccessThreshold: 2,
	})
	failN(t, brk, 2, errors.New("boom"))
	require.Equal(t, StateOpen, brk.State())

	time.Sleep(60 * time.Millisecond)

	// 恢复超时已过：下一次调用作为探测被放行
	invoked := 0
	result, err := brk.Do(context.Background(), func(ctx context.Context) (any, error) {
		invoked++
		return "probe-1", nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, invoked)
	assert.Equal(t, "probe-1", result)
	assert.Equal(t, StateHalfOpen, brk.State())

	// 第二次连续成功达到 SuccessThreshold，熔断器闭合
	_, err = brk.Do(context.Background(), func(ctx context.Context) (any, error) {
		return "probe-2", nil
	})
	require.NoError(t, err)
	assert.Equal(t, StateClosed, brk.State())
	assert.Equal(t, 0, brk.Metrics().FailureCount)
}

func TestHalfOpenFailureReopens(t *testing.T) {
	brk := newTestBreaker(t, &Config{
		FailureThreshold: 1,
		RecoveryTimeout:  30 * time.Millisecond,
		SuccessThreshold: 3,
	})
	failN(t, brk, 1, errors.New("boom"))

	time.Sleep(40 * time.Millisecond)

	// 两次探测成功但未达阈值
	for i := 0; i < 2; i++ {
		_, err := brk.Do(context.Background(), func(ctx context.Context) (any, error) {
			return "ok", nil
		})
		require.NoError(t, err)
	}
	require.Equal(t, StateHalfOpen, brk.State())

	// 半开状态零失败容忍：单次失败立即重新打开
	failN(t, brk, 1, errors.New("still down"))
	assert.Equal(t, StateOpen, brk.State())
}

func TestSingleProbePolicy(t *testing.T) {
	brk := newTestBreaker(t, &Config{
		FailureThreshold: 1,
		RecoveryTimeout:  20 * time.Millisecond,
		SuccessThreshold: 2,
	})
	failN(t, brk, 1, errors.New("boom"))

	time.Sleep(30 * time.Millisecond)

	probeStarted := make(chan struct{})
	release := make(chan struct{})
	done := make(chan error, 1)

	go func() {
		_, err := brk.Do(context.Background(), func(ctx context.Context) (any, error) {
			close(probeStarted)
			<-release
			return "ok", nil
		})
		done <- err
	}()

	<-probeStarted
	require.Equal(t, StateHalfOpen, brk.State())

	// 探测在途期间，其它调用一律快速失败且不触达依赖
	invoked := 0
	_, err := brk.Do(context.Background(), func(ctx context.Context) (any, error) {
		invoked++
		return nil, nil
	})
	require.ErrorIs(t, err, ErrOpenState)
	assert.Equal(t, 0, invoked)

	close(release)
	require.NoError(t, <-done)
}

func TestReset(t *testing.T) {
	brk := newTestBreaker(t, &Config{FailureThreshold: 1, RecoveryTimeout: time.Hour})
	failN(t, brk, 1, errors.New("boom"))
	require.Equal(t, StateOpen, brk.State())

	brk.Reset()

	m := brk.Metrics()
	assert.Equal(t, StateClosed, m.State)
	assert.Equal(t, 0, m.FailureCount)
	assert.Equal(t, 0, m.SuccessCount)
	assert.Equal(t, int64(0), m.TotalRequests)
	assert.Equal(t, int64(0), m.TotalFailures)
	assert.True(t, m.NextAttempt.IsZero())

	// 复位后立即恢复放行
	_, err := brk.Do(context.Background(), func(ctx context.Context) (any, error) {
		return "ok", nil
	})
	require.NoError(t, err)
}

func TestOnStateChangeHook(t *testing.T) {
	var mu sync.Mutex
	var transitions [][2]State

	brk, err := New("dep", &Config{FailureThreshold: 1, RecoveryTimeout: 20 * time.Millisecond, SuccessThreshold: 1},
		WithOnStateChange(func(dep string, from, to State) {
			mu.Lock()
			transitions = append(transitions, [2]State{from, to})
			mu.Unlock()
		}))
	require.NoError(t, err)

	failN(t, brk, 1, errors.New("boom"))
	time.Sleep(30 * time.Millisecond)
	_, err = brk.Do(context.Background(), func(ctx context.Context) (any, error) {
		return "ok", nil
	})
	require.NoError(t, err)

	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, [][2]State{
		{StateClosed, StateOpen},
		{StateOpen, StateHalfOpen},
		{StateHalfOpen, StateClosed},
	}, transitions)
}

func TestConcurrentCounters(t *testing.T) {
	brk := newTestBreaker(t, &Config{FailureThreshold: 1000})

	const goroutines = 50
	const callsPer = 20

	var wg sync.WaitGroup
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < callsPer; j++ {
				_, _ = brk.Do(context.Background(), func(ctx context.Context) (any, error) {
					return "ok", nil
				})
			}
		}()
	}
	wg.Wait()

	m := brk.Metrics()
	assert.Equal(t, int64(goroutines*callsPer), m.TotalRequests)
	assert.Equal(t, int64(0), m.TotalFailures)
	assert.Equal(t, StateClosed, m.State)
}

// TestRecoveryScenario 完整恢复剧本：熔断 -> 拒绝 -> 探测 -> 闭合
func TestRecoveryScenario(t *testing.T) {
	brk := newTestBreaker(t, &Config{
		FailureThreshold: 3,
		RecoveryTimeout:  100 * time.Millisecond,
		SuccessThreshold: 2,
	})

	// 三次连续失败触发熔断
	failN(t, brk, 3, errors.New("provider down"))
	require.Equal(t, StateOpen, brk.State())

	// 恢复时间未到：拒绝且不触达依赖
	invoked := 0
	_, err := brk.Do(context.Background(), func(ctx context.Context) (any, error) {
		invoked++
		return nil, nil
	})
	require.ErrorIs(t, err, ErrOpenState)
	require.Equal(t, 0, invoked)

	// 恢复时间已过：探测放行，两次成功后闭合
	time.Sleep(110 * time.Millisecond)
	for i := 0; i < 2; i++ {
		_, err := brk.Do(context.Background(), func(ctx context.Context) (any, error) {
			invoked++
			return "recovered", nil
		})
		require.NoError(t, err)
	}
	assert.Equal(t, 2, invoked)
	assert.Equal(t, StateClosed, brk.State())
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "closed", StateClosed.String())
	assert.Equal(t, "open", StateOpen.String())
	assert.Equal(t, "half_open", StateHalfOpen.String())
	assert.Equal(t, "unknown", State(42).String())
}
