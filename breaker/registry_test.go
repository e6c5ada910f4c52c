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

func TestRegistryLazyCreate(t *testing.T) {
	reg, err := NewRegistry(nil)
	require.NoError(t, err)

	assert.Empty(t, reg.Names())

	brk := reg.Get("openai")
	require.NotNil(t, brk)
	assert.Equal(t, "openai", brk.Name())

	// 同名依赖共享同一实例
	assert.Same(t, brk, reg.Get("openai"))
	assert.ElementsMatch(t, []string{"openai"}, reg.Names())
}

func TestRegistryInvalidDefaults(t *testing.T) {
	_, err := NewRegistry(&Config{FailureThreshold: -1})
	require.ErrorIs(t, err, ErrInvalidThreshold)
}

func TestRegistryConfigure(t *testing.T) {
	reg, err := NewRegistry(&Config{FailureThreshold: 10, RecoveryTimeout: time.Hour})
	require.NoError(t, err)

	require.ErrorIs(t, reg.Configure("", &Config{}), ErrNameEmpty)
	require.ErrorIs(t, reg.Configure("scraper", nil), ErrConfigNil)
	require.NoError(t, reg.Configure("scraper", &Config{FailureThreshold: 1, RecoveryTimeout: time.Hour}))

	// scraper 使用专属阈值：单次失败即熔断
	scraper := reg.Get("scraper")
	_, _ = scraper.Do(context.Background(), func(ctx context.Context) (any, error) {
		return nil, errors.New("boom")
	})
	assert.Equal(t, StateOpen, scraper.State())

	// 其它依赖仍使用默认阈值
	search := reg.Get("search")
	_, _ = search.Do(context.Background(), func(ctx context.Context) (any, error) {
		return nil, errors.New("boom")
	})
	assert.Equal(t, StateClosed, search.State())
}

func TestRegistrySnapshot(t *testing.T) {
	reg, err := NewRegistry(&Config{FailureThreshold: 1, RecoveryTimeout: time.Hour})
	require.NoError(t, err)

	_, _ = reg.Get("ai").Do(context.Background(), func(ctx context.Context) (any, error) {
		return "ok", nil
	})
	_, _ = reg.Get("scraper").Do(context.Background(), func(ctx context.Context) (any, error) {
		return nil, errors.New("boom")
	})

	snapshot := reg.Snapshot()
	require.Len(t, snapshot, 2)
	assert.Equal(t, StateClosed, snapshot["ai"].State)
	assert.Equal(t, int64(1), snapshot["ai"].TotalRequests)
	assert.Equal(t, StateOpen, snapshot["scraper"].State)
	assert.InDelta(t, 1.0, snapshot["scraper"].FailureRate(), 0.001)
}

func TestRegistryReset(t *testing.T) {
	reg, err := NewRegistry(&Config{FailureThreshold: 1, RecoveryTimeout: time.Hour})
	require.NoError(t, err)

	assert.False(t, reg.Reset("unknown"))

	for _, name := range []string{"a", "b"} {
		_, _ = reg.Get(name).Do(context.Background(), func(ctx context.Context) (any, error) {
			return nil, errors.New("boom")
		})
	}
	require.Equal(t, StateOpen, reg.Get("a").State())

	assert.True(t, reg.Reset("a"))
	assert.Equal(t, StateClosed, reg.Get("a").State())
	assert.Equal(t, StateOpen, reg.Get("b").State())

	reg.ResetAll()
	assert.Equal(t, StateClosed, reg.Get("b").State())
	assert.Equal(t, int64(0), reg.Get("b").Metrics().TotalRequests)
}

func TestRegistryConcurrentGet(t *testing.T) {
	reg, err := NewRegistry(nil)
	require.NoError(t, err)

	const goroutines = 32
	results := make([]Breaker, goroutines)

	var wg sync.WaitGroup
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			results[idx] = reg.Get("shared")
		}(i)
	}
	wg.Wait()

	for i := 1; i < goroutines; i++ {
		assert.Same(t, results[0], results[i])
	}
}
