package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ceyewan/aegis/breaker"
)

const testYAML = `
monitor:
  interval: 15s
breakers:
  openai:
    failure_threshold: 3
    recovery_timeout: 30s
    success_threshold: 2
  serp:
    failure_threshold: 10
    recovery_timeout: 2m
`

func writeTestConfig(t *testing.T, name, content string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	return dir
}

func TestLoadAndGet(t *testing.T) {
	dir := writeTestConfig(t, "resilience.yaml", testYAML)

	loader, err := New(
		WithConfigName("resilience"),
		WithConfigPaths(dir),
	)
	require.NoError(t, err)
	require.NoError(t, loader.Load(context.Background()))

	assert.Equal(t, "15s", loader.Get("monitor.interval"))
	assert.Equal(t, 3, loader.Get("breakers.openai.failure_threshold"))
	assert.Nil(t, loader.Get("breakers.unknown"))
}

func TestUnmarshalKeyBreakerConfigs(t *testing.T) {
	dir := writeTestConfig(t, "resilience.yaml", testYAML)

	loader, err := New(
		WithConfigName("resilience"),
		WithConfigPaths(dir),
	)
	require.NoError(t, err)
	require.NoError(t, loader.Load(context.Background()))

	var breakers map[string]breaker.Config
	require.NoError(t, loader.UnmarshalKey("breakers", &breakers))

	require.Contains(t, breakers, "openai")
	assert.Equal(t, 3, breakers["openai"].FailureThreshold)
	assert.Equal(t, 30*time.Second, breakers["openai"].RecoveryTimeout)
	assert.Equal(t, 2, breakers["openai"].SuccessThreshold)
	assert.Equal(t, 10, breakers["serp"].FailureThreshold)
	assert.Equal(t, 2*time.Minute, breakers["serp"].RecoveryTimeout)
}

func TestUnmarshalWhole(t *testing.T) {
	dir := writeTestConfig(t, "resilience.yaml", testYAML)

	loader, err := New(WithConfigName("resilience"), WithConfigPaths(dir))
	require.NoError(t, err)
	require.NoError(t, loader.Load(context.Background()))

	var cfg struct {
		Monitor struct {
			Interval time.Duration `mapstructure:"interval"`
		} `mapstructure:"monitor"`
		Breakers map[string]breaker.Config `mapstructure:"breakers"`
	}
	require.NoError(t, loader.Unmarshal(&cfg))
	assert.Equal(t, 15*time.Second, cfg.Monitor.Interval)
	assert.Len(t, cfg.Breakers, 2)
}

func TestEnvOverride(t *testing.T) {
	dir := writeTestConfig(t, "resilience.yaml", testYAML)
	t.Setenv("AEGIS_MONITOR_INTERVAL", "5s")

	loader, err := New(WithConfigName("resilience"), WithConfigPaths(dir))
	require.NoError(t, err)
	require.NoError(t, loader.Load(context.Background()))

	assert.Equal(t, "5s", loader.Get("monitor.interval"))
}

func TestLoadEmptyConfig(t *testing.T) {
	loader, err := New(
		WithConfigName("missing"),
		WithConfigPaths(t.TempDir()),
	)
	require.NoError(t, err)
	require.ErrorIs(t, loader.Load(context.Background()), ErrEmptyConfig)
}

func TestWatchReceivesChange(t *testing.T) {
	dir := writeTestConfig(t, "resilience.yaml", testYAML)
	path := filepath.Join(dir, "resilience.yaml")

	loader, err := New(WithConfigName("resilience"), WithConfigPaths(dir))
	require.NoError(t, err)
	require.NoError(t, loader.Load(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch, err := loader.Watch(ctx, "breakers.openai.failure_threshold")
	require.NoError(t, err)

	updated := `
monitor:
  interval: 15s
breakers:
  openai:
    failure_threshold: 7
    recovery_timeout: 30s
`
	require.NoError(t, os.WriteFile(path, []byte(updated), 0o644))

	select {
	case event := <-ch:
		assert.Equal(t, "breakers.openai.failure_threshold", event.Key)
		assert.Equal(t, 7, event.Value)
		assert.Equal(t, 3, event.OldValue)
		assert.Equal(t, "file", event.Source)
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for config change event")
	}
}

func TestWatchCancelClosesChannel(t *testing.T) {
	dir := writeTestConfig(t, "resilience.yaml", testYAML)

	loader, err := New(WithConfigName("resilience"), WithConfigPaths(dir))
	require.NoError(t, err)
	require.NoError(t, loader.Load(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	ch, err := loader.Watch(ctx, "monitor.interval")
	require.NoError(t, err)

	cancel()

	select {
	case _, ok := <-ch:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("channel was not closed after cancel")
	}
}
