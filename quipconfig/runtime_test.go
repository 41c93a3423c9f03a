package quipconfig_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/petabytecl/quip/callback"
	"github.com/petabytecl/quip/quipconfig"
	cfgviper "github.com/petabytecl/quip/quipconfig/viper"
)

func TestLoadRuntimeAppliesDefaults(t *testing.T) {
	backend := cfgviper.New()

	cfg, _, err := quipconfig.LoadRuntime(backend)
	require.NoError(t, err)

	assert.Equal(t, "show", cfg.Backtraces)
	assert.Equal(t, callback.Show, cfg.CallbackConfig().Backtraces())
}

func TestLoadRuntimeUnmarshalsExecutorAndRestart(t *testing.T) {
	backend := cfgviper.New()
	backend.Set("backtraces", "hide")
	backend.Set("executor.workers", 4)
	backend.Set("executor.min_blocking", 2)
	backend.Set("executor.max_blocking", 64)
	backend.Set("executor.blocking_idle_timeout", "45s")
	backend.Set("restart.max_retries", 5)
	backend.Set("restart.backoff_base", "200ms")

	cfg, _, err := quipconfig.LoadRuntime(backend)
	require.NoError(t, err)

	assert.Equal(t, "hide", cfg.Backtraces)
	assert.Equal(t, callback.Hide, cfg.CallbackConfig().Backtraces())

	exec := cfg.Executor.ToExecutorConfig()
	assert.Equal(t, 4, exec.Workers)
	assert.Equal(t, 2, exec.MinBlocking)
	assert.Equal(t, 64, exec.MaxBlocking)
	assert.Equal(t, 45*time.Second, exec.BlockingIdleTimeout)

	assert.Equal(t, 5, cfg.Restart.MaxRetries)
	assert.Equal(t, 200*time.Millisecond, cfg.Restart.BackoffBase)
}

func TestLoadRuntimeRejectsInvalidBacktraces(t *testing.T) {
	backend := cfgviper.New()
	backend.Set("backtraces", "maybe")

	_, _, err := quipconfig.LoadRuntime(backend)
	assert.Error(t, err)
}

func TestWatchExecutorNoopsOnNonWatcherBackend(t *testing.T) {
	backend := quipconfig.NewMapBackend(nil)
	mgr := quipconfig.NewWithBackend(backend)

	assert.NotPanics(t, func() {
		quipconfig.WatchExecutor(mgr, nil)
	})
}
