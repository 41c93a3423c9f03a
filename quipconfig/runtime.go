package quipconfig

import (
	"time"

	"github.com/petabytecl/quip/callback"
	"github.com/petabytecl/quip/executor"
)

// ExecutorConfig mirrors executor.Config with mapstructure/validate tags,
// the shape LoadRuntime unmarshals into before converting to the real
// executor.Config the pool is built from.
type ExecutorConfig struct {
	Workers             int           `mapstructure:"workers" validate:"gte=0"`
	MinBlocking         int           `mapstructure:"min_blocking" validate:"gte=0"`
	MaxBlocking         int           `mapstructure:"max_blocking" validate:"gte=0"`
	BlockingIdleTimeout time.Duration `mapstructure:"blocking_idle_timeout" validate:"gte=0"`
}

// ToExecutorConfig converts to the type executor.New expects.
func (e ExecutorConfig) ToExecutorConfig() executor.Config {
	return executor.Config{
		Workers:             e.Workers,
		MinBlocking:         e.MinBlocking,
		MaxBlocking:         e.MaxBlocking,
		BlockingIdleTimeout: e.BlockingIdleTimeout,
	}
}

// RestartConfig holds restart settings loaded alongside the rest of
// RuntimeConfig. Nothing in this module reads it: InitFromConfig applies
// only the executor sizing and Backtraces, and ChildrenGroup/Supervisor
// restart policies and strategies are set through the actor package's
// options.
type RestartConfig struct {
	// MaxRetries is a retry count for actor.TriesRestart; it is not
	// applied to any restart policy automatically.
	MaxRetries int `mapstructure:"max_retries" validate:"gte=0"`
	// BackoffBase is a starting delay for actor.LinearBackoffStrategy/
	// ExponentialBackoffStrategy; it is not applied automatically.
	BackoffBase time.Duration `mapstructure:"backoff_base" validate:"gte=0"`
}

// RuntimeConfig is the process-wide configuration quip.InitFromConfig
// builds a System from: whether panics carry a backtrace and how the
// pool is sized. It also carries Restart, which InitFromConfig does not
// apply. Unmarshaled from env/file/defaults by LoadRuntime.
type RuntimeConfig struct {
	// Backtraces controls callback.Install. "show" (default) or "hide".
	Backtraces string        `mapstructure:"backtraces" validate:"omitempty,oneof=show hide"`
	Executor   ExecutorConfig `mapstructure:"executor"`
	Restart    RestartConfig  `mapstructure:"restart"`
}

// Default implements Defaulter: MinBlocking/MaxBlocking/
// BlockingIdleTimeout of zero are left for executor.Config.withDefaults
// to fill in; only Backtraces needs an explicit default since an empty
// string would otherwise fail its oneof tag.
func (c *RuntimeConfig) Default() {
	if c.Backtraces == "" {
		c.Backtraces = "show"
	}
}

// CallbackConfig converts Backtraces into the callback.Config
// callback.Install expects.
func (c RuntimeConfig) CallbackConfig() callback.Config {
	cfg := callback.New()
	if c.Backtraces == "hide" {
		cfg = cfg.HideBacktraces()
	}
	return cfg
}

// LoadRuntime builds a Manager over backend (any Backend, e.g. the one
// in quipconfig/viper) and loads a RuntimeConfig from it, applying
// mgr's Option chain first (file name, search paths, env prefix, etc).
func LoadRuntime(backend Backend, opts ...Option) (*RuntimeConfig, *Manager, error) {
	mgr := NewWithBackend(backend, opts...)
	cfg := &RuntimeConfig{}
	if err := mgr.LoadInto(cfg); err != nil {
		return nil, nil, err
	}
	return cfg, mgr, nil
}

// WatchExecutor arms mgr's backend to hot-reload BlockingIdleTimeout
// into pool on every config file change, the operator-retunable half of
// the ambient config layer: everything else in RuntimeConfig only takes
// effect on the next process start. No-op if mgr's backend does not
// implement Watcher (e.g. an in-memory test backend).
func WatchExecutor(mgr *Manager, pool *executor.Pool) {
	w, ok := mgr.Backend().(Watcher)
	if !ok {
		return
	}
	w.WatchConfig()
	w.OnConfigChange(func(any) {
		cfg := &RuntimeConfig{}
		if err := mgr.LoadInto(cfg); err != nil {
			return
		}
		pool.SetBlockingIdleTimeout(cfg.Executor.BlockingIdleTimeout)
	})
}
