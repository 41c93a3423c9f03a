package quip

import (
	"log/slog"

	"github.com/petabytecl/quip/executor"
	"github.com/petabytecl/quip/logger"
)

// Options configures a System at Init time. Zero value runs with the
// package defaults: an executor.Pool sized one worker per logical
// core and slog.Default() for logging.
type Options struct {
	Executor executor.Config
	Logger   *slog.Logger
}

// Option mutates Options during InitWith.
type Option func(*Options)

// WithExecutorConfig overrides the worker/blocking pool sizing passed
// to executor.New.
func WithExecutorConfig(cfg executor.Config) Option {
	return func(o *Options) {
		o.Executor = cfg
	}
}

// WithLogger overrides the slog.Logger every subsystem logs through.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Options) {
		o.Logger = logger
	}
}

// WithLoggerConfig builds the System's logger from cfg via
// logger.NewLogger (text/tint or JSON, level and output resolved from
// cfg) instead of requiring a pre-built *slog.Logger. Call cfg.
// SetDefaults/Validate first if cfg came from quipconfig rather than
// logger.DefaultConfig.
func WithLoggerConfig(cfg logger.Config) Option {
	return func(o *Options) {
		o.Logger = logger.NewLogger(&cfg)
	}
}

func defaultOptions() Options {
	return Options{Logger: slog.Default()}
}
