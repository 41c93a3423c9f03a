package quip

import (
	"github.com/petabytecl/quip/quipconfig"
)

// InitFromConfig builds a System whose pool sizing and panic-backtrace
// behavior come from rc (as loaded by quipconfig.LoadRuntime off any
// Backend) instead of being passed option-by-option. Extra opts apply
// after rc's settings and can still override them, e.g. with a
// WithLogger built from the process's own logger.Config.
func InitFromConfig(rc *quipconfig.RuntimeConfig, opts ...Option) (*System, error) {
	all := make([]Option, 0, len(opts)+1)
	all = append(all, WithExecutorConfig(rc.Executor.ToExecutorConfig()))
	all = append(all, opts...)
	return InitWith(rc.CallbackConfig(), all...)
}

// WatchConfig arms mgr's backend to push a changed
// RuntimeConfig.Executor.BlockingIdleTimeout into s's live pool on
// every config change, via quipconfig.WatchExecutor. No-op if mgr's
// backend doesn't implement quipconfig.Watcher.
func (s *System) WatchConfig(mgr *quipconfig.Manager) {
	quipconfig.WatchExecutor(mgr, s.pool)
}
