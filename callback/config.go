// Package callback holds the process-wide panic-backtrace configuration
// and the lifecycle hooks a supervision-tree node can run around its own
// Start/Stop, independent of any body's lp.Stack callbacks.
package callback

import "sync/atomic"

// Backtraces controls whether a faulted child's stack trace is attached
// to its fault log line.
type Backtraces int

const (
	// Show attaches a captured stack trace to every fault log line, the
	// same detail an application without this runtime would print to
	// stderr on an unrecovered panic. Default.
	Show Backtraces = iota
	// Hide omits the stack trace; only the panic value itself is logged.
	Hide
)

// Config is the process-wide configuration installed once at startup via
// Install (see the root System's Init/InitWith).
type Config struct {
	backtraces Backtraces
}

// New returns a Config with the default behavior: backtraces shown.
func New() Config {
	return Config{backtraces: Show}
}

// ShowBacktraces returns a copy of c with backtraces shown. This is the
// default; calling it is only useful to undo a prior HideBacktraces.
func (c Config) ShowBacktraces() Config {
	c.backtraces = Show
	return c
}

// HideBacktraces returns a copy of c with backtraces hidden from fault
// log lines.
func (c Config) HideBacktraces() Config {
	c.backtraces = Hide
	return c
}

// Backtraces reports the configured Backtraces mode.
func (c Config) Backtraces() Backtraces {
	return c.backtraces
}

var active atomic.Int32

// Install applies cfg process-wide. Call once during startup; later
// calls simply replace the prior setting.
func Install(cfg Config) {
	active.Store(int32(cfg.backtraces))
}

// ShouldCaptureBacktraces reports whether the active Config wants stack
// traces attached to fault logs. Defaults to true (Show) until Install
// is called.
func ShouldCaptureBacktraces() bool {
	return Backtraces(active.Load()) == Show
}
