// Package quiptest wraps quip.System with test-friendly start/stop
// helpers, for tests that need a running supervision tree without
// each one hand-rolling the timeout and cleanup boilerplate.
package quiptest

import (
	"context"
	"sync"
	"time"

	"github.com/petabytecl/quip/callback"
	"github.com/petabytecl/quip/quip"
)

// DefaultTimeout bounds how long RequireStart/RequireStop wait before
// failing the test.
const DefaultTimeout = 5 * time.Second

// TB is the subset of testing.TB quiptest needs, satisfied by both
// *testing.T and *testing.B.
type TB interface {
	Logf(string, ...any)
	Fatalf(string, ...any)
	Cleanup(func())
	Helper()
}

// App wraps a *quip.System with RequireStart/RequireStop, registering
// automatic cleanup on the TB so a forgotten RequireStop still tears
// the system down at the end of the test.
type App struct {
	sys     *quip.System
	tb      TB
	timeout time.Duration

	mu      sync.Mutex
	started bool
	stopped bool
}

// New builds a quip.System via quip.InitWith(cfg, opts...) and wraps it
// for testing, registering t.Cleanup to stop it if the test never
// calls RequireStop itself.
func New(tb TB, cfg callback.Config, opts ...quip.Option) (*App, error) {
	tb.Helper()

	sys, err := quip.InitWith(cfg, opts...)
	if err != nil {
		return nil, err
	}

	app := &App{sys: sys, tb: tb, timeout: DefaultTimeout}
	tb.Cleanup(app.cleanup)
	return app, nil
}

// WithTimeout overrides DefaultTimeout for this App's RequireStart and
// RequireStop calls.
func (a *App) WithTimeout(d time.Duration) *App {
	a.timeout = d
	return a
}

// System returns the wrapped *quip.System, for tests that need to add
// Supervisor/Children members before RequireStart or otherwise drive it
// directly.
func (a *App) System() *quip.System {
	return a.sys
}

// RequireStart starts the system or fails the test. Returns a for
// method chaining. Idempotent: a second call on an already-started App
// is a no-op.
func (a *App) RequireStart() *App {
	a.tb.Helper()

	a.mu.Lock()
	if a.started {
		a.mu.Unlock()
		return a
	}
	a.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), a.timeout)
	defer cancel()

	if err := a.sys.Start(ctx); err != nil {
		a.tb.Fatalf("quiptest: system didn't start: %v", err)
	}

	a.mu.Lock()
	a.started = true
	a.mu.Unlock()

	return a
}

// RequireStop stops the system and blocks until it has fully
// terminated, or fails the test if stopping errors or the timeout
// elapses first. Idempotent.
func (a *App) RequireStop() {
	a.tb.Helper()

	a.mu.Lock()
	if a.stopped {
		a.mu.Unlock()
		return
	}
	a.mu.Unlock()

	if err := a.sys.Stop(); err != nil {
		a.tb.Fatalf("quiptest: system didn't stop: %v", err)
	}
	stoppedInTime := a.waitStopped()

	a.mu.Lock()
	a.stopped = true
	a.mu.Unlock()

	if !stoppedInTime {
		a.tb.Fatalf("quiptest: system didn't stop within %v", a.timeout)
	}
}

// cleanup runs on t.Cleanup, quietly stopping the system (killing it if
// it does not stop within the timeout) if the test never called
// RequireStop itself.
func (a *App) cleanup() {
	a.mu.Lock()
	if a.stopped || !a.started {
		a.mu.Unlock()
		return
	}
	a.mu.Unlock()

	if err := a.sys.Stop(); err != nil {
		a.tb.Logf("quiptest cleanup: stop failed: %v", err)
	}
	a.waitStopped()

	a.mu.Lock()
	a.stopped = true
	a.mu.Unlock()
}

// waitStopped blocks until the system has stopped, killing it if the
// timeout elapses first, and reports whether it stopped in time.
func (a *App) waitStopped() bool {
	done := make(chan struct{})
	go func() {
		a.sys.BlockUntilStopped()
		close(done)
	}()

	select {
	case <-done:
		return true
	case <-time.After(a.timeout):
		a.sys.Kill()
		<-done
		return false
	}
}
