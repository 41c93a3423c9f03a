package executor

import (
	"context"
	"log/slog"
	"time"

	"github.com/petabytecl/quip/lp"
)

// Pool is the executor's public entry point. It wraps a ThreadManager
// and exposes the three scheduling primitives callers use: Spawn, Run,
// and SpawnBlocking.
type Pool struct {
	tm *ThreadManager
}

// New builds and starts a Pool.
func New(cfg Config, logger *slog.Logger) *Pool {
	return &Pool{tm: NewThreadManager(cfg, logger)}
}

// Stop shuts down every worker and blocking-pool thread, waiting for
// in-flight LPs to finish their current Run.
func (p *Pool) Stop() {
	p.tm.Stop()
}

// SetBlockingIdleTimeout retunes how long an above-min blocking thread
// sits idle before exiting, without restarting the pool. Exposed so
// quipconfig's hot-reload can apply a changed
// Config.Executor.BlockingIdleTimeout live.
func (p *Pool) SetBlockingIdleTimeout(d time.Duration) {
	p.tm.blocking.SetIdleTimeout(d)
}

// scheduleFn returns the closure an LP uses to re-submit itself onto the
// worker pool, the restart machinery's hook into the executor.
func (p *Pool) scheduleFn() lp.ScheduleFunc {
	return func(r lp.Runnable) { p.tm.submit(r) }
}

// Spawn schedules body on the worker pool and returns a handle that
// survives a panic in body.
func Spawn[T any](p *Pool, ctx context.Context, body lp.Body[T], stack lp.Stack) *lp.RecoverableHandle[T] {
	proc, handle := lp.Recoverable(ctx, body, p.scheduleFn(), stack)
	p.tm.submit(proc)
	return handle
}

// Run schedules body on the worker pool and blocks the calling goroutine
// until it resolves, returning its value or a wrapped panic error.
func Run[T any](p *Pool, ctx context.Context, body lp.Body[T], stack lp.Stack) (T, error) {
	proc, handle := lp.Build(ctx, body, p.scheduleFn(), stack)
	p.tm.submit(proc)
	return handle.Wait(ctx)
}

// SpawnBlocking schedules body on the blocking pool, where it is allowed
// to make blocking syscalls without starving the non-blocking worker
// pool. It returns a handle that survives a panic in body.
func SpawnBlocking[T any](p *Pool, ctx context.Context, body lp.Body[T], stack lp.Stack) *lp.RecoverableHandle[T] {
	proc, handle := lp.Recoverable(ctx, body, p.scheduleFn(), stack)
	p.tm.blocking.submit(proc)
	return handle
}

// SpawnSupervised is Spawn with the underlying *lp.LP also returned, for
// callers that need direct Cancel/Restart control over the process
// rather than just awaiting its result — package actor's restart
// machinery re-arms a terminated child's LP in place instead of building
// a fresh one on every restart.
func SpawnSupervised[T any](p *Pool, ctx context.Context, body lp.Body[T], stack lp.Stack) (*lp.LP[T], *lp.RecoverableHandle[T]) {
	proc, handle := lp.Recoverable(ctx, body, p.scheduleFn(), stack)
	p.tm.submit(proc)
	return proc, handle
}
