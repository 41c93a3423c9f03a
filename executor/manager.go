package executor

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/shirou/gopsutil/v4/cpu"

	"github.com/petabytecl/quip/lp"
	"github.com/petabytecl/quip/park"
	"github.com/petabytecl/quip/runqueue"
)

// ThreadManager owns the worker pool and the blocking pool and load
// balances submissions across workers. It sizes the worker pool to one
// worker per logical core at construction time; the blocking pool is
// resized dynamically by [BlockingPool] itself as load changes.
type ThreadManager struct {
	logger *slog.Logger

	global   *runqueue.Global
	sleepers *park.Sleepers
	workers  []*worker
	blocking *BlockingPool

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// Config controls pool sizing. A zero Config is filled in with
// cpu.Counts-derived and package-level defaults by NewThreadManager.
type Config struct {
	// Workers is the worker pool size. Zero means one per logical core,
	// queried via gopsutil.
	Workers int
	// MinBlocking and MaxBlocking bound the blocking pool. Zero means
	// the package defaults (see blocking.go).
	MinBlocking int
	MaxBlocking int
	// BlockingIdleTimeout is how long an above-min blocking thread sits
	// idle before exiting. Zero means the package default. Retunable
	// after construction via Pool.SetBlockingIdleTimeout.
	BlockingIdleTimeout time.Duration
}

func (c Config) withDefaults() Config {
	if c.Workers <= 0 {
		n, err := cpu.Counts(true)
		if err != nil || n <= 0 {
			n = 1
		}
		c.Workers = n
	}
	if c.MinBlocking <= 0 {
		c.MinBlocking = defaultMinBlocking
	}
	if c.MaxBlocking <= 0 {
		c.MaxBlocking = defaultMaxBlocking
	}
	if c.BlockingIdleTimeout <= 0 {
		c.BlockingIdleTimeout = defaultBlockingIdleTimeout
	}
	return c
}

// NewThreadManager builds and starts a ThreadManager: the worker pool
// goroutines and the blocking pool's minimum standing goroutines are
// both running when this returns.
func NewThreadManager(cfg Config, logger *slog.Logger) *ThreadManager {
	cfg = cfg.withDefaults()
	ctx, cancel := context.WithCancel(context.Background())

	global := runqueue.NewGlobal()
	sleepers := park.NewSleepers(cfg.Workers)

	tm := &ThreadManager{
		logger:   logger.With(slog.String("component", "executor.ThreadManager")),
		global:   global,
		sleepers: sleepers,
		ctx:      ctx,
		cancel:   cancel,
	}

	tm.workers = make([]*worker, cfg.Workers)
	for i := 0; i < cfg.Workers; i++ {
		tm.workers[i] = newWorker(i, global, sleepers.Parker(i), tm.logger)
	}
	for _, w := range tm.workers {
		w.peers = tm.workers
	}

	tm.wg.Add(cfg.Workers)
	for _, w := range tm.workers {
		go func(w *worker) {
			defer tm.wg.Done()
			w.run(ctx)
		}(w)
	}

	tm.blocking = newBlockingPool(ctx, cfg.MinBlocking, cfg.MaxBlocking, cfg.BlockingIdleTimeout, tm.logger)

	tm.logger.Info("thread manager started",
		slog.Int("workers", cfg.Workers),
		slog.Int("min_blocking", cfg.MinBlocking),
		slog.Int("max_blocking", cfg.MaxBlocking),
	)
	return tm
}

// Stop cancels every worker and waits for them to exit, then shuts down
// the blocking pool.
func (tm *ThreadManager) Stop() {
	tm.cancel()
	tm.sleepers.NotifyAll()
	tm.wg.Wait()
	tm.blocking.stop()
}

// leastBusyWorker returns the worker with the smallest observed queue
// depth, per §4.3's get_least_busy_worker. Ties favor the lowest index.
func (tm *ThreadManager) leastBusyWorker() *worker {
	best := tm.workers[0]
	for _, w := range tm.workers[1:] {
		if w.depth() < best.depth() {
			best = w
		}
	}
	return best
}

// submit routes r to the least busy worker and wakes a parked worker so
// it is picked up promptly even if every worker is currently idle.
func (tm *ThreadManager) submit(r lp.Runnable) {
	w := tm.leastBusyWorker()
	w.push(r)
	tm.sleepers.NotifyOne()
}
