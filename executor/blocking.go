package executor

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/petabytecl/quip/lp"
)

const (
	defaultMinBlocking         = 2
	defaultMaxBlocking         = 512
	defaultBlockingIdleTimeout = 30 * time.Second
)

// BlockingPool runs LPs that are allowed to make blocking syscalls, on a
// set of goroutines sized dynamically between MinBlocking and
// MaxBlocking per §4.3. Unlike the fixed worker pool it grows on demand
// and shrinks threads that sit idle past blockingIdleTimeout.
type BlockingPool struct {
	logger *slog.Logger

	tasks chan lp.Runnable
	sem   *semaphore.Weighted

	min int
	max int

	// idleTimeoutNanos is read by every standing/extra thread's idle
	// timer on each reset, so quipconfig's hot-reload can retune it
	// without restarting the pool.
	idleTimeoutNanos atomic.Int64

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu      sync.Mutex
	running int
}

func newBlockingPool(parent context.Context, min, max int, idleTimeout time.Duration, logger *slog.Logger) *BlockingPool {
	if idleTimeout <= 0 {
		idleTimeout = defaultBlockingIdleTimeout
	}
	ctx, cancel := context.WithCancel(parent)
	bp := &BlockingPool{
		logger: logger.With(slog.String("component", "executor.BlockingPool")),
		tasks:  make(chan lp.Runnable),
		sem:    semaphore.NewWeighted(int64(max)),
		min:    min,
		max:    max,
		ctx:    ctx,
		cancel: cancel,
	}
	bp.idleTimeoutNanos.Store(int64(idleTimeout))
	for i := 0; i < min; i++ {
		bp.spawnThread(true)
	}
	return bp
}

// SetIdleTimeout retunes how long an above-min blocking thread sits idle
// before exiting. Takes effect from the next idle-timer reset onward.
func (bp *BlockingPool) SetIdleTimeout(d time.Duration) {
	if d <= 0 {
		return
	}
	bp.idleTimeoutNanos.Store(int64(d))
}

func (bp *BlockingPool) idleTimeout() time.Duration {
	return time.Duration(bp.idleTimeoutNanos.Load())
}

// submit runs r on the blocking pool, spawning an extra thread if every
// standing thread is busy and the pool has headroom under max.
func (bp *BlockingPool) submit(r lp.Runnable) {
	select {
	case bp.tasks <- r:
		return
	default:
	}

	bp.mu.Lock()
	hasRoom := bp.running < bp.max
	bp.mu.Unlock()

	if hasRoom && bp.sem.TryAcquire(1) {
		bp.spawnThread(false)
	}

	// Either a fresh thread was just spawned and will pick this up via
	// the channel, or the pool is saturated and the submission queues
	// behind whichever thread frees up first.
	bp.tasks <- r
}

func (bp *BlockingPool) spawnThread(standing bool) {
	if !standing {
		// Acquired by the caller before spawning; release falls to the
		// thread's own exit path below.
	} else if !bp.sem.TryAcquire(1) {
		return
	}

	bp.mu.Lock()
	bp.running++
	bp.mu.Unlock()

	bp.wg.Add(1)
	go func() {
		defer bp.wg.Done()
		defer bp.sem.Release(1)
		defer func() {
			bp.mu.Lock()
			bp.running--
			bp.mu.Unlock()
		}()
		bp.runThread(standing)
	}()
}

func (bp *BlockingPool) runThread(standing bool) {
	idle := time.NewTimer(bp.idleTimeout())
	defer idle.Stop()

	for {
		select {
		case <-bp.ctx.Done():
			return
		case task := <-bp.tasks:
			if !idle.Stop() {
				select {
				case <-idle.C:
				default:
				}
			}
			bp.runTask(task)
			idle.Reset(bp.idleTimeout())
		case <-idle.C:
			if standing {
				// Standing (below-min) threads never self-terminate, so
				// the pool never drops below MinBlocking.
				idle.Reset(bp.idleTimeout())
				continue
			}
			return
		}
	}
}

func (bp *BlockingPool) runTask(r lp.Runnable) {
	defer func() {
		if rec := recover(); rec != nil {
			bp.logger.Error("blocking runnable escaped its own panic recovery", slog.Any("recover", rec))
		}
	}()
	r.Run()
}

func (bp *BlockingPool) stop() {
	bp.cancel()
	bp.wg.Wait()
}
