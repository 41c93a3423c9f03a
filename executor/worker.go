package executor

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"sync/atomic"

	"github.com/petermattis/goid"

	"github.com/petabytecl/quip/lp"
	"github.com/petabytecl/quip/park"
	"github.com/petabytecl/quip/runqueue"
)

// localQueueCapacity is the per-worker bounded queue size. A power of
// two, per §4.2.
const localQueueCapacity = 256

// worker owns one local run queue and the goroutine that drains it. It
// runs only non-blocking LPs; blocking work goes to the BlockingPool.
type worker struct {
	index   int
	local   *runqueue.Local
	global  *runqueue.Global
	sleeper *park.Parker
	peers   []*worker // set once by ThreadManager after all workers exist

	approxLen atomic.Int64 // cheap depth estimate; lfq intentionally omits Len()
	goroutine atomic.Int64 // goid of the running loop, for diagnostics

	logger *slog.Logger
}

func newWorker(index int, global *runqueue.Global, sleeper *park.Parker, logger *slog.Logger) *worker {
	return &worker{
		index:   index,
		local:   runqueue.NewLocal(localQueueCapacity),
		global:  global,
		sleeper: sleeper,
		logger:  logger.With(slog.Int("worker", index)),
	}
}

// push enqueues r onto the worker's own local queue, spilling to the
// shared global queue if local is full.
func (w *worker) push(r lp.Runnable) {
	if w.local.Push(r) {
		w.approxLen.Add(1)
		return
	}
	w.global.Push(r)
}

// run is the worker's main loop: pop local, drain global, steal, park.
// It exits when ctx is done.
func (w *worker) run(ctx context.Context) {
	w.goroutine.Store(goid.Get())
	pinCurrentThread(w.index)

	for {
		if ctx.Err() != nil {
			return
		}

		if r, ok := w.local.Pop(); ok {
			w.approxLen.Add(-1)
			w.exec(r)
			continue
		}

		if w.refillFromGlobal() {
			continue
		}

		if w.stealFromPeer() {
			continue
		}

		if !w.sleeper.Park(ctx) {
			return
		}
	}
}

func (w *worker) exec(r lp.Runnable) {
	defer func() {
		// exec runs on the worker's own goroutine; a defensive recover
		// here only guards against an LP whose Run itself fails to catch
		// a panic (it shouldn't, but a worker crashing would stall every
		// LP behind it in the queue).
		if rec := recover(); rec != nil {
			w.logger.Error("runnable escaped its own panic recovery", slog.Any("recover", rec))
		}
	}()
	r.Run()
}

// refillFromGlobal drains a batch from the shared global queue into the
// worker's own local queue (spilling back to global whatever local
// cannot hold); the next loop iteration pops from local as usual.
func (w *worker) refillFromGlobal() bool {
	batch := w.global.DrainBatch(localQueueCapacity / 2)
	if len(batch) == 0 {
		return false
	}
	for _, r := range batch {
		w.push(r)
	}
	return true
}

// stealFromPeer picks a random peer and takes up to half of its local
// queue, per §4.2.
func (w *worker) stealFromPeer() bool {
	if len(w.peers) == 0 {
		return false
	}
	victim := w.peers[rand.IntN(len(w.peers))]
	if victim == w {
		return false
	}
	stolen := victim.local.StealBatch(victim.local.Cap() / 2)
	if len(stolen) == 0 {
		return false
	}
	victim.approxLen.Add(-int64(len(stolen)))
	for _, r := range stolen {
		w.push(r)
	}
	return true
}

// depth is the worker's best-effort queue length, used by the load
// balancer to find the least busy worker.
func (w *worker) depth() int64 {
	return w.approxLen.Load()
}
