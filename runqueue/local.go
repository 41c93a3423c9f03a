package runqueue

import (
	"code.hybscloud.com/lfq"

	"github.com/petabytecl/quip/lp"
)

// Local is one worker's own bounded run queue. Every worker owns exactly
// one; pushes from the owner go here first, and other workers may steal
// a batch from it when they run dry.
type Local struct {
	q *lfq.MPMC[lp.Runnable]
}

// NewLocal builds a Local queue. capacity is rounded up to the next
// power of two by the underlying MPMC implementation.
func NewLocal(capacity int) *Local {
	return &Local{q: lfq.NewMPMC[lp.Runnable](capacity)}
}

// Cap returns the queue's usable capacity.
func (l *Local) Cap() int {
	return l.q.Cap()
}

// Push enqueues r. It returns false if the queue is full, in which case
// the caller (the owning worker) should spill r to the Global queue.
func (l *Local) Push(r lp.Runnable) bool {
	err := l.q.Enqueue(&r)
	return err == nil
}

// Pop removes and returns the next runnable, FIFO, or (nil, false) if
// the queue is currently empty.
func (l *Local) Pop() (lp.Runnable, bool) {
	r, err := l.q.Dequeue()
	if err != nil {
		return nil, false
	}
	return r, true
}

// StealBatch removes up to max runnables from l for a thief worker,
// stopping early once l runs empty. Per §4.2 a thief takes at most half
// of what it finds; callers compute max as half their best estimate of
// the victim's depth (e.g. the victim's Cap()/2) since lock-free queues
// intentionally expose no exact length.
func (l *Local) StealBatch(max int) []lp.Runnable {
	if max <= 0 {
		return nil
	}
	stolen := make([]lp.Runnable, 0, max)
	for i := 0; i < max; i++ {
		r, ok := l.Pop()
		if !ok {
			break
		}
		stolen = append(stolen, r)
	}
	return stolen
}
