package runqueue

import (
	"sync"

	"github.com/petabytecl/quip/lp"
)

// Global is the shared overflow queue every worker spills into when its
// own Local queue is full, and drains from before attempting a steal.
// Unlike Local it is unbounded: overflow must never be lost.
type Global struct {
	mu    sync.Mutex
	items []lp.Runnable
}

// NewGlobal builds an empty Global queue.
func NewGlobal() *Global {
	return &Global{}
}

// Push appends r to the tail of the queue.
func (g *Global) Push(r lp.Runnable) {
	g.mu.Lock()
	g.items = append(g.items, r)
	g.mu.Unlock()
}

// Pop removes and returns the item at the head of the queue, or
// (nil, false) if it is empty.
func (g *Global) Pop() (lp.Runnable, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if len(g.items) == 0 {
		return nil, false
	}
	r := g.items[0]
	g.items[0] = nil
	g.items = g.items[1:]
	return r, true
}

// DrainBatch removes up to max items from the head of the queue.
func (g *Global) DrainBatch(max int) []lp.Runnable {
	if max <= 0 {
		return nil
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	n := len(g.items)
	if n == 0 {
		return nil
	}
	if n > max {
		n = max
	}
	batch := make([]lp.Runnable, n)
	copy(batch, g.items[:n])
	for i := 0; i < n; i++ {
		g.items[i] = nil
	}
	g.items = g.items[n:]
	return batch
}

// Len reports the number of items currently queued. Global is a plain
// mutex-guarded slice, so an exact length is cheap here, unlike Local.
func (g *Global) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.items)
}
