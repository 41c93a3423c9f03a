package park

import (
	"context"
	"sync/atomic"
)

// Parker is one worker's private wake channel. Park blocks the calling
// goroutine until Unpark is called (or ctx is done); Unpark is
// idempotent between Park calls so a wake is never lost to a race
// between "decide to park" and "someone pushed work".
type Parker struct {
	wake   chan struct{}
	parked atomic.Bool
}

// NewParker builds a Parker ready for use.
func NewParker() *Parker {
	return &Parker{wake: make(chan struct{}, 1)}
}

// Park blocks until Unpark is called or ctx is done. It returns true if
// woken by Unpark, false if ctx ended first.
func (p *Parker) Park(ctx context.Context) bool {
	p.parked.Store(true)
	defer p.parked.Store(false)

	select {
	case <-p.wake:
		return true
	case <-ctx.Done():
		// Drain a racing wake so it doesn't leak into the next Park.
		select {
		case <-p.wake:
		default:
		}
		return false
	}
}

// Unpark wakes the parker if it is currently (or about to be) parked.
// Calling Unpark when nobody is parked primes the channel so the next
// Park call returns immediately, preventing the lost-wakeup race.
func (p *Parker) Unpark() {
	select {
	case p.wake <- struct{}{}:
	default:
	}
}

// IsParked reports whether the worker is currently parked. It is a
// best-effort snapshot for the Sleepers set and load-balancing
// statistics, not a synchronization point.
func (p *Parker) IsParked() bool {
	return p.parked.Load()
}
