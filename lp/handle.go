package lp

import (
	"context"
	"errors"
)

// ErrCancelled is returned by Handle.Wait when the LP was cancelled
// before it ran to completion.
var ErrCancelled = errors.New("lp: cancelled")

// Handle is the awaitable result of an LP built with [Build]. A body
// panic surfaces to Wait as an error rather than being swallowed.
type Handle[T any] struct {
	lp *LP[T]
}

// Wait blocks until the LP completes, is cancelled, or ctx is done,
// whichever happens first.
func (h *Handle[T]) Wait(ctx context.Context) (T, error) {
	var zero T
	select {
	case r := <-h.lp.currentChan():
		if r.cancelled {
			return zero, ErrCancelled
		}
		return r.value, r.err
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}

// RecoverableHandle is the awaitable result of an LP built with
// [Recoverable]. Unlike Handle, a panic never surfaces as Wait's error:
// it resolves as not-completed, like an explicit Cancel, but with the
// panic carried in Outcome.Err.
type RecoverableHandle[T any] struct {
	lp *LP[T]
}

// Outcome is the result of a RecoverableHandle.Wait: Value is only
// meaningful when Completed is true; Err is the body's error when
// Completed, the panic error when the body panicked, and nil on Cancel.
type Outcome[T any] struct {
	Value     T
	Err       error
	Completed bool
}

// Wait blocks until the LP completes, panics, is cancelled, or ctx is
// done, whichever happens first.
func (h *RecoverableHandle[T]) Wait(ctx context.Context) (Outcome[T], error) {
	select {
	case r := <-h.lp.currentChan():
		if r.cancelled {
			return Outcome[T]{}, nil
		}
		if r.panicked {
			// Completed stays false (a panic never "completes" an LP),
			// but the panic value and optional backtrace still travel
			// with it so the owning child can log what actually failed
			// instead of a generic cancellation.
			return Outcome[T]{Err: r.err}, nil
		}
		return Outcome[T]{Value: r.value, Err: r.err, Completed: true}, nil
	case <-ctx.Done():
		return Outcome[T]{}, ctx.Err()
	}
}
