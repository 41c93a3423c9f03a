package quipio

import (
	"context"
	"os"

	"github.com/petabytecl/quip/executor"
	"github.com/petabytecl/quip/lp"
)

// ReadVectored scatters a single read across bufs (readv(2)), run on
// pool's blocking pool so the syscall never occupies a non-blocking
// worker goroutine for its duration.
func ReadVectored(ctx context.Context, pool *executor.Pool, f *os.File, bufs [][]byte) (int, error) {
	return runBlocking(ctx, pool, func(ctx context.Context) (int, error) {
		return readv(f, bufs)
	})
}

// WriteVectored gathers bufs into a single write (writev(2)), run on
// pool's blocking pool.
func WriteVectored(ctx context.Context, pool *executor.Pool, f *os.File, bufs [][]byte) (int, error) {
	return runBlocking(ctx, pool, func(ctx context.Context) (int, error) {
		return writev(f, bufs)
	})
}

func runBlocking(ctx context.Context, pool *executor.Pool, body lp.Body[int]) (int, error) {
	handle := executor.SpawnBlocking(pool, ctx, body, lp.Stack{})
	outcome, err := handle.Wait(ctx)
	if err != nil {
		return 0, err
	}
	if !outcome.Completed {
		if outcome.Err != nil {
			return 0, outcome.Err
		}
		return 0, ErrCancelled
	}
	return outcome.Value, outcome.Err
}
