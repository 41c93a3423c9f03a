package actor_test

import (
	"context"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/petabytecl/quip/actor"
	"github.com/petabytecl/quip/envelope"
	"github.com/petabytecl/quip/executor"
	"github.com/petabytecl/quip/id"
	"github.com/petabytecl/quip/mailbox"
	"github.com/petabytecl/quip/quippath"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testExecutorPool(t *testing.T) *executor.Pool {
	t.Helper()
	pool := executor.New(executor.Config{Workers: 2, MinBlocking: 1, MaxBlocking: 2}, discardLogger())
	t.Cleanup(pool.Stop)
	return pool
}

func anySupervisorPath(t *testing.T) quippath.Path {
	t.Helper()
	p, err := quippath.Root().Append(quippath.KindSupervisor, "root", id.New())
	require.NoError(t, err)
	return p
}

func waitFor(t *testing.T, cond func() bool, timeout time.Duration) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	require.True(t, cond(), "condition not met before timeout")
}

// TestChildrenGroupOneForOneRestartsOnlyFailedMember is the S4 scenario:
// one member panics, its sibling keeps running uninterrupted, and the
// failed member restarts in place under OneForOne+Always.
func TestChildrenGroupOneForOneRestartsOnlyFailedMember(t *testing.T) {
	pool := testExecutorPool(t)
	sup := anySupervisorPath(t)
	parent := mailbox.New(sup, nil)

	var calls int32
	exec := func(ctx context.Context, actorCtx *actor.Context) error {
		n := atomic.AddInt32(&calls, 1)
		if n == 1 {
			panic("boom")
		}
		<-ctx.Done()
		return nil
	}

	group, err := actor.NewChildrenGroup(sup, parent, pool, nil, discardLogger(),
		actor.WithName("workers"),
		actor.WithRedundancy(2),
		actor.WithExec(exec),
		actor.WithChildrenStrategy(actor.OneForOne),
		actor.WithChildrenRestartPolicy(actor.AlwaysRestart{}),
		actor.WithChildrenRestartStrategy(actor.ImmediateStrategy{}),
	)
	require.NoError(t, err)
	require.NoError(t, group.Start(context.Background()))
	t.Cleanup(func() {
		group.Kill()
		<-group.Done()
	})

	waitFor(t, func() bool { return atomic.LoadInt32(&calls) >= 3 }, 2*time.Second)

	assert.Equal(t, actor.StateRunning, group.State())
	assert.Len(t, group.Elems(), 2)
}

// TestChildrenGroupExhaustedRestartsPropagateFaulted checks TriesRestart:
// after its one allowed restart also faults, the member is dropped and
// Faulted is reported to the group's parent.
func TestChildrenGroupExhaustedRestartsPropagateFaulted(t *testing.T) {
	pool := testExecutorPool(t)
	sup := anySupervisorPath(t)
	parent := mailbox.New(sup, nil)

	exec := func(ctx context.Context, actorCtx *actor.Context) error {
		panic("always fails")
	}

	group, err := actor.NewChildrenGroup(sup, parent, pool, nil, discardLogger(),
		actor.WithName("flaky"),
		actor.WithRedundancy(1),
		actor.WithExec(exec),
		actor.WithChildrenRestartPolicy(actor.TriesRestart{Max: 1}),
		actor.WithChildrenRestartStrategy(actor.ImmediateStrategy{}),
	)
	require.NoError(t, err)
	require.NoError(t, group.Start(context.Background()))

	waitFor(t, func() bool { return len(group.Elems()) == 0 }, 2*time.Second)

	env, ok := parent.Next(context.Background())
	require.True(t, ok)
	faulted, isFaulted := env.Payload.(envelope.Faulted)
	require.True(t, isFaulted)
	assert.Equal(t, group.ID(), faulted.ID)
	assert.ErrorIs(t, faulted.Err, actor.ErrRestartsExhausted)
}

func TestChildrenGroupStopTerminatesAllMembers(t *testing.T) {
	pool := testExecutorPool(t)
	sup := anySupervisorPath(t)
	parent := mailbox.New(sup, nil)

	started := make(chan struct{}, 2)
	exec := func(ctx context.Context, actorCtx *actor.Context) error {
		started <- struct{}{}
		<-ctx.Done()
		return nil
	}

	group, err := actor.NewChildrenGroup(sup, parent, pool, nil, discardLogger(),
		actor.WithRedundancy(2),
		actor.WithExec(exec),
	)
	require.NoError(t, err)
	require.NoError(t, group.Start(context.Background()))

	<-started
	<-started

	group.Stop()
	select {
	case <-group.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("group never terminated")
	}
	assert.Equal(t, actor.StateTerminated, group.State())
}
