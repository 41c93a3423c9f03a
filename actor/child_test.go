package actor

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/petabytecl/quip/envelope"
	"github.com/petabytecl/quip/executor"
	"github.com/petabytecl/quip/id"
	"github.com/petabytecl/quip/lp"
	"github.com/petabytecl/quip/mailbox"
	"github.com/petabytecl/quip/quippath"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testPool(t *testing.T) *executor.Pool {
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

func anyGroupPath(t *testing.T, sup quippath.Path) quippath.Path {
	t.Helper()
	p, err := sup.Append(quippath.KindChildren, "workers", id.New())
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
		time.Sleep(time.Millisecond)
	}
	require.True(t, cond(), "condition not met before timeout")
}

func newTestChild(t *testing.T, exec Exec) *Child {
	t.Helper()
	pool := testPool(t)
	sup := anySupervisorPath(t)
	grp := anyGroupPath(t, sup)
	parent := mailbox.New(grp, nil)
	childPath, err := grp.Append(quippath.KindChild, "worker-1", id.New())
	require.NoError(t, err)

	child := newChild("worker-1", childPath, parent, exec, lp.Stack{}, pool, nil, nil)
	return child
}

func startChild(t *testing.T, child *Child) context.CancelFunc {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	go child.run(ctx)
	child.Mailbox().SendSelf(envelope.New(envelope.Start{}, quippath.NewSignature(child.Path(), child.Mailbox())))
	return cancel
}

func TestChildFinishesCleanlyReportsStopped(t *testing.T) {
	ran := make(chan struct{})
	child := newTestChild(t, func(ctx context.Context, actorCtx *Context) error {
		close(ran)
		return nil
	})
	cancel := startChild(t, child)
	defer cancel()

	select {
	case <-ran:
	case <-time.After(time.Second):
		t.Fatal("body never ran")
	}

	waitFor(t, func() bool { return child.State() == StateTerminated }, time.Second)
	assert.NoError(t, child.LastError())
}

func TestChildFaultsOnError(t *testing.T) {
	boom := errors.New("boom")
	child := newTestChild(t, func(ctx context.Context, actorCtx *Context) error {
		return boom
	})
	cancel := startChild(t, child)
	defer cancel()

	waitFor(t, func() bool { return child.State() == StateTerminated }, time.Second)
	assert.ErrorIs(t, child.LastError(), boom)
}

func TestChildFaultsOnPanic(t *testing.T) {
	child := newTestChild(t, func(ctx context.Context, actorCtx *Context) error {
		panic("kaboom")
	})
	cancel := startChild(t, child)
	defer cancel()

	waitFor(t, func() bool { return child.State() == StateTerminated }, time.Second)
	assert.Error(t, child.LastError())
}

func TestChildRecvDeliversUserMessage(t *testing.T) {
	received := make(chan int, 1)
	child := newTestChild(t, func(ctx context.Context, actorCtx *Context) error {
		env, ok := actorCtx.Recv(ctx)
		if !ok {
			return errors.New("recv failed")
		}
		msg, ok := env.Payload.(envelope.Message)
		if !ok {
			return errors.New("unexpected payload")
		}
		n, _ := msg.Value.(int)
		received <- n
		return nil
	})
	cancel := startChild(t, child)
	defer cancel()

	waitFor(t, func() bool { return child.State() == StateRunning }, time.Second)
	child.Mailbox().SendSelf(envelope.New(envelope.Message{Value: 42}, quippath.NewSignature(child.Path(), child.Mailbox())))

	select {
	case n := <-received:
		assert.Equal(t, 42, n)
	case <-time.After(time.Second):
		t.Fatal("message never delivered")
	}
}

func TestChildStopCancelsCooperatively(t *testing.T) {
	started := make(chan struct{})
	child := newTestChild(t, func(ctx context.Context, actorCtx *Context) error {
		close(started)
		<-ctx.Done()
		return ctx.Err()
	})
	cancel := startChild(t, child)
	defer cancel()

	<-started
	child.Mailbox().SendSelf(envelope.New(envelope.Stop{}, quippath.NewSignature(child.Path(), child.Mailbox())))

	waitFor(t, func() bool { return child.State() == StateTerminated }, time.Second)
}

func TestChildRestartReusesUnderlyingProcess(t *testing.T) {
	var runs int
	done := make(chan struct{}, 2)
	child := newTestChild(t, func(ctx context.Context, actorCtx *Context) error {
		runs++
		done <- struct{}{}
		if runs == 1 {
			return errors.New("first run fails")
		}
		return nil
	})
	cancel := startChild(t, child)
	defer cancel()

	<-done
	waitFor(t, func() bool { return child.State() == StateTerminated }, time.Second)
	require.Error(t, child.LastError())

	child.Mailbox().SendSelf(envelope.New(envelope.Start{}, quippath.NewSignature(child.Path(), child.Mailbox())))
	<-done
	waitFor(t, func() bool { return child.State() == StateTerminated }, time.Second)
	assert.NoError(t, child.LastError())
	assert.Equal(t, 2, runs)
}
