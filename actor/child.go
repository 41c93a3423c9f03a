package actor

import (
	"context"
	"log/slog"
	"sync"

	"github.com/petabytecl/quip/dispatch"
	"github.com/petabytecl/quip/envelope"
	"github.com/petabytecl/quip/executor"
	"github.com/petabytecl/quip/id"
	"github.com/petabytecl/quip/lp"
	"github.com/petabytecl/quip/mailbox"
	"github.com/petabytecl/quip/quippath"
)

// defaultUserChanCapacity bounds how many user-level envelopes a child
// buffers ahead of its body consuming them (including ones that arrive
// before Start, replayed in order once the body starts reading). Past
// the cap the oldest buffered envelope is dropped, resolving Open
// Question 2 (see SPEC_FULL.md).
const defaultUserChanCapacity = 1024

// Exec is the user-supplied body a Child runs. ctx is cancelled on a
// cooperative Stop (body should wind down the next time it checks ctx
// or calls actorCtx.Recv) and is the context a Kill abandons the LP
// under. A nil return is a finished child (no restart); any other
// return, or a panic, faults the child and triggers the owning group's
// restart policy.
type Exec func(ctx context.Context, actorCtx *Context) error

// Child is one supervised member: the §4.7 lifecycle state machine
// wrapped around an Exec body run on the executor pool. A Child
// survives restarts: Restart re-arms the same underlying LP rather than
// building a new one, so a RecoverableHandle obtained before a restart
// keeps resolving against the fresh run (see lp.LP.Restart).
type Child struct {
	id       id.QuipId
	name     string
	path     quippath.Path
	mb       *mailbox.Mailbox
	exec     Exec
	stack    lp.Stack
	pool     *executor.Pool
	registry *dispatch.Registry
	logger   *slog.Logger

	mu         sync.Mutex
	state      State
	userCh     chan envelope.Envelope
	runnable   *lp.LP[struct{}]
	handle     *lp.RecoverableHandle[struct{}]
	execCancel context.CancelFunc
	lastErr    error
	done       chan struct{}
}

func newChild(name string, path quippath.Path, parent *mailbox.Mailbox, exec Exec, stack lp.Stack, pool *executor.Pool, registry *dispatch.Registry, logger *slog.Logger) *Child {
	if logger == nil {
		logger = slog.Default()
	}
	return &Child{
		id:       path.ID(),
		name:     name,
		path:     path,
		mb:       mailbox.New(path, parent),
		exec:     exec,
		stack:    stack,
		pool:     pool,
		registry: registry,
		logger:   logger.With(slog.String("child", name), slog.String("path", path.String())),
		userCh:   make(chan envelope.Envelope, defaultUserChanCapacity),
		done:     make(chan struct{}),
	}
}

// ID returns the child's identity.
func (c *Child) ID() id.QuipId { return c.id }

// Path returns the child's address.
func (c *Child) Path() quippath.Path { return c.path }

// Mailbox returns the child's inbox, for a parent's fan-out set.
func (c *Child) Mailbox() *mailbox.Mailbox { return c.mb }

// State returns the child's current lifecycle state.
func (c *Child) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Done returns the channel closed at the end of the child's current
// run. It is replaced on every restart, so callers that span restarts
// should re-fetch it rather than caching the channel value.
func (c *Child) Done() <-chan struct{} {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.done
}

// LastError returns the error recorded at the most recent fault, if any.
func (c *Child) LastError() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

// run is the child's control loop: it owns the mailbox and demultiplexes
// Start/Stop/Kill from everything else, which it forwards to the body
// via userCh. It returns only once the mailbox is closed (permanent
// teardown — see shutdown), surviving any number of fault/restart
// cycles in between.
func (c *Child) run(parentCtx context.Context) {
	for {
		env, ok := c.mb.Next(parentCtx)
		if !ok {
			c.beginKill()
			c.awaitTermination()
			return
		}

		switch env.Payload.(type) {
		case envelope.Start:
			c.beginRunning(parentCtx)
		case envelope.Stop:
			c.beginStop()
		case envelope.Kill:
			c.beginKill()
		default:
			c.forward(env)
		}
	}
}

func (c *Child) forward(env envelope.Envelope) {
	select {
	case c.userCh <- env:
	default:
		select {
		case <-c.userCh:
		default:
		}
		select {
		case c.userCh <- env:
		default:
		}
	}
}

// beginRunning transitions Init or Terminated (a fresh start, or a
// restart after fault) into Running, (re)arming the body's LP.
func (c *Child) beginRunning(parentCtx context.Context) {
	c.mu.Lock()
	if c.state != StateInit && c.state != StateTerminated {
		c.mu.Unlock()
		return
	}
	c.state = StateRunning
	c.done = make(chan struct{})
	doneCh := c.done

	execCtx, cancel := context.WithCancel(parentCtx)
	c.execCancel = cancel

	ref := ChildRef{ID: c.id, Path: c.path}
	sig := quippath.NewSignature(c.path, c.mb)
	actorCtx := newContext(ref, sig, c.userCh, c.registry)

	body := func(ctx context.Context) (struct{}, error) {
		err := c.exec(ctx, actorCtx)
		return struct{}{}, err
	}

	if c.runnable == nil {
		c.runnable, c.handle = executor.SpawnSupervised(c.pool, execCtx, body, c.stack)
	} else {
		c.runnable.Restart()
		c.runnable.Schedule()
	}
	handle := c.handle
	c.mu.Unlock()

	go func() {
		outcome, err := handle.Wait(context.Background())
		c.finish(doneCh, outcome, err)
	}()
}

func (c *Child) beginStop() {
	c.mu.Lock()
	if c.state != StateRunning {
		c.mu.Unlock()
		return
	}
	c.state = StateStopping
	cancel := c.execCancel
	c.mu.Unlock()

	if cancel != nil {
		cancel()
	}
}

func (c *Child) beginKill() {
	c.mu.Lock()
	if c.state != StateRunning && c.state != StateStopping {
		c.mu.Unlock()
		return
	}
	c.state = StateStopping
	cancel := c.execCancel
	runnable := c.runnable
	c.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if runnable != nil {
		runnable.Cancel()
	}
}

// awaitTermination blocks until an in-flight body (if any) resolves,
// used when the mailbox itself closes out from under a running child.
func (c *Child) awaitTermination() {
	c.mu.Lock()
	state := c.state
	doneCh := c.done
	c.mu.Unlock()

	if state == StateInit || state == StateTerminated {
		return
	}
	<-doneCh
}

// shutdown retires the child permanently: it cancels any in-flight body
// and closes the mailbox, which ends run's loop for good. Called by the
// owning group when a restart policy gives up on this member.
func (c *Child) shutdown() {
	c.beginKill()
	c.mb.Close()
}

// finish records a body's outcome and reports Stopped/Faulted to the
// parent via the mailbox, per §4.7's Stopping/Faulting → Terminated
// transitions. doneCh is the channel beginRunning minted for this run,
// threaded through explicitly so a later restart's fresh channel is
// never closed twice.
func (c *Child) finish(doneCh chan struct{}, outcome lp.Outcome[struct{}], waitErr error) {
	c.mu.Lock()
	if c.state == StateTerminated {
		c.mu.Unlock()
		return
	}

	var faulted bool
	var cause error
	switch {
	case waitErr != nil:
		faulted = true
		cause = waitErr
	case !outcome.Completed:
		faulted = true
		if outcome.Err != nil {
			cause = outcome.Err
		} else {
			cause = ErrChildCancelled
		}
	case outcome.Err != nil:
		faulted = true
		cause = outcome.Err
	}

	c.lastErr = cause
	c.state = StateTerminated
	c.mu.Unlock()

	if faulted {
		c.logger.Warn("child faulted", slog.Any("error", cause))
		c.mb.Faulted(c.id, cause)
	} else {
		c.logger.Debug("child finished")
		c.mb.Stopped(c.id)
	}

	close(doneCh)
}
