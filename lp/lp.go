package lp

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"
	"sync/atomic"

	"github.com/petabytecl/quip/callback"
	"github.com/petabytecl/quip/id"
)

// Runnable is the non-generic face of an LP[T], the type the executor's
// run queue actually stores so that LPs of different result types can
// share one queue.
type Runnable interface {
	// ID returns the process id assigned at construction.
	ID() id.QuipId
	// Run drives the body to completion, invoking the Stack's hooks
	// around it. Run is a no-op if the LP was cancelled beforehand.
	Run()
	// Schedule invokes the LP's schedule function against itself,
	// requesting the caller (typically a restart strategy) re-enqueue it.
	Schedule()
	// Cancel marks the LP cancelled. A subsequent Run is a no-op and any
	// handle resolves as cancelled.
	Cancel()
}

// ScheduleFunc re-enqueues an LP, the hook a waker or restart strategy
// invokes to get a process running again.
type ScheduleFunc func(Runnable)

// Body is the suspendable computation an LP drives. It receives a
// context so long-running bodies can observe cancellation, and it is
// invoked once per Run; Restart re-arms the LP for another Run.
type Body[T any] func(ctx context.Context) (T, error)

// LP wraps a Body together with its lifecycle Stack and process id. Use
// [Build] for a handle that propagates panics to the caller, or
// [Recoverable] for a handle that survives them.
type LP[T any] struct {
	id         id.QuipId
	ctx        context.Context
	body       Body[T]
	stack      Stack
	scheduleFn ScheduleFunc

	cancelled atomic.Bool
	ran       atomic.Bool

	recoverable bool

	mu       sync.Mutex
	resultCh chan result[T]
}

type result[T any] struct {
	value     T
	err       error
	panicked  bool
	cancelled bool
}

// Build returns an LP that, when Run, drives body until it completes or
// panics. The returned Handle's Wait returns the panic wrapped as an
// error if the body panicked.
func Build[T any](ctx context.Context, body Body[T], scheduleFn ScheduleFunc, stack Stack) (*LP[T], *Handle[T]) {
	p := newLP(ctx, body, scheduleFn, stack, false)
	return p, &Handle[T]{lp: p}
}

// Recoverable returns an LP whose handle survives panics: it resolves to
// (value, true) on completion and (zero, false) on panic or cancellation.
func Recoverable[T any](ctx context.Context, body Body[T], scheduleFn ScheduleFunc, stack Stack) (*LP[T], *RecoverableHandle[T]) {
	p := newLP(ctx, body, scheduleFn, stack, true)
	return p, &RecoverableHandle[T]{lp: p}
}

func newLP[T any](ctx context.Context, body Body[T], scheduleFn ScheduleFunc, stack Stack, recoverable bool) *LP[T] {
	if ctx == nil {
		ctx = context.Background()
	}
	return &LP[T]{
		id:          id.New(),
		ctx:         ctx,
		body:        body,
		stack:       stack,
		scheduleFn:  scheduleFn,
		recoverable: recoverable,
		resultCh:    make(chan result[T], 1),
	}
}

// ID implements Runnable.
func (p *LP[T]) ID() id.QuipId { return p.id }

// Schedule implements Runnable.
func (p *LP[T]) Schedule() {
	if p.scheduleFn != nil {
		p.scheduleFn(p)
	}
}

// Cancel implements Runnable.
func (p *LP[T]) Cancel() {
	if p.cancelled.CompareAndSwap(false, true) {
		p.deliver(result[T]{cancelled: true})
	}
}

// Run implements Runnable.
func (p *LP[T]) Run() {
	if p.cancelled.Load() {
		return
	}
	if !p.ran.CompareAndSwap(false, true) {
		return
	}

	p.stack.callBeforeStart()
	p.runBody()
}

func (p *LP[T]) runBody() {
	defer func() {
		if r := recover(); r != nil {
			p.stack.callAfterPanic(r)
			err := fmt.Errorf("lp: panic: %v", r)
			if callback.ShouldCaptureBacktraces() {
				err = fmt.Errorf("%w\n%s", err, debug.Stack())
			}
			if p.recoverable {
				p.deliver(result[T]{panicked: true, err: err})
				return
			}
			p.deliver(result[T]{panicked: true, err: err})
		}
	}()

	value, err := p.body(p.ctx)
	p.stack.callAfterComplete()
	p.deliver(result[T]{value: value, err: err})
}

func (p *LP[T]) deliver(r result[T]) {
	ch := p.currentChan()
	select {
	case ch <- r:
	default:
	}
}

func (p *LP[T]) currentChan() chan result[T] {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.resultCh
}

// Restart re-arms the LP for another Run, invoking BeforeRestart before
// the reset and AfterRestart once it can be scheduled again. Any handle
// obtained before Restart keeps working: it transparently waits on the
// fresh result channel. Restart is used by the supervision machinery in
// package actor, never by the LP itself.
func (p *LP[T]) Restart() {
	p.stack.callBeforeRestart()
	p.cancelled.Store(false)
	p.ran.Store(false)

	p.mu.Lock()
	p.resultCh = make(chan result[T], 1)
	p.mu.Unlock()

	p.stack.callAfterRestart()
}
