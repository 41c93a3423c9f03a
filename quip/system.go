// Package quip is the root of the actor runtime: it owns the pool, the
// dispatcher registry and the top-level supervision tree, and exposes
// the single entry point user code calls to build one.
package quip

import (
	"context"
	"log/slog"
	"sync"

	"github.com/petabytecl/quip/actor"
	"github.com/petabytecl/quip/callback"
	"github.com/petabytecl/quip/dispatch"
	"github.com/petabytecl/quip/envelope"
	"github.com/petabytecl/quip/executor"
	"github.com/petabytecl/quip/lp"
	"github.com/petabytecl/quip/quippath"
)

// Action is the body Spawn runs: a one-off unit of work dispatched
// straight onto the executor pool, outside the supervision tree.
type Action func(ctx context.Context) error

// System is the process-wide runtime: a root Supervisor, a reserved
// dead-letters ChildrenGroup, the dispatcher registry and the pool
// every Child and Action ultimately runs on. Construct one with Init
// or InitWith; every call builds a new, independent System. The package
// keeps no process-wide default instance and has no package-level
// Start/Stop/... functions.
type System struct {
	pool     *executor.Pool
	registry *dispatch.Registry
	logger   *slog.Logger
	cfg      callback.Config

	root        *actor.Supervisor
	deadLetters *actor.ChildrenGroup

	mu      sync.Mutex
	running bool
}

// Init builds a System with default options and a default Config
// (backtraces shown). Equivalent to InitWith(callback.New()).
func Init() (*System, error) {
	return InitWith(callback.New())
}

// InitWith builds a System, installing cfg process-wide via
// callback.Install before anything can run and fault. Options further
// tune the pool and logger; see Options.
func InitWith(cfg callback.Config, opts ...Option) (*System, error) {
	callback.Install(cfg)

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}

	pool := executor.New(o.Executor, o.Logger)
	registry := dispatch.NewRegistry()

	root, err := actor.NewSupervisor(quippath.Root(), nil, pool, registry, o.Logger,
		actor.WithSupervisorName("root"))
	if err != nil {
		return nil, err
	}

	deadLetters, err := root.AddChildren(
		actor.WithName(quippath.DeadLettersGroupName),
		actor.WithRedundancy(1),
		actor.WithExec(drainDeadLetters),
		actor.WithChildrenRestartPolicy(actor.AlwaysRestart{}),
		actor.WithChildrenRestartStrategy(actor.ImmediateStrategy{}),
	)
	if err != nil {
		return nil, err
	}

	return &System{
		pool:        pool,
		registry:    registry,
		logger:      o.Logger,
		cfg:         cfg,
		root:        root,
		deadLetters: deadLetters,
	}, nil
}

// drainDeadLetters is the reserved group's body: it logs whatever
// arrives and never returns, so AlwaysRestart/ImmediateStrategy never
// actually has to kick in short of a panic.
func drainDeadLetters(ctx context.Context, actorCtx *actor.Context) error {
	for {
		env, ok := actorCtx.Recv(ctx)
		if !ok {
			return nil
		}
		slog.Default().Warn("dead letter",
			slog.String("from", env.Signature.Path().String()),
			slog.Any("payload", env.Payload))
	}
}

// Start starts the root supervisor, cascading down to every member
// registered before this call (the dead-letters group, and anything
// Supervisor/Children added since Init). Returns ErrAlreadyRunning if
// already started.
func (s *System) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return ErrAlreadyRunning
	}
	s.running = true
	s.mu.Unlock()

	return s.root.Start(ctx)
}

// Stop asks the root supervisor, and through it every member, to wind
// down cooperatively. Does not block; see BlockUntilStopped.
func (s *System) Stop() error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return ErrNotRunning
	}
	s.running = false
	s.mu.Unlock()

	s.root.Stop()
	return nil
}

// Kill forcibly tears down the root supervisor, skipping cooperative
// shutdown for any member still running.
func (s *System) Kill() error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return ErrNotRunning
	}
	s.running = false
	s.mu.Unlock()

	s.root.Kill()
	return nil
}

// BlockUntilStopped blocks until the root supervisor has fully
// terminated, the Go rendering of the process-lifecycle close in
// SPEC_FULL.md: init -> start -> (work) -> stop or kill -> this call
// returns.
func (s *System) BlockUntilStopped() {
	<-s.root.Done()
}

// Supervisor registers a nested Supervisor directly under the root,
// configured by opts. Must be called before Start.
func (s *System) Supervisor(opts ...actor.SupervisorOption) (*actor.Supervisor, error) {
	return s.root.AddSupervisor(opts...)
}

// Children registers a ChildrenGroup directly under the root,
// configured by opts. Must be called before Start.
func (s *System) Children(opts ...actor.ChildrenOption) (*actor.ChildrenGroup, error) {
	return s.root.AddChildren(opts...)
}

// Spawn dispatches action onto the pool as a one-off LP, independent
// of the supervision tree: no restart on panic or error, just a handle
// the caller can Wait on.
func (s *System) Spawn(ctx context.Context, action Action) *lp.RecoverableHandle[struct{}] {
	body := func(ctx context.Context) (struct{}, error) {
		return struct{}{}, action(ctx)
	}
	return executor.Spawn(s.pool, ctx, body, lp.Stack{})
}

// Broadcast fans payload out to every direct member of the root
// supervisor (including any nested Supervisor/Children, but not their
// descendants).
func (s *System) Broadcast(payload envelope.Payload) {
	s.root.Broadcast(payload)
}

// Pool exposes the underlying executor.Pool, for callers building their
// own LPs outside the supervision tree (see quipio).
func (s *System) Pool() *executor.Pool { return s.pool }

// Registry exposes the dispatcher registry backing named
// WithDispatcher/WithDistributor ChildrenGroup options.
func (s *System) Registry() *dispatch.Registry { return s.registry }

// DeadLetters returns the reserved ChildrenGroup every unrouted
// envelope should ultimately reach. Nothing in the runtime redirects
// failed sends here automatically today; callers that detect a failed
// delivery can Tell it to this group's mailbox.
func (s *System) DeadLetters() *actor.ChildrenGroup { return s.deadLetters }
