package actor

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/petabytecl/quip/backoff"
	"github.com/petabytecl/quip/callback"
	"github.com/petabytecl/quip/dispatch"
	"github.com/petabytecl/quip/envelope"
	"github.com/petabytecl/quip/executor"
	"github.com/petabytecl/quip/id"
	"github.com/petabytecl/quip/mailbox"
	"github.com/petabytecl/quip/quippath"
)

// Node is anything a Supervisor can own and supervise directly: a
// ChildrenGroup or a nested Supervisor. Both satisfy it as-is.
type Node interface {
	ID() id.QuipId
	Path() quippath.Path
	Mailbox() *mailbox.Mailbox
	Start(ctx context.Context) error
	Stop()
	Kill()
	Done() <-chan struct{}
}

var (
	_ Node = (*ChildrenGroup)(nil)
	_ Node = (*Supervisor)(nil)
)

const defaultPreStartBufferCap = 1024

// SupervisorConfig configures a Supervisor. Zero-value fields take the
// defaults NewSupervisor applies.
type SupervisorConfig struct {
	Name              string
	Strategy          Strategy
	RestartPolicy     RestartPolicy
	RestartStrategy   RestartStrategy
	StableRunPeriod   time.Duration
	PreStartBufferCap int
	Callbacks         callback.Hooks
}

// SupervisorOption configures a SupervisorConfig.
type SupervisorOption func(*SupervisorConfig)

// WithSupervisorName sets the supervisor's name.
func WithSupervisorName(name string) SupervisorOption {
	return func(c *SupervisorConfig) { c.Name = name }
}

// WithSupervisorStrategy sets the strategy applied across direct
// members on a fault.
func WithSupervisorStrategy(s Strategy) SupervisorOption {
	return func(c *SupervisorConfig) { c.Strategy = s }
}

// WithSupervisorRestartPolicy sets the restart policy.
func WithSupervisorRestartPolicy(p RestartPolicy) SupervisorOption {
	return func(c *SupervisorConfig) { c.RestartPolicy = p }
}

// WithSupervisorRestartStrategy sets the restart backoff pacing.
func WithSupervisorRestartStrategy(s RestartStrategy) SupervisorOption {
	return func(c *SupervisorConfig) { c.RestartStrategy = s }
}

// WithSupervisorStableRunPeriod sets how long a member must run before
// its restart backoff resets.
func WithSupervisorStableRunPeriod(d time.Duration) SupervisorOption {
	return func(c *SupervisorConfig) {
		if d > 0 {
			c.StableRunPeriod = d
		}
	}
}

// WithPreStartBufferCap bounds how many pre-Start envelopes are
// buffered for replay, resolving Open Question 2 with drop-oldest past
// the cap (see SPEC_FULL.md "Supplemented features").
func WithPreStartBufferCap(n int) SupervisorOption {
	return func(c *SupervisorConfig) {
		if n > 0 {
			c.PreStartBufferCap = n
		}
	}
}

// WithSupervisorCallbacks installs lifecycle hooks run once around the
// supervisor's own Start/Stop, not per member and not per restart.
func WithSupervisorCallbacks(h callback.Hooks) SupervisorOption {
	return func(c *SupervisorConfig) { c.Callbacks = h }
}

func defaultSupervisorConfig() SupervisorConfig {
	return SupervisorConfig{
		Strategy:          OneForOne,
		RestartPolicy:     AlwaysRestart{},
		RestartStrategy:   ImmediateStrategy{},
		StableRunPeriod:   30 * time.Second,
		PreStartBufferCap: defaultPreStartBufferCap,
	}
}

// supervisorMember pairs a direct Node (ChildrenGroup or nested
// Supervisor) with the restart bookkeeping applied when it reports
// Stopped/Faulted.
type supervisorMember struct {
	node      Node
	backoff   backoff.BackOff
	startedAt time.Time
}

// Supervisor is an actor-like node that owns children groups and nested
// supervisors (§4.9), restarting them per its Strategy/RestartPolicy/
// RestartStrategy when one reports termination, and buffering envelopes
// that arrive before Start (§ pre-start buffering).
type Supervisor struct {
	id       id.QuipId
	path     quippath.Path
	mb       *mailbox.Mailbox
	pool     *executor.Pool
	registry *dispatch.Registry
	logger   *slog.Logger
	cfg      SupervisorConfig

	mu      sync.Mutex
	state   SupervisorState
	members []*supervisorMember
	byID    map[id.QuipId]*supervisorMember

	// inbox is continuously fed from mb by pump, capped at
	// cfg.PreStartBufferCap with drop-oldest (the same trick as Child's
	// userCh). This is what lets envelopes other than Start/Stop/Kill
	// accumulate, bounded, while the supervisor is still Init and
	// nothing is yet reading mb directly: controlLoop (started by
	// Start) is inbox's only consumer and sees them replayed in order.
	inbox chan envelope.Envelope

	runCtx    context.Context
	runCancel context.CancelFunc
	wg        sync.WaitGroup
	done      chan struct{}
}

// NewSupervisor builds a Supervisor under parentPath. For the system's
// root supervisor, pass quippath.Root() and a nil parentMailbox.
func NewSupervisor(parentPath quippath.Path, parentMailbox *mailbox.Mailbox, pool *executor.Pool, registry *dispatch.Registry, logger *slog.Logger, opts ...SupervisorOption) (*Supervisor, error) {
	cfg := defaultSupervisorConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.Name == "" {
		cfg.Name = "supervisor"
	}
	if logger == nil {
		logger = slog.Default()
	}

	supID := id.New()
	path, err := parentPath.Append(quippath.KindSupervisor, cfg.Name, supID)
	if err != nil {
		return nil, err
	}

	s := &Supervisor{
		id:       supID,
		path:     path,
		mb:       mailbox.New(path, parentMailbox),
		pool:     pool,
		registry: registry,
		logger:   logger.With(slog.String("supervisor", cfg.Name), slog.String("path", path.String())),
		cfg:      cfg,
		byID:     make(map[id.QuipId]*supervisorMember),
		inbox:    make(chan envelope.Envelope, cfg.PreStartBufferCap),
		done:     make(chan struct{}),
	}
	go s.pump()
	return s, nil
}

// pump is the mailbox's sole direct reader for the supervisor's entire
// lifetime: it forwards every envelope into inbox, dropping the oldest
// buffered one once inbox is full. controlLoop (started by Start) is
// inbox's only consumer, which is what gives pre-Start envelopes their
// bounded buffering and in-order replay.
func (s *Supervisor) pump() {
	for {
		env, ok := s.mb.Next(context.Background())
		if !ok {
			close(s.inbox)
			return
		}
		select {
		case s.inbox <- env:
		default:
			select {
			case <-s.inbox:
			default:
			}
			select {
			case s.inbox <- env:
			default:
			}
		}
	}
}

// ID returns the supervisor's identity.
func (s *Supervisor) ID() id.QuipId { return s.id }

// Path returns the supervisor's address.
func (s *Supervisor) Path() quippath.Path { return s.path }

// Mailbox returns the supervisor's inbox.
func (s *Supervisor) Mailbox() *mailbox.Mailbox { return s.mb }

// State returns the supervisor's current lifecycle state.
func (s *Supervisor) State() SupervisorState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Done returns a channel closed once the supervisor has fully
// terminated. Replaced on every restart.
func (s *Supervisor) Done() <-chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.done
}

// AddChildren registers a new ChildrenGroup as a direct member, built
// immediately under this supervisor's path. Only valid before Start (or
// after a restart, before the next Start).
func (s *Supervisor) AddChildren(opts ...ChildrenOption) (*ChildrenGroup, error) {
	s.mu.Lock()
	if s.state != SupervisorInit && s.state != SupervisorTerminated {
		s.mu.Unlock()
		return nil, ErrAlreadyStarted
	}
	s.mu.Unlock()

	group, err := NewChildrenGroup(s.path, s.mb, s.pool, s.registry, s.logger, opts...)
	if err != nil {
		return nil, err
	}
	s.addMember(group)
	return group, nil
}

// AddSupervisor registers a new nested Supervisor as a direct member.
// The returned Supervisor can be configured further (AddChildren,
// AddSupervisor) before the outer Supervisor's Start cascades down to
// it.
func (s *Supervisor) AddSupervisor(opts ...SupervisorOption) (*Supervisor, error) {
	s.mu.Lock()
	if s.state != SupervisorInit && s.state != SupervisorTerminated {
		s.mu.Unlock()
		return nil, ErrAlreadyStarted
	}
	s.mu.Unlock()

	child, err := NewSupervisor(s.path, s.mb, s.pool, s.registry, s.logger, opts...)
	if err != nil {
		return nil, err
	}
	s.addMember(child)
	return child, nil
}

func (s *Supervisor) addMember(node Node) {
	s.mb.Register(node.ID(), node.Mailbox())
	m := &supervisorMember{
		node:    node,
		backoff: s.cfg.RestartPolicy.wrap(s.cfg.RestartStrategy.newBackOff()),
	}
	s.mu.Lock()
	s.members = append(s.members, m)
	s.byID[node.ID()] = m
	s.mu.Unlock()
}

// Members returns the identities of the supervisor's direct members, in
// registration order.
func (s *Supervisor) Members() []ChildRef {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]ChildRef, len(s.members))
	for i, m := range s.members {
		out[i] = ChildRef{ID: m.node.ID(), Path: m.node.Path()}
	}
	return out
}

// Start cascades Start down to every registered member and begins the
// supervisor's own control loop, replaying any envelopes buffered
// before Start in the order they arrived. Calling Start again once
// State is Terminated restarts the supervisor itself: its members keep
// their registrations and restart bookkeeping, and a fresh run begins.
func (s *Supervisor) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.state != SupervisorInit && s.state != SupervisorTerminated {
		s.mu.Unlock()
		return ErrAlreadyStarted
	}
	s.state = SupervisorStarted
	members := append([]*supervisorMember(nil), s.members...)
	s.done = make(chan struct{})
	s.mu.Unlock()

	// A previous Stop/Kill cleared the mailbox's fan-out set; put every
	// member back so Broadcast reaches them again after a restart.
	for _, m := range members {
		s.mb.Register(m.node.ID(), m.node.Mailbox())
	}

	s.runCtx, s.runCancel = context.WithCancel(ctx)

	for _, m := range members {
		if err := m.node.Start(s.runCtx); err != nil {
			s.logger.Error("member failed to start", slog.Any("error", err))
		}
		m.startedAt = time.Now()
	}

	if err := s.cfg.Callbacks.Run(s.runCtx); err != nil {
		s.logger.Warn("supervisor OnStart hook failed", slog.Any("error", err))
	}

	s.wg.Add(1)
	go s.controlLoop(s.runCtx)
	return nil
}

// Stop asks every member to stop cooperatively, then terminates.
func (s *Supervisor) Stop() {
	s.mb.SendSelf(envelope.New(envelope.Stop{}, quippath.NewSignature(s.path, s.mb)))
}

// Kill forcibly tears down every member, then terminates.
func (s *Supervisor) Kill() {
	s.mb.SendSelf(envelope.New(envelope.Kill{}, quippath.NewSignature(s.path, s.mb)))
}

// Shutdown permanently retires the supervisor: it kills every member,
// waits for termination, then closes the mailbox so pump's loop ends
// for good. Use this instead of Kill when the supervisor is being
// discarded rather than restarted by an owning supervisor (pump, unlike
// ChildrenGroup's control loop, runs for the object's whole lifetime and
// needs an explicit signal to stop).
func (s *Supervisor) Shutdown() {
	s.Kill()
	<-s.Done()
	s.mb.Close()
}

// Broadcast fans payload out to every direct member.
func (s *Supervisor) Broadcast(payload envelope.Payload) {
	s.mb.SendChildren(envelope.New(payload, quippath.NewSignature(s.path, s.mb)))
}

// controlLoop races the next inbound envelope against nothing else
// explicitly: member termination arrives as Stopped/Faulted envelopes on
// this same inbox, which is what gives the "race any child handle
// completed against next inbound envelope" requirement its Go shape —
// there is one channel to select on, not two, because member completion
// is already funneled through it. Envelopes queued before this Start
// call (buffered by pump, see NewSupervisor) are drained first, in the
// order they arrived.
func (s *Supervisor) controlLoop(ctx context.Context) {
	defer s.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case env, ok := <-s.inbox:
			if !ok {
				return
			}
			if s.handleEnvelope(env) {
				return
			}
		}
	}
}

// handleEnvelope processes one envelope and reports whether the control
// loop should stop (a terminal Stop/Kill was handled).
func (s *Supervisor) handleEnvelope(env envelope.Envelope) bool {
	switch p := env.Payload.(type) {
	case envelope.Stop:
		s.shutdownMembers(false)
		s.terminate()
		return true
	case envelope.Kill:
		s.shutdownMembers(true)
		s.terminate()
		return true
	case envelope.Stopped:
		s.onMemberTerminated(p.ID, nil)
	case envelope.Faulted:
		s.onMemberTerminated(p.ID, p.Err)
	default:
		// User messages are routed to children groups/supervisors
		// directly, not through the owning supervisor's own mailbox;
		// anything else arriving here is logged and dropped.
		s.logger.Debug("supervisor received unexpected envelope", slog.String("kind", envelope.Kind(env.Payload)))
	}
	return false
}

func (s *Supervisor) shutdownMembers(forceful bool) {
	s.mu.Lock()
	members := append([]*supervisorMember(nil), s.members...)
	s.mu.Unlock()

	group, _ := errgroup.WithContext(context.Background())
	for _, m := range members {
		m := m
		group.Go(func() error {
			if forceful {
				m.node.Kill()
			} else {
				m.node.Stop()
			}
			<-m.node.Done()
			return nil
		})
	}
	_ = group.Wait()

	s.cfg.Callbacks.RunStop(context.Background())
	s.mb.Stopped(s.id)
}

func (s *Supervisor) terminate() {
	s.mu.Lock()
	s.state = SupervisorTerminated
	done := s.done
	s.mu.Unlock()
	if s.runCancel != nil {
		s.runCancel()
	}
	close(done)
}

func (s *Supervisor) indexOf(memberID id.QuipId) int {
	for i, m := range s.members {
		if m.node.ID() == memberID {
			return i
		}
	}
	return -1
}

func (s *Supervisor) onMemberTerminated(memberID id.QuipId, cause error) {
	if cause == nil {
		// A member finished cleanly (e.g. Never policy gave up on one of
		// its own members and propagated Stopped): nothing to restart.
		return
	}

	s.mu.Lock()
	idx := s.indexOf(memberID)
	if idx < 0 {
		s.mu.Unlock()
		return
	}
	affectedIdx := s.cfg.Strategy.affected(idx, len(s.members))
	cohort := make([]*supervisorMember, 0, len(affectedIdx))
	for _, ai := range affectedIdx {
		cohort = append(cohort, s.members[ai])
	}
	s.mu.Unlock()

	s.wg.Add(1)
	go s.restartCohort(cohort, cause)
}

// restartCohort stops every affected sibling (errgroup fan-out, first
// error captured though restart itself never errors directly here) then
// restarts each per its own backoff, mirroring ChildrenGroup's member
// restart at one level up the tree.
func (s *Supervisor) restartCohort(cohort []*supervisorMember, cause error) {
	defer s.wg.Done()

	group, _ := errgroup.WithContext(context.Background())
	for _, m := range cohort {
		m := m
		group.Go(func() error {
			select {
			case <-m.node.Done():
			default:
				m.node.Kill()
				<-m.node.Done()
			}
			return nil
		})
	}
	_ = group.Wait()

	for _, m := range cohort {
		s.restartOne(m, cause)
	}
}

func (s *Supervisor) restartOne(m *supervisorMember, cause error) {
	if s.cfg.StableRunPeriod > 0 && !m.startedAt.IsZero() && time.Since(m.startedAt) >= s.cfg.StableRunPeriod {
		m.backoff.Reset()
	}

	delay := m.backoff.NextBackOff()
	if delay == backoff.Stop {
		if s.cfg.RestartPolicy.exhaustedIsFault() {
			s.logger.Error("member restarts exhausted",
				slog.String("path", m.node.Path().String()),
				slog.Any("cause", cause),
			)
			_ = s.mb.SendParent(envelope.New(
				envelope.Faulted{ID: s.id, Err: fmt.Errorf("%w: %s", ErrRestartsExhausted, m.node.Path())},
				quippath.NewSignature(s.path, s.mb),
			))
			return
		}
		s.logger.Info("member restart refused by policy, stopping",
			slog.String("path", m.node.Path().String()),
			slog.Any("cause", cause),
		)
		_ = s.mb.SendParent(envelope.New(
			envelope.Stopped{ID: s.id},
			quippath.NewSignature(s.path, s.mb),
		))
		return
	}

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-s.runCtx.Done():
			return
		}
	}

	m.startedAt = time.Now()
	if err := m.node.Start(s.runCtx); err != nil {
		s.logger.Error("member restart failed", slog.Any("error", err))
	}
}
