package actor

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/petabytecl/quip/backoff"
	"github.com/petabytecl/quip/callback"
	"github.com/petabytecl/quip/dispatch"
	"github.com/petabytecl/quip/envelope"
	"github.com/petabytecl/quip/executor"
	"github.com/petabytecl/quip/id"
	"github.com/petabytecl/quip/lp"
	"github.com/petabytecl/quip/mailbox"
	"github.com/petabytecl/quip/quippath"
)

// ChildrenConfig configures a ChildrenGroup. Zero-value fields take the
// defaults NewChildrenGroup applies: Redundancy 1, OneForOne strategy,
// AlwaysRestart policy, ImmediateStrategy restart pacing.
type ChildrenConfig struct {
	Name            string
	Redundancy      int
	Exec            Exec
	Stack           lp.Stack
	Strategy        Strategy
	RestartPolicy   RestartPolicy
	RestartStrategy RestartStrategy
	StableRunPeriod time.Duration
	DispatcherName  string
	DistributorName string
	DistributorSel  dispatch.Selector
	Resizer         Resizer
	HeartbeatTick   time.Duration
	Callbacks       callback.Hooks
}

// ChildrenOption configures a ChildrenConfig, mirroring the
// functional-option style used throughout this codebase for
// registration-time configuration.
type ChildrenOption func(*ChildrenConfig)

// WithRedundancy sets how many identical children the group runs.
func WithRedundancy(n int) ChildrenOption {
	return func(c *ChildrenConfig) {
		if n > 0 {
			c.Redundancy = n
		}
	}
}

// WithName sets the group's name, used for its path element and logs.
func WithName(name string) ChildrenOption {
	return func(c *ChildrenConfig) { c.Name = name }
}

// WithExec sets the factory every member runs.
func WithExec(e Exec) ChildrenOption {
	return func(c *ChildrenConfig) { c.Exec = e }
}

// WithDispatcher registers every member under name in the process-wide
// dispatch.Registry, reachable via Broadcast(dispatch.Group(name)).
func WithDispatcher(name string) ChildrenOption {
	return func(c *ChildrenConfig) { c.DispatcherName = name }
}

// WithDistributor builds a dispatch.Distributor named name over the
// group's members, using selector (nil for round-robin).
func WithDistributor(name string, selector dispatch.Selector) ChildrenOption {
	return func(c *ChildrenConfig) {
		c.DistributorName = name
		c.DistributorSel = selector
	}
}

// WithResizer installs a heartbeat-driven scaling policy.
func WithResizer(r Resizer) ChildrenOption {
	return func(c *ChildrenConfig) { c.Resizer = r }
}

// WithHeartbeatTick sets how often the resizer (if any) is consulted.
func WithHeartbeatTick(d time.Duration) ChildrenOption {
	return func(c *ChildrenConfig) {
		if d > 0 {
			c.HeartbeatTick = d
		}
	}
}

// WithCallbacks installs lifecycle hooks run once around the group's own
// Start/Stop, not per member and not per restart.
func WithCallbacks(h callback.Hooks) ChildrenOption {
	return func(c *ChildrenConfig) { c.Callbacks = h }
}

// WithChildrenStrategy sets the supervision strategy applied when a
// member faults.
func WithChildrenStrategy(s Strategy) ChildrenOption {
	return func(c *ChildrenConfig) { c.Strategy = s }
}

// WithChildrenRestartPolicy sets the restart policy.
func WithChildrenRestartPolicy(p RestartPolicy) ChildrenOption {
	return func(c *ChildrenConfig) { c.RestartPolicy = p }
}

// WithChildrenRestartStrategy sets the restart backoff pacing.
func WithChildrenRestartStrategy(s RestartStrategy) ChildrenOption {
	return func(c *ChildrenConfig) { c.RestartStrategy = s }
}

// WithStableRunPeriod sets how long a member must run before its
// restart backoff resets, applied per child.
func WithStableRunPeriod(d time.Duration) ChildrenOption {
	return func(c *ChildrenConfig) {
		if d > 0 {
			c.StableRunPeriod = d
		}
	}
}

func defaultChildrenConfig() ChildrenConfig {
	return ChildrenConfig{
		Redundancy:      1,
		Strategy:        OneForOne,
		RestartPolicy:   AlwaysRestart{},
		RestartStrategy: ImmediateStrategy{},
		StableRunPeriod: 30 * time.Second,
	}
}

// groupMember bundles a member Child with the restart bookkeeping
// ChildrenGroup needs to pace and bound its restarts independently of
// its siblings.
type groupMember struct {
	child     *Child
	backoff   backoff.BackOff
	startedAt time.Time
}

// ChildrenGroup holds Redundancy identical children built from a shared
// Exec factory (§4.8): spawning, fan-out Stop/Kill, and restart-on-fault
// per the configured Strategy/RestartPolicy/RestartStrategy.
type ChildrenGroup struct {
	id       id.QuipId
	name     string
	path     quippath.Path
	mb       *mailbox.Mailbox
	pool     *executor.Pool
	registry *dispatch.Registry
	logger   *slog.Logger

	cfg         ChildrenConfig
	distributor *dispatch.Distributor

	mu      sync.Mutex
	state   State
	members []*groupMember
	byID    map[id.QuipId]*groupMember

	runCtx    context.Context
	runCancel context.CancelFunc
	wg        sync.WaitGroup
	done      chan struct{}
}

// NewChildrenGroup builds a ChildrenGroup as a child of parentPath
// (a Supervisor's path), registered against parentMailbox for fan-out.
func NewChildrenGroup(parentPath quippath.Path, parentMailbox *mailbox.Mailbox, pool *executor.Pool, registry *dispatch.Registry, logger *slog.Logger, opts ...ChildrenOption) (*ChildrenGroup, error) {
	cfg := defaultChildrenConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.Name == "" {
		cfg.Name = "children"
	}
	if cfg.Exec == nil {
		return nil, fmt.Errorf("actor: children group %q needs WithExec", cfg.Name)
	}
	if logger == nil {
		logger = slog.Default()
	}

	groupID := id.New()
	path, err := parentPath.Append(quippath.KindChildren, cfg.Name, groupID)
	if err != nil {
		return nil, err
	}

	g := &ChildrenGroup{
		id:       groupID,
		name:     cfg.Name,
		path:     path,
		mb:       mailbox.New(path, parentMailbox),
		pool:     pool,
		registry: registry,
		logger:   logger.With(slog.String("children", cfg.Name), slog.String("path", path.String())),
		cfg:      cfg,
		byID:     make(map[id.QuipId]*groupMember),
		done:     make(chan struct{}),
	}
	if cfg.DistributorName != "" {
		g.distributor = dispatch.NewDistributor(cfg.DistributorName, cfg.DistributorSel)
	}
	return g, nil
}

// ID returns the group's identity.
func (g *ChildrenGroup) ID() id.QuipId { return g.id }

// Path returns the group's address.
func (g *ChildrenGroup) Path() quippath.Path { return g.path }

// Mailbox returns the group's inbox, for a parent supervisor's fan-out
// set.
func (g *ChildrenGroup) Mailbox() *mailbox.Mailbox { return g.mb }

// Distributor returns the group's request distributor, or nil if the
// group was not built with WithDistributor.
func (g *ChildrenGroup) Distributor() *dispatch.Distributor { return g.distributor }

// State returns the group's current lifecycle state.
func (g *ChildrenGroup) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// Done returns a channel closed once the group has fully terminated. It
// is replaced on every restart (see Start), so callers that span
// restarts should re-fetch it rather than caching the channel value.
func (g *ChildrenGroup) Done() <-chan struct{} {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.done
}

// Elems returns the identities of the group's current members, in
// registration order.
func (g *ChildrenGroup) Elems() []ChildRef {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]ChildRef, len(g.members))
	for i, m := range g.members {
		out[i] = ChildRef{ID: m.child.ID(), Path: m.child.Path()}
	}
	return out
}

// Start spawns Redundancy children and begins the group's control loop.
// Start also re-arms a group a Supervisor is restarting after it
// reported Stopped/Faulted: calling it again once State is Terminated
// rebuilds a fresh member set under a fresh Done channel, the
// group-level analogue of Child.beginRunning's Terminated→Running leg.
func (g *ChildrenGroup) Start(ctx context.Context) error {
	g.mu.Lock()
	if g.state != StateInit && g.state != StateTerminated {
		g.mu.Unlock()
		return ErrAlreadyStarted
	}
	g.state = StateRunning
	g.members = nil
	g.byID = make(map[id.QuipId]*groupMember)
	g.done = make(chan struct{})
	g.mu.Unlock()

	g.runCtx, g.runCancel = context.WithCancel(ctx)

	for i := 0; i < g.cfg.Redundancy; i++ {
		m := g.spawnMember(g.runCtx, i)
		g.mu.Lock()
		g.members = append(g.members, m)
		g.byID[m.child.ID()] = m
		g.mu.Unlock()
	}

	if err := g.cfg.Callbacks.Run(g.runCtx); err != nil {
		g.logger.Warn("children group OnStart hook failed", slog.Any("error", err))
	}

	g.wg.Add(1)
	go g.controlLoop(g.runCtx)

	if g.cfg.HeartbeatTick > 0 && g.cfg.Resizer != nil {
		g.wg.Add(1)
		go g.heartbeatLoop(g.runCtx)
	}
	return nil
}

// Stop asks every member to stop cooperatively, then terminates the
// group.
func (g *ChildrenGroup) Stop() {
	g.mb.SendSelf(envelope.New(envelope.Stop{}, quippath.NewSignature(g.path, g.mb)))
}

// Kill forcibly cancels every member, then terminates the group.
func (g *ChildrenGroup) Kill() {
	g.mb.SendSelf(envelope.New(envelope.Kill{}, quippath.NewSignature(g.path, g.mb)))
}

// Broadcast fans payload out to every current member.
func (g *ChildrenGroup) Broadcast(payload envelope.Payload) {
	g.mb.SendChildren(envelope.New(payload, quippath.NewSignature(g.path, g.mb)))
}

func (g *ChildrenGroup) spawnMember(ctx context.Context, idx int) *groupMember {
	childID := id.New()
	name := fmt.Sprintf("%s-%d", g.cfg.Name, idx+1)
	path, err := g.path.Append(quippath.KindChild, name, childID)
	if err != nil {
		g.logger.Error("failed to append child path", slog.Any("error", err))
		path = g.path
	}

	child := newChild(name, path, g.mb, g.cfg.Exec, g.cfg.Stack, g.pool, g.registry, g.logger)
	g.mb.Register(childID, child.Mailbox())
	if g.distributor != nil {
		g.distributor.Add(childID, child.Mailbox())
	}
	if g.registry != nil && g.cfg.DispatcherName != "" {
		g.registry.Register(g.cfg.DispatcherName, childID, child.Mailbox())
	}

	go child.run(ctx)
	child.Mailbox().SendSelf(envelope.New(envelope.Start{}, quippath.NewSignature(g.path, g.mb)))

	return &groupMember{
		child:     child,
		backoff:   g.cfg.RestartPolicy.wrap(g.cfg.RestartStrategy.newBackOff()),
		startedAt: time.Now(),
	}
}

func (g *ChildrenGroup) controlLoop(ctx context.Context) {
	defer g.wg.Done()
	for {
		env, ok := g.mb.Next(ctx)
		if !ok {
			return
		}
		switch p := env.Payload.(type) {
		case envelope.Stop:
			g.shutdownMembers(false)
			g.terminate()
			return
		case envelope.Kill:
			g.shutdownMembers(true)
			g.terminate()
			return
		case envelope.Stopped:
			g.onMemberTerminated(p.ID, nil)
		case envelope.Faulted:
			g.onMemberTerminated(p.ID, p.Err)
		case envelope.Heartbeat:
			g.onHeartbeat()
		}
	}
}

func (g *ChildrenGroup) shutdownMembers(forceful bool) {
	g.mu.Lock()
	members := append([]*groupMember(nil), g.members...)
	g.mu.Unlock()

	for _, m := range members {
		if forceful {
			m.child.beginKill()
		} else {
			m.child.beginStop()
		}
	}
	for _, m := range members {
		<-m.child.Done()
		g.dropMember(m.child.ID())
	}
	g.cfg.Callbacks.RunStop(context.Background())
	g.mb.Stopped(g.id)
}

func (g *ChildrenGroup) terminate() {
	g.mu.Lock()
	g.state = StateTerminated
	g.mu.Unlock()
	if g.runCancel != nil {
		g.runCancel()
	}
	close(g.done)
}

func (g *ChildrenGroup) indexOf(memberID id.QuipId) int {
	for i, m := range g.members {
		if m.child.ID() == memberID {
			return i
		}
	}
	return -1
}

func (g *ChildrenGroup) onMemberTerminated(memberID id.QuipId, cause error) {
	if cause == nil {
		g.dropMember(memberID)
		return
	}

	g.mu.Lock()
	idx := g.indexOf(memberID)
	if idx < 0 {
		g.mu.Unlock()
		return
	}
	affectedIdx := g.cfg.Strategy.affected(idx, len(g.members))
	cohort := make([]*groupMember, 0, len(affectedIdx))
	for _, ai := range affectedIdx {
		cohort = append(cohort, g.members[ai])
	}
	g.mu.Unlock()

	g.wg.Add(1)
	go g.restartCohort(cohort, cause)
}

func (g *ChildrenGroup) restartCohort(cohort []*groupMember, cause error) {
	defer g.wg.Done()

	for _, m := range cohort {
		if m.child.State() == StateRunning {
			m.child.beginKill()
		}
	}
	for _, m := range cohort {
		<-m.child.Done()
	}
	for _, m := range cohort {
		g.restartOne(m, cause)
	}
}

func (g *ChildrenGroup) restartOne(m *groupMember, cause error) {
	if g.cfg.StableRunPeriod > 0 && !m.startedAt.IsZero() && time.Since(m.startedAt) >= g.cfg.StableRunPeriod {
		m.backoff.Reset()
	}

	delay := m.backoff.NextBackOff()
	if delay == backoff.Stop {
		g.dropMember(m.child.ID())
		if g.cfg.RestartPolicy.exhaustedIsFault() {
			g.logger.Error("child restarts exhausted",
				slog.String("path", m.child.Path().String()),
				slog.Any("cause", cause),
			)
			_ = g.mb.SendParent(envelope.New(
				envelope.Faulted{ID: g.id, Err: fmt.Errorf("%w: %s", ErrRestartsExhausted, m.child.Path())},
				quippath.NewSignature(g.path, g.mb),
			))
			return
		}
		g.logger.Info("child restart refused by policy, stopping",
			slog.String("path", m.child.Path().String()),
			slog.Any("cause", cause),
		)
		_ = g.mb.SendParent(envelope.New(
			envelope.Stopped{ID: g.id},
			quippath.NewSignature(g.path, g.mb),
		))
		return
	}

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-g.runCtx.Done():
			return
		}
	}

	m.startedAt = time.Now()
	m.child.Mailbox().SendSelf(envelope.New(envelope.Start{}, quippath.NewSignature(g.path, g.mb)))
}

func (g *ChildrenGroup) dropMember(memberID id.QuipId) {
	g.mu.Lock()
	idx := g.indexOf(memberID)
	if idx < 0 {
		g.mu.Unlock()
		return
	}
	m := g.members[idx]
	g.members = append(g.members[:idx], g.members[idx+1:]...)
	delete(g.byID, memberID)
	g.mu.Unlock()

	g.mb.Unregister(memberID)
	if g.distributor != nil {
		g.distributor.Remove(memberID)
	}
	if g.registry != nil && g.cfg.DispatcherName != "" {
		g.registry.Unregister(g.cfg.DispatcherName, memberID)
	}
	m.child.shutdown()
}

func (g *ChildrenGroup) heartbeatLoop(ctx context.Context) {
	defer g.wg.Done()
	ticker := time.NewTicker(g.cfg.HeartbeatTick)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			g.mb.SendSelf(envelope.New(envelope.Heartbeat{}, quippath.NewSignature(g.path, g.mb)))
		}
	}
}

func (g *ChildrenGroup) onHeartbeat() {
	g.mu.Lock()
	current := len(g.members)
	running := 0
	for _, m := range g.members {
		if m.child.State() == StateRunning {
			running++
		}
	}
	g.mu.Unlock()

	load := 0.0
	if current > 0 {
		load = float64(running) / float64(current)
	}
	want := g.cfg.Resizer.Resize(current, load)

	switch {
	case want > current:
		for i := current; i < want; i++ {
			m := g.spawnMember(g.runCtx, i)
			g.mu.Lock()
			g.members = append(g.members, m)
			g.byID[m.child.ID()] = m
			g.mu.Unlock()
		}
	case want < current:
		for i := current; i > want; i-- {
			g.mu.Lock()
			if len(g.members) == 0 {
				g.mu.Unlock()
				break
			}
			m := g.members[len(g.members)-1]
			g.mu.Unlock()

			m.child.beginStop()
			go func(memberID id.QuipId, child *Child) {
				<-child.Done()
				g.dropMember(memberID)
			}(m.child.ID(), m.child)
		}
	}
}
