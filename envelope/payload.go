package envelope

import "github.com/petabytecl/quip/id"

// Payload is the closed set of things an Envelope can carry. Every
// concrete type in this file implements it via the unexported
// payloadKind method, which also doubles as a cheap introspection hook
// for logging and routing without a type switch at every call site.
type Payload interface {
	payloadKind() string
}

// Start instructs a node to begin executing.
type Start struct{}

func (Start) payloadKind() string { return "start" }

// Stop requests a graceful shutdown: finish in-flight work, then exit.
type Stop struct{}

func (Stop) payloadKind() string { return "stop" }

// Kill requests an immediate, non-graceful shutdown.
type Kill struct{}

func (Kill) payloadKind() string { return "kill" }

// DeploySupervisor asks a supervisor to instantiate and register a new
// child supervisor subtree described by Spec. Spec is typed any here to
// avoid a dependency from envelope on the actor package that defines
// supervisor specs; the actor package deploys through this payload.
type DeploySupervisor struct {
	Spec any
}

func (DeploySupervisor) payloadKind() string { return "deploy_supervisor" }

// DeployChildren asks a supervisor to instantiate and register a new
// children group described by Spec.
type DeployChildren struct {
	Spec any
}

func (DeployChildren) payloadKind() string { return "deploy_children" }

// Prune tells a parent to drop its bookkeeping for the named node
// without attempting to restart it (used once a node is confirmed gone).
type Prune struct {
	ID id.QuipId
}

func (Prune) payloadKind() string { return "prune" }

// Stopped notifies a parent that the named node finished a graceful stop.
type Stopped struct {
	ID id.QuipId
}

func (Stopped) payloadKind() string { return "stopped" }

// Faulted notifies a parent that the named node panicked or returned an
// unrecoverable error and its siblings/children have been killed.
type Faulted struct {
	ID  id.QuipId
	Err error
}

func (Faulted) payloadKind() string { return "faulted" }

// Message wraps a user-supplied value bound for an actor's message
// handler. Value is typed any; handlers recover the concrete type via a
// type switch or type assertion, the idiomatic Go analog of
// original_source's msg! dispatch macro.
type Message struct {
	Value any
}

func (Message) payloadKind() string { return "message" }

// InstantiatedChild notifies a children group that one of its pending
// child specs has finished starting and is ready to receive envelopes.
type InstantiatedChild struct {
	ID id.QuipId
}

func (InstantiatedChild) payloadKind() string { return "instantiated_child" }

// RestartRequired notifies a children group that the named child
// panicked or errored and, per the group's restart policy, should be
// restarted.
type RestartRequired struct {
	ID  id.QuipId
	Err error
}

func (RestartRequired) payloadKind() string { return "restart_required" }

// RestartSubtree asks a supervisor to restart every child across every
// children group it owns, honoring each group's OneForAll/RestForOne
// strategy.
type RestartSubtree struct{}

func (RestartSubtree) payloadKind() string { return "restart_subtree" }

// RestoreChild asks a children group to rebuild the named child from its
// original spec and re-register it under the same id.
type RestoreChild struct {
	ID id.QuipId
}

func (RestoreChild) payloadKind() string { return "restore_child" }

// FinishedChild notifies a children group that the named child completed
// its work normally and should not be restarted.
type FinishedChild struct {
	ID id.QuipId
}

func (FinishedChild) payloadKind() string { return "finished_child" }

// DropChild asks a children group to remove the named child from its
// bookkeeping without restarting it, regardless of restart policy.
type DropChild struct {
	ID id.QuipId
}

func (DropChild) payloadKind() string { return "drop_child" }

// SetState asks the receiving actor to replace its user-defined state
// with State, used by supervisors to seed state into a freshly restarted
// child.
type SetState struct {
	State any
}

func (SetState) payloadKind() string { return "set_state" }

// Heartbeat is a liveness ping with no side effects beyond proving the
// receiving node's mailbox loop is still scheduled.
type Heartbeat struct{}

func (Heartbeat) payloadKind() string { return "heartbeat" }

// ApplyCallback runs Fn against the receiving node from inside its own
// mailbox loop, giving callers a safe way to read or mutate actor-local
// state without a data race.
type ApplyCallback struct {
	Fn func()
}

func (ApplyCallback) payloadKind() string { return "apply_callback" }

// Kind returns the payload's stable string tag, suitable for logging and
// metrics labels.
func Kind(p Payload) string {
	if p == nil {
		return "nil"
	}
	return p.payloadKind()
}

// cloneable is implemented by payloads that know how to produce an
// independent copy of themselves for fan-out delivery to multiple
// children (see Envelope.TryClone). Payloads that carry a non-copyable
// resource (e.g. a one-shot callback closure) deliberately do not
// implement it.
type cloneable interface {
	clonePayload() Payload
}

func (p Start) clonePayload() Payload             { return p }
func (p Stop) clonePayload() Payload              { return p }
func (p Kill) clonePayload() Payload              { return p }
func (p Prune) clonePayload() Payload             { return p }
func (p Stopped) clonePayload() Payload           { return p }
func (p Faulted) clonePayload() Payload           { return p }
func (p InstantiatedChild) clonePayload() Payload { return p }
func (p RestartRequired) clonePayload() Payload   { return p }
func (p RestartSubtree) clonePayload() Payload    { return p }
func (p RestoreChild) clonePayload() Payload      { return p }
func (p FinishedChild) clonePayload() Payload     { return p }
func (p DropChild) clonePayload() Payload         { return p }
func (p Heartbeat) clonePayload() Payload         { return p }
func (p Message) clonePayload() Payload           { return p }
