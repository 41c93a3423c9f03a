package callback

import "context"

// Hooks are lifecycle callbacks a ChildrenGroup or Supervisor runs
// around its own Start/Stop, the with_callbacks surface of the builders.
// They run once per node lifecycle event, not per member and not per
// restart, unlike lp.Stack's BeforeStart/AfterComplete/AfterPanic which
// run per execution of a single child's body.
//
// Grounded on di.Starter/Stopper's OnStart/OnStop shape, adapted from a
// DI-container concern to a supervision-tree one.
type Hooks struct {
	// OnStart runs after every direct member has been told to Start,
	// before the node's own control loop begins draining envelopes. A
	// non-nil error is logged but does not prevent the node from
	// starting; Hooks are observational, not a startup gate.
	OnStart func(ctx context.Context) error
	// OnStop runs once the node has finished tearing down every member,
	// before it reports its own Stopped/Faulted to its parent.
	OnStop func(ctx context.Context)
}

// Run invokes OnStart if set, otherwise a no-op.
func (h Hooks) Run(ctx context.Context) error {
	if h.OnStart == nil {
		return nil
	}
	return h.OnStart(ctx)
}

// RunStop invokes OnStop if set, otherwise a no-op.
func (h Hooks) RunStop(ctx context.Context) {
	if h.OnStop == nil {
		return
	}
	h.OnStop(ctx)
}
