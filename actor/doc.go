// Package actor implements the supervised child lifecycle: [Child], the
// Init→Running→(Stopping|Faulting)→Terminated state machine of §4.7;
// [ChildrenGroup], a redundancy-N pool of children sharing one factory
// and one restart policy (§4.8); and [Supervisor], the tree node that
// owns children groups and nested supervisors and applies a
// [Strategy] (OneForOne/OneForAll/RestForOne) on termination (§4.9).
//
// A child's body is an ordinary Go function run to completion on the
// executor pool, not a polled future: Go goroutines already park
// transparently on blocking calls, so the cooperative "poll to a
// suspension point" model of the original only needs to be modeled as
// "call the body once, recover its panic, report the outcome" — see
// lp.LP. The mailbox-interleaving the original spec describes ("poll
// the future, drain the mailbox") is instead achieved by routing
// control envelopes (Start/Stop/Kill) through a dedicated goroutine
// that owns the child's mailbox, and forwarding everything else to the
// body through a buffered channel the body reads via Context.Recv.
//
// Whether a terminated child is restarted follows original_source's
// documented `children` example, not §4.8's literal text: a body that
// returns nil is a finished child (no restart); a body that returns an
// error, panics, or is cancelled faults and is restarted per policy.
package actor
