package actor

import "errors"

// Sentinel errors for the actor package.
var (
	// ErrAlreadyStarted is returned by Start when called on a node that
	// is neither in its initial state nor terminated, and by
	// AddChildren/AddSupervisor on a Supervisor in that same situation.
	ErrAlreadyStarted = errors.New("actor: already started")

	// ErrNotRunning names the "node not running" condition. No function
	// in this package returns it; Broadcast, Stop and Kill return
	// nothing.
	ErrNotRunning = errors.New("actor: not running")

	// ErrRestartsExhausted is the cause wrapped into a Faulted envelope
	// when a TriesRestart policy's bound is reached.
	ErrRestartsExhausted = errors.New("actor: restart attempts exhausted")

	// ErrChildCancelled is the error recorded when a child's LP resolves
	// as not-completed without an error of its own (e.g. Kill), used as
	// Faulted's cause. A panic carries its own error and does not use it.
	ErrChildCancelled = errors.New("actor: child cancelled")
)
