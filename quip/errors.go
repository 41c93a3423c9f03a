package quip

import "errors"

var (
	// ErrNotInitialized names the "no System initialized" condition. No
	// function in this package returns it: there are no package-level
	// convenience functions, only methods on a System from Init/InitWith.
	ErrNotInitialized = errors.New("quip: system not initialized")

	// ErrAlreadyRunning is returned by Start on a System that has
	// already been started.
	ErrAlreadyRunning = errors.New("quip: system already running")

	// ErrNotRunning is returned by Stop/Kill on a System that was never
	// started, or has already stopped.
	ErrNotRunning = errors.New("quip: system not running")
)
