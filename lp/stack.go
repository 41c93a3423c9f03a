package lp

// Stack is the ordered set of lifecycle hooks attached to an LP. Every
// hook is optional and receives State, the LP's opaque per-process
// value, so callers can carry state across restarts without a closure
// per hook.
//
// Exactly one of AfterComplete/AfterPanic runs after the body returns or
// recovers from a panic; BeforeStart runs exactly once before each
// invocation of the body (one per Run, and again after a Restart).
type Stack struct {
	State any

	BeforeStart   func(state any)
	AfterComplete func(state any)
	AfterPanic    func(state any, recovered any)
	BeforeRestart func(state any)
	AfterRestart  func(state any)
}

func (s Stack) callBeforeStart() {
	if s.BeforeStart != nil {
		s.BeforeStart(s.State)
	}
}

func (s Stack) callAfterComplete() {
	if s.AfterComplete != nil {
		s.AfterComplete(s.State)
	}
}

func (s Stack) callAfterPanic(recovered any) {
	if s.AfterPanic != nil {
		s.AfterPanic(s.State, recovered)
	}
}

func (s Stack) callBeforeRestart() {
	if s.BeforeRestart != nil {
		s.BeforeRestart(s.State)
	}
}

func (s Stack) callAfterRestart() {
	if s.AfterRestart != nil {
		s.AfterRestart(s.State)
	}
}
