package actor

import "github.com/petabytecl/quip/backoff"

// RestartPolicy bounds how a child's restart backoff behaves across its
// lifetime: Always lets it run unmodified, Never stops it outright
// (propagating Stopped upward instead of restarting), and Tries caps
// the number of attempts within the backoff's current window.
type RestartPolicy interface {
	wrap(bo backoff.BackOff) backoff.BackOff

	// exhaustedIsFault reports what a restart loop should propagate
	// upward once its wrapped backoff returns backoff.Stop: true means
	// a genuine Faulted+ErrRestartsExhausted escalation (TriesRestart
	// hitting Max), false means a plain Stopped (NeverRestart refusing
	// outright, which exhausts on the very first failure).
	exhaustedIsFault() bool
}

// AlwaysRestart never stops retrying.
type AlwaysRestart struct{}

func (AlwaysRestart) wrap(bo backoff.BackOff) backoff.BackOff { return bo }

func (AlwaysRestart) exhaustedIsFault() bool { return true }

// NeverRestart refuses every restart; the first failure propagates
// Stopped upward, not Faulted (§4.9: Never means "never restart;
// propagate Stopped upward").
type NeverRestart struct{}

func (NeverRestart) wrap(backoff.BackOff) backoff.BackOff { return &backoff.StopBackOff{} }

func (NeverRestart) exhaustedIsFault() bool { return false }

// TriesRestart allows up to Max restarts since the backoff was last
// Reset (by a stable run — see ChildrenConfig.StableRunPeriod); beyond
// that, NextBackOff returns backoff.Stop and the group propagates
// Faulted upward instead of restarting.
type TriesRestart struct {
	Max uint64
}

func (t TriesRestart) wrap(bo backoff.BackOff) backoff.BackOff {
	return backoff.WithMaxRetries(bo, t.Max)
}

func (TriesRestart) exhaustedIsFault() bool { return true }

var (
	_ RestartPolicy = AlwaysRestart{}
	_ RestartPolicy = NeverRestart{}
	_ RestartPolicy = TriesRestart{}
)
