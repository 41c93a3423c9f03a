package actor

import (
	"time"

	"github.com/petabytecl/quip/backoff"
)

// RestartStrategy builds the backoff.BackOff that paces one child's
// restart attempts. Each child owns its own instance (built once when the
// member is created, never rebuilt, and Reset only after the member has
// run for its stable-run period) so delay is computed per child rather
// than shared across a group, per §4.9.
type RestartStrategy interface {
	newBackOff() backoff.BackOff
}

// ImmediateStrategy restarts with no delay.
type ImmediateStrategy struct{}

func (ImmediateStrategy) newBackOff() backoff.BackOff { return &backoff.ZeroBackOff{} }

// LinearBackoffStrategy delays the nth restart by n*Base.
type LinearBackoffStrategy struct {
	Base time.Duration
}

func (l LinearBackoffStrategy) newBackOff() backoff.BackOff {
	base := l.Base
	if base <= 0 {
		base = time.Second
	}
	return &linearBackOff{base: base}
}

// linearBackOff implements backoff.BackOff with a delay that grows by
// a fixed increment per attempt, the shape ConstantBackOff lacks.
type linearBackOff struct {
	base  time.Duration
	tries int
}

func (b *linearBackOff) NextBackOff() time.Duration {
	b.tries++
	return time.Duration(b.tries) * b.base
}

func (b *linearBackOff) Reset() { b.tries = 0 }

var _ backoff.BackOff = (*linearBackOff)(nil)

// ExponentialBackoffStrategy delays restarts exponentially, built on
// the already-wired backoff.ExponentialBackOff.
type ExponentialBackoffStrategy struct {
	Base       time.Duration
	Multiplier float64
}

func (e ExponentialBackoffStrategy) newBackOff() backoff.BackOff {
	base := e.Base
	if base <= 0 {
		base = backoff.DefaultInitialInterval
	}
	mult := e.Multiplier
	if mult <= 0 {
		mult = backoff.DefaultMultiplier
	}
	return backoff.NewExponentialBackOff(
		backoff.WithInitialInterval(base),
		backoff.WithMultiplier(mult),
	)
}

var (
	_ RestartStrategy = ImmediateStrategy{}
	_ RestartStrategy = LinearBackoffStrategy{}
	_ RestartStrategy = ExponentialBackoffStrategy{}
)
