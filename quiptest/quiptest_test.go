package quiptest_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/petabytecl/quip/actor"
	"github.com/petabytecl/quip/callback"
	"github.com/petabytecl/quip/executor"
	"github.com/petabytecl/quip/quip"
	"github.com/petabytecl/quip/quiptest"
)

func testOpts() []quip.Option {
	return []quip.Option{
		quip.WithExecutorConfig(executor.Config{Workers: 1, MinBlocking: 1, MaxBlocking: 2}),
	}
}

func TestNewDefaultTimeout(t *testing.T) {
	app, err := quiptest.New(t, callback.New(), testOpts()...)
	require.NoError(t, err)
	require.NotNil(t, app)
	require.NotNil(t, app.System())
}

func TestWithTimeoutOverridesDefault(t *testing.T) {
	app, err := quiptest.New(t, callback.New(), testOpts()...)
	require.NoError(t, err)

	result := app.WithTimeout(2 * time.Second)
	require.Same(t, app, result, "WithTimeout should return the same App for chaining")
}

func TestRequireStartReturnsAppAndStartsSystem(t *testing.T) {
	app, err := quiptest.New(t, callback.New(), testOpts()...)
	require.NoError(t, err)

	started := make(chan struct{})
	_, err = app.System().Children(
		actor.WithName("workers"),
		actor.WithRedundancy(1),
		actor.WithExec(func(ctx context.Context, actorCtx *actor.Context) error {
			close(started)
			<-ctx.Done()
			return nil
		}),
	)
	require.NoError(t, err)

	result := app.RequireStart()
	require.Same(t, app, result, "RequireStart should return the same App for chaining")

	select {
	case <-started:
	case <-time.After(time.Second):
		t.Fatal("member never started")
	}
}

func TestRequireStopIsIdempotent(t *testing.T) {
	app, err := quiptest.New(t, callback.New(), testOpts()...)
	require.NoError(t, err)

	app.RequireStart()
	app.RequireStop()
	app.RequireStop() // should not hang or fail the test
}

// TestAutoCleanupStopsSystemWithoutRequireStop exercises the fallback
// cleanup path: a test that calls RequireStart and never calls
// RequireStop still leaves the system stopped once the test's own
// t.Cleanup chain runs, mirroring fakeTB's explicit cleanup trigger
// rather than waiting on the real testing.T's teardown.
func TestAutoCleanupStopsSystemWithoutRequireStop(t *testing.T) {
	fake := &fakeTB{T: t}

	app, err := quiptest.New(fake, callback.New(), testOpts()...)
	require.NoError(t, err)
	app.RequireStart()

	require.NotNil(t, fake.cleanup, "New should have registered a cleanup func")
	fake.cleanup()

	done := make(chan struct{})
	go func() {
		app.System().BlockUntilStopped()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("cleanup did not stop the system")
	}
}

// fakeTB lets TestAutoCleanupStopsSystemWithoutRequireStop capture the
// cleanup func quiptest.New registers and invoke it directly, instead
// of waiting for the enclosing test to finish.
type fakeTB struct {
	*testing.T
	cleanup func()
}

func (f *fakeTB) Cleanup(fn func()) { f.cleanup = fn }
