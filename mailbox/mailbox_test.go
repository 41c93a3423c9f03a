package mailbox_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/petabytecl/quip/envelope"
	"github.com/petabytecl/quip/id"
	"github.com/petabytecl/quip/mailbox"
	"github.com/petabytecl/quip/quippath"
)

func rootPath(t *testing.T) quippath.Path {
	t.Helper()
	p, err := quippath.Root().Append(quippath.KindSupervisor, "root", id.New())
	require.NoError(t, err)
	return p
}

func TestSendThenNext(t *testing.T) {
	m := mailbox.New(rootPath(t), nil)
	sig := quippath.NewSignature(m.Path(), m)

	m.Send(envelope.New(envelope.Start{}, sig))

	env, ok := m.Next(context.Background())
	require.True(t, ok)
	assert.Equal(t, "start", envelope.Kind(env.Payload))
}

func TestNextBlocksUntilSend(t *testing.T) {
	m := mailbox.New(rootPath(t), nil)
	sig := quippath.NewSignature(m.Path(), m)

	done := make(chan envelope.Envelope, 1)
	go func() {
		env, ok := m.Next(context.Background())
		if ok {
			done <- env
		}
	}()

	time.Sleep(10 * time.Millisecond)
	m.Send(envelope.New(envelope.Stop{}, sig))

	select {
	case env := <-done:
		assert.Equal(t, "stop", envelope.Kind(env.Payload))
	case <-time.After(time.Second):
		t.Fatal("Next never returned")
	}
}

func TestNextRespectsContextCancellation(t *testing.T) {
	m := mailbox.New(rootPath(t), nil)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, ok := m.Next(ctx)
	assert.False(t, ok)
}

func TestSendChildDeliversToRegisteredChild(t *testing.T) {
	parent := mailbox.New(rootPath(t), nil)
	childID := id.New()
	child := mailbox.New(rootPath(t), parent)
	parent.Register(childID, child)

	parent.SendChild(childID, envelope.New(envelope.Start{}, quippath.NewSignature(parent.Path(), parent)))

	env, ok := child.Next(context.Background())
	require.True(t, ok)
	assert.Equal(t, "start", envelope.Kind(env.Payload))
}

func TestSendChildrenSkipsAfterUnregister(t *testing.T) {
	parent := mailbox.New(rootPath(t), nil)
	var children []*mailbox.Mailbox
	var ids []id.QuipId
	for i := 0; i < 3; i++ {
		cid := id.New()
		c := mailbox.New(rootPath(t), parent)
		parent.Register(cid, c)
		children = append(children, c)
		ids = append(ids, cid)
	}

	parent.Unregister(ids[0])
	parent.SendChildren(envelope.New(envelope.Start{}, quippath.NewSignature(parent.Path(), parent)))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, ok := children[0].Next(ctx)
	assert.False(t, ok, "unregistered child must not receive the broadcast")

	for _, c := range children[1:] {
		env, ok := c.Next(context.Background())
		require.True(t, ok)
		assert.Equal(t, "start", envelope.Kind(env.Payload))
	}
}

func TestSendChildrenSkipsNonCloneablePayload(t *testing.T) {
	parent := mailbox.New(rootPath(t), nil)
	childID := id.New()
	child := mailbox.New(rootPath(t), parent)
	parent.Register(childID, child)

	parent.SendChildren(envelope.New(envelope.ApplyCallback{Fn: func() {}}, quippath.NewSignature(parent.Path(), parent)))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, ok := child.Next(ctx)
	assert.False(t, ok, "non-cloneable payloads must not fan out")
}

func TestSendParentErrorsAtRoot(t *testing.T) {
	m := mailbox.New(rootPath(t), nil)
	err := m.SendParent(envelope.New(envelope.Stopped{ID: id.New()}, quippath.NewSignature(m.Path(), m)))
	assert.ErrorIs(t, err, mailbox.ErrNoParent)
}

func TestStoppedTearsDownChildrenAndNotifiesParent(t *testing.T) {
	parent := mailbox.New(rootPath(t), nil)
	selfID := id.New()
	self := mailbox.New(rootPath(t), parent)
	grandchildID := id.New()
	grandchild := mailbox.New(rootPath(t), self)
	self.Register(grandchildID, grandchild)

	self.Stopped(selfID)

	env, ok := parent.Next(context.Background())
	require.True(t, ok)
	stopped, ok := env.Payload.(envelope.Stopped)
	require.True(t, ok)
	assert.Equal(t, selfID, stopped.ID)

	gcEnv, ok := grandchild.Next(context.Background())
	require.True(t, ok)
	assert.Equal(t, "stop", envelope.Kind(gcEnv.Payload))
}

func TestCloseDrainsBacklogThenReturnsFalse(t *testing.T) {
	m := mailbox.New(rootPath(t), nil)
	sig := quippath.NewSignature(m.Path(), m)
	m.Send(envelope.New(envelope.Start{}, sig))
	m.Close()

	env, ok := m.Next(context.Background())
	require.True(t, ok, "queued envelope must still be delivered after Close")
	assert.Equal(t, "start", envelope.Kind(env.Payload))

	_, ok = m.Next(context.Background())
	assert.False(t, ok)
}

func TestSendAfterCloseIsDropped(t *testing.T) {
	m := mailbox.New(rootPath(t), nil)
	m.Close()
	m.Send(envelope.New(envelope.Start{}, quippath.NewSignature(m.Path(), m)))

	_, ok := m.Next(context.Background())
	assert.False(t, ok)
}
