package actor

import (
	"context"

	"github.com/petabytecl/quip/dispatch"
	"github.com/petabytecl/quip/envelope"
	"github.com/petabytecl/quip/id"
	"github.com/petabytecl/quip/mailbox"
	"github.com/petabytecl/quip/quippath"
)

// ChildRef is the lightweight identity a running body can read about
// itself via Context.Current, distinct from Signature which also
// carries the reply channel.
type ChildRef struct {
	ID   id.QuipId
	Path quippath.Path
}

// Context is passed to every Exec body. Recv/TryRecv read user-level
// envelopes forwarded by the owning Child's control loop; Tell/Ask/
// Broadcast send on behalf of this node, tagged with its own Signature
// so replies can find their way back.
type Context struct {
	ref      ChildRef
	self     quippath.Signature
	userCh   <-chan envelope.Envelope
	registry *dispatch.Registry
}

func newContext(ref ChildRef, self quippath.Signature, userCh <-chan envelope.Envelope, registry *dispatch.Registry) *Context {
	return &Context{ref: ref, self: self, userCh: userCh, registry: registry}
}

// Current returns this node's identity.
func (c *Context) Current() ChildRef { return c.ref }

// Signature returns the address replies should be sent to.
func (c *Context) Signature() quippath.Signature { return c.self }

// Recv blocks until a user-level envelope is forwarded to this body or
// ctx is done. The second return is false once the channel is closed
// or ctx ends, the suspension point equivalent to original_source's
// `ctx.recv().await`.
func (c *Context) Recv(ctx context.Context) (envelope.Envelope, bool) {
	select {
	case env, ok := <-c.userCh:
		return env, ok
	case <-ctx.Done():
		return envelope.Envelope{}, false
	}
}

// TryRecv returns the next envelope without blocking if one is already
// queued, and (zero, false) otherwise.
func (c *Context) TryRecv() (envelope.Envelope, bool) {
	select {
	case env, ok := <-c.userCh:
		return env, ok
	default:
		return envelope.Envelope{}, false
	}
}

// Tell sends payload to target, fire-and-forget, tagged with this
// node's signature as the sender.
func (c *Context) Tell(target *mailbox.Mailbox, payload envelope.Payload) {
	target.Send(envelope.New(payload, c.self))
}

// Ask sends payload to target with a fresh one-shot reply mailbox
// addressed at replyPath, then blocks for the reply or ctx ending.
func (c *Context) Ask(ctx context.Context, target *mailbox.Mailbox, payload envelope.Payload, replyPath quippath.Path) (envelope.Envelope, error) {
	replyBox := mailbox.New(replyPath, nil)
	defer replyBox.Close()

	target.Send(envelope.New(payload, quippath.NewSignature(replyPath, replyBox)))

	reply, ok := replyBox.Next(ctx)
	if !ok {
		return envelope.Envelope{}, ctx.Err()
	}
	return reply, nil
}

// BroadcastMessage sends payload to every member of target via the
// process-wide dispatch registry. It returns dispatch.ErrNotFound
// wrapped in a *dispatch.SendError if this node was built without a
// registry.
func (c *Context) BroadcastMessage(target dispatch.BroadcastTarget, payload envelope.Payload) error {
	if c.registry == nil {
		return &dispatch.SendError{Kind: dispatch.NotFound, Cause: dispatch.ErrNotFound}
	}
	return c.registry.Broadcast(target, payload, c.self)
}
