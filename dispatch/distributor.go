package dispatch

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/petabytecl/quip/envelope"
	"github.com/petabytecl/quip/id"
	"github.com/petabytecl/quip/mailbox"
	"github.com/petabytecl/quip/quippath"
)

// Selector picks one member out of a non-empty slice to receive the next
// Tell/Request. The default is round-robin; callers may supply their own
// (e.g. least-loaded, random) via [NewDistributor]'s selector argument.
type Selector interface {
	Select(members []*mailbox.Mailbox) *mailbox.Mailbox
}

// RoundRobin is the default Selector: members are chosen in rotation.
type RoundRobin struct {
	next atomic.Uint64
}

// Select implements Selector.
func (r *RoundRobin) Select(members []*mailbox.Mailbox) *mailbox.Mailbox {
	i := r.next.Add(1) - 1
	return members[i%uint64(len(members))]
}

// Distributor is a typed request endpoint over a named, ordered set of
// members: Tell for fire-and-forget, Request for a reply, and
// TellOne/AskOne to target one specific member by id rather than letting
// the Selector choose.
type Distributor struct {
	name     string
	selector Selector

	mu      sync.RWMutex
	members []member
}

// NewDistributor builds an empty Distributor named name. Pass a Selector
// to override the default RoundRobin.
func NewDistributor(name string, selector Selector) *Distributor {
	if selector == nil {
		selector = &RoundRobin{}
	}
	return &Distributor{name: name, selector: selector}
}

// Name returns the distributor's name.
func (d *Distributor) Name() string { return d.name }

// Add registers mb as a member identified by memberID.
func (d *Distributor) Add(memberID id.QuipId, mb *mailbox.Mailbox) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.members = append(d.members, member{id: memberID, mb: mb})
}

// Remove drops memberID from the member set.
func (d *Distributor) Remove(memberID id.QuipId) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for i, m := range d.members {
		if m.id == memberID {
			d.members = append(d.members[:i], d.members[i+1:]...)
			return
		}
	}
}

func (d *Distributor) snapshot() []*mailbox.Mailbox {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]*mailbox.Mailbox, len(d.members))
	for i, m := range d.members {
		out[i] = m.mb
	}
	return out
}

func (d *Distributor) find(memberID id.QuipId) *mailbox.Mailbox {
	d.mu.RLock()
	defer d.mu.RUnlock()
	for _, m := range d.members {
		if m.id == memberID {
			return m.mb
		}
	}
	return nil
}

// Tell selects a member via the Selector and sends payload to it,
// fire-and-forget. It returns NotFound if the distributor has no
// members.
func (d *Distributor) Tell(payload envelope.Payload, sig quippath.Signature) error {
	members := d.snapshot()
	if len(members) == 0 {
		return &SendError{Kind: NotFound, Cause: ErrNotFound}
	}
	d.selector.Select(members).Send(envelope.New(payload, sig))
	return nil
}

// TellOne sends payload directly to memberID, bypassing the Selector. It
// returns NotFound if memberID is not a member.
func (d *Distributor) TellOne(memberID id.QuipId, payload envelope.Payload, sig quippath.Signature) error {
	mb := d.find(memberID)
	if mb == nil {
		return &SendError{Kind: NotFound, Cause: ErrNotFound}
	}
	mb.Send(envelope.New(payload, sig))
	return nil
}

// Request selects a member via the Selector, sends payload tagged with a
// one-shot reply mailbox, and waits for the reply envelope or ctx to end.
func (d *Distributor) Request(ctx context.Context, payload envelope.Payload, replyPath quippath.Path) (envelope.Envelope, error) {
	members := d.snapshot()
	if len(members) == 0 {
		return envelope.Envelope{}, &SendError{Kind: NotFound, Cause: ErrNotFound}
	}
	return request(ctx, d.selector.Select(members), payload, replyPath)
}

// AskOne sends payload directly to memberID tagged with a one-shot reply
// mailbox, and waits for the reply or ctx to end.
func (d *Distributor) AskOne(ctx context.Context, memberID id.QuipId, payload envelope.Payload, replyPath quippath.Path) (envelope.Envelope, error) {
	mb := d.find(memberID)
	if mb == nil {
		return envelope.Envelope{}, &SendError{Kind: NotFound, Cause: ErrNotFound}
	}
	return request(ctx, mb, payload, replyPath)
}

// request sends payload to target with a fresh one-shot reply mailbox as
// its signature, then waits on that mailbox for the single reply
// envelope the recipient sends back via ctx.tell(signature, reply).
func request(ctx context.Context, target *mailbox.Mailbox, payload envelope.Payload, replyPath quippath.Path) (envelope.Envelope, error) {
	replyBox := mailbox.New(replyPath, nil)
	defer replyBox.Close()

	target.Send(envelope.New(payload, quippath.NewSignature(replyPath, replyBox)))

	reply, ok := replyBox.Next(ctx)
	if !ok {
		return envelope.Envelope{}, ctx.Err()
	}
	return reply, nil
}
