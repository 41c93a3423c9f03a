package mailbox

import (
	"context"
	"errors"
	"sync"

	"github.com/petabytecl/quip/envelope"
	"github.com/petabytecl/quip/id"
	"github.com/petabytecl/quip/quippath"
)

// ErrNoParent is returned by SendParent when the mailbox is the system
// root and has nothing above it to deliver to.
var ErrNoParent = errors.New("mailbox: no parent to send to")

// Mailbox is an owned MPSC inbox: any number of senders may call Send,
// but only the owner calls Next. It also tracks a parent sender (nil at
// the root) and a set of registered children senders for fan-out, the
// same shape as original_source's Broadcast.
type Mailbox struct {
	path   quippath.Path
	parent *Mailbox // nil at the system root

	mu       sync.Mutex
	queue    []envelope.Envelope
	children map[id.QuipId]*Mailbox
	closed   bool
	notify   chan struct{}
}

// New builds a Mailbox addressed at path, optionally owned by parent
// (nil for the root).
func New(path quippath.Path, parent *Mailbox) *Mailbox {
	return &Mailbox{
		path:     path,
		parent:   parent,
		children: make(map[id.QuipId]*Mailbox),
		notify:   make(chan struct{}, 1),
	}
}

// Path implements quippath.SenderChannel.
func (m *Mailbox) Path() quippath.Path {
	return m.path
}

// Send enqueues env for later delivery to the owner via Next. It is safe
// to call from any goroutine, including the owner's own.
func (m *Mailbox) Send(env envelope.Envelope) {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.queue = append(m.queue, env)
	m.mu.Unlock()

	select {
	case m.notify <- struct{}{}:
	default:
	}
}

// SendSelf enqueues env onto this same mailbox, the idiomatic analog of
// Broadcast::send_self.
func (m *Mailbox) SendSelf(env envelope.Envelope) {
	m.Send(env)
}

// Next blocks until an envelope is available, the mailbox is closed with
// nothing left queued, or ctx is done. The second return is false once
// the mailbox is drained and closed (every sender dropped, in
// original_source terms), matching Broadcast's Stream semantics.
func (m *Mailbox) Next(ctx context.Context) (envelope.Envelope, bool) {
	for {
		m.mu.Lock()
		if len(m.queue) > 0 {
			env := m.queue[0]
			m.queue[0] = envelope.Envelope{}
			m.queue = m.queue[1:]
			m.mu.Unlock()
			return env, true
		}
		closed := m.closed
		m.mu.Unlock()

		if closed {
			return envelope.Envelope{}, false
		}

		select {
		case <-m.notify:
			continue
		case <-ctx.Done():
			return envelope.Envelope{}, false
		}
	}
}

// Register adds child under id to this mailbox's fan-out set.
func (m *Mailbox) Register(childID id.QuipId, child *Mailbox) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.children[childID] = child
}

// Unregister removes id from the fan-out set.
func (m *Mailbox) Unregister(childID id.QuipId) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.children, childID)
}

// ClearChildren empties the fan-out set without notifying any of them.
func (m *Mailbox) ClearChildren() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.children = make(map[id.QuipId]*Mailbox)
}

// SendChild delivers env to the single registered child named by id, if
// any.
func (m *Mailbox) SendChild(childID id.QuipId, env envelope.Envelope) {
	m.mu.Lock()
	child, ok := m.children[childID]
	m.mu.Unlock()
	if ok {
		child.Send(env)
	}
}

// SendChildren fans env out to every registered child. Children
// are delivered independent TryClone'd copies; a non-cloneable payload
// is silently skipped for every recipient, matching
// Broadcast::send_children's try_clone-then-skip behavior.
func (m *Mailbox) SendChildren(env envelope.Envelope) {
	m.mu.Lock()
	children := make([]*Mailbox, 0, len(m.children))
	for _, c := range m.children {
		children = append(children, c)
	}
	m.mu.Unlock()

	for _, c := range children {
		clone, ok := env.TryClone()
		if !ok {
			continue
		}
		c.Send(clone)
	}
}

// SendParent delivers env to the parent mailbox. It returns ErrNoParent
// if this mailbox is the system root.
func (m *Mailbox) SendParent(env envelope.Envelope) error {
	if m.parent == nil {
		return ErrNoParent
	}
	m.parent.Send(env)
	return nil
}

// StopChildren asks every registered child to stop, then clears the
// fan-out set.
func (m *Mailbox) StopChildren() {
	m.SendChildren(envelope.New(envelope.Stop{}, quippath.NewSignature(m.path, m)))
	m.ClearChildren()
}

// KillChildren asks every registered child to stop immediately, then
// clears the fan-out set.
func (m *Mailbox) KillChildren() {
	m.SendChildren(envelope.New(envelope.Kill{}, quippath.NewSignature(m.path, m)))
	m.ClearChildren()
}

// Stopped tears down this mailbox's children and emits Stopped{id} to
// the parent, the mailbox-level half of a graceful Child/Children
// termination.
func (m *Mailbox) Stopped(selfID id.QuipId) {
	m.StopChildren()
	_ = m.SendParent(envelope.New(envelope.Stopped{ID: selfID}, quippath.NewSignature(m.path, m)))
}

// Faulted tears down this mailbox's children and emits Faulted{id} to
// the parent.
func (m *Mailbox) Faulted(selfID id.QuipId, cause error) {
	m.KillChildren()
	_ = m.SendParent(envelope.New(envelope.Faulted{ID: selfID, Err: cause}, quippath.NewSignature(m.path, m)))
}

// Close marks the mailbox closed: further Send calls are dropped and
// Next returns false once the backlog drains. Close does not touch
// children or the parent; callers tear those down explicitly via
// Stopped/Faulted before closing.
func (m *Mailbox) Close() {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()

	select {
	case m.notify <- struct{}{}:
	default:
	}
}
