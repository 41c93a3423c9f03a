package dispatch

import (
	"sync"

	"github.com/cespare/xxhash/v2"

	"github.com/petabytecl/quip/envelope"
	"github.com/petabytecl/quip/id"
	"github.com/petabytecl/quip/mailbox"
	"github.com/petabytecl/quip/quippath"
)

const registryShardCount = 16

// member pairs a registered mailbox with the id naming it, so
// unregistration and round-robin selection both have something stable
// to key on.
type member struct {
	id id.QuipId
	mb *mailbox.Mailbox
}

type shard struct {
	mu     sync.RWMutex
	groups map[string][]member
}

// Registry is the process-wide Dispatcher table: named groups of
// mailboxes reachable by Broadcast. It shards by the hash of the group
// name so unrelated groups never contend on the same lock.
type Registry struct {
	shards [registryShardCount]*shard
}

// NewRegistry builds an empty Registry.
func NewRegistry() *Registry {
	r := &Registry{}
	for i := range r.shards {
		r.shards[i] = &shard{groups: make(map[string][]member)}
	}
	return r
}

func (r *Registry) shardFor(name string) *shard {
	h := xxhash.Sum64String(name)
	return r.shards[h%registryShardCount]
}

// Register adds mb under name, identified by memberID for later
// Unregister calls. A mailbox may be registered under several names.
func (r *Registry) Register(name string, memberID id.QuipId, mb *mailbox.Mailbox) {
	s := r.shardFor(name)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.groups[name] = append(s.groups[name], member{id: memberID, mb: mb})
}

// Unregister removes memberID from name's group. It is a no-op if either
// is absent.
func (r *Registry) Unregister(name string, memberID id.QuipId) {
	s := r.shardFor(name)
	s.mu.Lock()
	defer s.mu.Unlock()

	members := s.groups[name]
	for i, m := range members {
		if m.id == memberID {
			s.groups[name] = append(members[:i], members[i+1:]...)
			break
		}
	}
	if len(s.groups[name]) == 0 {
		delete(s.groups, name)
	}
}

// Members returns a snapshot of the mailboxes registered under name.
func (r *Registry) Members(name string) []*mailbox.Mailbox {
	s := r.shardFor(name)
	s.mu.RLock()
	defer s.mu.RUnlock()

	members := s.groups[name]
	out := make([]*mailbox.Mailbox, len(members))
	for i, m := range members {
		out[i] = m.mb
	}
	return out
}

// BroadcastTarget selects who a Broadcast call reaches: a single named
// group, or every registered group.
type BroadcastTarget struct {
	group string
	all   bool
}

// Group targets the named group.
func Group(name string) BroadcastTarget { return BroadcastTarget{group: name} }

// All targets every registered group.
func All() BroadcastTarget { return BroadcastTarget{all: true} }

// Broadcast resolves target's members and enqueues an independent clone
// of payload (under sig) to each. Recipients that cannot accept a clone
// of payload are silently skipped, matching Mailbox.SendChildren.
// Broadcast returns NotFound if target names a group with no members.
func (r *Registry) Broadcast(target BroadcastTarget, payload envelope.Payload, sig quippath.Signature) error {
	var recipients []*mailbox.Mailbox

	if target.all {
		for i := range r.shards {
			s := r.shards[i]
			s.mu.RLock()
			for _, members := range s.groups {
				for _, m := range members {
					recipients = append(recipients, m.mb)
				}
			}
			s.mu.RUnlock()
		}
	} else {
		recipients = r.Members(target.group)
		if len(recipients) == 0 {
			return &SendError{Kind: NotFound, Cause: ErrNotFound}
		}
	}

	env := envelope.New(payload, sig)
	for _, mb := range recipients {
		clone, ok := env.TryClone()
		if !ok {
			continue
		}
		mb.Send(clone)
	}
	return nil
}
