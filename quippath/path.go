package quippath

import (
	"strings"

	"github.com/petabytecl/quip/id"
)

// Kind identifies which layer of the supervision tree an Element names.
type Kind uint8

const (
	// KindSupervisor names a supervisor node. Supervisors may nest.
	KindSupervisor Kind = iota
	// KindChildren names a children group, always owned by a supervisor.
	KindChildren
	// KindChild names one member of a children group.
	KindChild
)

// String renders the kind for logging and debugging.
func (k Kind) String() string {
	switch k {
	case KindSupervisor:
		return "supervisor"
	case KindChildren:
		return "children"
	case KindChild:
		return "child"
	default:
		return "unknown"
	}
}

// Element is one link of a Path: a kind, a human-readable name, and the
// QuipId identifying the concrete node.
type Element struct {
	Kind Kind
	Name string
	ID   id.QuipId
}

// DeadLettersSupervisorName and DeadLettersGroupName name the reserved
// path recognized by IsDeadLetters.
const (
	DeadLettersSupervisorName = "root"
	DeadLettersGroupName      = "dead-letters-group"
)

// Path is an immutable, cheaply-clonable chain of Elements. The zero Path
// is the root: the system itself, with no parent and no tail element.
type Path struct {
	elems []Element
}

// Root returns the path naming the system root (the empty chain).
func Root() Path {
	return Path{}
}

// Elements returns the path's elements in order, root first. The returned
// slice is shared; callers must not mutate it.
func (p Path) Elements() []Element {
	return p.elems
}

// Len returns the number of elements in the chain.
func (p Path) Len() int {
	return len(p.elems)
}

// IsRoot reports whether p names the system root.
func (p Path) IsRoot() bool {
	return len(p.elems) == 0
}

// Tail returns the path's last element and true, or the zero Element and
// false if the path is the root.
func (p Path) Tail() (Element, bool) {
	if len(p.elems) == 0 {
		return Element{}, false
	}
	return p.elems[len(p.elems)-1], true
}

// ID returns the last element's id, or id.Nil if the path is the root or
// names the dead-letters group (matching original_source's
// QuipPath::id, which returns &NIL_ID for root and dead-letters senders).
func (p Path) ID() id.QuipId {
	if p.IsRoot() || p.IsDeadLetters() {
		return id.Nil
	}
	tail, _ := p.Tail()
	return tail.ID
}

// Append validates kind against the current tail and, if valid, returns a
// new Path with the element appended. The receiver is left unmodified.
//
// Valid transitions:
//   - Supervisor: may follow the root, or another Supervisor (nested
//     supervisors).
//   - Children: may only follow a Supervisor.
//   - Child: may only follow a Children.
func (p Path) Append(kind Kind, name string, nodeID id.QuipId) (Path, error) {
	if name == "" {
		return Path{}, ErrEmptyName
	}

	tail, hasTail := p.Tail()

	switch kind {
	case KindSupervisor:
		if hasTail && tail.Kind != KindSupervisor {
			return Path{}, ErrInvalidAppend
		}
	case KindChildren:
		if !hasTail || tail.Kind != KindSupervisor {
			return Path{}, ErrInvalidAppend
		}
	case KindChild:
		if !hasTail || tail.Kind != KindChildren {
			return Path{}, ErrInvalidAppend
		}
	default:
		return Path{}, ErrInvalidAppend
	}

	next := make([]Element, len(p.elems)+1)
	copy(next, p.elems)
	next[len(p.elems)] = Element{Kind: kind, Name: name, ID: nodeID}
	return Path{elems: next}, nil
}

// IsDeadLetters reports whether p is exactly the reserved
// /root/dead-letters-group/child path: the built-in sink for
// undeliverable envelopes.
func (p Path) IsDeadLetters() bool {
	if len(p.elems) != 3 {
		return false
	}
	return p.elems[0].Kind == KindSupervisor && p.elems[0].Name == DeadLettersSupervisorName &&
		p.elems[1].Kind == KindChildren && p.elems[1].Name == DeadLettersGroupName &&
		p.elems[2].Kind == KindChild
}

// String renders the path as a slash-separated chain of element names,
// e.g. "/root/workers/worker-3". The root renders as "/".
func (p Path) String() string {
	if p.IsRoot() {
		return "/"
	}
	var b strings.Builder
	for _, e := range p.elems {
		b.WriteByte('/')
		b.WriteString(e.Name)
	}
	return b.String()
}

// Equal reports whether two paths name the same chain of nodes.
func (p Path) Equal(other Path) bool {
	if len(p.elems) != len(other.elems) {
		return false
	}
	for i := range p.elems {
		if p.elems[i] != other.elems[i] {
			return false
		}
	}
	return true
}
