// Package id provides QuipId, the 128-bit globally unique identifier used to
// name every LP, child, children group, and supervisor in the runtime.
package id

import (
	"github.com/google/uuid"
)

// QuipId uniquely identifies a scheduled process or a node in the
// supervision tree. It wraps a 128-bit UUID.
type QuipId uuid.UUID

// Nil is the reserved identifier for the system root and for dead-letters
// routing, where no concrete node owns the address.
var Nil = QuipId(uuid.Nil)

// New generates a fresh, random QuipId.
func New() QuipId {
	return QuipId(uuid.New())
}

// String renders the canonical hyphenated hex form.
func (id QuipId) String() string {
	return uuid.UUID(id).String()
}

// IsNil reports whether id is the reserved Nil value.
func (id QuipId) IsNil() bool {
	return id == Nil
}

// Equal reports whether two ids name the same node.
func (id QuipId) Equal(other QuipId) bool {
	return id == other
}
