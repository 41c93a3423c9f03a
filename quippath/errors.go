package quippath

import "errors"

// Sentinel errors for the path subsystem. These surface to the caller as
// AppendError in §7 of the runtime design: path composition violated an
// invariant, which is a programmer error and should be treated as fatal
// by the caller rather than retried.
var (
	// ErrInvalidAppend is returned when appending an element would violate
	// the chain-ordering invariant (Child must follow Children, Children
	// must follow Supervisor).
	ErrInvalidAppend = errors.New("quippath: invalid element append")

	// ErrEmptyName is returned when an element is constructed with an
	// empty name.
	ErrEmptyName = errors.New("quippath: element name must not be empty")
)
