package quipio

import "errors"

// ErrCancelled is returned when a vectored operation's LP is cancelled
// (e.g. Pool.Stop) before the syscall completes.
var ErrCancelled = errors.New("quipio: cancelled")

// ErrUnsupported is returned on platforms without vectored I/O support
// (see vectored_other.go).
var ErrUnsupported = errors.New("quipio: vectored I/O not supported on this platform")
