// Package quippath implements the hierarchical addressing scheme used to
// route envelopes and to identify message senders for replies.
//
// A [Path] is an ordered chain of elements: zero or more [KindSupervisor]
// elements (nested supervisors), optionally followed by one [KindChildren]
// element, optionally followed by one [KindChild] element. The empty path
// names the system root. Append is fallible: it type-checks the new
// element against the path's current tail the way original_source's
// quip/src/path.rs does, and [ErrInvalidAppend] surfaces any violation to
// the caller as a programmer error.
package quippath
