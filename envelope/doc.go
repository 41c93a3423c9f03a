// Package envelope defines the message wrapper exchanged between every
// node of the supervision tree. An [Envelope] carries a [Payload] and the
// [quippath.Signature] of whoever sent it, so a recipient can address a
// reply without the sender being named explicitly.
//
// Payload is a closed sum type implemented with an unexported marker
// method, the idiomatic Go analog of original_source's QuipMessage enum
// (envelope.rs / broadcast.rs): system control payloads (Start, Stop,
// Kill, Deploy, Prune, Stopped, Faulted, ...) live alongside a generic
// Message payload that carries a user-supplied value of any type.
package envelope
