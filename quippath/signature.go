package quippath

// SenderChannel abstracts the reply-delivery side of a mailbox: anything
// capable of accepting a reply envelope addressed by its own Signature.
// Message and Envelope live in package envelope, which depends on
// quippath, so SenderChannel is kept deliberately minimal here and
// satisfied there (via a concrete mailbox handle) to avoid an import
// cycle.
type SenderChannel interface {
	// Path is the channel's own address, attached to outgoing envelopes so
	// recipients can reply.
	Path() Path
}

// Signature pairs a Path with the channel a reply should be sent on. It is
// attached to every outgoing envelope and is the unit callers hold onto to
// address a reply back to the sender.
type Signature struct {
	path    Path
	channel SenderChannel
}

// NewSignature builds a Signature from a path and its owning channel.
func NewSignature(path Path, channel SenderChannel) Signature {
	return Signature{path: path, channel: channel}
}

// Path returns the signature's address.
func (s Signature) Path() Path {
	return s.path
}

// Channel returns the channel a reply should be delivered on, or nil if
// the signature was built without one (e.g. for dead-letters routing).
func (s Signature) Channel() SenderChannel {
	return s.channel
}

// IsDeadLetters reports whether the signature's path is the reserved
// dead-letters address.
func (s Signature) IsDeadLetters() bool {
	return s.path.IsDeadLetters()
}
