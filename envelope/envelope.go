package envelope

import "github.com/petabytecl/quip/quippath"

// Envelope is the unit of delivery between nodes of the supervision tree:
// a payload plus the signature identifying whoever sent it.
type Envelope struct {
	Payload   Payload
	Signature quippath.Signature
}

// New wraps payload with sig into a deliverable Envelope.
func New(payload Payload, sig quippath.Signature) Envelope {
	return Envelope{Payload: payload, Signature: sig}
}

// FromDeadLetters builds an envelope whose signature is the reserved
// dead-letters address, used when a message cannot be attributed to any
// live sender.
func FromDeadLetters(payload Payload, deadLetters quippath.Path) Envelope {
	return Envelope{Payload: payload, Signature: quippath.NewSignature(deadLetters, nil)}
}

// TryClone attempts to produce an independent copy of e for fan-out
// delivery to several recipients (e.g. Children.Broadcast). It returns
// false if the payload does not support cloning, mirroring
// original_source's Envelope::try_clone / QuipMessage::try_clone, which
// refuse to duplicate payloads like one-shot callbacks.
func (e Envelope) TryClone() (Envelope, bool) {
	c, ok := e.Payload.(cloneable)
	if !ok {
		return Envelope{}, false
	}
	return Envelope{Payload: c.clonePayload(), Signature: e.Signature}, true
}

// IsDeadLetters reports whether e was sent with no identifiable sender.
func (e Envelope) IsDeadLetters() bool {
	return e.Signature.IsDeadLetters()
}
