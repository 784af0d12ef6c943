package notify

import "context"

// Adapter is the uniform contract every channel implements.
//
// Send performs exactly one delivery attempt: no retries, no backoff, no
// queuing. It always returns an Outcome and never panics or returns an
// error — a disabled adapter returns a skipped outcome, and a transport
// failure is caught inside the adapter and returned as a failed outcome so
// that one channel can never abort the fan-out to its siblings.
//
// Adapters are stateless apart from configuration fixed at construction and
// are safe for concurrent use.
type Adapter interface {
	// Channel returns the channel this adapter delivers on.
	Channel() Channel
	// Enabled reports whether the adapter has the configuration it needs.
	// The value is decided once, at construction.
	Enabled() bool
	// Send attempts delivery of msg to rcpt on this adapter's channel.
	Send(ctx context.Context, rcpt Recipient, msg Message) Outcome
}
