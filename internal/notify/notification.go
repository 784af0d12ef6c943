// Package notify implements the multi-channel notification core: channel
// adapters (email, SMS, web push, in-app) with a uniform send contract, and a
// dispatcher that fans a notification out to the requested channels
// concurrently and aggregates the per-channel outcomes.
package notify

// Kind classifies a notification by intent.
type Kind string

// Notification kinds.
const (
	KindInformational Kind = "informational"
	KindReminder      Kind = "reminder"
	KindTransactional Kind = "transactional"
	KindMarketing     Kind = "marketing"
)

// Priority indicates delivery urgency. It is carried through to transports
// that support it (web push sets the Urgency header).
type Priority string

// Priorities.
const (
	PriorityNormal Priority = "normal"
	PriorityHigh   Priority = "high"
)

// PushSubscription is a browser push subscription as produced by the
// Push API's PushManager.subscribe().
type PushSubscription struct {
	Endpoint string `json:"endpoint"`
	Auth     string `json:"auth"`
	P256dh   string `json:"p256dh"`
}

// Recipient carries the per-channel contact information for one user.
// Fields for channels that are not requested may be left empty.
type Recipient struct {
	UserID string            `json:"user_id"`
	Email  string            `json:"email,omitempty"`
	Phone  string            `json:"phone,omitempty"`
	Push   *PushSubscription `json:"push,omitempty"`
}

// Message is the channel-independent content handed to each adapter.
type Message struct {
	Kind     Kind              `json:"kind"`
	Subject  string            `json:"subject"`
	Body     string            `json:"body"`
	Payload  map[string]string `json:"payload,omitempty"`
	Priority Priority          `json:"priority"`
}

// Request describes one logical notification to be delivered.
type Request struct {
	Kind     Kind              `json:"kind"`
	Subject  string            `json:"subject"`
	Body     string            `json:"body"`
	Payload  map[string]string `json:"payload,omitempty"`
	Priority Priority          `json:"priority"`
	Channels []Channel         `json:"channels"`
}
