package eventbus

import "time"

// Event represents an application event published to the bus, e.g. an order
// status change or an incoming chat message.
type Event struct {
	Type      string            `json:"type"`
	UserID    string            `json:"user_id"`
	Timestamp time.Time         `json:"timestamp"`
	Payload   map[string]string `json:"payload"`
}

// Listener is a function that handles an event.
type Listener func(Event)
