package storage

import (
	"context"
	"time"
)

// IntentRecord is the persisted form of one notification intent. Channels
// and Outcomes are stored as JSON-encoded text; the dispatcher owns their
// shape.
type IntentRecord struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Kind      string    `json:"kind"`
	Subject   string    `json:"subject"`
	Body      string    `json:"body"`
	Payload   string    `json:"payload"`
	Priority  string    `json:"priority"`
	Channels  string    `json:"channels"`
	Status    string    `json:"status"`
	Outcomes  string    `json:"outcomes"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IntentStore persists notification intents and their delivery status.
type IntentStore interface {
	// CreateIntent inserts a new intent record. The record's status must be
	// "pending"; every delivery attempt creates a fresh record so the audit
	// trail of attempts is preserved.
	CreateIntent(ctx context.Context, rec IntentRecord) error
	// UpdateIntentStatus moves an intent from pending to its terminal status
	// and attaches the JSON-encoded outcome set.
	UpdateIntentStatus(ctx context.Context, id, status, outcomes string) error
	// GetIntent returns one intent by id.
	GetIntent(ctx context.Context, id string) (IntentRecord, error)
	// ListIntents returns the most recent intents, up to limit.
	ListIntents(ctx context.Context, limit int) ([]IntentRecord, error)
	// PurgeIntents deletes intents created before cutoff and returns the
	// number of rows removed.
	PurgeIntents(ctx context.Context, cutoff time.Time) (int64, error)
}
