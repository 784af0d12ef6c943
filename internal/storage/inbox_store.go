package storage

import (
	"context"
	"time"
)

// InboxEntry is one in-app notification row shown to a user until read.
type InboxEntry struct {
	ID        int64     `json:"id"`
	UserID    string    `json:"user_id"`
	Kind      string    `json:"kind"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	Payload   string    `json:"payload"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"created_at"`
}

// InboxStore persists in-app notifications. This is a distinct collection
// from the intent store: the in-app adapter writes here, the dispatcher
// never does.
type InboxStore interface {
	// AddEntry inserts a new unread entry.
	AddEntry(ctx context.Context, e InboxEntry) error
	// ListEntries returns a user's entries, newest first, up to limit.
	// When unreadOnly is set, read entries are excluded.
	ListEntries(ctx context.Context, userID string, unreadOnly bool, limit int) ([]InboxEntry, error)
	// MarkAllRead marks every unread entry of a user as read and returns
	// the number of entries affected.
	MarkAllRead(ctx context.Context, userID string) (int64, error)
	// PurgeRead deletes entries that are read and were created before
	// cutoff, returning the number of rows removed.
	PurgeRead(ctx context.Context, cutoff time.Time) (int64, error)
}
