package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// SQLiteInboxStore implements InboxStore backed by SQLite.
type SQLiteInboxStore struct {
	db *sql.DB
}

// NewSQLiteInboxStore returns a new SQLiteInboxStore.
func NewSQLiteInboxStore(db *sql.DB) *SQLiteInboxStore {
	return &SQLiteInboxStore{db: db}
}

// AddEntry inserts an unread inbox row.
func (s *SQLiteInboxStore) AddEntry(ctx context.Context, e InboxEntry) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO inbox_entries (user_id, kind, title, body, payload, read, created_at)
		VALUES (?, ?, ?, ?, ?, 0, ?)`,
		e.UserID, e.Kind, e.Title, e.Body, e.Payload, e.CreatedAt,
	)
	if err != nil {
		return classifyError(err)
	}
	return nil
}

// ListEntries returns a user's entries ordered by created_at descending.
func (s *SQLiteInboxStore) ListEntries(ctx context.Context, userID string, unreadOnly bool, limit int) ([]InboxEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	q := `
		SELECT id, user_id, kind, title, body, payload, read, created_at
		FROM inbox_entries
		WHERE user_id = ?`
	if unreadOnly {
		q += ` AND read = 0`
	}
	q += ` ORDER BY created_at DESC LIMIT ?`

	rows, err := s.db.QueryContext(ctx, q, userID, limit)
	if err != nil {
		return nil, classifyError(err)
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			err = fmt.Errorf("closing rows: %w", cerr)
		}
	}()

	var entries []InboxEntry
	for rows.Next() {
		var e InboxEntry
		if err := rows.Scan(&e.ID, &e.UserID, &e.Kind, &e.Title, &e.Body,
			&e.Payload, &e.Read, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning inbox row: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating inbox rows: %w", err)
	}
	return entries, nil
}

// MarkAllRead marks every unread entry of a user as read.
func (s *SQLiteInboxStore) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE inbox_entries SET read = 1 WHERE user_id = ? AND read = 0`, userID)
	if err != nil {
		return 0, classifyError(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, classifyError(err)
	}
	return n, nil
}

// PurgeRead deletes read entries created before cutoff.
func (s *SQLiteInboxStore) PurgeRead(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM inbox_entries WHERE read = 1 AND created_at < ?`, cutoff)
	if err != nil {
		return 0, classifyError(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, classifyError(err)
	}
	return n, nil
}
