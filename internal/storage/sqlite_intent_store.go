package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// ErrIntentNotFound is returned by GetIntent for an unknown id.
var ErrIntentNotFound = errors.New("storage: intent not found")

// SQLiteIntentStore implements IntentStore backed by SQLite.
type SQLiteIntentStore struct {
	db *sql.DB
}

// NewSQLiteIntentStore returns a new SQLiteIntentStore.
func NewSQLiteIntentStore(db *sql.DB) *SQLiteIntentStore {
	return &SQLiteIntentStore{db: db}
}

// CreateIntent inserts an intent row.
func (s *SQLiteIntentStore) CreateIntent(ctx context.Context, rec IntentRecord) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO notification_intents
			(id, user_id, kind, subject, body, payload, priority, channels, status, outcomes, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.UserID, rec.Kind, rec.Subject, rec.Body, rec.Payload,
		rec.Priority, rec.Channels, rec.Status, rec.Outcomes,
		rec.CreatedAt, rec.UpdatedAt,
	)
	if err != nil {
		return classifyError(err)
	}
	return nil
}

// UpdateIntentStatus sets the terminal status and outcome set of an intent.
func (s *SQLiteIntentStore) UpdateIntentStatus(ctx context.Context, id, status, outcomes string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE notification_intents
		SET status = ?, outcomes = ?, updated_at = ?
		WHERE id = ?`,
		status, outcomes, time.Now().UTC(), id,
	)
	if err != nil {
		return classifyError(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return classifyError(err)
	}
	if n == 0 {
		return fmt.Errorf("updating intent %q: %w", id, ErrIntentNotFound)
	}
	return nil
}

// GetIntent returns one intent by id.
func (s *SQLiteIntentStore) GetIntent(ctx context.Context, id string) (IntentRecord, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, kind, subject, body, payload, priority, channels, status, outcomes, created_at, updated_at
		FROM notification_intents
		WHERE id = ?`, id)

	var rec IntentRecord
	err := row.Scan(&rec.ID, &rec.UserID, &rec.Kind, &rec.Subject, &rec.Body,
		&rec.Payload, &rec.Priority, &rec.Channels, &rec.Status, &rec.Outcomes,
		&rec.CreatedAt, &rec.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return IntentRecord{}, ErrIntentNotFound
	}
	if err != nil {
		return IntentRecord{}, classifyError(err)
	}
	return rec, nil
}

// ListIntents returns the most recent intents ordered by created_at descending.
func (s *SQLiteIntentStore) ListIntents(ctx context.Context, limit int) ([]IntentRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, kind, subject, body, payload, priority, channels, status, outcomes, created_at, updated_at
		FROM notification_intents
		ORDER BY created_at DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, classifyError(err)
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			err = fmt.Errorf("closing rows: %w", cerr)
		}
	}()

	var recs []IntentRecord
	for rows.Next() {
		var rec IntentRecord
		if err := rows.Scan(&rec.ID, &rec.UserID, &rec.Kind, &rec.Subject, &rec.Body,
			&rec.Payload, &rec.Priority, &rec.Channels, &rec.Status, &rec.Outcomes,
			&rec.CreatedAt, &rec.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning intent row: %w", err)
		}
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating intent rows: %w", err)
	}
	return recs, nil
}

// PurgeIntents deletes intents created before cutoff.
func (s *SQLiteIntentStore) PurgeIntents(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM notification_intents WHERE created_at < ?`, cutoff)
	if err != nil {
		return 0, classifyError(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, classifyError(err)
	}
	return n, nil
}
