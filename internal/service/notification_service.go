// Package service exposes the application-facing operations over the
// notification core: dispatching, intent log access, and the in-app inbox.
package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/eventra/notify/internal/notify"
	"github.com/eventra/notify/internal/storage"
)

// IntentView is an intent record with its JSON columns decoded for API
// consumers.
type IntentView struct {
	ID        string            `json:"id"`
	UserID    string            `json:"user_id"`
	Kind      string            `json:"kind"`
	Subject   string            `json:"subject"`
	Body      string            `json:"body"`
	Payload   map[string]string `json:"payload,omitempty"`
	Priority  string            `json:"priority"`
	Channels  []string          `json:"channels"`
	Status    string            `json:"status"`
	Outcomes  []notify.Outcome  `json:"outcomes"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// NotificationService is the surface the HTTP API and CLI consume.
type NotificationService interface {
	// Send dispatches one notification and returns the delivery summary.
	Send(ctx context.Context, rcpt notify.Recipient, req notify.Request) (*notify.DeliverySummary, error)
	// GetIntent returns one intent with decoded outcomes.
	GetIntent(ctx context.Context, id string) (*IntentView, error)
	// ListIntents returns the most recent intents, up to limit.
	ListIntents(ctx context.Context, limit int) ([]IntentView, error)
	// ListInbox returns a user's in-app notifications.
	ListInbox(ctx context.Context, userID string, unreadOnly bool, limit int) ([]storage.InboxEntry, error)
	// MarkInboxRead marks all of a user's unread in-app notifications as
	// read and returns how many were affected.
	MarkInboxRead(ctx context.Context, userID string) (int64, error)
	// ChannelStatus reports each registered channel's enabled state.
	ChannelStatus() map[notify.Channel]bool
}

type notificationServiceImpl struct {
	dispatcher *notify.Dispatcher
	intents    storage.IntentStore
	inbox      storage.InboxStore
}

// NewNotificationService creates a NotificationService over the dispatcher
// and its stores.
func NewNotificationService(dispatcher *notify.Dispatcher, intents storage.IntentStore, inbox storage.InboxStore) NotificationService {
	return &notificationServiceImpl{
		dispatcher: dispatcher,
		intents:    intents,
		inbox:      inbox,
	}
}

// Send dispatches one notification.
func (s *notificationServiceImpl) Send(ctx context.Context, rcpt notify.Recipient, req notify.Request) (*notify.DeliverySummary, error) {
	return s.dispatcher.Send(ctx, rcpt, req)
}

// GetIntent returns one intent with decoded outcomes.
func (s *notificationServiceImpl) GetIntent(ctx context.Context, id string) (*IntentView, error) {
	rec, err := s.intents.GetIntent(ctx, id)
	if err != nil {
		return nil, err
	}
	view, err := toIntentView(rec)
	if err != nil {
		return nil, err
	}
	return &view, nil
}

// ListIntents returns the most recent intents with decoded outcomes.
func (s *notificationServiceImpl) ListIntents(ctx context.Context, limit int) ([]IntentView, error) {
	recs, err := s.intents.ListIntents(ctx, limit)
	if err != nil {
		return nil, err
	}
	views := make([]IntentView, 0, len(recs))
	for _, rec := range recs {
		view, err := toIntentView(rec)
		if err != nil {
			return nil, err
		}
		views = append(views, view)
	}
	return views, nil
}

// ListInbox returns a user's in-app notifications.
func (s *notificationServiceImpl) ListInbox(ctx context.Context, userID string, unreadOnly bool, limit int) ([]storage.InboxEntry, error) {
	return s.inbox.ListEntries(ctx, userID, unreadOnly, limit)
}

// MarkInboxRead marks all of a user's unread in-app notifications as read.
func (s *notificationServiceImpl) MarkInboxRead(ctx context.Context, userID string) (int64, error) {
	return s.inbox.MarkAllRead(ctx, userID)
}

// ChannelStatus reports each registered channel's enabled state.
func (s *notificationServiceImpl) ChannelStatus() map[notify.Channel]bool {
	return s.dispatcher.Channels()
}

// toIntentView decodes the JSON columns of an intent record.
func toIntentView(rec storage.IntentRecord) (IntentView, error) {
	view := IntentView{
		ID:        rec.ID,
		UserID:    rec.UserID,
		Kind:      rec.Kind,
		Subject:   rec.Subject,
		Body:      rec.Body,
		Priority:  rec.Priority,
		Status:    rec.Status,
		CreatedAt: rec.CreatedAt,
		UpdatedAt: rec.UpdatedAt,
	}
	if rec.Payload != "" && rec.Payload != "{}" {
		if err := json.Unmarshal([]byte(rec.Payload), &view.Payload); err != nil {
			return IntentView{}, fmt.Errorf("decoding payload of intent %q: %w", rec.ID, err)
		}
	}
	if err := json.Unmarshal([]byte(rec.Channels), &view.Channels); err != nil {
		return IntentView{}, fmt.Errorf("decoding channels of intent %q: %w", rec.ID, err)
	}
	if rec.Outcomes != "" && rec.Outcomes != "[]" {
		if err := json.Unmarshal([]byte(rec.Outcomes), &view.Outcomes); err != nil {
			return IntentView{}, fmt.Errorf("decoding outcomes of intent %q: %w", rec.ID, err)
		}
	}
	return view, nil
}
