package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/eventra/notify/internal/storage"
)

// InAppAdapter delivers notifications by writing an unread row to the user's
// inbox. It has no external transport; its only failure mode is the inbox
// write itself.
type InAppAdapter struct {
	inbox   storage.InboxStore
	enabled bool
}

// NewInAppAdapter creates an InAppAdapter. A nil inbox store or an explicit
// disable flag turns the channel off, mirroring the credential-gated
// channels.
func NewInAppAdapter(inbox storage.InboxStore, disabled bool, log *slog.Logger) *InAppAdapter {
	enabled := inbox != nil && !disabled
	if !enabled {
		log.Info("in-app channel disabled")
	}
	return &InAppAdapter{inbox: inbox, enabled: enabled}
}

// Channel returns ChannelInApp.
func (a *InAppAdapter) Channel() Channel { return ChannelInApp }

// Enabled reports whether the adapter has an inbox store to write to.
func (a *InAppAdapter) Enabled() bool { return a.enabled }

// Send writes an unread inbox entry for the recipient. In-app delivery has
// no provider reference.
func (a *InAppAdapter) Send(ctx context.Context, rcpt Recipient, msg Message) Outcome {
	if !a.enabled {
		return Skipped(ChannelInApp)
	}
	if rcpt.UserID == "" {
		return Failed(ChannelInApp, "recipient has no user id")
	}

	payload := "{}"
	if len(msg.Payload) > 0 {
		b, err := json.Marshal(msg.Payload)
		if err != nil {
			return Failed(ChannelInApp, fmt.Sprintf("encoding payload: %v", err))
		}
		payload = string(b)
	}

	kind := msg.Kind
	if kind == "" {
		kind = KindInformational
	}

	entry := storage.InboxEntry{
		UserID:    rcpt.UserID,
		Kind:      string(kind),
		Title:     msg.Subject,
		Body:      msg.Body,
		Payload:   payload,
		CreatedAt: time.Now().UTC(),
	}
	if err := a.inbox.AddEntry(ctx, entry); err != nil {
		return Failed(ChannelInApp, fmt.Sprintf("inbox write: %v", err))
	}
	return Sent(ChannelInApp, "")
}
