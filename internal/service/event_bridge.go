package service

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/eventra/notify/internal/config"
	"github.com/eventra/notify/internal/eventbus"
	"github.com/eventra/notify/internal/notify"
)

// Well-known application event types that produce notifications.
const (
	EventOrderShipped    = "orders.order.shipped"
	EventOrderConfirmed  = "orders.order.confirmed"
	EventBookingReminder = "bookings.booking.reminder"
	EventChatMessage     = "chats.message.received"
	EventPromotion       = "marketing.promotion.published"
)

// handleTimeout bounds one end-to-end dispatch triggered by an event.
const handleTimeout = 30 * time.Second

// Contact payload keys. The event publisher resolves the user's contact
// information and carries it in the payload; these keys are stripped from
// the notification body.
const (
	payloadKeyEmail = "email"
	payloadKeyPhone = "phone"
)

// EventBridge turns application events into notification dispatches using
// the routing rules. It is registered as an eventbus listener.
type EventBridge struct {
	svc   NotificationService
	rules *config.RoutingRules
	log   *slog.Logger
}

// NewEventBridge creates an EventBridge.
func NewEventBridge(svc NotificationService, rules *config.RoutingRules, log *slog.Logger) *EventBridge {
	return &EventBridge{svc: svc, rules: rules, log: log}
}

// Handle maps one event to a notification request and dispatches it. It is
// safe to call from eventbus workers; all delivery failures surface as
// outcome data, not errors.
func (b *EventBridge) Handle(e eventbus.Event) {
	kind := kindForEvent(e.Type)
	channels, enabled := b.rules.ChannelsFor(kind)
	if !enabled {
		return
	}

	rcpt := notify.Recipient{
		UserID: e.UserID,
		Email:  e.Payload[payloadKeyEmail],
		Phone:  e.Payload[payloadKeyPhone],
	}

	req := notify.Request{
		Kind:     kind,
		Subject:  subjectForEvent(e.Type),
		Body:     bodyFromPayload(e.Payload),
		Payload:  map[string]string{"event_type": e.Type},
		Priority: priorityForKind(kind),
		Channels: channels,
	}

	ctx, cancel := context.WithTimeout(context.Background(), handleTimeout)
	defer cancel()

	summary, err := b.svc.Send(ctx, rcpt, req)
	if err != nil {
		b.log.Error("event notification rejected",
			"event_type", e.Type, "user_id", e.UserID, "error", err)
		return
	}
	b.log.Info("event notification dispatched",
		"event_type", e.Type, "user_id", e.UserID,
		"intent_id", summary.IntentID, "status", summary.Status)
}

// kindForEvent classifies an event type into a notification kind.
func kindForEvent(eventType string) notify.Kind {
	switch {
	case strings.HasPrefix(eventType, "orders."):
		return notify.KindTransactional
	case strings.HasPrefix(eventType, "bookings."):
		return notify.KindReminder
	case strings.HasPrefix(eventType, "marketing."):
		return notify.KindMarketing
	default:
		return notify.KindInformational
	}
}

// subjectForEvent returns a readable subject for well-known events; unknown
// types fall back to the raw event type string.
func subjectForEvent(eventType string) string {
	switch eventType {
	case EventOrderShipped:
		return "Your order has shipped"
	case EventOrderConfirmed:
		return "Your order is confirmed"
	case EventBookingReminder:
		return "Upcoming booking reminder"
	case EventChatMessage:
		return "You have a new message"
	case EventPromotion:
		return "New offers for you"
	}
	return eventType
}

// priorityForKind marks reminders and transactional notifications as high
// priority so push delivery is not throttled.
func priorityForKind(kind notify.Kind) notify.Priority {
	if kind == notify.KindTransactional || kind == notify.KindReminder {
		return notify.PriorityHigh
	}
	return notify.PriorityNormal
}

// bodyFromPayload flattens the event payload into "key: value" lines,
// skipping contact keys. Keys are sorted so the body is deterministic.
func bodyFromPayload(payload map[string]string) string {
	keys := make([]string, 0, len(payload))
	for k := range payload {
		if k == payloadKeyEmail || k == payloadKeyPhone {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	lines := make([]string, 0, len(keys))
	for _, k := range keys {
		lines = append(lines, k+": "+payload[k])
	}
	return strings.Join(lines, "\n")
}
