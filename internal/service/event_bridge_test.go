package service_test

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eventra/notify/internal/config"
	"github.com/eventra/notify/internal/eventbus"
	"github.com/eventra/notify/internal/notify"
	"github.com/eventra/notify/internal/service"
	"github.com/eventra/notify/internal/storage"
)

// capturingService records every Send call.
type capturingService struct {
	mu    sync.Mutex
	rcpts []notify.Recipient
	reqs  []notify.Request
}

func (c *capturingService) Send(_ context.Context, rcpt notify.Recipient, req notify.Request) (*notify.DeliverySummary, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rcpts = append(c.rcpts, rcpt)
	c.reqs = append(c.reqs, req)
	return &notify.DeliverySummary{IntentID: "i-1", Status: notify.StatusDelivered}, nil
}

func (c *capturingService) GetIntent(context.Context, string) (*service.IntentView, error) {
	return nil, storage.ErrIntentNotFound
}
func (c *capturingService) ListIntents(context.Context, int) ([]service.IntentView, error) {
	return nil, nil
}
func (c *capturingService) ListInbox(context.Context, string, bool, int) ([]storage.InboxEntry, error) {
	return nil, nil
}
func (c *capturingService) MarkInboxRead(context.Context, string) (int64, error) { return 0, nil }
func (c *capturingService) ChannelStatus() map[notify.Channel]bool               { return nil }

func (c *capturingService) calls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.reqs)
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
}

func emptyRules(t *testing.T) *config.RoutingRules {
	t.Helper()
	rules, err := config.LoadRoutingRules(t.TempDir() + "/none.yaml")
	require.NoError(t, err)
	return rules
}

func TestHandle_OrderShipped(t *testing.T) {
	svc := &capturingService{}
	bridge := service.NewEventBridge(svc, emptyRules(t), discardLogger())

	bridge.Handle(eventbus.Event{
		Type:      service.EventOrderShipped,
		UserID:    "u-1",
		Timestamp: time.Now(),
		Payload: map[string]string{
			"order_id": "o-77",
			"email":    "user@example.com",
			"phone":    "+15550100",
		},
	})

	require.Equal(t, 1, svc.calls())
	req := svc.reqs[0]
	rcpt := svc.rcpts[0]

	assert.Equal(t, notify.KindTransactional, req.Kind)
	assert.Equal(t, "Your order has shipped", req.Subject)
	assert.Equal(t, notify.PriorityHigh, req.Priority)
	// No routing rule for transactional: fall back to in-app only.
	assert.Equal(t, []notify.Channel{notify.ChannelInApp}, req.Channels)

	// Contact keys populate the recipient and are stripped from the body.
	assert.Equal(t, "u-1", rcpt.UserID)
	assert.Equal(t, "user@example.com", rcpt.Email)
	assert.Equal(t, "+15550100", rcpt.Phone)
	assert.Equal(t, "order_id: o-77", req.Body)
}

func TestHandle_RoutingRuleSelectsChannels(t *testing.T) {
	path := t.TempDir() + "/routing.yaml"
	writeFile(t, path, `
kinds:
  transactional:
    channels: [email, sms]
`)
	rules, err := config.LoadRoutingRules(path)
	require.NoError(t, err)

	svc := &capturingService{}
	bridge := service.NewEventBridge(svc, rules, discardLogger())

	bridge.Handle(eventbus.Event{Type: service.EventOrderConfirmed, UserID: "u-1"})

	require.Equal(t, 1, svc.calls())
	assert.Equal(t, []notify.Channel{notify.ChannelEmail, notify.ChannelSMS}, svc.reqs[0].Channels)
}

func TestHandle_DisabledKindSuppressed(t *testing.T) {
	path := t.TempDir() + "/routing.yaml"
	writeFile(t, path, `
kinds:
  marketing:
    enabled: false
`)
	rules, err := config.LoadRoutingRules(path)
	require.NoError(t, err)

	svc := &capturingService{}
	bridge := service.NewEventBridge(svc, rules, discardLogger())

	bridge.Handle(eventbus.Event{Type: service.EventPromotion, UserID: "u-1"})

	assert.Zero(t, svc.calls())
}

func TestHandle_KindClassification(t *testing.T) {
	tests := []struct {
		eventType string
		want      notify.Kind
	}{
		{service.EventOrderShipped, notify.KindTransactional},
		{service.EventBookingReminder, notify.KindReminder},
		{service.EventPromotion, notify.KindMarketing},
		{service.EventChatMessage, notify.KindInformational},
		{"something.unknown", notify.KindInformational},
	}

	for _, tt := range tests {
		svc := &capturingService{}
		bridge := service.NewEventBridge(svc, emptyRules(t), discardLogger())
		bridge.Handle(eventbus.Event{Type: tt.eventType, UserID: "u-1"})

		require.Equal(t, 1, svc.calls(), "event %q", tt.eventType)
		assert.Equal(t, tt.want, svc.reqs[0].Kind, "event %q", tt.eventType)
	}
}

func TestHandle_UnknownEventSubjectFallsBack(t *testing.T) {
	svc := &capturingService{}
	bridge := service.NewEventBridge(svc, emptyRules(t), discardLogger())

	bridge.Handle(eventbus.Event{Type: "payments.refund.issued", UserID: "u-1"})

	require.Equal(t, 1, svc.calls())
	assert.Equal(t, "payments.refund.issued", svc.reqs[0].Subject)
}
