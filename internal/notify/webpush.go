package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"time"

	webpush "github.com/SherClockHolmes/webpush-go"
)

// WebPushConfig holds the VAPID key pair for the web push adapter. The
// adapter is enabled only when both keys are present.
type WebPushConfig struct {
	VAPIDPublicKey  string `json:"vapid_public_key"`
	VAPIDPrivateKey string `json:"vapid_private_key"`
	Subscriber      string `json:"subscriber"` // mailto: contact required by the VAPID spec
	TTL             int    `json:"ttl"`        // seconds the push service retains an undelivered message
}

// WebPushAdapter delivers notifications to browser push subscriptions using
// VAPID-authenticated web push.
type WebPushAdapter struct {
	config  WebPushConfig
	enabled bool
}

// NewWebPushAdapter creates a WebPushAdapter. Missing VAPID keys disable the
// adapter rather than failing construction.
func NewWebPushAdapter(config WebPushConfig, log *slog.Logger) *WebPushAdapter {
	enabled := config.VAPIDPublicKey != "" && config.VAPIDPrivateKey != ""
	if !enabled {
		log.Info("push channel disabled, VAPID keys missing")
	}
	if config.TTL <= 0 {
		config.TTL = int((12 * time.Hour).Seconds())
	}
	return &WebPushAdapter{config: config, enabled: enabled}
}

// Channel returns ChannelPush.
func (a *WebPushAdapter) Channel() Channel { return ChannelPush }

// Enabled reports whether VAPID keys were present at construction.
func (a *WebPushAdapter) Enabled() bool { return a.enabled }

// pushEnvelope is the JSON document delivered to the service worker.
type pushEnvelope struct {
	Title string            `json:"title"`
	Body  string            `json:"body"`
	Data  map[string]string `json:"data,omitempty"`
}

// Send delivers msg to the recipient's push subscription.
func (a *WebPushAdapter) Send(ctx context.Context, rcpt Recipient, msg Message) Outcome {
	if !a.enabled {
		return Skipped(ChannelPush)
	}
	if rcpt.Push == nil || rcpt.Push.Endpoint == "" {
		return Failed(ChannelPush, "recipient has no push subscription")
	}

	payload, err := json.Marshal(pushEnvelope{
		Title: msg.Subject,
		Body:  msg.Body,
		Data:  msg.Payload,
	})
	if err != nil {
		return Failed(ChannelPush, fmt.Sprintf("encoding push payload: %v", err))
	}

	sub := &webpush.Subscription{
		Endpoint: rcpt.Push.Endpoint,
		Keys: webpush.Keys{
			Auth:   rcpt.Push.Auth,
			P256dh: rcpt.Push.P256dh,
		},
	}
	urgency := webpush.UrgencyNormal
	if msg.Priority == PriorityHigh {
		urgency = webpush.UrgencyHigh
	}

	resp, err := webpush.SendNotificationWithContext(ctx, payload, sub, &webpush.Options{
		Subscriber:      a.config.Subscriber,
		VAPIDPublicKey:  a.config.VAPIDPublicKey,
		VAPIDPrivateKey: a.config.VAPIDPrivateKey,
		TTL:             a.config.TTL,
		Urgency:         urgency,
	})
	if err != nil {
		return Failed(ChannelPush, fmt.Sprintf("web push send: %v", err))
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	// Push services answer 201 on acceptance; 404/410 mean the subscription
	// is gone and the caller should drop it.
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Failed(ChannelPush, fmt.Sprintf("push service returned %s", resp.Status))
	}
	return Sent(ChannelPush, resp.Header.Get("Location"))
}
