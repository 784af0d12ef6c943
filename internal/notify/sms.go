package notify

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/twilio/twilio-go"
	twilioapi "github.com/twilio/twilio-go/rest/api/v2010"
)

// SMSConfig holds Twilio credentials for the SMS adapter. The adapter is
// enabled only when all three fields are present.
type SMSConfig struct {
	AccountSID string `json:"account_sid"`
	AuthToken  string `json:"auth_token"`
	FromNumber string `json:"from_number"`
}

// SMSAdapter delivers notifications as text messages through the Twilio
// Messaging API.
type SMSAdapter struct {
	config  SMSConfig
	client  *twilio.RestClient
	enabled bool
}

// NewSMSAdapter creates an SMSAdapter. Missing Twilio credentials disable
// the adapter rather than failing construction.
func NewSMSAdapter(config SMSConfig, timeout time.Duration, log *slog.Logger) *SMSAdapter {
	enabled := config.AccountSID != "" && config.AuthToken != "" && config.FromNumber != ""
	a := &SMSAdapter{config: config, enabled: enabled}
	if !enabled {
		log.Info("sms channel disabled, Twilio credentials missing")
		return a
	}

	a.client = twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: config.AccountSID,
		Password: config.AuthToken,
	})
	if timeout > 0 {
		a.client.SetTimeout(timeout)
	}
	return a
}

// Channel returns ChannelSMS.
func (a *SMSAdapter) Channel() Channel { return ChannelSMS }

// Enabled reports whether Twilio credentials were present at construction.
func (a *SMSAdapter) Enabled() bool { return a.enabled }

// Send delivers msg to the recipient's phone number.
func (a *SMSAdapter) Send(_ context.Context, rcpt Recipient, msg Message) Outcome {
	if !a.enabled {
		return Skipped(ChannelSMS)
	}
	if rcpt.Phone == "" {
		return Failed(ChannelSMS, "recipient has no phone number")
	}

	params := &twilioapi.CreateMessageParams{}
	params.SetTo(rcpt.Phone)
	params.SetFrom(a.config.FromNumber)
	params.SetBody(smsBody(msg))

	resp, err := a.client.Api.CreateMessage(params)
	if err != nil {
		return Failed(ChannelSMS, fmt.Sprintf("twilio send: %v", err))
	}

	ref := ""
	if resp != nil && resp.Sid != nil {
		ref = *resp.Sid
	}
	return Sent(ChannelSMS, ref)
}

// smsBody flattens subject and body into a single text message. SMS has no
// subject line, so the subject leads the text when present.
func smsBody(msg Message) string {
	if msg.Subject == "" {
		return msg.Body
	}
	if msg.Body == "" {
		return msg.Subject
	}
	return msg.Subject + "\n" + msg.Body
}
