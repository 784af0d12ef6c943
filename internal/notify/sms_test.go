package notify

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSMSAdapter_DisabledWithoutCredentials(t *testing.T) {
	tests := []struct {
		name   string
		config SMSConfig
	}{
		{"empty config", SMSConfig{}},
		{"missing token", SMSConfig{AccountSID: "AC123", FromNumber: "+15550100"}},
		{"missing from number", SMSConfig{AccountSID: "AC123", AuthToken: "tok"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := NewSMSAdapter(tt.config, time.Second, discardLogger())
			assert.False(t, a.Enabled())

			out := a.Send(context.Background(), testRecipient(), Message{Subject: "s", Body: "b"})
			assert.Equal(t, Skipped(ChannelSMS), out)
		})
	}
}

func TestSMSAdapter_EnabledWithCredentials(t *testing.T) {
	a := NewSMSAdapter(SMSConfig{
		AccountSID: "AC123",
		AuthToken:  "tok",
		FromNumber: "+15550100",
	}, time.Second, discardLogger())

	assert.True(t, a.Enabled())
	assert.Equal(t, ChannelSMS, a.Channel())
}

func TestSMSAdapter_MissingPhoneFails(t *testing.T) {
	a := NewSMSAdapter(SMSConfig{AccountSID: "AC123", AuthToken: "tok", FromNumber: "+15550100"},
		time.Second, discardLogger())

	out := a.Send(context.Background(), Recipient{UserID: "u-1"}, Message{Body: "b"})
	assert.Equal(t, ResultFailed, out.Result)
	assert.Contains(t, out.ErrorDetail, "no phone number")
}

func TestSMSBody(t *testing.T) {
	assert.Equal(t, "Hi\nBody", smsBody(Message{Subject: "Hi", Body: "Body"}))
	assert.Equal(t, "Body", smsBody(Message{Body: "Body"}))
	assert.Equal(t, "Hi", smsBody(Message{Subject: "Hi"}))
}
