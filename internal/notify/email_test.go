package notify

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wneessen/go-mail"
)

func TestEmailAdapter_DisabledWithoutConfig(t *testing.T) {
	a := NewEmailAdapter(EmailConfig{}, discardLogger())

	assert.False(t, a.Enabled())
	assert.Equal(t, ChannelEmail, a.Channel())

	// A disabled adapter must skip every send, never error.
	for i := 0; i < 3; i++ {
		out := a.Send(context.Background(), testRecipient(), Message{Subject: "s", Body: "b"})
		assert.Equal(t, Skipped(ChannelEmail), out)
	}
}

func TestEmailAdapter_DisabledWithoutFromAddress(t *testing.T) {
	a := NewEmailAdapter(EmailConfig{Host: "smtp.example.com"}, discardLogger())
	assert.False(t, a.Enabled())
}

func TestEmailAdapter_EnabledWithConfig(t *testing.T) {
	a := NewEmailAdapter(EmailConfig{
		Host:     "smtp.example.com",
		Port:     587,
		FromAddr: "noreply@example.com",
	}, discardLogger())
	assert.True(t, a.Enabled())
}

func TestEmailAdapter_MissingRecipientFails(t *testing.T) {
	a := NewEmailAdapter(EmailConfig{Host: "smtp.example.com", FromAddr: "noreply@example.com"}, discardLogger())

	out := a.Send(context.Background(), Recipient{UserID: "u-1"}, Message{Subject: "s"})
	assert.Equal(t, ResultFailed, out.Result)
	assert.Contains(t, out.ErrorDetail, "no email address")
}

func TestTLSPolicyFromEncryption(t *testing.T) {
	assert.Equal(t, mail.TLSMandatory, tlsPolicyFromEncryption("ssl_tls"))
	assert.Equal(t, mail.TLSOpportunistic, tlsPolicyFromEncryption("starttls"))
	assert.Equal(t, mail.NoTLS, tlsPolicyFromEncryption("none"))
	assert.Equal(t, mail.NoTLS, tlsPolicyFromEncryption(""))
}

func TestBuildEmailHTML(t *testing.T) {
	html, err := buildEmailHTML("Order shipped", "Your order is on its way.\n\nTrack it in the app.")
	require.NoError(t, err)

	assert.Contains(t, html, "Order shipped")
	assert.Contains(t, html, "Your order is on its way.")
	assert.Contains(t, html, "Track it in the app.")
}

func TestBuildEmailHTML_EscapesContent(t *testing.T) {
	html, err := buildEmailHTML("<script>alert(1)</script>", "a < b")
	require.NoError(t, err)

	assert.False(t, strings.Contains(html, "<script>alert(1)</script>"))
	assert.Contains(t, html, "&lt;script&gt;")
}
