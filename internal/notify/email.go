package notify

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/wneessen/go-mail"
)

// EmailConfig holds connection parameters for the SMTP adapter. The adapter
// is enabled only when Host and FromAddr are both present.
type EmailConfig struct {
	Host       string `json:"host"`
	Port       int    `json:"port"`
	Username   string `json:"username"`
	Password   string `json:"password"`
	FromAddr   string `json:"from_address"`
	Encryption string `json:"encryption"` // "none", "starttls", "ssl_tls"
}

// EmailAdapter delivers notifications via SMTP using the go-mail library.
type EmailAdapter struct {
	config  EmailConfig
	enabled bool
}

// NewEmailAdapter creates an EmailAdapter. Missing SMTP configuration is not
// an error: the adapter comes up disabled and skips every send, so
// notification flows keep working in environments without mail credentials.
func NewEmailAdapter(config EmailConfig, log *slog.Logger) *EmailAdapter {
	enabled := config.Host != "" && config.FromAddr != ""
	if !enabled {
		log.Info("email channel disabled, SMTP configuration missing")
	}
	return &EmailAdapter{config: config, enabled: enabled}
}

// Channel returns ChannelEmail.
func (a *EmailAdapter) Channel() Channel { return ChannelEmail }

// Enabled reports whether SMTP configuration was present at construction.
func (a *EmailAdapter) Enabled() bool { return a.enabled }

// Send delivers msg to the recipient's email address over SMTP.
func (a *EmailAdapter) Send(ctx context.Context, rcpt Recipient, msg Message) Outcome {
	if !a.enabled {
		return Skipped(ChannelEmail)
	}
	if rcpt.Email == "" {
		return Failed(ChannelEmail, "recipient has no email address")
	}

	m := mail.NewMsg()
	if err := m.From(a.config.FromAddr); err != nil {
		return Failed(ChannelEmail, fmt.Sprintf("invalid from address: %v", err))
	}
	if err := m.To(rcpt.Email); err != nil {
		return Failed(ChannelEmail, fmt.Sprintf("invalid recipient %q: %v", rcpt.Email, err))
	}

	m.Subject(msg.Subject)
	m.SetMessageID()

	// Plain-text fallback for clients that don't render HTML.
	m.SetBodyString(mail.TypeTextPlain, msg.Body)

	// Rich HTML email using the branded template.
	if html, err := buildEmailHTML(msg.Subject, msg.Body); err == nil {
		m.AddAlternativeString(mail.TypeTextHTML, html)
	}

	c, err := mail.NewClient(a.config.Host,
		mail.WithPort(a.config.Port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(a.config.Username),
		mail.WithPassword(a.config.Password),
		mail.WithTLSPolicy(tlsPolicyFromEncryption(a.config.Encryption)),
	)
	if err != nil {
		return Failed(ChannelEmail, fmt.Sprintf("creating mail client: %v", err))
	}

	if err := c.DialAndSendWithContext(ctx, m); err != nil {
		return Failed(ChannelEmail, fmt.Sprintf("smtp send: %v", err))
	}
	// SMTP yields no queryable message id; the envelope Message-ID header is
	// the closest thing to a provider reference.
	return Sent(ChannelEmail, m.GetMessageID())
}

// tlsPolicyFromEncryption converts the encryption string to a go-mail TLSPolicy.
func tlsPolicyFromEncryption(enc string) mail.TLSPolicy {
	switch enc {
	case "ssl_tls":
		return mail.TLSMandatory
	case "starttls":
		return mail.TLSOpportunistic
	default:
		return mail.NoTLS
	}
}
