// Package config loads application configuration from environment variables
// and the optional YAML routing rules file.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/kelseyhightower/envconfig"

	"github.com/eventra/notify/internal/notify"
)

// AppConfig holds all application-level configuration loaded from environment variables.
type AppConfig struct {
	// Port is the HTTP server port. Defaults to 8980.
	Port int `envconfig:"PORT" default:"8980"`

	// DataDir is the root data directory. Defaults to ~/.notify.
	DataDir string `envconfig:"NOTIFY_DATA_DIR"`

	// LogLevel sets the minimum log level (debug, info, warn, error). Defaults to info.
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	// ChannelTimeout bounds each per-channel delivery attempt.
	ChannelTimeout time.Duration `envconfig:"NOTIFY_CHANNEL_TIMEOUT" default:"10s"`

	// RetentionDays is how long delivered intents and read inbox entries are
	// kept before the retention job removes them.
	RetentionDays int `envconfig:"NOTIFY_RETENTION_DAYS" default:"90"`

	// RoutingFile is the YAML file mapping notification kinds to default
	// channels. Defaults to <DataDir>/routing.yaml.
	RoutingFile string `envconfig:"NOTIFY_ROUTING_FILE"`

	// SMTP credentials. The email channel is disabled when host or from
	// address are absent.
	SMTPHost       string `envconfig:"SMTP_HOST"`
	SMTPPort       int    `envconfig:"SMTP_PORT" default:"587"`
	SMTPUsername   string `envconfig:"SMTP_USERNAME"`
	SMTPPassword   string `envconfig:"SMTP_PASSWORD"`
	SMTPFromAddr   string `envconfig:"SMTP_FROM_ADDRESS"`
	SMTPEncryption string `envconfig:"SMTP_ENCRYPTION" default:"starttls"`

	// Twilio credentials. The SMS channel is disabled when any is absent.
	TwilioAccountSID string `envconfig:"TWILIO_ACCOUNT_SID"`
	TwilioAuthToken  string `envconfig:"TWILIO_AUTH_TOKEN"`
	TwilioFromNumber string `envconfig:"TWILIO_FROM_NUMBER"`

	// VAPID key pair. The push channel is disabled when either key is absent.
	VAPIDPublicKey  string `envconfig:"VAPID_PUBLIC_KEY"`
	VAPIDPrivateKey string `envconfig:"VAPID_PRIVATE_KEY"`
	VAPIDSubscriber string `envconfig:"VAPID_SUBSCRIBER"`
	PushTTL         int    `envconfig:"PUSH_TTL"`

	// InAppDisabled turns the in-app channel off explicitly, mainly for tests.
	InAppDisabled bool `envconfig:"NOTIFY_INAPP_DISABLED"`
}

// Load reads AppConfig from environment variables using envconfig.
// DataDir defaults to ~/.notify if not set.
func Load() (*AppConfig, error) {
	var c AppConfig
	if err := envconfig.Process("", &c); err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if c.DataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolving home directory: %w", err)
		}
		c.DataDir = filepath.Join(home, ".notify")
	}
	if c.RoutingFile == "" {
		c.RoutingFile = filepath.Join(c.DataDir, "routing.yaml")
	}
	return &c, nil
}

// SlogLevel converts the LogLevel string to a slog.Level.
// Unknown values default to slog.LevelInfo.
func (c *AppConfig) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// LogDir returns the path to the log directory (~/.notify/logs).
func (c *AppConfig) LogDir() string {
	return filepath.Join(c.DataDir, "logs")
}

// DBPath returns the path to the SQLite database file.
func (c *AppConfig) DBPath() string {
	return filepath.Join(c.DataDir, "notify.db")
}

// EmailConfig builds the email adapter configuration.
func (c *AppConfig) EmailConfig() notify.EmailConfig {
	return notify.EmailConfig{
		Host:       c.SMTPHost,
		Port:       c.SMTPPort,
		Username:   c.SMTPUsername,
		Password:   c.SMTPPassword,
		FromAddr:   c.SMTPFromAddr,
		Encryption: c.SMTPEncryption,
	}
}

// SMSConfig builds the SMS adapter configuration.
func (c *AppConfig) SMSConfig() notify.SMSConfig {
	return notify.SMSConfig{
		AccountSID: c.TwilioAccountSID,
		AuthToken:  c.TwilioAuthToken,
		FromNumber: c.TwilioFromNumber,
	}
}

// WebPushConfig builds the web push adapter configuration.
func (c *AppConfig) WebPushConfig() notify.WebPushConfig {
	return notify.WebPushConfig{
		VAPIDPublicKey:  c.VAPIDPublicKey,
		VAPIDPrivateKey: c.VAPIDPrivateKey,
		Subscriber:      c.VAPIDSubscriber,
		TTL:             c.PushTTL,
	}
}
