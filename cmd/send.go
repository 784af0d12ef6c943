package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/eventra/notify/internal/config"
	"github.com/eventra/notify/internal/logger"
	"github.com/eventra/notify/internal/notify"
	"github.com/eventra/notify/internal/storage"
)

var sendCmd = &cobra.Command{
	Use:   "send",
	Short: "Dispatch a single notification from the command line",
	Long: `Dispatch one notification and print the delivery summary as JSON.

Useful for verifying channel credentials:

  notify send --user u123 --email a@b.c --channels email,in_app \
      --subject "Test" --body "Hello from notify"`,
	RunE: runSend,
}

func init() {
	sendCmd.Flags().String("user", "", "target user id (required)")
	sendCmd.Flags().String("email", "", "recipient email address")
	sendCmd.Flags().String("phone", "", "recipient phone number")
	sendCmd.Flags().String("channels", "in_app", "comma-separated channels (email,sms,push,in_app)")
	sendCmd.Flags().String("kind", string(notify.KindInformational), "notification kind")
	sendCmd.Flags().String("subject", "", "subject line")
	sendCmd.Flags().String("body", "", "body text")
	_ = sendCmd.MarkFlagRequired("user")
}

func runSend(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log := logger.NewSystemLogger(cfg.LogDir(), cfg.SlogLevel(), false)

	db, err := storage.NewSQLiteDB(cfg.DBPath())
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() { _ = db.Close() }()

	intents := storage.NewSQLiteIntentStore(db)
	inbox := storage.NewSQLiteInboxStore(db)

	dispatcher := notify.NewDispatcher(intents, log, cfg.ChannelTimeout,
		notify.NewEmailAdapter(cfg.EmailConfig(), log),
		notify.NewSMSAdapter(cfg.SMSConfig(), cfg.ChannelTimeout, log),
		notify.NewWebPushAdapter(cfg.WebPushConfig(), log),
		notify.NewInAppAdapter(inbox, cfg.InAppDisabled, log),
	)

	userID, _ := cmd.Flags().GetString("user")
	email, _ := cmd.Flags().GetString("email")
	phone, _ := cmd.Flags().GetString("phone")
	channelList, _ := cmd.Flags().GetString("channels")
	kind, _ := cmd.Flags().GetString("kind")
	subject, _ := cmd.Flags().GetString("subject")
	body, _ := cmd.Flags().GetString("body")

	channels, err := notify.ParseChannels(strings.Split(channelList, ","))
	if err != nil {
		return err
	}

	summary, err := dispatcher.Send(cmd.Context(), notify.Recipient{
		UserID: userID,
		Email:  email,
		Phone:  phone,
	}, notify.Request{
		Kind:     notify.Kind(kind),
		Subject:  subject,
		Body:     body,
		Channels: channels,
	})
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(summary)
}
