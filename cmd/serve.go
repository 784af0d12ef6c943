package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/eventra/notify/internal/api"
	"github.com/eventra/notify/internal/config"
	"github.com/eventra/notify/internal/eventbus"
	"github.com/eventra/notify/internal/logger"
	"github.com/eventra/notify/internal/notify"
	"github.com/eventra/notify/internal/retention"
	"github.com/eventra/notify/internal/server"
	"github.com/eventra/notify/internal/service"
	"github.com/eventra/notify/internal/storage"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long:  "Start the notification service: REST API, event bridge and retention job.",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().Int("port", 0, "HTTP server port (overrides PORT env var)")
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("port") {
		cfg.Port, _ = cmd.Flags().GetInt("port")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	log := logger.NewSystemLogger(cfg.LogDir(), cfg.SlogLevel(), true)

	db, err := storage.NewSQLiteDB(cfg.DBPath())
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() {
		if cerr := db.Close(); cerr != nil {
			log.Error("failed to close database", "error", cerr)
		}
	}()

	intents := storage.NewSQLiteIntentStore(db)
	inbox := storage.NewSQLiteInboxStore(db)

	dispatcher := notify.NewDispatcher(intents, log, cfg.ChannelTimeout,
		notify.NewEmailAdapter(cfg.EmailConfig(), log),
		notify.NewSMSAdapter(cfg.SMSConfig(), cfg.ChannelTimeout, log),
		notify.NewWebPushAdapter(cfg.WebPushConfig(), log),
		notify.NewInAppAdapter(inbox, cfg.InAppDisabled, log),
	)

	svc := service.NewNotificationService(dispatcher, intents, inbox)

	rules, err := config.LoadRoutingRules(cfg.RoutingFile)
	if err != nil {
		return fmt.Errorf("loading routing rules: %w", err)
	}

	bus := eventbus.New(0, log)
	defer bus.Close()
	bus.Subscribe(service.NewEventBridge(svc, rules, log).Handle)

	janitor, err := retention.New(intents, inbox, cfg.RetentionDays, log)
	if err != nil {
		return fmt.Errorf("creating retention janitor: %w", err)
	}
	if err := janitor.Start(); err != nil {
		return fmt.Errorf("starting retention janitor: %w", err)
	}
	defer janitor.Stop()

	srv := server.New(api.New(svc, log), cfg.Port, log)

	fmt.Fprintf(os.Stderr, "Notification service running on http://localhost:%d\n", cfg.Port)
	fmt.Fprintf(os.Stderr, "  POST /api/notifications          → dispatch a notification\n")
	fmt.Fprintf(os.Stderr, "  GET  /api/notifications          → recent delivery log\n")
	fmt.Fprintf(os.Stderr, "  GET  /api/inbox/{userID}         → in-app inbox\n")
	fmt.Fprintf(os.Stderr, "  GET  /api/channels               → channel status\n")
	fmt.Fprintf(os.Stderr, "  GET  /health, /metrics\n")

	return srv.Run(ctx)
}
