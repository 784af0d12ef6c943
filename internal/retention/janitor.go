// Package retention runs the scheduled cleanup of old notification data:
// terminal intents past the retention window and inbox entries that have
// been read.
package retention

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"

	"github.com/eventra/notify/internal/storage"
)

// purgeTimeout bounds one cleanup run.
const purgeTimeout = time.Minute

// Janitor owns the daily purge job.
type Janitor struct {
	cron    gocron.Scheduler
	intents storage.IntentStore
	inbox   storage.InboxStore
	window  time.Duration
	log     *slog.Logger
}

// New creates a Janitor that removes data older than retentionDays.
func New(intents storage.IntentStore, inbox storage.InboxStore, retentionDays int, log *slog.Logger) (*Janitor, error) {
	if retentionDays <= 0 {
		retentionDays = 90
	}
	cron, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("creating scheduler: %w", err)
	}
	return &Janitor{
		cron:    cron,
		intents: intents,
		inbox:   inbox,
		window:  time.Duration(retentionDays) * 24 * time.Hour,
		log:     log,
	}, nil
}

// Start schedules the daily purge and runs it once immediately so a
// long-stopped instance catches up on startup.
func (j *Janitor) Start() error {
	_, err := j.cron.NewJob(
		gocron.DailyJob(1, gocron.NewAtTimes(gocron.NewAtTime(3, 0, 0))),
		gocron.NewTask(j.purge),
		gocron.WithStartAt(gocron.WithStartImmediately()),
	)
	if err != nil {
		return fmt.Errorf("scheduling retention job: %w", err)
	}
	j.cron.Start()
	return nil
}

// Stop shuts the scheduler down, waiting for a running purge to finish.
func (j *Janitor) Stop() {
	if err := j.cron.Shutdown(); err != nil {
		j.log.Error("failed to shut down retention scheduler", "error", err)
	}
}

// purge is one cleanup run.
func (j *Janitor) purge() {
	ctx, cancel := context.WithTimeout(context.Background(), purgeTimeout)
	defer cancel()

	cutoff := time.Now().UTC().Add(-j.window)

	intents, err := j.intents.PurgeIntents(ctx, cutoff)
	if err != nil {
		j.log.Error("failed to purge intents", "error", err)
	}
	inbox, err := j.inbox.PurgeRead(ctx, cutoff)
	if err != nil {
		j.log.Error("failed to purge inbox entries", "error", err)
	}

	if intents > 0 || inbox > 0 {
		j.log.Info("retention purge complete",
			"cutoff", cutoff, "intents_removed", intents, "inbox_removed", inbox)
	}
}
