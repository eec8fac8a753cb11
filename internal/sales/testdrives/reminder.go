package testdrives

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/driveline-dms/driveline/internal/jobs"
)

// Notifier pushes reminder messages. The notifications module implements it.
type Notifier interface {
	Notify(ctx context.Context, recipient, subject, body string) error
}

// NewReminderHandler returns the Asynq handler behind the daily reminder
// cron. It scans the next 24 hours of scheduled drives and notifies each
// customer once per run.
func NewReminderHandler(service *Service, notifier Notifier, logger *slog.Logger, metrics *jobmetrics.Metrics) asynq.HandlerFunc {
	return func(ctx context.Context, _ *asynq.Task) error {
		tracker := metrics.Track("testdrive_reminders")
		now := service.now()
		due, err := service.DueBetween(ctx, now, now.Add(24*time.Hour))
		if err != nil {
			return tracker.End(err)
		}
		for _, td := range due {
			body := fmt.Sprintf("Reminder: your test drive of %s is scheduled for %s.",
				td.Vehicle, td.ScheduledAt.Format(time.RFC1123))
			if err := notifier.Notify(ctx, strconv.FormatInt(td.CustomerID, 10), "Upcoming test drive", body); err != nil {
				logger.Error("test drive reminder",
					slog.Any("error", err),
					slog.Int64("test_drive_id", td.ID))
			}
		}
		logger.Info("test drive reminders dispatched", slog.Int("count", len(due)))
		return tracker.End(nil)
	}
}
