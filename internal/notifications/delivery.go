package notifications

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/driveline-dms/driveline/internal/jobs"
	"github.com/driveline-dms/driveline/internal/platform/httpx"
	"github.com/driveline-dms/driveline/jobs"
)

// NewDeliveryHandler returns the Asynq handler that pushes a stored
// notification to its recipient and marks the row sent. Actual transport is
// a log line for now; the outbox row is the source of truth either way.
func NewDeliveryHandler(repo Repository, logger *slog.Logger, metrics *jobmetrics.Metrics) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		tracker := metrics.Track("notification_deliver")
		var payload jobs.NotificationDeliverPayload
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			_ = tracker.End(err)
			return asynq.SkipRetry
		}
		logger.Info("deliver notification",
			slog.Int64("notification_id", payload.NotificationID),
			slog.String("recipient", payload.Recipient),
			slog.String("subject", payload.Subject))
		err := repo.MarkSent(ctx, payload.NotificationID)
		if errors.Is(err, httpx.ErrNotFound) {
			// Already sent or deleted; retrying cannot help.
			_ = tracker.End(nil)
			return nil
		}
		if err != nil {
			retried, _ := asynq.GetRetryCount(ctx)
			maxRetry, _ := asynq.GetMaxRetry(ctx)
			if retried >= maxRetry {
				if markErr := repo.MarkFailed(ctx, payload.NotificationID); markErr != nil {
					logger.Error("mark notification failed",
						slog.Any("error", markErr),
						slog.Int64("notification_id", payload.NotificationID))
				}
			}
		}
		return tracker.End(err)
	}
}
