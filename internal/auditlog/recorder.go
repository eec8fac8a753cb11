package auditlog

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Recorder writes records into audit_logs. Services call it after every
// successful mutation; a failed write is logged but never fails the mutation
// it describes.
type Recorder struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// NewRecorder returns a new Recorder.
func NewRecorder(pool *pgxpool.Pool, logger *slog.Logger) *Recorder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Recorder{pool: pool, logger: logger}
}

// Record persists the log entry.
func (r *Recorder) Record(ctx context.Context, entry Entry) error {
	if r == nil || r.pool == nil {
		return errors.New("auditlog: recorder not initialised")
	}
	if entry.Action == "" || entry.Entity == "" || entry.EntityID == "" {
		return errors.New("auditlog: entry requires action/entity/entity_id")
	}
	metaJSON, err := json.Marshal(entry.Meta)
	if err != nil {
		return err
	}
	_, err = r.pool.Exec(ctx, `
		INSERT INTO audit_logs (actor, action, entity, entity_id, meta, occurred_at)
		VALUES ($1, $2, $3, $4, $5, COALESCE(NULLIF($6, '0001-01-01T00:00:00Z'::timestamptz), NOW()))`,
		entry.Actor, entry.Action, entry.Entity, entry.EntityID, metaJSON, entry.OccurredAt)
	return err
}

// Observe records an entry and logs instead of propagating failures. A nil
// receiver is a no-op so services can run without a trail in tests.
func (r *Recorder) Observe(ctx context.Context, entry Entry) {
	if r == nil || r.pool == nil {
		return
	}
	if err := r.Record(ctx, entry); err != nil {
		r.logger.Error("audit record", slog.Any("error", err),
			slog.String("entity", entry.Entity),
			slog.String("action", entry.Action))
	}
}
