package notifications

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/driveline-dms/driveline/internal/platform/httpx"
	"github.com/driveline-dms/driveline/internal/shared"
)

// Repository persists notifications.
type Repository interface {
	List(ctx context.Context, filter Filter, page shared.ListParams) ([]Notification, int, error)
	Get(ctx context.Context, id int64) (*Notification, error)
	Create(ctx context.Context, n Notification) (*Notification, error)
	Update(ctx context.Context, n Notification) (*Notification, error)
	Delete(ctx context.Context, id int64) (*Notification, error)
	MarkSent(ctx context.Context, id int64) error
	MarkFailed(ctx context.Context, id int64) error
}

type pgRepository struct {
	pool *pgxpool.Pool
}

// NewRepository returns a Postgres-backed Repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &pgRepository{pool: pool}
}

const notificationColumns = "id, recipient, subject, body, channel, status, sent_at, created_at, updated_at"

func scanNotification(row interface{ Scan(...any) error }) (*Notification, error) {
	var n Notification
	err := row.Scan(&n.ID, &n.Recipient, &n.Subject, &n.Body, &n.Channel,
		&n.Status, &n.SentAt, &n.CreatedAt, &n.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &n, nil
}

func (r *pgRepository) List(ctx context.Context, filter Filter, page shared.ListParams) ([]Notification, int, error) {
	conditions := []string{"1=1"}
	args := []any{}
	if filter.Recipient != "" {
		args = append(args, filter.Recipient)
		conditions = append(conditions, fmt.Sprintf("recipient = $%d", len(args)))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)))
	}
	where := strings.Join(conditions, " AND ")

	var total int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM notifications WHERE "+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count notifications: %w", err)
	}

	args = append(args, page.Limit, page.Offset)
	rows, err := r.pool.Query(ctx, fmt.Sprintf(
		"SELECT %s FROM notifications WHERE %s ORDER BY id DESC LIMIT $%d OFFSET $%d",
		notificationColumns, where, len(args)-1, len(args)), args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list notifications: %w", err)
	}
	defer rows.Close()

	out := make([]Notification, 0, page.Limit)
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan notification: %w", err)
		}
		out = append(out, *n)
	}
	return out, total, rows.Err()
}

func (r *pgRepository) Get(ctx context.Context, id int64) (*Notification, error) {
	n, err := scanNotification(r.pool.QueryRow(ctx,
		"SELECT "+notificationColumns+" FROM notifications WHERE id = $1", id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: notification %d", httpx.ErrNotFound, id)
		}
		return nil, fmt.Errorf("get notification: %w", err)
	}
	return n, nil
}

func (r *pgRepository) Create(ctx context.Context, n Notification) (*Notification, error) {
	created, err := scanNotification(r.pool.QueryRow(ctx, `
		INSERT INTO notifications (recipient, subject, body, channel, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+notificationColumns,
		n.Recipient, n.Subject, n.Body, n.Channel, n.Status))
	if err != nil {
		return nil, fmt.Errorf("create notification: %w", err)
	}
	return created, nil
}

func (r *pgRepository) Update(ctx context.Context, n Notification) (*Notification, error) {
	updated, err := scanNotification(r.pool.QueryRow(ctx, `
		UPDATE notifications
		SET subject = $2, body = $3, channel = $4, status = $5, updated_at = NOW()
		WHERE id = $1
		RETURNING `+notificationColumns,
		n.ID, n.Subject, n.Body, n.Channel, n.Status))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: notification %d", httpx.ErrNotFound, n.ID)
		}
		return nil, fmt.Errorf("update notification: %w", err)
	}
	return updated, nil
}

func (r *pgRepository) Delete(ctx context.Context, id int64) (*Notification, error) {
	deleted, err := scanNotification(r.pool.QueryRow(ctx,
		"DELETE FROM notifications WHERE id = $1 RETURNING "+notificationColumns, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: notification %d", httpx.ErrNotFound, id)
		}
		return nil, fmt.Errorf("delete notification: %w", err)
	}
	return deleted, nil
}

func (r *pgRepository) MarkSent(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE notifications SET status = 'sent', sent_at = NOW(), updated_at = NOW()
		WHERE id = $1 AND status = 'pending'`, id)
	if err != nil {
		return fmt.Errorf("mark notification sent: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: pending notification %d", httpx.ErrNotFound, id)
	}
	return nil
}

func (r *pgRepository) MarkFailed(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE notifications SET status = 'failed', updated_at = NOW()
		WHERE id = $1 AND status = 'pending'`, id)
	if err != nil {
		return fmt.Errorf("mark notification failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: pending notification %d", httpx.ErrNotFound, id)
	}
	return nil
}
