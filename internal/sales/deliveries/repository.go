package deliveries

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/driveline-dms/driveline/internal/platform/db"
	"github.com/driveline-dms/driveline/internal/platform/httpx"
	"github.com/driveline-dms/driveline/internal/shared"
)

// Repository persists deliveries.
type Repository interface {
	List(ctx context.Context, filter Filter, page shared.ListParams) ([]Delivery, int, error)
	Get(ctx context.Context, id int64) (*Delivery, error)
	Create(ctx context.Context, d Delivery) (*Delivery, error)
	Update(ctx context.Context, d Delivery) (*Delivery, error)
	Delete(ctx context.Context, id int64) (*Delivery, error)
}

type pgRepository struct {
	pool *pgxpool.Pool
}

// NewRepository returns a Postgres-backed Repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &pgRepository{pool: pool}
}

const deliveryColumns = "id, booking_id, scheduled_at, address, status, notes, created_at, updated_at"

func scanDelivery(row interface{ Scan(...any) error }) (*Delivery, error) {
	var d Delivery
	err := row.Scan(&d.ID, &d.BookingID, &d.ScheduledAt, &d.Address,
		&d.Status, &d.Notes, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *pgRepository) List(ctx context.Context, filter Filter, page shared.ListParams) ([]Delivery, int, error) {
	conditions := []string{"1=1"}
	args := []any{}
	if filter.BookingID > 0 {
		args = append(args, filter.BookingID)
		conditions = append(conditions, fmt.Sprintf("booking_id = $%d", len(args)))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)))
	}
	where := strings.Join(conditions, " AND ")

	var total int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM deliveries WHERE "+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count deliveries: %w", err)
	}

	args = append(args, page.Limit, page.Offset)
	rows, err := r.pool.Query(ctx, fmt.Sprintf(
		"SELECT %s FROM deliveries WHERE %s ORDER BY scheduled_at LIMIT $%d OFFSET $%d",
		deliveryColumns, where, len(args)-1, len(args)), args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list deliveries: %w", err)
	}
	defer rows.Close()

	out := make([]Delivery, 0, page.Limit)
	for rows.Next() {
		d, err := scanDelivery(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan delivery: %w", err)
		}
		out = append(out, *d)
	}
	return out, total, rows.Err()
}

func (r *pgRepository) Get(ctx context.Context, id int64) (*Delivery, error) {
	d, err := scanDelivery(r.pool.QueryRow(ctx,
		"SELECT "+deliveryColumns+" FROM deliveries WHERE id = $1", id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: delivery %d", httpx.ErrNotFound, id)
		}
		return nil, fmt.Errorf("get delivery: %w", err)
	}
	return d, nil
}

func (r *pgRepository) Create(ctx context.Context, d Delivery) (*Delivery, error) {
	created, err := scanDelivery(r.pool.QueryRow(ctx, `
		INSERT INTO deliveries (booking_id, scheduled_at, address, status, notes)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+deliveryColumns,
		d.BookingID, d.ScheduledAt, d.Address, d.Status, d.Notes))
	if err != nil {
		if db.IsUniqueViolation(err) {
			return nil, fmt.Errorf("%w: booking %d already has a delivery", httpx.ErrDuplicate, d.BookingID)
		}
		if db.IsForeignKeyViolation(err) {
			return nil, fmt.Errorf("%w: booking %d", httpx.ErrForeignKey, d.BookingID)
		}
		return nil, fmt.Errorf("create delivery: %w", err)
	}
	return created, nil
}

func (r *pgRepository) Update(ctx context.Context, d Delivery) (*Delivery, error) {
	updated, err := scanDelivery(r.pool.QueryRow(ctx, `
		UPDATE deliveries
		SET scheduled_at = $2, address = $3, status = $4, notes = $5, updated_at = NOW()
		WHERE id = $1
		RETURNING `+deliveryColumns,
		d.ID, d.ScheduledAt, d.Address, d.Status, d.Notes))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: delivery %d", httpx.ErrNotFound, d.ID)
		}
		return nil, fmt.Errorf("update delivery: %w", err)
	}
	return updated, nil
}

func (r *pgRepository) Delete(ctx context.Context, id int64) (*Delivery, error) {
	deleted, err := scanDelivery(r.pool.QueryRow(ctx,
		"DELETE FROM deliveries WHERE id = $1 RETURNING "+deliveryColumns, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: delivery %d", httpx.ErrNotFound, id)
		}
		return nil, fmt.Errorf("delete delivery: %w", err)
	}
	return deleted, nil
}
