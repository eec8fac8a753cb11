package bookings

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

// Repository persists bookings.
type Repository interface {
	List(ctx context.Context, filter Filter, page shared.ListParams) ([]Booking, int, error)
	Get(ctx context.Context, id int64) (*Booking, error)
	Create(ctx context.Context, b Booking) (*Booking, error)
	Update(ctx context.Context, b Booking) (*Booking, error)
	Delete(ctx context.Context, id int64) (*Booking, error)
}

type pgRepository struct {
	pool *pgxpool.Pool
}

// NewRepository returns a Postgres-backed Repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &pgRepository{pool: pool}
}

const bookingColumns = "id, customer_id, vehicle, vin, price, deposit, status, created_at, updated_at"

func scanBooking(row interface{ Scan(...any) error }) (*Booking, error) {
	var b Booking
	err := row.Scan(&b.ID, &b.CustomerID, &b.Vehicle, &b.VIN, &b.Price,
		&b.Deposit, &b.Status, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *pgRepository) List(ctx context.Context, filter Filter, page shared.ListParams) ([]Booking, int, error) {
	conditions := []string{"1=1"}
	args := []any{}
	if filter.CustomerID > 0 {
		args = append(args, filter.CustomerID)
		conditions = append(conditions, fmt.Sprintf("customer_id = $%d", len(args)))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)))
	}
	where := strings.Join(conditions, " AND ")

	var total int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM bookings WHERE "+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count bookings: %w", err)
	}

	args = append(args, page.Limit, page.Offset)
	rows, err := r.pool.Query(ctx, fmt.Sprintf(
		"SELECT %s FROM bookings WHERE %s ORDER BY id DESC LIMIT $%d OFFSET $%d",
		bookingColumns, where, len(args)-1, len(args)), args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list bookings: %w", err)
	}
	defer rows.Close()

	out := make([]Booking, 0, page.Limit)
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan booking: %w", err)
		}
		out = append(out, *b)
	}
	return out, total, rows.Err()
}

func (r *pgRepository) Get(ctx context.Context, id int64) (*Booking, error) {
	b, err := scanBooking(r.pool.QueryRow(ctx,
		"SELECT "+bookingColumns+" FROM bookings WHERE id = $1", id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: booking %d", httpx.ErrNotFound, id)
		}
		return nil, fmt.Errorf("get booking: %w", err)
	}
	return b, nil
}

func (r *pgRepository) Create(ctx context.Context, b Booking) (*Booking, error) {
	created, err := scanBooking(r.pool.QueryRow(ctx, `
		INSERT INTO bookings (customer_id, vehicle, vin, price, deposit, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+bookingColumns,
		b.CustomerID, b.Vehicle, b.VIN, b.Price, b.Deposit, b.Status))
	if err != nil {
		if db.IsForeignKeyViolation(err) {
			return nil, fmt.Errorf("%w: customer %d", httpx.ErrForeignKey, b.CustomerID)
		}
		return nil, fmt.Errorf("create booking: %w", err)
	}
	return created, nil
}

func (r *pgRepository) Update(ctx context.Context, b Booking) (*Booking, error) {
	updated, err := scanBooking(r.pool.QueryRow(ctx, `
		UPDATE bookings
		SET vehicle = $2, vin = $3, price = $4, deposit = $5, status = $6, updated_at = NOW()
		WHERE id = $1
		RETURNING `+bookingColumns,
		b.ID, b.Vehicle, b.VIN, b.Price, b.Deposit, b.Status))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: booking %d", httpx.ErrNotFound, b.ID)
		}
		return nil, fmt.Errorf("update booking: %w", err)
	}
	return updated, nil
}

func (r *pgRepository) Delete(ctx context.Context, id int64) (*Booking, error) {
	deleted, err := scanBooking(r.pool.QueryRow(ctx,
		"DELETE FROM bookings WHERE id = $1 RETURNING "+bookingColumns, id))
	if err != nil {
		if db.IsForeignKeyViolation(err) {
			return nil, fmt.Errorf("%w: booking %d has a delivery", httpx.ErrForeignKey, id)
		}
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: booking %d", httpx.ErrNotFound, id)
		}
		return nil, fmt.Errorf("delete booking: %w", err)
	}
	return deleted, nil
}
