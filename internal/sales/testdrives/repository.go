package testdrives

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/driveline-dms/driveline/internal/platform/db"
	"github.com/driveline-dms/driveline/internal/platform/httpx"
	"github.com/driveline-dms/driveline/internal/shared"
)

// Repository persists test drives.
type Repository interface {
	List(ctx context.Context, filter Filter, page shared.ListParams) ([]TestDrive, int, error)
	Get(ctx context.Context, id int64) (*TestDrive, error)
	Create(ctx context.Context, td TestDrive) (*TestDrive, error)
	Update(ctx context.Context, td TestDrive) (*TestDrive, error)
	Delete(ctx context.Context, id int64) (*TestDrive, error)
	// DueBetween returns scheduled drives inside the window, for reminders.
	DueBetween(ctx context.Context, from, to time.Time) ([]TestDrive, error)
}

type pgRepository struct {
	pool *pgxpool.Pool
}

// NewRepository returns a Postgres-backed Repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &pgRepository{pool: pool}
}

const driveColumns = "id, customer_id, vehicle, scheduled_at, status, notes, created_at, updated_at"

func scanDrive(row interface{ Scan(...any) error }) (*TestDrive, error) {
	var td TestDrive
	err := row.Scan(&td.ID, &td.CustomerID, &td.Vehicle, &td.ScheduledAt,
		&td.Status, &td.Notes, &td.CreatedAt, &td.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &td, nil
}

func (r *pgRepository) List(ctx context.Context, filter Filter, page shared.ListParams) ([]TestDrive, int, error) {
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
	if filter.Upcoming {
		conditions = append(conditions, "scheduled_at >= NOW()")
	}
	where := strings.Join(conditions, " AND ")

	var total int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM test_drives WHERE "+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count test drives: %w", err)
	}

	args = append(args, page.Limit, page.Offset)
	rows, err := r.pool.Query(ctx, fmt.Sprintf(
		"SELECT %s FROM test_drives WHERE %s ORDER BY scheduled_at LIMIT $%d OFFSET $%d",
		driveColumns, where, len(args)-1, len(args)), args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list test drives: %w", err)
	}
	defer rows.Close()

	out := make([]TestDrive, 0, page.Limit)
	for rows.Next() {
		td, err := scanDrive(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan test drive: %w", err)
		}
		out = append(out, *td)
	}
	return out, total, rows.Err()
}

func (r *pgRepository) Get(ctx context.Context, id int64) (*TestDrive, error) {
	td, err := scanDrive(r.pool.QueryRow(ctx,
		"SELECT "+driveColumns+" FROM test_drives WHERE id = $1", id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: test drive %d", httpx.ErrNotFound, id)
		}
		return nil, fmt.Errorf("get test drive: %w", err)
	}
	return td, nil
}

func (r *pgRepository) Create(ctx context.Context, td TestDrive) (*TestDrive, error) {
	created, err := scanDrive(r.pool.QueryRow(ctx, `
		INSERT INTO test_drives (customer_id, vehicle, scheduled_at, status, notes)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+driveColumns,
		td.CustomerID, td.Vehicle, td.ScheduledAt, td.Status, td.Notes))
	if err != nil {
		if db.IsForeignKeyViolation(err) {
			return nil, fmt.Errorf("%w: customer %d", httpx.ErrForeignKey, td.CustomerID)
		}
		return nil, fmt.Errorf("create test drive: %w", err)
	}
	return created, nil
}

func (r *pgRepository) Update(ctx context.Context, td TestDrive) (*TestDrive, error) {
	updated, err := scanDrive(r.pool.QueryRow(ctx, `
		UPDATE test_drives
		SET vehicle = $2, scheduled_at = $3, status = $4, notes = $5, updated_at = NOW()
		WHERE id = $1
		RETURNING `+driveColumns,
		td.ID, td.Vehicle, td.ScheduledAt, td.Status, td.Notes))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: test drive %d", httpx.ErrNotFound, td.ID)
		}
		return nil, fmt.Errorf("update test drive: %w", err)
	}
	return updated, nil
}

func (r *pgRepository) Delete(ctx context.Context, id int64) (*TestDrive, error) {
	deleted, err := scanDrive(r.pool.QueryRow(ctx,
		"DELETE FROM test_drives WHERE id = $1 RETURNING "+driveColumns, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: test drive %d", httpx.ErrNotFound, id)
		}
		return nil, fmt.Errorf("delete test drive: %w", err)
	}
	return deleted, nil
}

func (r *pgRepository) DueBetween(ctx context.Context, from, to time.Time) ([]TestDrive, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+driveColumns+` FROM test_drives
		WHERE status = 'scheduled' AND scheduled_at >= $1 AND scheduled_at < $2
		ORDER BY scheduled_at`, from, to)
	if err != nil {
		return nil, fmt.Errorf("due test drives: %w", err)
	}
	defer rows.Close()

	var out []TestDrive
	for rows.Next() {
		td, err := scanDrive(rows)
		if err != nil {
			return nil, fmt.Errorf("scan test drive: %w", err)
		}
		out = append(out, *td)
	}
	return out, rows.Err()
}
