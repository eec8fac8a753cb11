package vendors

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

// Repository persists vendors.
type Repository interface {
	List(ctx context.Context, filter Filter, page shared.ListParams) ([]Vendor, int, error)
	Get(ctx context.Context, id int64) (*Vendor, error)
	Create(ctx context.Context, v Vendor) (*Vendor, error)
	Update(ctx context.Context, v Vendor) (*Vendor, error)
	Delete(ctx context.Context, id int64) (*Vendor, error)
}

type pgRepository struct {
	pool *pgxpool.Pool
}

// NewRepository returns a Postgres-backed Repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &pgRepository{pool: pool}
}

const vendorColumns = "id, code, name, email, phone, status, created_at, updated_at"

func scanVendor(row interface{ Scan(...any) error }) (*Vendor, error) {
	var v Vendor
	err := row.Scan(&v.ID, &v.Code, &v.Name, &v.Email, &v.Phone, &v.Status, &v.CreatedAt, &v.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (r *pgRepository) List(ctx context.Context, filter Filter, page shared.ListParams) ([]Vendor, int, error) {
	conditions := []string{"1=1"}
	args := []any{}
	if filter.Status != "" {
		args = append(args, filter.Status)
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.Query != "" {
		args = append(args, "%"+filter.Query+"%")
		conditions = append(conditions, fmt.Sprintf("(name ILIKE $%d OR code ILIKE $%d)", len(args), len(args)))
	}
	where := strings.Join(conditions, " AND ")

	var total int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM vendors WHERE "+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count vendors: %w", err)
	}

	args = append(args, page.Limit, page.Offset)
	rows, err := r.pool.Query(ctx, fmt.Sprintf(
		"SELECT %s FROM vendors WHERE %s ORDER BY id LIMIT $%d OFFSET $%d",
		vendorColumns, where, len(args)-1, len(args)), args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list vendors: %w", err)
	}
	defer rows.Close()

	out := make([]Vendor, 0, page.Limit)
	for rows.Next() {
		v, err := scanVendor(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan vendor: %w", err)
		}
		out = append(out, *v)
	}
	return out, total, rows.Err()
}

func (r *pgRepository) Get(ctx context.Context, id int64) (*Vendor, error) {
	v, err := scanVendor(r.pool.QueryRow(ctx,
		"SELECT "+vendorColumns+" FROM vendors WHERE id = $1", id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: vendor %d", httpx.ErrNotFound, id)
		}
		return nil, fmt.Errorf("get vendor: %w", err)
	}
	return v, nil
}

func (r *pgRepository) Create(ctx context.Context, v Vendor) (*Vendor, error) {
	created, err := scanVendor(r.pool.QueryRow(ctx, `
		INSERT INTO vendors (code, name, email, phone, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+vendorColumns,
		v.Code, v.Name, v.Email, v.Phone, v.Status))
	if err != nil {
		if db.IsUniqueViolation(err) {
			return nil, fmt.Errorf("%w: vendor code %s", httpx.ErrDuplicate, v.Code)
		}
		return nil, fmt.Errorf("create vendor: %w", err)
	}
	return created, nil
}

func (r *pgRepository) Update(ctx context.Context, v Vendor) (*Vendor, error) {
	updated, err := scanVendor(r.pool.QueryRow(ctx, `
		UPDATE vendors
		SET name = $2, email = $3, phone = $4, status = $5, updated_at = NOW()
		WHERE id = $1
		RETURNING `+vendorColumns,
		v.ID, v.Name, v.Email, v.Phone, v.Status))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: vendor %d", httpx.ErrNotFound, v.ID)
		}
		return nil, fmt.Errorf("update vendor: %w", err)
	}
	return updated, nil
}

func (r *pgRepository) Delete(ctx context.Context, id int64) (*Vendor, error) {
	deleted, err := scanVendor(r.pool.QueryRow(ctx,
		"DELETE FROM vendors WHERE id = $1 RETURNING "+vendorColumns, id))
	if err != nil {
		if db.IsForeignKeyViolation(err) {
			return nil, fmt.Errorf("%w: vendor %d is referenced by purchase orders", httpx.ErrForeignKey, id)
		}
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: vendor %d", httpx.ErrNotFound, id)
		}
		return nil, fmt.Errorf("delete vendor: %w", err)
	}
	return deleted, nil
}
