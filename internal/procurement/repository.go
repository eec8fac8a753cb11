package procurement

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

// Repository persists purchase orders.
type Repository interface {
	List(ctx context.Context, filter Filter, page shared.ListParams) ([]PurchaseOrder, int, error)
	Get(ctx context.Context, id int64) (*PurchaseOrder, error)
	Create(ctx context.Context, po PurchaseOrder) (*PurchaseOrder, error)
	Update(ctx context.Context, po PurchaseOrder) (*PurchaseOrder, error)
	Delete(ctx context.Context, id int64) (*PurchaseOrder, error)
}

type pgRepository struct {
	pool *pgxpool.Pool
}

// NewRepository returns a Postgres-backed Repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &pgRepository{pool: pool}
}

const orderColumns = "id, number, vendor_id, description, quantity, unit_cost, total_cost, status, created_at, updated_at"

func scanOrder(row interface{ Scan(...any) error }) (*PurchaseOrder, error) {
	var po PurchaseOrder
	err := row.Scan(&po.ID, &po.Number, &po.VendorID, &po.Description, &po.Quantity,
		&po.UnitCost, &po.TotalCost, &po.Status, &po.CreatedAt, &po.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &po, nil
}

func (r *pgRepository) List(ctx context.Context, filter Filter, page shared.ListParams) ([]PurchaseOrder, int, error) {
	conditions := []string{"1=1"}
	args := []any{}
	if filter.VendorID > 0 {
		args = append(args, filter.VendorID)
		conditions = append(conditions, fmt.Sprintf("vendor_id = $%d", len(args)))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)))
	}
	where := strings.Join(conditions, " AND ")

	var total int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM purchase_orders WHERE "+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count purchase orders: %w", err)
	}

	args = append(args, page.Limit, page.Offset)
	rows, err := r.pool.Query(ctx, fmt.Sprintf(
		"SELECT %s FROM purchase_orders WHERE %s ORDER BY id DESC LIMIT $%d OFFSET $%d",
		orderColumns, where, len(args)-1, len(args)), args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list purchase orders: %w", err)
	}
	defer rows.Close()

	out := make([]PurchaseOrder, 0, page.Limit)
	for rows.Next() {
		po, err := scanOrder(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan purchase order: %w", err)
		}
		out = append(out, *po)
	}
	return out, total, rows.Err()
}

func (r *pgRepository) Get(ctx context.Context, id int64) (*PurchaseOrder, error) {
	po, err := scanOrder(r.pool.QueryRow(ctx,
		"SELECT "+orderColumns+" FROM purchase_orders WHERE id = $1", id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: purchase order %d", httpx.ErrNotFound, id)
		}
		return nil, fmt.Errorf("get purchase order: %w", err)
	}
	return po, nil
}

func (r *pgRepository) Create(ctx context.Context, po PurchaseOrder) (*PurchaseOrder, error) {
	created, err := scanOrder(r.pool.QueryRow(ctx, `
		INSERT INTO purchase_orders (number, vendor_id, description, quantity, unit_cost, total_cost, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+orderColumns,
		po.Number, po.VendorID, po.Description, po.Quantity, po.UnitCost, po.TotalCost, po.Status))
	if err != nil {
		if db.IsUniqueViolation(err) {
			return nil, fmt.Errorf("%w: purchase order number %s", httpx.ErrDuplicate, po.Number)
		}
		if db.IsForeignKeyViolation(err) {
			return nil, fmt.Errorf("%w: vendor %d", httpx.ErrForeignKey, po.VendorID)
		}
		return nil, fmt.Errorf("create purchase order: %w", err)
	}
	return created, nil
}

func (r *pgRepository) Update(ctx context.Context, po PurchaseOrder) (*PurchaseOrder, error) {
	updated, err := scanOrder(r.pool.QueryRow(ctx, `
		UPDATE purchase_orders
		SET description = $2, quantity = $3, unit_cost = $4, total_cost = $5, status = $6, updated_at = NOW()
		WHERE id = $1
		RETURNING `+orderColumns,
		po.ID, po.Description, po.Quantity, po.UnitCost, po.TotalCost, po.Status))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: purchase order %d", httpx.ErrNotFound, po.ID)
		}
		return nil, fmt.Errorf("update purchase order: %w", err)
	}
	return updated, nil
}

func (r *pgRepository) Delete(ctx context.Context, id int64) (*PurchaseOrder, error) {
	deleted, err := scanOrder(r.pool.QueryRow(ctx,
		"DELETE FROM purchase_orders WHERE id = $1 RETURNING "+orderColumns, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: purchase order %d", httpx.ErrNotFound, id)
		}
		return nil, fmt.Errorf("delete purchase order: %w", err)
	}
	return deleted, nil
}
