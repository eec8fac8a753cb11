package payments

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

// Repository persists payments.
type Repository interface {
	List(ctx context.Context, filter Filter, page shared.ListParams) ([]Payment, int, error)
	Get(ctx context.Context, id int64) (*Payment, error)
	Create(ctx context.Context, p Payment) (*Payment, error)
	Update(ctx context.Context, p Payment) (*Payment, error)
	Delete(ctx context.Context, id int64) (*Payment, error)
}

type pgRepository struct {
	pool *pgxpool.Pool
}

// NewRepository returns a Postgres-backed Repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &pgRepository{pool: pool}
}

const paymentColumns = "id, customer_id, amount, currency, method, reference, status, notes, created_at, updated_at"

func scanPayment(row interface{ Scan(...any) error }) (*Payment, error) {
	var p Payment
	err := row.Scan(&p.ID, &p.CustomerID, &p.Amount, &p.Currency, &p.Method,
		&p.Reference, &p.Status, &p.Notes, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *pgRepository) List(ctx context.Context, filter Filter, page shared.ListParams) ([]Payment, int, error) {
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
	if filter.Method != "" {
		args = append(args, filter.Method)
		conditions = append(conditions, fmt.Sprintf("method = $%d", len(args)))
	}
	where := strings.Join(conditions, " AND ")

	var total int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM payments WHERE "+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count payments: %w", err)
	}

	args = append(args, page.Limit, page.Offset)
	rows, err := r.pool.Query(ctx, fmt.Sprintf(
		"SELECT %s FROM payments WHERE %s ORDER BY id DESC LIMIT $%d OFFSET $%d",
		paymentColumns, where, len(args)-1, len(args)), args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list payments: %w", err)
	}
	defer rows.Close()

	out := make([]Payment, 0, page.Limit)
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan payment: %w", err)
		}
		out = append(out, *p)
	}
	return out, total, rows.Err()
}

func (r *pgRepository) Get(ctx context.Context, id int64) (*Payment, error) {
	p, err := scanPayment(r.pool.QueryRow(ctx,
		"SELECT "+paymentColumns+" FROM payments WHERE id = $1", id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: payment %d", httpx.ErrNotFound, id)
		}
		return nil, fmt.Errorf("get payment: %w", err)
	}
	return p, nil
}

func (r *pgRepository) Create(ctx context.Context, p Payment) (*Payment, error) {
	created, err := scanPayment(r.pool.QueryRow(ctx, `
		INSERT INTO payments (customer_id, amount, currency, method, reference, status, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+paymentColumns,
		p.CustomerID, p.Amount, p.Currency, p.Method, p.Reference, p.Status, p.Notes))
	if err != nil {
		if db.IsUniqueViolation(err) {
			return nil, fmt.Errorf("%w: payment reference %s", httpx.ErrDuplicate, p.Reference)
		}
		if db.IsForeignKeyViolation(err) {
			return nil, fmt.Errorf("%w: customer %d", httpx.ErrForeignKey, p.CustomerID)
		}
		return nil, fmt.Errorf("create payment: %w", err)
	}
	return created, nil
}

func (r *pgRepository) Update(ctx context.Context, p Payment) (*Payment, error) {
	updated, err := scanPayment(r.pool.QueryRow(ctx, `
		UPDATE payments SET status = $2, notes = $3, updated_at = NOW()
		WHERE id = $1
		RETURNING `+paymentColumns,
		p.ID, p.Status, p.Notes))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: payment %d", httpx.ErrNotFound, p.ID)
		}
		return nil, fmt.Errorf("update payment: %w", err)
	}
	return updated, nil
}

func (r *pgRepository) Delete(ctx context.Context, id int64) (*Payment, error) {
	deleted, err := scanPayment(r.pool.QueryRow(ctx,
		"DELETE FROM payments WHERE id = $1 RETURNING "+paymentColumns, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: payment %d", httpx.ErrNotFound, id)
		}
		return nil, fmt.Errorf("delete payment: %w", err)
	}
	return deleted, nil
}
