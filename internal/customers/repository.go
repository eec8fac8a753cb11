package customers

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

// Repository persists customers and their loyalty accounts.
type Repository interface {
	List(ctx context.Context, filter Filter, page shared.ListParams) ([]Customer, int, error)
	Get(ctx context.Context, id int64) (*Customer, error)
	Create(ctx context.Context, c Customer) (*Customer, error)
	Update(ctx context.Context, c Customer) (*Customer, error)
	Delete(ctx context.Context, id int64) (*Customer, error)
	AdjustLoyalty(ctx context.Context, id int64, delta int, tier *string) (*Customer, error)
}

type pgRepository struct {
	pool *pgxpool.Pool
}

// NewRepository returns a Postgres-backed Repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &pgRepository{pool: pool}
}

const customerSelect = `
	SELECT c.id, c.name, c.email, c.phone, c.address, c.status,
	       l.tier, l.points, c.created_at, c.updated_at
	FROM customers c
	JOIN loyalty_accounts l ON l.customer_id = c.id`

func scanCustomer(row interface{ Scan(...any) error }) (*Customer, error) {
	var (
		c Customer
		l Loyalty
	)
	err := row.Scan(&c.ID, &c.Name, &c.Email, &c.Phone, &c.Address, &c.Status,
		&l.Tier, &l.Points, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	c.Loyalty = &l
	return &c, nil
}

func (r *pgRepository) List(ctx context.Context, filter Filter, page shared.ListParams) ([]Customer, int, error) {
	conditions := []string{"1=1"}
	args := []any{}
	if filter.Status != "" {
		args = append(args, filter.Status)
		conditions = append(conditions, fmt.Sprintf("c.status = $%d", len(args)))
	}
	if filter.Query != "" {
		args = append(args, "%"+filter.Query+"%")
		conditions = append(conditions, fmt.Sprintf("(c.name ILIKE $%d OR c.email ILIKE $%d)", len(args), len(args)))
	}
	where := strings.Join(conditions, " AND ")

	var total int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM customers c WHERE "+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count customers: %w", err)
	}

	args = append(args, page.Limit, page.Offset)
	rows, err := r.pool.Query(ctx, fmt.Sprintf(
		"%s WHERE %s ORDER BY c.id LIMIT $%d OFFSET $%d",
		customerSelect, where, len(args)-1, len(args)), args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list customers: %w", err)
	}
	defer rows.Close()

	out := make([]Customer, 0, page.Limit)
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan customer: %w", err)
		}
		out = append(out, *c)
	}
	return out, total, rows.Err()
}

func (r *pgRepository) Get(ctx context.Context, id int64) (*Customer, error) {
	c, err := scanCustomer(r.pool.QueryRow(ctx, customerSelect+" WHERE c.id = $1", id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: customer %d", httpx.ErrNotFound, id)
		}
		return nil, fmt.Errorf("get customer: %w", err)
	}
	return c, nil
}

func (r *pgRepository) Create(ctx context.Context, c Customer) (*Customer, error) {
	var id int64
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, `
			INSERT INTO customers (name, email, phone, address, status)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id`,
			c.Name, c.Email, c.Phone, c.Address, c.Status).Scan(&id)
		if err != nil {
			return err
		}
		_, err = tx.Exec(ctx, `
			INSERT INTO loyalty_accounts (customer_id, tier, points)
			VALUES ($1, 'bronze', 0)`, id)
		return err
	})
	if err != nil {
		if db.IsUniqueViolation(err) {
			return nil, fmt.Errorf("%w: customer email %s", httpx.ErrDuplicate, c.Email)
		}
		return nil, fmt.Errorf("create customer: %w", err)
	}
	return r.Get(ctx, id)
}

func (r *pgRepository) Update(ctx context.Context, c Customer) (*Customer, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE customers
		SET name = $2, email = $3, phone = $4, address = $5, status = $6, updated_at = NOW()
		WHERE id = $1`,
		c.ID, c.Name, c.Email, c.Phone, c.Address, c.Status)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return nil, fmt.Errorf("%w: customer email %s", httpx.ErrDuplicate, c.Email)
		}
		return nil, fmt.Errorf("update customer: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, fmt.Errorf("%w: customer %d", httpx.ErrNotFound, c.ID)
	}
	return r.Get(ctx, c.ID)
}

func (r *pgRepository) Delete(ctx context.Context, id int64) (*Customer, error) {
	var deleted *Customer
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		var err error
		deleted, err = scanCustomer(tx.QueryRow(ctx, customerSelect+" WHERE c.id = $1", id))
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return fmt.Errorf("%w: customer %d", httpx.ErrNotFound, id)
			}
			return fmt.Errorf("get customer: %w", err)
		}
		if _, err := tx.Exec(ctx, "DELETE FROM loyalty_accounts WHERE customer_id = $1", id); err != nil {
			return fmt.Errorf("delete loyalty account: %w", err)
		}
		if _, err := tx.Exec(ctx, "DELETE FROM customers WHERE id = $1", id); err != nil {
			if db.IsForeignKeyViolation(err) {
				return fmt.Errorf("%w: customer %d has linked records", httpx.ErrForeignKey, id)
			}
			return fmt.Errorf("delete customer: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return deleted, nil
}

func (r *pgRepository) AdjustLoyalty(ctx context.Context, id int64, delta int, tier *string) (*Customer, error) {
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		var points int
		err := tx.QueryRow(ctx, `
			UPDATE loyalty_accounts SET points = points + $2, tier = COALESCE($3, tier)
			WHERE customer_id = $1
			RETURNING points`, id, delta, tier).Scan(&points)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return fmt.Errorf("%w: customer %d", httpx.ErrNotFound, id)
			}
			return fmt.Errorf("adjust loyalty: %w", err)
		}
		if points < 0 {
			return fmt.Errorf("%w: loyalty balance cannot go negative", httpx.ErrValidation)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return r.Get(ctx, id)
}
