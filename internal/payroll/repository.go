package payroll

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

// Repository persists payroll records.
type Repository interface {
	List(ctx context.Context, filter Filter, page shared.ListParams) ([]Record, int, error)
	Get(ctx context.Context, id int64) (*Record, error)
	Create(ctx context.Context, rec Record) (*Record, error)
	Update(ctx context.Context, rec Record) (*Record, error)
	Delete(ctx context.Context, id int64) (*Record, error)
}

type pgRepository struct {
	pool *pgxpool.Pool
}

// NewRepository returns a Postgres-backed Repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &pgRepository{pool: pool}
}

const recordColumns = "id, employee_id, period, base_salary, allowances, deductions, net_salary, status, created_at, updated_at"

func scanRecord(row interface{ Scan(...any) error }) (*Record, error) {
	var rec Record
	err := row.Scan(&rec.ID, &rec.EmployeeID, &rec.Period, &rec.BaseSalary,
		&rec.Allowances, &rec.Deductions, &rec.NetSalary, &rec.Status,
		&rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *pgRepository) List(ctx context.Context, filter Filter, page shared.ListParams) ([]Record, int, error) {
	conditions := []string{"1=1"}
	args := []any{}
	if filter.EmployeeID > 0 {
		args = append(args, filter.EmployeeID)
		conditions = append(conditions, fmt.Sprintf("employee_id = $%d", len(args)))
	}
	if filter.Period != "" {
		args = append(args, filter.Period)
		conditions = append(conditions, fmt.Sprintf("period = $%d", len(args)))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)))
	}
	where := strings.Join(conditions, " AND ")

	var total int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM payroll_records WHERE "+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count payroll records: %w", err)
	}

	args = append(args, page.Limit, page.Offset)
	rows, err := r.pool.Query(ctx, fmt.Sprintf(
		"SELECT %s FROM payroll_records WHERE %s ORDER BY period DESC, employee_id LIMIT $%d OFFSET $%d",
		recordColumns, where, len(args)-1, len(args)), args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list payroll records: %w", err)
	}
	defer rows.Close()

	out := make([]Record, 0, page.Limit)
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan payroll record: %w", err)
		}
		out = append(out, *rec)
	}
	return out, total, rows.Err()
}

func (r *pgRepository) Get(ctx context.Context, id int64) (*Record, error) {
	rec, err := scanRecord(r.pool.QueryRow(ctx,
		"SELECT "+recordColumns+" FROM payroll_records WHERE id = $1", id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: payroll record %d", httpx.ErrNotFound, id)
		}
		return nil, fmt.Errorf("get payroll record: %w", err)
	}
	return rec, nil
}

func (r *pgRepository) Create(ctx context.Context, rec Record) (*Record, error) {
	created, err := scanRecord(r.pool.QueryRow(ctx, `
		INSERT INTO payroll_records (employee_id, period, base_salary, allowances, deductions, net_salary, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+recordColumns,
		rec.EmployeeID, rec.Period, rec.BaseSalary, rec.Allowances, rec.Deductions, rec.NetSalary, rec.Status))
	if err != nil {
		if db.IsUniqueViolation(err) {
			return nil, fmt.Errorf("%w: payroll for employee %d in %s", httpx.ErrDuplicate, rec.EmployeeID, rec.Period)
		}
		if db.IsForeignKeyViolation(err) {
			return nil, fmt.Errorf("%w: employee %d", httpx.ErrForeignKey, rec.EmployeeID)
		}
		return nil, fmt.Errorf("create payroll record: %w", err)
	}
	return created, nil
}

func (r *pgRepository) Update(ctx context.Context, rec Record) (*Record, error) {
	updated, err := scanRecord(r.pool.QueryRow(ctx, `
		UPDATE payroll_records
		SET base_salary = $2, allowances = $3, deductions = $4, net_salary = $5, status = $6, updated_at = NOW()
		WHERE id = $1
		RETURNING `+recordColumns,
		rec.ID, rec.BaseSalary, rec.Allowances, rec.Deductions, rec.NetSalary, rec.Status))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: payroll record %d", httpx.ErrNotFound, rec.ID)
		}
		return nil, fmt.Errorf("update payroll record: %w", err)
	}
	return updated, nil
}

func (r *pgRepository) Delete(ctx context.Context, id int64) (*Record, error) {
	deleted, err := scanRecord(r.pool.QueryRow(ctx,
		"DELETE FROM payroll_records WHERE id = $1 RETURNING "+recordColumns, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: payroll record %d", httpx.ErrNotFound, id)
		}
		return nil, fmt.Errorf("delete payroll record: %w", err)
	}
	return deleted, nil
}
