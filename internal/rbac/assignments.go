package rbac

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/driveline-dms/driveline/internal/platform/db"
)

// AssignmentStore persists the identity-to-role mapping. The store is
// storage-agnostic about referential integrity: validating that the identity
// and role actually exist is the service layer's job.
type AssignmentStore interface {
	Assign(ctx context.Context, a Assignment) (Assignment, error)
	Get(ctx context.Context, id int64) (Assignment, error)
	Revoke(ctx context.Context, id int64) error
	// RolesForIdentity returns assignments in insertion order. The order is
	// display-significant only; authorization is the union over all roles.
	RolesForIdentity(ctx context.Context, identity string) ([]Assignment, error)
}

type pgAssignmentStore struct {
	pool *pgxpool.Pool
}

// NewAssignmentStore constructs a PostgreSQL-backed AssignmentStore.
func NewAssignmentStore(pool *pgxpool.Pool) AssignmentStore {
	return &pgAssignmentStore{pool: pool}
}

func (s *pgAssignmentStore) Assign(ctx context.Context, a Assignment) (Assignment, error) {
	row := s.pool.QueryRow(ctx, `
		INSERT INTO role_assignments (identity, role_name, branch, department)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`,
		a.Identity, a.Role, a.Branch, a.Department)
	if err := row.Scan(&a.ID, &a.CreatedAt); err != nil {
		if db.IsUniqueViolation(err) {
			return Assignment{}, ErrDuplicateAssignment
		}
		return Assignment{}, fmt.Errorf("rbac: insert assignment: %w", err)
	}
	return a, nil
}

func (s *pgAssignmentStore) Get(ctx context.Context, id int64) (Assignment, error) {
	var a Assignment
	err := s.pool.QueryRow(ctx, `
		SELECT id, identity, role_name, branch, department, created_at
		FROM role_assignments WHERE id = $1`, id).
		Scan(&a.ID, &a.Identity, &a.Role, &a.Branch, &a.Department, &a.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return Assignment{}, ErrAssignmentNotFound
		}
		return Assignment{}, fmt.Errorf("rbac: get assignment: %w", err)
	}
	return a, nil
}

func (s *pgAssignmentStore) Revoke(ctx context.Context, id int64) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM role_assignments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("rbac: delete assignment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrAssignmentNotFound
	}
	return nil
}

func (s *pgAssignmentStore) RolesForIdentity(ctx context.Context, identity string) ([]Assignment, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, identity, role_name, branch, department, created_at
		FROM role_assignments WHERE identity = $1
		ORDER BY id`, identity)
	if err != nil {
		return nil, fmt.Errorf("rbac: list assignments: %w", err)
	}
	defer rows.Close()

	out := make([]Assignment, 0)
	for rows.Next() {
		var a Assignment
		if err := rows.Scan(&a.ID, &a.Identity, &a.Role, &a.Branch, &a.Department, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("rbac: scan assignment: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
