package rbac

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DynamicRegistry serves grants from persisted permission rows joined through
// the role_permissions linking table. Used for tenant-configurable role sets;
// a deployment selects either this or the static table, never both.
type DynamicRegistry struct {
	pool *pgxpool.Pool
}

// NewDynamicRegistry constructs a registry backed by the provided pool.
func NewDynamicRegistry(pool *pgxpool.Pool) *DynamicRegistry {
	return &DynamicRegistry{pool: pool}
}

// GrantsForRole resolves a role's permission tokens from storage.
func (r *DynamicRegistry) GrantsForRole(ctx context.Context, role string) ([]string, error) {
	var roleID int64
	err := r.pool.QueryRow(ctx, `SELECT id FROM roles WHERE name = $1`, role).Scan(&roleID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %q", ErrUnknownRole, role)
		}
		return nil, fmt.Errorf("rbac: lookup role: %w", err)
	}

	rows, err := r.pool.Query(ctx, `
		SELECT p.resource, p.action
		FROM permissions p
		JOIN role_permissions rp ON rp.permission_id = p.id
		WHERE rp.role_id = $1
		ORDER BY rp.created_at, p.id`, roleID)
	if err != nil {
		return nil, fmt.Errorf("rbac: list role permissions: %w", err)
	}
	defer rows.Close()

	grants := make([]string, 0)
	for rows.Next() {
		var p Permission
		if err := rows.Scan(&p.Resource, &p.Action); err != nil {
			return nil, fmt.Errorf("rbac: scan permission: %w", err)
		}
		grants = append(grants, p.String())
	}
	return grants, rows.Err()
}
