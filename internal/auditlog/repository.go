package auditlog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/driveline-dms/driveline/internal/platform/httpx"
	"github.com/driveline-dms/driveline/internal/shared"
)

// Filter narrows audit log listings.
type Filter struct {
	Entity string
	Action string
	Actor  string
}

// Repository reads persisted audit entries.
type Repository interface {
	List(ctx context.Context, filter Filter, page shared.ListParams) ([]Entry, int, error)
	Get(ctx context.Context, id int64) (*Entry, error)
}

type pgRepository struct {
	pool *pgxpool.Pool
}

// NewRepository returns a Postgres-backed Repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &pgRepository{pool: pool}
}

func (r *pgRepository) List(ctx context.Context, filter Filter, page shared.ListParams) ([]Entry, int, error) {
	conditions := []string{"1=1"}
	args := []any{}
	if filter.Entity != "" {
		args = append(args, filter.Entity)
		conditions = append(conditions, fmt.Sprintf("entity = $%d", len(args)))
	}
	if filter.Action != "" {
		args = append(args, filter.Action)
		conditions = append(conditions, fmt.Sprintf("action = $%d", len(args)))
	}
	if filter.Actor != "" {
		args = append(args, filter.Actor)
		conditions = append(conditions, fmt.Sprintf("actor = $%d", len(args)))
	}
	where := strings.Join(conditions, " AND ")

	var total int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM audit_logs WHERE "+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count audit logs: %w", err)
	}

	args = append(args, page.Limit, page.Offset)
	rows, err := r.pool.Query(ctx, fmt.Sprintf(`
		SELECT id, actor, action, entity, entity_id, meta, occurred_at
		FROM audit_logs
		WHERE %s
		ORDER BY occurred_at DESC, id DESC
		LIMIT $%d OFFSET $%d`, where, len(args)-1, len(args)), args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list audit logs: %w", err)
	}
	defer rows.Close()

	entries := make([]Entry, 0, page.Limit)
	for rows.Next() {
		var (
			e    Entry
			meta []byte
		)
		if err := rows.Scan(&e.ID, &e.Actor, &e.Action, &e.Entity, &e.EntityID, &meta, &e.OccurredAt); err != nil {
			return nil, 0, fmt.Errorf("scan audit log: %w", err)
		}
		if len(meta) > 0 {
			_ = json.Unmarshal(meta, &e.Meta)
		}
		entries = append(entries, e)
	}
	return entries, total, rows.Err()
}

func (r *pgRepository) Get(ctx context.Context, id int64) (*Entry, error) {
	var (
		e    Entry
		meta []byte
	)
	err := r.pool.QueryRow(ctx, `
		SELECT id, actor, action, entity, entity_id, meta, occurred_at
		FROM audit_logs WHERE id = $1`, id).
		Scan(&e.ID, &e.Actor, &e.Action, &e.Entity, &e.EntityID, &meta, &e.OccurredAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: audit log %d", httpx.ErrNotFound, id)
		}
		return nil, fmt.Errorf("get audit log: %w", err)
	}
	if len(meta) > 0 {
		_ = json.Unmarshal(meta, &e.Meta)
	}
	return &e, nil
}
