package rbac

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Aggregator resolves an identity's effective permission set: its roles from
// the assignment store, each role's grants from the registry, unioned and
// deduplicated by exact string value. "sales.*" and "sales.view" are both
// kept; subsumption belongs to the matcher, not the aggregator.
//
// The aggregator holds no state of its own and recomputes on every call. An
// optional Redis cache bounds the cost under load; the staleness window
// equals the configured TTL and assign/revoke invalidate eagerly.
type Aggregator struct {
	assignments AssignmentStore
	registry    Registry
	cache       *redis.Client
	ttl         time.Duration
}

// NewAggregator constructs an Aggregator without caching.
func NewAggregator(assignments AssignmentStore, registry Registry) *Aggregator {
	return &Aggregator{assignments: assignments, registry: registry}
}

// WithCache enables the short-lived permission cache. A zero TTL disables it.
func (a *Aggregator) WithCache(client *redis.Client, ttl time.Duration) *Aggregator {
	a.cache = client
	a.ttl = ttl
	return a
}

// ResolvePermissions returns the deduplicated union of grants across every
// role the identity holds. An identity with zero assignments resolves to an
// empty set. An assignment referencing a role the registry does not know is a
// configuration error and is surfaced, never skipped.
func (a *Aggregator) ResolvePermissions(ctx context.Context, identity string) ([]string, error) {
	if cached, ok := a.cacheGet(ctx, identity); ok {
		return cached, nil
	}

	assignments, err := a.assignments.RolesForIdentity(ctx, identity)
	if err != nil {
		return nil, fmt.Errorf("rbac: resolve roles for %q: %w", identity, err)
	}

	seen := make(map[string]struct{})
	perms := make([]string, 0)
	for _, assignment := range assignments {
		grants, err := a.registry.GrantsForRole(ctx, assignment.Role)
		if err != nil {
			return nil, fmt.Errorf("rbac: grants for role %q: %w", assignment.Role, err)
		}
		for _, grant := range grants {
			if _, dup := seen[grant]; dup {
				continue
			}
			seen[grant] = struct{}{}
			perms = append(perms, grant)
		}
	}

	a.cacheSet(ctx, identity, perms)
	return perms, nil
}

// Invalidate drops the cached permission set for an identity. Callers invoke
// it after every assign or revoke.
func (a *Aggregator) Invalidate(ctx context.Context, identity string) {
	if a.cache == nil || a.ttl <= 0 {
		return
	}
	_ = a.cache.Del(ctx, cacheKey(identity)).Err()
}

func (a *Aggregator) cacheGet(ctx context.Context, identity string) ([]string, bool) {
	if a.cache == nil || a.ttl <= 0 {
		return nil, false
	}
	payload, err := a.cache.Get(ctx, cacheKey(identity)).Bytes()
	if err != nil {
		// Cache trouble must never turn into a denial; fall through to the
		// authoritative stores on miss and on error alike.
		return nil, false
	}
	var perms []string
	if err := json.Unmarshal(payload, &perms); err != nil {
		return nil, false
	}
	return perms, true
}

func (a *Aggregator) cacheSet(ctx context.Context, identity string, perms []string) {
	if a.cache == nil || a.ttl <= 0 {
		return
	}
	payload, err := json.Marshal(perms)
	if err != nil {
		return
	}
	_ = a.cache.Set(ctx, cacheKey(identity), payload, a.ttl).Err()
}

func cacheKey(identity string) string {
	return "rbac:perms:" + identity
}
