package rbac

import (
	"context"
	"fmt"

	"github.com/driveline-dms/driveline/internal/platform/httpx"
	"github.com/driveline-dms/driveline/internal/shared"
)

// Gate is the single authorization predicate every protected operation
// consults. Services call Require inside each state-mutating operation so
// enforcement happens at the operation boundary, not only in whatever layer
// renders affordances.
type Gate struct {
	agg *Aggregator
}

// NewGate constructs a Gate over the aggregator.
func NewGate(agg *Aggregator) *Gate {
	return &Gate{agg: agg}
}

// CanPerform reports whether the identity holds any grant matching the
// requested permission string.
func (g *Gate) CanPerform(ctx context.Context, identity, permission string) (bool, error) {
	grants, err := g.agg.ResolvePermissions(ctx, identity)
	if err != nil {
		return false, err
	}
	return MatchesAny(grants, permission), nil
}

// CanAccessModule reports whether the identity may see the module at all:
// either the module's view action or its wildcard.
func (g *Gate) CanAccessModule(ctx context.Context, identity, module string) (bool, error) {
	ok, err := g.CanPerform(ctx, identity, module+".view")
	if err != nil || ok {
		return ok, err
	}
	return g.CanPerform(ctx, identity, module+".*")
}

// Require resolves the acting identity from context and fails unless it holds
// the permission. Unauthenticated and unauthorized are distinct failures.
func (g *Gate) Require(ctx context.Context, permission string) error {
	identity := shared.ActorFromContext(ctx)
	if identity == "" {
		return httpx.ErrUnauthenticated
	}
	ok, err := g.CanPerform(ctx, identity, permission)
	if err != nil {
		return fmt.Errorf("rbac: evaluate %s: %w", permission, err)
	}
	if !ok {
		return fmt.Errorf("%w: %s", httpx.ErrUnauthorized, permission)
	}
	return nil
}
