package rbac

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/driveline-dms/driveline/internal/platform/httpx"
	"github.com/driveline-dms/driveline/internal/shared"
)

func newTestGate(t *testing.T, assignments map[string][]string) *Gate {
	t.Helper()
	store := NewMemoryAssignmentStore()
	for identity, roles := range assignments {
		seedAssignments(t, store, identity, roles...)
	}
	return NewGate(NewAggregator(store, testRegistry()))
}

func TestCanPerformExactGrant(t *testing.T) {
	gate := newTestGate(t, map[string][]string{"u-1": {"Desk"}})

	ok, err := gate.CanPerform(context.Background(), "u-1", "y.view")
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = gate.CanPerform(context.Background(), "u-1", "y.edit")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestCanPerformWildcard(t *testing.T) {
	gate := newTestGate(t, map[string][]string{"u-1": {"Floor"}})

	for _, perm := range []string{"sales.view", "sales.create", "sales.delete"} {
		ok, err := gate.CanPerform(context.Background(), "u-1", perm)
		require.NoError(t, err)
		require.True(t, ok, perm)
	}

	ok, err := gate.CanPerform(context.Background(), "u-1", "service.view")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestCanPerformMultiRoleUnion(t *testing.T) {
	gate := newTestGate(t, map[string][]string{"u-1": {"Floor", "Desk"}})

	for _, perm := range []string{"x.view", "y.view"} {
		ok, err := gate.CanPerform(context.Background(), "u-1", perm)
		require.NoError(t, err)
		require.True(t, ok, perm)
	}

	ok, err := gate.CanPerform(context.Background(), "u-1", "x.edit")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestCanPerformZeroRolesDeniesEverything(t *testing.T) {
	gate := newTestGate(t, nil)
	for _, perm := range []string{"sales.view", "x.view", "", "*"} {
		ok, err := gate.CanPerform(context.Background(), "ghost", perm)
		require.NoError(t, err)
		require.False(t, ok, perm)
	}
}

func TestCanAccessModule(t *testing.T) {
	gate := newTestGate(t, map[string][]string{
		"viewer":   {"Desk"},  // holds x.view
		"wildcard": {"Floor"}, // holds sales.*
	})

	ok, err := gate.CanAccessModule(context.Background(), "viewer", "x")
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = gate.CanAccessModule(context.Background(), "wildcard", "sales")
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = gate.CanAccessModule(context.Background(), "viewer", "sales")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestRequireDistinguishesAuthFailures(t *testing.T) {
	gate := newTestGate(t, map[string][]string{"u-1": {"Desk"}})

	err := gate.Require(context.Background(), "y.view")
	require.True(t, errors.Is(err, httpx.ErrUnauthenticated))

	ctx := shared.ContextWithActor(context.Background(), "u-1")
	require.NoError(t, gate.Require(ctx, "y.view"))

	err = gate.Require(ctx, "y.edit")
	require.True(t, errors.Is(err, httpx.ErrUnauthorized))
}
