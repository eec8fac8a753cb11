package rbac

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStaticRegistryGrantsForRole(t *testing.T) {
	reg := NewStaticRegistry()

	grants, err := reg.GrantsForRole(context.Background(), RoleHR)
	require.NoError(t, err)
	require.Contains(t, grants, "payroll.*")

	_, err = reg.GrantsForRole(context.Background(), "Ghost")
	require.True(t, errors.Is(err, ErrUnknownRole))
}

func TestStaticRegistryAdminHasNoGlobalWildcard(t *testing.T) {
	reg := NewStaticRegistry()
	grants, err := reg.GrantsForRole(context.Background(), RoleAdmin)
	require.NoError(t, err)
	require.NotContains(t, grants, "*")
	for _, module := range []string{"vendors", "customers", "sales", "payments", "payroll", "procurement", "notifications", "audit", "rbac"} {
		require.Contains(t, grants, module+".*")
	}
}

func TestStaticRegistryReturnsCopy(t *testing.T) {
	reg := NewStaticRegistryWithTable(map[string][]string{"Greeter": {"sales.view"}})
	grants, err := reg.GrantsForRole(context.Background(), "Greeter")
	require.NoError(t, err)
	grants[0] = "sales.delete"

	again, err := reg.GrantsForRole(context.Background(), "Greeter")
	require.NoError(t, err)
	require.Equal(t, []string{"sales.view"}, again)
}

func TestStaticRegistryEmptyGrantsIsNotAnError(t *testing.T) {
	reg := NewStaticRegistryWithTable(map[string][]string{"Bystander": {}})
	grants, err := reg.GrantsForRole(context.Background(), "Bystander")
	require.NoError(t, err)
	require.Empty(t, grants)
}
