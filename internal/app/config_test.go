package app_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/driveline-dms/driveline/internal/app"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := app.LoadConfig()
	require.NoError(t, err)

	require.Equal(t, "development", cfg.AppEnv)
	require.Equal(t, "static", cfg.RBACSource)
	// Permission caching stays off unless the operator opts in.
	require.Equal(t, time.Duration(0), cfg.RBACCacheTTL)
	require.False(t, cfg.IsProduction())
}

func TestLoadConfigRejectsUnknownRBACSource(t *testing.T) {
	t.Setenv("RBAC_SOURCE", "ldap")

	_, err := app.LoadConfig()
	require.Error(t, err)
	require.Contains(t, err.Error(), "RBAC_SOURCE")
}

func TestLoadConfigDynamicSourceAndCacheTTL(t *testing.T) {
	t.Setenv("RBAC_SOURCE", "dynamic")
	t.Setenv("RBAC_CACHE_TTL", "45s")

	cfg, err := app.LoadConfig()
	require.NoError(t, err)
	require.Equal(t, "dynamic", cfg.RBACSource)
	require.Equal(t, 45*time.Second, cfg.RBACCacheTTL)
}
