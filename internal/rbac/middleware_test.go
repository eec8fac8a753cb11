package rbac

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/driveline-dms/driveline/internal/shared"
)

func performRequest(t *testing.T, mw func(http.Handler) http.Handler, identity string) *httptest.ResponseRecorder {
	t.Helper()
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if identity != "" {
		req = req.WithContext(shared.ContextWithActor(context.Background(), identity))
	}
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)
	return res
}

func TestRequireAny(t *testing.T) {
	gate := newTestGate(t, map[string][]string{"u-1": {"Desk"}})
	mw := Middleware{Gate: gate}

	res := performRequest(t, mw.RequireAny("y.view", "vendors.view"), "u-1")
	require.Equal(t, http.StatusOK, res.Code)

	res = performRequest(t, mw.RequireAny("vendors.view"), "u-1")
	require.Equal(t, http.StatusForbidden, res.Code)

	res = performRequest(t, mw.RequireAny("y.view"), "")
	require.Equal(t, http.StatusUnauthorized, res.Code)
}

func TestRequireAll(t *testing.T) {
	gate := newTestGate(t, map[string][]string{"u-1": {"Floor", "Desk"}})
	mw := Middleware{Gate: gate}

	res := performRequest(t, mw.RequireAll("x.view", "y.view", "sales.create"), "u-1")
	require.Equal(t, http.StatusOK, res.Code)

	res = performRequest(t, mw.RequireAll("x.view", "vendors.view"), "u-1")
	require.Equal(t, http.StatusForbidden, res.Code)
}

func TestRequireNoPermissionsPassesThrough(t *testing.T) {
	gate := newTestGate(t, nil)
	mw := Middleware{Gate: gate}

	res := performRequest(t, mw.RequireAny(), "")
	require.Equal(t, http.StatusOK, res.Code)
}
