package rbac

import (
	"log/slog"
	"net/http"

	"github.com/driveline-dms/driveline/internal/platform/httpx"
	"github.com/driveline-dms/driveline/internal/shared"
)

// Middleware wires RBAC authorization helpers for HTTP handlers. Route-level
// gating is a first line of defence; services still call Gate.Require inside
// every mutation.
type Middleware struct {
	Gate   *Gate
	Logger *slog.Logger
}

// RequireAny ensures the current identity holds at least one of the required
// permissions.
func (m Middleware) RequireAny(perms ...string) func(http.Handler) http.Handler {
	return m.require(perms, false)
}

// RequireAll ensures the current identity holds all required permissions.
func (m Middleware) RequireAll(perms ...string) func(http.Handler) http.Handler {
	return m.require(perms, true)
}

func (m Middleware) require(perms []string, all bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if len(perms) == 0 {
				next.ServeHTTP(w, r)
				return
			}
			identity := shared.ActorFromContext(r.Context())
			if identity == "" {
				httpx.RespondError(w, httpx.ErrUnauthenticated)
				return
			}
			granted, err := m.Gate.agg.ResolvePermissions(r.Context(), identity)
			if err != nil {
				if m.Logger != nil {
					m.Logger.Error("rbac resolve permissions", slog.Any("error", err))
				}
				httpx.RespondError(w, err)
				return
			}
			matched := 0
			for _, p := range perms {
				if MatchesAny(granted, p) {
					matched++
				}
			}
			if (all && matched == len(perms)) || (!all && matched > 0) {
				next.ServeHTTP(w, r)
				return
			}
			httpx.RespondError(w, httpx.ErrUnauthorized)
		})
	}
}
