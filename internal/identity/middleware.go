package identity

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/driveline-dms/driveline/internal/platform/httpx"
	"github.com/driveline-dms/driveline/internal/shared"
)

// Middleware resolves the Authorization bearer token into an identity and
// stores it in the request context. Requests without a valid token continue
// unauthenticated; the RBAC layer decides what anonymous callers may do.
func Middleware(service *Service, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}
			subject, err := service.Resolve(r.Context(), token)
			if err != nil {
				if logger != nil {
					logger.Error("resolve bearer token", slog.Any("error", err))
				}
				httpx.RespondError(w, err)
				return
			}
			if subject == "" {
				next.ServeHTTP(w, r)
				return
			}
			ctx := shared.ContextWithActor(r.Context(), subject)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(header, prefix))
}
