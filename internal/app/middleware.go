package app

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/unrolled/secure"

	"github.com/driveline-dms/driveline/internal/identity"
	"github.com/driveline-dms/driveline/internal/observability"
)

// MiddlewareStack installs the shared middleware chain: request identity,
// panic recovery, timeouts, security headers, compression, rate limiting,
// bearer-token resolution and HTTP metrics. Order matters; the identity
// middleware must run before any RBAC-gated handler.
func MiddlewareStack(r chi.Router, cfg *Config, logger *slog.Logger, identitySvc *identity.Service, metrics *observability.Metrics) {
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(cfg.AppRequestTimeout))

	secureMW := secure.New(secure.Options{
		FrameDeny:          true,
		ContentTypeNosniff: true,
		BrowserXssFilter:   true,
		IsDevelopment:      !cfg.IsProduction(),
	})
	r.Use(secureMW.Handler)
	r.Use(middleware.Compress(5))

	if !InTestMode() {
		r.Use(httprate.Limit(60, time.Minute, httprate.WithKeyFuncs(httprate.KeyByIP)))
	}

	if identitySvc != nil {
		r.Use(identity.Middleware(identitySvc, logger))
	}
	if metrics != nil {
		r.Use(metrics.Middleware)
	}

	r.Use(requestLogger(logger))
}

func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			logger.Info("http request",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", ww.Status()),
				slog.Duration("duration", time.Since(start)),
				slog.String("request_id", middleware.GetReqID(r.Context())))
		})
	}
}
