package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/driveline-dms/driveline/internal/auditlog"
	"github.com/driveline-dms/driveline/internal/customers"
	"github.com/driveline-dms/driveline/internal/identity"
	"github.com/driveline-dms/driveline/internal/notifications"
	"github.com/driveline-dms/driveline/internal/observability"
	"github.com/driveline-dms/driveline/internal/payments"
	"github.com/driveline-dms/driveline/internal/payroll"
	"github.com/driveline-dms/driveline/internal/platform/httpx"
	"github.com/driveline-dms/driveline/internal/procurement"
	"github.com/driveline-dms/driveline/internal/rbac"
	"github.com/driveline-dms/driveline/internal/sales/bookings"
	"github.com/driveline-dms/driveline/internal/sales/deliveries"
	"github.com/driveline-dms/driveline/internal/sales/testdrives"
	"github.com/driveline-dms/driveline/internal/vendors"
)

// RouterParams carries everything NewRouter needs to assemble the HTTP
// surface. Nil metrics disables the /metrics endpoint.
type RouterParams struct {
	Config  *Config
	Logger  *slog.Logger
	Metrics *observability.Metrics

	IdentityService *identity.Service
	Identity        *identity.Handler
	RBAC            *rbac.Handler

	Vendors       *vendors.Handler
	Customers     *customers.Handler
	Payments      *payments.Handler
	Payroll       *payroll.Handler
	Procurement   *procurement.Handler
	TestDrives    *testdrives.Handler
	Bookings      *bookings.Handler
	Deliveries    *deliveries.Handler
	Notifications *notifications.Handler
	AuditLogs     *auditlog.Handler
}

// NewRouter assembles the chi router with the full middleware stack and every
// mounted module.
func NewRouter(p RouterParams) chi.Router {
	r := chi.NewRouter()
	MiddlewareStack(r, p.Config, p.Logger, p.IdentityService, p.Metrics)

	r.Get("/healthz", handleHealth)
	if p.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", p.Metrics.Handler())
	}

	r.Route("/auth", p.Identity.MountRoutes)

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/rbac", p.RBAC.MountRoutes)
		r.Route("/vendors", p.Vendors.MountRoutes)
		r.Route("/customers", p.Customers.MountRoutes)
		r.Route("/payments", p.Payments.MountRoutes)
		r.Route("/payroll", p.Payroll.MountRoutes)
		r.Route("/purchase-orders", p.Procurement.MountRoutes)
		r.Route("/test-drives", p.TestDrives.MountRoutes)
		r.Route("/bookings", p.Bookings.MountRoutes)
		r.Route("/deliveries", p.Deliveries.MountRoutes)
		r.Route("/notifications", p.Notifications.MountRoutes)
		r.Route("/audit-logs", p.AuditLogs.MountRoutes)
	})

	return r
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
