package auditlog

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/driveline-dms/driveline/internal/platform/httpx"
	"github.com/driveline-dms/driveline/internal/rbac"
	"github.com/driveline-dms/driveline/internal/shared"
)

// Handler exposes the audit trail. The trail is append-only, so any attempt
// to update or delete an entry is answered with 405.
type Handler struct {
	repo Repository
	rbac rbac.Middleware
}

// NewHandler constructs a Handler instance.
func NewHandler(repo Repository, mw rbac.Middleware) *Handler {
	return &Handler{repo: repo, rbac: mw}
}

// MountRoutes registers audit log routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAny(shared.PermAuditView))
		r.Get("/", h.handleList)
		r.Get("/{id}", h.handleGet)
	})
	r.Put("/{id}", h.handleImmutable)
	r.Patch("/{id}", h.handleImmutable)
	r.Delete("/{id}", h.handleImmutable)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := Filter{
		Entity: q.Get("entity"),
		Action: q.Get("action"),
		Actor:  q.Get("actor"),
	}
	page := shared.ParseListParams(q)
	entries, total, err := h.repo.List(r.Context(), filter, page)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.List(w, entries, page.Meta(total, len(entries)))
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	id, err := shared.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	entry, err := h.repo.Get(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, entry)
}

func (h *Handler) handleImmutable(w http.ResponseWriter, _ *http.Request) {
	httpx.RespondError(w, httpx.ErrMethodNotAllowed)
}
