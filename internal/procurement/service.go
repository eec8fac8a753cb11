package procurement

import (
	"context"
	"log/slog"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/driveline-dms/driveline/internal/auditlog"
	"github.com/driveline-dms/driveline/internal/rbac"
	"github.com/driveline-dms/driveline/internal/shared"
)

// Service owns purchase order business rules. Totals are always derived;
// status moves only along the allowed transitions.
type Service struct {
	logger   *slog.Logger
	repo     Repository
	gate     *rbac.Gate
	audit    *auditlog.Recorder
	validate *validator.Validate
}

// NewService constructs a Service instance.
func NewService(logger *slog.Logger, repo Repository, gate *rbac.Gate, audit *auditlog.Recorder) *Service {
	return &Service{
		logger:   logger,
		repo:     repo,
		gate:     gate,
		audit:    audit,
		validate: validator.New(),
	}
}

// List returns a page of purchase orders and the unpaged total.
func (s *Service) List(ctx context.Context, filter Filter, page shared.ListParams) ([]PurchaseOrder, int, error) {
	return s.repo.List(ctx, filter, page.Clamp())
}

// Get fetches a single purchase order.
func (s *Service) Get(ctx context.Context, id int64) (*PurchaseOrder, error) {
	return s.repo.Get(ctx, id)
}

// Create raises a draft purchase order against a vendor.
func (s *Service) Create(ctx context.Context, req CreateOrderRequest) (*PurchaseOrder, error) {
	if err := s.gate.Require(ctx, shared.PermProcurementCreate); err != nil {
		return nil, err
	}
	req.Number = strings.TrimSpace(req.Number)
	req.Description = strings.TrimSpace(req.Description)
	if err := s.validate.Struct(req); err != nil {
		return nil, shared.ValidationError(err)
	}
	po := PurchaseOrder{
		Number:      req.Number,
		VendorID:    req.VendorID,
		Description: req.Description,
		Quantity:    req.Quantity,
		UnitCost:    req.UnitCost,
		Status:      "draft",
	}
	po.TotalCost = po.Total()
	created, err := s.repo.Create(ctx, po)
	if err != nil {
		return nil, err
	}
	s.audit.Observe(ctx, auditlog.Entry{
		Actor:    shared.ActorFromContext(ctx),
		Action:   "create",
		Entity:   "purchase_order",
		EntityID: strconv.FormatInt(created.ID, 10),
		Meta:     map[string]any{"number": created.Number, "vendor_id": created.VendorID},
	})
	s.logger.Info("purchase order raised",
		slog.Int64("id", created.ID),
		slog.String("number", created.Number))
	return created, nil
}

// Update amends a purchase order. Received and cancelled orders are frozen;
// status changes follow draft -> submitted -> received, with cancellation
// allowed before receipt.
func (s *Service) Update(ctx context.Context, id int64, req UpdateOrderRequest) (*PurchaseOrder, error) {
	if err := s.gate.Require(ctx, shared.PermProcurementEdit); err != nil {
		return nil, err
	}
	if err := s.validate.Struct(req); err != nil {
		return nil, shared.ValidationError(err)
	}
	current, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Status != nil && !canTransition(current.Status, *req.Status) {
		return nil, shared.Invalidf("cannot move purchase order from %s to %s", current.Status, *req.Status)
	}
	amending := req.Description != nil || req.Quantity != nil || req.UnitCost != nil
	if amending && current.Status != "draft" {
		return nil, shared.Invalidf("only draft purchase orders can be amended")
	}
	if req.Description != nil {
		current.Description = strings.TrimSpace(*req.Description)
	}
	if req.Quantity != nil {
		current.Quantity = *req.Quantity
	}
	if req.UnitCost != nil {
		current.UnitCost = *req.UnitCost
	}
	if req.Status != nil {
		current.Status = *req.Status
	}
	current.TotalCost = current.Total()
	updated, err := s.repo.Update(ctx, *current)
	if err != nil {
		return nil, err
	}
	s.audit.Observe(ctx, auditlog.Entry{
		Actor:    shared.ActorFromContext(ctx),
		Action:   "update",
		Entity:   "purchase_order",
		EntityID: strconv.FormatInt(id, 10),
	})
	return updated, nil
}

// Delete removes a purchase order. Only drafts can go.
func (s *Service) Delete(ctx context.Context, id int64) (*PurchaseOrder, error) {
	if err := s.gate.Require(ctx, shared.PermProcurementDelete); err != nil {
		return nil, err
	}
	current, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.Status != "draft" {
		return nil, shared.Invalidf("only draft purchase orders can be deleted")
	}
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return nil, err
	}
	s.audit.Observe(ctx, auditlog.Entry{
		Actor:    shared.ActorFromContext(ctx),
		Action:   "delete",
		Entity:   "purchase_order",
		EntityID: strconv.FormatInt(id, 10),
	})
	return deleted, nil
}
