package customers

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

// Service owns customer business rules, including the loyalty ledger.
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

// List returns a page of customers and the unpaged total.
func (s *Service) List(ctx context.Context, filter Filter, page shared.ListParams) ([]Customer, int, error) {
	return s.repo.List(ctx, filter, page.Clamp())
}

// Get fetches a single customer with their loyalty account.
func (s *Service) Get(ctx context.Context, id int64) (*Customer, error) {
	return s.repo.Get(ctx, id)
}

// Create registers a customer and opens their loyalty account.
func (s *Service) Create(ctx context.Context, req CreateCustomerRequest) (*Customer, error) {
	if err := s.gate.Require(ctx, shared.PermCustomersCreate); err != nil {
		return nil, err
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if err := s.validate.Struct(req); err != nil {
		return nil, shared.ValidationError(err)
	}
	created, err := s.repo.Create(ctx, Customer{
		Name:    req.Name,
		Email:   req.Email,
		Phone:   strings.TrimSpace(req.Phone),
		Address: strings.TrimSpace(req.Address),
		Status:  "active",
	})
	if err != nil {
		return nil, err
	}
	s.audit.Observe(ctx, auditlog.Entry{
		Actor:    shared.ActorFromContext(ctx),
		Action:   "create",
		Entity:   "customer",
		EntityID: strconv.FormatInt(created.ID, 10),
		Meta:     map[string]any{"email": created.Email},
	})
	s.logger.Info("customer created", slog.Int64("id", created.ID))
	return created, nil
}

// Update applies a partial update to an existing customer.
func (s *Service) Update(ctx context.Context, id int64, req UpdateCustomerRequest) (*Customer, error) {
	if err := s.gate.Require(ctx, shared.PermCustomersEdit); err != nil {
		return nil, err
	}
	if err := s.validate.Struct(req); err != nil {
		return nil, shared.ValidationError(err)
	}
	current, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		trimmed := strings.TrimSpace(*req.Name)
		if trimmed == "" {
			return nil, shared.Invalidf("name must not be blank")
		}
		current.Name = trimmed
	}
	if req.Email != nil {
		current.Email = strings.ToLower(strings.TrimSpace(*req.Email))
	}
	if req.Phone != nil {
		current.Phone = strings.TrimSpace(*req.Phone)
	}
	if req.Address != nil {
		current.Address = strings.TrimSpace(*req.Address)
	}
	if req.Status != nil {
		current.Status = *req.Status
	}
	updated, err := s.repo.Update(ctx, *current)
	if err != nil {
		return nil, err
	}
	s.audit.Observe(ctx, auditlog.Entry{
		Actor:    shared.ActorFromContext(ctx),
		Action:   "update",
		Entity:   "customer",
		EntityID: strconv.FormatInt(id, 10),
	})
	return updated, nil
}

// Delete removes a customer and their loyalty account.
func (s *Service) Delete(ctx context.Context, id int64) (*Customer, error) {
	if err := s.gate.Require(ctx, shared.PermCustomersDelete); err != nil {
		return nil, err
	}
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return nil, err
	}
	s.audit.Observe(ctx, auditlog.Entry{
		Actor:    shared.ActorFromContext(ctx),
		Action:   "delete",
		Entity:   "customer",
		EntityID: strconv.FormatInt(id, 10),
	})
	return deleted, nil
}

// AdjustLoyalty moves the loyalty balance by a signed delta and optionally
// re-tiers the account.
func (s *Service) AdjustLoyalty(ctx context.Context, id int64, req AdjustLoyaltyRequest) (*Customer, error) {
	if err := s.gate.Require(ctx, shared.PermCustomersEdit); err != nil {
		return nil, err
	}
	if err := s.validate.Struct(req); err != nil {
		return nil, shared.ValidationError(err)
	}
	updated, err := s.repo.AdjustLoyalty(ctx, id, req.Delta, req.Tier)
	if err != nil {
		return nil, err
	}
	s.audit.Observe(ctx, auditlog.Entry{
		Actor:    shared.ActorFromContext(ctx),
		Action:   "loyalty_adjust",
		Entity:   "customer",
		EntityID: strconv.FormatInt(id, 10),
		Meta:     map[string]any{"delta": req.Delta, "reason": req.Reason},
	})
	return updated, nil
}
