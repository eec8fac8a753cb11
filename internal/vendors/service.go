package vendors

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

// Service owns vendor business rules. Every mutation passes through the
// authorization gate before touching storage.
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

// List returns a page of vendors and the unpaged total.
func (s *Service) List(ctx context.Context, filter Filter, page shared.ListParams) ([]Vendor, int, error) {
	return s.repo.List(ctx, filter, page.Clamp())
}

// Get fetches a single vendor.
func (s *Service) Get(ctx context.Context, id int64) (*Vendor, error) {
	return s.repo.Get(ctx, id)
}

// Create registers a new vendor.
func (s *Service) Create(ctx context.Context, req CreateVendorRequest) (*Vendor, error) {
	if err := s.gate.Require(ctx, shared.PermVendorsCreate); err != nil {
		return nil, err
	}
	req.Code = strings.TrimSpace(req.Code)
	req.Name = strings.TrimSpace(req.Name)
	if err := s.validate.Struct(req); err != nil {
		return nil, shared.ValidationError(err)
	}
	if req.Status == "" {
		req.Status = "active"
	}
	created, err := s.repo.Create(ctx, Vendor{
		Code:   req.Code,
		Name:   req.Name,
		Email:  strings.TrimSpace(req.Email),
		Phone:  strings.TrimSpace(req.Phone),
		Status: req.Status,
	})
	if err != nil {
		return nil, err
	}
	s.audit.Observe(ctx, auditlog.Entry{
		Actor:    shared.ActorFromContext(ctx),
		Action:   "create",
		Entity:   "vendor",
		EntityID: strconv.FormatInt(created.ID, 10),
		Meta:     map[string]any{"code": created.Code},
	})
	s.logger.Info("vendor created", slog.Int64("id", created.ID), slog.String("code", created.Code))
	return created, nil
}

// Update applies a partial update to an existing vendor.
func (s *Service) Update(ctx context.Context, id int64, req UpdateVendorRequest) (*Vendor, error) {
	if err := s.gate.Require(ctx, shared.PermVendorsEdit); err != nil {
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
		current.Email = strings.TrimSpace(*req.Email)
	}
	if req.Phone != nil {
		current.Phone = strings.TrimSpace(*req.Phone)
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
		Entity:   "vendor",
		EntityID: strconv.FormatInt(id, 10),
	})
	return updated, nil
}

// Delete removes a vendor.
func (s *Service) Delete(ctx context.Context, id int64) (*Vendor, error) {
	if err := s.gate.Require(ctx, shared.PermVendorsDelete); err != nil {
		return nil, err
	}
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return nil, err
	}
	s.audit.Observe(ctx, auditlog.Entry{
		Actor:    shared.ActorFromContext(ctx),
		Action:   "delete",
		Entity:   "vendor",
		EntityID: strconv.FormatInt(id, 10),
	})
	return deleted, nil
}
