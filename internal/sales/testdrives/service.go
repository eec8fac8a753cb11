package testdrives

import (
	"context"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/driveline-dms/driveline/internal/auditlog"
	"github.com/driveline-dms/driveline/internal/rbac"
	"github.com/driveline-dms/driveline/internal/shared"
)

// Service owns test drive scheduling rules.
type Service struct {
	logger   *slog.Logger
	repo     Repository
	gate     *rbac.Gate
	audit    *auditlog.Recorder
	validate *validator.Validate
	now      func() time.Time
}

// NewService constructs a Service instance.
func NewService(logger *slog.Logger, repo Repository, gate *rbac.Gate, audit *auditlog.Recorder) *Service {
	return &Service{
		logger:   logger,
		repo:     repo,
		gate:     gate,
		audit:    audit,
		validate: validator.New(),
		now:      time.Now,
	}
}

// WithClock overrides the time source, for tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// List returns a page of test drives and the unpaged total.
func (s *Service) List(ctx context.Context, filter Filter, page shared.ListParams) ([]TestDrive, int, error) {
	return s.repo.List(ctx, filter, page.Clamp())
}

// Get fetches a single test drive.
func (s *Service) Get(ctx context.Context, id int64) (*TestDrive, error) {
	return s.repo.Get(ctx, id)
}

// Create books a test drive in the future.
func (s *Service) Create(ctx context.Context, req CreateTestDriveRequest) (*TestDrive, error) {
	if err := s.gate.Require(ctx, shared.PermSalesCreate); err != nil {
		return nil, err
	}
	req.Vehicle = strings.TrimSpace(req.Vehicle)
	if err := s.validate.Struct(req); err != nil {
		return nil, shared.ValidationError(err)
	}
	if !req.ScheduledAt.After(s.now()) {
		return nil, shared.Invalidf("test drives must be scheduled in the future")
	}
	created, err := s.repo.Create(ctx, TestDrive{
		CustomerID:  req.CustomerID,
		Vehicle:     req.Vehicle,
		ScheduledAt: req.ScheduledAt,
		Status:      "scheduled",
		Notes:       strings.TrimSpace(req.Notes),
	})
	if err != nil {
		return nil, err
	}
	s.audit.Observe(ctx, auditlog.Entry{
		Actor:    shared.ActorFromContext(ctx),
		Action:   "create",
		Entity:   "test_drive",
		EntityID: strconv.FormatInt(created.ID, 10),
		Meta:     map[string]any{"customer_id": created.CustomerID, "vehicle": created.Vehicle},
	})
	s.logger.Info("test drive booked",
		slog.Int64("id", created.ID),
		slog.Time("scheduled_at", created.ScheduledAt))
	return created, nil
}

// Update reschedules or closes out a test drive.
func (s *Service) Update(ctx context.Context, id int64, req UpdateTestDriveRequest) (*TestDrive, error) {
	if err := s.gate.Require(ctx, shared.PermSalesEdit); err != nil {
		return nil, err
	}
	if err := s.validate.Struct(req); err != nil {
		return nil, shared.ValidationError(err)
	}
	current, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Vehicle != nil {
		trimmed := strings.TrimSpace(*req.Vehicle)
		if trimmed == "" {
			return nil, shared.Invalidf("vehicle must not be blank")
		}
		current.Vehicle = trimmed
	}
	if req.ScheduledAt != nil {
		if current.Status != "scheduled" {
			return nil, shared.Invalidf("only scheduled test drives can be rescheduled")
		}
		if !req.ScheduledAt.After(s.now()) {
			return nil, shared.Invalidf("test drives must be scheduled in the future")
		}
		current.ScheduledAt = *req.ScheduledAt
	}
	if req.Status != nil {
		current.Status = *req.Status
	}
	if req.Notes != nil {
		current.Notes = strings.TrimSpace(*req.Notes)
	}
	updated, err := s.repo.Update(ctx, *current)
	if err != nil {
		return nil, err
	}
	s.audit.Observe(ctx, auditlog.Entry{
		Actor:    shared.ActorFromContext(ctx),
		Action:   "update",
		Entity:   "test_drive",
		EntityID: strconv.FormatInt(id, 10),
	})
	return updated, nil
}

// Delete removes a test drive appointment.
func (s *Service) Delete(ctx context.Context, id int64) (*TestDrive, error) {
	if err := s.gate.Require(ctx, shared.PermSalesDelete); err != nil {
		return nil, err
	}
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return nil, err
	}
	s.audit.Observe(ctx, auditlog.Entry{
		Actor:    shared.ActorFromContext(ctx),
		Action:   "delete",
		Entity:   "test_drive",
		EntityID: strconv.FormatInt(id, 10),
	})
	return deleted, nil
}

// DueBetween returns scheduled drives inside the window. The reminder job
// calls it; no gate, since it never runs on behalf of a request identity.
func (s *Service) DueBetween(ctx context.Context, from, to time.Time) ([]TestDrive, error) {
	return s.repo.DueBetween(ctx, from, to)
}
