package deliveries

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

// BookingChecker answers whether a booking can take a delivery. The bookings
// module implements it; tests stub it.
type BookingChecker interface {
	BookingConfirmed(ctx context.Context, bookingID int64) (bool, error)
}

// Service owns delivery business rules.
type Service struct {
	logger   *slog.Logger
	repo     Repository
	gate     *rbac.Gate
	audit    *auditlog.Recorder
	bookings BookingChecker
	validate *validator.Validate
}

// NewService constructs a Service instance.
func NewService(logger *slog.Logger, repo Repository, gate *rbac.Gate, audit *auditlog.Recorder, bookings BookingChecker) *Service {
	return &Service{
		logger:   logger,
		repo:     repo,
		gate:     gate,
		audit:    audit,
		bookings: bookings,
		validate: validator.New(),
	}
}

// List returns a page of deliveries and the unpaged total.
func (s *Service) List(ctx context.Context, filter Filter, page shared.ListParams) ([]Delivery, int, error) {
	return s.repo.List(ctx, filter, page.Clamp())
}

// Get fetches a single delivery.
func (s *Service) Get(ctx context.Context, id int64) (*Delivery, error) {
	return s.repo.Get(ctx, id)
}

// Create schedules the delivery for a confirmed booking.
func (s *Service) Create(ctx context.Context, req CreateDeliveryRequest) (*Delivery, error) {
	if err := s.gate.Require(ctx, shared.PermSalesCreate); err != nil {
		return nil, err
	}
	req.Address = strings.TrimSpace(req.Address)
	if err := s.validate.Struct(req); err != nil {
		return nil, shared.ValidationError(err)
	}
	if s.bookings != nil {
		confirmed, err := s.bookings.BookingConfirmed(ctx, req.BookingID)
		if err != nil {
			return nil, err
		}
		if !confirmed {
			return nil, shared.Invalidf("booking %d is not confirmed", req.BookingID)
		}
	}
	created, err := s.repo.Create(ctx, Delivery{
		BookingID:   req.BookingID,
		ScheduledAt: req.ScheduledAt,
		Address:     req.Address,
		Status:      "pending",
		Notes:       strings.TrimSpace(req.Notes),
	})
	if err != nil {
		return nil, err
	}
	s.audit.Observe(ctx, auditlog.Entry{
		Actor:    shared.ActorFromContext(ctx),
		Action:   "create",
		Entity:   "delivery",
		EntityID: strconv.FormatInt(created.ID, 10),
		Meta:     map[string]any{"booking_id": created.BookingID},
	})
	s.logger.Info("delivery scheduled",
		slog.Int64("id", created.ID),
		slog.Int64("booking_id", created.BookingID))
	return created, nil
}

// Update reschedules or progresses a delivery. Delivered ones are final.
func (s *Service) Update(ctx context.Context, id int64, req UpdateDeliveryRequest) (*Delivery, error) {
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
	if current.Status == "delivered" {
		return nil, shared.Invalidf("delivered deliveries cannot change")
	}
	if req.ScheduledAt != nil {
		current.ScheduledAt = *req.ScheduledAt
	}
	if req.Address != nil {
		trimmed := strings.TrimSpace(*req.Address)
		if trimmed == "" {
			return nil, shared.Invalidf("address must not be blank")
		}
		current.Address = trimmed
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
		Entity:   "delivery",
		EntityID: strconv.FormatInt(id, 10),
	})
	return updated, nil
}

// Delete removes a delivery that has not gone out yet.
func (s *Service) Delete(ctx context.Context, id int64) (*Delivery, error) {
	if err := s.gate.Require(ctx, shared.PermSalesDelete); err != nil {
		return nil, err
	}
	current, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.Status == "delivered" {
		return nil, shared.Invalidf("delivered deliveries cannot be deleted")
	}
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return nil, err
	}
	s.audit.Observe(ctx, auditlog.Entry{
		Actor:    shared.ActorFromContext(ctx),
		Action:   "delete",
		Entity:   "delivery",
		EntityID: strconv.FormatInt(id, 10),
	})
	return deleted, nil
}
