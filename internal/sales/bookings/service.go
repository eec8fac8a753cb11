package bookings

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/driveline-dms/driveline/internal/auditlog"
	"github.com/driveline-dms/driveline/internal/platform/httpx"
	"github.com/driveline-dms/driveline/internal/rbac"
	"github.com/driveline-dms/driveline/internal/shared"
)

// Service owns booking business rules. The deposit can never exceed the
// agreed price.
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

// List returns a page of bookings and the unpaged total.
func (s *Service) List(ctx context.Context, filter Filter, page shared.ListParams) ([]Booking, int, error) {
	return s.repo.List(ctx, filter, page.Clamp())
}

// Get fetches a single booking.
func (s *Service) Get(ctx context.Context, id int64) (*Booking, error) {
	return s.repo.Get(ctx, id)
}

// Create reserves a vehicle for a customer.
func (s *Service) Create(ctx context.Context, req CreateBookingRequest) (*Booking, error) {
	if err := s.gate.Require(ctx, shared.PermSalesCreate); err != nil {
		return nil, err
	}
	req.Vehicle = strings.TrimSpace(req.Vehicle)
	req.VIN = strings.ToUpper(strings.TrimSpace(req.VIN))
	if err := s.validate.Struct(req); err != nil {
		return nil, shared.ValidationError(err)
	}
	if req.Deposit > req.Price {
		return nil, shared.Invalidf("deposit cannot exceed price")
	}
	created, err := s.repo.Create(ctx, Booking{
		CustomerID: req.CustomerID,
		Vehicle:    req.Vehicle,
		VIN:        req.VIN,
		Price:      req.Price,
		Deposit:    req.Deposit,
		Status:     "pending",
	})
	if err != nil {
		return nil, err
	}
	s.audit.Observe(ctx, auditlog.Entry{
		Actor:    shared.ActorFromContext(ctx),
		Action:   "create",
		Entity:   "booking",
		EntityID: strconv.FormatInt(created.ID, 10),
		Meta:     map[string]any{"customer_id": created.CustomerID, "vehicle": created.Vehicle},
	})
	s.logger.Info("booking created",
		slog.Int64("id", created.ID),
		slog.Int64("customer_id", created.CustomerID))
	return created, nil
}

// Update amends a booking. Cancelled bookings are frozen.
func (s *Service) Update(ctx context.Context, id int64, req UpdateBookingRequest) (*Booking, error) {
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
	if current.Status == "cancelled" {
		return nil, shared.Invalidf("cancelled bookings cannot change")
	}
	if req.Vehicle != nil {
		trimmed := strings.TrimSpace(*req.Vehicle)
		if trimmed == "" {
			return nil, shared.Invalidf("vehicle must not be blank")
		}
		current.Vehicle = trimmed
	}
	if req.VIN != nil {
		current.VIN = strings.ToUpper(strings.TrimSpace(*req.VIN))
	}
	if req.Price != nil {
		current.Price = *req.Price
	}
	if req.Deposit != nil {
		current.Deposit = *req.Deposit
	}
	if current.Deposit > current.Price {
		return nil, shared.Invalidf("deposit cannot exceed price")
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
		Entity:   "booking",
		EntityID: strconv.FormatInt(id, 10),
	})
	return updated, nil
}

// BookingConfirmed reports whether the booking exists and is confirmed. A
// missing booking surfaces as a foreign key failure so delivery scheduling
// maps it consistently.
func (s *Service) BookingConfirmed(ctx context.Context, bookingID int64) (bool, error) {
	b, err := s.repo.Get(ctx, bookingID)
	if err != nil {
		if errors.Is(err, httpx.ErrNotFound) {
			return false, fmt.Errorf("%w: booking %d", httpx.ErrForeignKey, bookingID)
		}
		return false, err
	}
	return b.Status == "confirmed", nil
}

// Delete removes a booking. A booking with a delivery attached stays.
func (s *Service) Delete(ctx context.Context, id int64) (*Booking, error) {
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
		Entity:   "booking",
		EntityID: strconv.FormatInt(id, 10),
	})
	return deleted, nil
}
