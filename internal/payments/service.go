package payments

import (
	"context"
	"log/slog"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/driveline-dms/driveline/internal/auditlog"
	"github.com/driveline-dms/driveline/internal/rbac"
	"github.com/driveline-dms/driveline/internal/shared"
)

// Notifier receives a human-readable message when a payment lands. The
// notifications module implements it; tests stub it.
type Notifier interface {
	Notify(ctx context.Context, recipient, subject, body string) error
}

// Service owns payment business rules.
type Service struct {
	logger   *slog.Logger
	repo     Repository
	gate     *rbac.Gate
	audit    *auditlog.Recorder
	notifier Notifier
	validate *validator.Validate
	printer  *message.Printer
}

// NewService constructs a Service instance.
func NewService(logger *slog.Logger, repo Repository, gate *rbac.Gate, audit *auditlog.Recorder, notifier Notifier) *Service {
	return &Service{
		logger:   logger,
		repo:     repo,
		gate:     gate,
		audit:    audit,
		notifier: notifier,
		validate: validator.New(),
		printer:  message.NewPrinter(language.English),
	}
}

// FormatAmount renders integer cents as a grouped decimal string, e.g.
// 1234500 -> "12,345.00".
func (s *Service) FormatAmount(amount int64) string {
	return s.printer.Sprintf("%d.%02d", amount/100, amount%100)
}

// List returns a page of payments and the unpaged total.
func (s *Service) List(ctx context.Context, filter Filter, page shared.ListParams) ([]Payment, int, error) {
	return s.repo.List(ctx, filter, page.Clamp())
}

// Get fetches a single payment.
func (s *Service) Get(ctx context.Context, id int64) (*Payment, error) {
	return s.repo.Get(ctx, id)
}

// Create records a payment and notifies the customer.
func (s *Service) Create(ctx context.Context, req CreatePaymentRequest) (*Payment, error) {
	if err := s.gate.Require(ctx, shared.PermPaymentsCreate); err != nil {
		return nil, err
	}
	req.Reference = strings.TrimSpace(req.Reference)
	if err := s.validate.Struct(req); err != nil {
		return nil, shared.ValidationError(err)
	}
	if req.Currency == "" {
		req.Currency = "USD"
	}
	created, err := s.repo.Create(ctx, Payment{
		CustomerID: req.CustomerID,
		Amount:     req.Amount,
		Currency:   req.Currency,
		Method:     req.Method,
		Reference:  req.Reference,
		Status:     "completed",
		Notes:      strings.TrimSpace(req.Notes),
	})
	if err != nil {
		return nil, err
	}
	if s.notifier != nil {
		body := s.printer.Sprintf("We received your %s payment of %s %s (ref %s). Thank you.",
			created.Method, created.Currency, s.FormatAmount(created.Amount), created.Reference)
		if err := s.notifier.Notify(ctx, strconv.FormatInt(created.CustomerID, 10), "Payment received", body); err != nil {
			s.logger.Error("payment notification", slog.Any("error", err), slog.Int64("payment_id", created.ID))
		}
	}
	s.audit.Observe(ctx, auditlog.Entry{
		Actor:    shared.ActorFromContext(ctx),
		Action:   "create",
		Entity:   "payment",
		EntityID: strconv.FormatInt(created.ID, 10),
		Meta:     map[string]any{"amount": created.Amount, "reference": created.Reference},
	})
	s.logger.Info("payment recorded",
		slog.Int64("id", created.ID),
		slog.Int64("customer_id", created.CustomerID),
		slog.Int64("amount", created.Amount))
	return created, nil
}

// Update changes the status or notes of a payment. The amount never changes.
func (s *Service) Update(ctx context.Context, id int64, req UpdatePaymentRequest) (*Payment, error) {
	if err := s.gate.Require(ctx, shared.PermPaymentsEdit); err != nil {
		return nil, err
	}
	if err := s.validate.Struct(req); err != nil {
		return nil, shared.ValidationError(err)
	}
	current, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
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
		Entity:   "payment",
		EntityID: strconv.FormatInt(id, 10),
	})
	return updated, nil
}

// Delete removes a payment record.
func (s *Service) Delete(ctx context.Context, id int64) (*Payment, error) {
	if err := s.gate.Require(ctx, shared.PermPaymentsDelete); err != nil {
		return nil, err
	}
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return nil, err
	}
	s.audit.Observe(ctx, auditlog.Entry{
		Actor:    shared.ActorFromContext(ctx),
		Action:   "delete",
		Entity:   "payment",
		EntityID: strconv.FormatInt(id, 10),
	})
	return deleted, nil
}
