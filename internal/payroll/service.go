package payroll

import (
	"context"
	"log/slog"
	"regexp"
	"strconv"

	"github.com/go-playground/validator/v10"

	"github.com/driveline-dms/driveline/internal/auditlog"
	"github.com/driveline-dms/driveline/internal/rbac"
	"github.com/driveline-dms/driveline/internal/shared"
)

var periodPattern = regexp.MustCompile(`^\d{4}-(0[1-9]|1[0-2])$`)

// Service owns payroll business rules. Net salary is always derived from
// base, allowances and deductions; it can never be set directly.
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

// List returns a page of payroll records and the unpaged total.
func (s *Service) List(ctx context.Context, filter Filter, page shared.ListParams) ([]Record, int, error) {
	return s.repo.List(ctx, filter, page.Clamp())
}

// Get fetches a single payroll record.
func (s *Service) Get(ctx context.Context, id int64) (*Record, error) {
	return s.repo.Get(ctx, id)
}

// Create drafts a payroll line for an employee and period.
func (s *Service) Create(ctx context.Context, req CreateRecordRequest) (*Record, error) {
	if err := s.gate.Require(ctx, shared.PermPayrollCreate); err != nil {
		return nil, err
	}
	if err := s.validate.Struct(req); err != nil {
		return nil, shared.ValidationError(err)
	}
	if !periodPattern.MatchString(req.Period) {
		return nil, shared.Invalidf("period must be YYYY-MM, got %q", req.Period)
	}
	rec := Record{
		EmployeeID: req.EmployeeID,
		Period:     req.Period,
		BaseSalary: req.BaseSalary,
		Allowances: req.Allowances,
		Deductions: req.Deductions,
		Status:     "draft",
	}
	if rec.Net() < 0 {
		return nil, shared.Invalidf("deductions exceed earnings")
	}
	rec.NetSalary = rec.Net()
	created, err := s.repo.Create(ctx, rec)
	if err != nil {
		return nil, err
	}
	s.audit.Observe(ctx, auditlog.Entry{
		Actor:    shared.ActorFromContext(ctx),
		Action:   "create",
		Entity:   "payroll_record",
		EntityID: strconv.FormatInt(created.ID, 10),
		Meta:     map[string]any{"employee_id": created.EmployeeID, "period": created.Period},
	})
	s.logger.Info("payroll drafted",
		slog.Int64("id", created.ID),
		slog.Int64("employee_id", created.EmployeeID),
		slog.String("period", created.Period))
	return created, nil
}

// Update changes money fields or status and recomputes the net salary.
// Paid records are frozen.
func (s *Service) Update(ctx context.Context, id int64, req UpdateRecordRequest) (*Record, error) {
	if err := s.gate.Require(ctx, shared.PermPayrollEdit); err != nil {
		return nil, err
	}
	if err := s.validate.Struct(req); err != nil {
		return nil, shared.ValidationError(err)
	}
	current, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.Status == "paid" {
		return nil, shared.Invalidf("paid payroll records cannot change")
	}
	if req.BaseSalary != nil {
		current.BaseSalary = *req.BaseSalary
	}
	if req.Allowances != nil {
		current.Allowances = *req.Allowances
	}
	if req.Deductions != nil {
		current.Deductions = *req.Deductions
	}
	if req.Status != nil {
		current.Status = *req.Status
	}
	if current.Net() < 0 {
		return nil, shared.Invalidf("deductions exceed earnings")
	}
	current.NetSalary = current.Net()
	updated, err := s.repo.Update(ctx, *current)
	if err != nil {
		return nil, err
	}
	s.audit.Observe(ctx, auditlog.Entry{
		Actor:    shared.ActorFromContext(ctx),
		Action:   "update",
		Entity:   "payroll_record",
		EntityID: strconv.FormatInt(id, 10),
	})
	return updated, nil
}

// Delete removes a payroll record. Paid records stay on the books.
func (s *Service) Delete(ctx context.Context, id int64) (*Record, error) {
	if err := s.gate.Require(ctx, shared.PermPayrollDelete); err != nil {
		return nil, err
	}
	current, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.Status == "paid" {
		return nil, shared.Invalidf("paid payroll records cannot be deleted")
	}
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return nil, err
	}
	s.audit.Observe(ctx, auditlog.Entry{
		Actor:    shared.ActorFromContext(ctx),
		Action:   "delete",
		Entity:   "payroll_record",
		EntityID: strconv.FormatInt(id, 10),
	})
	return deleted, nil
}
