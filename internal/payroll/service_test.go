package payroll_test

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/driveline-dms/driveline/internal/payroll"
	"github.com/driveline-dms/driveline/internal/platform/httpx"
	"github.com/driveline-dms/driveline/internal/rbac"
	"github.com/driveline-dms/driveline/internal/shared"
)

type memoryRepo struct {
	nextID int64
	items  []payroll.Record
}

func (m *memoryRepo) List(_ context.Context, filter payroll.Filter, page shared.ListParams) ([]payroll.Record, int, error) {
	matched := make([]payroll.Record, 0, len(m.items))
	for _, rec := range m.items {
		if filter.EmployeeID > 0 && rec.EmployeeID != filter.EmployeeID {
			continue
		}
		if filter.Period != "" && rec.Period != filter.Period {
			continue
		}
		matched = append(matched, rec)
	}
	total := len(matched)
	if page.Offset >= total {
		return nil, total, nil
	}
	end := page.Offset + page.Limit
	if end > total {
		end = total
	}
	return matched[page.Offset:end], total, nil
}

func (m *memoryRepo) Get(_ context.Context, id int64) (*payroll.Record, error) {
	for i := range m.items {
		if m.items[i].ID == id {
			rec := m.items[i]
			return &rec, nil
		}
	}
	return nil, fmt.Errorf("%w: payroll record %d", httpx.ErrNotFound, id)
}

func (m *memoryRepo) Create(_ context.Context, rec payroll.Record) (*payroll.Record, error) {
	for _, existing := range m.items {
		if existing.EmployeeID == rec.EmployeeID && existing.Period == rec.Period {
			return nil, fmt.Errorf("%w: payroll for employee %d in %s", httpx.ErrDuplicate, rec.EmployeeID, rec.Period)
		}
	}
	m.nextID++
	rec.ID = m.nextID
	rec.CreatedAt = time.Now()
	rec.UpdatedAt = rec.CreatedAt
	m.items = append(m.items, rec)
	return &rec, nil
}

func (m *memoryRepo) Update(_ context.Context, rec payroll.Record) (*payroll.Record, error) {
	for i := range m.items {
		if m.items[i].ID == rec.ID {
			rec.UpdatedAt = time.Now()
			m.items[i] = rec
			return &rec, nil
		}
	}
	return nil, fmt.Errorf("%w: payroll record %d", httpx.ErrNotFound, rec.ID)
}

func (m *memoryRepo) Delete(_ context.Context, id int64) (*payroll.Record, error) {
	for i := range m.items {
		if m.items[i].ID == id {
			deleted := m.items[i]
			m.items = append(m.items[:i], m.items[i+1:]...)
			return &deleted, nil
		}
	}
	return nil, fmt.Errorf("%w: payroll record %d", httpx.ErrNotFound, id)
}

func newTestService(t *testing.T) *payroll.Service {
	t.Helper()
	store := rbac.NewMemoryAssignmentStore()
	registry := rbac.NewStaticRegistryWithTable(map[string][]string{
		"HR": {"payroll.*"},
	})
	_, err := store.Assign(context.Background(), rbac.Assignment{Identity: "9", Role: "HR"})
	require.NoError(t, err)

	gate := rbac.NewGate(rbac.NewAggregator(store, registry))
	return payroll.NewService(slog.Default(), &memoryRepo{}, gate, nil)
}

func asHR() context.Context {
	return shared.ContextWithActor(context.Background(), "9")
}

func TestCreateDerivesNetSalary(t *testing.T) {
	svc := newTestService(t)

	created, err := svc.Create(asHR(), payroll.CreateRecordRequest{
		EmployeeID: 4, Period: "2026-08", BaseSalary: 500000, Allowances: 50000, Deductions: 75000,
	})
	require.NoError(t, err)
	require.Equal(t, int64(475000), created.NetSalary)
	require.Equal(t, "draft", created.Status)
}

func TestUpdateRecomputesNetSalary(t *testing.T) {
	svc := newTestService(t)

	created, err := svc.Create(asHR(), payroll.CreateRecordRequest{
		EmployeeID: 4, Period: "2026-08", BaseSalary: 500000,
	})
	require.NoError(t, err)
	require.Equal(t, int64(500000), created.NetSalary)

	deductions := int64(120000)
	updated, err := svc.Update(asHR(), created.ID, payroll.UpdateRecordRequest{Deductions: &deductions})
	require.NoError(t, err)
	require.Equal(t, int64(380000), updated.NetSalary)
}

func TestNetSalaryCannotGoNegative(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.Create(asHR(), payroll.CreateRecordRequest{
		EmployeeID: 4, Period: "2026-08", BaseSalary: 1000, Deductions: 5000,
	})
	require.True(t, errors.Is(err, httpx.ErrValidation))
}

func TestOneRecordPerEmployeePeriod(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.Create(asHR(), payroll.CreateRecordRequest{
		EmployeeID: 4, Period: "2026-08", BaseSalary: 500000,
	})
	require.NoError(t, err)

	_, err = svc.Create(asHR(), payroll.CreateRecordRequest{
		EmployeeID: 4, Period: "2026-08", BaseSalary: 600000,
	})
	require.True(t, errors.Is(err, httpx.ErrDuplicate))
}

func TestPeriodFormat(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.Create(asHR(), payroll.CreateRecordRequest{
		EmployeeID: 4, Period: "2026-13", BaseSalary: 500000,
	})
	require.True(t, errors.Is(err, httpx.ErrValidation))

	_, err = svc.Create(asHR(), payroll.CreateRecordRequest{
		EmployeeID: 4, Period: "08-2026", BaseSalary: 500000,
	})
	require.True(t, errors.Is(err, httpx.ErrValidation))
}

func TestPaidRecordsAreFrozen(t *testing.T) {
	svc := newTestService(t)

	created, err := svc.Create(asHR(), payroll.CreateRecordRequest{
		EmployeeID: 4, Period: "2026-08", BaseSalary: 500000,
	})
	require.NoError(t, err)

	paid := "paid"
	_, err = svc.Update(asHR(), created.ID, payroll.UpdateRecordRequest{Status: &paid})
	require.NoError(t, err)

	base := int64(900000)
	_, err = svc.Update(asHR(), created.ID, payroll.UpdateRecordRequest{BaseSalary: &base})
	require.True(t, errors.Is(err, httpx.ErrValidation))

	_, err = svc.Delete(asHR(), created.ID)
	require.True(t, errors.Is(err, httpx.ErrValidation))
}

func TestPayrollMutationsAreGated(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.Create(context.Background(), payroll.CreateRecordRequest{
		EmployeeID: 4, Period: "2026-08", BaseSalary: 500000,
	})
	require.True(t, errors.Is(err, httpx.ErrUnauthenticated))
}
