package payments_test

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/driveline-dms/driveline/internal/payments"
	"github.com/driveline-dms/driveline/internal/platform/httpx"
	"github.com/driveline-dms/driveline/internal/rbac"
	"github.com/driveline-dms/driveline/internal/shared"
)

type memoryRepo struct {
	nextID    int64
	customers map[int64]bool
	items     []payments.Payment
}

func (m *memoryRepo) List(_ context.Context, filter payments.Filter, page shared.ListParams) ([]payments.Payment, int, error) {
	matched := make([]payments.Payment, 0, len(m.items))
	for _, p := range m.items {
		if filter.CustomerID > 0 && p.CustomerID != filter.CustomerID {
			continue
		}
		if filter.Status != "" && p.Status != filter.Status {
			continue
		}
		matched = append(matched, p)
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

func (m *memoryRepo) Get(_ context.Context, id int64) (*payments.Payment, error) {
	for i := range m.items {
		if m.items[i].ID == id {
			p := m.items[i]
			return &p, nil
		}
	}
	return nil, fmt.Errorf("%w: payment %d", httpx.ErrNotFound, id)
}

func (m *memoryRepo) Create(_ context.Context, p payments.Payment) (*payments.Payment, error) {
	if !m.customers[p.CustomerID] {
		return nil, fmt.Errorf("%w: customer %d", httpx.ErrForeignKey, p.CustomerID)
	}
	for _, existing := range m.items {
		if existing.Reference == p.Reference {
			return nil, fmt.Errorf("%w: payment reference %s", httpx.ErrDuplicate, p.Reference)
		}
	}
	m.nextID++
	p.ID = m.nextID
	p.CreatedAt = time.Now()
	p.UpdatedAt = p.CreatedAt
	m.items = append(m.items, p)
	return &p, nil
}

func (m *memoryRepo) Update(_ context.Context, p payments.Payment) (*payments.Payment, error) {
	for i := range m.items {
		if m.items[i].ID == p.ID {
			p.UpdatedAt = time.Now()
			m.items[i] = p
			return &p, nil
		}
	}
	return nil, fmt.Errorf("%w: payment %d", httpx.ErrNotFound, p.ID)
}

func (m *memoryRepo) Delete(_ context.Context, id int64) (*payments.Payment, error) {
	for i := range m.items {
		if m.items[i].ID == id {
			deleted := m.items[i]
			m.items = append(m.items[:i], m.items[i+1:]...)
			return &deleted, nil
		}
	}
	return nil, fmt.Errorf("%w: payment %d", httpx.ErrNotFound, id)
}

type capturedNote struct {
	recipient, subject, body string
}

type stubNotifier struct {
	sent []capturedNote
}

func (s *stubNotifier) Notify(_ context.Context, recipient, subject, body string) error {
	s.sent = append(s.sent, capturedNote{recipient, subject, body})
	return nil
}

func newTestService(t *testing.T) (*payments.Service, *stubNotifier) {
	t.Helper()
	store := rbac.NewMemoryAssignmentStore()
	registry := rbac.NewStaticRegistryWithTable(map[string][]string{
		"Cashier": {"payments.*"},
	})
	_, err := store.Assign(context.Background(), rbac.Assignment{Identity: "3", Role: "Cashier"})
	require.NoError(t, err)

	gate := rbac.NewGate(rbac.NewAggregator(store, registry))
	repo := &memoryRepo{customers: map[int64]bool{7: true}}
	notifier := &stubNotifier{}
	return payments.NewService(slog.Default(), repo, gate, nil, notifier), notifier
}

func asCashier() context.Context {
	return shared.ContextWithActor(context.Background(), "3")
}

func TestCreatePaymentNotifiesCustomer(t *testing.T) {
	svc, notifier := newTestService(t)

	created, err := svc.Create(asCashier(), payments.CreatePaymentRequest{
		CustomerID: 7, Amount: 1234500, Method: "card", Reference: "PAY-001",
	})
	require.NoError(t, err)
	require.Equal(t, int64(1234500), created.Amount)
	require.Equal(t, "USD", created.Currency)
	require.Equal(t, "completed", created.Status)

	require.Len(t, notifier.sent, 1)
	require.Equal(t, "7", notifier.sent[0].recipient)
	require.Contains(t, notifier.sent[0].body, "12,345.00")
	require.Contains(t, notifier.sent[0].body, "PAY-001")
}

func TestFormatAmountGroupsThousands(t *testing.T) {
	svc, _ := newTestService(t)

	require.Equal(t, "12,345.00", svc.FormatAmount(1234500))
	require.Equal(t, "0.05", svc.FormatAmount(5))
	require.Equal(t, "1,000,000.99", svc.FormatAmount(100000099))
}

func TestCreatePaymentUnknownCustomer(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Create(asCashier(), payments.CreatePaymentRequest{
		CustomerID: 999, Amount: 100, Method: "cash", Reference: "PAY-002",
	})
	require.True(t, errors.Is(err, httpx.ErrForeignKey))
}

func TestCreatePaymentRejectsNonPositiveAmount(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Create(asCashier(), payments.CreatePaymentRequest{
		CustomerID: 7, Amount: 0, Method: "cash", Reference: "PAY-003",
	})
	require.True(t, errors.Is(err, httpx.ErrValidation))

	_, err = svc.Create(asCashier(), payments.CreatePaymentRequest{
		CustomerID: 7, Amount: -500, Method: "cash", Reference: "PAY-004",
	})
	require.True(t, errors.Is(err, httpx.ErrValidation))
}

func TestUpdatePaymentKeepsAmount(t *testing.T) {
	svc, _ := newTestService(t)

	created, err := svc.Create(asCashier(), payments.CreatePaymentRequest{
		CustomerID: 7, Amount: 5000, Method: "cash", Reference: "PAY-005",
	})
	require.NoError(t, err)

	refunded := "refunded"
	updated, err := svc.Update(asCashier(), created.ID, payments.UpdatePaymentRequest{Status: &refunded})
	require.NoError(t, err)
	require.Equal(t, "refunded", updated.Status)
	require.Equal(t, int64(5000), updated.Amount)
}

func TestPaymentMutationsAreGated(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Create(context.Background(), payments.CreatePaymentRequest{
		CustomerID: 7, Amount: 100, Method: "cash", Reference: "PAY-006",
	})
	require.True(t, errors.Is(err, httpx.ErrUnauthenticated))

	stranger := shared.ContextWithActor(context.Background(), "404")
	_, err = svc.Delete(stranger, 1)
	require.True(t, errors.Is(err, httpx.ErrUnauthorized))
}
