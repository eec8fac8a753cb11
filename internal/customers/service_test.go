package customers_test

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/driveline-dms/driveline/internal/customers"
	"github.com/driveline-dms/driveline/internal/platform/httpx"
	"github.com/driveline-dms/driveline/internal/rbac"
	"github.com/driveline-dms/driveline/internal/shared"
)

type memoryRepo struct {
	nextID int64
	items  []customers.Customer
}

func (m *memoryRepo) List(_ context.Context, filter customers.Filter, page shared.ListParams) ([]customers.Customer, int, error) {
	matched := make([]customers.Customer, 0, len(m.items))
	for _, c := range m.items {
		if filter.Status != "" && c.Status != filter.Status {
			continue
		}
		matched = append(matched, c)
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

func (m *memoryRepo) Get(_ context.Context, id int64) (*customers.Customer, error) {
	for i := range m.items {
		if m.items[i].ID == id {
			c := m.items[i]
			loyalty := *m.items[i].Loyalty
			c.Loyalty = &loyalty
			return &c, nil
		}
	}
	return nil, fmt.Errorf("%w: customer %d", httpx.ErrNotFound, id)
}

func (m *memoryRepo) Create(_ context.Context, c customers.Customer) (*customers.Customer, error) {
	for _, existing := range m.items {
		if existing.Email == c.Email {
			return nil, fmt.Errorf("%w: customer email %s", httpx.ErrDuplicate, c.Email)
		}
	}
	m.nextID++
	c.ID = m.nextID
	c.Loyalty = &customers.Loyalty{Tier: "bronze", Points: 0}
	c.CreatedAt = time.Now()
	c.UpdatedAt = c.CreatedAt
	m.items = append(m.items, c)
	return m.Get(context.Background(), c.ID)
}

func (m *memoryRepo) Update(_ context.Context, c customers.Customer) (*customers.Customer, error) {
	for i := range m.items {
		if m.items[i].ID == c.ID {
			c.Loyalty = m.items[i].Loyalty
			c.UpdatedAt = time.Now()
			m.items[i] = c
			return m.Get(context.Background(), c.ID)
		}
	}
	return nil, fmt.Errorf("%w: customer %d", httpx.ErrNotFound, c.ID)
}

func (m *memoryRepo) Delete(_ context.Context, id int64) (*customers.Customer, error) {
	for i := range m.items {
		if m.items[i].ID == id {
			deleted := m.items[i]
			m.items = append(m.items[:i], m.items[i+1:]...)
			return &deleted, nil
		}
	}
	return nil, fmt.Errorf("%w: customer %d", httpx.ErrNotFound, id)
}

func (m *memoryRepo) AdjustLoyalty(_ context.Context, id int64, delta int, tier *string) (*customers.Customer, error) {
	for i := range m.items {
		if m.items[i].ID == id {
			if m.items[i].Loyalty.Points+delta < 0 {
				return nil, fmt.Errorf("%w: loyalty balance cannot go negative", httpx.ErrValidation)
			}
			m.items[i].Loyalty.Points += delta
			if tier != nil {
				m.items[i].Loyalty.Tier = *tier
			}
			return m.Get(context.Background(), id)
		}
	}
	return nil, fmt.Errorf("%w: customer %d", httpx.ErrNotFound, id)
}

func newTestService(t *testing.T) *customers.Service {
	t.Helper()
	store := rbac.NewMemoryAssignmentStore()
	registry := rbac.NewStaticRegistryWithTable(map[string][]string{
		"Desk": {"customers.*"},
	})
	_, err := store.Assign(context.Background(), rbac.Assignment{Identity: "5", Role: "Desk"})
	require.NoError(t, err)

	gate := rbac.NewGate(rbac.NewAggregator(store, registry))
	return customers.NewService(slog.Default(), &memoryRepo{}, gate, nil)
}

func asDesk() context.Context {
	return shared.ContextWithActor(context.Background(), "5")
}

func TestCreateCustomerOpensLoyaltyAccount(t *testing.T) {
	svc := newTestService(t)

	created, err := svc.Create(asDesk(), customers.CreateCustomerRequest{
		Name: "Priya Shah", Email: "PRIYA@Example.COM",
	})
	require.NoError(t, err)
	require.Equal(t, "priya@example.com", created.Email)
	require.NotNil(t, created.Loyalty)
	require.Equal(t, "bronze", created.Loyalty.Tier)
	require.Zero(t, created.Loyalty.Points)
}

func TestCreateCustomerRejectsDuplicateEmail(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.Create(asDesk(), customers.CreateCustomerRequest{Name: "A", Email: "dup@example.com"})
	require.NoError(t, err)

	_, err = svc.Create(asDesk(), customers.CreateCustomerRequest{Name: "B", Email: "Dup@Example.com"})
	require.True(t, errors.Is(err, httpx.ErrDuplicate))
}

func TestAdjustLoyalty(t *testing.T) {
	svc := newTestService(t)

	created, err := svc.Create(asDesk(), customers.CreateCustomerRequest{Name: "C", Email: "c@example.com"})
	require.NoError(t, err)

	gold := "gold"
	updated, err := svc.AdjustLoyalty(asDesk(), created.ID, customers.AdjustLoyaltyRequest{
		Delta: 250, Reason: "vehicle purchase", Tier: &gold,
	})
	require.NoError(t, err)
	require.Equal(t, 250, updated.Loyalty.Points)
	require.Equal(t, "gold", updated.Loyalty.Tier)

	_, err = svc.AdjustLoyalty(asDesk(), created.ID, customers.AdjustLoyaltyRequest{
		Delta: -500, Reason: "refund",
	})
	require.True(t, errors.Is(err, httpx.ErrValidation))
}

func TestCustomerMutationsAreGated(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.Create(context.Background(), customers.CreateCustomerRequest{Name: "Anon", Email: "anon@example.com"})
	require.True(t, errors.Is(err, httpx.ErrUnauthenticated))

	stranger := shared.ContextWithActor(context.Background(), "404")
	_, err = svc.Create(stranger, customers.CreateCustomerRequest{Name: "S", Email: "s@example.com"})
	require.True(t, errors.Is(err, httpx.ErrUnauthorized))
}

func TestUpdateCustomerPartial(t *testing.T) {
	svc := newTestService(t)

	created, err := svc.Create(asDesk(), customers.CreateCustomerRequest{
		Name: "Old", Email: "old@example.com", Phone: "555-2000",
	})
	require.NoError(t, err)

	email := "new@example.com"
	updated, err := svc.Update(asDesk(), created.ID, customers.UpdateCustomerRequest{Email: &email})
	require.NoError(t, err)
	require.Equal(t, "new@example.com", updated.Email)
	require.Equal(t, "Old", updated.Name)
	require.Equal(t, "555-2000", updated.Phone)
}
