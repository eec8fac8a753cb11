package procurement_test

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/driveline-dms/driveline/internal/platform/httpx"
	"github.com/driveline-dms/driveline/internal/procurement"
	"github.com/driveline-dms/driveline/internal/rbac"
	"github.com/driveline-dms/driveline/internal/shared"
)

type memoryRepo struct {
	nextID  int64
	vendors map[int64]bool
	items   []procurement.PurchaseOrder
}

func (m *memoryRepo) List(_ context.Context, filter procurement.Filter, page shared.ListParams) ([]procurement.PurchaseOrder, int, error) {
	matched := make([]procurement.PurchaseOrder, 0, len(m.items))
	for _, po := range m.items {
		if filter.VendorID > 0 && po.VendorID != filter.VendorID {
			continue
		}
		if filter.Status != "" && po.Status != filter.Status {
			continue
		}
		matched = append(matched, po)
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

func (m *memoryRepo) Get(_ context.Context, id int64) (*procurement.PurchaseOrder, error) {
	for i := range m.items {
		if m.items[i].ID == id {
			po := m.items[i]
			return &po, nil
		}
	}
	return nil, fmt.Errorf("%w: purchase order %d", httpx.ErrNotFound, id)
}

func (m *memoryRepo) Create(_ context.Context, po procurement.PurchaseOrder) (*procurement.PurchaseOrder, error) {
	if !m.vendors[po.VendorID] {
		return nil, fmt.Errorf("%w: vendor %d", httpx.ErrForeignKey, po.VendorID)
	}
	for _, existing := range m.items {
		if existing.Number == po.Number {
			return nil, fmt.Errorf("%w: purchase order number %s", httpx.ErrDuplicate, po.Number)
		}
	}
	m.nextID++
	po.ID = m.nextID
	po.CreatedAt = time.Now()
	po.UpdatedAt = po.CreatedAt
	m.items = append(m.items, po)
	return &po, nil
}

func (m *memoryRepo) Update(_ context.Context, po procurement.PurchaseOrder) (*procurement.PurchaseOrder, error) {
	for i := range m.items {
		if m.items[i].ID == po.ID {
			po.UpdatedAt = time.Now()
			m.items[i] = po
			return &po, nil
		}
	}
	return nil, fmt.Errorf("%w: purchase order %d", httpx.ErrNotFound, po.ID)
}

func (m *memoryRepo) Delete(_ context.Context, id int64) (*procurement.PurchaseOrder, error) {
	for i := range m.items {
		if m.items[i].ID == id {
			deleted := m.items[i]
			m.items = append(m.items[:i], m.items[i+1:]...)
			return &deleted, nil
		}
	}
	return nil, fmt.Errorf("%w: purchase order %d", httpx.ErrNotFound, id)
}

func newTestService(t *testing.T) *procurement.Service {
	t.Helper()
	store := rbac.NewMemoryAssignmentStore()
	registry := rbac.NewStaticRegistryWithTable(map[string][]string{
		"Buyer": {"procurement.*"},
	})
	_, err := store.Assign(context.Background(), rbac.Assignment{Identity: "6", Role: "Buyer"})
	require.NoError(t, err)

	gate := rbac.NewGate(rbac.NewAggregator(store, registry))
	repo := &memoryRepo{vendors: map[int64]bool{2: true}}
	return procurement.NewService(slog.Default(), repo, gate, nil)
}

func asBuyer() context.Context {
	return shared.ContextWithActor(context.Background(), "6")
}

func TestCreateOrderDerivesTotal(t *testing.T) {
	svc := newTestService(t)

	created, err := svc.Create(asBuyer(), procurement.CreateOrderRequest{
		Number: "PO-1001", VendorID: 2, Description: "Brake pads", Quantity: 40, UnitCost: 2500,
	})
	require.NoError(t, err)
	require.Equal(t, int64(100000), created.TotalCost)
	require.Equal(t, "draft", created.Status)
}

func TestCreateOrderUnknownVendor(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.Create(asBuyer(), procurement.CreateOrderRequest{
		Number: "PO-1002", VendorID: 99, Description: "Oil filters", Quantity: 10, UnitCost: 900,
	})
	require.True(t, errors.Is(err, httpx.ErrForeignKey))
}

func TestCreateOrderDuplicateNumber(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.Create(asBuyer(), procurement.CreateOrderRequest{
		Number: "PO-1003", VendorID: 2, Description: "Tyres", Quantity: 16, UnitCost: 12000,
	})
	require.NoError(t, err)

	_, err = svc.Create(asBuyer(), procurement.CreateOrderRequest{
		Number: "PO-1003", VendorID: 2, Description: "More tyres", Quantity: 4, UnitCost: 12000,
	})
	require.True(t, errors.Is(err, httpx.ErrDuplicate))
}

func TestStatusTransitions(t *testing.T) {
	svc := newTestService(t)

	created, err := svc.Create(asBuyer(), procurement.CreateOrderRequest{
		Number: "PO-1004", VendorID: 2, Description: "Wiper blades", Quantity: 100, UnitCost: 450,
	})
	require.NoError(t, err)

	received := "received"
	_, err = svc.Update(asBuyer(), created.ID, procurement.UpdateOrderRequest{Status: &received})
	require.True(t, errors.Is(err, httpx.ErrValidation), "draft cannot jump straight to received")

	submitted := "submitted"
	_, err = svc.Update(asBuyer(), created.ID, procurement.UpdateOrderRequest{Status: &submitted})
	require.NoError(t, err)

	updated, err := svc.Update(asBuyer(), created.ID, procurement.UpdateOrderRequest{Status: &received})
	require.NoError(t, err)
	require.Equal(t, "received", updated.Status)

	cancelled := "cancelled"
	_, err = svc.Update(asBuyer(), created.ID, procurement.UpdateOrderRequest{Status: &cancelled})
	require.True(t, errors.Is(err, httpx.ErrValidation), "received orders are final")
}

func TestAmendOnlyDrafts(t *testing.T) {
	svc := newTestService(t)

	created, err := svc.Create(asBuyer(), procurement.CreateOrderRequest{
		Number: "PO-1005", VendorID: 2, Description: "Coolant", Quantity: 20, UnitCost: 1500,
	})
	require.NoError(t, err)

	qty := 30
	updated, err := svc.Update(asBuyer(), created.ID, procurement.UpdateOrderRequest{Quantity: &qty})
	require.NoError(t, err)
	require.Equal(t, int64(45000), updated.TotalCost, "total recomputed on amendment")

	submitted := "submitted"
	_, err = svc.Update(asBuyer(), created.ID, procurement.UpdateOrderRequest{Status: &submitted})
	require.NoError(t, err)

	qty = 50
	_, err = svc.Update(asBuyer(), created.ID, procurement.UpdateOrderRequest{Quantity: &qty})
	require.True(t, errors.Is(err, httpx.ErrValidation))
}

func TestDeleteOnlyDrafts(t *testing.T) {
	svc := newTestService(t)

	created, err := svc.Create(asBuyer(), procurement.CreateOrderRequest{
		Number: "PO-1006", VendorID: 2, Description: "Bulbs", Quantity: 200, UnitCost: 120,
	})
	require.NoError(t, err)

	submitted := "submitted"
	_, err = svc.Update(asBuyer(), created.ID, procurement.UpdateOrderRequest{Status: &submitted})
	require.NoError(t, err)

	_, err = svc.Delete(asBuyer(), created.ID)
	require.True(t, errors.Is(err, httpx.ErrValidation))
}

func TestOrderMutationsAreGated(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.Create(context.Background(), procurement.CreateOrderRequest{
		Number: "PO-1007", VendorID: 2, Description: "Anon", Quantity: 1, UnitCost: 100,
	})
	require.True(t, errors.Is(err, httpx.ErrUnauthenticated))
}
