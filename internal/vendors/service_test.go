package vendors_test

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/driveline-dms/driveline/internal/platform/httpx"
	"github.com/driveline-dms/driveline/internal/rbac"
	"github.com/driveline-dms/driveline/internal/shared"
	"github.com/driveline-dms/driveline/internal/vendors"
)

type memoryRepo struct {
	nextID int64
	items  []vendors.Vendor
}

func (m *memoryRepo) List(_ context.Context, filter vendors.Filter, page shared.ListParams) ([]vendors.Vendor, int, error) {
	matched := make([]vendors.Vendor, 0, len(m.items))
	for _, v := range m.items {
		if filter.Status != "" && v.Status != filter.Status {
			continue
		}
		matched = append(matched, v)
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

func (m *memoryRepo) Get(_ context.Context, id int64) (*vendors.Vendor, error) {
	for i := range m.items {
		if m.items[i].ID == id {
			v := m.items[i]
			return &v, nil
		}
	}
	return nil, fmt.Errorf("%w: vendor %d", httpx.ErrNotFound, id)
}

func (m *memoryRepo) Create(_ context.Context, v vendors.Vendor) (*vendors.Vendor, error) {
	for _, existing := range m.items {
		if existing.Code == v.Code {
			return nil, fmt.Errorf("%w: vendor code %s", httpx.ErrDuplicate, v.Code)
		}
	}
	m.nextID++
	v.ID = m.nextID
	v.CreatedAt = time.Now()
	v.UpdatedAt = v.CreatedAt
	m.items = append(m.items, v)
	return &v, nil
}

func (m *memoryRepo) Update(_ context.Context, v vendors.Vendor) (*vendors.Vendor, error) {
	for i := range m.items {
		if m.items[i].ID == v.ID {
			v.UpdatedAt = time.Now()
			m.items[i] = v
			return &v, nil
		}
	}
	return nil, fmt.Errorf("%w: vendor %d", httpx.ErrNotFound, v.ID)
}

func (m *memoryRepo) Delete(_ context.Context, id int64) (*vendors.Vendor, error) {
	for i := range m.items {
		if m.items[i].ID == id {
			deleted := m.items[i]
			m.items = append(m.items[:i], m.items[i+1:]...)
			return &deleted, nil
		}
	}
	return nil, fmt.Errorf("%w: vendor %d", httpx.ErrNotFound, id)
}

func newTestService(t *testing.T) (*vendors.Service, *memoryRepo) {
	t.Helper()
	store := rbac.NewMemoryAssignmentStore()
	registry := rbac.NewStaticRegistryWithTable(map[string][]string{
		"Buyer":  {shared.PermVendorsView, shared.PermVendorsCreate, shared.PermVendorsEdit, shared.PermVendorsDelete},
		"Viewer": {shared.PermVendorsView},
	})
	_, err := store.Assign(context.Background(), rbac.Assignment{Identity: "1", Role: "Buyer"})
	require.NoError(t, err)
	_, err = store.Assign(context.Background(), rbac.Assignment{Identity: "2", Role: "Viewer"})
	require.NoError(t, err)

	gate := rbac.NewGate(rbac.NewAggregator(store, registry))
	repo := &memoryRepo{}
	return vendors.NewService(slog.Default(), repo, gate, nil), repo
}

func asBuyer() context.Context {
	return shared.ContextWithActor(context.Background(), "1")
}

func TestCreateVendor(t *testing.T) {
	svc, _ := newTestService(t)

	created, err := svc.Create(asBuyer(), vendors.CreateVendorRequest{Code: " V001 ", Name: "Apex Motors"})
	require.NoError(t, err)
	require.Equal(t, "V001", created.Code)
	require.Equal(t, "active", created.Status)
	require.NotZero(t, created.ID)
}

func TestCreateVendorRejectsDuplicateCode(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Create(asBuyer(), vendors.CreateVendorRequest{Code: "V001", Name: "Apex Motors"})
	require.NoError(t, err)

	_, err = svc.Create(asBuyer(), vendors.CreateVendorRequest{Code: "V001", Name: "Shadow Apex"})
	require.True(t, errors.Is(err, httpx.ErrDuplicate))
}

func TestCreateVendorValidation(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Create(asBuyer(), vendors.CreateVendorRequest{Code: "   ", Name: "No Code"})
	require.True(t, errors.Is(err, httpx.ErrValidation))

	_, err = svc.Create(asBuyer(), vendors.CreateVendorRequest{Code: "V002", Name: "Bad Mail", Email: "nope"})
	require.True(t, errors.Is(err, httpx.ErrValidation))
}

func TestMutationsAreGated(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Create(context.Background(), vendors.CreateVendorRequest{Code: "V003", Name: "Anon"})
	require.True(t, errors.Is(err, httpx.ErrUnauthenticated))

	viewer := shared.ContextWithActor(context.Background(), "2")
	_, err = svc.Create(viewer, vendors.CreateVendorRequest{Code: "V003", Name: "Viewer"})
	require.True(t, errors.Is(err, httpx.ErrUnauthorized))

	_, err = svc.Delete(viewer, 1)
	require.True(t, errors.Is(err, httpx.ErrUnauthorized))
}

func TestUpdateVendorPartial(t *testing.T) {
	svc, _ := newTestService(t)

	created, err := svc.Create(asBuyer(), vendors.CreateVendorRequest{Code: "V004", Name: "Old Name", Phone: "555-1000"})
	require.NoError(t, err)

	name := "New Name"
	updated, err := svc.Update(asBuyer(), created.ID, vendors.UpdateVendorRequest{Name: &name})
	require.NoError(t, err)
	require.Equal(t, "New Name", updated.Name)
	require.Equal(t, "555-1000", updated.Phone)

	blank := "   "
	_, err = svc.Update(asBuyer(), created.ID, vendors.UpdateVendorRequest{Name: &blank})
	require.True(t, errors.Is(err, httpx.ErrValidation))
}

func TestDeleteVendorNotFound(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Delete(asBuyer(), 404)
	require.True(t, errors.Is(err, httpx.ErrNotFound))
}

func TestDeleteReturnsVendorAndRemovesIt(t *testing.T) {
	svc, _ := newTestService(t)

	created, err := svc.Create(asBuyer(), vendors.CreateVendorRequest{Code: "V005", Name: "Gone Soon"})
	require.NoError(t, err)

	deleted, err := svc.Delete(asBuyer(), created.ID)
	require.NoError(t, err)
	require.Equal(t, created.ID, deleted.ID)
	require.Equal(t, "V005", deleted.Code)

	_, err = svc.Get(asBuyer(), created.ID)
	require.True(t, errors.Is(err, httpx.ErrNotFound))
}

func TestListClampsPagination(t *testing.T) {
	svc, _ := newTestService(t)

	for i := 0; i < 15; i++ {
		_, err := svc.Create(asBuyer(), vendors.CreateVendorRequest{
			Code: fmt.Sprintf("V%03d", i), Name: fmt.Sprintf("Vendor %d", i),
		})
		require.NoError(t, err)
	}

	items, total, err := svc.List(asBuyer(), vendors.Filter{}, shared.ListParams{Limit: 0, Offset: -3})
	require.NoError(t, err)
	require.Equal(t, 15, total)
	require.Len(t, items, shared.DefaultLimit)
}
