package bookings_test

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
	"github.com/driveline-dms/driveline/internal/sales/bookings"
	"github.com/driveline-dms/driveline/internal/shared"
)

type memoryRepo struct {
	nextID int64
	items  []bookings.Booking
}

func (m *memoryRepo) List(_ context.Context, filter bookings.Filter, page shared.ListParams) ([]bookings.Booking, int, error) {
	matched := make([]bookings.Booking, 0, len(m.items))
	for _, b := range m.items {
		if filter.Status != "" && b.Status != filter.Status {
			continue
		}
		matched = append(matched, b)
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

func (m *memoryRepo) Get(_ context.Context, id int64) (*bookings.Booking, error) {
	for i := range m.items {
		if m.items[i].ID == id {
			b := m.items[i]
			return &b, nil
		}
	}
	return nil, fmt.Errorf("%w: booking %d", httpx.ErrNotFound, id)
}

func (m *memoryRepo) Create(_ context.Context, b bookings.Booking) (*bookings.Booking, error) {
	m.nextID++
	b.ID = m.nextID
	b.CreatedAt = time.Now()
	b.UpdatedAt = b.CreatedAt
	m.items = append(m.items, b)
	return &b, nil
}

func (m *memoryRepo) Update(_ context.Context, b bookings.Booking) (*bookings.Booking, error) {
	for i := range m.items {
		if m.items[i].ID == b.ID {
			b.UpdatedAt = time.Now()
			m.items[i] = b
			return &b, nil
		}
	}
	return nil, fmt.Errorf("%w: booking %d", httpx.ErrNotFound, b.ID)
}

func (m *memoryRepo) Delete(_ context.Context, id int64) (*bookings.Booking, error) {
	for i := range m.items {
		if m.items[i].ID == id {
			deleted := m.items[i]
			m.items = append(m.items[:i], m.items[i+1:]...)
			return &deleted, nil
		}
	}
	return nil, fmt.Errorf("%w: booking %d", httpx.ErrNotFound, id)
}

func newTestService(t *testing.T) *bookings.Service {
	t.Helper()
	store := rbac.NewMemoryAssignmentStore()
	registry := rbac.NewStaticRegistryWithTable(map[string][]string{
		"Floor": {"sales.*"},
	})
	_, err := store.Assign(context.Background(), rbac.Assignment{Identity: "8", Role: "Floor"})
	require.NoError(t, err)

	gate := rbac.NewGate(rbac.NewAggregator(store, registry))
	return bookings.NewService(slog.Default(), &memoryRepo{}, gate, nil)
}

func asFloor() context.Context {
	return shared.ContextWithActor(context.Background(), "8")
}

func TestCreateBooking(t *testing.T) {
	svc := newTestService(t)

	created, err := svc.Create(asFloor(), bookings.CreateBookingRequest{
		CustomerID: 3, Vehicle: "2026 Falcon GT", VIN: "1hgcm82633a004352",
		Price: 4500000, Deposit: 500000,
	})
	require.NoError(t, err)
	require.Equal(t, "pending", created.Status)
	require.Equal(t, "1HGCM82633A004352", created.VIN)
}

func TestDepositCannotExceedPrice(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.Create(asFloor(), bookings.CreateBookingRequest{
		CustomerID: 3, Vehicle: "2026 Falcon GT", Price: 100000, Deposit: 200000,
	})
	require.True(t, errors.Is(err, httpx.ErrValidation))

	created, err := svc.Create(asFloor(), bookings.CreateBookingRequest{
		CustomerID: 3, Vehicle: "2026 Falcon GT", Price: 100000, Deposit: 50000,
	})
	require.NoError(t, err)

	deposit := int64(150000)
	_, err = svc.Update(asFloor(), created.ID, bookings.UpdateBookingRequest{Deposit: &deposit})
	require.True(t, errors.Is(err, httpx.ErrValidation))
}

func TestCancelledBookingsAreFrozen(t *testing.T) {
	svc := newTestService(t)

	created, err := svc.Create(asFloor(), bookings.CreateBookingRequest{
		CustomerID: 3, Vehicle: "Roadster S", Price: 2000000,
	})
	require.NoError(t, err)

	cancelled := "cancelled"
	_, err = svc.Update(asFloor(), created.ID, bookings.UpdateBookingRequest{Status: &cancelled})
	require.NoError(t, err)

	price := int64(1500000)
	_, err = svc.Update(asFloor(), created.ID, bookings.UpdateBookingRequest{Price: &price})
	require.True(t, errors.Is(err, httpx.ErrValidation))
}

func TestInvalidVIN(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.Create(asFloor(), bookings.CreateBookingRequest{
		CustomerID: 3, Vehicle: "Falcon GT", VIN: "too-short", Price: 100000,
	})
	require.True(t, errors.Is(err, httpx.ErrValidation))
}

func TestBookingMutationsAreGated(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.Create(context.Background(), bookings.CreateBookingRequest{
		CustomerID: 3, Vehicle: "Falcon GT", Price: 100000,
	})
	require.True(t, errors.Is(err, httpx.ErrUnauthenticated))
}
