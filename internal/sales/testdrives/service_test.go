package testdrives_test

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
	"github.com/driveline-dms/driveline/internal/sales/testdrives"
	"github.com/driveline-dms/driveline/internal/shared"
)

type memoryRepo struct {
	nextID int64
	items  []testdrives.TestDrive
}

func (m *memoryRepo) List(_ context.Context, filter testdrives.Filter, page shared.ListParams) ([]testdrives.TestDrive, int, error) {
	matched := make([]testdrives.TestDrive, 0, len(m.items))
	for _, td := range m.items {
		if filter.Status != "" && td.Status != filter.Status {
			continue
		}
		matched = append(matched, td)
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

func (m *memoryRepo) Get(_ context.Context, id int64) (*testdrives.TestDrive, error) {
	for i := range m.items {
		if m.items[i].ID == id {
			td := m.items[i]
			return &td, nil
		}
	}
	return nil, fmt.Errorf("%w: test drive %d", httpx.ErrNotFound, id)
}

func (m *memoryRepo) Create(_ context.Context, td testdrives.TestDrive) (*testdrives.TestDrive, error) {
	m.nextID++
	td.ID = m.nextID
	td.CreatedAt = time.Now()
	td.UpdatedAt = td.CreatedAt
	m.items = append(m.items, td)
	return &td, nil
}

func (m *memoryRepo) Update(_ context.Context, td testdrives.TestDrive) (*testdrives.TestDrive, error) {
	for i := range m.items {
		if m.items[i].ID == td.ID {
			td.UpdatedAt = time.Now()
			m.items[i] = td
			return &td, nil
		}
	}
	return nil, fmt.Errorf("%w: test drive %d", httpx.ErrNotFound, td.ID)
}

func (m *memoryRepo) Delete(_ context.Context, id int64) (*testdrives.TestDrive, error) {
	for i := range m.items {
		if m.items[i].ID == id {
			deleted := m.items[i]
			m.items = append(m.items[:i], m.items[i+1:]...)
			return &deleted, nil
		}
	}
	return nil, fmt.Errorf("%w: test drive %d", httpx.ErrNotFound, id)
}

func (m *memoryRepo) DueBetween(_ context.Context, from, to time.Time) ([]testdrives.TestDrive, error) {
	var out []testdrives.TestDrive
	for _, td := range m.items {
		if td.Status == "scheduled" && !td.ScheduledAt.Before(from) && td.ScheduledAt.Before(to) {
			out = append(out, td)
		}
	}
	return out, nil
}

var testClock = time.Date(2026, 8, 31, 9, 0, 0, 0, time.UTC)

func newTestService(t *testing.T) (*testdrives.Service, *memoryRepo) {
	t.Helper()
	store := rbac.NewMemoryAssignmentStore()
	registry := rbac.NewStaticRegistryWithTable(map[string][]string{
		"Floor": {"sales.*"},
	})
	_, err := store.Assign(context.Background(), rbac.Assignment{Identity: "8", Role: "Floor"})
	require.NoError(t, err)

	gate := rbac.NewGate(rbac.NewAggregator(store, registry))
	repo := &memoryRepo{}
	svc := testdrives.NewService(slog.Default(), repo, gate, nil).
		WithClock(func() time.Time { return testClock })
	return svc, repo
}

func asFloor() context.Context {
	return shared.ContextWithActor(context.Background(), "8")
}

func TestBookTestDrive(t *testing.T) {
	svc, _ := newTestService(t)

	created, err := svc.Create(asFloor(), testdrives.CreateTestDriveRequest{
		CustomerID: 3, Vehicle: "2026 Falcon GT", ScheduledAt: testClock.Add(48 * time.Hour),
	})
	require.NoError(t, err)
	require.Equal(t, "scheduled", created.Status)
}

func TestBookingInThePastFails(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Create(asFloor(), testdrives.CreateTestDriveRequest{
		CustomerID: 3, Vehicle: "2026 Falcon GT", ScheduledAt: testClock.Add(-time.Hour),
	})
	require.True(t, errors.Is(err, httpx.ErrValidation))
}

func TestRescheduleOnlyScheduledDrives(t *testing.T) {
	svc, _ := newTestService(t)

	created, err := svc.Create(asFloor(), testdrives.CreateTestDriveRequest{
		CustomerID: 3, Vehicle: "2026 Falcon GT", ScheduledAt: testClock.Add(24 * time.Hour),
	})
	require.NoError(t, err)

	completed := "completed"
	_, err = svc.Update(asFloor(), created.ID, testdrives.UpdateTestDriveRequest{Status: &completed})
	require.NoError(t, err)

	later := testClock.Add(72 * time.Hour)
	_, err = svc.Update(asFloor(), created.ID, testdrives.UpdateTestDriveRequest{ScheduledAt: &later})
	require.True(t, errors.Is(err, httpx.ErrValidation))
}

func TestDueBetweenFindsScheduledDrives(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Create(asFloor(), testdrives.CreateTestDriveRequest{
		CustomerID: 3, Vehicle: "Falcon GT", ScheduledAt: testClock.Add(20 * time.Hour),
	})
	require.NoError(t, err)
	_, err = svc.Create(asFloor(), testdrives.CreateTestDriveRequest{
		CustomerID: 4, Vehicle: "Roadster S", ScheduledAt: testClock.Add(80 * time.Hour),
	})
	require.NoError(t, err)

	due, err := svc.DueBetween(context.Background(), testClock, testClock.Add(24*time.Hour))
	require.NoError(t, err)
	require.Len(t, due, 1)
	require.Equal(t, "Falcon GT", due[0].Vehicle)
}

func TestTestDriveMutationsAreGated(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Create(context.Background(), testdrives.CreateTestDriveRequest{
		CustomerID: 3, Vehicle: "Falcon GT", ScheduledAt: testClock.Add(time.Hour),
	})
	require.True(t, errors.Is(err, httpx.ErrUnauthenticated))
}
