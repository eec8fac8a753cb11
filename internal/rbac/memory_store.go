package rbac

import (
	"context"
	"sync"
	"time"
)

// MemoryAssignmentStore is an in-process AssignmentStore used by tests and by
// single-node deployments that run the static registry without Postgres.
type MemoryAssignmentStore struct {
	mu     sync.RWMutex
	nextID int64
	rows   []Assignment
}

// NewMemoryAssignmentStore constructs an empty in-memory store.
func NewMemoryAssignmentStore() *MemoryAssignmentStore {
	return &MemoryAssignmentStore{nextID: 1}
}

func (s *MemoryAssignmentStore) Assign(_ context.Context, a Assignment) (Assignment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.rows {
		if existing.Identity == a.Identity && existing.Role == a.Role {
			return Assignment{}, ErrDuplicateAssignment
		}
	}
	a.ID = s.nextID
	s.nextID++
	a.CreatedAt = time.Now().UTC()
	s.rows = append(s.rows, a)
	return a, nil
}

func (s *MemoryAssignmentStore) Get(_ context.Context, id int64) (Assignment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, a := range s.rows {
		if a.ID == id {
			return a, nil
		}
	}
	return Assignment{}, ErrAssignmentNotFound
}

func (s *MemoryAssignmentStore) Revoke(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, a := range s.rows {
		if a.ID == id {
			s.rows = append(s.rows[:i], s.rows[i+1:]...)
			return nil
		}
	}
	return ErrAssignmentNotFound
}

func (s *MemoryAssignmentStore) RolesForIdentity(_ context.Context, identity string) ([]Assignment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Assignment, 0)
	for _, a := range s.rows {
		if a.Identity == identity {
			out = append(out, a)
		}
	}
	return out, nil
}
