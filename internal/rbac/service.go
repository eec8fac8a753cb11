package rbac

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/driveline-dms/driveline/internal/platform/httpx"
	"github.com/driveline-dms/driveline/internal/shared"
)

// IdentityChecker answers whether an identity exists in the identity
// provider's store. The RBAC core never interprets the identity itself.
type IdentityChecker interface {
	IdentityExists(ctx context.Context, identity string) (bool, error)
}

// Service orchestrates RBAC management operations: assignments, dynamic role
// administration and permission snapshots. Referential-integrity checks for
// assignments live here so the stores stay storage-agnostic.
type Service struct {
	registry   Registry
	store      AssignmentStore
	agg        *Aggregator
	gate       *Gate
	identities IdentityChecker
	roles      RoleStore // nil when the deployment runs the static table
	logger     *slog.Logger
}

// NewService constructs the RBAC management service. roles may be nil for
// static deployments.
func NewService(registry Registry, store AssignmentStore, agg *Aggregator, gate *Gate, identities IdentityChecker, roles RoleStore, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		registry:   registry,
		store:      store,
		agg:        agg,
		gate:       gate,
		identities: identities,
		roles:      roles,
		logger:     logger,
	}
}

// Gate exposes the authorization gate for consumers wired through the service.
func (s *Service) Gate() *Gate {
	return s.gate
}

// Snapshot is the role/permission view an authenticated client fetches to
// toggle its own affordances.
type Snapshot struct {
	Identity    string       `json:"identity"`
	Roles       []Assignment `json:"roles"`
	Permissions []string     `json:"permissions"`
}

// PermissionSnapshot resolves the identity's roles and effective permissions.
func (s *Service) PermissionSnapshot(ctx context.Context, identity string) (Snapshot, error) {
	assignments, err := s.store.RolesForIdentity(ctx, identity)
	if err != nil {
		return Snapshot{}, err
	}
	perms, err := s.agg.ResolvePermissions(ctx, identity)
	if err != nil {
		return Snapshot{}, err
	}
	return Snapshot{Identity: identity, Roles: assignments, Permissions: perms}, nil
}

// Assign grants a role to an identity. The identity must exist in the
// identity store and the role must be known to the registry; the assignment
// store itself stays ignorant of both.
func (s *Service) Assign(ctx context.Context, identity, role string, branch, department *string) (Assignment, error) {
	if err := s.gate.Require(ctx, shared.PermRBACEdit); err != nil {
		return Assignment{}, err
	}
	identity = strings.TrimSpace(identity)
	if identity == "" {
		return Assignment{}, fmt.Errorf("%w: identity required", httpx.ErrValidation)
	}

	exists, err := s.identities.IdentityExists(ctx, identity)
	if err != nil {
		return Assignment{}, fmt.Errorf("rbac: check identity: %w", err)
	}
	if !exists {
		return Assignment{}, fmt.Errorf("%w: identity %q", httpx.ErrForeignKey, identity)
	}

	if _, err := s.registry.GrantsForRole(ctx, role); err != nil {
		if errors.Is(err, ErrUnknownRole) {
			return Assignment{}, fmt.Errorf("%w: role %q", httpx.ErrForeignKey, role)
		}
		return Assignment{}, err
	}

	created, err := s.store.Assign(ctx, Assignment{
		Identity:   identity,
		Role:       role,
		Branch:     branch,
		Department: department,
	})
	if err != nil {
		return Assignment{}, err
	}

	s.agg.Invalidate(ctx, identity)
	s.logger.Info("role assigned",
		slog.String("identity", identity),
		slog.String("role", role))
	return created, nil
}

// Revoke removes an assignment by id and invalidates the identity's cached
// permission set.
func (s *Service) Revoke(ctx context.Context, assignmentID int64) error {
	if err := s.gate.Require(ctx, shared.PermRBACEdit); err != nil {
		return err
	}
	assignment, err := s.store.Get(ctx, assignmentID)
	if err != nil {
		return err
	}
	if err := s.store.Revoke(ctx, assignmentID); err != nil {
		return err
	}
	s.agg.Invalidate(ctx, assignment.Identity)
	s.logger.Info("role revoked",
		slog.String("identity", assignment.Identity),
		slog.String("role", assignment.Role))
	return nil
}

// RolesForIdentity lists an identity's assignments in insertion order.
func (s *Service) RolesForIdentity(ctx context.Context, identity string) ([]Assignment, error) {
	if err := s.gate.Require(ctx, shared.PermRBACView); err != nil {
		return nil, err
	}
	return s.store.RolesForIdentity(ctx, identity)
}

// Dynamic role administration. Each call is rejected outright on static
// deployments: the compiled table is not editable at runtime.

func (s *Service) roleStore() (RoleStore, error) {
	if s.roles == nil {
		return nil, fmt.Errorf("%w: role registry is static", httpx.ErrMethodNotAllowed)
	}
	return s.roles, nil
}

// ListRoles returns all dynamic roles.
func (s *Service) ListRoles(ctx context.Context) ([]Role, error) {
	if err := s.gate.Require(ctx, shared.PermRBACView); err != nil {
		return nil, err
	}
	store, err := s.roleStore()
	if err != nil {
		return nil, err
	}
	return store.ListRoles(ctx)
}

// CreateRole inserts a new dynamic role.
func (s *Service) CreateRole(ctx context.Context, name, description string) (Role, error) {
	if err := s.gate.Require(ctx, shared.PermRBACEdit); err != nil {
		return Role{}, err
	}
	store, err := s.roleStore()
	if err != nil {
		return Role{}, err
	}
	return store.CreateRole(ctx, name, description)
}

// UpdateRole renames or re-describes a dynamic role.
func (s *Service) UpdateRole(ctx context.Context, id int64, name, description string) (Role, error) {
	if err := s.gate.Require(ctx, shared.PermRBACEdit); err != nil {
		return Role{}, err
	}
	store, err := s.roleStore()
	if err != nil {
		return Role{}, err
	}
	return store.UpdateRole(ctx, id, name, description)
}

// DeleteRole removes an unreferenced dynamic role.
func (s *Service) DeleteRole(ctx context.Context, id int64) error {
	if err := s.gate.Require(ctx, shared.PermRBACEdit); err != nil {
		return err
	}
	store, err := s.roleStore()
	if err != nil {
		return err
	}
	return store.DeleteRole(ctx, id)
}

// ListRolePermissions lists the dynamic permission rows attached to a role.
func (s *Service) ListRolePermissions(ctx context.Context, roleID int64) ([]Permission, error) {
	if err := s.gate.Require(ctx, shared.PermRBACView); err != nil {
		return nil, err
	}
	store, err := s.roleStore()
	if err != nil {
		return nil, err
	}
	return store.ListRolePermissions(ctx, roleID)
}

// SetRolePermissions replaces a role's permission set and flushes every
// cached identity the next time it resolves.
func (s *Service) SetRolePermissions(ctx context.Context, roleID int64, permissionIDs []int64) error {
	if err := s.gate.Require(ctx, shared.PermRBACEdit); err != nil {
		return err
	}
	store, err := s.roleStore()
	if err != nil {
		return err
	}
	return store.SetRolePermissions(ctx, roleID, permissionIDs)
}
