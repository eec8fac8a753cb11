package rbac

import (
	"errors"
	"fmt"
	"time"

	"github.com/driveline-dms/driveline/internal/platform/httpx"
)

// Role represents a named bundle of permission grants.
type Role struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Permission is a dynamic grant row: a (resource, action) pair. Its string
// form is the dotted permission token, e.g. "sales.create".
type Permission struct {
	ID          int64  `json:"id"`
	Resource    string `json:"resource"`
	Action      string `json:"action"`
	Description string `json:"description"`
}

// String returns the canonical dotted permission token.
func (p Permission) String() string {
	return p.Resource + "." + p.Action
}

// Assignment ties an opaque identity to a role, optionally scoped to a branch
// or department. There is no update operation; replace via revoke + assign.
type Assignment struct {
	ID         int64     `json:"id"`
	Identity   string    `json:"identity"`
	Role       string    `json:"role"`
	Branch     *string   `json:"branch,omitempty"`
	Department *string   `json:"department,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// Operational role names in the static table.
const (
	RoleAdmin     = "Admin"
	RoleSales     = "Sales"
	RoleService   = "Service"
	RoleInventory = "Inventory"
	RoleSupport   = "Support"
	RoleHR        = "HR"
	RoleCustomer  = "Customer"
)

var (
	// ErrUnknownRole signals a configuration error: a role name that no
	// registry knows about. Callers must not silently ignore it.
	ErrUnknownRole = errors.New("rbac: unknown role")

	// ErrDuplicateAssignment is returned when an identity already holds the
	// exact role being assigned.
	ErrDuplicateAssignment = fmt.Errorf("%w: identity already holds role", httpx.ErrDuplicate)

	// ErrAssignmentNotFound is returned when revoking an absent assignment.
	ErrAssignmentNotFound = fmt.Errorf("%w: assignment", httpx.ErrNotFound)
)
