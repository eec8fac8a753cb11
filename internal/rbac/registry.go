package rbac

import (
	"context"
	"fmt"

	"github.com/driveline-dms/driveline/internal/shared"
)

// Registry supplies the permission grants for a role. Implementations must
// return an empty set (not an error) for a known role with no grants, and
// ErrUnknownRole for a role name nobody configured.
type Registry interface {
	GrantsForRole(ctx context.Context, role string) ([]string, error)
}

// staticRoleTable is the compiled product-policy mapping of role names to
// permission grants. Admin holds one wildcard entry per module it
// administers; a single global "*" entry is deliberately unsupported.
var staticRoleTable = map[string][]string{
	RoleAdmin: {
		"vendors.*",
		"customers.*",
		"sales.*",
		"payments.*",
		"payroll.*",
		"procurement.*",
		"notifications.*",
		"audit.*",
		"rbac.*",
	},
	RoleSales: {
		"sales.*",
		shared.PermCustomersView,
		shared.PermCustomersCreate,
		shared.PermCustomersEdit,
		shared.PermVendorsView,
		shared.PermPaymentsView,
		shared.PermPaymentsCreate,
		shared.PermNotificationsView,
	},
	RoleService: {
		shared.PermSalesView,
		shared.PermSalesEdit,
		shared.PermCustomersView,
		shared.PermNotificationsView,
	},
	RoleInventory: {
		shared.PermVendorsView,
		shared.PermVendorsCreate,
		shared.PermVendorsEdit,
		"procurement.*",
		shared.PermNotificationsView,
	},
	RoleSupport: {
		shared.PermCustomersView,
		"notifications.*",
	},
	RoleHR: {
		"payroll.*",
		shared.PermNotificationsView,
	},
	RoleCustomer: {
		shared.PermSalesView,
		shared.PermNotificationsView,
	},
}

// StaticRegistry serves grants from the compiled role table.
type StaticRegistry struct {
	table map[string][]string
}

// NewStaticRegistry builds a registry over the default role table.
func NewStaticRegistry() *StaticRegistry {
	return &StaticRegistry{table: staticRoleTable}
}

// NewStaticRegistryWithTable builds a registry over a caller-supplied table.
func NewStaticRegistryWithTable(table map[string][]string) *StaticRegistry {
	return &StaticRegistry{table: table}
}

// GrantsForRole returns a copy of the grant list for the role.
func (r *StaticRegistry) GrantsForRole(_ context.Context, role string) ([]string, error) {
	grants, ok := r.table[role]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownRole, role)
	}
	out := make([]string, len(grants))
	copy(out, grants)
	return out, nil
}

// Roles lists every role the table knows about.
func (r *StaticRegistry) Roles() []string {
	names := make([]string, 0, len(r.table))
	for name := range r.table {
		names = append(names, name)
	}
	return names
}
