package shared

// Core platform permissions.
const (
	PermRBACView = "rbac.view"
	PermRBACEdit = "rbac.edit"

	PermAuditView = "audit.view"

	PermNotificationsView   = "notifications.view"
	PermNotificationsCreate = "notifications.create"
	PermNotificationsEdit   = "notifications.edit"
	PermNotificationsDelete = "notifications.delete"
)

// CoreScopes lists all permissions related to the core platform.
func CoreScopes() []string {
	return []string{
		PermRBACView,
		PermRBACEdit,
		PermAuditView,
		PermNotificationsView,
		PermNotificationsCreate,
		PermNotificationsEdit,
		PermNotificationsDelete,
	}
}
