package shared

// Sales floor permissions cover test drives, bookings and deliveries.
const (
	PermSalesView   = "sales.view"
	PermSalesCreate = "sales.create"
	PermSalesEdit   = "sales.edit"
	PermSalesDelete = "sales.delete"

	PermCustomersView   = "customers.view"
	PermCustomersCreate = "customers.create"
	PermCustomersEdit   = "customers.edit"
	PermCustomersDelete = "customers.delete"
)
