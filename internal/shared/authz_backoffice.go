package shared

// Back-office permissions.
const (
	PermVendorsView   = "vendors.view"
	PermVendorsCreate = "vendors.create"
	PermVendorsEdit   = "vendors.edit"
	PermVendorsDelete = "vendors.delete"

	PermProcurementView   = "procurement.view"
	PermProcurementCreate = "procurement.create"
	PermProcurementEdit   = "procurement.edit"
	PermProcurementDelete = "procurement.delete"

	PermPaymentsView   = "payments.view"
	PermPaymentsCreate = "payments.create"
	PermPaymentsEdit   = "payments.edit"
	PermPaymentsDelete = "payments.delete"

	PermPayrollView   = "payroll.view"
	PermPayrollCreate = "payroll.create"
	PermPayrollEdit   = "payroll.edit"
	PermPayrollDelete = "payroll.delete"
)
