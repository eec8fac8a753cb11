package payroll

import "time"

// Record is one employee's payroll line for a period. NetSalary is derived
// from the other money fields and recomputed on every write; callers cannot
// set it.
type Record struct {
	ID         int64     `json:"id"`
	EmployeeID int64     `json:"employee_id"`
	Period     string    `json:"period"`
	BaseSalary int64     `json:"base_salary"`
	Allowances int64     `json:"allowances"`
	Deductions int64     `json:"deductions"`
	NetSalary  int64     `json:"net_salary"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Net computes the derived net salary in integer cents.
func (r Record) Net() int64 {
	return r.BaseSalary + r.Allowances - r.Deductions
}

// CreateRecordRequest carries the payload for drafting a payroll line.
// Period uses YYYY-MM; one line per employee per period.
type CreateRecordRequest struct {
	EmployeeID int64  `json:"employee_id" validate:"required,gt=0"`
	Period     string `json:"period" validate:"required,len=7"`
	BaseSalary int64  `json:"base_salary" validate:"required,gt=0"`
	Allowances int64  `json:"allowances" validate:"gte=0"`
	Deductions int64  `json:"deductions" validate:"gte=0"`
}

// UpdateRecordRequest carries a partial update; nil fields are left
// untouched. NetSalary is recomputed, never accepted.
type UpdateRecordRequest struct {
	BaseSalary *int64  `json:"base_salary" validate:"omitempty,gt=0"`
	Allowances *int64  `json:"allowances" validate:"omitempty,gte=0"`
	Deductions *int64  `json:"deductions" validate:"omitempty,gte=0"`
	Status     *string `json:"status" validate:"omitempty,oneof=draft approved paid"`
}

// Filter narrows payroll listings.
type Filter struct {
	EmployeeID int64
	Period     string
	Status     string
}
