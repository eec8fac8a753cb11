package payments

import "time"

// Payment records money received from a customer. Amounts are integer cents;
// no floats anywhere near money.
type Payment struct {
	ID         int64     `json:"id"`
	CustomerID int64     `json:"customer_id"`
	Amount     int64     `json:"amount"`
	Currency   string    `json:"currency"`
	Method     string    `json:"method"`
	Reference  string    `json:"reference"`
	Status     string    `json:"status"`
	Notes      string    `json:"notes,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// CreatePaymentRequest carries the payload for recording a payment.
type CreatePaymentRequest struct {
	CustomerID int64  `json:"customer_id" validate:"required,gt=0"`
	Amount     int64  `json:"amount" validate:"required,gt=0"`
	Currency   string `json:"currency" validate:"omitempty,len=3,uppercase"`
	Method     string `json:"method" validate:"required,oneof=cash card transfer financing"`
	Reference  string `json:"reference" validate:"required,max=64"`
	Notes      string `json:"notes" validate:"omitempty,max=500"`
}

// UpdatePaymentRequest carries a partial update; nil fields are left
// untouched. Amounts are immutable after recording; corrections go through
// a refund status change plus a fresh payment.
type UpdatePaymentRequest struct {
	Status *string `json:"status" validate:"omitempty,oneof=pending completed refunded"`
	Notes  *string `json:"notes" validate:"omitempty,max=500"`
}

// Filter narrows payment listings.
type Filter struct {
	CustomerID int64
	Status     string
	Method     string
}
