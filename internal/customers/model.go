package customers

import "time"

// Customer is a person buying from or serviced by the dealership. Email is
// unique; the database index decides ties under concurrency.
type Customer struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone,omitempty"`
	Address   string    `json:"address,omitempty"`
	Status    string    `json:"status"`
	Loyalty   *Loyalty  `json:"loyalty,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Loyalty is the customer's one-to-one loyalty account. It is created with
// the customer and lives and dies with it.
type Loyalty struct {
	Tier   string `json:"tier"`
	Points int    `json:"points"`
}

// CreateCustomerRequest carries the payload for registering a customer.
type CreateCustomerRequest struct {
	Name    string `json:"name" validate:"required,max=200"`
	Email   string `json:"email" validate:"required,email"`
	Phone   string `json:"phone" validate:"omitempty,max=32"`
	Address string `json:"address" validate:"omitempty,max=500"`
}

// UpdateCustomerRequest carries a partial update; nil fields are left
// untouched.
type UpdateCustomerRequest struct {
	Name    *string `json:"name" validate:"omitempty,max=200"`
	Email   *string `json:"email" validate:"omitempty,email"`
	Phone   *string `json:"phone" validate:"omitempty,max=32"`
	Address *string `json:"address" validate:"omitempty,max=500"`
	Status  *string `json:"status" validate:"omitempty,oneof=active inactive"`
}

// AdjustLoyaltyRequest changes the loyalty balance by a signed delta.
type AdjustLoyaltyRequest struct {
	Delta  int     `json:"delta" validate:"required"`
	Reason string  `json:"reason" validate:"required,max=200"`
	Tier   *string `json:"tier" validate:"omitempty,oneof=bronze silver gold platinum"`
}

// Filter narrows customer listings.
type Filter struct {
	Status string
	Query  string
}
