package vendors

import "time"

// Vendor is a supplier the dealership buys vehicles and parts from. Codes are
// unique across the table; the database index is the authority for that.
type Vendor struct {
	ID        int64     `json:"id"`
	Code      string    `json:"code"`
	Name      string    `json:"name"`
	Email     string    `json:"email,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CreateVendorRequest carries the payload for registering a vendor.
type CreateVendorRequest struct {
	Code   string `json:"code" validate:"required,max=32"`
	Name   string `json:"name" validate:"required,max=200"`
	Email  string `json:"email" validate:"omitempty,email"`
	Phone  string `json:"phone" validate:"omitempty,max=32"`
	Status string `json:"status" validate:"omitempty,oneof=active inactive"`
}

// UpdateVendorRequest carries a partial update; nil fields are left untouched.
type UpdateVendorRequest struct {
	Name   *string `json:"name" validate:"omitempty,max=200"`
	Email  *string `json:"email" validate:"omitempty,email"`
	Phone  *string `json:"phone" validate:"omitempty,max=32"`
	Status *string `json:"status" validate:"omitempty,oneof=active inactive"`
}

// Filter narrows vendor listings.
type Filter struct {
	Status string
	Query  string
}
