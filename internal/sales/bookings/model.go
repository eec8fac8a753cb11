package bookings

import "time"

// Booking reserves a vehicle for a customer at an agreed price. Deposit and
// price are integer cents.
type Booking struct {
	ID         int64     `json:"id"`
	CustomerID int64     `json:"customer_id"`
	Vehicle    string    `json:"vehicle"`
	VIN        string    `json:"vin,omitempty"`
	Price      int64     `json:"price"`
	Deposit    int64     `json:"deposit"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// CreateBookingRequest carries the payload for reserving a vehicle.
type CreateBookingRequest struct {
	CustomerID int64  `json:"customer_id" validate:"required,gt=0"`
	Vehicle    string `json:"vehicle" validate:"required,max=200"`
	VIN        string `json:"vin" validate:"omitempty,len=17,alphanum"`
	Price      int64  `json:"price" validate:"required,gt=0"`
	Deposit    int64  `json:"deposit" validate:"gte=0"`
}

// UpdateBookingRequest carries a partial update; nil fields are left
// untouched.
type UpdateBookingRequest struct {
	Vehicle *string `json:"vehicle" validate:"omitempty,max=200"`
	VIN     *string `json:"vin" validate:"omitempty,len=17,alphanum"`
	Price   *int64  `json:"price" validate:"omitempty,gt=0"`
	Deposit *int64  `json:"deposit" validate:"omitempty,gte=0"`
	Status  *string `json:"status" validate:"omitempty,oneof=pending confirmed cancelled"`
}

// Filter narrows booking listings.
type Filter struct {
	CustomerID int64
	Status     string
}
