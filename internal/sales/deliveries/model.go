package deliveries

import "time"

// Delivery hands a booked vehicle to its customer. Each booking gets at most
// one delivery; the unique index on booking_id is the authority for that.
type Delivery struct {
	ID          int64     `json:"id"`
	BookingID   int64     `json:"booking_id"`
	ScheduledAt time.Time `json:"scheduled_at"`
	Address     string    `json:"address"`
	Status      string    `json:"status"`
	Notes       string    `json:"notes,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// CreateDeliveryRequest carries the payload for scheduling a delivery.
type CreateDeliveryRequest struct {
	BookingID   int64     `json:"booking_id" validate:"required,gt=0"`
	ScheduledAt time.Time `json:"scheduled_at" validate:"required"`
	Address     string    `json:"address" validate:"required,max=500"`
	Notes       string    `json:"notes" validate:"omitempty,max=500"`
}

// UpdateDeliveryRequest carries a partial update; nil fields are left
// untouched.
type UpdateDeliveryRequest struct {
	ScheduledAt *time.Time `json:"scheduled_at"`
	Address     *string    `json:"address" validate:"omitempty,max=500"`
	Status      *string    `json:"status" validate:"omitempty,oneof=pending in_transit delivered"`
	Notes       *string    `json:"notes" validate:"omitempty,max=500"`
}

// Filter narrows delivery listings.
type Filter struct {
	BookingID int64
	Status    string
}
