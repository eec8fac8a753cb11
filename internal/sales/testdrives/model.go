package testdrives

import "time"

// TestDrive is a scheduled appointment for a customer to drive a vehicle.
type TestDrive struct {
	ID          int64     `json:"id"`
	CustomerID  int64     `json:"customer_id"`
	Vehicle     string    `json:"vehicle"`
	ScheduledAt time.Time `json:"scheduled_at"`
	Status      string    `json:"status"`
	Notes       string    `json:"notes,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// CreateTestDriveRequest carries the payload for booking a test drive.
type CreateTestDriveRequest struct {
	CustomerID  int64     `json:"customer_id" validate:"required,gt=0"`
	Vehicle     string    `json:"vehicle" validate:"required,max=200"`
	ScheduledAt time.Time `json:"scheduled_at" validate:"required"`
	Notes       string    `json:"notes" validate:"omitempty,max=500"`
}

// UpdateTestDriveRequest carries a partial update; nil fields are left
// untouched.
type UpdateTestDriveRequest struct {
	Vehicle     *string    `json:"vehicle" validate:"omitempty,max=200"`
	ScheduledAt *time.Time `json:"scheduled_at"`
	Status      *string    `json:"status" validate:"omitempty,oneof=scheduled completed cancelled no_show"`
	Notes       *string    `json:"notes" validate:"omitempty,max=500"`
}

// Filter narrows test drive listings.
type Filter struct {
	CustomerID int64
	Status     string
	// Upcoming keeps only drives scheduled from now on.
	Upcoming bool
}
