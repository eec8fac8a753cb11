package notifications

import "time"

// Notification is a message queued for a recipient. Recipient is an opaque
// identity string, usually a customer or user id.
type Notification struct {
	ID        int64      `json:"id"`
	Recipient string     `json:"recipient"`
	Subject   string     `json:"subject"`
	Body      string     `json:"body"`
	Channel   string     `json:"channel"`
	Status    string     `json:"status"`
	SentAt    *time.Time `json:"sent_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// CreateNotificationRequest carries the payload for queueing a notification.
type CreateNotificationRequest struct {
	Recipient string `json:"recipient" validate:"required,max=64"`
	Subject   string `json:"subject" validate:"required,max=200"`
	Body      string `json:"body" validate:"required,max=2000"`
	Channel   string `json:"channel" validate:"omitempty,oneof=email sms inapp"`
}

// UpdateNotificationRequest carries a partial update; only unsent
// notifications can change.
type UpdateNotificationRequest struct {
	Subject *string `json:"subject" validate:"omitempty,max=200"`
	Body    *string `json:"body" validate:"omitempty,max=2000"`
	Channel *string `json:"channel" validate:"omitempty,oneof=email sms inapp"`
}

// Filter narrows notification listings.
type Filter struct {
	Recipient string
	Status    string
}
