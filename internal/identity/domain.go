package identity

import "time"

// User represents an authenticated user account. The RBAC core only ever
// sees the user's opaque subject string, never this struct.
type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Subject returns the opaque identity string used by the RBAC core and the
// token store.
func (u User) Subject() string {
	return formatSubject(u.ID)
}
