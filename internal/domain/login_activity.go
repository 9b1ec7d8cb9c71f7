package domain

import "time"

// LoginActivity records a successful login for audit purposes.
type LoginActivity struct {
	ID         string
	IdentityID string
	Email      string
	SourceIP   string
	UserAgent  string
	LoggedInAt time.Time
}
