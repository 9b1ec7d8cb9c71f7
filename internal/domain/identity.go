package domain

import "time"

// Identity is the domain model for accounts that can authenticate.
// The stored Role is free-form provisioning data ("admin", "dpo",
// "gerente", ...); authorization always goes through the normalized role,
// where IsSuperuser counts as admin regardless of the stored value.
type Identity struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         string
	IsSuperuser  bool
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
