package domain

import "time"

// RiskStatus represents lifecycle states for a risk register entry.
type RiskStatus string

const (
	RiskStatusOpen      RiskStatus = "OPEN"
	RiskStatusCompleted RiskStatus = "COMPLETED"
	RiskStatusOverdue   RiskStatus = "OVERDUE"
)

// Risk is a compliance risk register entry. CreatedByID is the ownership
// field compared against the caller when a permission resolves to own
// scope.
type Risk struct {
	ID          string
	Title       string
	Description string
	Status      RiskStatus
	DueDate     *time.Time
	CreatedByID string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
