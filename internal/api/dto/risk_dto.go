package dto

import (
	"time"

	"github.com/complyhub/compliance-service/internal/domain"
)

// RiskCreateRequest payload for new risk register entries.
type RiskCreateRequest struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	DueDate     *time.Time `json:"due_date,omitempty"`
}

// RiskUpdateRequest payload for full or partial updates. Nil pointers mean
// "leave unchanged" on partial updates.
type RiskUpdateRequest struct {
	Title       *string    `json:"title,omitempty"`
	Description *string    `json:"description,omitempty"`
	Status      *string    `json:"status,omitempty"`
	DueDate     *time.Time `json:"due_date,omitempty"`
}

// RiskResponse is the wire shape of a risk.
type RiskResponse struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Status      string     `json:"status"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	CreatedBy   string     `json:"created_by"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// NewRiskResponse maps a domain risk.
func NewRiskResponse(risk *domain.Risk) RiskResponse {
	return RiskResponse{
		ID:          risk.ID,
		Title:       risk.Title,
		Description: risk.Description,
		Status:      string(risk.Status),
		DueDate:     risk.DueDate,
		CreatedBy:   risk.CreatedByID,
		CreatedAt:   risk.CreatedAt,
		UpdatedAt:   risk.UpdatedAt,
	}
}

// NewRiskListResponse maps a slice of domain risks.
func NewRiskListResponse(risks []domain.Risk) []RiskResponse {
	out := make([]RiskResponse, 0, len(risks))
	for i := range risks {
		out = append(out, NewRiskResponse(&risks[i]))
	}
	return out
}
