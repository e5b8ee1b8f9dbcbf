package deliveryissues

import (
	"time"

	"github.com/google/uuid"

	"github.com/agriops/plantops-backend/pkg/db/models"
)

// IssueDTO is the client-facing delivery issue shape.
type IssueDTO struct {
	ID          uuid.UUID  `json:"id"`
	OrderID     uuid.UUID  `json:"order_id"`
	ReporterID  uuid.UUID  `json:"reporter_id"`
	Description string     `json:"description"`
	Status      string     `json:"status"`
	ResolvedAt  *time.Time `json:"resolved_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// ListResult bundles a page of issues with the next cursor.
type ListResult struct {
	Issues     []IssueDTO `json:"issues"`
	NextCursor string     `json:"next_cursor,omitempty"`
}

// NewIssueDTO builds a DTO from the persisted model.
func NewIssueDTO(issue *models.DeliveryIssue) *IssueDTO {
	return &IssueDTO{
		ID:          issue.ID,
		OrderID:     issue.OrderID,
		ReporterID:  issue.ReporterID,
		Description: issue.Description,
		Status:      issue.Status.String(),
		ResolvedAt:  issue.ResolvedAt,
		CreatedAt:   issue.CreatedAt,
		UpdatedAt:   issue.UpdatedAt,
	}
}
