package consultations

import (
	"time"

	"github.com/google/uuid"

	"github.com/agriops/plantops-backend/pkg/db/models"
)

// ConsultationDTO is the client-facing consultation shape.
type ConsultationDTO struct {
	ID          uuid.UUID  `json:"id"`
	FarmerID    uuid.UUID  `json:"farmer_id"`
	ExpertID    *uuid.UUID `json:"expert_id,omitempty"`
	Topic       string     `json:"topic"`
	Details     string     `json:"details"`
	Status      string     `json:"status"`
	ScheduledAt *time.Time `json:"scheduled_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// ListResult bundles a page of consultations with the next cursor.
type ListResult struct {
	Consultations []ConsultationDTO `json:"consultations"`
	NextCursor    string            `json:"next_cursor,omitempty"`
}

// NewConsultationDTO builds a DTO from the persisted model.
func NewConsultationDTO(c *models.Consultation) *ConsultationDTO {
	return &ConsultationDTO{
		ID:          c.ID,
		FarmerID:    c.FarmerID,
		ExpertID:    c.ExpertID,
		Topic:       c.Topic,
		Details:     c.Details,
		Status:      string(c.Status),
		ScheduledAt: c.ScheduledAt,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}
