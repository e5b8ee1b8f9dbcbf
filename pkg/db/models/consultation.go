package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/agriops/plantops-backend/pkg/enums"
)

// Consultation records a farmer's request for expert advice.
type Consultation struct {
	ID          uuid.UUID                `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	FarmerID    uuid.UUID                `gorm:"column:farmer_id;type:uuid;not null;index"`
	ExpertID    *uuid.UUID               `gorm:"column:expert_id;type:uuid;index"`
	Topic       string                   `gorm:"column:topic;not null"`
	Details     string                   `gorm:"column:details;not null"`
	Status      enums.ConsultationStatus `gorm:"column:status;type:text;not null;default:'pending'"`
	ScheduledAt *time.Time               `gorm:"column:scheduled_at"`
	CreatedAt   time.Time                `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time                `gorm:"column:updated_at;autoUpdateTime"`
}
