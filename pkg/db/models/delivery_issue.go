package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/agriops/plantops-backend/pkg/enums"
)

// DeliveryIssue tracks a problem reported against an order in transit.
type DeliveryIssue struct {
	ID          uuid.UUID                 `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID     uuid.UUID                 `gorm:"column:order_id;type:uuid;not null;index"`
	ReporterID  uuid.UUID                 `gorm:"column:reporter_id;type:uuid;not null"`
	Description string                    `gorm:"column:description;not null"`
	Status      enums.DeliveryIssueStatus `gorm:"column:status;type:text;not null;default:'open'"`
	ResolvedAt  *time.Time                `gorm:"column:resolved_at"`
	CreatedAt   time.Time                 `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time                 `gorm:"column:updated_at;autoUpdateTime"`
}
