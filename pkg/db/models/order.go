package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/agriops/plantops-backend/pkg/enums"
)

// Order represents a factory order placed by a farmer.
type Order struct {
	ID                 uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderNumber        int64             `gorm:"column:order_number;not null;uniqueIndex"`
	CustomerID         uuid.UUID         `gorm:"column:customer_id;type:uuid;not null"`
	Status             enums.OrderStatus `gorm:"column:status;type:text;not null;default:'pending'"`
	TotalAmount        float64           `gorm:"column:total_amount;type:numeric(12,2);not null;default:0"`
	DeliveryAssigneeID *uuid.UUID        `gorm:"column:delivery_assignee_id;type:uuid"`
	DeliveryAssignedAt *time.Time        `gorm:"column:delivery_assigned_at"`
	DecisionNote       *string           `gorm:"column:decision_note"`
	DecidedAt          *time.Time        `gorm:"column:decided_at"`
	Items              []OrderLineItem   `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt          time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt          time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}
