package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/agriops/plantops-backend/pkg/enums"
)

// OrderLineItem captures the snapshot of each item within an order. ItemID
// either references an inventory item or carries a generated custom id for
// lines with no catalog backing.
type OrderLineItem struct {
	ID        uuid.UUID            `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID   uuid.UUID            `gorm:"column:order_id;type:uuid;not null;index"`
	ItemID    string               `gorm:"column:item_id;type:text;not null"`
	Name      string               `gorm:"column:name;not null"`
	Category  string               `gorm:"column:category;not null;default:''"`
	Unit      string               `gorm:"column:unit;not null"`
	Price     float64              `gorm:"column:price;type:numeric(12,2);not null"`
	Quantity  float64              `gorm:"column:quantity;type:numeric(12,3);not null"`
	Source    enums.LineItemSource `gorm:"column:source;type:text;not null;default:'user'"`
	IsCustom  bool                 `gorm:"column:is_custom;not null;default:false"`
	CreatedAt time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}
