package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/agriops/plantops-backend/pkg/enums"
)

// InventoryItem tracks on-hand stock per catalog item. ItemID is the external
// identifier order lines reference; it never changes after creation.
type InventoryItem struct {
	ID           uuid.UUID             `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ItemID       string                `gorm:"column:item_id;type:text;not null;uniqueIndex"`
	Name         string                `gorm:"column:name;not null"`
	Category     string                `gorm:"column:category;not null"`
	Unit         string                `gorm:"column:unit;not null"`
	Quantity     float64               `gorm:"column:quantity;type:numeric(12,3);not null;default:0"`
	Price        float64               `gorm:"column:price;type:numeric(12,2);not null;default:0"`
	ReorderLevel float64               `gorm:"column:reorder_level;type:numeric(12,3);not null;default:0"`
	Status       enums.InventoryStatus `gorm:"column:status;type:text;not null;default:'Available'"`
	CreatedAt    time.Time             `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time             `gorm:"column:updated_at;autoUpdateTime"`
}
