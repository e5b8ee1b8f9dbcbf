package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/agriops/plantops-backend/pkg/enums"
)

// StockMovement is an append-only record of every inventory quantity change.
// A row is written as intent before the decrement runs and flipped to applied
// once the guarded update succeeds, so interrupted reconciliations leave an
// audit trail of what was attempted.
type StockMovement struct {
	ID        uuid.UUID                 `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ItemID    string                    `gorm:"column:item_id;type:text;not null;index"`
	OrderID   *uuid.UUID                `gorm:"column:order_id;type:uuid;index"`
	Delta     float64                   `gorm:"column:delta;type:numeric(12,3);not null"`
	Reason    enums.StockMovementReason `gorm:"column:reason;type:text;not null"`
	Applied   bool                      `gorm:"column:applied;not null;default:false"`
	Note      *string                   `gorm:"column:note"`
	CreatedAt time.Time                 `gorm:"column:created_at;autoCreateTime"`
}
