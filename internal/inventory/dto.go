package inventory

import (
	"time"

	"github.com/google/uuid"

	"github.com/agriops/plantops-backend/pkg/db/models"
)

// ItemDTO represents the inventory item payload returned to clients.
type ItemDTO struct {
	ID           uuid.UUID `json:"id"`
	ItemID       string    `json:"item_id"`
	Name         string    `json:"name"`
	Category     string    `json:"category"`
	Unit         string    `json:"unit"`
	Quantity     float64   `json:"quantity"`
	Price        float64   `json:"price"`
	ReorderLevel float64   `json:"reorder_level"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// ListResult bundles a page of items with the cursor for the next page.
type ListResult struct {
	Items      []ItemDTO `json:"items"`
	NextCursor string    `json:"next_cursor,omitempty"`
}

// NewItemDTO builds a DTO from the persisted model.
func NewItemDTO(item *models.InventoryItem) *ItemDTO {
	return &ItemDTO{
		ID:           item.ID,
		ItemID:       item.ItemID,
		Name:         item.Name,
		Category:     item.Category,
		Unit:         item.Unit,
		Quantity:     item.Quantity,
		Price:        item.Price,
		ReorderLevel: item.ReorderLevel,
		Status:       string(item.Status),
		CreatedAt:    item.CreatedAt,
		UpdatedAt:    item.UpdatedAt,
	}
}
