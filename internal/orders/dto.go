package orders

import (
	"time"

	"github.com/google/uuid"

	"github.com/agriops/plantops-backend/pkg/db/models"
)

// OrderDTO represents the order payload returned to clients.
type OrderDTO struct {
	ID                 uuid.UUID     `json:"id"`
	OrderNumber        int64         `json:"order_number"`
	CustomerID         uuid.UUID     `json:"customer_id"`
	Status             string        `json:"status"`
	TotalAmount        float64       `json:"total_amount"`
	DeliveryAssigneeID *uuid.UUID    `json:"delivery_assignee_id,omitempty"`
	DeliveryAssignedAt *time.Time    `json:"delivery_assigned_at,omitempty"`
	DecisionNote       *string       `json:"decision_note,omitempty"`
	DecidedAt          *time.Time    `json:"decided_at,omitempty"`
	Items              []LineItemDTO `json:"items"`
	CreatedAt          time.Time     `json:"created_at"`
	UpdatedAt          time.Time     `json:"updated_at"`
}

// LineItemDTO exposes a single order line.
type LineItemDTO struct {
	ID        uuid.UUID `json:"id"`
	ItemID    string    `json:"item_id"`
	Name      string    `json:"name"`
	Category  string    `json:"category"`
	Unit      string    `json:"unit"`
	Price     float64   `json:"price"`
	Quantity  float64   `json:"quantity"`
	Source    string    `json:"source"`
	IsCustom  bool      `json:"is_custom"`
	CreatedAt time.Time `json:"created_at"`
}

// OrderListResult bundles a page of orders with the next cursor.
type OrderListResult struct {
	Orders     []OrderDTO `json:"orders"`
	NextCursor string     `json:"next_cursor,omitempty"`
}

// NewOrderDTO builds a DTO from the persisted model.
func NewOrderDTO(order *models.Order) *OrderDTO {
	items := make([]LineItemDTO, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, NewLineItemDTO(&item))
	}
	return &OrderDTO{
		ID:                 order.ID,
		OrderNumber:        order.OrderNumber,
		CustomerID:         order.CustomerID,
		Status:             string(order.Status),
		TotalAmount:        order.TotalAmount,
		DeliveryAssigneeID: order.DeliveryAssigneeID,
		DeliveryAssignedAt: order.DeliveryAssignedAt,
		DecisionNote:       order.DecisionNote,
		DecidedAt:          order.DecidedAt,
		Items:              items,
		CreatedAt:          order.CreatedAt,
		UpdatedAt:          order.UpdatedAt,
	}
}

// NewLineItemDTO builds a line DTO from the persisted model.
func NewLineItemDTO(item *models.OrderLineItem) LineItemDTO {
	return LineItemDTO{
		ID:        item.ID,
		ItemID:    item.ItemID,
		Name:      item.Name,
		Category:  item.Category,
		Unit:      item.Unit,
		Price:     item.Price,
		Quantity:  item.Quantity,
		Source:    string(item.Source),
		IsCustom:  item.IsCustom,
		CreatedAt: item.CreatedAt,
	}
}
