package inventory

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/agriops/plantops-backend/pkg/db/models"
	"github.com/agriops/plantops-backend/pkg/enums"
	pkgerrors "github.com/agriops/plantops-backend/pkg/errors"
	"github.com/agriops/plantops-backend/pkg/logger"
	"github.com/agriops/plantops-backend/pkg/money"
)

// MovementRecorder writes ledger rows for stock changes made outside the
// order flow, such as a manual quantity set.
type MovementRecorder interface {
	RecordApplied(ctx context.Context, itemID string, orderID *uuid.UUID, delta float64, reason enums.StockMovementReason, note string) error
}

// Service exposes inventory catalog management operations.
type Service interface {
	CreateItem(ctx context.Context, input CreateItemInput) (*ItemDTO, error)
	UpdateItem(ctx context.Context, itemID string, input UpdateItemInput) (*ItemDTO, error)
	DeleteItem(ctx context.Context, itemID string) error
	GetItem(ctx context.Context, itemID string) (*ItemDTO, error)
	ListItems(ctx context.Context, query ListQuery) (*ListResult, error)
}

// CreateItemInput holds the validated payload to create an inventory item.
type CreateItemInput struct {
	ItemID       string
	Name         string
	Category     string
	Unit         string
	Quantity     float64
	Price        float64
	ReorderLevel float64
}

// UpdateItemInput holds optional mutation values for an inventory item.
type UpdateItemInput struct {
	Name         *string
	Category     *string
	Unit         *string
	Quantity     *float64
	Price        *float64
	ReorderLevel *float64
}

type service struct {
	repo   Repository
	ledger MovementRecorder
	logg   *logger.Logger
}

// NewService constructs an inventory service instance.
func NewService(repo Repository, recorder MovementRecorder, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("inventory repository required")
	}
	if recorder == nil {
		return nil, fmt.Errorf("movement recorder required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, ledger: recorder, logg: logg}, nil
}

func (s *service) CreateItem(ctx context.Context, input CreateItemInput) (*ItemDTO, error) {
	itemID := strings.TrimSpace(input.ItemID)
	if itemID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "item id required")
	}
	if strings.TrimSpace(input.Name) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name required")
	}
	if input.Quantity < 0 || !money.IsFinite(input.Quantity) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be a non-negative number")
	}
	if input.Price < 0 || !money.IsFinite(input.Price) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price must be a non-negative number")
	}

	item := &models.InventoryItem{
		ItemID:       itemID,
		Name:         strings.TrimSpace(input.Name),
		Category:     strings.TrimSpace(input.Category),
		Unit:         strings.TrimSpace(input.Unit),
		Quantity:     input.Quantity,
		Price:        money.Round2(input.Price),
		ReorderLevel: input.ReorderLevel,
		Status:       enums.DeriveInventoryStatus(input.Quantity, input.ReorderLevel),
	}

	created, err := s.repo.Create(ctx, item)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create inventory item")
	}
	return NewItemDTO(created), nil
}

func (s *service) UpdateItem(ctx context.Context, itemID string, input UpdateItemInput) (*ItemDTO, error) {
	item, err := s.loadItem(ctx, itemID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		if strings.TrimSpace(*input.Name) == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "name required")
		}
		item.Name = strings.TrimSpace(*input.Name)
	}
	if input.Category != nil {
		item.Category = strings.TrimSpace(*input.Category)
	}
	if input.Unit != nil {
		item.Unit = strings.TrimSpace(*input.Unit)
	}
	adjustment := 0.0
	if input.Quantity != nil {
		if *input.Quantity < 0 || !money.IsFinite(*input.Quantity) {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be a non-negative number")
		}
		adjustment = *input.Quantity - item.Quantity
		item.Quantity = *input.Quantity
	}
	if input.Price != nil {
		if *input.Price < 0 || !money.IsFinite(*input.Price) {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "price must be a non-negative number")
		}
		item.Price = money.Round2(*input.Price)
	}
	if input.ReorderLevel != nil {
		item.ReorderLevel = *input.ReorderLevel
	}

	item.Status = enums.DeriveInventoryStatus(item.Quantity, item.ReorderLevel)

	updated, err := s.repo.Update(ctx, item)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update inventory item")
	}

	// An absolute quantity set is a stock change like any other, so it
	// lands in the ledger as an adjustment.
	if adjustment != 0 {
		if err := s.ledger.RecordApplied(ctx, updated.ItemID, nil, adjustment, enums.StockMovementReasonAdjustment, "manual quantity set"); err != nil {
			s.logg.Error(ctx, "inventory.ledger.record_failed", err)
		}
	}
	return NewItemDTO(updated), nil
}

func (s *service) DeleteItem(ctx context.Context, itemID string) error {
	if _, err := s.loadItem(ctx, itemID); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, itemID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete inventory item")
	}
	return nil
}

func (s *service) GetItem(ctx context.Context, itemID string) (*ItemDTO, error) {
	item, err := s.loadItem(ctx, itemID)
	if err != nil {
		return nil, err
	}
	return NewItemDTO(item), nil
}

func (s *service) ListItems(ctx context.Context, query ListQuery) (*ListResult, error) {
	rows, next, err := s.repo.List(ctx, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list inventory items")
	}
	items := make([]ItemDTO, 0, len(rows))
	for i := range rows {
		items = append(items, *NewItemDTO(&rows[i]))
	}
	return &ListResult{Items: items, NextCursor: next}, nil
}

func (s *service) loadItem(ctx context.Context, itemID string) (*models.InventoryItem, error) {
	if strings.TrimSpace(itemID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "item id required")
	}
	item, err := s.repo.FindByItemID(ctx, itemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "inventory item not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load inventory item")
	}
	return item, nil
}
