package orders

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/agriops/plantops-backend/pkg/db/models"
	"github.com/agriops/plantops-backend/pkg/enums"
	pkgerrors "github.com/agriops/plantops-backend/pkg/errors"
	"github.com/agriops/plantops-backend/pkg/logger"
	"github.com/agriops/plantops-backend/pkg/metrics"
	"github.com/agriops/plantops-backend/pkg/money"
)

// InventoryStock is the slice of the inventory repository the reconciliation
// flow depends on. DecrementIfAvailable and Increment must be single-statement
// atomic updates; the conditional decrement is the only concurrency guard this
// package relies on.
type InventoryStock interface {
	FindByItemID(ctx context.Context, itemID string) (*models.InventoryItem, error)
	DecrementIfAvailable(ctx context.Context, itemID string, qty float64) (bool, error)
	Increment(ctx context.Context, itemID string, qty float64) (bool, error)
}

// MovementRecorder writes stock movement rows around each inventory mutation.
type MovementRecorder interface {
	RecordIntent(ctx context.Context, itemID string, orderID *uuid.UUID, delta float64, reason enums.StockMovementReason) (*models.StockMovement, error)
	MarkApplied(ctx context.Context, id uuid.UUID) error
	RecordApplied(ctx context.Context, itemID string, orderID *uuid.UUID, delta float64, reason enums.StockMovementReason, note string) error
}

// Service exposes order reads plus the line item reconciliation operations.
type Service interface {
	ListOrders(ctx context.Context, query ListQuery) (*OrderListResult, error)
	GetOrder(ctx context.Context, id uuid.UUID) (*OrderDTO, error)
	AddItems(ctx context.Context, orderID uuid.UUID, input AddItemsInput) (*OrderDTO, []string, error)
	UpdateItemQuantity(ctx context.Context, orderID uuid.UUID, itemID string, quantity float64) (*OrderDTO, error)
	RemoveItem(ctx context.Context, orderID uuid.UUID, itemID string) (*OrderDTO, error)
	Decide(ctx context.Context, orderID uuid.UUID, input DecisionInput) (*OrderDTO, error)
	SetDeliveryAssignee(ctx context.Context, orderID uuid.UUID, assigneeID uuid.UUID) (*OrderDTO, error)
	ClearDeliveryAssignee(ctx context.Context, orderID uuid.UUID) (*OrderDTO, error)
}

// RequestedLine is one item the caller wants appended to an order. Non-custom
// lines resolve ItemID against inventory; custom lines must carry their own
// descriptive fields and price.
type RequestedLine struct {
	ItemID   string
	Quantity float64
	Price    *float64
	Name     string
	Category string
	Unit     string
	IsCustom bool
}

// AddItemsInput is the validated payload for the add items operation.
type AddItemsInput struct {
	Items  []RequestedLine
	Source enums.LineItemSource
}

// DecisionInput approves or rejects a pending order.
type DecisionInput struct {
	Approve bool
	Note    *string
}

type service struct {
	repo    Repository
	stock   InventoryStock
	ledger  MovementRecorder
	metrics *metrics.ReconciliationMetrics
	logg    *logger.Logger
}

// NewService constructs the orders service. Metrics may be nil.
func NewService(repo Repository, stock InventoryStock, recorder MovementRecorder, recMetrics *metrics.ReconciliationMetrics, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if stock == nil {
		return nil, fmt.Errorf("inventory stock required")
	}
	if recorder == nil {
		return nil, fmt.Errorf("movement recorder required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		repo:    repo,
		stock:   stock,
		ledger:  recorder,
		metrics: recMetrics,
		logg:    logg,
	}, nil
}

func (s *service) ListOrders(ctx context.Context, query ListQuery) (*OrderListResult, error) {
	if query.Status != "" {
		if _, err := enums.ParseOrderStatus(query.Status); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status filter")
		}
	}
	rows, nextCursor, err := s.repo.List(ctx, query)
	if err != nil {
		return nil, err
	}
	result := &OrderListResult{
		Orders:     make([]OrderDTO, 0, len(rows)),
		NextCursor: nextCursor,
	}
	for i := range rows {
		result.Orders = append(result.Orders, *NewOrderDTO(&rows[i]))
	}
	return result, nil
}

func (s *service) GetOrder(ctx context.Context, id uuid.UUID) (*OrderDTO, error) {
	order, err := s.loadOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	return NewOrderDTO(order), nil
}

// preparedLine pairs a line ready for insertion with the inventory decrement
// it requires. decrement is zero for custom lines.
type preparedLine struct {
	model     models.OrderLineItem
	decrement float64
}

func (s *service) AddItems(ctx context.Context, orderID uuid.UUID, input AddItemsInput) (*OrderDTO, []string, error) {
	ctx = s.logg.WithOrderID(ctx, orderID.String())

	order, err := s.loadOrder(ctx, orderID)
	if err != nil {
		return nil, nil, err
	}
	if order.Status == enums.OrderStatusRejected {
		return nil, nil, pkgerrors.New(pkgerrors.CodeStateConflict, "cannot modify a rejected order")
	}

	// Orders written before price validation existed can carry broken
	// prices. Repair them first so the recomputed total is trustworthy even
	// when the new lines fail validation below.
	if err := s.repairLegacyPrices(ctx, order); err != nil {
		return nil, nil, err
	}

	if len(input.Items) == 0 {
		return nil, nil, pkgerrors.New(pkgerrors.CodeValidation, "items must be a non-empty list")
	}
	source := input.Source
	if source == "" {
		source = enums.LineItemSourceUser
	}
	if !source.IsValid() {
		return nil, nil, pkgerrors.Newf(pkgerrors.CodeValidation, "invalid line source %q", string(input.Source))
	}

	prepared := make([]preparedLine, 0, len(input.Items))
	warnings := make([]string, 0)
	for i, line := range input.Items {
		if !money.IsFinite(line.Quantity) || line.Quantity <= 0 {
			return nil, nil, pkgerrors.Newf(pkgerrors.CodeValidation, "items[%d]: quantity must be a positive number", i)
		}
		if line.IsCustom {
			model, err := buildCustomLine(orderID, source, i, line)
			if err != nil {
				return nil, nil, err
			}
			prepared = append(prepared, preparedLine{model: model})
			continue
		}

		itemID := strings.TrimSpace(line.ItemID)
		if itemID == "" {
			return nil, nil, pkgerrors.Newf(pkgerrors.CodeValidation, "items[%d]: item id required", i)
		}
		item, err := s.stock.FindByItemID(ctx, itemID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, nil, pkgerrors.Newf(pkgerrors.CodeNotFound, "inventory item %s not found", itemID)
			}
			return nil, nil, err
		}
		if item.Quantity < line.Quantity {
			return nil, nil, pkgerrors.Newf(pkgerrors.CodeValidation,
				"not enough stock for %s. Available: %s %s", item.Name, formatQuantity(item.Quantity), item.Unit)
		}

		price, warning := resolvePrice(line.Price, item)
		if warning != "" {
			warnings = append(warnings, warning)
			s.logg.Warn(s.logg.WithItemID(ctx, itemID), "order.add_items.price_defaulted")
		}
		prepared = append(prepared, preparedLine{
			model: models.OrderLineItem{
				OrderID:  orderID,
				ItemID:   item.ItemID,
				Name:     item.Name,
				Category: item.Category,
				Unit:     item.Unit,
				Price:    price,
				Quantity: line.Quantity,
				Source:   source,
			},
			decrement: line.Quantity,
		})
	}

	if err := s.applyDecrements(ctx, orderID, prepared); err != nil {
		return nil, nil, err
	}

	newModels := make([]models.OrderLineItem, 0, len(prepared))
	for _, p := range prepared {
		newModels = append(newModels, p.model)
	}
	if err := s.repo.CreateLineItems(ctx, newModels); err != nil {
		return nil, nil, err
	}

	total := orderTotalOver(append(order.Items, newModels...))
	if err := s.repo.UpdateOrder(ctx, orderID, map[string]any{"total_amount": total}); err != nil {
		return nil, nil, err
	}
	s.metricsIncApplied("add_items")
	s.logg.Info(ctx, "order.items_added")

	updated, err := s.loadOrder(ctx, orderID)
	if err != nil {
		return nil, nil, err
	}
	return NewOrderDTO(updated), warnings, nil
}

// appliedDecrement records one decrement that succeeded, so a later failure
// in the same call can undo it.
type appliedDecrement struct {
	itemID string
	qty    float64
}

// applyDecrements walks the non-custom lines in order, writing an intent row
// before each conditional decrement. When a decrement fails mid-sequence every
// prior one is undone before the conflict is reported. This is best-effort
// compensation, not a transaction; the intent rows make an interrupted run
// auditable.
func (s *service) applyDecrements(ctx context.Context, orderID uuid.UUID, prepared []preparedLine) error {
	applied := make([]appliedDecrement, 0, len(prepared))

	for _, p := range prepared {
		if p.decrement <= 0 {
			continue
		}
		intent, err := s.ledger.RecordIntent(ctx, p.model.ItemID, &orderID, -p.decrement, enums.StockMovementReasonOrderAdd)
		if err != nil {
			s.compensate(ctx, orderID, applied)
			return err
		}
		ok, err := s.stock.DecrementIfAvailable(ctx, p.model.ItemID, p.decrement)
		if err != nil {
			s.compensate(ctx, orderID, applied)
			return err
		}
		if !ok {
			s.metricsIncConflict()
			s.compensate(ctx, orderID, applied)
			return pkgerrors.Newf(pkgerrors.CodeConflict,
				"stock for %s changed concurrently, please retry", p.model.ItemID)
		}
		if err := s.ledger.MarkApplied(ctx, intent.ID); err != nil {
			s.logg.Error(ctx, "order.ledger.mark_applied_failed", err)
		}
		applied = append(applied, appliedDecrement{itemID: p.model.ItemID, qty: p.decrement})
	}
	return nil
}

// compensate re-adds every already applied decrement, most recent first.
// Failures are aggregated and logged; there is nothing further to unwind.
func (s *service) compensate(ctx context.Context, orderID uuid.UUID, applied []appliedDecrement) {
	var errs error
	for i := len(applied) - 1; i >= 0; i-- {
		if _, err := s.stock.Increment(ctx, applied[i].itemID, applied[i].qty); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("restore %s: %w", applied[i].itemID, err))
			continue
		}
		if err := s.ledger.RecordApplied(ctx, applied[i].itemID, &orderID, applied[i].qty, enums.StockMovementReasonCompensation, "undo partial add"); err != nil {
			errs = multierr.Append(errs, err)
		}
		s.metricsIncCompensation()
	}
	if errs != nil {
		s.logg.Error(ctx, "order.compensation_failed", errs)
	}
}

func (s *service) UpdateItemQuantity(ctx context.Context, orderID uuid.UUID, itemID string, quantity float64) (*OrderDTO, error) {
	ctx = s.logg.WithOrderID(ctx, orderID.String())
	ctx = s.logg.WithItemID(ctx, itemID)

	if !money.IsFinite(quantity) || quantity < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be a non-negative number")
	}

	order, err := s.loadOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.Status == enums.OrderStatusRejected {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "cannot modify a rejected order")
	}
	line := findLine(order.Items, itemID)
	if line == nil {
		return nil, pkgerrors.Newf(pkgerrors.CodeNotFound, "order has no line for item %s", itemID)
	}
	if quantity == line.Quantity {
		return NewOrderDTO(order), nil
	}

	delta := quantity - line.Quantity
	// Custom lines have no inventory backing; only the order side changes.
	if !line.IsCustom {
		if delta > 0 {
			intent, err := s.ledger.RecordIntent(ctx, line.ItemID, &orderID, -delta, enums.StockMovementReasonOrderUpdate)
			if err != nil {
				return nil, err
			}
			ok, err := s.stock.DecrementIfAvailable(ctx, line.ItemID, delta)
			if err != nil {
				return nil, err
			}
			if !ok {
				return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "not enough stock to increase %s", line.Name)
			}
			if err := s.ledger.MarkApplied(ctx, intent.ID); err != nil {
				s.logg.Error(ctx, "order.ledger.mark_applied_failed", err)
			}
		} else {
			returned := -delta
			found, err := s.stock.Increment(ctx, line.ItemID, returned)
			if err != nil {
				return nil, err
			}
			if found {
				if err := s.ledger.RecordApplied(ctx, line.ItemID, &orderID, returned, enums.StockMovementReasonOrderUpdate, "quantity decreased"); err != nil {
					s.logg.Error(ctx, "order.ledger.record_failed", err)
				}
			}
		}
	}

	line.Quantity = quantity
	if err := s.repo.UpdateLineItem(ctx, line); err != nil {
		return nil, err
	}
	total := orderTotalOver(order.Items)
	if err := s.repo.UpdateOrder(ctx, orderID, map[string]any{"total_amount": total}); err != nil {
		return nil, err
	}
	s.metricsIncApplied("update_quantity")
	s.logg.Info(ctx, "order.item_quantity_updated")

	updated, err := s.loadOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return NewOrderDTO(updated), nil
}

func (s *service) RemoveItem(ctx context.Context, orderID uuid.UUID, itemID string) (*OrderDTO, error) {
	ctx = s.logg.WithOrderID(ctx, orderID.String())
	ctx = s.logg.WithItemID(ctx, itemID)

	order, err := s.loadOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.Status == enums.OrderStatusRejected {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "cannot modify a rejected order")
	}
	line := findLine(order.Items, itemID)
	if line == nil {
		return nil, pkgerrors.Newf(pkgerrors.CodeNotFound, "order has no line for item %s", itemID)
	}

	// Returning stock is best-effort; a line whose inventory row is gone
	// still gets removed from the order.
	if line.Quantity > 0 && !line.IsCustom {
		found, err := s.stock.Increment(ctx, line.ItemID, line.Quantity)
		if err != nil {
			return nil, err
		}
		if found {
			if err := s.ledger.RecordApplied(ctx, line.ItemID, &orderID, line.Quantity, enums.StockMovementReasonOrderDelete, "line removed"); err != nil {
				s.logg.Error(ctx, "order.ledger.record_failed", err)
			}
		} else {
			s.logg.Warn(ctx, "order.remove_item.inventory_missing")
		}
	}

	if err := s.repo.DeleteLineItem(ctx, line.ID); err != nil {
		return nil, err
	}
	remaining := make([]models.OrderLineItem, 0, len(order.Items))
	for _, item := range order.Items {
		if item.ID != line.ID {
			remaining = append(remaining, item)
		}
	}
	total := orderTotalOver(remaining)
	if err := s.repo.UpdateOrder(ctx, orderID, map[string]any{"total_amount": total}); err != nil {
		return nil, err
	}
	s.metricsIncApplied("remove_item")
	s.logg.Info(ctx, "order.item_removed")

	updated, err := s.loadOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return NewOrderDTO(updated), nil
}

func (s *service) Decide(ctx context.Context, orderID uuid.UUID, input DecisionInput) (*OrderDTO, error) {
	ctx = s.logg.WithOrderID(ctx, orderID.String())

	order, err := s.loadOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	// Approving is only valid from pending; a reject may also walk back an
	// earlier approval.
	switch {
	case input.Approve && order.Status != enums.OrderStatusPending:
		return nil, pkgerrors.Newf(pkgerrors.CodeStateConflict, "order is already %s", string(order.Status))
	case !input.Approve && order.Status != enums.OrderStatusPending && order.Status != enums.OrderStatusApproved:
		return nil, pkgerrors.Newf(pkgerrors.CodeStateConflict, "order is already %s", string(order.Status))
	}

	status := enums.OrderStatusApproved
	if !input.Approve {
		status = enums.OrderStatusRejected
		// A rejected order releases its reserved stock.
		for _, line := range order.Items {
			if line.IsCustom || line.Quantity <= 0 {
				continue
			}
			found, err := s.stock.Increment(ctx, line.ItemID, line.Quantity)
			if err != nil {
				return nil, err
			}
			if found {
				if err := s.ledger.RecordApplied(ctx, line.ItemID, &orderID, line.Quantity, enums.StockMovementReasonOrderReject, "order rejected"); err != nil {
					s.logg.Error(ctx, "order.ledger.record_failed", err)
				}
			}
		}
	}

	now := time.Now().UTC()
	updates := map[string]any{
		"status":     string(status),
		"decided_at": now,
	}
	if input.Note != nil {
		updates["decision_note"] = *input.Note
	}
	if err := s.repo.UpdateOrder(ctx, orderID, updates); err != nil {
		return nil, err
	}
	s.logg.Info(ctx, "order.decided")

	updated, err := s.loadOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return NewOrderDTO(updated), nil
}

func (s *service) SetDeliveryAssignee(ctx context.Context, orderID uuid.UUID, assigneeID uuid.UUID) (*OrderDTO, error) {
	if assigneeID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "delivery assignee required")
	}
	if _, err := s.loadOrder(ctx, orderID); err != nil {
		return nil, err
	}
	updates := map[string]any{
		"delivery_assignee_id": assigneeID,
		"delivery_assigned_at": time.Now().UTC(),
	}
	if err := s.repo.UpdateOrder(ctx, orderID, updates); err != nil {
		return nil, err
	}
	updated, err := s.loadOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return NewOrderDTO(updated), nil
}

func (s *service) ClearDeliveryAssignee(ctx context.Context, orderID uuid.UUID) (*OrderDTO, error) {
	if _, err := s.loadOrder(ctx, orderID); err != nil {
		return nil, err
	}
	updates := map[string]any{
		"delivery_assignee_id": nil,
		"delivery_assigned_at": nil,
	}
	if err := s.repo.UpdateOrder(ctx, orderID, updates); err != nil {
		return nil, err
	}
	updated, err := s.loadOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return NewOrderDTO(updated), nil
}

// repairLegacyPrices coerces broken stored prices to the current inventory
// price, or zero, and persists the fixed lines with a corrected total.
func (s *service) repairLegacyPrices(ctx context.Context, order *models.Order) error {
	repaired := false
	for i := range order.Items {
		line := &order.Items[i]
		if money.IsFinite(line.Price) && line.Price >= 0 {
			continue
		}
		price := 0.0
		if !line.IsCustom {
			item, err := s.stock.FindByItemID(ctx, line.ItemID)
			if err == nil && money.IsFinite(item.Price) && item.Price >= 0 {
				price = item.Price
			} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
		}
		line.Price = price
		if err := s.repo.UpdateLineItem(ctx, line); err != nil {
			return err
		}
		s.logg.Warn(s.logg.WithItemID(ctx, line.ItemID), "order.legacy_price_repaired")
		repaired = true
	}
	if !repaired {
		return nil
	}
	total := orderTotalOver(order.Items)
	order.TotalAmount = total
	return s.repo.UpdateOrder(ctx, order.ID, map[string]any{"total_amount": total})
}

func (s *service) loadOrder(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	order, err := s.repo.FindOrder(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, err
	}
	return order, nil
}

func (s *service) metricsIncApplied(operation string) {
	if s.metrics != nil {
		s.metrics.IncApplied(operation)
	}
}

func (s *service) metricsIncConflict() {
	if s.metrics != nil {
		s.metrics.IncConflict()
	}
}

func (s *service) metricsIncCompensation() {
	if s.metrics != nil {
		s.metrics.IncCompensation()
	}
}

func buildCustomLine(orderID uuid.UUID, source enums.LineItemSource, index int, line RequestedLine) (models.OrderLineItem, error) {
	if strings.TrimSpace(line.Name) == "" {
		return models.OrderLineItem{}, pkgerrors.Newf(pkgerrors.CodeValidation, "items[%d]: custom item requires a name", index)
	}
	if strings.TrimSpace(line.Unit) == "" {
		return models.OrderLineItem{}, pkgerrors.Newf(pkgerrors.CodeValidation, "items[%d]: custom item requires a unit", index)
	}
	if strings.TrimSpace(line.Category) == "" {
		return models.OrderLineItem{}, pkgerrors.Newf(pkgerrors.CodeValidation, "items[%d]: custom item requires a category", index)
	}
	if line.Price == nil || !money.IsFinite(*line.Price) || *line.Price < 0 {
		return models.OrderLineItem{}, pkgerrors.Newf(pkgerrors.CodeValidation, "items[%d]: custom item requires a non-negative price", index)
	}
	itemID := strings.TrimSpace(line.ItemID)
	if itemID == "" {
		itemID = newCustomItemID()
	}
	return models.OrderLineItem{
		OrderID:  orderID,
		ItemID:   itemID,
		Name:     strings.TrimSpace(line.Name),
		Category: strings.TrimSpace(line.Category),
		Unit:     strings.TrimSpace(line.Unit),
		Price:    money.Round2(*line.Price),
		Quantity: line.Quantity,
		Source:   source,
		IsCustom: true,
	}, nil
}

func newCustomItemID() string {
	return fmt.Sprintf("CUSTOM-%d-%d", time.Now().UnixMilli(), rand.Intn(1000))
}

// resolvePrice picks the caller price when valid, then the inventory price,
// then zero with a data quality warning.
func resolvePrice(requested *float64, item *models.InventoryItem) (float64, string) {
	if requested != nil && money.IsFinite(*requested) && *requested >= 0 {
		return money.Round2(*requested), ""
	}
	if money.IsFinite(item.Price) && item.Price >= 0 {
		return money.Round2(item.Price), ""
	}
	return 0, fmt.Sprintf("no valid price for %s, defaulting to 0", item.ItemID)
}

func findLine(items []models.OrderLineItem, itemID string) *models.OrderLineItem {
	for i := range items {
		if items[i].ItemID == itemID {
			return &items[i]
		}
	}
	return nil
}

func orderTotalOver(items []models.OrderLineItem) float64 {
	lines := make([]money.Line, 0, len(items))
	for _, item := range items {
		lines = append(lines, money.Line{Price: item.Price, Quantity: item.Quantity})
	}
	return money.OrderTotal(lines)
}

func formatQuantity(q float64) string {
	return strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.3f", q), "0"), ".")
}
