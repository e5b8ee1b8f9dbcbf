package orders

import (
	"context"
	"io"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/agriops/plantops-backend/pkg/db/models"
	"github.com/agriops/plantops-backend/pkg/enums"
	pkgerrors "github.com/agriops/plantops-backend/pkg/errors"
	"github.com/agriops/plantops-backend/pkg/logger"
)

type stubOrderRepo struct {
	orders       map[uuid.UUID]*models.Order
	orderUpdates []map[string]any
}

func newStubOrderRepo(orders ...*models.Order) *stubOrderRepo {
	repo := &stubOrderRepo{orders: make(map[uuid.UUID]*models.Order)}
	for _, order := range orders {
		repo.orders[order.ID] = order
	}
	return repo
}

func (r *stubOrderRepo) WithTx(tx *gorm.DB) Repository { return r }

func (r *stubOrderRepo) FindOrder(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	order, ok := r.orders[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	clone := *order
	clone.Items = make([]models.OrderLineItem, len(order.Items))
	copy(clone.Items, order.Items)
	return &clone, nil
}

func (r *stubOrderRepo) List(ctx context.Context, query ListQuery) ([]models.Order, string, error) {
	rows := make([]models.Order, 0, len(r.orders))
	for _, order := range r.orders {
		rows = append(rows, *order)
	}
	return rows, "", nil
}

func (r *stubOrderRepo) UpdateOrder(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	order, ok := r.orders[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	r.orderUpdates = append(r.orderUpdates, updates)
	if total, ok := updates["total_amount"]; ok {
		order.TotalAmount = total.(float64)
	}
	if status, ok := updates["status"]; ok {
		order.Status = enums.OrderStatus(status.(string))
	}
	if assignee, ok := updates["delivery_assignee_id"]; ok {
		if assignee == nil {
			order.DeliveryAssigneeID = nil
		} else {
			id := assignee.(uuid.UUID)
			order.DeliveryAssigneeID = &id
		}
	}
	if assignedAt, ok := updates["delivery_assigned_at"]; ok {
		if assignedAt == nil {
			order.DeliveryAssignedAt = nil
		} else {
			at := assignedAt.(time.Time)
			order.DeliveryAssignedAt = &at
		}
	}
	return nil
}

func (r *stubOrderRepo) CreateLineItems(ctx context.Context, items []models.OrderLineItem) error {
	for _, item := range items {
		order, ok := r.orders[item.OrderID]
		if !ok {
			return gorm.ErrRecordNotFound
		}
		if item.ID == uuid.Nil {
			item.ID = uuid.New()
		}
		order.Items = append(order.Items, item)
	}
	return nil
}

func (r *stubOrderRepo) UpdateLineItem(ctx context.Context, item *models.OrderLineItem) error {
	order, ok := r.orders[item.OrderID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	for i := range order.Items {
		if order.Items[i].ID == item.ID {
			order.Items[i] = *item
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (r *stubOrderRepo) DeleteLineItem(ctx context.Context, id uuid.UUID) error {
	for _, order := range r.orders {
		for i := range order.Items {
			if order.Items[i].ID == id {
				order.Items = append(order.Items[:i], order.Items[i+1:]...)
				return nil
			}
		}
	}
	return gorm.ErrRecordNotFound
}

type stubStock struct {
	items         map[string]*models.InventoryItem
	failDecrement map[string]bool
	decrements    []string
	increments    []string
}

func newStubStock(items ...*models.InventoryItem) *stubStock {
	stock := &stubStock{
		items:         make(map[string]*models.InventoryItem),
		failDecrement: make(map[string]bool),
	}
	for _, item := range items {
		stock.items[item.ItemID] = item
	}
	return stock
}

func (s *stubStock) FindByItemID(ctx context.Context, itemID string) (*models.InventoryItem, error) {
	item, ok := s.items[itemID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	clone := *item
	return &clone, nil
}

func (s *stubStock) DecrementIfAvailable(ctx context.Context, itemID string, qty float64) (bool, error) {
	if qty <= 0 {
		return true, nil
	}
	if s.failDecrement[itemID] {
		return false, nil
	}
	item, ok := s.items[itemID]
	if !ok || item.Quantity < qty {
		return false, nil
	}
	item.Quantity -= qty
	s.decrements = append(s.decrements, itemID)
	return true, nil
}

func (s *stubStock) Increment(ctx context.Context, itemID string, qty float64) (bool, error) {
	if qty <= 0 {
		return true, nil
	}
	item, ok := s.items[itemID]
	if !ok {
		return false, nil
	}
	item.Quantity += qty
	s.increments = append(s.increments, itemID)
	return true, nil
}

type recordedMovement struct {
	itemID  string
	delta   float64
	reason  enums.StockMovementReason
	applied bool
}

type stubLedger struct {
	movements []recordedMovement
	byID      map[uuid.UUID]int
}

func newStubLedger() *stubLedger {
	return &stubLedger{byID: make(map[uuid.UUID]int)}
}

func (l *stubLedger) RecordIntent(ctx context.Context, itemID string, orderID *uuid.UUID, delta float64, reason enums.StockMovementReason) (*models.StockMovement, error) {
	id := uuid.New()
	l.byID[id] = len(l.movements)
	l.movements = append(l.movements, recordedMovement{itemID: itemID, delta: delta, reason: reason})
	return &models.StockMovement{ID: id, ItemID: itemID, Delta: delta, Reason: reason}, nil
}

func (l *stubLedger) MarkApplied(ctx context.Context, id uuid.UUID) error {
	if idx, ok := l.byID[id]; ok {
		l.movements[idx].applied = true
	}
	return nil
}

func (l *stubLedger) RecordApplied(ctx context.Context, itemID string, orderID *uuid.UUID, delta float64, reason enums.StockMovementReason, note string) error {
	l.movements = append(l.movements, recordedMovement{itemID: itemID, delta: delta, reason: reason, applied: true})
	return nil
}

func (l *stubLedger) countByReason(reason enums.StockMovementReason) int {
	count := 0
	for _, m := range l.movements {
		if m.reason == reason {
			count++
		}
	}
	return count
}

func newTestService(t *testing.T, repo Repository, stock InventoryStock, recorder MovementRecorder) Service {
	t.Helper()
	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	svc, err := NewService(repo, stock, recorder, nil, logg)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func testOrder(status enums.OrderStatus, items ...models.OrderLineItem) *models.Order {
	id := uuid.New()
	for i := range items {
		if items[i].ID == uuid.Nil {
			items[i].ID = uuid.New()
		}
		items[i].OrderID = id
		items[i].CreatedAt = time.Now().Add(time.Duration(i) * time.Millisecond)
	}
	return &models.Order{
		ID:          id,
		OrderNumber: 1001,
		CustomerID:  uuid.New(),
		Status:      status,
		Items:       items,
	}
}

func assertCode(t *testing.T, err error, code pkgerrors.Code) *pkgerrors.Error {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s error, got nil", code)
	}
	typed := pkgerrors.As(err)
	if typed == nil {
		t.Fatalf("expected typed error, got %v", err)
	}
	if typed.Code() != code {
		t.Fatalf("expected code %s, got %s (%v)", code, typed.Code(), err)
	}
	return typed
}

func TestAddItemsDecrementsStockAndRecomputesTotal(t *testing.T) {
	order := testOrder(enums.OrderStatusPending)
	repo := newStubOrderRepo(order)
	stock := newStubStock(&models.InventoryItem{ItemID: "INV-1", Name: "Urea", Unit: "kg", Category: "Fertilizer", Quantity: 10, Price: 5})
	ledger := newStubLedger()
	svc := newTestService(t, repo, stock, ledger)

	dto, warnings, err := svc.AddItems(context.Background(), order.ID, AddItemsInput{
		Items: []RequestedLine{{ItemID: "INV-1", Quantity: 4}},
	})
	if err != nil {
		t.Fatalf("AddItems: %v", err)
	}
	if len(warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", warnings)
	}
	if got := stock.items["INV-1"].Quantity; got != 6 {
		t.Fatalf("expected inventory 6, got %v", got)
	}
	if len(dto.Items) != 1 {
		t.Fatalf("expected 1 line, got %d", len(dto.Items))
	}
	line := dto.Items[0]
	if line.ItemID != "INV-1" || line.Quantity != 4 || line.Price != 5 {
		t.Fatalf("unexpected line: %+v", line)
	}
	if line.Name != "Urea" || line.Category != "Fertilizer" || line.Unit != "kg" {
		t.Fatalf("snapshot fields not copied: %+v", line)
	}
	if dto.TotalAmount != 20 {
		t.Fatalf("expected total 20, got %v", dto.TotalAmount)
	}
	if ledger.countByReason(enums.StockMovementReasonOrderAdd) != 1 || !ledger.movements[0].applied {
		t.Fatalf("expected one applied order_add movement, got %+v", ledger.movements)
	}
}

func TestAddItemsInsufficientStockFailsUpFront(t *testing.T) {
	order := testOrder(enums.OrderStatusPending)
	repo := newStubOrderRepo(order)
	stock := newStubStock(&models.InventoryItem{ItemID: "INV-1", Name: "Urea", Unit: "kg", Quantity: 10, Price: 5})
	ledger := newStubLedger()
	svc := newTestService(t, repo, stock, ledger)

	_, _, err := svc.AddItems(context.Background(), order.ID, AddItemsInput{
		Items: []RequestedLine{{ItemID: "INV-1", Quantity: 11}},
	})
	typed := assertCode(t, err, pkgerrors.CodeValidation)
	if !strings.Contains(typed.Message(), "Available: 10") {
		t.Fatalf("expected available amount in message, got %q", typed.Message())
	}
	if stock.items["INV-1"].Quantity != 10 {
		t.Fatalf("inventory must be untouched, got %v", stock.items["INV-1"].Quantity)
	}
	if len(repo.orders[order.ID].Items) != 0 {
		t.Fatalf("order must be untouched")
	}
	if len(ledger.movements) != 0 {
		t.Fatalf("no movements expected, got %+v", ledger.movements)
	}
}

func TestAddItemsBoundaryExactStockSucceeds(t *testing.T) {
	order := testOrder(enums.OrderStatusPending)
	repo := newStubOrderRepo(order)
	stock := newStubStock(&models.InventoryItem{ItemID: "INV-1", Name: "Urea", Unit: "kg", Quantity: 10, Price: 5})
	svc := newTestService(t, repo, stock, newStubLedger())

	_, _, err := svc.AddItems(context.Background(), order.ID, AddItemsInput{
		Items: []RequestedLine{{ItemID: "INV-1", Quantity: 10}},
	})
	if err != nil {
		t.Fatalf("quantity equal to stock must succeed: %v", err)
	}
	if stock.items["INV-1"].Quantity != 0 {
		t.Fatalf("expected inventory 0, got %v", stock.items["INV-1"].Quantity)
	}
}

func TestAddItemsConflictCompensatesAppliedDecrements(t *testing.T) {
	order := testOrder(enums.OrderStatusPending)
	repo := newStubOrderRepo(order)
	stock := newStubStock(
		&models.InventoryItem{ItemID: "INV-A", Name: "Seed", Unit: "kg", Quantity: 10, Price: 3},
		&models.InventoryItem{ItemID: "INV-B", Name: "Mulch", Unit: "bag", Quantity: 5, Price: 2},
	)
	stock.failDecrement["INV-B"] = true
	ledger := newStubLedger()
	svc := newTestService(t, repo, stock, ledger)

	_, _, err := svc.AddItems(context.Background(), order.ID, AddItemsInput{
		Items: []RequestedLine{
			{ItemID: "INV-A", Quantity: 4},
			{ItemID: "INV-B", Quantity: 2},
		},
	})
	assertCode(t, err, pkgerrors.CodeConflict)

	if stock.items["INV-A"].Quantity != 10 {
		t.Fatalf("expected INV-A restored to 10, got %v", stock.items["INV-A"].Quantity)
	}
	if stock.items["INV-B"].Quantity != 5 {
		t.Fatalf("expected INV-B unchanged at 5, got %v", stock.items["INV-B"].Quantity)
	}
	if len(repo.orders[order.ID].Items) != 0 {
		t.Fatalf("order must be unmodified on conflict")
	}
	if ledger.countByReason(enums.StockMovementReasonCompensation) != 1 {
		t.Fatalf("expected one compensation movement, got %+v", ledger.movements)
	}
}

func TestAddItemsRejectedOrderRefused(t *testing.T) {
	order := testOrder(enums.OrderStatusRejected, models.OrderLineItem{ItemID: "INV-1", Quantity: 2, Price: 5})
	repo := newStubOrderRepo(order)
	stock := newStubStock(&models.InventoryItem{ItemID: "INV-1", Quantity: 10, Price: 5})
	svc := newTestService(t, repo, stock, newStubLedger())

	_, _, err := svc.AddItems(context.Background(), order.ID, AddItemsInput{
		Items: []RequestedLine{{ItemID: "INV-1", Quantity: 1}},
	})
	assertCode(t, err, pkgerrors.CodeStateConflict)

	_, err = svc.UpdateItemQuantity(context.Background(), order.ID, "INV-1", 5)
	assertCode(t, err, pkgerrors.CodeStateConflict)

	_, err = svc.RemoveItem(context.Background(), order.ID, "INV-1")
	assertCode(t, err, pkgerrors.CodeStateConflict)

	if stock.items["INV-1"].Quantity != 10 {
		t.Fatalf("rejected order ops must not touch inventory")
	}
}

func TestAddItemsCustomLine(t *testing.T) {
	order := testOrder(enums.OrderStatusPending)
	repo := newStubOrderRepo(order)
	stock := newStubStock()
	svc := newTestService(t, repo, stock, newStubLedger())

	price := 0.0
	dto, _, err := svc.AddItems(context.Background(), order.ID, AddItemsInput{
		Items: []RequestedLine{{Quantity: 2, Price: &price, Name: "Hand tally", Unit: "pc", Category: "Tools", IsCustom: true}},
	})
	if err != nil {
		t.Fatalf("custom line with zero price must succeed: %v", err)
	}
	if len(dto.Items) != 1 {
		t.Fatalf("expected 1 line, got %d", len(dto.Items))
	}
	if !strings.HasPrefix(dto.Items[0].ItemID, "CUSTOM-") {
		t.Fatalf("expected generated custom id, got %q", dto.Items[0].ItemID)
	}
	if !dto.Items[0].IsCustom {
		t.Fatalf("line must be flagged custom")
	}
	if len(stock.decrements) != 0 {
		t.Fatalf("custom lines must not touch inventory")
	}
}

func TestAddItemsCustomLineMissingPriceFails(t *testing.T) {
	order := testOrder(enums.OrderStatusPending)
	svc := newTestService(t, newStubOrderRepo(order), newStubStock(), newStubLedger())

	_, _, err := svc.AddItems(context.Background(), order.ID, AddItemsInput{
		Items: []RequestedLine{{Quantity: 1, Name: "Thing", Unit: "pc", Category: "Misc", IsCustom: true}},
	})
	assertCode(t, err, pkgerrors.CodeValidation)
}

func TestAddItemsUnknownInventoryItem(t *testing.T) {
	order := testOrder(enums.OrderStatusPending)
	svc := newTestService(t, newStubOrderRepo(order), newStubStock(), newStubLedger())

	_, _, err := svc.AddItems(context.Background(), order.ID, AddItemsInput{
		Items: []RequestedLine{{ItemID: "NOPE", Quantity: 1}},
	})
	assertCode(t, err, pkgerrors.CodeNotFound)
}

func TestAddItemsRepairsLegacyPricesEvenWhenValidationFails(t *testing.T) {
	broken := models.OrderLineItem{ItemID: "INV-1", Name: "Urea", Quantity: 2, Price: math.NaN()}
	order := testOrder(enums.OrderStatusPending, broken)
	repo := newStubOrderRepo(order)
	stock := newStubStock(&models.InventoryItem{ItemID: "INV-1", Name: "Urea", Unit: "kg", Quantity: 10, Price: 5})
	svc := newTestService(t, repo, stock, newStubLedger())

	_, _, err := svc.AddItems(context.Background(), order.ID, AddItemsInput{Items: nil})
	assertCode(t, err, pkgerrors.CodeValidation)

	stored := repo.orders[order.ID]
	if stored.Items[0].Price != 5 {
		t.Fatalf("expected legacy price repaired to 5, got %v", stored.Items[0].Price)
	}
	if stored.TotalAmount != 10 {
		t.Fatalf("expected repaired total 10, got %v", stored.TotalAmount)
	}
}

func TestAddItemsPriceFallsBackToZeroWithWarning(t *testing.T) {
	order := testOrder(enums.OrderStatusPending)
	repo := newStubOrderRepo(order)
	stock := newStubStock(&models.InventoryItem{ItemID: "INV-1", Name: "Urea", Unit: "kg", Quantity: 10, Price: math.Inf(1)})
	svc := newTestService(t, repo, stock, newStubLedger())

	dto, warnings, err := svc.AddItems(context.Background(), order.ID, AddItemsInput{
		Items: []RequestedLine{{ItemID: "INV-1", Quantity: 2}},
	})
	if err != nil {
		t.Fatalf("AddItems: %v", err)
	}
	if len(warnings) != 1 {
		t.Fatalf("expected one data quality warning, got %v", warnings)
	}
	if dto.Items[0].Price != 0 || dto.TotalAmount != 0 {
		t.Fatalf("expected zero price and total, got %+v", dto)
	}
}

func TestUpdateItemQuantityNoOp(t *testing.T) {
	order := testOrder(enums.OrderStatusPending, models.OrderLineItem{ItemID: "INV-2", Quantity: 3, Price: 2})
	order.TotalAmount = 6
	repo := newStubOrderRepo(order)
	stock := newStubStock(&models.InventoryItem{ItemID: "INV-2", Quantity: 7, Price: 2})
	svc := newTestService(t, repo, stock, newStubLedger())

	dto, err := svc.UpdateItemQuantity(context.Background(), order.ID, "INV-2", 3)
	if err != nil {
		t.Fatalf("UpdateItemQuantity: %v", err)
	}
	if dto.TotalAmount != 6 {
		t.Fatalf("expected total unchanged at 6, got %v", dto.TotalAmount)
	}
	if stock.items["INV-2"].Quantity != 7 {
		t.Fatalf("no-op must not touch inventory")
	}
	if len(repo.orderUpdates) != 0 {
		t.Fatalf("no-op must not save the order, got %v", repo.orderUpdates)
	}
}

func TestUpdateItemQuantityIncrease(t *testing.T) {
	order := testOrder(enums.OrderStatusPending, models.OrderLineItem{ItemID: "INV-2", Quantity: 3, Price: 2})
	repo := newStubOrderRepo(order)
	stock := newStubStock(&models.InventoryItem{ItemID: "INV-2", Quantity: 7, Price: 2})
	ledger := newStubLedger()
	svc := newTestService(t, repo, stock, ledger)

	dto, err := svc.UpdateItemQuantity(context.Background(), order.ID, "INV-2", 5)
	if err != nil {
		t.Fatalf("UpdateItemQuantity: %v", err)
	}
	if stock.items["INV-2"].Quantity != 5 {
		t.Fatalf("expected inventory 5, got %v", stock.items["INV-2"].Quantity)
	}
	if dto.Items[0].Quantity != 5 || dto.TotalAmount != 10 {
		t.Fatalf("unexpected result: %+v", dto)
	}
	if ledger.countByReason(enums.StockMovementReasonOrderUpdate) != 1 {
		t.Fatalf("expected one order_update movement")
	}
}

func TestUpdateItemQuantityDecrease(t *testing.T) {
	order := testOrder(enums.OrderStatusPending, models.OrderLineItem{ItemID: "INV-2", Quantity: 3, Price: 2})
	repo := newStubOrderRepo(order)
	stock := newStubStock(&models.InventoryItem{ItemID: "INV-2", Quantity: 7, Price: 2})
	svc := newTestService(t, repo, stock, newStubLedger())

	dto, err := svc.UpdateItemQuantity(context.Background(), order.ID, "INV-2", 1)
	if err != nil {
		t.Fatalf("UpdateItemQuantity: %v", err)
	}
	if stock.items["INV-2"].Quantity != 9 {
		t.Fatalf("expected inventory 9, got %v", stock.items["INV-2"].Quantity)
	}
	if dto.Items[0].Quantity != 1 || dto.TotalAmount != 2 {
		t.Fatalf("unexpected result: %+v", dto)
	}
}

func TestUpdateItemQuantityInsufficientStock(t *testing.T) {
	order := testOrder(enums.OrderStatusPending, models.OrderLineItem{ItemID: "INV-2", Name: "Twine", Quantity: 3, Price: 2})
	order.TotalAmount = 6
	repo := newStubOrderRepo(order)
	stock := newStubStock(&models.InventoryItem{ItemID: "INV-2", Quantity: 1, Price: 2})
	svc := newTestService(t, repo, stock, newStubLedger())

	_, err := svc.UpdateItemQuantity(context.Background(), order.ID, "INV-2", 100)
	assertCode(t, err, pkgerrors.CodeValidation)
	if stock.items["INV-2"].Quantity != 1 {
		t.Fatalf("inventory must be untouched")
	}
	if repo.orders[order.ID].Items[0].Quantity != 3 {
		t.Fatalf("line must be untouched")
	}
}

func TestUpdateItemQuantityZeroKeepsLine(t *testing.T) {
	order := testOrder(enums.OrderStatusPending, models.OrderLineItem{ItemID: "INV-2", Quantity: 3, Price: 2})
	repo := newStubOrderRepo(order)
	stock := newStubStock(&models.InventoryItem{ItemID: "INV-2", Quantity: 7, Price: 2})
	svc := newTestService(t, repo, stock, newStubLedger())

	dto, err := svc.UpdateItemQuantity(context.Background(), order.ID, "INV-2", 0)
	if err != nil {
		t.Fatalf("UpdateItemQuantity: %v", err)
	}
	if len(dto.Items) != 1 || dto.Items[0].Quantity != 0 {
		t.Fatalf("zero quantity keeps the line, got %+v", dto.Items)
	}
	if stock.items["INV-2"].Quantity != 10 {
		t.Fatalf("expected full quantity returned, got %v", stock.items["INV-2"].Quantity)
	}
	if dto.TotalAmount != 0 {
		t.Fatalf("expected total 0, got %v", dto.TotalAmount)
	}
}

func TestUpdateCustomLineSkipsInventory(t *testing.T) {
	order := testOrder(enums.OrderStatusPending, models.OrderLineItem{ItemID: "CUSTOM-1-1", Quantity: 2, Price: 4, IsCustom: true})
	repo := newStubOrderRepo(order)
	stock := newStubStock()
	svc := newTestService(t, repo, stock, newStubLedger())

	dto, err := svc.UpdateItemQuantity(context.Background(), order.ID, "CUSTOM-1-1", 5)
	if err != nil {
		t.Fatalf("UpdateItemQuantity: %v", err)
	}
	if dto.Items[0].Quantity != 5 || dto.TotalAmount != 20 {
		t.Fatalf("unexpected result: %+v", dto)
	}
	if len(stock.decrements) != 0 || len(stock.increments) != 0 {
		t.Fatalf("custom line must skip inventory")
	}
}

func TestRemoveItemReturnsStock(t *testing.T) {
	order := testOrder(enums.OrderStatusPending,
		models.OrderLineItem{ItemID: "INV-2", Quantity: 1, Price: 2},
		models.OrderLineItem{ItemID: "INV-3", Quantity: 4, Price: 3},
	)
	repo := newStubOrderRepo(order)
	stock := newStubStock(
		&models.InventoryItem{ItemID: "INV-2", Quantity: 9, Price: 2},
		&models.InventoryItem{ItemID: "INV-3", Quantity: 2, Price: 3},
	)
	ledger := newStubLedger()
	svc := newTestService(t, repo, stock, ledger)

	dto, err := svc.RemoveItem(context.Background(), order.ID, "INV-2")
	if err != nil {
		t.Fatalf("RemoveItem: %v", err)
	}
	if stock.items["INV-2"].Quantity != 10 {
		t.Fatalf("expected inventory 10, got %v", stock.items["INV-2"].Quantity)
	}
	if len(dto.Items) != 1 || dto.Items[0].ItemID != "INV-3" {
		t.Fatalf("expected only INV-3 to remain, got %+v", dto.Items)
	}
	if dto.TotalAmount != 12 {
		t.Fatalf("expected total 12, got %v", dto.TotalAmount)
	}
	if ledger.countByReason(enums.StockMovementReasonOrderDelete) != 1 {
		t.Fatalf("expected one order_delete movement")
	}
}

func TestRemoveItemMissingInventoryIsSilentNoOp(t *testing.T) {
	order := testOrder(enums.OrderStatusPending, models.OrderLineItem{ItemID: "GONE", Quantity: 3, Price: 2})
	repo := newStubOrderRepo(order)
	svc := newTestService(t, repo, newStubStock(), newStubLedger())

	dto, err := svc.RemoveItem(context.Background(), order.ID, "GONE")
	if err != nil {
		t.Fatalf("RemoveItem must tolerate a missing inventory row: %v", err)
	}
	if len(dto.Items) != 0 || dto.TotalAmount != 0 {
		t.Fatalf("expected empty order with zero total, got %+v", dto)
	}
}

func TestRemoveLastItemLeavesEmptyOrder(t *testing.T) {
	order := testOrder(enums.OrderStatusPending, models.OrderLineItem{ItemID: "INV-1", Quantity: 2, Price: 5})
	repo := newStubOrderRepo(order)
	stock := newStubStock(&models.InventoryItem{ItemID: "INV-1", Quantity: 8, Price: 5})
	svc := newTestService(t, repo, stock, newStubLedger())

	dto, err := svc.RemoveItem(context.Background(), order.ID, "INV-1")
	if err != nil {
		t.Fatalf("RemoveItem: %v", err)
	}
	if len(dto.Items) != 0 {
		t.Fatalf("expected no lines, got %+v", dto.Items)
	}
	if dto.TotalAmount != 0 {
		t.Fatalf("expected total 0, got %v", dto.TotalAmount)
	}
}

func TestDecideRejectReturnsStock(t *testing.T) {
	order := testOrder(enums.OrderStatusPending,
		models.OrderLineItem{ItemID: "INV-1", Quantity: 4, Price: 5},
		models.OrderLineItem{ItemID: "CUSTOM-9-9", Quantity: 1, Price: 3, IsCustom: true},
	)
	repo := newStubOrderRepo(order)
	stock := newStubStock(&models.InventoryItem{ItemID: "INV-1", Quantity: 6, Price: 5})
	ledger := newStubLedger()
	svc := newTestService(t, repo, stock, ledger)

	note := "quality concerns"
	dto, err := svc.Decide(context.Background(), order.ID, DecisionInput{Approve: false, Note: &note})
	if err != nil {
		t.Fatalf("Decide: %v", err)
	}
	if dto.Status != string(enums.OrderStatusRejected) {
		t.Fatalf("expected rejected, got %s", dto.Status)
	}
	if stock.items["INV-1"].Quantity != 10 {
		t.Fatalf("expected stock returned to 10, got %v", stock.items["INV-1"].Quantity)
	}
	if ledger.countByReason(enums.StockMovementReasonOrderReject) != 1 {
		t.Fatalf("custom lines must not produce reject movements, got %+v", ledger.movements)
	}
}

func TestDecideApprove(t *testing.T) {
	order := testOrder(enums.OrderStatusPending)
	repo := newStubOrderRepo(order)
	svc := newTestService(t, repo, newStubStock(), newStubLedger())

	dto, err := svc.Decide(context.Background(), order.ID, DecisionInput{Approve: true})
	if err != nil {
		t.Fatalf("Decide: %v", err)
	}
	if dto.Status != string(enums.OrderStatusApproved) {
		t.Fatalf("expected approved, got %s", dto.Status)
	}
}

func TestDecideNonPendingRefused(t *testing.T) {
	order := testOrder(enums.OrderStatusApproved)
	svc := newTestService(t, newStubOrderRepo(order), newStubStock(), newStubLedger())

	_, err := svc.Decide(context.Background(), order.ID, DecisionInput{Approve: true})
	assertCode(t, err, pkgerrors.CodeStateConflict)
}

func TestDecideRejectWalksBackApproval(t *testing.T) {
	order := testOrder(enums.OrderStatusApproved,
		models.OrderLineItem{ItemID: "INV-1", Quantity: 2, Price: 5},
	)
	repo := newStubOrderRepo(order)
	stock := newStubStock(&models.InventoryItem{ItemID: "INV-1", Quantity: 3, Price: 5})
	svc := newTestService(t, repo, stock, newStubLedger())

	dto, err := svc.Decide(context.Background(), order.ID, DecisionInput{Approve: false})
	if err != nil {
		t.Fatalf("Decide: %v", err)
	}
	if dto.Status != string(enums.OrderStatusRejected) {
		t.Fatalf("expected rejected, got %s", dto.Status)
	}
	if stock.items["INV-1"].Quantity != 5 {
		t.Fatalf("expected stock returned to 5, got %v", stock.items["INV-1"].Quantity)
	}
}

func TestDecideRejectTwiceRefused(t *testing.T) {
	order := testOrder(enums.OrderStatusRejected)
	svc := newTestService(t, newStubOrderRepo(order), newStubStock(), newStubLedger())

	_, err := svc.Decide(context.Background(), order.ID, DecisionInput{Approve: false})
	assertCode(t, err, pkgerrors.CodeStateConflict)
}

func TestGetOrderNotFound(t *testing.T) {
	svc := newTestService(t, newStubOrderRepo(), newStubStock(), newStubLedger())

	_, err := svc.GetOrder(context.Background(), uuid.New())
	assertCode(t, err, pkgerrors.CodeNotFound)
}

func TestSetDeliveryAssigneeStampsAssignedAt(t *testing.T) {
	order := testOrder(enums.OrderStatusApproved)
	repo := newStubOrderRepo(order)
	svc := newTestService(t, repo, newStubStock(), newStubLedger())

	assignee := uuid.New()
	before := time.Now().UTC()
	dto, err := svc.SetDeliveryAssignee(context.Background(), order.ID, assignee)
	if err != nil {
		t.Fatalf("SetDeliveryAssignee: %v", err)
	}
	if dto.DeliveryAssigneeID == nil || *dto.DeliveryAssigneeID != assignee {
		t.Fatalf("expected assignee %s, got %v", assignee, dto.DeliveryAssigneeID)
	}
	if dto.DeliveryAssignedAt == nil {
		t.Fatal("expected delivery_assigned_at to be stamped")
	}
	if dto.DeliveryAssignedAt.Before(before) || dto.DeliveryAssignedAt.After(time.Now().UTC()) {
		t.Fatalf("assigned-at stamp %v outside call window", dto.DeliveryAssignedAt)
	}
}

func TestClearDeliveryAssigneeClearsAssignedAt(t *testing.T) {
	order := testOrder(enums.OrderStatusApproved)
	assignee := uuid.New()
	assignedAt := time.Now().UTC().Add(-time.Hour)
	order.DeliveryAssigneeID = &assignee
	order.DeliveryAssignedAt = &assignedAt
	repo := newStubOrderRepo(order)
	svc := newTestService(t, repo, newStubStock(), newStubLedger())

	dto, err := svc.ClearDeliveryAssignee(context.Background(), order.ID)
	if err != nil {
		t.Fatalf("ClearDeliveryAssignee: %v", err)
	}
	if dto.DeliveryAssigneeID != nil {
		t.Fatalf("expected assignee cleared, got %v", dto.DeliveryAssigneeID)
	}
	if dto.DeliveryAssignedAt != nil {
		t.Fatalf("expected delivery_assigned_at cleared, got %v", dto.DeliveryAssignedAt)
	}
}
