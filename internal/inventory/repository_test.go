package inventory

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/agriops/plantops-backend/pkg/db/models"
	"github.com/agriops/plantops-backend/pkg/enums"
	"github.com/agriops/plantops-backend/pkg/pagination"
)

func setupInventoryTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	schema := `
CREATE TABLE IF NOT EXISTS inventory_items (
  id TEXT PRIMARY KEY,
  item_id TEXT NOT NULL UNIQUE,
  name TEXT NOT NULL,
  category TEXT NOT NULL,
  unit TEXT NOT NULL,
  quantity REAL NOT NULL DEFAULT 0,
  price REAL NOT NULL DEFAULT 0,
  reorder_level REAL NOT NULL DEFAULT 0,
  status TEXT NOT NULL DEFAULT 'Available',
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(schema).Error)
	return db
}

func seedItem(t *testing.T, db *gorm.DB, itemID string, quantity, reorderLevel float64) *models.InventoryItem {
	t.Helper()

	item := &models.InventoryItem{
		ID:           uuid.New(),
		ItemID:       itemID,
		Name:         "Seed " + itemID,
		Category:     "seeds",
		Unit:         "kg",
		Quantity:     quantity,
		Price:        4.50,
		ReorderLevel: reorderLevel,
		Status:       enums.DeriveInventoryStatus(quantity, reorderLevel),
	}
	require.NoError(t, db.Create(item).Error)
	return item
}

func reloadItem(t *testing.T, db *gorm.DB, itemID string) *models.InventoryItem {
	t.Helper()

	var item models.InventoryItem
	require.NoError(t, db.First(&item, "item_id = ?", itemID).Error)
	return &item
}

func TestDecrementIfAvailable(t *testing.T) {
	db := setupInventoryTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	seedItem(t, db, "SEED-1", 10, 3)

	ok, err := repo.DecrementIfAvailable(ctx, "SEED-1", 4)
	require.NoError(t, err)
	require.True(t, ok)

	item := reloadItem(t, db, "SEED-1")
	assert.Equal(t, 6.0, item.Quantity)
	assert.Equal(t, enums.InventoryStatusAvailable, item.Status)
}

func TestDecrementIfAvailableRecomputesStatus(t *testing.T) {
	db := setupInventoryTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	seedItem(t, db, "SEED-1", 10, 3)

	ok, err := repo.DecrementIfAvailable(ctx, "SEED-1", 8)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, enums.InventoryStatusLowStock, reloadItem(t, db, "SEED-1").Status)

	ok, err = repo.DecrementIfAvailable(ctx, "SEED-1", 2)
	require.NoError(t, err)
	require.True(t, ok)

	item := reloadItem(t, db, "SEED-1")
	assert.Equal(t, 0.0, item.Quantity)
	assert.Equal(t, enums.InventoryStatusOutOfStock, item.Status)
}

func TestDecrementIfAvailableRefusesOverdraw(t *testing.T) {
	db := setupInventoryTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	seedItem(t, db, "SEED-1", 5, 2)

	ok, err := repo.DecrementIfAvailable(ctx, "SEED-1", 6)
	require.NoError(t, err)
	assert.False(t, ok)

	item := reloadItem(t, db, "SEED-1")
	assert.Equal(t, 5.0, item.Quantity)
	assert.Equal(t, enums.InventoryStatusAvailable, item.Status)
}

func TestIncrementRestoresStockAndStatus(t *testing.T) {
	db := setupInventoryTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	item := seedItem(t, db, "SEED-1", 0, 3)
	item.Status = enums.InventoryStatusOutOfStock
	require.NoError(t, db.Save(item).Error)

	ok, err := repo.Increment(ctx, "SEED-1", 7)
	require.NoError(t, err)
	require.True(t, ok)

	reloaded := reloadItem(t, db, "SEED-1")
	assert.Equal(t, 7.0, reloaded.Quantity)
	assert.Equal(t, enums.InventoryStatusAvailable, reloaded.Status)
}

func TestIncrementMissingItemReportsNoRow(t *testing.T) {
	db := setupInventoryTestDB(t)
	repo := NewRepository(db)

	ok, err := repo.Increment(context.Background(), "NOPE", 3)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestListFiltersAndPaginates(t *testing.T) {
	db := setupInventoryTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	seedItem(t, db, "SEED-1", 10, 3)
	seedItem(t, db, "SEED-2", 10, 3)
	tool := seedItem(t, db, "TOOL-1", 4, 1)
	tool.Category = "tools"
	require.NoError(t, db.Save(tool).Error)

	rows, _, err := repo.List(ctx, ListQuery{Category: "tools"})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "TOOL-1", rows[0].ItemID)

	rows, _, err = repo.List(ctx, ListQuery{Search: "seed-"})
	require.NoError(t, err)
	assert.Len(t, rows, 2)

	page, next, err := repo.List(ctx, ListQuery{Pagination: pagination.Params{Limit: 2}})
	require.NoError(t, err)
	require.Len(t, page, 2)
	require.NotEmpty(t, next)

	rest, last, err := repo.List(ctx, ListQuery{Pagination: pagination.Params{Limit: 2, Cursor: next}})
	require.NoError(t, err)
	assert.Len(t, rest, 1)
	assert.Empty(t, last)
}
