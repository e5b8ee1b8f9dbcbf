package inventory

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/agriops/plantops-backend/pkg/db/models"
	"github.com/agriops/plantops-backend/pkg/pagination"
)

// Repository defines persistence operations for inventory items.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, item *models.InventoryItem) (*models.InventoryItem, error)
	Update(ctx context.Context, item *models.InventoryItem) (*models.InventoryItem, error)
	Delete(ctx context.Context, itemID string) error
	FindByItemID(ctx context.Context, itemID string) (*models.InventoryItem, error)
	List(ctx context.Context, query ListQuery) ([]models.InventoryItem, string, error)
	DecrementIfAvailable(ctx context.Context, itemID string, qty float64) (bool, error)
	Increment(ctx context.Context, itemID string, qty float64) (bool, error)
}

// ListQuery carries list filters alongside cursor pagination inputs.
type ListQuery struct {
	Pagination pagination.Params
	Category   string
	Status     string
	Search     string
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds an inventory repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, item *models.InventoryItem) (*models.InventoryItem, error) {
	if err := r.db.WithContext(ctx).Create(item).Error; err != nil {
		return nil, err
	}
	return item, nil
}

func (r *repository) Update(ctx context.Context, item *models.InventoryItem) (*models.InventoryItem, error) {
	if err := r.db.WithContext(ctx).Save(item).Error; err != nil {
		return nil, err
	}
	return item, nil
}

func (r *repository) Delete(ctx context.Context, itemID string) error {
	return r.db.WithContext(ctx).Where("item_id = ?", itemID).Delete(&models.InventoryItem{}).Error
}

func (r *repository) FindByItemID(ctx context.Context, itemID string) (*models.InventoryItem, error) {
	var item models.InventoryItem
	if err := r.db.WithContext(ctx).First(&item, "item_id = ?", itemID).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *repository) List(ctx context.Context, query ListQuery) ([]models.InventoryItem, string, error) {
	pageSize := pagination.NormalizeLimit(query.Pagination.Limit)
	cursor, err := pagination.ParseCursor(query.Pagination.Cursor)
	if err != nil {
		return nil, "", err
	}

	qb := r.db.WithContext(ctx).Model(&models.InventoryItem{})
	if query.Category != "" {
		qb = qb.Where("category = ?", query.Category)
	}
	if query.Status != "" {
		qb = qb.Where("status = ?", query.Status)
	}
	if search := strings.TrimSpace(query.Search); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		qb = qb.Where("(LOWER(name) LIKE ? OR LOWER(item_id) LIKE ?)", pattern, pattern)
	}
	if cursor != nil {
		qb = qb.Where("(created_at < ?) OR (created_at = ? AND id < ?)", cursor.CreatedAt, cursor.CreatedAt, cursor.ID)
	}

	var rows []models.InventoryItem
	err = qb.Order("created_at DESC").Order("id DESC").
		Limit(pagination.LimitWithBuffer(query.Pagination.Limit)).
		Find(&rows).Error
	if err != nil {
		return nil, "", err
	}

	nextCursor := ""
	if len(rows) > pageSize {
		rows = rows[:pageSize]
		last := rows[len(rows)-1]
		nextCursor = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}
	return rows, nextCursor, nil
}

// DecrementIfAvailable atomically subtracts qty from on-hand stock, refusing
// the update when it would drive the quantity negative. The derived status is
// recomputed in the same statement so readers never see a stale label.
func (r *repository) DecrementIfAvailable(ctx context.Context, itemID string, qty float64) (bool, error) {
	if qty <= 0 {
		return true, nil
	}
	res := r.db.WithContext(ctx).Exec(`
		UPDATE inventory_items
		SET quantity = quantity - ?,
			status = CASE
				WHEN quantity - ? <= 0 THEN 'Out of Stock'
				WHEN quantity - ? <= reorder_level THEN 'Low Stock'
				ELSE 'Available'
			END,
			updated_at = CURRENT_TIMESTAMP
		WHERE item_id = ? AND quantity >= ?
	`, qty, qty, qty, itemID, qty)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// Increment returns stock to an item. A missing row is reported via the bool
// result rather than an error so callers can treat it as a no-op.
func (r *repository) Increment(ctx context.Context, itemID string, qty float64) (bool, error) {
	if qty <= 0 {
		return true, nil
	}
	res := r.db.WithContext(ctx).Exec(`
		UPDATE inventory_items
		SET quantity = quantity + ?,
			status = CASE
				WHEN quantity + ? <= 0 THEN 'Out of Stock'
				WHEN quantity + ? <= reorder_level THEN 'Low Stock'
				ELSE 'Available'
			END,
			updated_at = CURRENT_TIMESTAMP
		WHERE item_id = ?
	`, qty, qty, qty, itemID)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}
