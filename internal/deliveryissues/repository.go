package deliveryissues

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/agriops/plantops-backend/pkg/db/models"
	"github.com/agriops/plantops-backend/pkg/pagination"
)

// Repository defines persistence operations for delivery issues.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, issue *models.DeliveryIssue) (*models.DeliveryIssue, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.DeliveryIssue, error)
	List(ctx context.Context, query ListQuery) ([]models.DeliveryIssue, string, error)
	Update(ctx context.Context, id uuid.UUID, updates map[string]any) error
}

// ListQuery carries delivery issue filters alongside cursor pagination inputs.
type ListQuery struct {
	Pagination pagination.Params
	Status     string
	OrderID    *uuid.UUID
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a delivery issues repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, issue *models.DeliveryIssue) (*models.DeliveryIssue, error) {
	if err := r.db.WithContext(ctx).Create(issue).Error; err != nil {
		return nil, err
	}
	return issue, nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.DeliveryIssue, error) {
	var issue models.DeliveryIssue
	if err := r.db.WithContext(ctx).First(&issue, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &issue, nil
}

func (r *repository) List(ctx context.Context, query ListQuery) ([]models.DeliveryIssue, string, error) {
	pageSize := pagination.NormalizeLimit(query.Pagination.Limit)
	cursor, err := pagination.ParseCursor(query.Pagination.Cursor)
	if err != nil {
		return nil, "", err
	}

	qb := r.db.WithContext(ctx).Model(&models.DeliveryIssue{})
	if query.Status != "" {
		qb = qb.Where("status = ?", query.Status)
	}
	if query.OrderID != nil {
		qb = qb.Where("order_id = ?", *query.OrderID)
	}
	if cursor != nil {
		qb = qb.Where("(created_at < ?) OR (created_at = ? AND id < ?)", cursor.CreatedAt, cursor.CreatedAt, cursor.ID)
	}

	var rows []models.DeliveryIssue
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

func (r *repository) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.DeliveryIssue{}).
		Where("id = ?", id).
		Updates(updates).Error
}
