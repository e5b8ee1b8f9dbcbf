package consultations

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/agriops/plantops-backend/pkg/db/models"
	"github.com/agriops/plantops-backend/pkg/pagination"
)

// Repository defines persistence operations for consultations.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, consultation *models.Consultation) (*models.Consultation, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Consultation, error)
	List(ctx context.Context, query ListQuery) ([]models.Consultation, string, error)
	Update(ctx context.Context, id uuid.UUID, updates map[string]any) error
}

// ListQuery carries consultation list filters alongside cursor pagination inputs.
type ListQuery struct {
	Pagination pagination.Params
	Status     string
	FarmerID   *uuid.UUID
	ExpertID   *uuid.UUID
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a consultations repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, consultation *models.Consultation) (*models.Consultation, error) {
	if err := r.db.WithContext(ctx).Create(consultation).Error; err != nil {
		return nil, err
	}
	return consultation, nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Consultation, error) {
	var consultation models.Consultation
	if err := r.db.WithContext(ctx).First(&consultation, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &consultation, nil
}

func (r *repository) List(ctx context.Context, query ListQuery) ([]models.Consultation, string, error) {
	pageSize := pagination.NormalizeLimit(query.Pagination.Limit)
	cursor, err := pagination.ParseCursor(query.Pagination.Cursor)
	if err != nil {
		return nil, "", err
	}

	qb := r.db.WithContext(ctx).Model(&models.Consultation{})
	if query.Status != "" {
		qb = qb.Where("status = ?", query.Status)
	}
	if query.FarmerID != nil {
		qb = qb.Where("farmer_id = ?", *query.FarmerID)
	}
	if query.ExpertID != nil {
		qb = qb.Where("expert_id = ?", *query.ExpertID)
	}
	if cursor != nil {
		qb = qb.Where("(created_at < ?) OR (created_at = ? AND id < ?)", cursor.CreatedAt, cursor.CreatedAt, cursor.ID)
	}

	var rows []models.Consultation
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
		Model(&models.Consultation{}).
		Where("id = ?", id).
		Updates(updates).Error
}
