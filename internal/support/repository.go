package support

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/agriops/plantops-backend/pkg/db/models"
	"github.com/agriops/plantops-backend/pkg/pagination"
)

// Repository defines persistence operations for support tickets and replies.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateTicket(ctx context.Context, ticket *models.SupportTicket) (*models.SupportTicket, error)
	FindTicket(ctx context.Context, id uuid.UUID) (*models.SupportTicket, error)
	List(ctx context.Context, query ListQuery) ([]models.SupportTicket, string, error)
	UpdateTicket(ctx context.Context, id uuid.UUID, updates map[string]any) error
	CreateReply(ctx context.Context, reply *models.SupportReply) (*models.SupportReply, error)
}

// ListQuery carries ticket list filters alongside cursor pagination inputs.
type ListQuery struct {
	Pagination pagination.Params
	Status     string
	UserID     *uuid.UUID
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a support repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) CreateTicket(ctx context.Context, ticket *models.SupportTicket) (*models.SupportTicket, error) {
	if err := r.db.WithContext(ctx).Create(ticket).Error; err != nil {
		return nil, err
	}
	return ticket, nil
}

func (r *repository) FindTicket(ctx context.Context, id uuid.UUID) (*models.SupportTicket, error) {
	var ticket models.SupportTicket
	err := r.db.WithContext(ctx).
		Preload("Replies", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		First(&ticket, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &ticket, nil
}

func (r *repository) List(ctx context.Context, query ListQuery) ([]models.SupportTicket, string, error) {
	pageSize := pagination.NormalizeLimit(query.Pagination.Limit)
	cursor, err := pagination.ParseCursor(query.Pagination.Cursor)
	if err != nil {
		return nil, "", err
	}

	qb := r.db.WithContext(ctx).Model(&models.SupportTicket{})
	if query.Status != "" {
		qb = qb.Where("status = ?", query.Status)
	}
	if query.UserID != nil {
		qb = qb.Where("user_id = ?", *query.UserID)
	}
	if cursor != nil {
		qb = qb.Where("(created_at < ?) OR (created_at = ? AND id < ?)", cursor.CreatedAt, cursor.CreatedAt, cursor.ID)
	}

	var rows []models.SupportTicket
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

func (r *repository) UpdateTicket(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.SupportTicket{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *repository) CreateReply(ctx context.Context, reply *models.SupportReply) (*models.SupportReply, error) {
	if err := r.db.WithContext(ctx).Create(reply).Error; err != nil {
		return nil, err
	}
	return reply, nil
}
