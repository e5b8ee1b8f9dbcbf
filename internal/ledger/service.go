package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/agriops/plantops-backend/pkg/db/models"
	"github.com/agriops/plantops-backend/pkg/enums"
	pkgerrors "github.com/agriops/plantops-backend/pkg/errors"
	"github.com/agriops/plantops-backend/pkg/pagination"
)

// Recorder writes stock movement rows on behalf of reconciliation flows. An
// intent row lands before the stock update runs; MarkApplied flips it once the
// guarded update reports success.
type Recorder interface {
	RecordIntent(ctx context.Context, itemID string, orderID *uuid.UUID, delta float64, reason enums.StockMovementReason) (*models.StockMovement, error)
	MarkApplied(ctx context.Context, id uuid.UUID) error
	RecordApplied(ctx context.Context, itemID string, orderID *uuid.UUID, delta float64, reason enums.StockMovementReason, note string) error
}

// Service exposes the movement log read side on top of Recorder.
type Service interface {
	Recorder
	ListMovements(ctx context.Context, itemID string, params pagination.Params) (*MovementListResult, error)
}

// MovementDTO is the client-facing view of one ledger row.
type MovementDTO struct {
	ID        uuid.UUID  `json:"id"`
	ItemID    string     `json:"item_id"`
	OrderID   *uuid.UUID `json:"order_id,omitempty"`
	Delta     float64    `json:"delta"`
	Reason    string     `json:"reason"`
	Applied   bool       `json:"applied"`
	Note      *string    `json:"note,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// MovementListResult bundles a page of movements with the next cursor.
type MovementListResult struct {
	Movements  []MovementDTO `json:"movements"`
	NextCursor string        `json:"next_cursor,omitempty"`
}

type service struct {
	repo Repository
}

// NewService constructs the ledger service.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("ledger repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) RecordIntent(ctx context.Context, itemID string, orderID *uuid.UUID, delta float64, reason enums.StockMovementReason) (*models.StockMovement, error) {
	movement := &models.StockMovement{
		ItemID:  itemID,
		OrderID: orderID,
		Delta:   delta,
		Reason:  reason,
	}
	created, err := s.repo.Create(ctx, movement)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record stock movement intent")
	}
	return created, nil
}

func (s *service) MarkApplied(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.MarkApplied(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark stock movement applied")
	}
	return nil
}

func (s *service) RecordApplied(ctx context.Context, itemID string, orderID *uuid.UUID, delta float64, reason enums.StockMovementReason, note string) error {
	movement := &models.StockMovement{
		ItemID:  itemID,
		OrderID: orderID,
		Delta:   delta,
		Reason:  reason,
		Applied: true,
	}
	if note != "" {
		movement.Note = &note
	}
	if _, err := s.repo.Create(ctx, movement); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record stock movement")
	}
	return nil
}

func (s *service) ListMovements(ctx context.Context, itemID string, params pagination.Params) (*MovementListResult, error) {
	rows, next, err := s.repo.ListByItem(ctx, itemID, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list stock movements")
	}
	movements := make([]MovementDTO, 0, len(rows))
	for _, row := range rows {
		movements = append(movements, MovementDTO{
			ID:        row.ID,
			ItemID:    row.ItemID,
			OrderID:   row.OrderID,
			Delta:     row.Delta,
			Reason:    string(row.Reason),
			Applied:   row.Applied,
			Note:      row.Note,
			CreatedAt: row.CreatedAt,
		})
	}
	return &MovementListResult{Movements: movements, NextCursor: next}, nil
}
