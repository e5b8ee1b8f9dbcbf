package consultations

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/agriops/plantops-backend/pkg/db/models"
	"github.com/agriops/plantops-backend/pkg/enums"
	pkgerrors "github.com/agriops/plantops-backend/pkg/errors"
)

// Service exposes the consultation workflow: farmers request advice, experts
// schedule and close out the session.
type Service interface {
	Create(ctx context.Context, farmerID uuid.UUID, input CreateInput) (*ConsultationDTO, error)
	Schedule(ctx context.Context, id uuid.UUID, expertID uuid.UUID, at time.Time) (*ConsultationDTO, error)
	Complete(ctx context.Context, id uuid.UUID) (*ConsultationDTO, error)
	Cancel(ctx context.Context, id uuid.UUID) (*ConsultationDTO, error)
	Get(ctx context.Context, id uuid.UUID) (*ConsultationDTO, error)
	List(ctx context.Context, query ListQuery) (*ListResult, error)
}

// CreateInput is the validated payload for a new consultation request.
type CreateInput struct {
	Topic   string
	Details string
}

type service struct {
	repo Repository
}

// NewService constructs the consultations service.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("consultations repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Create(ctx context.Context, farmerID uuid.UUID, input CreateInput) (*ConsultationDTO, error) {
	if strings.TrimSpace(input.Topic) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "topic required")
	}
	if strings.TrimSpace(input.Details) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "details required")
	}
	consultation, err := s.repo.Create(ctx, &models.Consultation{
		FarmerID: farmerID,
		Topic:    strings.TrimSpace(input.Topic),
		Details:  strings.TrimSpace(input.Details),
		Status:   enums.ConsultationStatusPending,
	})
	if err != nil {
		return nil, err
	}
	return NewConsultationDTO(consultation), nil
}

func (s *service) Schedule(ctx context.Context, id uuid.UUID, expertID uuid.UUID, at time.Time) (*ConsultationDTO, error) {
	consultation, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if consultation.Status != enums.ConsultationStatusPending {
		return nil, pkgerrors.Newf(pkgerrors.CodeStateConflict, "consultation is already %s", string(consultation.Status))
	}
	if at.Before(time.Now()) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "scheduled time must be in the future")
	}
	err = s.repo.Update(ctx, id, map[string]any{
		"expert_id":    expertID,
		"scheduled_at": at.UTC(),
		"status":       string(enums.ConsultationStatusScheduled),
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

func (s *service) Complete(ctx context.Context, id uuid.UUID) (*ConsultationDTO, error) {
	return s.transition(ctx, id, enums.ConsultationStatusScheduled, enums.ConsultationStatusCompleted)
}

func (s *service) Cancel(ctx context.Context, id uuid.UUID) (*ConsultationDTO, error) {
	consultation, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	switch consultation.Status {
	case enums.ConsultationStatusPending, enums.ConsultationStatusScheduled:
	default:
		return nil, pkgerrors.Newf(pkgerrors.CodeStateConflict, "consultation is already %s", string(consultation.Status))
	}
	if err := s.repo.Update(ctx, id, map[string]any{"status": string(enums.ConsultationStatusCancelled)}); err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*ConsultationDTO, error) {
	consultation, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return NewConsultationDTO(consultation), nil
}

func (s *service) List(ctx context.Context, query ListQuery) (*ListResult, error) {
	rows, nextCursor, err := s.repo.List(ctx, query)
	if err != nil {
		return nil, err
	}
	result := &ListResult{
		Consultations: make([]ConsultationDTO, 0, len(rows)),
		NextCursor:    nextCursor,
	}
	for i := range rows {
		result.Consultations = append(result.Consultations, *NewConsultationDTO(&rows[i]))
	}
	return result, nil
}

func (s *service) transition(ctx context.Context, id uuid.UUID, from, to enums.ConsultationStatus) (*ConsultationDTO, error) {
	consultation, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if consultation.Status != from {
		return nil, pkgerrors.Newf(pkgerrors.CodeStateConflict, "consultation is %s, expected %s", string(consultation.Status), string(from))
	}
	if err := s.repo.Update(ctx, id, map[string]any{"status": string(to)}); err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

func (s *service) load(ctx context.Context, id uuid.UUID) (*models.Consultation, error) {
	consultation, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "consultation not found")
		}
		return nil, err
	}
	return consultation, nil
}
