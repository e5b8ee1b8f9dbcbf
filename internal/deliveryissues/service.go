package deliveryissues

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

// Service exposes reporting and triage of delivery issues.
type Service interface {
	Report(ctx context.Context, reporterID uuid.UUID, input ReportInput) (*IssueDTO, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) (*IssueDTO, error)
	Get(ctx context.Context, id uuid.UUID) (*IssueDTO, error)
	List(ctx context.Context, query ListQuery) (*ListResult, error)
}

// ReportInput is the validated payload for a new issue report.
type ReportInput struct {
	OrderID     uuid.UUID
	Description string
}

type orderFinder interface {
	FindOrder(ctx context.Context, id uuid.UUID) (*models.Order, error)
}

type service struct {
	repo   Repository
	orders orderFinder
}

// NewService constructs the delivery issues service.
func NewService(repo Repository, orders orderFinder) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("delivery issues repository required")
	}
	if orders == nil {
		return nil, fmt.Errorf("order finder required")
	}
	return &service{repo: repo, orders: orders}, nil
}

func (s *service) Report(ctx context.Context, reporterID uuid.UUID, input ReportInput) (*IssueDTO, error) {
	if strings.TrimSpace(input.Description) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "description required")
	}
	if _, err := s.orders.FindOrder(ctx, input.OrderID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, err
	}
	issue, err := s.repo.Create(ctx, &models.DeliveryIssue{
		OrderID:     input.OrderID,
		ReporterID:  reporterID,
		Description: strings.TrimSpace(input.Description),
		Status:      enums.DeliveryIssueStatusOpen,
	})
	if err != nil {
		return nil, err
	}
	return NewIssueDTO(issue), nil
}

func (s *service) UpdateStatus(ctx context.Context, id uuid.UUID, status string) (*IssueDTO, error) {
	parsed, err := enums.ParseDeliveryIssueStatus(status)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid status")
	}
	issue, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if issue.Status == enums.DeliveryIssueStatusResolved {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "issue is already resolved")
	}

	updates := map[string]any{"status": string(parsed)}
	if parsed == enums.DeliveryIssueStatusResolved {
		updates["resolved_at"] = time.Now().UTC()
	}
	if err := s.repo.Update(ctx, id, updates); err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*IssueDTO, error) {
	issue, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return NewIssueDTO(issue), nil
}

func (s *service) List(ctx context.Context, query ListQuery) (*ListResult, error) {
	rows, nextCursor, err := s.repo.List(ctx, query)
	if err != nil {
		return nil, err
	}
	result := &ListResult{
		Issues:     make([]IssueDTO, 0, len(rows)),
		NextCursor: nextCursor,
	}
	for i := range rows {
		result.Issues = append(result.Issues, *NewIssueDTO(&rows[i]))
	}
	return result, nil
}

func (s *service) load(ctx context.Context, id uuid.UUID) (*models.DeliveryIssue, error) {
	issue, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "delivery issue not found")
		}
		return nil, err
	}
	return issue, nil
}
