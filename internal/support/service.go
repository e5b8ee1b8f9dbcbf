package support

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

// Service exposes the support ticket workflow. An expert or admin reply marks
// the ticket answered; the reporter or staff can close it.
type Service interface {
	CreateTicket(ctx context.Context, userID uuid.UUID, input CreateTicketInput) (*TicketDTO, error)
	Reply(ctx context.Context, ticketID, authorID uuid.UUID, body string, staff bool) (*TicketDTO, error)
	Close(ctx context.Context, ticketID uuid.UUID) (*TicketDTO, error)
	Get(ctx context.Context, ticketID uuid.UUID) (*TicketDTO, error)
	List(ctx context.Context, query ListQuery) (*ListResult, error)
}

// CreateTicketInput is the validated payload for a new ticket.
type CreateTicketInput struct {
	Subject string
	Body    string
}

type service struct {
	repo Repository
}

// NewService constructs the support service.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("support repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) CreateTicket(ctx context.Context, userID uuid.UUID, input CreateTicketInput) (*TicketDTO, error) {
	if strings.TrimSpace(input.Subject) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "subject required")
	}
	if strings.TrimSpace(input.Body) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "body required")
	}
	ticket, err := s.repo.CreateTicket(ctx, &models.SupportTicket{
		UserID:  userID,
		Subject: strings.TrimSpace(input.Subject),
		Body:    strings.TrimSpace(input.Body),
		Status:  enums.SupportStatusOpen,
	})
	if err != nil {
		return nil, err
	}
	return NewTicketDTO(ticket), nil
}

func (s *service) Reply(ctx context.Context, ticketID, authorID uuid.UUID, body string, staff bool) (*TicketDTO, error) {
	if strings.TrimSpace(body) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "body required")
	}
	ticket, err := s.load(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if ticket.Status == enums.SupportStatusClosed {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "ticket is closed")
	}

	if _, err := s.repo.CreateReply(ctx, &models.SupportReply{
		TicketID: ticketID,
		AuthorID: authorID,
		Body:     strings.TrimSpace(body),
	}); err != nil {
		return nil, err
	}
	if staff && ticket.Status == enums.SupportStatusOpen {
		if err := s.repo.UpdateTicket(ctx, ticketID, map[string]any{
			"status":     string(enums.SupportStatusAnswered),
			"updated_at": time.Now().UTC(),
		}); err != nil {
			return nil, err
		}
	}
	return s.Get(ctx, ticketID)
}

func (s *service) Close(ctx context.Context, ticketID uuid.UUID) (*TicketDTO, error) {
	ticket, err := s.load(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if ticket.Status == enums.SupportStatusClosed {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "ticket is already closed")
	}
	if err := s.repo.UpdateTicket(ctx, ticketID, map[string]any{"status": string(enums.SupportStatusClosed)}); err != nil {
		return nil, err
	}
	return s.Get(ctx, ticketID)
}

func (s *service) Get(ctx context.Context, ticketID uuid.UUID) (*TicketDTO, error) {
	ticket, err := s.load(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	return NewTicketDTO(ticket), nil
}

func (s *service) List(ctx context.Context, query ListQuery) (*ListResult, error) {
	rows, nextCursor, err := s.repo.List(ctx, query)
	if err != nil {
		return nil, err
	}
	result := &ListResult{
		Tickets:    make([]TicketDTO, 0, len(rows)),
		NextCursor: nextCursor,
	}
	for i := range rows {
		result.Tickets = append(result.Tickets, *NewTicketDTO(&rows[i]))
	}
	return result, nil
}

func (s *service) load(ctx context.Context, id uuid.UUID) (*models.SupportTicket, error) {
	ticket, err := s.repo.FindTicket(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "ticket not found")
		}
		return nil, err
	}
	return ticket, nil
}
