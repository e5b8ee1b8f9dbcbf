package support

import (
	"time"

	"github.com/google/uuid"

	"github.com/agriops/plantops-backend/pkg/db/models"
)

// TicketDTO is the client-facing support ticket shape.
type TicketDTO struct {
	ID        uuid.UUID  `json:"id"`
	UserID    uuid.UUID  `json:"user_id"`
	Subject   string     `json:"subject"`
	Body      string     `json:"body"`
	Status    string     `json:"status"`
	Replies   []ReplyDTO `json:"replies"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// ReplyDTO is one message in a ticket thread.
type ReplyDTO struct {
	ID        uuid.UUID `json:"id"`
	AuthorID  uuid.UUID `json:"author_id"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

// ListResult bundles a page of tickets with the next cursor.
type ListResult struct {
	Tickets    []TicketDTO `json:"tickets"`
	NextCursor string      `json:"next_cursor,omitempty"`
}

// NewTicketDTO builds a DTO from the persisted model.
func NewTicketDTO(ticket *models.SupportTicket) *TicketDTO {
	replies := make([]ReplyDTO, 0, len(ticket.Replies))
	for _, reply := range ticket.Replies {
		replies = append(replies, ReplyDTO{
			ID:        reply.ID,
			AuthorID:  reply.AuthorID,
			Body:      reply.Body,
			CreatedAt: reply.CreatedAt,
		})
	}
	return &TicketDTO{
		ID:        ticket.ID,
		UserID:    ticket.UserID,
		Subject:   ticket.Subject,
		Body:      ticket.Body,
		Status:    ticket.Status.String(),
		Replies:   replies,
		CreatedAt: ticket.CreatedAt,
		UpdatedAt: ticket.UpdatedAt,
	}
}
