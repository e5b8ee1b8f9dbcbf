package support

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/agriops/plantops-backend/pkg/db/models"
	"github.com/agriops/plantops-backend/pkg/enums"
	pkgerrors "github.com/agriops/plantops-backend/pkg/errors"
)

type stubSupportRepo struct {
	tickets map[uuid.UUID]*models.SupportTicket
}

func newStubSupportRepo(tickets ...*models.SupportTicket) *stubSupportRepo {
	repo := &stubSupportRepo{tickets: make(map[uuid.UUID]*models.SupportTicket)}
	for _, ticket := range tickets {
		if ticket.ID == uuid.Nil {
			ticket.ID = uuid.New()
		}
		repo.tickets[ticket.ID] = ticket
	}
	return repo
}

func (r *stubSupportRepo) WithTx(tx *gorm.DB) Repository { return r }

func (r *stubSupportRepo) CreateTicket(ctx context.Context, ticket *models.SupportTicket) (*models.SupportTicket, error) {
	if ticket.ID == uuid.Nil {
		ticket.ID = uuid.New()
	}
	r.tickets[ticket.ID] = ticket
	return ticket, nil
}

func (r *stubSupportRepo) FindTicket(ctx context.Context, id uuid.UUID) (*models.SupportTicket, error) {
	ticket, ok := r.tickets[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	clone := *ticket
	clone.Replies = make([]models.SupportReply, len(ticket.Replies))
	copy(clone.Replies, ticket.Replies)
	return &clone, nil
}

func (r *stubSupportRepo) List(ctx context.Context, query ListQuery) ([]models.SupportTicket, string, error) {
	rows := make([]models.SupportTicket, 0, len(r.tickets))
	for _, ticket := range r.tickets {
		rows = append(rows, *ticket)
	}
	return rows, "", nil
}

func (r *stubSupportRepo) UpdateTicket(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	ticket, ok := r.tickets[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if status, ok := updates["status"]; ok {
		ticket.Status = enums.SupportStatus(status.(string))
	}
	return nil
}

func (r *stubSupportRepo) CreateReply(ctx context.Context, reply *models.SupportReply) (*models.SupportReply, error) {
	ticket, ok := r.tickets[reply.TicketID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	if reply.ID == uuid.Nil {
		reply.ID = uuid.New()
	}
	ticket.Replies = append(ticket.Replies, *reply)
	return reply, nil
}

func newSupportService(t *testing.T, repo Repository) Service {
	t.Helper()
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func testTicket(status enums.SupportStatus) *models.SupportTicket {
	return &models.SupportTicket{
		ID:      uuid.New(),
		UserID:  uuid.New(),
		Subject: "wrong delivery slot",
		Body:    "the confirmed slot does not match what I picked",
		Status:  status,
	}
}

func assertTicketConflict(t *testing.T, err error) {
	t.Helper()
	if err == nil {
		t.Fatal("expected state conflict error, got nil")
	}
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict, got %v", err)
	}
}

func TestCreateTicketStartsOpen(t *testing.T) {
	svc := newSupportService(t, newStubSupportRepo())

	dto, err := svc.CreateTicket(context.Background(), uuid.New(), CreateTicketInput{Subject: " help ", Body: "details"})
	if err != nil {
		t.Fatalf("CreateTicket: %v", err)
	}
	if dto.Status != string(enums.SupportStatusOpen) {
		t.Fatalf("expected open, got %s", dto.Status)
	}
	if dto.Subject != "help" {
		t.Fatalf("expected trimmed subject, got %q", dto.Subject)
	}
}

func TestCreateTicketRequiresSubjectAndBody(t *testing.T) {
	svc := newSupportService(t, newStubSupportRepo())

	for _, input := range []CreateTicketInput{
		{Subject: "", Body: "details"},
		{Subject: "help", Body: "  "},
	} {
		_, err := svc.CreateTicket(context.Background(), uuid.New(), input)
		typed := pkgerrors.As(err)
		if typed == nil || typed.Code() != pkgerrors.CodeValidation {
			t.Fatalf("expected validation error for %+v, got %v", input, err)
		}
	}
}

func TestStaffReplyMarksTicketAnswered(t *testing.T) {
	ticket := testTicket(enums.SupportStatusOpen)
	repo := newStubSupportRepo(ticket)
	svc := newSupportService(t, repo)

	dto, err := svc.Reply(context.Background(), ticket.ID, uuid.New(), "try rescheduling from the orders page", true)
	if err != nil {
		t.Fatalf("Reply: %v", err)
	}
	if dto.Status != string(enums.SupportStatusAnswered) {
		t.Fatalf("expected answered, got %s", dto.Status)
	}
	if len(dto.Replies) != 1 {
		t.Fatalf("expected one reply, got %d", len(dto.Replies))
	}
}

func TestReporterReplyKeepsTicketOpen(t *testing.T) {
	ticket := testTicket(enums.SupportStatusOpen)
	svc := newSupportService(t, newStubSupportRepo(ticket))

	dto, err := svc.Reply(context.Background(), ticket.ID, ticket.UserID, "still broken", false)
	if err != nil {
		t.Fatalf("Reply: %v", err)
	}
	if dto.Status != string(enums.SupportStatusOpen) {
		t.Fatalf("a reporter reply must not answer the ticket, got %s", dto.Status)
	}
}

func TestStaffReplyLeavesAnsweredAlone(t *testing.T) {
	ticket := testTicket(enums.SupportStatusAnswered)
	svc := newSupportService(t, newStubSupportRepo(ticket))

	dto, err := svc.Reply(context.Background(), ticket.ID, uuid.New(), "following up", true)
	if err != nil {
		t.Fatalf("Reply: %v", err)
	}
	if dto.Status != string(enums.SupportStatusAnswered) {
		t.Fatalf("expected answered, got %s", dto.Status)
	}
}

func TestReplyRefusedOnClosedTicket(t *testing.T) {
	ticket := testTicket(enums.SupportStatusClosed)
	svc := newSupportService(t, newStubSupportRepo(ticket))

	_, err := svc.Reply(context.Background(), ticket.ID, uuid.New(), "reopening?", true)
	assertTicketConflict(t, err)
}

func TestCloseFromOpenAndAnswered(t *testing.T) {
	for _, status := range []enums.SupportStatus{
		enums.SupportStatusOpen,
		enums.SupportStatusAnswered,
	} {
		ticket := testTicket(status)
		svc := newSupportService(t, newStubSupportRepo(ticket))

		dto, err := svc.Close(context.Background(), ticket.ID)
		if err != nil {
			t.Fatalf("Close from %s: %v", status, err)
		}
		if dto.Status != string(enums.SupportStatusClosed) {
			t.Fatalf("expected closed, got %s", dto.Status)
		}
	}
}

func TestCloseRefusedWhenAlreadyClosed(t *testing.T) {
	ticket := testTicket(enums.SupportStatusClosed)
	svc := newSupportService(t, newStubSupportRepo(ticket))

	_, err := svc.Close(context.Background(), ticket.ID)
	assertTicketConflict(t, err)
}

func TestTicketNotFound(t *testing.T) {
	svc := newSupportService(t, newStubSupportRepo())

	_, err := svc.Get(context.Background(), uuid.New())
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}
