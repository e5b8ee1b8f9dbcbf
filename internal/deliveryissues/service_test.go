package deliveryissues

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/agriops/plantops-backend/pkg/db/models"
	"github.com/agriops/plantops-backend/pkg/enums"
	pkgerrors "github.com/agriops/plantops-backend/pkg/errors"
)

type stubIssueRepo struct {
	issues map[uuid.UUID]*models.DeliveryIssue
}

func newStubIssueRepo(issues ...*models.DeliveryIssue) *stubIssueRepo {
	repo := &stubIssueRepo{issues: make(map[uuid.UUID]*models.DeliveryIssue)}
	for _, issue := range issues {
		if issue.ID == uuid.Nil {
			issue.ID = uuid.New()
		}
		repo.issues[issue.ID] = issue
	}
	return repo
}

func (r *stubIssueRepo) WithTx(tx *gorm.DB) Repository { return r }

func (r *stubIssueRepo) Create(ctx context.Context, issue *models.DeliveryIssue) (*models.DeliveryIssue, error) {
	if issue.ID == uuid.Nil {
		issue.ID = uuid.New()
	}
	r.issues[issue.ID] = issue
	return issue, nil
}

func (r *stubIssueRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.DeliveryIssue, error) {
	issue, ok := r.issues[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	clone := *issue
	return &clone, nil
}

func (r *stubIssueRepo) List(ctx context.Context, query ListQuery) ([]models.DeliveryIssue, string, error) {
	rows := make([]models.DeliveryIssue, 0, len(r.issues))
	for _, issue := range r.issues {
		rows = append(rows, *issue)
	}
	return rows, "", nil
}

func (r *stubIssueRepo) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	issue, ok := r.issues[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if status, ok := updates["status"]; ok {
		issue.Status = enums.DeliveryIssueStatus(status.(string))
	}
	if resolvedAt, ok := updates["resolved_at"]; ok {
		at := resolvedAt.(time.Time)
		issue.ResolvedAt = &at
	}
	return nil
}

type stubOrderFinder struct {
	orders map[uuid.UUID]*models.Order
}

func newStubOrderFinder(orders ...*models.Order) *stubOrderFinder {
	finder := &stubOrderFinder{orders: make(map[uuid.UUID]*models.Order)}
	for _, order := range orders {
		finder.orders[order.ID] = order
	}
	return finder
}

func (f *stubOrderFinder) FindOrder(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	order, ok := f.orders[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return order, nil
}

func newIssueService(t *testing.T, repo Repository, orders orderFinder) Service {
	t.Helper()
	svc, err := NewService(repo, orders)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func testIssue(status enums.DeliveryIssueStatus) *models.DeliveryIssue {
	return &models.DeliveryIssue{
		ID:          uuid.New(),
		OrderID:     uuid.New(),
		ReporterID:  uuid.New(),
		Description: "crates arrived damaged",
		Status:      status,
	}
}

func TestReportCreatesOpenIssue(t *testing.T) {
	order := &models.Order{ID: uuid.New(), OrderNumber: 1001, CustomerID: uuid.New()}
	repo := newStubIssueRepo()
	svc := newIssueService(t, repo, newStubOrderFinder(order))

	dto, err := svc.Report(context.Background(), uuid.New(), ReportInput{OrderID: order.ID, Description: " crates damaged "})
	if err != nil {
		t.Fatalf("Report: %v", err)
	}
	if dto.Status != string(enums.DeliveryIssueStatusOpen) {
		t.Fatalf("expected open, got %s", dto.Status)
	}
	if dto.Description != "crates damaged" {
		t.Fatalf("expected trimmed description, got %q", dto.Description)
	}
}

func TestReportUnknownOrderRefused(t *testing.T) {
	svc := newIssueService(t, newStubIssueRepo(), newStubOrderFinder())

	_, err := svc.Report(context.Background(), uuid.New(), ReportInput{OrderID: uuid.New(), Description: "missing crate"})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestReportRequiresDescription(t *testing.T) {
	svc := newIssueService(t, newStubIssueRepo(), newStubOrderFinder())

	_, err := svc.Report(context.Background(), uuid.New(), ReportInput{OrderID: uuid.New(), Description: "  "})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestUpdateStatusOpenToInvestigating(t *testing.T) {
	issue := testIssue(enums.DeliveryIssueStatusOpen)
	svc := newIssueService(t, newStubIssueRepo(issue), newStubOrderFinder())

	dto, err := svc.UpdateStatus(context.Background(), issue.ID, "investigating")
	if err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}
	if dto.Status != string(enums.DeliveryIssueStatusInvestigating) {
		t.Fatalf("expected investigating, got %s", dto.Status)
	}
	if dto.ResolvedAt != nil {
		t.Fatalf("investigating must not stamp resolved_at, got %v", dto.ResolvedAt)
	}
}

func TestUpdateStatusResolveStampsResolvedAt(t *testing.T) {
	issue := testIssue(enums.DeliveryIssueStatusInvestigating)
	svc := newIssueService(t, newStubIssueRepo(issue), newStubOrderFinder())

	dto, err := svc.UpdateStatus(context.Background(), issue.ID, "resolved")
	if err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}
	if dto.Status != string(enums.DeliveryIssueStatusResolved) {
		t.Fatalf("expected resolved, got %s", dto.Status)
	}
	if dto.ResolvedAt == nil {
		t.Fatal("expected resolved_at to be stamped")
	}
}

func TestUpdateStatusResolvedIsTerminal(t *testing.T) {
	issue := testIssue(enums.DeliveryIssueStatusResolved)
	svc := newIssueService(t, newStubIssueRepo(issue), newStubOrderFinder())

	for _, status := range []string{"open", "investigating", "resolved"} {
		_, err := svc.UpdateStatus(context.Background(), issue.ID, status)
		typed := pkgerrors.As(err)
		if typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
			t.Fatalf("expected state conflict for %s, got %v", status, err)
		}
	}
}

func TestUpdateStatusRejectsUnknownValue(t *testing.T) {
	issue := testIssue(enums.DeliveryIssueStatusOpen)
	svc := newIssueService(t, newStubIssueRepo(issue), newStubOrderFinder())

	_, err := svc.UpdateStatus(context.Background(), issue.ID, "escalated")
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestIssueNotFound(t *testing.T) {
	svc := newIssueService(t, newStubIssueRepo(), newStubOrderFinder())

	_, err := svc.Get(context.Background(), uuid.New())
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}
