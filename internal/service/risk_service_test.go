package service

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/complyhub/compliance-service/internal/auth"
	"github.com/complyhub/compliance-service/internal/domain"
)

type fakeRiskRepo struct {
	risks  map[string]*domain.Risk
	nextID int
}

func newFakeRiskRepo() *fakeRiskRepo {
	return &fakeRiskRepo{risks: make(map[string]*domain.Risk)}
}

func (f *fakeRiskRepo) seed(ownerID string, count int) {
	for i := 0; i < count; i++ {
		f.nextID++
		id := "risk-" + strconv.Itoa(f.nextID)
		f.risks[id] = &domain.Risk{
			ID:          id,
			Title:       "risk " + id,
			Status:      domain.RiskStatusOpen,
			CreatedByID: ownerID,
		}
	}
}

func (f *fakeRiskRepo) Create(_ context.Context, risk *domain.Risk) error {
	f.nextID++
	risk.ID = "risk-" + strconv.Itoa(f.nextID)
	stored := *risk
	f.risks[risk.ID] = &stored
	return nil
}

func (f *fakeRiskRepo) Update(_ context.Context, risk *domain.Risk) error {
	if _, ok := f.risks[risk.ID]; !ok {
		return pgx.ErrNoRows
	}
	stored := *risk
	f.risks[risk.ID] = &stored
	return nil
}

func (f *fakeRiskRepo) Delete(_ context.Context, id string) error {
	if _, ok := f.risks[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(f.risks, id)
	return nil
}

func (f *fakeRiskRepo) GetByID(_ context.Context, id string) (*domain.Risk, error) {
	if risk, ok := f.risks[id]; ok {
		copied := *risk
		return &copied, nil
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeRiskRepo) List(_ context.Context, _, _ int) ([]domain.Risk, error) {
	var out []domain.Risk
	for _, risk := range f.risks {
		out = append(out, *risk)
	}
	return out, nil
}

func (f *fakeRiskRepo) ListByOwner(_ context.Context, ownerID string, _, _ int) ([]domain.Risk, error) {
	var out []domain.Risk
	for _, risk := range f.risks {
		if risk.CreatedByID == ownerID {
			out = append(out, *risk)
		}
	}
	return out, nil
}

func (f *fakeRiskRepo) MarkOverdue(_ context.Context, before time.Time) (int64, error) {
	var updated int64
	for _, risk := range f.risks {
		if risk.DueDate != nil && risk.DueDate.Before(before) &&
			risk.Status != domain.RiskStatusCompleted && risk.Status != domain.RiskStatusOverdue {
			risk.Status = domain.RiskStatusOverdue
			updated++
		}
	}
	return updated, nil
}

func newRiskFixture() (*RiskService, *fakeRiskRepo) {
	repo := newFakeRiskRepo()
	return NewRiskService(repo, auth.NewEngine(zap.NewNop())), repo
}

func TestListScopesToOwnerForUsers(t *testing.T) {
	svc, repo := newRiskFixture()
	repo.seed("id-1", 3)
	repo.seed("id-2", 2)
	ctx := context.Background()

	user := auth.Principal{IdentityID: "id-1", Role: auth.RoleUser}
	risks, err := svc.List(ctx, user, 50, 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(risks) != 3 {
		t.Fatalf("user list returned %d risks, want 3", len(risks))
	}
	for _, risk := range risks {
		if risk.CreatedByID != "id-1" {
			t.Fatalf("user list leaked foreign risk %s owned by %s", risk.ID, risk.CreatedByID)
		}
	}

	admin := auth.Principal{IdentityID: "id-9", Role: auth.RoleAdmin}
	risks, err = svc.List(ctx, admin, 50, 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(risks) != 5 {
		t.Fatalf("admin list returned %d risks, want 5", len(risks))
	}
}

func TestUpdateEnforcesOwnScope(t *testing.T) {
	svc, repo := newRiskFixture()
	repo.seed("id-1", 1)
	repo.seed("id-2", 1)
	ctx := context.Background()
	user := auth.Principal{IdentityID: "id-1", Role: auth.RoleUser}

	rename := func(risk *domain.Risk) { risk.Title = "renamed" }

	updated, err := svc.Update(ctx, user, "risk-1", auth.ActionUpdate, rename)
	if err != nil {
		t.Fatalf("update of owned risk denied: %v", err)
	}
	if updated.Title != "renamed" {
		t.Fatalf("update not applied: %s", updated.Title)
	}

	if _, err := svc.Update(ctx, user, "risk-2", auth.ActionUpdate, rename); err == nil {
		t.Fatal("update of foreign risk allowed")
	}
}

func TestDestroyDeniedForUsers(t *testing.T) {
	svc, repo := newRiskFixture()
	repo.seed("id-1", 1)
	ctx := context.Background()

	// Even the owner cannot destroy under a none scope.
	owner := auth.Principal{IdentityID: "id-1", Role: auth.RoleUser}
	if err := svc.Delete(ctx, owner, "risk-1"); err == nil {
		t.Fatal("user destroy allowed")
	}

	dpo := auth.Principal{IdentityID: "id-9", Role: auth.RoleDPO}
	if err := svc.Delete(ctx, dpo, "risk-1"); err != nil {
		t.Fatalf("dpo destroy denied: %v", err)
	}
	if len(repo.risks) != 0 {
		t.Fatal("risk not deleted")
	}
}

func TestCreateAssignsOwnership(t *testing.T) {
	svc, repo := newRiskFixture()
	ctx := context.Background()
	user := auth.Principal{IdentityID: "id-1", Role: auth.RoleUser}

	risk, err := svc.Create(ctx, user, "incomplete ropa", "", nil)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if risk.CreatedByID != "id-1" {
		t.Fatalf("ownership field = %s, want id-1", risk.CreatedByID)
	}
	if repo.risks[risk.ID].Status != domain.RiskStatusOpen {
		t.Fatalf("unexpected status %s", repo.risks[risk.ID].Status)
	}

	if _, err := svc.Create(ctx, user, "  ", "", nil); err == nil {
		t.Fatal("blank title accepted")
	}
}
