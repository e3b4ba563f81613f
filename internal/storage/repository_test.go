package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"buildcost/internal/core"
	"buildcost/internal/store"
)

func newTestRepo(t *testing.T) *Repository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "buildcost.db"))
	if err != nil {
		t.Fatalf("open repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestRebind(t *testing.T) {
	pg := &Repository{dialect: DialectPostgres}
	if got := pg.rebind("SELECT a FROM t WHERE x = ? AND y = ?"); got != "SELECT a FROM t WHERE x = $1 AND y = $2" {
		t.Fatalf("unexpected rebind: %s", got)
	}
	lite := &Repository{dialect: DialectSQLite}
	if got := lite.rebind("x = ?"); got != "x = ?" {
		t.Fatalf("sqlite query should be unchanged, got %s", got)
	}
}

func TestProjectRoundTrip(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	p := core.Project{
		ID:              core.NewID(),
		ProjectNumber:   "2025-014",
		Name:            "Harbor Clinic",
		OwnerName:       "Harbor Health",
		StartDate:       core.NewDate(2025, 2, 1),
		RevisedContract: core.Cents(125000000),
		PercentComplete: 35.5,
		Status:          core.ProjectInProgress,
	}
	if err := repo.Projects().Upsert(ctx, p); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	got, err := repo.Projects().Get(ctx, p.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != p {
		t.Fatalf("round trip mismatch:\nwant %+v\ngot  %+v", p, got)
	}
	if !got.EndDate.IsEmpty() {
		t.Fatalf("expected empty end date")
	}
}

func TestUpsertReplacesAndKeepsOrder(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	clock := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	repo.now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}

	items := repo.BudgetItems()
	for _, it := range []core.BudgetItem{
		{ID: "a", ProjectID: "p1", Category: "Concrete", CostType: core.CostBoth, OriginalBudget: core.Cents(100)},
		{ID: "b", ProjectID: "p2", Category: "Framing", CostType: core.CostLabor},
		{ID: "c", ProjectID: "p1", Category: "Roofing", CostType: core.CostMaterial},
	} {
		if err := items.Upsert(ctx, it); err != nil {
			t.Fatalf("upsert %s: %v", it.ID, err)
		}
	}
	if err := items.Upsert(ctx, core.BudgetItem{ID: "a", ProjectID: "p1", Category: "Sitework", CostType: core.CostBoth, OriginalBudget: core.Cents(250)}); err != nil {
		t.Fatalf("replace: %v", err)
	}

	got, err := items.ListByProject(ctx, "p1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 2 || got[0].ID != "a" || got[0].Category != "Sitework" || got[0].OriginalBudget.Cents != 250 || got[1].ID != "c" {
		t.Fatalf("unexpected items: %+v", got)
	}
}

func TestDeleteMissingReturnsNotFound(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	if err := repo.Expenses().Delete(ctx, "nope"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := repo.ChangeOrders().Get(ctx, "nope"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSnapshotFromSQLite(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	mustUpsert := func(err error) {
		t.Helper()
		if err != nil {
			t.Fatalf("upsert: %v", err)
		}
	}
	mustUpsert(repo.Categories().Upsert(ctx, core.BudgetCategory{ID: "c1", Name: "Concrete"}))
	mustUpsert(repo.Projects().Upsert(ctx, core.Project{ID: "p1", Name: "Depot", Status: core.ProjectPlanning}))
	mustUpsert(repo.Expenses().Upsert(ctx, core.Expense{
		ID: "e1", ProjectID: "p1", Date: core.NewDate(2025, 6, 3), Category: "Concrete",
		Description: "Pump truck", Amount: core.Cents(45000), PaymentMethod: "Check",
	}))
	mustUpsert(repo.ChangeOrders().Upsert(ctx, core.ChangeOrder{
		ID: "co1", ProjectID: "p1", CONumber: "CO-001", Description: "Extra footing",
		TotalRequest: core.Cents(-1500), Status: core.COApproved,
	}))
	mustUpsert(repo.RFIs().Upsert(ctx, core.RFI{ID: "r1", ProjectID: "p1", Subject: "Footing depth", Status: core.RFIOpen, DueDate: core.NewDate(2025, 6, 10)}))
	mustUpsert(repo.Tasks().Upsert(ctx, core.Task{ID: "t1", ProjectID: "p1", Title: "Pour slab", Status: core.TaskToDo, Priority: core.PriorityHigh}))
	mustUpsert(repo.Vendors().Upsert(ctx, core.Vendor{ID: "v1", Name: "Ready Mix Co"}))

	snap, err := store.LoadSnapshot(ctx, repo, "p1")
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if len(snap.Expenses) != 1 || snap.Expenses[0].Date != core.NewDate(2025, 6, 3) {
		t.Fatalf("unexpected expenses: %+v", snap.Expenses)
	}
	if len(snap.ChangeOrders) != 1 || snap.ChangeOrders[0].TotalRequest.Cents != -1500 {
		t.Fatalf("unexpected change orders: %+v", snap.ChangeOrders)
	}
	rfis, _ := repo.RFIs().ListByProject(ctx, "p1")
	if len(rfis) != 1 || rfis[0].DueDate != core.NewDate(2025, 6, 10) {
		t.Fatalf("unexpected rfis: %+v", rfis)
	}
}

func TestUpsertDuplicateCategoryNameConflicts(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	if err := repo.Categories().Upsert(ctx, core.BudgetCategory{ID: "c1", Name: "Concrete"}); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	err := repo.Categories().Upsert(ctx, core.BudgetCategory{ID: "c2", Name: "Concrete"})
	if !errors.Is(err, store.ErrConflict) {
		t.Fatalf("err = %v, want store.ErrConflict", err)
	}
	if err := repo.Categories().Upsert(ctx, core.BudgetCategory{ID: "c1", Name: "Concrete"}); err != nil {
		t.Fatalf("replacing a row under its own name: %v", err)
	}
}
