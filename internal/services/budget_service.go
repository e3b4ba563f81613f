package services

import (
	"context"

	"buildcost/internal/core"
	"buildcost/internal/rollup"
	"buildcost/internal/store"
)

// BudgetService is the read side of the engine. Every call loads a fresh
// snapshot; derived figures are never stored.
type BudgetService struct {
	store store.Store
}

func NewBudgetService(st store.Store) *BudgetService {
	return &BudgetService{store: st}
}

// Report derives every summary for a project.
func (s *BudgetService) Report(ctx context.Context, projectID string) (rollup.ProjectReport, error) {
	snap, err := store.LoadSnapshot(ctx, s.store, projectID)
	if err != nil {
		return rollup.ProjectReport{}, err
	}
	return reportFromSnapshot(snap), nil
}

// CategoryTotals aggregates one category by exact name. The boolean is
// false when the name is not in the master list; totals are still
// computed from whatever items and expenses carry that name.
func (s *BudgetService) CategoryTotals(ctx context.Context, projectID, name string) (rollup.CategoryTotals, bool, error) {
	snap, err := store.LoadSnapshot(ctx, s.store, projectID)
	if err != nil {
		return rollup.CategoryTotals{}, false, err
	}
	_, known := rollup.LookupCategory(snap.Categories, name)
	return rollup.AggregateCategory(snap.Items, snap.Expenses, name), known, nil
}

// ProjectTotals rolls up the contract sum of a project.
func (s *BudgetService) ProjectTotals(ctx context.Context, projectID string) (rollup.ProjectTotals, error) {
	if _, err := s.store.Projects().Get(ctx, projectID); err != nil {
		return rollup.ProjectTotals{}, err
	}
	items, err := s.store.BudgetItems().ListByProject(ctx, projectID)
	if err != nil {
		return rollup.ProjectTotals{}, err
	}
	cos, err := s.store.ChangeOrders().ListByProject(ctx, projectID)
	if err != nil {
		return rollup.ProjectTotals{}, err
	}
	return rollup.RollupProject(items, cos), nil
}

// PaymentApplication pairs the computed figures with the contract rollup
// they were computed from.
type PaymentApplication struct {
	Form   rollup.PaymentApplicationForm   `json:"form"`
	Totals rollup.ProjectTotals            `json:"totals"`
	Result rollup.PaymentApplicationResult `json:"result"`
}

// PaymentApplication computes a payment application for the project
// named by the form.
func (s *BudgetService) PaymentApplication(ctx context.Context, form rollup.PaymentApplicationForm) (PaymentApplication, error) {
	totals, err := s.ProjectTotals(ctx, form.ProjectID)
	if err != nil {
		return PaymentApplication{}, err
	}
	return PaymentApplication{
		Form:   form,
		Totals: totals,
		Result: rollup.ComputePaymentApplication(form.Inputs(totals)),
	}, nil
}

// ActiveProjects lists projects that are not completed.
func (s *BudgetService) ActiveProjects(ctx context.Context) ([]core.Project, error) {
	all, err := s.store.Projects().List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]core.Project, 0, len(all))
	for _, p := range all {
		if p.Status != core.ProjectCompleted {
			out = append(out, p)
		}
	}
	return out, nil
}

func reportFromSnapshot(snap store.Snapshot) rollup.ProjectReport {
	return rollup.BuildReport(snap.Project, snap.Categories, snap.Items, snap.Expenses, snap.ChangeOrders)
}
