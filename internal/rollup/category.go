// Package rollup derives budget and payment figures from record
// snapshots. Every function is pure: the same inputs always give the same
// result and nothing is persisted or cached.
package rollup

import (
	"sort"

	"buildcost/internal/core"
)

// CategoryTotals is the aggregate of one category's budget lines and
// expenses.
type CategoryTotals struct {
	Category         string     `json:"category"`
	OriginalBudget   core.Money `json:"originalBudget"`
	ApprovedCOBudget core.Money `json:"approvedCOBudget"`
	RevisedBudget    core.Money `json:"revisedBudget"`
	CommittedCost    core.Money `json:"committedCost"`
	ProjectedCost    core.Money `json:"projectedCost"`
}

// Overrun reports whether committed cost exceeds the projection.
func (c CategoryTotals) Overrun() bool {
	return c.CommittedCost.Cents > c.ProjectedCost.Cents
}

// AggregateCategory sums the items and expenses whose category equals
// name exactly (case-sensitive). Projected cost is summed as stored on
// each item. A name with no matches yields all zeros.
func AggregateCategory(items []core.BudgetItem, expenses []core.Expense, name string) CategoryTotals {
	totals := CategoryTotals{Category: name}
	for _, item := range items {
		if item.Category != name {
			continue
		}
		totals.OriginalBudget = totals.OriginalBudget.Add(item.OriginalBudget)
		totals.ApprovedCOBudget = totals.ApprovedCOBudget.Add(item.ApprovedCOBudget)
		totals.ProjectedCost = totals.ProjectedCost.Add(item.ProjectedCost)
	}
	for _, exp := range expenses {
		if exp.Category == name {
			totals.CommittedCost = totals.CommittedCost.Add(exp.Amount)
		}
	}
	totals.RevisedBudget = totals.OriginalBudget.Add(totals.ApprovedCOBudget)
	return totals
}

// LookupCategory finds a master category by exact name.
func LookupCategory(categories []core.BudgetCategory, name string) (core.BudgetCategory, bool) {
	for _, c := range categories {
		if c.Name == name {
			return c, true
		}
	}
	return core.BudgetCategory{}, false
}

// BudgetSummary is the per-category view of a project budget.
type BudgetSummary struct {
	// Categories follows the master list order, including empty ones.
	Categories []CategoryTotals `json:"categories"`
	// Total sums the master-list rows only.
	Total CategoryTotals `json:"total"`
	// Unmatched holds categories referenced by items or expenses that
	// are missing from the master list, sorted by name.
	Unmatched []CategoryTotals `json:"unmatched"`
}

// SummarizeBudget aggregates every master category and reports names used
// by items or expenses that the master list does not contain.
func SummarizeBudget(categories []core.BudgetCategory, items []core.BudgetItem, expenses []core.Expense) BudgetSummary {
	summary := BudgetSummary{
		Categories: make([]CategoryTotals, 0, len(categories)),
		Total:      CategoryTotals{Category: "Total"},
		Unmatched:  []CategoryTotals{},
	}
	known := make(map[string]bool, len(categories))
	for _, c := range categories {
		if known[c.Name] {
			continue
		}
		known[c.Name] = true
		row := AggregateCategory(items, expenses, c.Name)
		summary.Categories = append(summary.Categories, row)
		summary.Total = addTotals(summary.Total, row)
	}

	orphans := make(map[string]bool)
	for _, item := range items {
		if !known[item.Category] {
			orphans[item.Category] = true
		}
	}
	for _, exp := range expenses {
		if !known[exp.Category] {
			orphans[exp.Category] = true
		}
	}
	names := make([]string, 0, len(orphans))
	for name := range orphans {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		summary.Unmatched = append(summary.Unmatched, AggregateCategory(items, expenses, name))
	}
	return summary
}

func addTotals(a, b CategoryTotals) CategoryTotals {
	a.OriginalBudget = a.OriginalBudget.Add(b.OriginalBudget)
	a.ApprovedCOBudget = a.ApprovedCOBudget.Add(b.ApprovedCOBudget)
	a.RevisedBudget = a.RevisedBudget.Add(b.RevisedBudget)
	a.CommittedCost = a.CommittedCost.Add(b.CommittedCost)
	a.ProjectedCost = a.ProjectedCost.Add(b.ProjectedCost)
	return a
}
