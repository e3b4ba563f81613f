package services

import (
	"context"
	"fmt"
	"strings"

	"buildcost/internal/core"
	"buildcost/internal/store"
)

var Projects = Kind[core.Project]{
	Name:       "projects",
	Collection: func(s store.Store) store.Collection[core.Project] { return s.Projects() },
	Normalize: func(p core.Project) core.Project {
		p.ID = ensureID(p.ID)
		p.Name = strings.TrimSpace(p.Name)
		p.ProjectNumber = strings.TrimSpace(p.ProjectNumber)
		if p.Status == "" {
			p.Status = core.ProjectPlanning
		}
		return p
	},
}

var Categories = Kind[core.BudgetCategory]{
	Name:       "budget_categories",
	Collection: func(s store.Store) store.Collection[core.BudgetCategory] { return s.Categories() },
	Normalize: func(c core.BudgetCategory) core.BudgetCategory {
		c.ID = ensureID(c.ID)
		c.Name = strings.TrimSpace(c.Name)
		return c
	},
	Check: uniqueCategoryName,
}

// ErrDuplicateCategory is returned when another master category already
// uses the name. Names compare exactly, as aggregation does.
var ErrDuplicateCategory = fmt.Errorf("%w: category name already in use", store.ErrConflict)

func uniqueCategoryName(ctx context.Context, st store.Store, c core.BudgetCategory) error {
	cats, err := st.Categories().List(ctx)
	if err != nil {
		return fmt.Errorf("list categories: %w", err)
	}
	for _, other := range cats {
		if other.Name == c.Name && other.ID != c.ID {
			return fmt.Errorf("%w: %q", ErrDuplicateCategory, c.Name)
		}
	}
	return nil
}

var Vendors = Kind[core.Vendor]{
	Name:       "vendors",
	Collection: func(s store.Store) store.Collection[core.Vendor] { return s.Vendors() },
	Normalize: func(v core.Vendor) core.Vendor {
		v.ID = ensureID(v.ID)
		v.Name = strings.TrimSpace(v.Name)
		v.Email = strings.TrimSpace(v.Email)
		return v
	},
}

// BudgetItems derive projected cost as original plus approved change
// orders on every save. Category names are kept exactly as given apart
// from surrounding whitespace, since aggregation matches them exactly.
var BudgetItems = Kind[core.BudgetItem]{
	Name:       "budget_items",
	Collection: func(s store.Store) store.Collection[core.BudgetItem] { return s.BudgetItems() },
	ByProject:  func(s store.Store) ProjectLister[core.BudgetItem] { return s.BudgetItems() },
	Normalize: func(b core.BudgetItem) core.BudgetItem {
		b.ID = ensureID(b.ID)
		b.Category = strings.TrimSpace(b.Category)
		if b.CostType == "" {
			b.CostType = core.CostBoth
		}
		b.ProjectedCost = b.OriginalBudget.Add(b.ApprovedCOBudget)
		return b
	},
}

var Expenses = Kind[core.Expense]{
	Name:       "expenses",
	Collection: func(s store.Store) store.Collection[core.Expense] { return s.Expenses() },
	ByProject:  func(s store.Store) ProjectLister[core.Expense] { return s.Expenses() },
	Normalize: func(e core.Expense) core.Expense {
		e.ID = ensureID(e.ID)
		e.Category = strings.TrimSpace(e.Category)
		e.Description = strings.TrimSpace(e.Description)
		return e
	},
}

var ChangeOrders = Kind[core.ChangeOrder]{
	Name:       "change_orders",
	Collection: func(s store.Store) store.Collection[core.ChangeOrder] { return s.ChangeOrders() },
	ByProject:  func(s store.Store) ProjectLister[core.ChangeOrder] { return s.ChangeOrders() },
	Normalize: func(c core.ChangeOrder) core.ChangeOrder {
		c.ID = ensureID(c.ID)
		c.Description = strings.TrimSpace(c.Description)
		if c.Status == "" {
			c.Status = core.COSubmitted
		}
		return c
	},
}

var RFIs = Kind[core.RFI]{
	Name:       "rfis",
	Collection: func(s store.Store) store.Collection[core.RFI] { return s.RFIs() },
	ByProject:  func(s store.Store) ProjectLister[core.RFI] { return s.RFIs() },
	Normalize: func(r core.RFI) core.RFI {
		r.ID = ensureID(r.ID)
		r.Subject = strings.TrimSpace(r.Subject)
		if r.Status == "" {
			r.Status = core.RFIOpen
		}
		return r
	},
}

var Tasks = Kind[core.Task]{
	Name:       "tasks",
	Collection: func(s store.Store) store.Collection[core.Task] { return s.Tasks() },
	ByProject:  func(s store.Store) ProjectLister[core.Task] { return s.Tasks() },
	Normalize: func(t core.Task) core.Task {
		t.ID = ensureID(t.ID)
		t.Title = strings.TrimSpace(t.Title)
		if t.Status == "" {
			t.Status = core.TaskToDo
		}
		if t.Priority == "" {
			t.Priority = core.PriorityMedium
		}
		return t
	},
}
