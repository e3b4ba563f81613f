// Package store defines the typed record collections the application
// reads and writes. Implementations live in store/memory and storage.
package store

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"buildcost/internal/core"
)

var (
	ErrNotFound = errors.New("record not found")
	// ErrConflict reports a write that breaks a uniqueness rule.
	ErrConflict = errors.New("record conflicts with an existing record")
)

// Collection is a keyed set of records. Upsert replaces the whole record.
type Collection[T core.Record] interface {
	Get(ctx context.Context, id string) (T, error)
	List(ctx context.Context) ([]T, error)
	Upsert(ctx context.Context, rec T) error
	Delete(ctx context.Context, id string) error
}

// ProjectCollection holds records owned by a project.
type ProjectCollection[T core.ProjectRecord] interface {
	Collection[T]
	ListByProject(ctx context.Context, projectID string) ([]T, error)
}

// Store groups every collection behind one injected dependency.
type Store interface {
	Projects() Collection[core.Project]
	Categories() Collection[core.BudgetCategory]
	Vendors() Collection[core.Vendor]
	BudgetItems() ProjectCollection[core.BudgetItem]
	Expenses() ProjectCollection[core.Expense]
	ChangeOrders() ProjectCollection[core.ChangeOrder]
	RFIs() ProjectCollection[core.RFI]
	Tasks() ProjectCollection[core.Task]
	Ping(ctx context.Context) error
	Close() error
}

// Snapshot is everything the rollup engine needs for one project.
type Snapshot struct {
	Project      core.Project
	Categories   []core.BudgetCategory
	Items        []core.BudgetItem
	Expenses     []core.Expense
	ChangeOrders []core.ChangeOrder
}

// LoadSnapshot reads a project and its budget records concurrently.
func LoadSnapshot(ctx context.Context, st Store, projectID string) (Snapshot, error) {
	var snap Snapshot
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		p, err := st.Projects().Get(gctx, projectID)
		if err != nil {
			return fmt.Errorf("get project %s: %w", projectID, err)
		}
		snap.Project = p
		return nil
	})
	g.Go(func() error {
		cats, err := st.Categories().List(gctx)
		if err != nil {
			return fmt.Errorf("list categories: %w", err)
		}
		snap.Categories = cats
		return nil
	})
	g.Go(func() error {
		items, err := st.BudgetItems().ListByProject(gctx, projectID)
		if err != nil {
			return fmt.Errorf("list budget items: %w", err)
		}
		snap.Items = items
		return nil
	})
	g.Go(func() error {
		exps, err := st.Expenses().ListByProject(gctx, projectID)
		if err != nil {
			return fmt.Errorf("list expenses: %w", err)
		}
		snap.Expenses = exps
		return nil
	})
	g.Go(func() error {
		cos, err := st.ChangeOrders().ListByProject(gctx, projectID)
		if err != nil {
			return fmt.Errorf("list change orders: %w", err)
		}
		snap.ChangeOrders = cos
		return nil
	})
	if err := g.Wait(); err != nil {
		return Snapshot{}, err
	}
	return snap, nil
}
