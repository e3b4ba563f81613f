// Package memory is an in-process Store used for development and tests.
package memory

import (
	"bufio"
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"buildcost/internal/core"
	"buildcost/internal/store"
)

var defaultCategories = []string{
	"General Conditions", "Sitework", "Concrete", "Masonry", "Metals",
	"Carpentry", "Thermal & Moisture", "Doors & Windows", "Finishes",
	"Plumbing", "HVAC", "Electrical",
}

type Store struct {
	projects     *collection[core.Project]
	categories   *collection[core.BudgetCategory]
	vendors      *collection[core.Vendor]
	budgetItems  *projectCollection[core.BudgetItem]
	expenses     *projectCollection[core.Expense]
	changeOrders *projectCollection[core.ChangeOrder]
	rfis         *projectCollection[core.RFI]
	tasks        *projectCollection[core.Task]
}

var _ store.Store = (*Store)(nil)

// New returns a store whose master category list holds cats, in order.
func New(cats []string) *Store {
	s := &Store{
		projects:     newCollection[core.Project](),
		categories:   newCollection[core.BudgetCategory](),
		vendors:      newCollection[core.Vendor](),
		budgetItems:  newProjectCollection[core.BudgetItem](),
		expenses:     newProjectCollection[core.Expense](),
		changeOrders: newProjectCollection[core.ChangeOrder](),
		rfis:         newProjectCollection[core.RFI](),
		tasks:        newProjectCollection[core.Task](),
	}
	for _, name := range dedupe(cats) {
		c := core.BudgetCategory{ID: core.NewID(), Name: name}
		_ = s.categories.Upsert(context.Background(), c)
	}
	return s
}

// NewFromFiles seeds categories from base/seed_categories.txt, one per
// line, falling back to a standard CSI-style list.
func NewFromFiles(base string) *Store {
	cats := readLines(filepath.Join(base, "seed_categories.txt"))
	if len(cats) == 0 {
		cats = defaultCategories
	}
	return New(cats)
}

func (s *Store) Projects() store.Collection[core.Project]          { return s.projects }
func (s *Store) Categories() store.Collection[core.BudgetCategory] { return s.categories }
func (s *Store) Vendors() store.Collection[core.Vendor]            { return s.vendors }

func (s *Store) BudgetItems() store.ProjectCollection[core.BudgetItem]   { return s.budgetItems }
func (s *Store) Expenses() store.ProjectCollection[core.Expense]         { return s.expenses }
func (s *Store) ChangeOrders() store.ProjectCollection[core.ChangeOrder] { return s.changeOrders }
func (s *Store) RFIs() store.ProjectCollection[core.RFI]                 { return s.rfis }
func (s *Store) Tasks() store.ProjectCollection[core.Task]               { return s.tasks }

func (s *Store) Ping(context.Context) error { return nil }
func (s *Store) Close() error               { return nil }

// collection keeps records in insertion order.
type collection[T core.Record] struct {
	mu    sync.RWMutex
	order []string
	rows  map[string]T
}

func newCollection[T core.Record]() *collection[T] {
	return &collection[T]{rows: make(map[string]T)}
}

func (c *collection[T]) Get(_ context.Context, id string) (T, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	rec, ok := c.rows[id]
	if !ok {
		var zero T
		return zero, store.ErrNotFound
	}
	return rec, nil
}

func (c *collection[T]) List(_ context.Context) ([]T, error) {
	return c.filter(func(T) bool { return true }), nil
}

func (c *collection[T]) Upsert(_ context.Context, rec T) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := rec.RecordID()
	if _, ok := c.rows[id]; !ok {
		c.order = append(c.order, id)
	}
	c.rows[id] = rec
	return nil
}

func (c *collection[T]) Delete(_ context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.rows[id]; !ok {
		return store.ErrNotFound
	}
	delete(c.rows, id)
	for i, v := range c.order {
		if v == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	return nil
}

func (c *collection[T]) filter(keep func(T) bool) []T {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]T, 0, len(c.order))
	for _, id := range c.order {
		if rec := c.rows[id]; keep(rec) {
			out = append(out, rec)
		}
	}
	return out
}

type projectCollection[T core.ProjectRecord] struct {
	*collection[T]
}

func newProjectCollection[T core.ProjectRecord]() *projectCollection[T] {
	return &projectCollection[T]{collection: newCollection[T]()}
}

func (c *projectCollection[T]) ListByProject(_ context.Context, projectID string) ([]T, error) {
	return c.filter(func(rec T) bool { return rec.ProjectRef() == projectID }), nil
}

func readLines(path string) []string {
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()
	var out []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		out = append(out, line)
	}
	return dedupe(out)
}

// dedupe trims and drops empty or repeated names, preserving order.
func dedupe(in []string) []string {
	seen := map[string]struct{}{}
	out := make([]string, 0, len(in))
	for _, v := range in {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
