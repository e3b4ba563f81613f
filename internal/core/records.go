package core

import "github.com/google/uuid"

// Record is anything the store keeps under a string id.
type Record interface {
	RecordID() string
}

// ProjectRecord is a record owned by a single project.
type ProjectRecord interface {
	Record
	ProjectRef() string
}

// NewID returns a fresh client-side record id.
func NewID() string {
	return uuid.NewString()
}

func (p Project) RecordID() string        { return p.ID }
func (c BudgetCategory) RecordID() string { return c.ID }
func (v Vendor) RecordID() string         { return v.ID }
func (b BudgetItem) RecordID() string     { return b.ID }
func (e Expense) RecordID() string        { return e.ID }
func (c ChangeOrder) RecordID() string    { return c.ID }
func (r RFI) RecordID() string            { return r.ID }
func (t Task) RecordID() string           { return t.ID }

func (b BudgetItem) ProjectRef() string  { return b.ProjectID }
func (e Expense) ProjectRef() string     { return e.ProjectID }
func (c ChangeOrder) ProjectRef() string { return c.ProjectID }
func (r RFI) ProjectRef() string         { return r.ProjectID }
func (t Task) ProjectRef() string        { return t.ProjectID }
