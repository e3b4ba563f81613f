package storage

import "buildcost/internal/core"

func dateArg(d core.Date) string { return d.String() }

func parseStoredDate(s string, dst *core.Date) error {
	d, err := core.ParseDate(s)
	if err != nil {
		return err
	}
	*dst = d
	return nil
}

var projectsTable = table[core.Project]{
	name: "projects",
	columns: []string{
		"project_number", "name", "owner_name", "address", "architect_name",
		"contract_date", "start_date", "end_date", "revised_contract_cents",
		"percent_complete", "status",
	},
	values: func(p core.Project) []any {
		return []any{
			p.ProjectNumber, p.Name, p.OwnerName, p.Address, p.ArchitectName,
			dateArg(p.ContractDate), dateArg(p.StartDate), dateArg(p.EndDate), p.RevisedContract.Cents,
			p.PercentComplete.Float(), string(p.Status),
		}
	},
	scan: func(row rowScanner) (core.Project, error) {
		var (
			p                            core.Project
			contract, start, end, status string
			percent                      float64
		)
		err := row.Scan(&p.ID, &p.ProjectNumber, &p.Name, &p.OwnerName, &p.Address, &p.ArchitectName,
			&contract, &start, &end, &p.RevisedContract.Cents, &percent, &status)
		if err != nil {
			return p, err
		}
		p.PercentComplete = core.Percent(percent)
		p.Status = core.ProjectStatus(status)
		for _, d := range []struct {
			raw string
			dst *core.Date
		}{{contract, &p.ContractDate}, {start, &p.StartDate}, {end, &p.EndDate}} {
			if err := parseStoredDate(d.raw, d.dst); err != nil {
				return p, err
			}
		}
		return p, nil
	},
}

var categoriesTable = table[core.BudgetCategory]{
	name:    "budget_categories",
	columns: []string{"name"},
	values:  func(c core.BudgetCategory) []any { return []any{c.Name} },
	scan: func(row rowScanner) (core.BudgetCategory, error) {
		var c core.BudgetCategory
		err := row.Scan(&c.ID, &c.Name)
		return c, err
	},
}

var vendorsTable = table[core.Vendor]{
	name:    "vendors",
	columns: []string{"name", "trade", "contact_name", "email", "phone"},
	values: func(v core.Vendor) []any {
		return []any{v.Name, v.Trade, v.ContactName, v.Email, v.Phone}
	},
	scan: func(row rowScanner) (core.Vendor, error) {
		var v core.Vendor
		err := row.Scan(&v.ID, &v.Name, &v.Trade, &v.ContactName, &v.Email, &v.Phone)
		return v, err
	},
}

var budgetItemsTable = table[core.BudgetItem]{
	name: "budget_items",
	columns: []string{
		"project_id", "category", "cost_type", "notes", "original_budget_cents",
		"approved_co_budget_cents", "committed_cost_cents", "projected_cost_cents",
	},
	values: func(b core.BudgetItem) []any {
		return []any{
			b.ProjectID, b.Category, string(b.CostType), b.Notes, b.OriginalBudget.Cents,
			b.ApprovedCOBudget.Cents, b.CommittedCost.Cents, b.ProjectedCost.Cents,
		}
	},
	scan: func(row rowScanner) (core.BudgetItem, error) {
		var (
			b        core.BudgetItem
			costType string
		)
		err := row.Scan(&b.ID, &b.ProjectID, &b.Category, &costType, &b.Notes, &b.OriginalBudget.Cents,
			&b.ApprovedCOBudget.Cents, &b.CommittedCost.Cents, &b.ProjectedCost.Cents)
		b.CostType = core.CostType(costType)
		return b, err
	},
}

var expensesTable = table[core.Expense]{
	name: "expenses",
	columns: []string{
		"project_id", "expense_date", "category", "vendor_name", "description",
		"amount_cents", "payment_method", "payment_reference", "invoice_number",
	},
	values: func(e core.Expense) []any {
		return []any{
			e.ProjectID, dateArg(e.Date), e.Category, e.VendorName, e.Description,
			e.Amount.Cents, e.PaymentMethod, e.PaymentReference, e.InvoiceNumber,
		}
	},
	scan: func(row rowScanner) (core.Expense, error) {
		var (
			e    core.Expense
			date string
		)
		err := row.Scan(&e.ID, &e.ProjectID, &date, &e.Category, &e.VendorName, &e.Description,
			&e.Amount.Cents, &e.PaymentMethod, &e.PaymentReference, &e.InvoiceNumber)
		if err != nil {
			return e, err
		}
		return e, parseStoredDate(date, &e.Date)
	},
}

var changeOrdersTable = table[core.ChangeOrder]{
	name:    "change_orders",
	columns: []string{"project_id", "co_number", "description", "total_request_cents", "status"},
	values: func(c core.ChangeOrder) []any {
		return []any{c.ProjectID, c.CONumber, c.Description, c.TotalRequest.Cents, string(c.Status)}
	},
	scan: func(row rowScanner) (core.ChangeOrder, error) {
		var (
			c      core.ChangeOrder
			status string
		)
		err := row.Scan(&c.ID, &c.ProjectID, &c.CONumber, &c.Description, &c.TotalRequest.Cents, &status)
		c.Status = core.ChangeOrderStatus(status)
		return c, err
	},
}

var rfisTable = table[core.RFI]{
	name: "rfis",
	columns: []string{
		"project_id", "rfi_number", "subject", "question", "answer",
		"status", "due_date", "assigned_to",
	},
	values: func(r core.RFI) []any {
		return []any{
			r.ProjectID, r.RFINumber, r.Subject, r.Question, r.Answer,
			string(r.Status), dateArg(r.DueDate), r.AssignedTo,
		}
	},
	scan: func(row rowScanner) (core.RFI, error) {
		var (
			r           core.RFI
			status, due string
		)
		err := row.Scan(&r.ID, &r.ProjectID, &r.RFINumber, &r.Subject, &r.Question, &r.Answer,
			&status, &due, &r.AssignedTo)
		if err != nil {
			return r, err
		}
		r.Status = core.RFIStatus(status)
		return r, parseStoredDate(due, &r.DueDate)
	},
}

var tasksTable = table[core.Task]{
	name: "tasks",
	columns: []string{
		"project_id", "title", "description", "status", "priority",
		"due_date", "assignee",
	},
	values: func(t core.Task) []any {
		return []any{
			t.ProjectID, t.Title, t.Description, string(t.Status), string(t.Priority),
			dateArg(t.DueDate), t.Assignee,
		}
	},
	scan: func(row rowScanner) (core.Task, error) {
		var (
			t                     core.Task
			status, priority, due string
		)
		err := row.Scan(&t.ID, &t.ProjectID, &t.Title, &t.Description, &status, &priority,
			&due, &t.Assignee)
		if err != nil {
			return t, err
		}
		t.Status = core.TaskStatus(status)
		t.Priority = core.TaskPriority(priority)
		return t, parseStoredDate(due, &t.DueDate)
	},
}
