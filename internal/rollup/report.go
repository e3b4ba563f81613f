package rollup

import "buildcost/internal/core"

// ProjectReport bundles every derived view of one project.
type ProjectReport struct {
	Project    core.Project      `json:"project"`
	Budget     BudgetSummary     `json:"budget"`
	Totals     ProjectTotals     `json:"totals"`
	ProfitLoss ProfitLossSummary `json:"profitLoss"`
}

// BuildReport derives the budget summary, contract rollup and P&L from a
// project's records.
func BuildReport(project core.Project, categories []core.BudgetCategory, items []core.BudgetItem, expenses []core.Expense, changeOrders []core.ChangeOrder) ProjectReport {
	totals := RollupProject(items, changeOrders)
	return ProjectReport{
		Project:    project,
		Budget:     SummarizeBudget(categories, items, expenses),
		Totals:     totals,
		ProfitLoss: ProfitLoss(totals, expenses),
	}
}
