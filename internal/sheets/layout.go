package sheets

import (
	"strings"

	"buildcost/internal/rollup"
)

// DefaultSheetSuffix is appended to the project number to name its sheet.
const DefaultSheetSuffix = "Budget"

// SheetTitle returns "<projectNumber> <suffix>". Projects without a
// number fall back to their id.
func SheetTitle(report rollup.ProjectReport, suffix string) string {
	if strings.TrimSpace(suffix) == "" {
		suffix = DefaultSheetSuffix
	}
	key := strings.TrimSpace(report.Project.ProjectNumber)
	if key == "" {
		key = report.Project.ID
	}
	return key + " " + strings.TrimSpace(suffix)
}

// CategoryHeader is the column header row of the category table.
var CategoryHeader = []any{"Category", "Original Budget", "Approved CO", "Revised Budget", "Committed Cost", "Projected Cost", "Variance"}

// ReportRows lays a project report out as sheet rows. Amounts are written
// as numbers in currency units.
func ReportRows(report rollup.ProjectReport) [][]any {
	p := report.Project
	rows := [][]any{
		{"Project", p.ProjectNumber, p.Name},
		{"Owner", p.OwnerName},
		{"Status", string(p.Status)},
		{},
		CategoryHeader,
	}
	for _, c := range report.Budget.Categories {
		rows = append(rows, categoryRow(c.Category, c))
	}
	rows = append(rows, categoryRow("Total", report.Budget.Total))
	if len(report.Budget.Unmatched) > 0 {
		rows = append(rows, []any{}, []any{"Not in category list"})
		for _, c := range report.Budget.Unmatched {
			rows = append(rows, categoryRow(c.Category, c))
		}
	}
	t := report.Totals
	pl := report.ProfitLoss
	rows = append(rows,
		[]any{},
		[]any{"Original Contract Sum", t.OriginalContractSum.Float()},
		[]any{"Total Additions", t.TotalAdditions.Float()},
		[]any{"Total Deductions", t.TotalDeductions.Float()},
		[]any{"Net Change by Change Orders", t.NetChangeByChangeOrders.Float()},
		[]any{"Contract Sum to Date", t.ContractSumToDate.Float()},
		[]any{},
		[]any{"Revenue", pl.Revenue.Float()},
		[]any{"Cost", pl.Cost.Float()},
		[]any{"Gross Profit", pl.GrossProfit.Float()},
		[]any{"Margin %", pl.MarginPercent},
	)
	return rows
}

func categoryRow(label string, c rollup.CategoryTotals) []any {
	return []any{
		label,
		c.OriginalBudget.Float(),
		c.ApprovedCOBudget.Float(),
		c.RevisedBudget.Float(),
		c.CommittedCost.Float(),
		c.ProjectedCost.Float(),
		c.ProjectedCost.Sub(c.CommittedCost).Float(),
	}
}
