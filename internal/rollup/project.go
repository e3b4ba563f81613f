package rollup

import "buildcost/internal/core"

// ProjectTotals is the contract-level rollup of a project.
type ProjectTotals struct {
	OriginalContractSum     core.Money `json:"originalContractSum"`
	TotalAdditions          core.Money `json:"totalAdditions"`
	TotalDeductions         core.Money `json:"totalDeductions"`
	NetChangeByChangeOrders core.Money `json:"netChangeByChangeOrders"`
	ContractSumToDate       core.Money `json:"contractSumToDate"`
}

// RollupProject sums every item's original budget and the approved or
// executed change orders. Positive requests are additions, negative ones
// deductions; a zero request counts as neither.
func RollupProject(items []core.BudgetItem, changeOrders []core.ChangeOrder) ProjectTotals {
	var totals ProjectTotals
	for _, item := range items {
		totals.OriginalContractSum = totals.OriginalContractSum.Add(item.OriginalBudget)
	}
	for _, co := range changeOrders {
		if !co.Status.CountsTowardContract() {
			continue
		}
		switch {
		case co.TotalRequest.Cents > 0:
			totals.TotalAdditions = totals.TotalAdditions.Add(co.TotalRequest)
		case co.TotalRequest.Cents < 0:
			totals.TotalDeductions = totals.TotalDeductions.Add(co.TotalRequest)
		}
	}
	totals.NetChangeByChangeOrders = totals.TotalAdditions.Add(totals.TotalDeductions)
	totals.ContractSumToDate = totals.OriginalContractSum.Add(totals.NetChangeByChangeOrders)
	return totals
}
