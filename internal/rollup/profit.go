package rollup

import (
	"github.com/shopspring/decimal"

	"buildcost/internal/core"
)

type ProfitLossSummary struct {
	Revenue     core.Money `json:"revenue"`
	Cost        core.Money `json:"cost"`
	GrossProfit core.Money `json:"grossProfit"`
	// MarginPercent is zero when revenue is zero.
	MarginPercent float64 `json:"marginPercent"`
}

// ProfitLoss compares the contract sum to date with recorded expenses.
func ProfitLoss(totals ProjectTotals, expenses []core.Expense) ProfitLossSummary {
	pl := ProfitLossSummary{Revenue: totals.ContractSumToDate}
	for _, exp := range expenses {
		pl.Cost = pl.Cost.Add(exp.Amount)
	}
	pl.GrossProfit = pl.Revenue.Sub(pl.Cost)
	if pl.Revenue.Cents != 0 {
		pl.MarginPercent = decimal.NewFromInt(pl.GrossProfit.Cents).
			Mul(hundred).
			Div(decimal.NewFromInt(pl.Revenue.Cents)).
			Round(2).
			InexactFloat64()
	}
	return pl
}
