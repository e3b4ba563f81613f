package rollup

import (
	"github.com/shopspring/decimal"

	"buildcost/internal/core"
)

// PaymentInputs are the figures entered on a payment application.
type PaymentInputs struct {
	ContractSumToDate       core.Money   `json:"contractSumToDate"`
	TotalCompletedAndStored core.Money   `json:"totalCompletedAndStored"`
	RetainagePercentage     core.Percent `json:"retainagePercentage"`
	// StoredMaterialRetainagePercentage is accepted but never applied:
	// stored-material retainage is always zero.
	StoredMaterialRetainagePercentage core.Percent `json:"storedMaterialRetainagePercentage"`
	PreviousCertificates              core.Money   `json:"previousCertificates"`
}

// PaymentApplicationResult holds the derived lines of a payment
// application.
type PaymentApplicationResult struct {
	RetainageOfCompletedWork  core.Money `json:"retainageOfCompletedWork"`
	RetainageOfStoredMaterial core.Money `json:"retainageOfStoredMaterial"`
	TotalRetainage            core.Money `json:"totalRetainage"`
	TotalEarnedLessRetainage  core.Money `json:"totalEarnedLessRetainage"`
	CurrentPaymentDue         core.Money `json:"currentPaymentDue"`
	BalanceToFinish           core.Money `json:"balanceToFinish"`
}

var hundred = decimal.NewFromInt(100)

// ComputePaymentApplication derives retainage, earned amount, payment due
// and balance to finish. Percentages are not range-checked.
func ComputePaymentApplication(in PaymentInputs) PaymentApplicationResult {
	var res PaymentApplicationResult
	res.RetainageOfCompletedWork = percentOf(in.TotalCompletedAndStored, in.RetainagePercentage)
	res.RetainageOfStoredMaterial = core.Money{}
	res.TotalRetainage = res.RetainageOfCompletedWork.Add(res.RetainageOfStoredMaterial)
	res.TotalEarnedLessRetainage = in.TotalCompletedAndStored.Sub(res.TotalRetainage)
	res.CurrentPaymentDue = res.TotalEarnedLessRetainage.Sub(in.PreviousCertificates)
	res.BalanceToFinish = in.ContractSumToDate.Sub(res.TotalEarnedLessRetainage)
	return res
}

// percentOf returns amount × pct / 100, rounded half away from zero to
// the cent.
func percentOf(amount core.Money, pct core.Percent) core.Money {
	cents := decimal.NewFromInt(amount.Cents).
		Mul(decimal.NewFromFloat(pct.Float())).
		Div(hundred).
		Round(0)
	return core.Money{Cents: cents.IntPart()}
}
