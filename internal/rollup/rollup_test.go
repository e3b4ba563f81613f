package rollup

import (
	"reflect"
	"testing"

	"buildcost/internal/core"
)

func money(units int64) core.Money { return core.Money{Cents: units * 100} }

func item(category string, original, approvedCO, projected int64) core.BudgetItem {
	return core.BudgetItem{
		ProjectID:        "p1",
		Category:         category,
		CostType:         core.CostBoth,
		OriginalBudget:   money(original),
		ApprovedCOBudget: money(approvedCO),
		ProjectedCost:    money(projected),
	}
}

func expense(category string, amount int64) core.Expense {
	return core.Expense{ProjectID: "p1", Category: category, Amount: money(amount)}
}

func changeOrder(status core.ChangeOrderStatus, request int64) core.ChangeOrder {
	return core.ChangeOrder{ProjectID: "p1", Status: status, TotalRequest: money(request)}
}

func TestAggregateCategory(t *testing.T) {
	items := []core.BudgetItem{
		item("Concrete", 1000, 200, 1200),
		item("Concrete", 500, 0, 450),
		item("concrete", 9999, 0, 9999),
		item("Framing", 3000, 0, 3000),
	}
	expenses := []core.Expense{
		expense("Concrete", 700),
		expense("Concrete", 800),
		expense("Concrete ", 50),
		expense("Framing", 100),
	}

	got := AggregateCategory(items, expenses, "Concrete")
	want := CategoryTotals{
		Category:         "Concrete",
		OriginalBudget:   money(1500),
		ApprovedCOBudget: money(200),
		RevisedBudget:    money(1700),
		CommittedCost:    money(1500),
		ProjectedCost:    money(1650),
	}
	if got != want {
		t.Fatalf("expected %+v, got %+v", want, got)
	}
	if got.Overrun() {
		t.Fatalf("did not expect overrun")
	}

	// Changing another category's amounts leaves Concrete untouched.
	items[3] = item("Framing", 80000, 12000, 92000)
	items = append(items, item("Framing", 400, 0, 400))
	expenses[3] = expense("Framing", 55000)
	if again := AggregateCategory(items, expenses, "Concrete"); again != want {
		t.Fatalf("unrelated category changed the result: %+v", again)
	}
}

func TestAggregateCategoryNoMatch(t *testing.T) {
	got := AggregateCategory([]core.BudgetItem{item("Framing", 10, 0, 10)}, nil, "Plumbing")
	if got != (CategoryTotals{Category: "Plumbing"}) {
		t.Fatalf("expected zeros, got %+v", got)
	}
}

func TestAggregateCategoryOverrunIsAllowed(t *testing.T) {
	got := AggregateCategory(
		[]core.BudgetItem{item("Roofing", 100, 0, 100)},
		[]core.Expense{expense("Roofing", 250)},
		"Roofing",
	)
	if !got.Overrun() {
		t.Fatalf("expected overrun, got %+v", got)
	}
}

func TestRevisedBudgetIdentity(t *testing.T) {
	items := []core.BudgetItem{
		item("A", 10, 5, 0),
		item("A", 7, -3, 0),
		item("B", 1, 1, 0),
	}
	for _, name := range []string{"A", "B", "C"} {
		got := AggregateCategory(items, nil, name)
		if got.RevisedBudget.Cents != got.OriginalBudget.Cents+got.ApprovedCOBudget.Cents {
			t.Errorf("%s: revised %d != original %d + approved %d", name,
				got.RevisedBudget.Cents, got.OriginalBudget.Cents, got.ApprovedCOBudget.Cents)
		}
	}
}

func TestLookupCategory(t *testing.T) {
	cats := []core.BudgetCategory{{ID: "1", Name: "Electrical"}, {ID: "2", Name: "Plumbing"}}
	c, ok := LookupCategory(cats, "Plumbing")
	if !ok || c.ID != "2" {
		t.Fatalf("expected Plumbing match, got %+v ok=%v", c, ok)
	}
	if _, ok := LookupCategory(cats, "plumbing"); ok {
		t.Fatalf("lookup must be case-sensitive")
	}
}

func TestRollupProject(t *testing.T) {
	tests := []struct {
		name string
		cos  []core.ChangeOrder
		want ProjectTotals
	}{
		{
			name: "mixed statuses and signs",
			cos: []core.ChangeOrder{
				changeOrder(core.COApproved, 5000),
				changeOrder(core.COExecuted, -1200),
				changeOrder(core.CORejected, 9000),
				changeOrder(core.COSubmitted, -300),
				changeOrder(core.COApproved, 0),
			},
			want: ProjectTotals{
				OriginalContractSum:     money(100000),
				TotalAdditions:          money(5000),
				TotalDeductions:         money(-1200),
				NetChangeByChangeOrders: money(3800),
				ContractSumToDate:       money(103800),
			},
		},
		{
			name: "no qualifying change orders",
			cos: []core.ChangeOrder{
				changeOrder(core.CORejected, 9000),
				changeOrder(core.COSubmitted, 1),
			},
			want: ProjectTotals{
				OriginalContractSum: money(100000),
				ContractSumToDate:   money(100000),
			},
		},
	}
	items := []core.BudgetItem{item("A", 60000, 0, 0), item("B", 40000, 0, 0)}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RollupProject(items, tt.cos)
			if got != tt.want {
				t.Fatalf("expected %+v, got %+v", tt.want, got)
			}
		})
	}
}

func TestRollupProjectZeroChangeOrderIsNeutral(t *testing.T) {
	items := []core.BudgetItem{item("A", 100, 0, 0)}
	base := RollupProject(items, []core.ChangeOrder{changeOrder(core.COApproved, 25)})
	withZero := RollupProject(items, []core.ChangeOrder{
		changeOrder(core.COApproved, 25),
		changeOrder(core.COApproved, 0),
		changeOrder(core.COExecuted, 0),
	})
	if base != withZero {
		t.Fatalf("zero change orders changed totals: %+v vs %+v", base, withZero)
	}
}

func TestComputePaymentApplication(t *testing.T) {
	in := PaymentInputs{
		ContractSumToDate:                 money(100000),
		TotalCompletedAndStored:           money(40000),
		RetainagePercentage:               10,
		StoredMaterialRetainagePercentage: 10,
		PreviousCertificates:              money(15000),
	}
	got := ComputePaymentApplication(in)
	want := PaymentApplicationResult{
		RetainageOfCompletedWork:  money(4000),
		RetainageOfStoredMaterial: money(0),
		TotalRetainage:            money(4000),
		TotalEarnedLessRetainage:  money(36000),
		CurrentPaymentDue:         money(21000),
		BalanceToFinish:           money(64000),
	}
	if got != want {
		t.Fatalf("expected %+v, got %+v", want, got)
	}
}

func TestStoredMaterialPercentageIsIgnored(t *testing.T) {
	in := PaymentInputs{
		ContractSumToDate:       money(5000),
		TotalCompletedAndStored: money(1000),
		RetainagePercentage:     5,
	}
	base := ComputePaymentApplication(in)
	for _, pct := range []core.Percent{0, 10, 50, 100, -20} {
		in.StoredMaterialRetainagePercentage = pct
		if got := ComputePaymentApplication(in); got != base {
			t.Fatalf("stored-material pct %v changed result: %+v vs %+v", pct, got, base)
		}
	}
	if base.RetainageOfStoredMaterial.Cents != 0 {
		t.Fatalf("expected zero stored-material retainage, got %d", base.RetainageOfStoredMaterial.Cents)
	}
}

func TestComputePaymentApplicationRounding(t *testing.T) {
	got := ComputePaymentApplication(PaymentInputs{
		TotalCompletedAndStored: core.Money{Cents: 333},
		RetainagePercentage:     7.5,
	})
	// 333 * 7.5 / 100 = 24.975 cents
	if got.RetainageOfCompletedWork.Cents != 25 {
		t.Fatalf("expected 25 cents retainage, got %d", got.RetainageOfCompletedWork.Cents)
	}
	if got.CurrentPaymentDue.Cents != 308 {
		t.Fatalf("expected 308 cents due, got %d", got.CurrentPaymentDue.Cents)
	}
}

func TestComputePaymentApplicationIsPermissive(t *testing.T) {
	got := ComputePaymentApplication(PaymentInputs{
		ContractSumToDate:       money(100),
		TotalCompletedAndStored: money(100),
		RetainagePercentage:     150,
		PreviousCertificates:    money(10),
	})
	if got.TotalEarnedLessRetainage.Cents != money(-50).Cents {
		t.Fatalf("expected -50.00 earned, got %s", got.TotalEarnedLessRetainage)
	}
	if got.BalanceToFinish.Cents != money(150).Cents {
		t.Fatalf("expected 150.00 balance, got %s", got.BalanceToFinish)
	}
}

func TestSummarizeBudget(t *testing.T) {
	cats := []core.BudgetCategory{{Name: "Sitework"}, {Name: "Concrete"}, {Name: "Finishes"}}
	items := []core.BudgetItem{
		item("Concrete", 100, 10, 110),
		item("Sitework", 50, 0, 50),
		item("Landscaping", 30, 0, 30),
	}
	expenses := []core.Expense{expense("Concrete", 20), expense("Permits", 5)}

	got := SummarizeBudget(cats, items, expenses)

	var order []string
	for _, row := range got.Categories {
		order = append(order, row.Category)
	}
	if !reflect.DeepEqual(order, []string{"Sitework", "Concrete", "Finishes"}) {
		t.Fatalf("unexpected order %v", order)
	}
	if got.Total.OriginalBudget != money(150) || got.Total.CommittedCost != money(20) {
		t.Fatalf("unexpected total %+v", got.Total)
	}
	if len(got.Unmatched) != 2 || got.Unmatched[0].Category != "Landscaping" || got.Unmatched[1].Category != "Permits" {
		t.Fatalf("unexpected unmatched %+v", got.Unmatched)
	}
	if got.Unmatched[0].OriginalBudget != money(30) {
		t.Fatalf("expected unmatched amounts preserved, got %+v", got.Unmatched[0])
	}
}

func TestRollupIsIdempotent(t *testing.T) {
	items := []core.BudgetItem{item("A", 10, 1, 11), item("B", 20, 2, 22)}
	cos := []core.ChangeOrder{changeOrder(core.COApproved, 3), changeOrder(core.COExecuted, -1)}
	expenses := []core.Expense{expense("A", 4)}

	if RollupProject(items, cos) != RollupProject(items, cos) {
		t.Fatalf("rollup not deterministic")
	}
	if AggregateCategory(items, expenses, "A") != AggregateCategory(items, expenses, "A") {
		t.Fatalf("aggregation not deterministic")
	}
}

func TestPaymentApplicationFormSelectProject(t *testing.T) {
	f := NewPaymentApplicationForm()
	f.SelectProject("p1")
	f.ApplicationNo = 4
	f.ArchitectName = "Studio North"
	f.RetainagePercentage = 5
	f.TotalCompletedAndStored = money(40000)
	f.PreviousCertificates = money(15000)

	f.SelectProject("p1")
	if f.TotalCompletedAndStored != money(40000) {
		t.Fatalf("reselecting the same project must keep amounts")
	}

	f.SelectProject("p2")
	if f.TotalCompletedAndStored.Cents != 0 || f.PreviousCertificates.Cents != 0 {
		t.Fatalf("expected amounts reset, got %+v", f)
	}
	if f.ApplicationNo != 4 || f.ArchitectName != "Studio North" || f.RetainagePercentage != 5 {
		t.Fatalf("expected header fields kept, got %+v", f)
	}

	in := f.Inputs(ProjectTotals{ContractSumToDate: money(900)})
	if in.ContractSumToDate != money(900) || in.RetainagePercentage != 5 {
		t.Fatalf("unexpected inputs %+v", in)
	}
}

func TestProfitLoss(t *testing.T) {
	pl := ProfitLoss(ProjectTotals{ContractSumToDate: money(1000)}, []core.Expense{expense("A", 600), expense("B", 150)})
	if pl.GrossProfit != money(250) || pl.MarginPercent != 25 {
		t.Fatalf("unexpected P&L %+v", pl)
	}
	empty := ProfitLoss(ProjectTotals{}, []core.Expense{expense("A", 10)})
	if empty.MarginPercent != 0 || empty.GrossProfit != money(-10) {
		t.Fatalf("unexpected empty P&L %+v", empty)
	}
}
