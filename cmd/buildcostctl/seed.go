package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"buildcost/internal/core"
	"buildcost/internal/services"
)

const demoProjectID = "demo-project-0001"

var seedCmd = &cobra.Command{
	Use:   "seed-demo",
	Short: "Create a demo project with budget, expenses and change orders",
	Long:  "Create a demo project. Records use fixed ids, so running it again updates them in place.",
	Args:  cobra.NoArgs,
	RunE:  runSeed,
}

func init() {
	rootCmd.AddCommand(seedCmd)
}

func runSeed(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	be, err := openBackend(ctx, true)
	if err != nil {
		return err
	}
	defer closeBackend(be)

	n, err := seedDemo(ctx, be.Records)
	if err != nil {
		return err
	}
	fmt.Printf("  Seeded %d records. Project id: %s\n", n, demoProjectID)
	return nil
}

// seedDemo upserts the demo records and returns how many were written.
// Master categories are only added when no category of that name exists.
func seedDemo(ctx context.Context, records *services.RecordService) (int, error) {
	written := 0

	existing, err := services.List(ctx, records, services.Categories)
	if err != nil {
		return 0, err
	}
	have := make(map[string]bool, len(existing))
	for _, c := range existing {
		have[c.Name] = true
	}
	for _, name := range []string{"General Conditions", "Concrete", "Framing", "Electrical", "Plumbing"} {
		if have[name] {
			continue
		}
		if _, err := services.Save(ctx, records, services.Categories, core.BudgetCategory{Name: name}); err != nil {
			return written, err
		}
		written++
	}

	project := core.Project{
		ID:              demoProjectID,
		ProjectNumber:   "DEMO-001",
		Name:            "Riverside Maintenance Depot",
		OwnerName:       "City of Riverside",
		Address:         "100 Harbor Way",
		ArchitectName:   "Ames & Cole Architects",
		ContractDate:    core.NewDate(2024, 1, 15),
		StartDate:       core.NewDate(2024, 2, 1),
		EndDate:         core.NewDate(2024, 12, 20),
		PercentComplete: 40,
		Status:          core.ProjectInProgress,
	}
	if _, err := services.Save(ctx, records, services.Projects, project); err != nil {
		return written, err
	}
	written++

	items := []core.BudgetItem{
		{ID: "demo-bi-1", Category: "General Conditions", CostType: core.CostBoth, OriginalBudget: core.Cents(12_000_00)},
		{ID: "demo-bi-2", Category: "Concrete", CostType: core.CostMaterial, Notes: "Slab and footings material", OriginalBudget: core.Cents(38_000_00), ApprovedCOBudget: core.Cents(4_000_00)},
		{ID: "demo-bi-3", Category: "Framing", CostType: core.CostLabor, Notes: "Framing labor", OriginalBudget: core.Cents(30_000_00)},
		{ID: "demo-bi-4", Category: "Electrical", CostType: core.CostBoth, OriginalBudget: core.Cents(20_000_00)},
	}
	for _, it := range items {
		it.ProjectID = demoProjectID
		if _, err := services.Save(ctx, records, services.BudgetItems, it); err != nil {
			return written, err
		}
		written++
	}

	expenses := []core.Expense{
		{ID: "demo-ex-1", Date: core.NewDate(2024, 3, 4), Category: "Concrete", VendorName: "Delta Ready Mix", Description: "Footing pour", Amount: core.Cents(18_500_00), PaymentMethod: "Check", InvoiceNumber: "DRM-2211"},
		{ID: "demo-ex-2", Date: core.NewDate(2024, 4, 12), Category: "Framing", VendorName: "North Crew", Description: "Framing progress draw", Amount: core.Cents(14_000_00), PaymentMethod: "ACH"},
		{ID: "demo-ex-3", Date: core.NewDate(2024, 4, 30), Category: "Site Work", Description: "Temporary fencing", Amount: core.Cents(1_250_00), PaymentMethod: "Card"},
	}
	for _, ex := range expenses {
		ex.ProjectID = demoProjectID
		if _, err := services.Save(ctx, records, services.Expenses, ex); err != nil {
			return written, err
		}
		written++
	}

	changeOrders := []core.ChangeOrder{
		{ID: "demo-co-1", CONumber: "CO-001", Description: "Deeper footings at grid C", TotalRequest: core.Cents(4_000_00), Status: core.COApproved},
		{ID: "demo-co-2", CONumber: "CO-002", Description: "Delete canopy lighting", TotalRequest: core.Cents(-1_500_00), Status: core.COExecuted},
		{ID: "demo-co-3", CONumber: "CO-003", Description: "Add floor drains", TotalRequest: core.Cents(2_750_00), Status: core.COSubmitted},
	}
	for _, co := range changeOrders {
		co.ProjectID = demoProjectID
		if _, err := services.Save(ctx, records, services.ChangeOrders, co); err != nil {
			return written, err
		}
		written++
	}

	vendor := core.Vendor{ID: "demo-vendor-1", Name: "Delta Ready Mix", Trade: "Concrete", Email: "orders@deltamix.example"}
	if _, err := services.Save(ctx, records, services.Vendors, vendor); err != nil {
		return written, err
	}
	written++

	rfi := core.RFI{ID: "demo-rfi-1", ProjectID: demoProjectID, RFINumber: "RFI-001", Subject: "Anchor bolt layout", Question: "Confirm bolt spacing at grid C.", DueDate: core.NewDate(2024, 3, 1)}
	if _, err := services.Save(ctx, records, services.RFIs, rfi); err != nil {
		return written, err
	}
	written++

	task := core.Task{ID: "demo-task-1", ProjectID: demoProjectID, Title: "Submit pay application 3", Priority: core.PriorityHigh, DueDate: core.NewDate(2024, 5, 25)}
	if _, err := services.Save(ctx, records, services.Tasks, task); err != nil {
		return written, err
	}
	written++

	return written, nil
}
