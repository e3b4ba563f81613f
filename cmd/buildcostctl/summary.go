package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"buildcost/internal/rollup"
	"buildcost/internal/services"
)

var summaryCmd = &cobra.Command{
	Use:   "summary <project-id>",
	Short: "Print a project's budget summary, contract rollup and P&L",
	Args:  cobra.ExactArgs(1),
	RunE:  runSummary,
}

func init() {
	rootCmd.AddCommand(summaryCmd)
}

func runSummary(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	be, err := openBackend(ctx, false)
	if err != nil {
		return err
	}
	defer closeBackend(be)

	report, err := services.NewBudgetService(be.Store).Report(ctx, args[0])
	if err != nil {
		return fmt.Errorf("load project %s: %w", args[0], err)
	}
	return printReport(os.Stdout, report)
}

func printReport(out io.Writer, report rollup.ProjectReport) error {
	p := report.Project
	fmt.Fprintf(out, "\n  %s  %s (%s)\n\n", p.ProjectNumber, p.Name, p.Status)

	total := report.Budget.Total
	if err := writeCategoryTable(out, report.Budget.Categories, &total); err != nil {
		return err
	}
	if len(report.Budget.Unmatched) > 0 {
		fmt.Fprintln(out, "\n  Not in category list:")
		if err := writeCategoryTable(out, report.Budget.Unmatched, nil); err != nil {
			return err
		}
	}

	t := report.Totals
	pl := report.ProfitLoss
	fmt.Fprintln(out)
	return writePairs(out, [][2]string{
		{"Original contract sum", t.OriginalContractSum.String()},
		{"Change order additions", t.TotalAdditions.String()},
		{"Change order deductions", t.TotalDeductions.String()},
		{"Net change by change orders", t.NetChangeByChangeOrders.String()},
		{"Contract sum to date", t.ContractSumToDate.String()},
		{"Cost to date", pl.Cost.String()},
		{"Gross profit", pl.GrossProfit.String()},
		{"Margin", fmt.Sprintf("%.2f%%", pl.MarginPercent)},
	})
}
