package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"buildcost/internal/core"
	"buildcost/internal/importer"
	"buildcost/internal/rollup"
	"buildcost/internal/services"
)

var (
	flagCompleted     string
	flagPrevious      string
	flagRetainage     float64
	flagApplicationNo int
	flagPeriodTo      string
)

var payappCmd = &cobra.Command{
	Use:   "payapp <project-id>",
	Short: "Compute a payment application for a project",
	Args:  cobra.ExactArgs(1),
	RunE:  runPayapp,
}

func init() {
	defaults := rollup.NewPaymentApplicationForm()
	payappCmd.Flags().StringVar(&flagCompleted, "completed", "0", "Total completed and stored to date")
	payappCmd.Flags().StringVar(&flagPrevious, "previous", "0", "Less previous certificates for payment")
	payappCmd.Flags().Float64Var(&flagRetainage, "retainage", defaults.RetainagePercentage.Float(), "Retainage percentage of completed work")
	payappCmd.Flags().IntVar(&flagApplicationNo, "application-no", defaults.ApplicationNo, "Application number")
	payappCmd.Flags().StringVar(&flagPeriodTo, "period-to", "", "Period end date (YYYY-MM-DD)")
	rootCmd.AddCommand(payappCmd)
}

func runPayapp(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	form, err := payappForm(args[0])
	if err != nil {
		return err
	}

	be, err := openBackend(ctx, false)
	if err != nil {
		return err
	}
	defer closeBackend(be)

	project, err := be.Store.Projects().Get(ctx, args[0])
	if err != nil {
		return fmt.Errorf("load project %s: %w", args[0], err)
	}
	form.ArchitectName = project.ArchitectName
	form.ContractDate = project.ContractDate

	app, err := services.NewBudgetService(be.Store).PaymentApplication(ctx, form)
	if err != nil {
		return err
	}
	return printPaymentApplication(os.Stdout, project, app)
}

func payappForm(projectID string) (rollup.PaymentApplicationForm, error) {
	form := rollup.NewPaymentApplicationForm()
	form.ProjectID = projectID
	form.ApplicationNo = flagApplicationNo
	form.RetainagePercentage = core.Percent(flagRetainage)

	completed, err := importer.ParseAmount(flagCompleted)
	if err != nil {
		return form, fmt.Errorf("--completed: %w", err)
	}
	previous, err := importer.ParseAmount(flagPrevious)
	if err != nil {
		return form, fmt.Errorf("--previous: %w", err)
	}
	form.TotalCompletedAndStored = completed
	form.PreviousCertificates = previous

	if form.PeriodTo, err = core.ParseDate(flagPeriodTo); err != nil {
		return form, fmt.Errorf("--period-to: %w", err)
	}
	return form, nil
}

func printPaymentApplication(out io.Writer, project core.Project, app services.PaymentApplication) error {
	f, t, r := app.Form, app.Totals, app.Result
	fmt.Fprintf(out, "\n  Application No. %d  %s  %s\n", f.ApplicationNo, project.ProjectNumber, project.Name)
	if !f.PeriodTo.IsEmpty() {
		fmt.Fprintf(out, "  Period to %s\n", f.PeriodTo)
	}
	if f.ArchitectName != "" {
		fmt.Fprintf(out, "  Architect %s\n", f.ArchitectName)
	}
	fmt.Fprintln(out)
	return writePairs(out, [][2]string{
		{"1. Original contract sum", t.OriginalContractSum.String()},
		{"2. Net change by change orders", t.NetChangeByChangeOrders.String()},
		{"3. Contract sum to date", t.ContractSumToDate.String()},
		{"4. Total completed and stored", f.TotalCompletedAndStored.String()},
		{fmt.Sprintf("5a. Retainage %.2f%% of completed work", f.RetainagePercentage.Float()), r.RetainageOfCompletedWork.String()},
		{"5b. Retainage of stored material", r.RetainageOfStoredMaterial.String()},
		{"   Total retainage", r.TotalRetainage.String()},
		{"6. Total earned less retainage", r.TotalEarnedLessRetainage.String()},
		{"7. Less previous certificates", f.PreviousCertificates.String()},
		{"8. Current payment due", r.CurrentPaymentDue.String()},
		{"9. Balance to finish, incl. retainage", r.BalanceToFinish.String()},
	})
}
