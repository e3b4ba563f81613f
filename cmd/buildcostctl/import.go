package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"buildcost/internal/cli"
	"buildcost/internal/importer"
	"buildcost/internal/services"
)

var (
	flagReplace bool
	flagRange   string
)

var importCmd = &cobra.Command{
	Use:   "import <project-id> [file.csv|-]",
	Short: "Import budget items from CSV or a Google Sheets range",
	Long: "Import budget items into a project. Rows are read from a CSV file, from stdin with '-', " +
		"or from a spreadsheet range with --range when Google Sheets is configured.",
	Args: cobra.RangeArgs(1, 2),
	RunE: runImport,
}

func init() {
	importCmd.Flags().BoolVar(&flagReplace, "replace", false, "Delete the project's existing budget items first")
	importCmd.Flags().StringVar(&flagRange, "range", "", "Spreadsheet range, e.g. 'Estimate!A1:E200'")
	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	projectID := args[0]

	var (
		parsed importer.Result
		err    error
	)
	switch {
	case flagRange != "":
		_, rows := cli.InitSheets(ctx, slog.Default(), cfg)
		if rows == nil {
			return errors.New("--range needs GOOGLE_SPREADSHEET_ID and service account credentials")
		}
		parsed, err = importer.FromSheet(ctx, rows, flagRange)
	case len(args) == 2:
		parsed, err = parseCSVFile(args[1])
	default:
		return errors.New("give a CSV file, '-' for stdin, or --range")
	}
	if err != nil {
		return err
	}

	be, err := openBackend(ctx, true)
	if err != nil {
		return err
	}
	defer closeBackend(be)

	res, err := be.Records.ImportBudgetItems(ctx, projectID, parsed, flagReplace)
	if err != nil {
		return err
	}
	return printImportResult(os.Stdout, res)
}

func parseCSVFile(path string) (importer.Result, error) {
	var r io.Reader = os.Stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return importer.Result{}, err
		}
		defer f.Close()
		r = f
	}
	return importer.ParseCSV(r)
}

func printImportResult(out io.Writer, res services.ImportResult) error {
	if res.Removed > 0 {
		fmt.Fprintf(out, "  Removed %d existing items.\n", res.Removed)
	}
	fmt.Fprintf(out, "  Imported %d items, skipped %d rows.\n\n", len(res.Saved), len(res.Skipped))
	w := newTable(out)
	if len(res.Saved) > 0 {
		fmt.Fprintln(w, "Category\tCost type\tOriginal\tApproved CO\t")
		for _, it := range res.Saved {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t\n", it.Category, it.CostType, it.OriginalBudget, it.ApprovedCOBudget)
		}
	}
	for _, s := range res.Skipped {
		fmt.Fprintf(w, "line %d\tskipped: %s\t\t\t\n", s.Line, s.Reason)
	}
	return w.Flush()
}
