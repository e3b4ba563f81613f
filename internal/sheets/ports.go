// Package sheets defines the spreadsheet ports used to export project
// summaries and to read budget rows for import.
package sheets

import (
	"context"

	"buildcost/internal/rollup"
)

// Ports for outbound adapters.
type (
	// ReportExporter writes a project summary to its own sheet and
	// returns a reference to the written range.
	ReportExporter interface {
		ExportReport(ctx context.Context, report rollup.ProjectReport) (sheetRef string, err error)
	}

	// RowReader returns the cells of a range as trimmed strings.
	RowReader interface {
		ReadRows(ctx context.Context, sheetRange string) ([][]string, error)
	}
)
