package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"buildcost/internal/rollup"
)

func newTable(out io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(out, 0, 0, 2, ' ', tabwriter.AlignRight)
}

// writeCategoryTable prints category rows followed by their total. The
// last column flags committed cost above the projection.
func writeCategoryTable(out io.Writer, rows []rollup.CategoryTotals, total *rollup.CategoryTotals) error {
	w := newTable(out)
	fmt.Fprintln(w, "Category\tOriginal\tApproved CO\tRevised\tCommitted\tProjected\t\t")
	line := func(c rollup.CategoryTotals) {
		flag := ""
		if c.Overrun() {
			flag = "over"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t\n", c.Category,
			c.OriginalBudget, c.ApprovedCOBudget, c.RevisedBudget, c.CommittedCost, c.ProjectedCost, flag)
	}
	for _, c := range rows {
		line(c)
	}
	if total != nil {
		line(*total)
	}
	return w.Flush()
}

// writePairs prints label/value lines.
func writePairs(out io.Writer, pairs [][2]string) error {
	w := newTable(out)
	for _, p := range pairs {
		fmt.Fprintf(w, "  %s\t%s\t\n", p[0], p[1])
	}
	return w.Flush()
}
