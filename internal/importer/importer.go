// Package importer turns spreadsheet rows into budget items.
package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"buildcost/internal/core"
	"buildcost/internal/sheets"
)

type column int

const (
	colCategory column = iota
	colNotes
	colOriginal
	colApprovedCO
	colCostType
	numColumns
)

// Header aliases, lower case. Matching ignores case and surrounding
// whitespace.
var aliases = map[string]column{
	"category":           colCategory,
	"budget category":    colCategory,
	"cost code":          colCategory,
	"trade":              colCategory,
	"notes":              colNotes,
	"description":        colNotes,
	"scope":              colNotes,
	"original":           colOriginal,
	"original budget":    colOriginal,
	"budget":             colOriginal,
	"amount":             colOriginal,
	"approved co":        colApprovedCO,
	"approved cos":       colApprovedCO,
	"approved co budget": colApprovedCO,
	"change orders":      colApprovedCO,
	"cost type":          colCostType,
	"type":               colCostType,
}

// positional is the layout assumed when no header row is found.
var positional = [numColumns]int{0, 1, 2, 3, -1}

// SkippedRow explains why a source row produced no item. Line is 1-based.
type SkippedRow struct {
	Line   int    `json:"line"`
	Reason string `json:"reason"`
}

type Result struct {
	Items   []core.BudgetItem `json:"items"`
	Skipped []SkippedRow      `json:"skipped"`
}

// ParseCSV reads budget rows from CSV input.
func ParseCSV(r io.Reader) (Result, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	rows, err := cr.ReadAll()
	if err != nil {
		return Result{}, fmt.Errorf("read csv: %w", err)
	}
	return ParseRows(rows), nil
}

// FromSheet reads budget rows from a spreadsheet range.
func FromSheet(ctx context.Context, reader sheets.RowReader, sheetRange string) (Result, error) {
	if reader == nil {
		return Result{}, errors.New("no spreadsheet reader configured")
	}
	rows, err := reader.ReadRows(ctx, sheetRange)
	if err != nil {
		return Result{}, err
	}
	return ParseRows(rows), nil
}

// ParseRows maps rows to items. The first row whose cells name a category
// column is taken as the header; without one, columns are read as
// category, notes, original budget, approved CO budget. Rows without a
// category, total rows and rows with unreadable amounts are skipped.
func ParseRows(rows [][]string) Result {
	res := Result{Items: []core.BudgetItem{}, Skipped: []SkippedRow{}}
	layout, start := positional, 0
	for i, row := range rows {
		if l, ok := headerLayout(row); ok {
			layout, start = l, i+1
			break
		}
	}

	for i := start; i < len(rows); i++ {
		row := rows[i]
		line := i + 1
		category := cell(row, layout[colCategory])
		if category == "" {
			if !blank(row) {
				res.Skipped = append(res.Skipped, SkippedRow{Line: line, Reason: "missing category"})
			}
			continue
		}
		if strings.EqualFold(category, "total") || strings.EqualFold(category, "grand total") {
			continue
		}
		original, err := ParseAmount(cell(row, layout[colOriginal]))
		if err != nil {
			res.Skipped = append(res.Skipped, SkippedRow{Line: line, Reason: "invalid original budget"})
			continue
		}
		approved, err := ParseAmount(cell(row, layout[colApprovedCO]))
		if err != nil {
			res.Skipped = append(res.Skipped, SkippedRow{Line: line, Reason: "invalid approved CO budget"})
			continue
		}
		notes := cell(row, layout[colNotes])
		costType := core.CostType(strings.ToLower(cell(row, layout[colCostType])))
		if !costType.Valid() {
			costType = InferCostType(notes)
		}
		res.Items = append(res.Items, core.BudgetItem{
			Category:         category,
			CostType:         costType,
			Notes:            notes,
			OriginalBudget:   original,
			ApprovedCOBudget: approved,
			ProjectedCost:    original.Add(approved),
		})
	}
	return res
}

func headerLayout(row []string) ([numColumns]int, bool) {
	var layout [numColumns]int
	for i := range layout {
		layout[i] = -1
	}
	for i, c := range row {
		col, ok := aliases[strings.ToLower(strings.TrimSpace(c))]
		if ok && layout[col] == -1 {
			layout[col] = i
		}
	}
	return layout, layout[colCategory] >= 0
}

// InferCostType reads labor or material keywords from notes. Both or
// neither give CostBoth.
func InferCostType(notes string) core.CostType {
	n := strings.ToLower(notes)
	labor := strings.Contains(n, "labor") || strings.Contains(n, "labour") || strings.Contains(n, "install")
	material := strings.Contains(n, "material") || strings.Contains(n, "supply")
	switch {
	case labor && !material:
		return core.CostLabor
	case material && !labor:
		return core.CostMaterial
	}
	return core.CostBoth
}

// ParseAmount reads a signed currency amount such as "$1,250.00",
// "(300)" or "-12,5". Empty input is zero.
func ParseAmount(s string) (core.Money, error) {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, "$", "")
	s = strings.ReplaceAll(s, " ", "")
	if s == "" || s == "-" {
		return core.Money{}, nil
	}
	s = normalizeSeparators(s)
	cents, err := core.ParseSignedDecimalToCents(s)
	if err != nil {
		return core.Money{}, err
	}
	return core.Cents(cents), nil
}

// normalizeSeparators drops thousands separators and leaves a single
// decimal separator. With both '.' and ',' present the later one is the
// decimal separator ("1,234.56" and "1.234,56"). A lone comma followed by
// one or two digits is a decimal comma. Repeated dots are thousands only
// when every group has three digits.
func normalizeSeparators(s string) string {
	dot, comma := strings.LastIndex(s, "."), strings.LastIndex(s, ",")
	switch {
	case dot >= 0 && comma > dot:
		s = strings.ReplaceAll(s, ".", "")
		return strings.Replace(s, ",", ".", 1)
	case dot >= 0 && comma >= 0:
		return strings.ReplaceAll(s, ",", "")
	case dot >= 0:
		if strings.Count(s, ".") > 1 && thousandsGroups(s, ".") {
			return strings.ReplaceAll(s, ".", "")
		}
		return s
	}
	if strings.Count(s, ",") == 1 {
		frac := strings.TrimRight(s[comma+1:], ")")
		if len(frac) <= 2 {
			return s
		}
	}
	return strings.ReplaceAll(s, ",", "")
}

func thousandsGroups(s, sep string) bool {
	parts := strings.Split(strings.TrimRight(s, ")"), sep)
	for _, p := range parts[1:] {
		if len(p) != 3 {
			return false
		}
	}
	return true
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
