package memory

import (
	"context"
	"fmt"
	"sync"

	"buildcost/internal/rollup"
	ports "buildcost/internal/sheets"
)

// Sheets keeps exported reports in memory. It stands in for Google
// Sheets when no spreadsheet is configured.
type Sheets struct {
	mu      sync.Mutex
	suffix  string
	written map[string][][]any
	ranges  map[string][][]string
	exports int
}

var (
	_ ports.ReportExporter = (*Sheets)(nil)
	_ ports.RowReader      = (*Sheets)(nil)
)

func New(suffix string) *Sheets {
	return &Sheets{
		suffix:  suffix,
		written: map[string][][]any{},
		ranges:  map[string][][]string{},
	}
}

// ExportReport stores the laid out rows under the sheet title.
func (s *Sheets) ExportReport(_ context.Context, report rollup.ProjectReport) (string, error) {
	title := ports.SheetTitle(report, s.suffix)
	rows := ports.ReportRows(report)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.written[title] = rows
	s.exports++
	return fmt.Sprintf("mem:%s!A1:G%d", title, len(rows)), nil
}

// SetRange preloads the rows returned by ReadRows for a range.
func (s *Sheets) SetRange(sheetRange string, rows [][]string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ranges[sheetRange] = rows
}

func (s *Sheets) ReadRows(_ context.Context, sheetRange string) ([][]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rows, ok := s.ranges[sheetRange]
	if !ok {
		return nil, fmt.Errorf("range %q not found", sheetRange)
	}
	return append([][]string(nil), rows...), nil
}

// Sheet returns the rows last written to a sheet.
func (s *Sheets) Sheet(title string) ([][]any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rows, ok := s.written[title]
	return rows, ok
}

// Exports counts ExportReport calls.
func (s *Sheets) Exports() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.exports
}
