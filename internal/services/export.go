package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	applog "buildcost/internal/log"
	"buildcost/internal/sheets"
)

// ExportService writes project reports to spreadsheets.
type ExportService struct {
	budget      *BudgetService
	exporter    sheets.ReportExporter
	concurrency int
}

func NewExportService(budget *BudgetService, exporter sheets.ReportExporter) *ExportService {
	return &ExportService{budget: budget, exporter: exporter, concurrency: 1}
}

// WithConcurrency sets how many projects ExportActive exports at once.
func (s *ExportService) WithConcurrency(n int) *ExportService {
	if n > 0 {
		s.concurrency = n
	}
	return s
}

// ExportProject recomputes and writes one project's report.
func (s *ExportService) ExportProject(ctx context.Context, projectID string) (string, error) {
	report, err := s.budget.Report(ctx, projectID)
	if err != nil {
		return "", err
	}
	ref, err := s.exporter.ExportReport(ctx, report)
	if err != nil {
		return "", fmt.Errorf("export project %s: %w", projectID, err)
	}
	return ref, nil
}

// ExportActive exports every project that is not completed. It keeps
// going past individual failures and returns them joined.
func (s *ExportService) ExportActive(ctx context.Context) (int, error) {
	projects, err := s.budget.ActiveProjects(ctx)
	if err != nil {
		return 0, err
	}
	var (
		mu       sync.Mutex
		exported int
		errs     []error
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for _, p := range projects {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			ref, err := s.ExportProject(gctx, p.ID)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				slog.ErrorContext(ctx, "Project export failed",
					applog.FieldProjectID, p.ID,
					applog.FieldError, err)
				errs = append(errs, err)
				return nil
			}
			slog.DebugContext(ctx, "Project exported",
				applog.FieldProjectID, p.ID,
				applog.FieldSheetsRef, ref)
			exported++
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		errs = append(errs, err)
	}
	return exported, errors.Join(errs...)
}
