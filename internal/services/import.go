package services

import (
	"context"
	"fmt"

	"buildcost/internal/core"
	"buildcost/internal/importer"
)

// ImportResult reports the saved items and the rows that were skipped.
type ImportResult struct {
	Saved   []core.BudgetItem     `json:"saved"`
	Skipped []importer.SkippedRow `json:"skipped"`
	Removed int                   `json:"removed"`
}

// ImportBudgetItems attaches parsed items to a project and saves them.
// With replace set, the project's existing budget items are deleted first.
func (s *RecordService) ImportBudgetItems(ctx context.Context, projectID string, parsed importer.Result, replace bool) (ImportResult, error) {
	if _, err := s.store.Projects().Get(ctx, projectID); err != nil {
		return ImportResult{}, err
	}
	res := ImportResult{Saved: make([]core.BudgetItem, 0, len(parsed.Items)), Skipped: parsed.Skipped}

	if replace {
		existing, err := s.store.BudgetItems().ListByProject(ctx, projectID)
		if err != nil {
			return res, err
		}
		for _, item := range existing {
			if err := Delete(ctx, s, BudgetItems, item.ID); err != nil {
				return res, fmt.Errorf("remove budget item %s: %w", item.ID, err)
			}
			res.Removed++
		}
	}

	for _, item := range parsed.Items {
		item.ID = ""
		item.ProjectID = projectID
		saved, err := Save(ctx, s, BudgetItems, item)
		if err != nil {
			return res, fmt.Errorf("import %q: %w", item.Category, err)
		}
		res.Saved = append(res.Saved, saved)
	}
	return res, nil
}
