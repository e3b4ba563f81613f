package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"buildcost/internal/amqp"
	applog "buildcost/internal/log"
	"buildcost/internal/services"
	"buildcost/internal/store"
)

// Exporter writes project reports. services.ExportService implements it.
type Exporter interface {
	ExportProject(ctx context.Context, projectID string) (string, error)
	ExportActive(ctx context.Context) (int, error)
}

var _ Exporter = (*services.ExportService)(nil)

// ExportWorker turns record change events into sheet exports.
type ExportWorker struct {
	exports Exporter
	now     func() time.Time

	mu sync.Mutex
	// snapshotAt holds, per project, when the last successful export
	// started reading. Changes older than that are already on the sheet.
	snapshotAt map[string]int64
}

func NewExportWorker(exports Exporter) *ExportWorker {
	return &ExportWorker{
		exports:    exports,
		now:        time.Now,
		snapshotAt: make(map[string]int64),
	}
}

// HandleRecordChanged processes a single change message from AMQP.
// Returning an error requeues the message.
func (w *ExportWorker) HandleRecordChanged(ctx context.Context, msg *amqp.RecordChangedMessage) error {
	slog.DebugContext(ctx, "Processing record change",
		applog.FieldCollection, msg.Collection,
		applog.FieldRecordID, msg.ID,
		applog.FieldOperation, msg.Operation,
		"version", msg.Version)

	switch {
	case msg.Collection == "budget_categories":
		// The master list feeds every project's summary.
		_, err := w.exports.ExportActive(ctx)
		return err
	case msg.ProjectID == "":
		return nil
	}

	if msg.Operation != amqp.OpExport && w.alreadyExported(msg.ProjectID, msg.Version) {
		slog.DebugContext(ctx, "Skipping change already covered by a later export",
			applog.FieldProjectID, msg.ProjectID,
			"version", msg.Version)
		return nil
	}

	return w.export(ctx, msg.ProjectID)
}

func (w *ExportWorker) export(ctx context.Context, projectID string) error {
	started := w.now().UnixNano()
	ref, err := w.exports.ExportProject(ctx, projectID)
	if errors.Is(err, store.ErrNotFound) {
		slog.InfoContext(ctx, "Project no longer exists, nothing to export",
			applog.FieldProjectID, projectID)
		w.forget(projectID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("export project %s: %w", projectID, err)
	}

	w.mu.Lock()
	if started > w.snapshotAt[projectID] {
		w.snapshotAt[projectID] = started
	}
	w.mu.Unlock()

	slog.InfoContext(ctx, "Project exported",
		applog.FieldProjectID, projectID,
		applog.FieldSheetsRef, ref)
	return nil
}

func (w *ExportWorker) alreadyExported(projectID string, version int64) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	at, ok := w.snapshotAt[projectID]
	return ok && version > 0 && version < at
}

func (w *ExportWorker) forget(projectID string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.snapshotAt, projectID)
}
