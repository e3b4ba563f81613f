package worker

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"buildcost/internal/amqp"
	"buildcost/internal/store"
)

type fakeExporter struct {
	exported []string
	sweeps   int
	err      error
}

func (f *fakeExporter) ExportProject(_ context.Context, projectID string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.exported = append(f.exported, projectID)
	return "mem:" + projectID, nil
}

func (f *fakeExporter) ExportActive(context.Context) (int, error) {
	f.sweeps++
	return 0, nil
}

func newTestWorker(exp Exporter, clock *int64) *ExportWorker {
	w := NewExportWorker(exp)
	w.now = func() time.Time { return time.Unix(0, *clock) }
	return w
}

func msg(collection, op, projectID string, version int64) *amqp.RecordChangedMessage {
	return &amqp.RecordChangedMessage{Collection: collection, Operation: op, ID: "r1", ProjectID: projectID, Version: version}
}

func TestHandleRecordChanged_SkipsStaleVersions(t *testing.T) {
	exp := &fakeExporter{}
	clock := int64(1000)
	w := newTestWorker(exp, &clock)
	ctx := context.Background()

	if err := w.HandleRecordChanged(ctx, msg("expenses", amqp.OpUpsert, "p1", 900)); err != nil {
		t.Fatalf("handle: %v", err)
	}
	// Written before the export above started reading.
	if err := w.HandleRecordChanged(ctx, msg("expenses", amqp.OpUpsert, "p1", 950)); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if len(exp.exported) != 1 {
		t.Fatalf("exports = %v, want one", exp.exported)
	}

	clock = 2000
	if err := w.HandleRecordChanged(ctx, msg("expenses", amqp.OpDelete, "p1", 1500)); err != nil {
		t.Fatalf("handle: %v", err)
	}
	// Explicit export requests always run.
	if err := w.HandleRecordChanged(ctx, msg("projects", amqp.OpExport, "p1", 10)); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if len(exp.exported) != 3 {
		t.Errorf("exports = %v, want three", exp.exported)
	}
}

func TestHandleRecordChanged_Routing(t *testing.T) {
	exp := &fakeExporter{}
	clock := int64(1)
	w := newTestWorker(exp, &clock)
	ctx := context.Background()

	if err := w.HandleRecordChanged(ctx, msg("vendors", amqp.OpUpsert, "", 5)); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if err := w.HandleRecordChanged(ctx, msg("budget_categories", amqp.OpUpsert, "", 5)); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if len(exp.exported) != 0 || exp.sweeps != 1 {
		t.Errorf("exported = %v, sweeps = %d", exp.exported, exp.sweeps)
	}
}

func TestHandleRecordChanged_Errors(t *testing.T) {
	ctx := context.Background()
	clock := int64(1)

	gone := &fakeExporter{err: fmt.Errorf("get project: %w", store.ErrNotFound)}
	if err := newTestWorker(gone, &clock).HandleRecordChanged(ctx, msg("projects", amqp.OpDelete, "p1", 1)); err != nil {
		t.Errorf("deleted project should be acknowledged, got %v", err)
	}

	failing := &fakeExporter{err: errors.New("quota exceeded")}
	if err := newTestWorker(failing, &clock).HandleRecordChanged(ctx, msg("tasks", amqp.OpUpsert, "p1", 1)); err == nil {
		t.Error("export failure should be returned for requeue")
	}
}
