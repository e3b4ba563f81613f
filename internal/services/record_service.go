package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"buildcost/internal/amqp"
	"buildcost/internal/core"
	applog "buildcost/internal/log"
	"buildcost/internal/store"
)

// EventPublisher announces record changes to downstream consumers.
type EventPublisher interface {
	PublishRecordChanged(ctx context.Context, msg *amqp.RecordChangedMessage) error
	Close() error
}

// RecordService orchestrates record writes across the store and AMQP.
type RecordService struct {
	store     store.Store
	publisher EventPublisher
}

// NewRecordService wires a store with an optional publisher.
func NewRecordService(st store.Store, publisher EventPublisher) *RecordService {
	return &RecordService{store: st, publisher: publisher}
}

// Store exposes the underlying store for read paths.
func (s *RecordService) Store() store.Store {
	return s.store
}

// Validatable is a record that knows how to check itself.
type Validatable interface {
	core.Record
	Validate() error
}

// ProjectLister lists the records one project owns.
type ProjectLister[T any] interface {
	ListByProject(ctx context.Context, projectID string) ([]T, error)
}

// Kind binds a record type to its collection and save-time rules.
type Kind[T Validatable] struct {
	Name       string
	Collection func(store.Store) store.Collection[T]
	// ByProject is nil for collections not owned by a project.
	ByProject func(store.Store) ProjectLister[T]
	Normalize func(T) T
	// Check runs after validation against the current store contents.
	Check func(ctx context.Context, st store.Store, rec T) error
}

// Save normalizes, validates and upserts rec, then announces the change.
// A publish failure is logged and does not fail the save.
func Save[T Validatable](ctx context.Context, s *RecordService, k Kind[T], rec T) (T, error) {
	if k.Normalize != nil {
		rec = k.Normalize(rec)
	}
	if err := rec.Validate(); err != nil {
		return rec, err
	}
	if k.Check != nil {
		if err := k.Check(ctx, s.store, rec); err != nil {
			return rec, err
		}
	}
	if err := k.Collection(s.store).Upsert(ctx, rec); err != nil {
		return rec, fmt.Errorf("save %s: %w", k.Name, err)
	}
	s.publish(ctx, amqp.NewRecordChangedMessage(k.Name, amqp.OpUpsert, rec.RecordID(), projectOf(rec)))
	return rec, nil
}

// Delete removes a record by id and announces the change.
func Delete[T Validatable](ctx context.Context, s *RecordService, k Kind[T], id string) error {
	coll := k.Collection(s.store)
	rec, err := coll.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := coll.Delete(ctx, id); err != nil {
		return err
	}
	s.publish(ctx, amqp.NewRecordChangedMessage(k.Name, amqp.OpDelete, id, projectOf(rec)))
	return nil
}

func Get[T Validatable](ctx context.Context, s *RecordService, k Kind[T], id string) (T, error) {
	return k.Collection(s.store).Get(ctx, id)
}

func List[T Validatable](ctx context.Context, s *RecordService, k Kind[T]) ([]T, error) {
	return k.Collection(s.store).List(ctx)
}

// ListByProject lists the records of one project. It fails for
// collections that are not project scoped.
func ListByProject[T Validatable](ctx context.Context, s *RecordService, k Kind[T], projectID string) ([]T, error) {
	if k.ByProject == nil {
		return nil, fmt.Errorf("%s are not project scoped", k.Name)
	}
	return k.ByProject(s.store).ListByProject(ctx, projectID)
}

// RequestExport asks the worker to re-export a project.
func (s *RecordService) RequestExport(ctx context.Context, projectID string) error {
	if _, err := s.store.Projects().Get(ctx, projectID); err != nil {
		return err
	}
	if s.publisher == nil {
		return ErrPublisherUnavailable
	}
	return s.publisher.PublishRecordChanged(ctx, amqp.NewExportRequest(projectID))
}

// ErrPublisherUnavailable is returned when an operation needs AMQP and
// none is configured.
var ErrPublisherUnavailable = errors.New("event publisher not configured")

func (s *RecordService) publish(ctx context.Context, msg *amqp.RecordChangedMessage) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishRecordChanged(ctx, msg); err != nil {
		slog.ErrorContext(ctx, "Failed to publish record change",
			applog.FieldCollection, msg.Collection,
			applog.FieldRecordID, msg.ID,
			applog.FieldError, err)
	}
}

// Close closes both store and AMQP connections
func (s *RecordService) Close() error {
	var errs []error

	if s.store != nil {
		if err := s.store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("store: %w", err))
		}
	}

	if s.publisher != nil {
		if err := s.publisher.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close record service: %w", errors.Join(errs...))
	}

	return nil
}

func projectOf(rec core.Record) string {
	switch r := rec.(type) {
	case core.ProjectRecord:
		return r.ProjectRef()
	case core.Project:
		return r.ID
	}
	return ""
}

func ensureID(id string) string {
	if id = strings.TrimSpace(id); id == "" {
		return core.NewID()
	}
	return id
}
