package backend

import (
	"context"
	"fmt"
	"log/slog"

	"buildcost/internal/amqp"
	"buildcost/internal/services"
	"buildcost/internal/storage"
	"buildcost/internal/store"
	"buildcost/internal/store/memory"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *slog.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *slog.Logger) Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &DefaultFactory{
		logger: logger,
	}
}

// CreateBackend implements Factory.CreateBackend
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	st, err := f.openStore(config)
	if err != nil {
		return nil, err
	}
	if err := st.Ping(ctx); err != nil {
		_ = st.Close()
		return nil, fmt.Errorf("ping %s store: %w", config.Type, err)
	}

	amqpClient := f.connectAMQP(config)

	// A nil *amqp.Client must not become a non-nil interface value.
	var publisher services.EventPublisher
	if amqpClient != nil {
		publisher = amqpClient
	}
	records := services.NewRecordService(st, publisher)

	f.logger.Info("Initialized backend",
		"backend", config.Type.String(),
		"amqp_enabled", amqpClient != nil)

	return &BackendResult{
		Store:   st,
		Records: records,
		AMQP:    amqpClient,
		Cleanup: records.Close,
	}, nil
}

func (f *DefaultFactory) openStore(config Config) (store.Store, error) {
	switch config.Type {
	case SQLiteBackend:
		repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
		}
		f.logger.Info("Opened SQLite store", "db_path", config.SQLiteDBPath)
		return repo, nil
	case PostgresBackend:
		repo, err := storage.NewPostgresRepository(config.DatabaseURL, config.DatabaseMaxRetries)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize Postgres repository: %w", err)
		}
		f.logger.Info("Opened Postgres store")
		return repo, nil
	case MemoryBackend:
		f.logger.Info("Opened memory store", "data_directory", config.DataDirectory)
		return memory.NewFromFiles(config.DataDirectory), nil
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}

// connectAMQP returns nil when AMQP is not configured or unreachable;
// records are still saved without change events.
func (f *DefaultFactory) connectAMQP(config Config) *amqp.Client {
	if config.AMQPURL == "" {
		return nil
	}
	client, err := amqp.NewClient(config.AMQPURL, config.AMQPExchange, config.AMQPQueue)
	if err != nil {
		f.logger.Warn("Failed to initialize AMQP client, continuing without change events", "error", err)
		return nil
	}
	f.logger.Info("Initialized AMQP client",
		"exchange", config.AMQPExchange,
		"queue", config.AMQPQueue)
	return client
}
