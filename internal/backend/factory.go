package backend

import (
	"context"
	"fmt"
	"time"

	"finpulse/internal/amqp"
	"finpulse/internal/api"
	"finpulse/internal/log"
	"finpulse/internal/memory"
	"finpulse/internal/services"
	"finpulse/internal/storage"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *log.Logger
	tokens api.TokenSource
}

// NewFactory creates a backend factory. tokens may be nil; only the api
// backend uses it.
func NewFactory(logger *log.Logger, tokens api.TokenSource) Factory {
	return &DefaultFactory{
		logger: logger.WithComponent(log.ComponentBackend),
		tokens: tokens,
	}
}

// CreateBackend implements Factory.CreateBackend
func (f *DefaultFactory) CreateBackend(ctx context.Context, cfg Config) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	switch cfg.Type {
	case APIBackend:
		return f.createAPIBackend(cfg)
	case SQLiteBackend:
		return f.createSQLiteBackend(cfg)
	case MemoryBackend:
		return f.createMemoryBackend()
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", cfg.Type)
	}
}

func (f *DefaultFactory) createAPIBackend(cfg Config) (*Result, error) {
	client := api.NewClient(cfg.APIBaseURL, 10*time.Second, f.tokens, f.logger)

	f.logger.Info("Initialized api backend", "base_url", cfg.APIBaseURL)
	return &Result{Backend: client}, nil
}

func (f *DefaultFactory) createSQLiteBackend(cfg Config) (*Result, error) {
	repo, err := storage.NewRepository(cfg.SQLiteDBPath)
	if err != nil {
		return nil, fmt.Errorf("initialize sqlite repository: %w", err)
	}

	// AMQP is optional: without it the export queue drains only through
	// the worker's periodic sweep.
	var publisher services.Publisher
	if cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			f.logger.Warn("Failed to initialize AMQP client, continuing without change events",
				log.NewFields().WithError(err).ToSlice()...)
		} else {
			publisher = client
			f.logger.Info("Initialized AMQP client",
				"exchange", cfg.AMQPExchange,
				"queue", cfg.AMQPQueue)
		}
	}

	svc := services.NewTransactionService(repo, publisher, f.logger)

	f.logger.Info("Initialized sqlite backend",
		"db_path", cfg.SQLiteDBPath,
		"amqp_enabled", publisher != nil)

	return &Result{Backend: svc, Cleanup: svc.Close}, nil
}

func (f *DefaultFactory) createMemoryBackend() (*Result, error) {
	f.logger.Info("Initialized memory backend")
	return &Result{Backend: memory.NewStore()}, nil
}
