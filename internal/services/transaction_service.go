// Package services wires the local store to the change-event stream.
package services

import (
	"context"

	"finpulse/internal/amqp"
	"finpulse/internal/core"
	"finpulse/internal/log"
	"finpulse/internal/storage"
)

// Publisher is the slice of the AMQP client the service needs.
type Publisher interface {
	PublishTransactionEvent(ctx context.Context, id, event string) error
	Close() error
}

// TransactionService persists transactions locally and announces changes
// on the event stream. The store write is authoritative; a publish
// failure is logged and the worker's periodic sweep picks the row up
// later.
type TransactionService struct {
	repo      *storage.Repository
	publisher Publisher
	logger    *log.Logger
}

func NewTransactionService(repo *storage.Repository, publisher Publisher, logger *log.Logger) *TransactionService {
	return &TransactionService{
		repo:      repo,
		publisher: publisher,
		logger:    logger.WithComponent(log.ComponentTxn),
	}
}

func (s *TransactionService) ListTransactions(ctx context.Context, filter core.TransactionFilter) ([]core.Transaction, error) {
	return s.repo.ListTransactions(ctx, filter)
}

func (s *TransactionService) GetTransaction(ctx context.Context, id string) (core.Transaction, error) {
	return s.repo.GetTransaction(ctx, id)
}

func (s *TransactionService) CreateTransaction(ctx context.Context, tx core.Transaction) (core.Transaction, error) {
	created, err := s.repo.CreateTransaction(ctx, tx)
	if err != nil {
		return core.Transaction{}, err
	}
	s.publish(ctx, created.ID, amqp.EventCreated)
	return created, nil
}

func (s *TransactionService) UpdateTransaction(ctx context.Context, tx core.Transaction) (core.Transaction, error) {
	updated, err := s.repo.UpdateTransaction(ctx, tx)
	if err != nil {
		return core.Transaction{}, err
	}
	s.publish(ctx, updated.ID, amqp.EventUpdated)
	return updated, nil
}

func (s *TransactionService) DeleteTransaction(ctx context.Context, id string) error {
	if err := s.repo.DeleteTransaction(ctx, id); err != nil {
		return err
	}
	s.publish(ctx, id, amqp.EventDeleted)
	return nil
}

func (s *TransactionService) ListBudgets(ctx context.Context, month core.Date) ([]core.Budget, error) {
	return s.repo.ListBudgets(ctx, month)
}

func (s *TransactionService) CreateBudget(ctx context.Context, b core.Budget) (core.Budget, error) {
	return s.repo.CreateBudget(ctx, b)
}

func (s *TransactionService) UpdateBudget(ctx context.Context, b core.Budget) (core.Budget, error) {
	return s.repo.UpdateBudget(ctx, b)
}

func (s *TransactionService) DeleteBudget(ctx context.Context, id string) error {
	return s.repo.DeleteBudget(ctx, id)
}

func (s *TransactionService) publish(ctx context.Context, id, event string) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishTransactionEvent(ctx, id, event); err != nil {
		s.logger.WarnContext(ctx, "Failed to publish transaction event",
			log.NewFields().WithOperation(event).WithError(err).ToSlice()...)
		s.logger.DebugContext(ctx, "Export will fall back to the periodic sweep", log.FieldTxnID, id)
	}
}

func (s *TransactionService) Close() error {
	var firstErr error
	if s.publisher != nil {
		if err := s.publisher.Close(); err != nil {
			firstErr = err
		}
	}
	if err := s.repo.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}
