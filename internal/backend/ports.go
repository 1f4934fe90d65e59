// Package backend defines the data-backend ports and the factory that
// builds a concrete backend from configuration. Three backends exist:
// the upstream REST API (the normal deployment), a local SQLite store
// and an in-memory store for tests and development.
package backend

import (
	"context"

	"finpulse/internal/core"
)

// TransactionStore is the transaction side of a backend.
type TransactionStore interface {
	ListTransactions(ctx context.Context, filter core.TransactionFilter) ([]core.Transaction, error)
	GetTransaction(ctx context.Context, id string) (core.Transaction, error)
	CreateTransaction(ctx context.Context, tx core.Transaction) (core.Transaction, error)
	UpdateTransaction(ctx context.Context, tx core.Transaction) (core.Transaction, error)
	DeleteTransaction(ctx context.Context, id string) error
}

// BudgetStore is the budget side of a backend.
type BudgetStore interface {
	ListBudgets(ctx context.Context, month core.Date) ([]core.Budget, error)
	CreateBudget(ctx context.Context, b core.Budget) (core.Budget, error)
	UpdateBudget(ctx context.Context, b core.Budget) (core.Budget, error)
	DeleteBudget(ctx context.Context, id string) error
}

// Backend is the full data surface the HTTP layer works against.
type Backend interface {
	TransactionStore
	BudgetStore
}

// CleanupFunc releases backend resources at shutdown.
type CleanupFunc func() error

// Result carries a built backend and its optional cleanup.
type Result struct {
	Backend Backend
	Cleanup CleanupFunc
}

// Factory builds backends from configuration.
type Factory interface {
	CreateBackend(ctx context.Context, cfg Config) (*Result, error)
}
