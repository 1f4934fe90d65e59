// Package storage is the local SQLite backend. It doubles as the export
// queue: every transaction row carries an export state the worker drains
// into the spreadsheet backup.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"finpulse/internal/core"

	_ "modernc.org/sqlite"
)

// Export states a transaction row can be in.
const (
	ExportPending = "pending"
	ExportDone    = "exported"
	ExportError   = "error"
)

const transactionColumns = "id, date, amount_paise, is_income, category, description, merchant"

// Repository is the SQLite-backed transaction and budget store.
type Repository struct {
	db *sql.DB
}

// NewRepository opens (and if needed creates) the database at dbPath and
// runs pending migrations.
func NewRepository(dbPath string) (*Repository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Repository{db: db}, nil
}

func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func scanTransaction(row interface{ Scan(...any) error }) (core.Transaction, error) {
	var (
		tx       core.Transaction
		date     string
		paise    int64
		isIncome int64
	)
	if err := row.Scan(&tx.ID, &date, &paise, &isIncome, &tx.Category, &tx.Description, &tx.Merchant); err != nil {
		return core.Transaction{}, err
	}
	d, err := core.ParseDate(date)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("stored date %q: %w", date, err)
	}
	tx.Date = d
	tx.Amount = core.NewMoney(paise)
	tx.IsIncome = isIncome != 0
	return tx, nil
}

// ListTransactions returns transactions matching the filter, newest first.
func (r *Repository) ListTransactions(ctx context.Context, filter core.TransactionFilter) ([]core.Transaction, error) {
	var (
		where []string
		args  []any
	)
	if !filter.From.IsZero() {
		where = append(where, "date >= ?")
		args = append(args, filter.From.ISO())
	}
	if !filter.To.IsZero() {
		where = append(where, "date <= ?")
		args = append(args, filter.To.ISO())
	}
	if filter.Category != "" {
		where = append(where, "category = ?")
		args = append(args, filter.Category)
	}
	if filter.Income != nil {
		where = append(where, "is_income = ?")
		args = append(args, boolToInt(*filter.Income))
	}
	if filter.MinPaise > 0 {
		where = append(where, "amount_paise >= ?")
		args = append(args, filter.MinPaise)
	}
	if filter.MaxPaise > 0 {
		where = append(where, "amount_paise <= ?")
		args = append(args, filter.MaxPaise)
	}
	if filter.Search != "" {
		where = append(where, "(description LIKE ? OR merchant LIKE ?)")
		pattern := "%" + filter.Search + "%"
		args = append(args, pattern, pattern)
	}

	query := "SELECT " + transactionColumns + " FROM transactions"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY date DESC, created_at DESC"
	// SQLite needs a LIMIT clause before OFFSET; -1 means unbounded.
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
	} else if filter.Offset > 0 {
		query += " LIMIT -1"
	}
	if filter.Offset > 0 {
		query += fmt.Sprintf(" OFFSET %d", filter.Offset)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		out = append(out, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return out, nil
}

func (r *Repository) GetTransaction(ctx context.Context, id string) (core.Transaction, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+transactionColumns+" FROM transactions WHERE id = ?", id)
	tx, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, fmt.Errorf("transaction %s: %w", id, core.ErrNotFound)
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("get transaction: %w", err)
	}
	return tx, nil
}

// CreateTransaction inserts the transaction, assigning an ID when empty.
// The row starts in the pending export state.
func (r *Repository) CreateTransaction(ctx context.Context, tx core.Transaction) (core.Transaction, error) {
	if err := tx.Validate(); err != nil {
		return core.Transaction{}, err
	}
	if tx.ID == "" {
		tx.ID = uuid.NewString()
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO transactions (id, date, amount_paise, is_income, category, description, merchant, export_state)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		tx.ID, tx.Date.ISO(), tx.Amount.Paise, boolToInt(tx.IsIncome),
		tx.Category, tx.Description, tx.Merchant, ExportPending)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("create transaction: %w", err)
	}
	return tx, nil
}

// UpdateTransaction rewrites the row and requeues it for export.
func (r *Repository) UpdateTransaction(ctx context.Context, tx core.Transaction) (core.Transaction, error) {
	if err := tx.Validate(); err != nil {
		return core.Transaction{}, err
	}

	res, err := r.db.ExecContext(ctx,
		`UPDATE transactions
		 SET date = ?, amount_paise = ?, is_income = ?, category = ?, description = ?, merchant = ?,
		     export_state = ?, exported_at = NULL
		 WHERE id = ?`,
		tx.Date.ISO(), tx.Amount.Paise, boolToInt(tx.IsIncome),
		tx.Category, tx.Description, tx.Merchant, ExportPending, tx.ID)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("update transaction: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.Transaction{}, fmt.Errorf("transaction %s: %w", tx.ID, core.ErrNotFound)
	}
	return tx, nil
}

func (r *Repository) DeleteTransaction(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM transactions WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("transaction %s: %w", id, core.ErrNotFound)
	}
	return nil
}

// PendingExports returns transactions waiting for the spreadsheet backup,
// oldest first. Rows whose last append failed are included; the sweep is
// their retry path.
func (r *Repository) PendingExports(ctx context.Context, limit int) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+transactionColumns+` FROM transactions
		 WHERE export_state IN (?, ?) ORDER BY created_at ASC LIMIT ?`,
		ExportPending, ExportError, limit)
	if err != nil {
		return nil, fmt.Errorf("pending exports: %w", err)
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan pending export: %w", err)
		}
		out = append(out, tx)
	}
	return out, rows.Err()
}

// MarkExported records a successful spreadsheet append.
func (r *Repository) MarkExported(ctx context.Context, id string) error {
	return r.setExportState(ctx, id, ExportDone, time.Now().UTC())
}

// MarkExportError flags the row for the periodic sweep to retry.
func (r *Repository) MarkExportError(ctx context.Context, id string) error {
	return r.setExportState(ctx, id, ExportError, time.Time{})
}

func (r *Repository) setExportState(ctx context.Context, id, state string, at time.Time) error {
	var exportedAt any
	if !at.IsZero() {
		exportedAt = at.Format(time.RFC3339)
	}
	res, err := r.db.ExecContext(ctx,
		"UPDATE transactions SET export_state = ?, exported_at = ? WHERE id = ?",
		state, exportedAt, id)
	if err != nil {
		return fmt.Errorf("set export state: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("transaction %s: %w", id, core.ErrNotFound)
	}
	return nil
}

// ListBudgets returns budgets, optionally narrowed to one month.
func (r *Repository) ListBudgets(ctx context.Context, month core.Date) ([]core.Budget, error) {
	query := "SELECT id, category, month, limit_paise FROM budgets"
	var args []any
	if !month.IsZero() {
		query += " WHERE month = ?"
		args = append(args, month.FirstOfMonth().ISO())
	}
	query += " ORDER BY category ASC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}
	defer rows.Close()

	var out []core.Budget
	for rows.Next() {
		var (
			b        core.Budget
			monthStr string
			paise    int64
		)
		if err := rows.Scan(&b.ID, &b.Category, &monthStr, &paise); err != nil {
			return nil, fmt.Errorf("scan budget: %w", err)
		}
		m, err := core.ParseDate(monthStr)
		if err != nil {
			return nil, fmt.Errorf("stored month %q: %w", monthStr, err)
		}
		b.Month = m
		b.MonthlyLimit = core.NewMoney(paise)
		out = append(out, b)
	}
	return out, rows.Err()
}

func (r *Repository) CreateBudget(ctx context.Context, b core.Budget) (core.Budget, error) {
	if err := b.Validate(); err != nil {
		return core.Budget{}, err
	}
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	b.Month = b.Month.FirstOfMonth()

	_, err := r.db.ExecContext(ctx,
		"INSERT INTO budgets (id, category, month, limit_paise) VALUES (?, ?, ?, ?)",
		b.ID, b.Category, b.Month.ISO(), b.MonthlyLimit.Paise)
	if err != nil {
		return core.Budget{}, fmt.Errorf("create budget: %w", err)
	}
	return b, nil
}

func (r *Repository) UpdateBudget(ctx context.Context, b core.Budget) (core.Budget, error) {
	if err := b.Validate(); err != nil {
		return core.Budget{}, err
	}
	b.Month = b.Month.FirstOfMonth()

	res, err := r.db.ExecContext(ctx,
		"UPDATE budgets SET category = ?, month = ?, limit_paise = ? WHERE id = ?",
		b.Category, b.Month.ISO(), b.MonthlyLimit.Paise, b.ID)
	if err != nil {
		return core.Budget{}, fmt.Errorf("update budget: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.Budget{}, fmt.Errorf("budget %s: %w", b.ID, core.ErrNotFound)
	}
	return b, nil
}

func (r *Repository) DeleteBudget(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM budgets WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete budget: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("budget %s: %w", id, core.ErrNotFound)
	}
	return nil
}

func boolToInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}
