// Package worker drains the export queue: change events arrive over
// AMQP, a periodic sweep catches anything the broker lost.
package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"finpulse/internal/amqp"
	"finpulse/internal/core"
	"finpulse/internal/log"
	"finpulse/internal/storage"
)

const (
	// DefaultBatchSize bounds one sweep pass.
	DefaultBatchSize = 50
	// DefaultSweepInterval is how often the pending sweep runs.
	DefaultSweepInterval = 5 * time.Minute
	// exportConcurrency bounds parallel spreadsheet appends in a sweep.
	exportConcurrency = 4
)

// Appender is the slice of the sheets exporter the worker needs.
type Appender interface {
	AppendTransaction(ctx context.Context, tx core.Transaction) (string, error)
}

// ExportWorker mirrors locally stored transactions into the spreadsheet
// backup.
type ExportWorker struct {
	repo          *storage.Repository
	exporter      Appender
	logger        *log.Logger
	batchSize     int
	sweepInterval time.Duration
}

func NewExportWorker(repo *storage.Repository, exporter Appender, logger *log.Logger) *ExportWorker {
	return &ExportWorker{
		repo:          repo,
		exporter:      exporter,
		logger:        logger.WithComponent(log.ComponentWorker),
		batchSize:     DefaultBatchSize,
		sweepInterval: DefaultSweepInterval,
	}
}

// SetSweepInterval overrides the default sweep cadence.
func (w *ExportWorker) SetSweepInterval(d time.Duration) {
	if d > 0 {
		w.sweepInterval = d
	}
}

// SetBatchSize overrides how many pending rows one sweep picks up.
func (w *ExportWorker) SetBatchSize(n int) {
	if n > 0 {
		w.batchSize = n
	}
}

// HandleEvent processes one change event. Returning an error requeues
// the message, so a failed append that is already flagged on its row is
// acked instead; the sweep owns those retries and the broker is spared a
// redeliver loop.
func (w *ExportWorker) HandleEvent(ctx context.Context, ev *amqp.TransactionEvent) error {
	if ev.Event == amqp.EventDeleted {
		// The backup keeps history; deletes produce no row.
		w.logger.DebugContext(ctx, "Skipping deleted transaction", log.FieldTxnID, ev.TransactionID)
		return nil
	}

	tx, err := w.repo.GetTransaction(ctx, ev.TransactionID)
	if errors.Is(err, core.ErrNotFound) {
		// Deleted between publish and consume.
		w.logger.DebugContext(ctx, "Transaction gone before export", log.FieldTxnID, ev.TransactionID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("fetch transaction %s: %w", ev.TransactionID, err)
	}

	parked, err := w.export(ctx, tx)
	if parked {
		w.logger.WarnContext(ctx, "Export failed, leaving the retry to the sweep",
			log.NewFields().WithError(err).WithOperation(log.OpExport).ToSlice()...)
		return nil
	}
	return err
}

// export appends one row to the backup. parked reports that the append
// failed but the row carries the error flag, so the sweep will retry it.
func (w *ExportWorker) export(ctx context.Context, tx core.Transaction) (parked bool, err error) {
	ref, err := w.exporter.AppendTransaction(ctx, tx)
	if err != nil {
		if markErr := w.repo.MarkExportError(ctx, tx.ID); markErr != nil {
			w.logger.ErrorContext(ctx, "Failed to mark export error",
				log.NewFields().WithError(markErr).ToSlice()...)
			return false, fmt.Errorf("append transaction %s: %w", tx.ID, err)
		}
		return true, fmt.Errorf("append transaction %s: %w", tx.ID, err)
	}

	if err := w.repo.MarkExported(ctx, tx.ID); err != nil {
		return false, fmt.Errorf("mark exported %s: %w", tx.ID, err)
	}

	w.logger.InfoContext(ctx, "Transaction exported",
		log.FieldTxnID, tx.ID,
		log.FieldAmountPaise, tx.Amount.Paise,
		log.FieldSheetsRef, ref)
	return false, nil
}

// ProcessPending exports one batch of pending rows with bounded
// concurrency. Individual failures are recorded on their rows and do not
// stop the batch.
func (w *ExportWorker) ProcessPending(ctx context.Context) (int, error) {
	pending, err := w.repo.PendingExports(ctx, w.batchSize)
	if err != nil {
		return 0, fmt.Errorf("list pending exports: %w", err)
	}
	if len(pending) == 0 {
		return 0, nil
	}

	w.logger.InfoContext(ctx, "Sweeping pending exports", log.FieldRowCount, len(pending))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(exportConcurrency)
	for _, tx := range pending {
		tx := tx
		g.Go(func() error {
			if _, err := w.export(gctx, tx); err != nil {
				w.logger.WarnContext(gctx, "Pending export failed",
					log.NewFields().WithError(err).WithOperation(log.OpExport).ToSlice()...)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return len(pending), err
	}
	return len(pending), nil
}

// RunSweep loops ProcessPending until the context ends. It runs once
// immediately so a backlog does not wait a full interval after startup.
func (w *ExportWorker) RunSweep(ctx context.Context) error {
	if _, err := w.ProcessPending(ctx); err != nil {
		w.logger.ErrorContext(ctx, "Initial sweep failed", log.NewFields().WithError(err).ToSlice()...)
	}

	ticker := time.NewTicker(w.sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if _, err := w.ProcessPending(ctx); err != nil {
				w.logger.ErrorContext(ctx, "Sweep failed", log.NewFields().WithError(err).ToSlice()...)
			}
		}
	}
}
