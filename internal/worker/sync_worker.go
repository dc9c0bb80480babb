// Package worker consumes export events and keeps the spreadsheet mirror of
// local storage up to date. A periodic sweep catches rows whose events were
// lost while the broker was down.
package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/adarshpathak3408/FinFlow/internal/amqp"
	"github.com/adarshpathak3408/FinFlow/internal/core"
	"github.com/adarshpathak3408/FinFlow/internal/log"
	"github.com/adarshpathak3408/FinFlow/internal/sheets"
	"github.com/adarshpathak3408/FinFlow/internal/storage"
)

// Storage is the persistence surface the worker needs.
type Storage interface {
	GetTransaction(ctx context.Context, id string) (core.Transaction, error)
	ListTransactions(ctx context.Context) ([]core.Transaction, error)
	ListUnsynced(ctx context.Context, limit int) ([]core.Transaction, error)
	MarkSynced(ctx context.Context, id string) error
	GetBudgets(ctx context.Context) (core.Budgets, error)
}

type Worker struct {
	store     Storage
	writer    sheets.TransactionWriter
	deleter   sheets.TransactionDeleter
	logger    *log.Logger
	batchSize int
}

// New builds a worker. Writer and deleter may be nil when no spreadsheet is
// configured; sync events are then acknowledged without an export.
func New(store Storage, writer sheets.TransactionWriter, deleter sheets.TransactionDeleter, batchSize int, logger *log.Logger) *Worker {
	return &Worker{
		store:     store,
		writer:    writer,
		deleter:   deleter,
		logger:    logger.WithComponent(log.ComponentWorker),
		batchSize: batchSize,
	}
}

// HandleEvent processes one event. A returned error requeues the delivery.
func (w *Worker) HandleEvent(ctx context.Context, event amqp.Event) error {
	switch event.Kind {
	case amqp.KindTransactionSync:
		return w.handleSync(ctx, event.TransactionID)
	case amqp.KindTransactionDelete:
		return w.handleDelete(ctx, event.TransactionID)
	case amqp.KindBudgetAlert:
		w.logger.WarnContext(ctx, "Budget exceeded",
			log.FieldCategory, event.Category,
			"spent", event.Spent,
			log.FieldBudget, event.Budget)
		return nil
	default:
		w.logger.WarnContext(ctx, "Dropping event of unknown kind", "kind", event.Kind)
		return nil
	}
}

func (w *Worker) handleSync(ctx context.Context, id string) error {
	tx, err := w.store.GetTransaction(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		// Deleted before the event was consumed. Nothing to export.
		w.logger.WarnContext(ctx, "Transaction gone before sync", log.FieldTransactionID, id)
		return nil
	}
	if err != nil {
		return fmt.Errorf("load transaction %s: %w", id, err)
	}

	return w.export(ctx, tx)
}

func (w *Worker) export(ctx context.Context, tx core.Transaction) error {
	if w.writer == nil {
		return w.store.MarkSynced(ctx, tx.ID)
	}

	ref, err := w.writer.Append(ctx, tx)
	if err != nil {
		return fmt.Errorf("export transaction %s: %w", tx.ID, err)
	}
	if err := w.store.MarkSynced(ctx, tx.ID); err != nil {
		return fmt.Errorf("mark synced %s: %w", tx.ID, err)
	}

	w.logger.InfoContext(ctx, "Transaction exported",
		log.FieldOperation, log.OpSync,
		log.FieldTransactionID, tx.ID,
		log.FieldSheetsRef, ref)
	return nil
}

func (w *Worker) handleDelete(ctx context.Context, id string) error {
	if w.deleter == nil {
		return nil
	}
	if err := w.deleter.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete exported row %s: %w", id, err)
	}
	w.logger.InfoContext(ctx, "Exported row removed",
		log.FieldOperation, log.OpDelete,
		log.FieldTransactionID, id)
	return nil
}

// SyncPending exports one batch of unsynced rows. Returns how many rows
// were exported.
func (w *Worker) SyncPending(ctx context.Context) (int, error) {
	pending, err := w.store.ListUnsynced(ctx, w.batchSize)
	if err != nil {
		return 0, fmt.Errorf("list unsynced: %w", err)
	}

	synced := 0
	for _, tx := range pending {
		if err := w.export(ctx, tx); err != nil {
			return synced, err
		}
		synced++
	}
	return synced, nil
}

// RunSweep exports pending rows on a fixed interval until ctx is done.
func (w *Worker) RunSweep(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			n, err := w.SyncPending(ctx)
			if err != nil {
				w.logger.ErrorContext(ctx, "Sweep failed", log.FieldError, err)
				continue
			}
			if n > 0 {
				w.logger.InfoContext(ctx, "Sweep exported pending rows", "count", n)
			}
		}
	}
}

// DailyDigest logs totals and budget usage across all transactions. Wired
// to a cron schedule by the worker binary.
func (w *Worker) DailyDigest(ctx context.Context) error {
	transactions, err := w.store.ListTransactions(ctx)
	if err != nil {
		return fmt.Errorf("list transactions: %w", err)
	}
	budgets, err := w.store.GetBudgets(ctx)
	if err != nil {
		return fmt.Errorf("load budgets: %w", err)
	}

	summary := core.Summarize(transactions)
	w.logger.InfoContext(ctx, "Daily digest",
		log.FieldOperation, log.OpDigest,
		"total_income", summary.TotalIncome,
		"total_expense", summary.TotalExpense,
		"balance", summary.Balance)

	spending := core.CategorySpending(transactions)
	for _, category := range core.ExpenseCategories {
		budget, ok := budgets[category]
		if !ok {
			continue
		}
		spent := spending[category]
		w.logger.InfoContext(ctx, "Budget usage",
			log.FieldOperation, log.OpDigest,
			log.FieldCategory, category,
			"spent", spent,
			log.FieldBudget, budget,
			"usage_percent", core.BudgetUsagePercent(spent, budget),
			"over_budget", spent > budget)
	}
	return nil
}
