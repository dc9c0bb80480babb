// Package services coordinates storage, budget evaluation and async export
// for transaction writes.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/adarshpathak3408/FinFlow/internal/amqp"
	"github.com/adarshpathak3408/FinFlow/internal/core"
	"github.com/adarshpathak3408/FinFlow/internal/log"
)

type (
	// TransactionStore is the storage surface the service needs.
	TransactionStore interface {
		CreateTransaction(ctx context.Context, tx core.Transaction) error
		UpdateTransaction(ctx context.Context, tx core.Transaction) error
		DeleteTransaction(ctx context.Context, id string) error
		SumCategoryExpenses(ctx context.Context, category string) (float64, error)
		GetBudgets(ctx context.Context) (core.Budgets, error)
	}

	// EventPublisher sends events to the sync worker.
	EventPublisher interface {
		PublishEvent(ctx context.Context, event amqp.Event) error
	}
)

// TransactionService validates and stores transactions, evaluates budgets
// and publishes export events. A nil publisher disables async export; the
// worker then relies on the unsynced-rows sweep.
type TransactionService struct {
	store     TransactionStore
	publisher EventPublisher
	logger    *log.Logger
}

func NewTransactionService(store TransactionStore, publisher EventPublisher, logger *log.Logger) *TransactionService {
	return &TransactionService{
		store:     store,
		publisher: publisher,
		logger:    logger.WithComponent(log.ComponentTransaction),
	}
}

// CreateResult carries the stored transaction plus the budget verdict for
// its category.
type CreateResult struct {
	Transaction core.Transaction
	OverBudget  bool
	Spent       float64
	Budget      float64
}

// Create stores a new transaction. An empty expense category is classified
// from the description; an empty date defaults to today. The budget check
// runs against the rows present before this one.
func (s *TransactionService) Create(ctx context.Context, tx core.Transaction) (CreateResult, error) {
	if tx.Type == core.Expense && strings.TrimSpace(tx.Category) == "" {
		tx.Category = core.Classify(tx.Description)
	}
	if tx.Date.IsZero() {
		tx.Date = time.Now()
	}
	tx.ID = uuid.NewString()
	tx.CreatedAt = time.Now()

	if err := tx.Validate(); err != nil {
		return CreateResult{}, err
	}

	result := CreateResult{Transaction: tx}

	if tx.Type == core.Expense {
		verdict, err := s.evaluateBudget(ctx, tx)
		if err != nil {
			return CreateResult{}, err
		}
		result.OverBudget = verdict.over
		result.Spent = verdict.spent
		result.Budget = verdict.budget
	}

	if err := s.store.CreateTransaction(ctx, tx); err != nil {
		return CreateResult{}, fmt.Errorf("store transaction: %w", err)
	}

	if result.OverBudget {
		s.logger.WarnContext(ctx, "Category over budget",
			log.FieldCategory, tx.Category,
			"spent", result.Spent,
			log.FieldBudget, result.Budget)
		s.publish(ctx, amqp.NewBudgetAlertEvent(tx.Category, result.Spent, result.Budget))
	}
	s.publish(ctx, amqp.NewTransactionSyncEvent(tx.ID))

	return result, nil
}

// ErrDateRequired rejects updates without a date. Unlike Create, an update
// has no sensible default: defaulting would silently move the transaction
// to today.
var ErrDateRequired = errors.New("transaction date is required")

// Update replaces an existing transaction and queues it for re-export.
func (s *TransactionService) Update(ctx context.Context, tx core.Transaction) error {
	if tx.Date.IsZero() {
		return ErrDateRequired
	}
	if err := tx.Validate(); err != nil {
		return err
	}
	if err := s.store.UpdateTransaction(ctx, tx); err != nil {
		return err
	}
	s.publish(ctx, amqp.NewTransactionSyncEvent(tx.ID))
	return nil
}

// Delete removes a transaction and tells the worker to drop its exported row.
func (s *TransactionService) Delete(ctx context.Context, id string) error {
	if err := s.store.DeleteTransaction(ctx, id); err != nil {
		return err
	}
	s.publish(ctx, amqp.NewTransactionDeleteEvent(id))
	return nil
}

type budgetVerdict struct {
	over   bool
	spent  float64
	budget float64
}

func (s *TransactionService) evaluateBudget(ctx context.Context, tx core.Transaction) (budgetVerdict, error) {
	budgets, err := s.store.GetBudgets(ctx)
	if err != nil {
		return budgetVerdict{}, fmt.Errorf("load budgets: %w", err)
	}
	ceiling, ok := budgets[tx.Category]
	if !ok {
		return budgetVerdict{}, nil
	}

	existing, err := s.store.SumCategoryExpenses(ctx, tx.Category)
	if err != nil {
		return budgetVerdict{}, fmt.Errorf("sum category expenses: %w", err)
	}

	spent := existing + tx.Amount
	return budgetVerdict{
		over:   spent > ceiling,
		spent:  spent,
		budget: ceiling,
	}, nil
}

// publish sends an event when a publisher is configured. A publish failure
// is logged, not returned: the local write already succeeded and the worker
// sweep picks up unsynced rows.
func (s *TransactionService) publish(ctx context.Context, event amqp.Event) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishEvent(ctx, event); err != nil {
		s.logger.ErrorContext(ctx, "Failed to publish event",
			log.FieldError, err,
			"kind", event.Kind,
			log.FieldTransactionID, event.TransactionID)
	}
}
