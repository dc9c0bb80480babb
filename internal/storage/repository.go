package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/adarshpathak3408/FinFlow/internal/core"

	_ "modernc.org/sqlite"
)

const (
	dateLayout    = "2006-01-02"
	createdLayout = time.RFC3339Nano
)

var ErrNotFound = errors.New("transaction not found")

// Repository persists transactions and budgets in SQLite. It replaces the
// browser-local storage of the original client: transactions are a flat
// most-recent-first sequence, budgets a category-to-ceiling map.
type Repository struct {
	db *sql.DB
}

func NewRepository(dbPath string) (*Repository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
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

// CreateTransaction inserts a new transaction. The caller assigns the ID.
func (r *Repository) CreateTransaction(ctx context.Context, tx core.Transaction) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO transactions (id, type, amount, category, description, date, created_at, synced)
		VALUES (?, ?, ?, ?, ?, ?, ?, 0)`,
		tx.ID, string(tx.Type), tx.Amount, tx.Category, tx.Description,
		tx.Date.Format(dateLayout), tx.CreatedAt.Format(createdLayout))
	if err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}

	slog.InfoContext(ctx, "Transaction saved",
		"transaction_id", tx.ID,
		"type", tx.Type,
		"category", tx.Category,
		"amount", tx.Amount)

	return nil
}

// GetTransaction loads one transaction by id.
func (r *Repository) GetTransaction(ctx context.Context, id string) (core.Transaction, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, type, amount, category, description, date, created_at
		FROM transactions WHERE id = ?`, id)

	tx, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, ErrNotFound
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("get transaction: %w", err)
	}
	return tx, nil
}

// UpdateTransaction replaces every field of an existing transaction and
// flags it for re-sync.
func (r *Repository) UpdateTransaction(ctx context.Context, tx core.Transaction) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE transactions
		SET type = ?, amount = ?, category = ?, description = ?, date = ?, synced = 0
		WHERE id = ?`,
		string(tx.Type), tx.Amount, tx.Category, tx.Description,
		tx.Date.Format(dateLayout), tx.ID)
	if err != nil {
		return fmt.Errorf("update transaction: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteTransaction removes a transaction by id.
func (r *Repository) DeleteTransaction(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// ListTransactions returns all transactions, most recent first.
func (r *Repository) ListTransactions(ctx context.Context) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, type, amount, category, description, date, created_at
		FROM transactions
		ORDER BY date DESC, created_at DESC`)
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
	return out, rows.Err()
}

// SumCategoryExpenses totals expense transactions for one category.
func (r *Repository) SumCategoryExpenses(ctx context.Context, category string) (float64, error) {
	var total float64
	err := r.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(amount), 0)
		FROM transactions
		WHERE type = 'expense' AND category = ?`, category).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("sum category expenses: %w", err)
	}
	return total, nil
}

// SetBudget sets or overwrites the ceiling for a category.
func (r *Repository) SetBudget(ctx context.Context, category string, amount float64) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO budgets (category, amount) VALUES (?, ?)
		ON CONFLICT(category) DO UPDATE SET amount = excluded.amount`,
		category, amount)
	if err != nil {
		return fmt.Errorf("set budget: %w", err)
	}
	return nil
}

// GetBudgets returns the full category-to-ceiling map.
func (r *Repository) GetBudgets(ctx context.Context) (core.Budgets, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT category, amount FROM budgets`)
	if err != nil {
		return nil, fmt.Errorf("get budgets: %w", err)
	}
	defer rows.Close()

	budgets := make(core.Budgets)
	for rows.Next() {
		var category string
		var amount float64
		if err := rows.Scan(&category, &amount); err != nil {
			return nil, fmt.Errorf("scan budget: %w", err)
		}
		budgets[category] = amount
	}
	return budgets, rows.Err()
}

// ListUnsynced returns transactions not yet exported to the sheet, oldest
// first, capped at limit.
func (r *Repository) ListUnsynced(ctx context.Context, limit int) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, type, amount, category, description, date, created_at
		FROM transactions
		WHERE synced = 0
		ORDER BY created_at ASC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list unsynced: %w", err)
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
	return out, rows.Err()
}

// MarkSynced flags a transaction as exported.
func (r *Repository) MarkSynced(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE transactions SET synced = 1 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("mark synced: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (core.Transaction, error) {
	var (
		tx           core.Transaction
		typ          string
		dateStr      string
		createdAtStr string
	)
	if err := row.Scan(&tx.ID, &typ, &tx.Amount, &tx.Category, &tx.Description, &dateStr, &createdAtStr); err != nil {
		return core.Transaction{}, err
	}
	tx.Type = core.TransactionType(typ)

	date, err := time.Parse(dateLayout, dateStr)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("parse date %q: %w", dateStr, err)
	}
	tx.Date = date

	createdAt, err := time.Parse(createdLayout, createdAtStr)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("parse created_at %q: %w", createdAtStr, err)
	}
	tx.CreatedAt = createdAt

	return tx, nil
}
