package core

import (
	"errors"
	"strings"
	"time"
)

const (
	Income  TransactionType = "income"
	Expense TransactionType = "expense"
)

type (
	TransactionType string

	Transaction struct {
		ID          string
		Type        TransactionType
		Amount      float64
		Category    string
		Description string
		Date        time.Time
		CreatedAt   time.Time
	}
)

// Category taxonomies, in declared order. The order matters: it is the
// tie-break for classification and the scan order for speech extraction.
var (
	IncomeCategories = []string{
		"Salary",
		"Freelance",
		"Investments",
		"Gift",
		"Other",
	}

	ExpenseCategories = []string{
		"Food",
		"Housing",
		"Transportation",
		"Entertainment",
		"Shopping",
		"Utilities",
		"Healthcare",
		"Education",
		"Travel",
		"Other",
	}
)

var (
	ErrInvalidType     = errors.New("invalid transaction type")
	ErrNegativeAmount  = errors.New("amount cannot be negative")
	ErrUnknownCategory = errors.New("category not in taxonomy")
	ErrEmptyCategory   = errors.New("empty category")
)

// CategoriesFor returns the taxonomy for the given transaction type.
func CategoriesFor(t TransactionType) []string {
	if t == Income {
		return IncomeCategories
	}
	return ExpenseCategories
}

// ValidCategory reports whether name belongs to the taxonomy for type t.
func ValidCategory(t TransactionType, name string) bool {
	for _, c := range CategoriesFor(t) {
		if c == name {
			return true
		}
	}
	return false
}

func (t TransactionType) Validate() error {
	switch t {
	case Income, Expense:
		return nil
	}
	return ErrInvalidType
}

func (tx Transaction) Validate() error {
	if err := tx.Type.Validate(); err != nil {
		return err
	}
	if tx.Amount < 0 {
		return ErrNegativeAmount
	}
	if strings.TrimSpace(tx.Category) == "" {
		return ErrEmptyCategory
	}
	if !ValidCategory(tx.Type, tx.Category) {
		return ErrUnknownCategory
	}
	return nil
}
