package core

import "math"

// Budgets maps an expense category to its ceiling amount. No history is
// kept; setting a budget overwrites the previous value.
type Budgets map[string]float64

// IsOverBudget reports whether adding newAmount to the existing expense
// total for category would exceed its budget. Returns false when no budget
// is set: the category is simply not evaluable.
func IsOverBudget(category string, newAmount float64, transactions []Transaction, budgets Budgets) bool {
	ceiling, ok := budgets[category]
	if !ok {
		return false
	}

	total := newAmount
	for _, tx := range transactions {
		if tx.Type == Expense && tx.Category == category {
			total += tx.Amount
		}
	}

	return total > ceiling
}

// CategorySpending sums expense transactions per category across the whole
// expense taxonomy, including categories with zero spend.
func CategorySpending(transactions []Transaction) map[string]float64 {
	spending := make(map[string]float64, len(ExpenseCategories))
	for _, category := range ExpenseCategories {
		spending[category] = 0
	}
	for _, tx := range transactions {
		if tx.Type == Expense {
			spending[tx.Category] += tx.Amount
		}
	}
	return spending
}

// BudgetUsagePercent returns how much of a budget is used, as a rounded
// percentage capped at 100. A zero or unset budget reads as 0.
func BudgetUsagePercent(spent, budget float64) int {
	if budget <= 0 {
		return 0
	}
	return int(math.Min(100, math.Round(spent/budget*100)))
}
