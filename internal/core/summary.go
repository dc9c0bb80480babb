package core

type (
	// CategoryAmount is an amount aggregated by category name.
	CategoryAmount struct {
		Name   string
		Amount float64
	}

	// Summary is the dashboard aggregate over a transaction list.
	Summary struct {
		TotalIncome  float64
		TotalExpense float64
		Balance      float64
		ByCategory   []CategoryAmount
	}
)

// TotalIncome sums income transactions.
func TotalIncome(transactions []Transaction) float64 {
	var total float64
	for _, tx := range transactions {
		if tx.Type == Income {
			total += tx.Amount
		}
	}
	return total
}

// TotalExpense sums expense transactions.
func TotalExpense(transactions []Transaction) float64 {
	var total float64
	for _, tx := range transactions {
		if tx.Type == Expense {
			total += tx.Amount
		}
	}
	return total
}

// Balance is income minus expense.
func Balance(transactions []Transaction) float64 {
	return TotalIncome(transactions) - TotalExpense(transactions)
}

// Summarize builds the dashboard aggregate. ByCategory follows the expense
// taxonomy order and only lists categories with spend.
func Summarize(transactions []Transaction) Summary {
	s := Summary{
		TotalIncome:  TotalIncome(transactions),
		TotalExpense: TotalExpense(transactions),
	}
	s.Balance = s.TotalIncome - s.TotalExpense

	spending := CategorySpending(transactions)
	for _, category := range ExpenseCategories {
		if spending[category] > 0 {
			s.ByCategory = append(s.ByCategory, CategoryAmount{
				Name:   category,
				Amount: spending[category],
			})
		}
	}
	return s
}
