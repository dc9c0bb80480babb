package http

import (
	"net/http"

	"github.com/adarshpathak3408/FinFlow/internal/core"
	"github.com/adarshpathak3408/FinFlow/internal/log"
)

type (
	categoryAmountJSON struct {
		Name   string  `json:"name"`
		Amount float64 `json:"amount"`
	}

	budgetStatusJSON struct {
		Category     string  `json:"category"`
		Budget       float64 `json:"budget"`
		Spent        float64 `json:"spent"`
		UsagePercent int     `json:"usage_percent"`
		OverBudget   bool    `json:"over_budget"`
	}

	dashboardResponse struct {
		TotalIncome  float64              `json:"total_income"`
		TotalExpense float64              `json:"total_expense"`
		Balance      float64              `json:"balance"`
		ByCategory   []categoryAmountJSON `json:"by_category"`
		Budgets      []budgetStatusJSON   `json:"budgets"`
		Currency     string               `json:"currency"`
	}
)

// handleDashboard aggregates totals, per-category spend and budget usage.
// Responses are cached per currency until the next write.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	currency, err := s.displayCurrencyFor(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if cached, ok := s.dashCache.Get(currency); ok {
		writeJSON(w, http.StatusOK, cached)
		return
	}

	transactions, err := s.reader.ListTransactions(r.Context())
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Dashboard load failed", log.FieldError, err)
		writeError(w, http.StatusInternalServerError, "could not build dashboard")
		return
	}
	budgets, err := s.budgets.GetBudgets(r.Context())
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Dashboard budgets load failed", log.FieldError, err)
		writeError(w, http.StatusInternalServerError, "could not build dashboard")
		return
	}

	resp := s.buildDashboard(transactions, budgets, currency)
	s.dashCache.Set(currency, resp)
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) buildDashboard(transactions []core.Transaction, budgets core.Budgets, currency string) dashboardResponse {
	summary := core.Summarize(transactions)
	spending := core.CategorySpending(transactions)

	resp := dashboardResponse{
		TotalIncome:  s.display(summary.TotalIncome, currency),
		TotalExpense: s.display(summary.TotalExpense, currency),
		Balance:      s.display(summary.Balance, currency),
		Currency:     currency,
	}

	for _, entry := range summary.ByCategory {
		resp.ByCategory = append(resp.ByCategory, categoryAmountJSON{
			Name:   entry.Name,
			Amount: s.display(entry.Amount, currency),
		})
	}

	// Budget usage stays in taxonomy order and only lists set budgets.
	// Percentages are computed on base-currency amounts so the display
	// currency never shifts the verdict.
	for _, category := range core.ExpenseCategories {
		budget, ok := budgets[category]
		if !ok {
			continue
		}
		spent := spending[category]
		resp.Budgets = append(resp.Budgets, budgetStatusJSON{
			Category:     category,
			Budget:       s.display(budget, currency),
			Spent:        s.display(spent, currency),
			UsagePercent: core.BudgetUsagePercent(spent, budget),
			OverBudget:   core.IsOverBudget(category, 0, transactions, budgets),
		})
	}

	return resp
}

// display converts a base-currency amount for presentation. The currency is
// validated at the request boundary, so conversion cannot fail here.
func (s *Server) display(amount float64, currency string) float64 {
	converted, err := core.Convert(amount, core.BaseCurrency, currency, s.rates)
	if err != nil {
		return amount
	}
	return converted
}
