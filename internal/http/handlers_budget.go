package http

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/adarshpathak3408/FinFlow/internal/core"
	"github.com/adarshpathak3408/FinFlow/internal/log"
)

type setBudgetRequest struct {
	Category string  `json:"category"`
	Amount   float64 `json:"amount"`
}

func (s *Server) handleGetBudgets(w http.ResponseWriter, r *http.Request) {
	budgets, err := s.budgets.GetBudgets(r.Context())
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Get budgets failed", log.FieldError, err)
		writeError(w, http.StatusInternalServerError, "could not load budgets")
		return
	}
	writeJSON(w, http.StatusOK, map[string]core.Budgets{"budgets": budgets})
}

// handleSetBudget sets or overwrites one category ceiling.
func (s *Server) handleSetBudget(w http.ResponseWriter, r *http.Request) {
	var req setBudgetRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	category := strings.TrimSpace(req.Category)
	if !core.ValidCategory(core.Expense, category) {
		writeError(w, http.StatusUnprocessableEntity, fmt.Sprintf("unknown expense category %q", category))
		return
	}
	if req.Amount <= 0 {
		writeError(w, http.StatusUnprocessableEntity, "budget amount must be positive")
		return
	}

	if err := s.budgets.SetBudget(r.Context(), category, req.Amount); err != nil {
		s.logger.ErrorContext(r.Context(), "Set budget failed", log.FieldError, err)
		writeError(w, http.StatusInternalServerError, "could not save budget")
		return
	}

	s.invalidateDashboard()
	s.logger.InfoContext(r.Context(), "Budget set",
		log.FieldCategory, category,
		log.FieldBudget, req.Amount)
	writeJSON(w, http.StatusOK, map[string]any{"category": category, "amount": req.Amount})
}
