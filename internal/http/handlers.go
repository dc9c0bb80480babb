package http

import (
	"context"
	"net/http"
	"time"

	"github.com/adarshpathak3408/FinFlow/internal/core"
	"github.com/adarshpathak3408/FinFlow/internal/log"
)

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// handleReady probes storage with a short timeout.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if _, err := s.budgets.GetBudgets(ctx); err != nil {
		s.logger.ErrorContext(ctx, "Readiness probe failed", log.FieldError, err)
		writeError(w, http.StatusServiceUnavailable, "storage not ready")
		return
	}

	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

// handleListCategories returns both taxonomies for form rendering.
func (s *Server) handleListCategories(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, categoriesResponse{
		Income:  core.IncomeCategories,
		Expense: core.ExpenseCategories,
	})
}

type categoriesResponse struct {
	Income  []string `json:"income"`
	Expense []string `json:"expense"`
}
