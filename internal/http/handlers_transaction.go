package http

import (
	"encoding/csv"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/adarshpathak3408/FinFlow/internal/core"
	"github.com/adarshpathak3408/FinFlow/internal/log"
	"github.com/adarshpathak3408/FinFlow/internal/services"
	"github.com/adarshpathak3408/FinFlow/internal/storage"
)

type (
	transactionRequest struct {
		Type        string  `json:"type"`
		Amount      float64 `json:"amount"`
		Category    string  `json:"category"`
		Description string  `json:"description"`
		Date        string  `json:"date"`
	}

	transactionJSON struct {
		ID          string  `json:"id"`
		Type        string  `json:"type"`
		Amount      float64 `json:"amount"`
		Currency    string  `json:"currency"`
		Category    string  `json:"category"`
		Description string  `json:"description,omitempty"`
		Date        string  `json:"date"`
		CreatedAt   string  `json:"created_at"`
	}

	createTransactionResponse struct {
		Transaction transactionJSON `json:"transaction"`
		OverBudget  bool            `json:"over_budget"`
		Spent       float64         `json:"spent,omitempty"`
		Budget      float64         `json:"budget,omitempty"`
	}

	listTransactionsResponse struct {
		Transactions []transactionJSON `json:"transactions"`
		Currency     string            `json:"currency"`
	}
)

// toTransaction converts the request payload to a domain transaction. A
// missing date stays zero so the service defaults it.
func (req transactionRequest) toTransaction() (core.Transaction, error) {
	tx := core.Transaction{
		Type:        core.TransactionType(strings.ToLower(strings.TrimSpace(req.Type))),
		Amount:      req.Amount,
		Category:    strings.TrimSpace(req.Category),
		Description: sanitizeInput(req.Description),
	}
	if req.Date != "" {
		date, err := parseDate(req.Date)
		if err != nil {
			return core.Transaction{}, fmt.Errorf("invalid date %q, want YYYY-MM-DD", req.Date)
		}
		tx.Date = date
	}
	return tx, nil
}

func (s *Server) toTransactionJSON(tx core.Transaction, currency string) transactionJSON {
	amount := tx.Amount
	if currency != core.BaseCurrency {
		if converted, err := core.Convert(tx.Amount, core.BaseCurrency, currency, s.rates); err == nil {
			amount = converted
		}
	}
	return transactionJSON{
		ID:          tx.ID,
		Type:        string(tx.Type),
		Amount:      amount,
		Currency:    currency,
		Category:    tx.Category,
		Description: tx.Description,
		Date:        tx.Date.Format("2006-01-02"),
		CreatedAt:   tx.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

// displayCurrencyFor resolves the currency query parameter, falling back to
// the configured display currency.
func (s *Server) displayCurrencyFor(r *http.Request) (string, error) {
	currency := strings.ToUpper(strings.TrimSpace(r.URL.Query().Get("currency")))
	if currency == "" {
		return s.displayCurrency, nil
	}
	if _, ok := s.rates[currency]; !ok && currency != core.BaseCurrency {
		return "", fmt.Errorf("unknown currency %q", currency)
	}
	return currency, nil
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req transactionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	tx, err := req.toTransaction()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := s.service.Create(r.Context(), tx)
	if err != nil {
		if isValidationError(err) {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		s.logger.ErrorContext(r.Context(), "Create transaction failed", log.FieldError, err)
		writeError(w, http.StatusInternalServerError, "could not save transaction")
		return
	}

	s.invalidateDashboard()

	resp := createTransactionResponse{
		Transaction: s.toTransactionJSON(result.Transaction, core.BaseCurrency),
		OverBudget:  result.OverBudget,
	}
	if result.OverBudget {
		resp.Spent = result.Spent
		resp.Budget = result.Budget
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	currency, err := s.displayCurrencyFor(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	transactions, err := s.reader.ListTransactions(r.Context())
	if err != nil {
		s.logger.ErrorContext(r.Context(), "List transactions failed", log.FieldError, err)
		writeError(w, http.StatusInternalServerError, "could not list transactions")
		return
	}

	resp := listTransactionsResponse{
		Transactions: make([]transactionJSON, 0, len(transactions)),
		Currency:     currency,
	}
	for _, tx := range transactions {
		resp.Transactions = append(resp.Transactions, s.toTransactionJSON(tx, currency))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetTransaction(w http.ResponseWriter, r *http.Request) {
	currency, err := s.displayCurrencyFor(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	tx, err := s.reader.GetTransaction(r.Context(), r.PathValue("id"))
	if errors.Is(err, storage.ErrNotFound) {
		writeError(w, http.StatusNotFound, "transaction not found")
		return
	}
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Get transaction failed", log.FieldError, err)
		writeError(w, http.StatusInternalServerError, "could not load transaction")
		return
	}

	writeJSON(w, http.StatusOK, s.toTransactionJSON(tx, currency))
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	var req transactionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	// An update is a full replace: a missing date would zero the stored one.
	if strings.TrimSpace(req.Date) == "" {
		writeError(w, http.StatusBadRequest, "date is required")
		return
	}

	tx, err := req.toTransaction()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	tx.ID = r.PathValue("id")

	err = s.service.Update(r.Context(), tx)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		writeError(w, http.StatusNotFound, "transaction not found")
		return
	case err != nil && isValidationError(err):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	case err != nil:
		s.logger.ErrorContext(r.Context(), "Update transaction failed", log.FieldError, err)
		writeError(w, http.StatusInternalServerError, "could not update transaction")
		return
	}

	s.invalidateDashboard()

	// Respond with the stored row so created_at reflects what persisted.
	stored, err := s.reader.GetTransaction(r.Context(), tx.ID)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Reload after update failed", log.FieldError, err)
		writeError(w, http.StatusInternalServerError, "could not load updated transaction")
		return
	}
	writeJSON(w, http.StatusOK, s.toTransactionJSON(stored, core.BaseCurrency))
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	err := s.service.Delete(r.Context(), r.PathValue("id"))
	if errors.Is(err, storage.ErrNotFound) {
		writeError(w, http.StatusNotFound, "transaction not found")
		return
	}
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Delete transaction failed", log.FieldError, err)
		writeError(w, http.StatusInternalServerError, "could not delete transaction")
		return
	}

	s.invalidateDashboard()
	w.WriteHeader(http.StatusNoContent)
}

// handleExportTransactions streams all transactions as CSV.
func (s *Server) handleExportTransactions(w http.ResponseWriter, r *http.Request) {
	transactions, err := s.reader.ListTransactions(r.Context())
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Export transactions failed", log.FieldError, err)
		writeError(w, http.StatusInternalServerError, "could not export transactions")
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="transactions.csv"`)

	cw := csv.NewWriter(w)
	_ = cw.Write([]string{"id", "date", "type", "category", "amount", "description"})
	for _, tx := range transactions {
		_ = cw.Write([]string{
			tx.ID,
			tx.Date.Format("2006-01-02"),
			string(tx.Type),
			tx.Category,
			fmt.Sprintf("%.2f", tx.Amount),
			tx.Description,
		})
	}
	cw.Flush()
}

// isValidationError distinguishes client mistakes from storage failures.
func isValidationError(err error) bool {
	return errors.Is(err, core.ErrInvalidType) ||
		errors.Is(err, core.ErrNegativeAmount) ||
		errors.Is(err, core.ErrEmptyCategory) ||
		errors.Is(err, core.ErrUnknownCategory) ||
		errors.Is(err, services.ErrDateRequired)
}
