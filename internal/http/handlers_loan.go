package http

import (
	"errors"
	"net/http"

	"github.com/adarshpathak3408/FinFlow/internal/core"
)

type (
	loanRequest struct {
		Principal         float64 `json:"principal"`
		AnnualRatePercent float64 `json:"annual_rate_percent"`
		TermMonths        int     `json:"term_months"`
	}

	amortizationRowJSON struct {
		Month            int     `json:"month"`
		Payment          float64 `json:"payment"`
		Principal        float64 `json:"principal"`
		Interest         float64 `json:"interest"`
		RemainingBalance float64 `json:"remaining_balance"`
	}

	loanResponse struct {
		MonthlyPayment float64               `json:"monthly_payment"`
		TotalPayment   float64               `json:"total_payment"`
		TotalInterest  float64               `json:"total_interest"`
		Schedule       []amortizationRowJSON `json:"schedule"`
	}
)

// handleLoan computes the fixed monthly payment and amortization schedule.
// Pure computation; nothing is stored.
func (s *Server) handleLoan(w http.ResponseWriter, r *http.Request) {
	var req loanRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := core.CalculateLoan(core.LoanInput{
		Principal:         req.Principal,
		AnnualRatePercent: req.AnnualRatePercent,
		TermMonths:        req.TermMonths,
	})
	if errors.Is(err, core.ErrInvalidLoanInput) {
		writeError(w, http.StatusUnprocessableEntity, "principal and term must be positive, rate non-negative")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "loan calculation failed")
		return
	}

	resp := loanResponse{
		MonthlyPayment: result.MonthlyPayment,
		TotalPayment:   result.TotalPayment,
		TotalInterest:  result.TotalInterest,
		Schedule:       make([]amortizationRowJSON, 0, len(result.Schedule)),
	}
	for _, row := range result.Schedule {
		resp.Schedule = append(resp.Schedule, amortizationRowJSON{
			Month:            row.Month,
			Payment:          row.Payment,
			Principal:        row.PrincipalPortion,
			Interest:         row.InterestPortion,
			RemainingBalance: row.RemainingBalance,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}
