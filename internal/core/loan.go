package core

import (
	"errors"
	"math"
)

type (
	LoanInput struct {
		Principal         float64
		AnnualRatePercent float64
		TermMonths        int
	}

	// AmortizationRow is one month of the repayment schedule.
	AmortizationRow struct {
		Month            int
		Payment          float64
		PrincipalPortion float64
		InterestPortion  float64
		RemainingBalance float64
	}

	LoanResult struct {
		MonthlyPayment float64
		TotalPayment   float64
		TotalInterest  float64
		Schedule       []AmortizationRow
	}
)

var ErrInvalidLoanInput = errors.New("invalid loan input")

func (in LoanInput) Validate() error {
	if in.Principal <= 0 {
		return ErrInvalidLoanInput
	}
	if in.TermMonths <= 0 {
		return ErrInvalidLoanInput
	}
	if in.AnnualRatePercent < 0 {
		return ErrInvalidLoanInput
	}
	return nil
}

// CalculateLoan computes the fixed monthly payment (EMI) and the full
// amortization schedule using the standard annuity formula. A rate of
// exactly zero is special-cased to principal/term, where the formula
// would divide by zero.
func CalculateLoan(in LoanInput) (LoanResult, error) {
	if err := in.Validate(); err != nil {
		return LoanResult{}, err
	}

	monthlyRate := in.AnnualRatePercent / 12 / 100

	var payment float64
	if monthlyRate == 0 {
		payment = in.Principal / float64(in.TermMonths)
	} else {
		factor := math.Pow(1+monthlyRate, float64(in.TermMonths))
		payment = in.Principal * monthlyRate * factor / (factor - 1)
	}

	result := LoanResult{
		MonthlyPayment: payment,
		TotalPayment:   payment * float64(in.TermMonths),
		Schedule:       make([]AmortizationRow, 0, in.TermMonths),
	}
	result.TotalInterest = result.TotalPayment - in.Principal

	balance := in.Principal
	for month := 1; month <= in.TermMonths; month++ {
		interest := balance * monthlyRate
		principal := payment - interest
		balance -= principal

		// The final row absorbs floating-point drift.
		if month == in.TermMonths || balance < 0 {
			balance = 0
		}

		result.Schedule = append(result.Schedule, AmortizationRow{
			Month:            month,
			Payment:          payment,
			PrincipalPortion: principal,
			InterestPortion:  interest,
			RemainingBalance: balance,
		})
	}

	return result, nil
}
