package core

import (
	"errors"
	"fmt"
)

// BaseCurrency is the pivot for cross-currency conversion. Its rate in any
// RateTable must be 1.
const BaseCurrency = "INR"

// RateTable maps a currency code to its rate relative to BaseCurrency.
type RateTable map[string]float64

// DefaultRates is the static configuration shipped with the application.
// Rates are not user-editable at runtime.
var DefaultRates = RateTable{
	"INR": 1,
	"USD": 0.012,
	"EUR": 0.011,
}

var ErrUnknownCurrency = errors.New("unknown currency code")

// Convert converts amount between two currencies via BaseCurrency. A
// same-currency conversion is the identity and applies no rounding.
func Convert(amount float64, from, to string, rates RateTable) (float64, error) {
	if from == to {
		return amount, nil
	}

	fromRate, ok := rates[from]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownCurrency, from)
	}
	toRate, ok := rates[to]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownCurrency, to)
	}

	inBase := amount
	if from != BaseCurrency {
		inBase = amount / fromRate
	}
	if to == BaseCurrency {
		return inBase, nil
	}
	return inBase * toRate, nil
}

// Currencies returns the codes present in the table. Handy for validation
// at the request boundary.
func (r RateTable) Currencies() []string {
	codes := make([]string, 0, len(r))
	for code := range r {
		codes = append(codes, code)
	}
	return codes
}
