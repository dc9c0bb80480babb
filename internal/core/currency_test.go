package core

import (
	"errors"
	"math"
	"testing"
)

func TestConvertSameCurrencyIsIdentity(t *testing.T) {
	for _, amount := range []float64{0, 1, 450.50, 99999.99} {
		got, err := Convert(amount, "USD", "USD", DefaultRates)
		if err != nil {
			t.Fatalf("Convert(%v, USD, USD) error: %v", amount, err)
		}
		if got != amount {
			t.Fatalf("Convert(%v, USD, USD) = %v, want exact identity", amount, got)
		}
	}
}

func TestConvertViaBase(t *testing.T) {
	// 1000 INR at 0.012 USD/INR.
	got, err := Convert(1000, "INR", "USD", DefaultRates)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(got-12) > 1e-9 {
		t.Fatalf("Convert(1000, INR, USD) = %v, want 12", got)
	}

	// 12 USD back to INR.
	got, err = Convert(12, "USD", "INR", DefaultRates)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(got-1000) > 1e-9 {
		t.Fatalf("Convert(12, USD, INR) = %v, want 1000", got)
	}
}

func TestConvertRoundTrip(t *testing.T) {
	codes := []string{"INR", "USD", "EUR"}
	for _, from := range codes {
		for _, to := range codes {
			if from == to {
				continue
			}
			there, err := Convert(123.45, from, to, DefaultRates)
			if err != nil {
				t.Fatalf("Convert(%s->%s): %v", from, to, err)
			}
			back, err := Convert(there, to, from, DefaultRates)
			if err != nil {
				t.Fatalf("Convert(%s->%s): %v", to, from, err)
			}
			if math.Abs(back-123.45) > 1e-9 {
				t.Errorf("round trip %s->%s->%s = %v, want 123.45", from, to, from, back)
			}
		}
	}
}

func TestConvertUnknownCurrency(t *testing.T) {
	if _, err := Convert(10, "GBP", "INR", DefaultRates); !errors.Is(err, ErrUnknownCurrency) {
		t.Fatalf("expected ErrUnknownCurrency for from, got %v", err)
	}
	if _, err := Convert(10, "INR", "JPY", DefaultRates); !errors.Is(err, ErrUnknownCurrency) {
		t.Fatalf("expected ErrUnknownCurrency for to, got %v", err)
	}
	// Same unknown code on both sides never consults the table.
	if _, err := Convert(10, "XXX", "XXX", DefaultRates); err != nil {
		t.Fatalf("same-currency conversion should not fail, got %v", err)
	}
}
