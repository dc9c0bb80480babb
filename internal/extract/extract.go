// Package extract recovers transaction fields from unstructured text:
// OCR output from receipt scans and final transcripts from speech capture.
// Extraction is best-effort; absent fields are zero values, never errors.
package extract

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/adarshpathak3408/FinFlow/internal/core"
)

var (
	receiptAmountRegex = regexp.MustCompile(`(?i)(?:total|amount|sum)(?:\s*:)?\s*(?:Rs\.?|₹|INR|USD|\$|EUR|€)?\s*(\d+(?:\.\d+)?)`)
	receiptDateRegex   = regexp.MustCompile(`(\d{1,2}[-/.]\d{1,2}[-/.]\d{2,4})`)
	dateSeparatorRegex = regexp.MustCompile(`[-/.]`)
	digitRunRegex      = regexp.MustCompile(`\d+`)
)

type (
	// ReceiptResult holds fields recovered from OCR text. Amount keeps the
	// matched numeric string so the form layer can present it unparsed.
	ReceiptResult struct {
		Amount   string
		Date     string
		Merchant string
		Category string
	}

	// SpeechResult holds fields recovered from a voice transcript.
	SpeechResult struct {
		Amount   string
		Category string
		Type     core.TransactionType
	}
)

// FromReceipt parses raw OCR text. The amount is the first number following
// a total/amount/sum label; the date is normalized to YYYY-MM-DD, falling
// back to today; the merchant is the first non-empty line; the category is
// classified from the merchant line.
func FromReceipt(text string) ReceiptResult {
	result := ReceiptResult{
		Date: time.Now().Format("2006-01-02"),
	}

	if m := receiptAmountRegex.FindStringSubmatch(text); len(m) > 1 {
		result.Amount = m[1]
	}

	if m := receiptDateRegex.FindStringSubmatch(text); len(m) > 1 {
		result.Date = normalizeDate(m[1])
	}

	for _, line := range strings.Split(text, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			result.Merchant = trimmed
			break
		}
	}

	result.Category = core.Classify(result.Merchant)

	return result
}

// normalizeDate converts a D[-/.]D[-/.]D token to YYYY-MM-DD. A 4-digit
// trailing group means day-month-year; otherwise month-day-year with 2-digit
// years assumed 2000s.
func normalizeDate(token string) string {
	parts := dateSeparatorRegex.Split(token, -1)
	if len(parts) != 3 {
		return time.Now().Format("2006-01-02")
	}

	var day, month, year string
	if len(parts[2]) == 4 {
		day, month, year = parts[0], parts[1], parts[2]
	} else {
		month, day = parts[0], parts[1]
		year = parts[2]
		if len(year) == 2 {
			year = "20" + year
		}
	}

	return fmt.Sprintf("%s-%s-%s", year, pad2(month), pad2(day))
}

// pad2 left-pads a day or month token to two digits.
func pad2(s string) string {
	if len(s) < 2 {
		return "0" + s
	}
	return s
}

// FromSpeech parses a voice transcript. The amount is the first run of
// digits. Category matching tests raw category names (not keyword lists):
// the expense taxonomy is scanned first, then the income taxonomy. Both
// scans run unconditionally, so an income category name anywhere in the
// transcript overrides an earlier expense hit and flips the type to income.
func FromSpeech(text string) SpeechResult {
	result := SpeechResult{Type: core.Expense}

	if m := digitRunRegex.FindString(text); m != "" {
		result.Amount = m
	}

	lower := strings.ToLower(text)

	for _, category := range core.ExpenseCategories {
		if strings.Contains(lower, strings.ToLower(category)) {
			result.Category = category
			break
		}
	}

	for _, category := range core.IncomeCategories {
		if strings.Contains(lower, strings.ToLower(category)) {
			result.Category = category
			result.Type = core.Income
			break
		}
	}

	return result
}
