package http

import (
	"net/http"
	"strings"

	"github.com/adarshpathak3408/FinFlow/internal/extract"
	"github.com/adarshpathak3408/FinFlow/internal/log"
)

type extractRequest struct {
	Text string `json:"text"`
}

type receiptResponse struct {
	Amount   string `json:"amount"`
	Date     string `json:"date"`
	Merchant string `json:"merchant"`
	Category string `json:"category"`
}

type speechResponse struct {
	Amount   string `json:"amount"`
	Category string `json:"category"`
	Type     string `json:"type"`
}

// handleExtractReceipt recovers transaction fields from OCR text. The
// client runs the OCR; only the text arrives here.
func (s *Server) handleExtractReceipt(w http.ResponseWriter, r *http.Request) {
	var req extractRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		writeError(w, http.StatusBadRequest, "text is required")
		return
	}

	result := extract.FromReceipt(req.Text)
	s.logger.InfoContext(r.Context(), "Receipt extracted",
		log.FieldOperation, log.OpExtract,
		log.FieldAmount, result.Amount,
		log.FieldCategory, result.Category)

	writeJSON(w, http.StatusOK, receiptResponse{
		Amount:   result.Amount,
		Date:     result.Date,
		Merchant: result.Merchant,
		Category: result.Category,
	})
}

// handleExtractSpeech recovers transaction fields from a voice transcript.
func (s *Server) handleExtractSpeech(w http.ResponseWriter, r *http.Request) {
	var req extractRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		writeError(w, http.StatusBadRequest, "text is required")
		return
	}

	result := extract.FromSpeech(req.Text)
	writeJSON(w, http.StatusOK, speechResponse{
		Amount:   result.Amount,
		Category: result.Category,
		Type:     string(result.Type),
	})
}
