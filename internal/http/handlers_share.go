package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/adarshpathak3408/FinFlow/internal/log"
	"github.com/adarshpathak3408/FinFlow/internal/share"
	"github.com/adarshpathak3408/FinFlow/internal/storage"
)

type (
	shareFriendRequest struct {
		Name  string `json:"name"`
		Email string `json:"email"`
	}

	shareRequest struct {
		TransactionID string               `json:"transaction_id"`
		Friends       []shareFriendRequest `json:"friends"`
	}

	shareFriendJSON struct {
		Name    string  `json:"name"`
		Email   string  `json:"email,omitempty"`
		Share   float64 `json:"share"`
		UPILink string  `json:"upi_link,omitempty"`
	}

	shareResponse struct {
		Total     float64           `json:"total"`
		YourShare float64           `json:"your_share"`
		Friends   []shareFriendJSON `json:"friends"`
		Summary   string            `json:"summary"`
	}
)

// handleShare splits a transaction equally between the payer and the named
// friends, attaching a UPI payment link per friend when a VPA is configured.
func (s *Server) handleShare(w http.ResponseWriter, r *http.Request) {
	var req shareRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	tx, err := s.reader.GetTransaction(r.Context(), req.TransactionID)
	if errors.Is(err, storage.ErrNotFound) {
		writeError(w, http.StatusNotFound, "transaction not found")
		return
	}
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Share lookup failed", log.FieldError, err)
		writeError(w, http.StatusInternalServerError, "could not load transaction")
		return
	}

	friends := make([]share.Friend, 0, len(req.Friends))
	for _, f := range req.Friends {
		name := strings.TrimSpace(f.Name)
		if name == "" {
			continue
		}
		friends = append(friends, share.Friend{Name: name, Email: strings.TrimSpace(f.Email)})
	}

	split, err := share.SplitEqually(tx.Amount, friends)
	if errors.Is(err, share.ErrNoFriends) {
		writeError(w, http.StatusUnprocessableEntity, "at least one friend is required")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "could not compute split")
		return
	}

	resp := shareResponse{
		Total:     split.Total,
		YourShare: split.YourShare,
		Friends:   make([]shareFriendJSON, 0, len(split.Friends)),
		Summary:   split.SummaryText(tx.Description),
	}
	for _, f := range split.Friends {
		entry := shareFriendJSON{Name: f.Name, Email: f.Email, Share: f.Share}
		if s.upiVPA != "" {
			entry.UPILink = share.UPILink(s.upiVPA, s.payeeName, f.Share, tx.Description, f.Name)
		}
		resp.Friends = append(resp.Friends, entry)
	}

	writeJSON(w, http.StatusOK, resp)
}
