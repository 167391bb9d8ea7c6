package referral

import (
	"encoding/json"
	"errors"
	"net/http"
)

type Handler struct {
	Service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{Service: service}
}

// POST /referrals/click
// Unknown codes answer 204: the redirector should not leak which codes
// exist, and a dead link is not an error worth surfacing there.
func (h *Handler) RecordClick(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Code string `json:"code"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || payload.Code == "" {
		http.Error(w, "malformed JSON", http.StatusBadRequest)
		return
	}

	click, err := h.Service.RecordClick(payload.Code)
	if err != nil {
		if errors.Is(err, ErrUnknownCode) {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		http.Error(w, "failed to record click", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(click)
}

// POST /referrals/convert
func (h *Handler) RecordConversion(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Code       string `json:"code"`
		CustomerID uint   `json:"customerId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || payload.Code == "" || payload.CustomerID == 0 {
		http.Error(w, "malformed JSON", http.StatusBadRequest)
		return
	}

	click, err := h.Service.RecordConversion(payload.Code, payload.CustomerID)
	if err != nil {
		if errors.Is(err, ErrUnknownCode) {
			http.Error(w, "unknown referral code", http.StatusNotFound)
			return
		}
		http.Error(w, "failed to record conversion", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(click)
}
