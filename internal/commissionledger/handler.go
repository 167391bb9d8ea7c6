package commissionledger

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/NovaSiteWorks/api-referral/internal/notification"
	"github.com/gorilla/mux"
)

type Handler struct {
	Repo    *Repository
	Service *Service
}

func NewHandler(repo *Repository) *Handler {
	return &Handler{Repo: repo, Service: NewService(repo)}
}

// DTO for POST /influencers/{id}/payouts
type PayoutRequestDTO struct {
	EntryIDs             []uint  `json:"entryIds"`
	PaymentAmount        float64 `json:"paymentAmount"`
	PaymentMethod        string  `json:"paymentMethod"`
	TransactionReference string  `json:"transactionReference"`
	Notes                string  `json:"notes"`
}

// GET /influencers/{id}/commissions?status=pending
func (h *Handler) ListEntries(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "invalid influencer ID", http.StatusBadRequest)
		return
	}

	status := r.URL.Query().Get("status")
	entries, err := h.Repo.ListByInfluencer(uint(id), status)
	if err != nil {
		http.Error(w, "failed to list commission entries", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(entries)
}

// POST /influencers/{id}/payouts
func (h *Handler) CreatePayout(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "invalid influencer ID", http.StatusBadRequest)
		return
	}

	var in PayoutRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, "malformed JSON", http.StatusBadRequest)
		return
	}

	payment, err := h.Service.PayEntries(uint(id), in.EntryIDs, in.PaymentAmount, in.PaymentMethod, in.TransactionReference, in.Notes)
	if err != nil {
		switch {
		case errors.Is(err, ErrEntryNotFound):
			http.Error(w, err.Error(), http.StatusNotFound)
		case errors.Is(err, ErrInvalidTransition):
			http.Error(w, err.Error(), http.StatusConflict)
		case errors.Is(err, ErrAmountMismatch):
			http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		default:
			http.Error(w, "failed to record payout", http.StatusInternalServerError)
		}
		return
	}

	notification.SendPayoutAlert(payment.InfluencerID, payment.PaymentAmount, payment.TransactionReference)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(payment)
}

// GET /influencers/{id}/payouts
func (h *Handler) ListPayouts(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "invalid influencer ID", http.StatusBadRequest)
		return
	}

	payments, err := h.Repo.ListPaymentsByInfluencer(uint(id))
	if err != nil {
		http.Error(w, "failed to list payouts", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(payments)
}

// POST /commissions/{id}/cancel
func (h *Handler) CancelEntry(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "invalid commission entry ID", http.StatusBadRequest)
		return
	}

	var payload struct {
		Reason string `json:"reason"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "malformed JSON", http.StatusBadRequest)
		return
	}

	entry, err := h.Service.Cancel(uint(id), payload.Reason)
	if err != nil {
		switch {
		case errors.Is(err, ErrEntryNotFound):
			http.Error(w, "commission entry not found", http.StatusNotFound)
		case errors.Is(err, ErrInvalidTransition):
			http.Error(w, err.Error(), http.StatusConflict)
		default:
			http.Error(w, "failed to cancel commission entry", http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(entry)
}
