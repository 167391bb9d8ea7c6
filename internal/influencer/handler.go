package influencer

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/NovaSiteWorks/api-referral/internal/commissioncalc"
	"github.com/NovaSiteWorks/api-referral/internal/commissionrule"
	"github.com/gorilla/mux"
	"gorm.io/gorm"
)

// Handler serves influencer CRUD plus the commission preview used by the
// admin UI before saving an override.
type Handler struct {
	Repo      *Repository
	Overrides *commissionrule.Repository
}

func NewHandler(db *gorm.DB) *Handler {
	return &Handler{
		Repo:      NewRepository(db),
		Overrides: commissionrule.NewRepository(db),
	}
}

// POST /influencers
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req createInfluencerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "malformed JSON", http.StatusBadRequest)
		return
	}

	var i Influencer
	req.apply(&i)

	if err := i.DefaultRule().Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.Repo.Create(&i); err != nil {
		if errors.Is(err, ErrCodeInUse) {
			http.Error(w, "referral code already in use", http.StatusConflict)
			return
		}
		http.Error(w, "failed to create influencer", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(i)
}

// GET /influencers
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.Repo.List()
	if err != nil {
		http.Error(w, "failed to list influencers", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(list)
}

// GET /influencers/{id}
func (h *Handler) FindByID(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "invalid influencer ID", http.StatusBadRequest)
		return
	}

	i, err := h.Repo.FindByID(uint(id))
	if err != nil {
		http.Error(w, "influencer not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(i)
}

// PUT /influencers/{id}
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "invalid influencer ID", http.StatusBadRequest)
		return
	}

	existing, err := h.Repo.FindByID(uint(id))
	if err != nil {
		http.Error(w, "influencer not found", http.StatusNotFound)
		return
	}

	var req createInfluencerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "malformed JSON", http.StatusBadRequest)
		return
	}
	req.apply(existing)

	if err := existing.DefaultRule().Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.Repo.Update(existing); err != nil {
		if errors.Is(err, ErrCodeInUse) {
			http.Error(w, "referral code already in use", http.StatusConflict)
			return
		}
		http.Error(w, "failed to update influencer", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(existing)
}

// DELETE /influencers/{id}
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "invalid influencer ID", http.StatusBadRequest)
		return
	}

	if err := h.Repo.Delete(uint(id)); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			http.Error(w, "influencer not found", http.StatusNotFound)
			return
		}
		http.Error(w, "failed to delete influencer", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// POST /influencers/{id}/preview
// Resolves the effective rule for the given customer/code and calculates
// the commission for the supplied financial context. Nothing is persisted.
func (h *Handler) Preview(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "invalid influencer ID", http.StatusBadRequest)
		return
	}

	i, err := h.Repo.FindByID(uint(id))
	if err != nil {
		http.Error(w, "influencer not found", http.StatusNotFound)
		return
	}

	var req PreviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "malformed JSON", http.StatusBadRequest)
		return
	}

	rule, err := h.Overrides.Resolve(i.ID, i.DefaultRule(), req.CustomerID, req.ReferralCode, time.Now())
	if err != nil {
		http.Error(w, "failed to resolve commission rule", http.StatusInternalServerError)
		return
	}

	result, err := commissioncalc.Calculate(rule, commissioncalc.Context{
		ProjectValue:          req.ProjectValue,
		PaymentsReceivedTotal: req.PaymentsReceivedTotal,
		FirstPaymentAmount:    req.FirstPaymentAmount,
	})
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(PreviewResponse{Rule: rule, Result: result})
}
