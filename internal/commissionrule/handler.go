package commissionrule

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"gorm.io/gorm"
)

type Handler struct {
	Repo *Repository
}

func NewHandler(repo *Repository) *Handler {
	return &Handler{Repo: repo}
}

// DTO for POST /influencers/{id}/overrides and PUT /overrides/{oid}
type OverrideDTO struct {
	CustomerID        *uint      `json:"customerId"`
	ReferralCode      string     `json:"referralCode"`
	CommissionType    string     `json:"commissionType"`
	Rate              float64    `json:"rate"`
	FixedRate         float64    `json:"fixedRate"`
	CalculationMethod string     `json:"calculationMethod"`
	Trigger           string     `json:"trigger"`
	Cap               *float64   `json:"cap"`
	Minimum           *float64   `json:"minimum"`
	ValidFrom         *time.Time `json:"validFrom"`
	ValidUntil        *time.Time `json:"validUntil"`
}

func (dto OverrideDTO) apply(o *Override) {
	o.CustomerID = dto.CustomerID
	o.ReferralCode = dto.ReferralCode
	o.CommissionType = dto.CommissionType
	o.Rate = dto.Rate
	o.FixedRate = dto.FixedRate
	o.CalculationMethod = dto.CalculationMethod
	o.Trigger = dto.Trigger
	o.Cap = dto.Cap
	o.Minimum = dto.Minimum
	o.ValidFrom = dto.ValidFrom
	o.ValidUntil = dto.ValidUntil
}

// POST /influencers/{id}/overrides
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "invalid influencer ID", http.StatusBadRequest)
		return
	}

	var in OverrideDTO
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, "malformed JSON", http.StatusBadRequest)
		return
	}

	o := Override{InfluencerID: uint(id)}
	in.apply(&o)

	if err := o.Rule().Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if o.ValidFrom != nil && o.ValidUntil != nil && o.ValidUntil.Before(*o.ValidFrom) {
		http.Error(w, "validity window ends before it starts", http.StatusBadRequest)
		return
	}

	// Raw table name: the influencer package imports this one for its rule
	// types, so importing it back here would be an import cycle.
	var count int64
	if err := h.Repo.DB.Table("influencers").Where("id = ? AND deleted_at IS NULL", id).Count(&count).Error; err != nil || count == 0 {
		http.Error(w, "influencer not found", http.StatusNotFound)
		return
	}

	if err := h.Repo.Create(&o); err != nil {
		http.Error(w, "failed to create override", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(o)
}

// GET /influencers/{id}/overrides
func (h *Handler) ListForInfluencer(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "invalid influencer ID", http.StatusBadRequest)
		return
	}

	list, err := h.Repo.ListForInfluencer(uint(id))
	if err != nil {
		http.Error(w, "failed to list overrides", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(list)
}

// PUT /overrides/{oid}
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	oid, err := strconv.Atoi(mux.Vars(r)["oid"])
	if err != nil {
		http.Error(w, "invalid override ID", http.StatusBadRequest)
		return
	}

	existing, err := h.Repo.FindByID(uint(oid))
	if err != nil {
		http.Error(w, "override not found", http.StatusNotFound)
		return
	}

	var in OverrideDTO
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, "malformed JSON", http.StatusBadRequest)
		return
	}
	in.apply(existing)

	if err := existing.Rule().Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.Repo.Update(existing); err != nil {
		http.Error(w, "failed to update override", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(existing)
}

// DELETE /overrides/{oid}
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	oid, err := strconv.Atoi(mux.Vars(r)["oid"])
	if err != nil {
		http.Error(w, "invalid override ID", http.StatusBadRequest)
		return
	}

	if err := h.Repo.DeleteByID(uint(oid)); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			http.Error(w, "override not found", http.StatusNotFound)
			return
		}
		http.Error(w, "failed to delete override", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
