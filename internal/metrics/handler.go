package metrics

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"gorm.io/gorm"
)

type Handler struct {
	Agg *Aggregator
}

func NewHandler(db *gorm.DB) *Handler {
	return &Handler{Agg: NewAggregator(db)}
}

// GET /metrics
func (h *Handler) Global(w http.ResponseWriter, r *http.Request) {
	g, err := h.Agg.Global()
	if err != nil {
		http.Error(w, "failed to compute metrics", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(g)
}

// GET /metrics/influencers
// Per-influencer breakdown plus the totals accumulated from it.
func (h *Handler) PerInfluencer(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Agg.ForAll()
	if err != nil {
		http.Error(w, "failed to compute metrics", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(struct {
		Influencers []InfluencerStats `json:"influencers"`
		Totals      GlobalStats       `json:"totals"`
	}{Influencers: stats, Totals: AccumulateGlobal(stats)})
}

// GET /influencers/{id}/summary
func (h *Handler) InfluencerSummary(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "invalid influencer ID", http.StatusBadRequest)
		return
	}

	stats, err := h.Agg.ForInfluencer(uint(id))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			http.Error(w, "influencer not found", http.StatusNotFound)
			return
		}
		http.Error(w, "failed to compute summary", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(stats)
}
