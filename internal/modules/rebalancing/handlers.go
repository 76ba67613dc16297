package rebalancing

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/quantdesk/quantdesk/internal/api"
	"github.com/quantdesk/quantdesk/internal/domain"
)

// Handlers provides the HTTP handler for rebalance plans
type Handlers struct {
	rebalancer       *Rebalancer
	defaultThreshold float64
	log              zerolog.Logger
}

// NewHandlers creates a new rebalancing handlers instance
func NewHandlers(rebalancer *Rebalancer, defaultThreshold float64, log zerolog.Logger) *Handlers {
	return &Handlers{
		rebalancer:       rebalancer,
		defaultThreshold: defaultThreshold,
		log:              log.With().Str("module", "rebalancing_handlers").Logger(),
	}
}

// RegisterRoutes registers rebalancing routes
func (h *Handlers) RegisterRoutes(r chi.Router) {
	r.Post("/portfolio/rebalance", h.Rebalance)
}

type rebalanceRequest struct {
	Current   map[string]float64 `json:"current"`
	Target    map[string]float64 `json:"target,omitempty"`
	Threshold *float64           `json:"threshold,omitempty"`
	Value     float64            `json:"value,omitempty"`
}

// Rebalance handles POST /portfolio/rebalance
func (h *Handlers) Rebalance(w http.ResponseWriter, r *http.Request) {
	var req rebalanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteError(w, domain.NewError(domain.ErrInvalidParameter, "body", "invalid JSON: %v", err))
		return
	}
	threshold := h.defaultThreshold
	if req.Threshold != nil {
		threshold = *req.Threshold
	}
	plan, err := h.rebalancer.Rebalance(req.Current, req.Target, threshold, req.Value)
	if err != nil {
		api.WriteError(w, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, plan)
}
