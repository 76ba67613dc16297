package optimization

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/quantdesk/quantdesk/internal/api"
	"github.com/quantdesk/quantdesk/internal/domain"
)

// Handlers provides the HTTP handler for allocation proposals
type Handlers struct {
	optimizer *Optimizer
	log       zerolog.Logger
}

// NewHandlers creates a new optimization handlers instance
func NewHandlers(optimizer *Optimizer, log zerolog.Logger) *Handlers {
	return &Handlers{
		optimizer: optimizer,
		log:       log.With().Str("module", "optimization_handlers").Logger(),
	}
}

// RegisterRoutes registers optimization routes
func (h *Handlers) RegisterRoutes(r chi.Router) {
	r.Post("/portfolio/propose", h.Propose)
}

// Propose handles POST /portfolio/propose
func (h *Handlers) Propose(w http.ResponseWriter, r *http.Request) {
	var profile RiskProfile
	if err := json.NewDecoder(r.Body).Decode(&profile); err != nil {
		api.WriteError(w, domain.NewError(domain.ErrInvalidParameter, "body", "invalid JSON: %v", err))
		return
	}
	proposal, err := h.optimizer.Propose(profile, DefaultUniverse(profile.Objective))
	if err != nil {
		api.WriteError(w, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, proposal)
}
