package portfolio

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/quantdesk/quantdesk/internal/api"
	"github.com/quantdesk/quantdesk/internal/domain"
)

// Handlers provides HTTP handlers for portfolio construction and evaluation
type Handlers struct {
	builder   *Builder
	evaluator *Evaluator
	log       zerolog.Logger
}

// NewHandlers creates a new portfolio handlers instance
func NewHandlers(builder *Builder, evaluator *Evaluator, log zerolog.Logger) *Handlers {
	return &Handlers{
		builder:   builder,
		evaluator: evaluator,
		log:       log.With().Str("module", "portfolio_handlers").Logger(),
	}
}

// RegisterRoutes registers portfolio routes
func (h *Handlers) RegisterRoutes(r chi.Router) {
	r.Post("/portfolio/create", h.Create)
	r.Post("/portfolio/evaluate", h.Evaluate)
}

type createRequest struct {
	Name     string             `json:"name"`
	Holdings map[string]float64 `json:"holdings"`
	Meta     map[string]string  `json:"meta,omitempty"`
}

type evaluateRequest struct {
	Holdings map[string]float64 `json:"holdings"`
}

type createResponse struct {
	*Portfolio
	TotalWeight float64 `json:"total_weight"`
	AssetCount  int     `json:"asset_count"`
}

// Create handles POST /portfolio/create
func (h *Handlers) Create(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteError(w, domain.NewError(domain.ErrInvalidParameter, "body", "invalid JSON: %v", err))
		return
	}
	p, err := h.builder.Build(req.Name, req.Holdings, req.Meta)
	if err != nil {
		api.WriteError(w, err)
		return
	}
	api.WriteJSON(w, http.StatusCreated, createResponse{
		Portfolio:   p,
		TotalWeight: p.TotalWeight(),
		AssetCount:  len(p.Holdings),
	})
}

// Evaluate handles POST /portfolio/evaluate
func (h *Handlers) Evaluate(w http.ResponseWriter, r *http.Request) {
	var req evaluateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteError(w, domain.NewError(domain.ErrInvalidParameter, "body", "invalid JSON: %v", err))
		return
	}
	p, err := h.builder.Build("", req.Holdings, nil)
	if err != nil {
		// builder rejections surface as invalid_portfolio for evaluation
		var derr *domain.Error
		if errors.As(err, &derr) && derr.Kind == domain.ErrInvalidComposition {
			err = domain.NewError(domain.ErrInvalidPortfolio, derr.Field, "%s", derr.Msg)
		}
		api.WriteError(w, err)
		return
	}
	report, err := h.evaluator.Evaluate(p)
	if err != nil {
		api.WriteError(w, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, report)
}
