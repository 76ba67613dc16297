package analysis

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/quantdesk/quantdesk/internal/api"
	"github.com/quantdesk/quantdesk/internal/modules/seasonality"
	"github.com/quantdesk/quantdesk/internal/modules/trend"
)

// Handlers provides HTTP handlers for the analysis endpoints
type Handlers struct {
	trend       *trend.Analyzer
	seasonality *seasonality.Analyzer
	composite   *Analyzer
	log         zerolog.Logger
}

// NewHandlers creates a new analysis handlers instance
func NewHandlers(trendAnalyzer *trend.Analyzer, seasonalityAnalyzer *seasonality.Analyzer, composite *Analyzer, log zerolog.Logger) *Handlers {
	return &Handlers{
		trend:       trendAnalyzer,
		seasonality: seasonalityAnalyzer,
		composite:   composite,
		log:         log.With().Str("module", "analysis_handlers").Logger(),
	}
}

// RegisterRoutes registers all analysis routes
func (h *Handlers) RegisterRoutes(r chi.Router) {
	r.Route("/analysis/{ticker}", func(r chi.Router) {
		r.Get("/trend", h.Trend)
		r.Get("/seasonality", h.Seasonality)
		r.Get("/complete", h.Complete)
	})
}

// Trend handles GET /analysis/{ticker}/trend
func (h *Handlers) Trend(w http.ResponseWriter, r *http.Request) {
	result, err := h.trend.Analyze(chi.URLParam(r, "ticker"))
	if err != nil {
		api.WriteError(w, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, result)
}

// Seasonality handles GET /analysis/{ticker}/seasonality
func (h *Handlers) Seasonality(w http.ResponseWriter, r *http.Request) {
	profile, err := h.seasonality.Analyze(chi.URLParam(r, "ticker"))
	if err != nil {
		api.WriteError(w, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, profile)
}

// Complete handles GET /analysis/{ticker}/complete
func (h *Handlers) Complete(w http.ResponseWriter, r *http.Request) {
	result, err := h.composite.Analyze(chi.URLParam(r, "ticker"))
	if err != nil {
		api.WriteError(w, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, result)
}
