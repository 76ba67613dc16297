package indicators

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/quantdesk/quantdesk/internal/api"
	"github.com/quantdesk/quantdesk/internal/config"
)

// Handlers provides HTTP handlers for indicator endpoints
type Handlers struct {
	service  *Service
	defaults config.IndicatorDefaults
	log      zerolog.Logger
}

// NewHandlers creates a new indicators handlers instance
func NewHandlers(service *Service, defaults config.IndicatorDefaults, log zerolog.Logger) *Handlers {
	return &Handlers{
		service:  service,
		defaults: defaults,
		log:      log.With().Str("module", "indicators_handlers").Logger(),
	}
}

// RegisterRoutes registers all indicator routes
func (h *Handlers) RegisterRoutes(r chi.Router) {
	r.Route("/indicators/{ticker}", func(r chi.Router) {
		r.Get("/rsi", h.RSI)
		r.Get("/momentum", h.Momentum)
		r.Get("/macd", h.MACD)
		r.Get("/bollinger", h.Bollinger)
		r.Get("/volatility", h.Volatility)
	})
}

// RSI handles GET /indicators/{ticker}/rsi?period=14
func (h *Handlers) RSI(w http.ResponseWriter, r *http.Request) {
	ticker := chi.URLParam(r, "ticker")
	period := queryInt(r, "period", h.defaults.RSIPeriod)

	result, err := h.service.RSI(ticker, period)
	if err != nil {
		api.WriteError(w, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, result)
}

// Momentum handles GET /indicators/{ticker}/momentum?period=10
func (h *Handlers) Momentum(w http.ResponseWriter, r *http.Request) {
	ticker := chi.URLParam(r, "ticker")
	period := queryInt(r, "period", h.defaults.MomentumPeriod)

	result, err := h.service.Momentum(ticker, period)
	if err != nil {
		api.WriteError(w, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, result)
}

// MACD handles GET /indicators/{ticker}/macd?fast=12&slow=26&signal=9
func (h *Handlers) MACD(w http.ResponseWriter, r *http.Request) {
	ticker := chi.URLParam(r, "ticker")
	fast := queryInt(r, "fast", h.defaults.MACDFast)
	slow := queryInt(r, "slow", h.defaults.MACDSlow)
	signal := queryInt(r, "signal", h.defaults.MACDSignal)

	result, err := h.service.MACD(ticker, fast, slow, signal)
	if err != nil {
		api.WriteError(w, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, result)
}

// Bollinger handles GET /indicators/{ticker}/bollinger?period=20&multiplier=2
func (h *Handlers) Bollinger(w http.ResponseWriter, r *http.Request) {
	ticker := chi.URLParam(r, "ticker")
	period := queryInt(r, "period", h.defaults.BollingerPeriod)
	multiplier := queryFloat(r, "multiplier", h.defaults.BollingerMultiplier)

	result, err := h.service.Bollinger(ticker, period, multiplier)
	if err != nil {
		api.WriteError(w, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, result)
}

// Volatility handles GET /indicators/{ticker}/volatility?window=30
func (h *Handlers) Volatility(w http.ResponseWriter, r *http.Request) {
	ticker := chi.URLParam(r, "ticker")
	window := queryInt(r, "window", 0)

	result, err := h.service.Volatility(ticker, window)
	if err != nil {
		api.WriteError(w, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, result)
}

func queryInt(r *http.Request, key string, fallback int) int {
	if v := r.URL.Query().Get(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func queryFloat(r *http.Request, key string, fallback float64) float64 {
	if v := r.URL.Query().Get(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}
