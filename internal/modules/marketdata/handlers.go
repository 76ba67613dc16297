package marketdata

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/quantdesk/quantdesk/internal/api"
	"github.com/quantdesk/quantdesk/internal/domain"
)

// Handlers provides HTTP handlers for ticker resources and quote batches
type Handlers struct {
	service *Service
	log     zerolog.Logger
}

// NewHandlers creates a new market data handlers instance
func NewHandlers(service *Service, log zerolog.Logger) *Handlers {
	return &Handlers{
		service: service,
		log:     log.With().Str("module", "marketdata_handlers").Logger(),
	}
}

// RegisterRoutes registers ticker resource and quote routes
func (h *Handlers) RegisterRoutes(r chi.Router) {
	r.Route("/tickers/{ticker}", func(r chi.Router) {
		r.Get("/history", h.History)
		r.Get("/info", h.Info)
		r.Get("/quote", h.Quote)
	})
	r.Post("/quotes", h.Quotes)
}

// History handles GET /tickers/{ticker}/history
func (h *Handlers) History(w http.ResponseWriter, r *http.Request) {
	series, err := h.service.GetPriceSeries(chi.URLParam(r, "ticker"))
	if err != nil {
		api.WriteError(w, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, series)
}

// Info handles GET /tickers/{ticker}/info
func (h *Handlers) Info(w http.ResponseWriter, r *http.Request) {
	info, err := h.service.GetFundamentals(chi.URLParam(r, "ticker"))
	if err != nil {
		api.WriteError(w, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, info)
}

// Quote handles GET /tickers/{ticker}/quote
func (h *Handlers) Quote(w http.ResponseWriter, r *http.Request) {
	quote, err := h.service.GetQuote(chi.URLParam(r, "ticker"))
	if err != nil {
		api.WriteError(w, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, quote)
}

type quotesRequest struct {
	Tickers []string `json:"tickers"`
}

// Quotes handles POST /quotes. Tickers the upstream does not know are
// omitted from the response.
func (h *Handlers) Quotes(w http.ResponseWriter, r *http.Request) {
	var req quotesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteError(w, domain.NewError(domain.ErrInvalidParameter, "body", "invalid JSON: %v", err))
		return
	}
	if len(req.Tickers) == 0 {
		api.WriteError(w, domain.InvalidParameter("tickers", "at least one ticker is required"))
		return
	}
	quotes, err := h.service.GetQuotesNow(req.Tickers)
	if err != nil {
		api.WriteError(w, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, quotes)
}
