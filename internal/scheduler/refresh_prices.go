package scheduler

import "github.com/rs/zerolog"

// PriceRefresher re-fetches daily bars for every cached ticker.
type PriceRefresher interface {
	RefreshAll() error
}

// RefreshPricesJob keeps the SQLite price cache warm so analysis requests
// rarely have to wait on the upstream.
type RefreshPricesJob struct {
	refresher PriceRefresher
	log       zerolog.Logger
}

// NewRefreshPricesJob creates the price refresh job.
func NewRefreshPricesJob(refresher PriceRefresher, log zerolog.Logger) *RefreshPricesJob {
	return &RefreshPricesJob{
		refresher: refresher,
		log:       log.With().Str("component", "refresh_prices").Logger(),
	}
}

// Name returns the job name
func (j *RefreshPricesJob) Name() string { return "refresh_prices" }

// Run refreshes the cached series for all known tickers
func (j *RefreshPricesJob) Run() error {
	return j.refresher.RefreshAll()
}
