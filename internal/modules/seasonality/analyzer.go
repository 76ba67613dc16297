// Package seasonality aggregates historical daily returns by calendar month
// to surface recurring patterns.
package seasonality

import (
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/quantdesk/quantdesk/internal/domain"
	"github.com/quantdesk/quantdesk/pkg/formulas"
)

// Buckets backed by fewer than this many distinct years are flagged.
const MinYearsForConfidence = 2

// Bucket is the aggregated return profile of one calendar month.
type Bucket struct {
	Month         time.Month `json:"month"`
	MeanReturn    float64    `json:"mean_return"`    // mean daily return in the month, percent
	PositiveShare float64    `json:"positive_share"` // fraction of years where the month averaged positive
	Years         int        `json:"years"`
	Samples       int        `json:"samples"` // daily observations
	LowConfidence bool       `json:"low_confidence"`
}

// Profile is the seasonality result: buckets ranked from most to least
// historically favorable.
type Profile struct {
	Ticker           string     `json:"ticker"`
	Buckets          []Bucket   `json:"buckets"`
	BestMonth        time.Month `json:"best_month"`
	WorstMonth       time.Month `json:"worst_month"`
	CurrentMonth     time.Month `json:"current_month"`
	CurrentMonthMean float64    `json:"current_month_mean"`
}

// SeriesProvider supplies the price series for a ticker.
type SeriesProvider interface {
	GetPriceSeries(ticker string) (*domain.PriceSeries, error)
}

// Analyzer computes seasonal return profiles.
type Analyzer struct {
	provider SeriesProvider
	now      func() time.Time
	log      zerolog.Logger
}

// NewAnalyzer creates a new seasonality analyzer.
func NewAnalyzer(provider SeriesProvider, log zerolog.Logger) *Analyzer {
	return &Analyzer{
		provider: provider,
		now:      time.Now,
		log:      log.With().Str("module", "seasonality").Logger(),
	}
}

// Analyze groups the ticker's daily returns by month across every year in
// the series. Ties in mean return are broken by the larger sample.
func (a *Analyzer) Analyze(ticker string) (*Profile, error) {
	series, err := a.provider.GetPriceSeries(ticker)
	if err != nil {
		return nil, err
	}
	if series.Len() < 2 {
		return nil, domain.InsufficientData("history", series.Len(), 2)
	}

	type yearMonth struct {
		year  int
		month time.Month
	}

	byBucket := make(map[time.Month][]float64)
	byYearMonth := make(map[yearMonth][]float64)

	points := series.Points
	for i := 1; i < len(points); i++ {
		prev := points[i-1].Close
		if prev == 0 {
			continue
		}
		ret := (points[i].Close - prev) / prev * 100
		date := points[i].Date
		byBucket[date.Month()] = append(byBucket[date.Month()], ret)
		ym := yearMonth{date.Year(), date.Month()}
		byYearMonth[ym] = append(byYearMonth[ym], ret)
	}

	buckets := make([]Bucket, 0, len(byBucket))
	for month, returns := range byBucket {
		years := make(map[int]bool)
		positiveYears := 0
		for ym, yearReturns := range byYearMonth {
			if ym.month != month {
				continue
			}
			years[ym.year] = true
			if formulas.Mean(yearReturns) > 0 {
				positiveYears++
			}
		}

		b := Bucket{
			Month:         month,
			MeanReturn:    formulas.Mean(returns),
			Years:         len(years),
			Samples:       len(returns),
			LowConfidence: len(years) < MinYearsForConfidence,
		}
		if len(years) > 0 {
			b.PositiveShare = float64(positiveYears) / float64(len(years))
		}
		buckets = append(buckets, b)
	}

	sort.Slice(buckets, func(i, j int) bool {
		if buckets[i].MeanReturn != buckets[j].MeanReturn {
			return buckets[i].MeanReturn > buckets[j].MeanReturn
		}
		return buckets[i].Samples > buckets[j].Samples
	})

	profile := &Profile{
		Ticker:       ticker,
		Buckets:      buckets,
		CurrentMonth: a.now().Month(),
	}
	if len(buckets) > 0 {
		profile.BestMonth = buckets[0].Month
		profile.WorstMonth = buckets[len(buckets)-1].Month
	}
	for _, b := range buckets {
		if b.Month == profile.CurrentMonth {
			profile.CurrentMonthMean = b.MeanReturn
			break
		}
	}

	return profile, nil
}
