package marketdata

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/quantdesk/quantdesk/internal/domain"
)

// Repository persists daily bars in the cache database so repeated analyses
// of the same ticker do not re-hit the upstream provider.
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewRepository creates the repository and its schema.
func NewRepository(db *sql.DB, log zerolog.Logger) (*Repository, error) {
	r := &Repository{
		db:  db,
		log: log.With().Str("repository", "marketdata").Logger(),
	}
	if err := r.migrate(); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *Repository) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS price_history (
		ticker TEXT NOT NULL,
		date TEXT NOT NULL,
		open REAL NOT NULL,
		high REAL NOT NULL,
		low REAL NOT NULL,
		close REAL NOT NULL,
		volume INTEGER NOT NULL,
		PRIMARY KEY (ticker, date)
	);
	CREATE TABLE IF NOT EXISTS fetch_meta (
		ticker TEXT PRIMARY KEY,
		fetched_at TEXT NOT NULL
	);`

	if _, err := r.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create marketdata schema: %w", err)
	}
	return nil
}

// SaveSeries replaces the cached bars for a ticker and stamps the fetch time.
func (r *Repository) SaveSeries(ticker string, points []domain.PricePoint) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM price_history WHERE ticker = ?`, ticker); err != nil {
		return fmt.Errorf("failed to clear cached bars: %w", err)
	}

	stmt, err := tx.Prepare(`INSERT INTO price_history (ticker, date, open, high, low, close, volume) VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, p := range points {
		if _, err := stmt.Exec(ticker, p.Date.UTC().Format("2006-01-02"), p.Open, p.High, p.Low, p.Close, p.Volume); err != nil {
			return fmt.Errorf("failed to insert bar: %w", err)
		}
	}

	if _, err := tx.Exec(
		`INSERT INTO fetch_meta (ticker, fetched_at) VALUES (?, ?)
		 ON CONFLICT(ticker) DO UPDATE SET fetched_at = excluded.fetched_at`,
		ticker, time.Now().UTC().Format(time.RFC3339),
	); err != nil {
		return fmt.Errorf("failed to update fetch meta: %w", err)
	}

	return tx.Commit()
}

// GetSeries returns the cached bars for a ticker in ascending date order.
func (r *Repository) GetSeries(ticker string) ([]domain.PricePoint, error) {
	rows, err := r.db.Query(
		`SELECT date, open, high, low, close, volume FROM price_history WHERE ticker = ? ORDER BY date ASC`,
		ticker,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query cached bars: %w", err)
	}
	defer rows.Close()

	var points []domain.PricePoint
	for rows.Next() {
		var p domain.PricePoint
		var date string
		if err := rows.Scan(&date, &p.Open, &p.High, &p.Low, &p.Close, &p.Volume); err != nil {
			return nil, fmt.Errorf("failed to scan bar: %w", err)
		}
		p.Date, err = time.Parse("2006-01-02", date)
		if err != nil {
			return nil, fmt.Errorf("failed to parse bar date %q: %w", date, err)
		}
		points = append(points, p)
	}

	return points, rows.Err()
}

// FetchedAt returns when a ticker's bars were last refreshed, or nil when
// the ticker has never been cached.
func (r *Repository) FetchedAt(ticker string) (*time.Time, error) {
	var fetchedAt string
	err := r.db.QueryRow(`SELECT fetched_at FROM fetch_meta WHERE ticker = ?`, ticker).Scan(&fetchedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query fetch meta: %w", err)
	}

	t, err := time.Parse(time.RFC3339, fetchedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse fetch time %q: %w", fetchedAt, err)
	}
	return &t, nil
}

// CachedTickers lists every ticker with cached bars.
func (r *Repository) CachedTickers() ([]string, error) {
	rows, err := r.db.Query(`SELECT ticker FROM fetch_meta ORDER BY ticker`)
	if err != nil {
		return nil, fmt.Errorf("failed to query cached tickers: %w", err)
	}
	defer rows.Close()

	var tickers []string
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, fmt.Errorf("failed to scan ticker: %w", err)
		}
		tickers = append(tickers, t)
	}

	return tickers, rows.Err()
}
