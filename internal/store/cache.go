package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/alikhn/weatherwindow/internal/models"
)

// CachedObservations is one stored day set with its provenance.
type CachedObservations struct {
	Days      []models.DailyObservation
	Source    string
	FetchedAt time.Time
}

func cacheKey(lat, lon float64, from, to time.Time) string {
	return fmt.Sprintf("%.4f:%.4f:%s:%s", lat, lon, from.Format("20060102"), to.Format("20060102"))
}

// GetObservations returns the cached day set for the request, or nil when
// absent or older than maxAge.
func (s *Store) GetObservations(lat, lon float64, from, to time.Time, maxAge time.Duration) (*CachedObservations, error) {
	row := s.db.QueryRow(`
		SELECT source, payload, fetched_at
		FROM observation_cache
		WHERE cache_key = ?
	`, cacheKey(lat, lon, from, to))

	var (
		source    string
		payload   string
		fetchedAt time.Time
	)
	err := row.Scan(&source, &payload, &fetchedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if maxAge > 0 && time.Since(fetchedAt) > maxAge {
		return nil, nil
	}

	var days []models.DailyObservation
	if err := json.Unmarshal([]byte(payload), &days); err != nil {
		return nil, fmt.Errorf("decode cached observations: %w", err)
	}
	return &CachedObservations{Days: days, Source: source, FetchedAt: fetchedAt}, nil
}

// PutObservations stores (or replaces) the day set for the request.
func (s *Store) PutObservations(lat, lon float64, from, to time.Time, source string, days []models.DailyObservation) error {
	payload, err := json.Marshal(days)
	if err != nil {
		return fmt.Errorf("encode observations: %w", err)
	}

	_, err = s.db.Exec(`
		INSERT INTO observation_cache (cache_key, latitude, longitude, start_date, end_date, source, payload, fetched_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(cache_key) DO UPDATE SET
			source = excluded.source,
			payload = excluded.payload,
			fetched_at = excluded.fetched_at
	`, cacheKey(lat, lon, from, to), lat, lon, from, to, source, string(payload), time.Now().UTC())
	return err
}
