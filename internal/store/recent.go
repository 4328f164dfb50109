package store

import (
	"fmt"
	"sync"
	"time"

	"github.com/alikhn/weatherwindow/internal/models"
)

// maxRecentSearches caps the saved list: last five selections, newest first.
const maxRecentSearches = 5

// RecentSearchStore keeps the short list of recently selected locations.
// Save de-duplicates by id (a repeated selection moves to the front) and
// trims to the cap.
type RecentSearchStore interface {
	Load() ([]models.RecentSearch, error)
	Save(search models.RecentSearch) ([]models.RecentSearch, error)
}

// Load returns recent searches, newest first.
func (s *Store) Load() ([]models.RecentSearch, error) {
	rows, err := s.db.Query(`
		SELECT id, name, latitude, longitude, searched_at
		FROM recent_searches
		ORDER BY searched_at DESC
		LIMIT ?
	`, maxRecentSearches)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.RecentSearch
	for rows.Next() {
		var rs models.RecentSearch
		if err := rows.Scan(&rs.ID, &rs.Name, &rs.Latitude, &rs.Longitude, &rs.SearchedAt); err != nil {
			return nil, err
		}
		out = append(out, rs)
	}
	return out, rows.Err()
}

// Save upserts the search, bumps its timestamp, trims beyond the cap, and
// returns the updated list. The whole policy runs in one transaction.
func (s *Store) Save(search models.RecentSearch) ([]models.RecentSearch, error) {
	if search.SearchedAt.IsZero() {
		search.SearchedAt = time.Now().UTC()
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`
		INSERT INTO recent_searches (id, name, latitude, longitude, searched_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			latitude = excluded.latitude,
			longitude = excluded.longitude,
			searched_at = excluded.searched_at
	`, search.ID, search.Name, search.Latitude, search.Longitude, search.SearchedAt); err != nil {
		return nil, fmt.Errorf("upsert recent search: %w", err)
	}

	if _, err := tx.Exec(`
		DELETE FROM recent_searches
		WHERE id NOT IN (
			SELECT id FROM recent_searches ORDER BY searched_at DESC LIMIT ?
		)
	`, maxRecentSearches); err != nil {
		return nil, fmt.Errorf("trim recent searches: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return s.Load()
}

// MemoryRecentSearchStore is the in-memory RecentSearchStore used by tests
// and by server instances running without a database.
type MemoryRecentSearchStore struct {
	mu   sync.Mutex
	list []models.RecentSearch
}

func NewMemoryRecentSearchStore() *MemoryRecentSearchStore {
	return &MemoryRecentSearchStore{}
}

func (m *MemoryRecentSearchStore) Load() ([]models.RecentSearch, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.RecentSearch, len(m.list))
	copy(out, m.list)
	return out, nil
}

func (m *MemoryRecentSearchStore) Save(search models.RecentSearch) ([]models.RecentSearch, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if search.SearchedAt.IsZero() {
		search.SearchedAt = time.Now().UTC()
	}

	kept := make([]models.RecentSearch, 0, len(m.list)+1)
	kept = append(kept, search)
	for _, rs := range m.list {
		if rs.ID != search.ID {
			kept = append(kept, rs)
		}
	}
	if len(kept) > maxRecentSearches {
		kept = kept[:maxRecentSearches]
	}
	m.list = kept

	out := make([]models.RecentSearch, len(m.list))
	copy(out, m.list)
	return out, nil
}
