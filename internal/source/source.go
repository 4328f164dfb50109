// Package source provides daily weather observations: the real NASA POWER
// client and a deterministic synthetic generator used as a fallback and in
// tests.
package source

import (
	"context"
	"time"

	"github.com/alikhn/weatherwindow/internal/models"
)

// DataSource yields one observation per day for the inclusive date range.
type DataSource interface {
	// Name identifies the source in AnalysisResult.DataSources.
	Name() string
	DailyRange(ctx context.Context, lat, lon float64, from, to time.Time) ([]models.DailyObservation, error)
}
