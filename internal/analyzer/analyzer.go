// Package analyzer runs the full weather-window analysis: fetch daily
// observations, score them for the activity, aggregate the window, and
// assemble the canonical result.
package analyzer

import (
	"context"
	"fmt"
	"log"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/alikhn/weatherwindow/internal/metrics"
	"github.com/alikhn/weatherwindow/internal/models"
	"github.com/alikhn/weatherwindow/internal/scoring"
	"github.com/alikhn/weatherwindow/internal/source"
	"github.com/alikhn/weatherwindow/internal/store"
	"github.com/alikhn/weatherwindow/internal/window"
)

// bestDaysCount is how many top days an analysis surfaces.
const bestDaysCount = 5

// syntheticSourceLabel marks results served from the fallback generator.
const syntheticSourceLabel = "synthetic-fallback"

// ValidationError reports a rejected request. The analysis is not attempted.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "invalid request: " + e.Reason
}

// Cache is the slice of the store the analyzer needs. Nil-able.
type Cache interface {
	GetObservations(lat, lon float64, from, to time.Time, maxAge time.Duration) (*store.CachedObservations, error)
	PutObservations(lat, lon float64, from, to time.Time, sourceName string, days []models.DailyObservation) error
}

// Summarizer turns a finished result into a plain-language summary.
type Summarizer interface {
	Summarize(ctx context.Context, result models.AnalysisResult, activity models.Activity) (string, error)
}

type Analyzer struct {
	primary  source.DataSource
	fallback source.DataSource

	cache      Cache
	cacheAge   time.Duration
	summarizer Summarizer
}

// New builds an analyzer over a primary source and a fallback used when the
// primary is unreachable. The fallback is required; it must not fail.
func New(primary, fallback source.DataSource) *Analyzer {
	return &Analyzer{primary: primary, fallback: fallback}
}

// SetCache enables the observation cache. Entries older than maxAge are
// refetched.
func (a *Analyzer) SetCache(c Cache, maxAge time.Duration) {
	a.cache = c
	a.cacheAge = maxAge
}

// SetSummarizer enables plain-language summaries on analysis results.
func (a *Analyzer) SetSummarizer(s Summarizer) {
	a.summarizer = s
}

// Validate checks an analysis request without running it.
func Validate(req models.AnalysisRequest) error {
	if req.DateFrom.IsZero() || req.DateTo.IsZero() {
		return &ValidationError{Reason: "missing date range"}
	}
	if !req.DateFrom.Before(req.DateTo) {
		return &ValidationError{Reason: "dateFrom must precede dateTo"}
	}
	if req.Latitude < -90 || req.Latitude > 90 {
		return &ValidationError{Reason: fmt.Sprintf("latitude %v out of range", req.Latitude)}
	}
	if req.Longitude < -180 || req.Longitude > 180 {
		return &ValidationError{Reason: fmt.Sprintf("longitude %v out of range", req.Longitude)}
	}
	if req.Activity != "" && !req.Activity.Valid() {
		return &ValidationError{Reason: fmt.Sprintf("unknown activity %q", req.Activity)}
	}
	return nil
}

// Analyze runs one analysis. Upstream fetch failures are not errors: the
// synthetic fallback takes over and the result says so in DataSources. The
// only error returns are validation failures.
func (a *Analyzer) Analyze(ctx context.Context, req models.AnalysisRequest) (models.AnalysisResult, error) {
	if err := Validate(req); err != nil {
		return models.AnalysisResult{}, err
	}
	activity := req.Activity
	if activity == "" {
		activity = models.ActivityGeneral
	}
	metrics.AnalysesTotal.WithLabelValues(string(activity)).Inc()

	days, sourceName := a.fetch(ctx, req)

	band := scoring.BandFor(activity, req.Custom)
	scored := make([]models.ScoredCandidate, 0, len(days))
	for i := range days {
		scoring.EnsureKmH(&days[i])
		scored = append(scored, scoring.ScoreCandidate(days[i], band))
	}

	result := models.AnalysisResult{
		ID:                uuid.New().String(),
		BestDays:          bestOf(scored),
		WeatherWindow:     window.Summarize(scored),
		ThresholdAnalysis: window.Flags(window.Aggregate(days)),
		DataSources:       []string{sourceName},
		Location:          req.Location,
		DateRange:         models.DateRange{From: req.DateFrom, To: req.DateTo},
		Confidence:        confidence(days),
	}

	if a.summarizer != nil {
		summary, err := a.summarizer.Summarize(ctx, result, activity)
		if err != nil {
			log.Printf("analyzer: summary generation failed: %v", err)
		} else {
			result.Summary = summary
		}
	}

	return result, nil
}

// Observations returns the day set an analysis of req would use, wind
// already in km/h, along with the source label. Used by the alternative-date
// scan, which scores the days itself.
func (a *Analyzer) Observations(ctx context.Context, req models.AnalysisRequest) ([]models.DailyObservation, string, error) {
	if err := Validate(req); err != nil {
		return nil, "", err
	}
	days, name := a.fetch(ctx, req)
	for i := range days {
		scoring.EnsureKmH(&days[i])
	}
	return days, name, nil
}

// DayRisk is the single-day risk view served by the weather-risks endpoint.
type DayRisk struct {
	models.ScoredCandidate
	FeelsLike *float64 `json:"feelsLike,omitempty"`
}

// AnalyzeDay scores a single target date for the activity.
func (a *Analyzer) AnalyzeDay(ctx context.Context, req models.AnalysisRequest) (DayRisk, error) {
	req.DateTo = req.DateFrom.AddDate(0, 0, 1)
	result, err := a.Analyze(ctx, req)
	if err != nil {
		return DayRisk{}, err
	}
	var day *models.ScoredCandidate
	for i := range result.BestDays {
		if result.BestDays[i].Date.Equal(req.DateFrom) {
			day = &result.BestDays[i]
			break
		}
	}
	if day == nil {
		return DayRisk{}, fmt.Errorf("no observation for %s", req.DateFrom.Format("2006-01-02"))
	}

	risk := DayRisk{ScoredCandidate: *day}
	if day.Temperature != nil {
		fl := scoring.FeelsLike(*day.Temperature, day.Humidity, day.WindSpeed)
		risk.FeelsLike = &fl
	}
	return risk, nil
}

// fetch returns the day set and the label for DataSources. Cache first, then
// the primary source, then the synthetic fallback.
func (a *Analyzer) fetch(ctx context.Context, req models.AnalysisRequest) ([]models.DailyObservation, string) {
	if a.cache != nil {
		cached, err := a.cache.GetObservations(req.Latitude, req.Longitude, req.DateFrom, req.DateTo, a.cacheAge)
		if err != nil {
			log.Printf("analyzer: cache read failed: %v", err)
		} else if cached != nil {
			metrics.ObservationCacheHits.Inc()
			return cached.Days, cached.Source
		}
	}

	days, err := a.primary.DailyRange(ctx, req.Latitude, req.Longitude, req.DateFrom, req.DateTo)
	if err == nil {
		if a.cache != nil {
			if err := a.cache.PutObservations(req.Latitude, req.Longitude, req.DateFrom, req.DateTo, a.primary.Name(), days); err != nil {
				log.Printf("analyzer: cache write failed: %v", err)
			}
		}
		return days, a.primary.Name()
	}

	log.Printf("analyzer: %s unavailable, using synthetic data: %v", a.primary.Name(), err)
	metrics.SyntheticFallbacks.Inc()
	days, _ = a.fallback.DailyRange(ctx, req.Latitude, req.Longitude, req.DateFrom, req.DateTo)
	return days, syntheticSourceLabel
}

// bestOf picks the top days by score, date ascending on ties.
func bestOf(scored []models.ScoredCandidate) []models.ScoredCandidate {
	sorted := make([]models.ScoredCandidate, len(scored))
	copy(sorted, scored)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].SafetyScore != sorted[j].SafetyScore {
			return sorted[i].SafetyScore > sorted[j].SafetyScore
		}
		return sorted[i].Date.Before(sorted[j].Date)
	})
	if len(sorted) > bestDaysCount {
		sorted = sorted[:bestDaysCount]
	}
	return sorted
}

// confidence blends sample size, temperature consistency, and data depth in
// years, weighted 0.4/0.4/0.2.
func confidence(days []models.DailyObservation) float64 {
	var temps []float64
	years := map[int]bool{}
	for _, d := range days {
		if d.Temperature != nil {
			temps = append(temps, *d.Temperature)
		}
		if !d.Date.IsZero() {
			years[d.Date.Year()] = true
		}
	}

	sample := math.Min(100, float64(len(temps))*10)

	consistency := 50.0
	if len(temps) > 1 {
		consistency = clamp(100-stddev(temps)*5, 0, 100)
	}

	depth := math.Min(100, float64(len(years))*15)

	return round1(0.4*sample + 0.4*consistency + 0.2*depth)
}

func stddev(xs []float64) float64 {
	mean := 0.0
	for _, x := range xs {
		mean += x
	}
	mean /= float64(len(xs))

	variance := 0.0
	for _, x := range xs {
		variance += (x - mean) * (x - mean)
	}
	variance /= float64(len(xs) - 1)
	return math.Sqrt(variance)
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
