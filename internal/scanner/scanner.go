// Package scanner finds alternative dates by scoring a bounded candidate
// pool incrementally. The scan runs in small batches with an injected yield
// point between them, keeps only the best K candidates, publishes partial
// results on a throttle, and aborts on context cancellation or timeout.
package scanner

import (
	"context"
	"sort"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/alikhn/weatherwindow/internal/metrics"
	"github.com/alikhn/weatherwindow/internal/models"
	"github.com/alikhn/weatherwindow/internal/scoring"
)

// Config bounds the scan's work and latency.
type Config struct {
	SearchRangeDays int // forward-looking candidate horizon
	MaxCandidates   int // hard cap on the pool
	TopK            int // retained best candidates

	InitialBatch int
	MinBatch     int
	MaxBatch     int
	BatchGrow    int // additive growth when a batch finishes fast

	TargetBatchMin time.Duration // grow below this
	TargetBatchMax time.Duration // shrink above this
	FlushInterval  time.Duration // minimum gap between partial publishes
	Timeout        time.Duration // whole-scan deadline
}

// DefaultConfig mirrors the tuning of the interactive date finder: batches
// sized to stay within a 6-18ms latency window, best-40 retention, partial
// flushes every 40ms, and a 2.5s overall budget.
func DefaultConfig() Config {
	return Config{
		SearchRangeDays: 60,
		MaxCandidates:   150,
		TopK:            40,
		InitialBatch:    16,
		MinBatch:        8,
		MaxBatch:        64,
		BatchGrow:       8,
		TargetBatchMin:  6 * time.Millisecond,
		TargetBatchMax:  18 * time.Millisecond,
		FlushInterval:   40 * time.Millisecond,
		Timeout:         2500 * time.Millisecond,
	}
}

// YieldFunc hands control back to the caller's event loop between batches.
// It must return promptly; the scan resumes when it does.
type YieldFunc func(ctx context.Context)

// FrameYield sleeps roughly one frame on the given clock.
func FrameYield(clock clockwork.Clock) YieldFunc {
	const frame = 8 * time.Millisecond
	return func(ctx context.Context) {
		select {
		case <-ctx.Done():
		case <-clock.After(frame):
		}
	}
}

// PublishFunc receives a sorted snapshot of the current best candidates.
// done is true exactly once, on the final publish of a completed scan.
// Aborted scans stop publishing; the last partial snapshot stands.
type PublishFunc func(best []models.ScoredCandidate, done bool)

// Scanner runs incremental scans. Safe for reuse across runs; each Run call
// is independent.
type Scanner struct {
	cfg   Config
	clock clockwork.Clock
	yield YieldFunc
}

func New(cfg Config, clock clockwork.Clock, yield YieldFunc) *Scanner {
	if yield == nil {
		yield = FrameYield(clock)
	}
	return &Scanner{cfg: cfg, clock: clock, yield: yield}
}

// BuildPool selects scan candidates: days inside the forward horizon from
// now (falling back to the whole dataset if that filter empties it), minus
// days whose temperature is hopeless for the band (more than 15°C below the
// minimum or 10°C above the maximum), capped at MaxCandidates.
func (s *Scanner) BuildPool(days []models.DailyObservation, band models.Thresholds, now time.Time) []models.DailyObservation {
	horizon := now.AddDate(0, 0, s.cfg.SearchRangeDays)

	var ahead []models.DailyObservation
	for _, d := range days {
		if !d.Date.Before(now) && !d.Date.After(horizon) {
			ahead = append(ahead, d)
		}
	}
	if len(ahead) == 0 {
		ahead = days
	}

	pool := make([]models.DailyObservation, 0, len(ahead))
	for _, d := range ahead {
		if t := d.Temperature; t != nil {
			if *t < band.MinTemp-15 || *t > band.MaxTemp+10 {
				continue
			}
		}
		pool = append(pool, d)
		if len(pool) == s.cfg.MaxCandidates {
			break
		}
	}
	return pool
}

// Run scores the pool in adaptive batches and returns the final best-K,
// sorted by score descending. Extra candidates supplied by the caller are
// scored and merged in before the final sort, de-duplicated by date with the
// higher score winning. On abort (context or timeout) it returns the best
// seen so far without a final publish.
func (s *Scanner) Run(ctx context.Context, pool []models.DailyObservation, band models.Thresholds, extra []models.DailyObservation, publish PublishFunc) []models.ScoredCandidate {
	top := make([]models.ScoredCandidate, 0, s.cfg.TopK)
	batch := s.cfg.InitialBatch
	deadline := s.clock.Now().Add(s.cfg.Timeout)
	lastFlush := s.clock.Now()
	aborted := false

	for i := 0; i < len(pool); {
		if ctx.Err() != nil || s.clock.Now().After(deadline) {
			aborted = true
			break
		}

		end := i + batch
		if end > len(pool) {
			end = len(pool)
		}

		started := s.clock.Now()
		for _, d := range pool[i:end] {
			top = s.retain(top, scoring.ScoreCandidate(d, band))
		}
		elapsed := s.clock.Since(started)
		metrics.ScanBatches.Inc()

		switch {
		case elapsed < s.cfg.TargetBatchMin:
			batch += s.cfg.BatchGrow
		case elapsed > s.cfg.TargetBatchMax:
			batch /= 2
		}
		if batch < s.cfg.MinBatch {
			batch = s.cfg.MinBatch
		}
		if batch > s.cfg.MaxBatch {
			batch = s.cfg.MaxBatch
		}

		i = end
		if i < len(pool) {
			if publish != nil && s.clock.Since(lastFlush) >= s.cfg.FlushInterval {
				publish(sorted(top), false)
				lastFlush = s.clock.Now()
			}
			s.yield(ctx)
		}
	}

	if aborted {
		metrics.ScansAborted.Inc()
		return sorted(top)
	}

	for _, d := range extra {
		top = s.merge(top, scoring.ScoreCandidate(d, band))
	}

	final := sorted(top)
	if publish != nil {
		publish(final, true)
	}
	return final
}

// retain inserts a candidate under the top-K bound, evicting the current
// worst entry on overflow. Linear scan; K is small.
func (s *Scanner) retain(top []models.ScoredCandidate, c models.ScoredCandidate) []models.ScoredCandidate {
	if len(top) < s.cfg.TopK {
		return append(top, c)
	}
	worst := 0
	for i := 1; i < len(top); i++ {
		if top[i].SafetyScore < top[worst].SafetyScore {
			worst = i
		}
	}
	if c.SafetyScore > top[worst].SafetyScore {
		top[worst] = c
	}
	return top
}

// merge adds an externally supplied candidate, de-duplicating by date. An
// existing entry for the same date is kept unless the new score is higher.
func (s *Scanner) merge(top []models.ScoredCandidate, c models.ScoredCandidate) []models.ScoredCandidate {
	for i := range top {
		if top[i].Date.Equal(c.Date) {
			if c.SafetyScore > top[i].SafetyScore {
				top[i] = c
			}
			return top
		}
	}
	return s.retain(top, c)
}

// sorted returns a copy ordered by score descending, date ascending on ties.
func sorted(top []models.ScoredCandidate) []models.ScoredCandidate {
	out := make([]models.ScoredCandidate, len(top))
	copy(out, top)
	sort.Slice(out, func(i, j int) bool {
		if out[i].SafetyScore != out[j].SafetyScore {
			return out[i].SafetyScore > out[j].SafetyScore
		}
		return out[i].Date.Before(out[j].Date)
	})
	return out
}
