package scanner

import (
	"context"
	"sync"

	"github.com/alikhn/weatherwindow/internal/models"
	"github.com/alikhn/weatherwindow/internal/scoring"
)

// Finder serializes scans for one consumer. Starting a new search cancels
// the in-flight one and waits for it to stop publishing before the new scan
// begins, so two scan loops never overlap.
type Finder struct {
	scanner *Scanner

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

func NewFinder(scanner *Scanner) *Finder {
	return &Finder{scanner: scanner}
}

// Search starts an asynchronous scan over days for the activity's band,
// anchored at now. Any previous scan is cancelled first. Partial and final
// results arrive through publish.
func (f *Finder) Search(ctx context.Context, days []models.DailyObservation, activity models.Activity, custom *models.Thresholds, extra []models.DailyObservation, publish PublishFunc) {
	f.mu.Lock()
	if f.cancel != nil {
		f.cancel()
		<-f.done
	}
	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	f.cancel = cancel
	f.done = done
	f.mu.Unlock()

	band := scoring.BandFor(activity, custom)
	pool := f.scanner.BuildPool(days, band, f.scanner.clock.Now())

	go func() {
		defer close(done)
		f.scanner.Run(runCtx, pool, band, extra, publish)
	}()
}

// Stop cancels any in-flight scan and blocks until its loop has exited. No
// publishes happen after Stop returns.
func (f *Finder) Stop() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.cancel != nil {
		f.cancel()
		<-f.done
		f.cancel = nil
	}
}
