// Package api serves the analysis engine over HTTP.
package api

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/alikhn/weatherwindow/internal/analyzer"
	"github.com/alikhn/weatherwindow/internal/scanner"
	"github.com/alikhn/weatherwindow/internal/store"
)

type Server struct {
	analyzer *analyzer.Analyzer
	recents  store.RecentSearchStore
	scanCfg  scanner.Config
	clock    clockwork.Clock
	port     string
}

func NewServer(a *analyzer.Analyzer, recents store.RecentSearchStore, port string) *Server {
	return &Server{
		analyzer: a,
		recents:  recents,
		scanCfg:  scanner.DefaultConfig(),
		clock:    clockwork.NewRealClock(),
		port:     port,
	}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/weather-windows", s.handleWeatherWindows)
	mux.HandleFunc("POST /api/weather-risks", s.handleWeatherRisks)
	mux.HandleFunc("POST /api/alternative-dates", s.handleAlternativeDates)
	mux.HandleFunc("GET /api/recent-searches", s.handleListRecentSearches)
	mux.HandleFunc("POST /api/recent-searches", s.handleSaveRecentSearch)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.Handle("GET /metrics", promhttp.Handler())
	return recoverPanics(mux)
}

func (s *Server) Run(ctx context.Context) error {
	server := &http.Server{
		Addr:    ":" + s.port,
		Handler: s.Handler(),
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx)
	}()

	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}
	return nil
}

// recoverPanics turns handler panics into a 500 JSON error instead of
// killing the connection. Nothing past startup is fatal.
func recoverPanics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				log.Printf("api: panic serving %s %s: %v", r.Method, r.URL.Path, rec)
				writeError(w, http.StatusInternalServerError, "internal error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
