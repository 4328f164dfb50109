package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/alikhn/weatherwindow/internal/analyzer"
	"github.com/alikhn/weatherwindow/internal/models"
	"github.com/alikhn/weatherwindow/internal/scanner"
	"github.com/alikhn/weatherwindow/internal/scoring"
)

// weatherWindowsRequest is the wire shape of the analysis endpoint.
type weatherWindowsRequest struct {
	Location     string             `json:"location"`
	Latitude     float64            `json:"latitude"`
	Longitude    float64            `json:"longitude"`
	StartDate    string             `json:"start_date"`
	EndDate      string             `json:"end_date"`
	ActivityType string             `json:"activity_type"`
	Thresholds   *models.Thresholds `json:"thresholds,omitempty"`
}

func (r weatherWindowsRequest) toModel() (models.AnalysisRequest, error) {
	from, err := parseDate(r.StartDate)
	if err != nil {
		return models.AnalysisRequest{}, fmt.Errorf("start_date: %w", err)
	}
	to, err := parseDate(r.EndDate)
	if err != nil {
		return models.AnalysisRequest{}, fmt.Errorf("end_date: %w", err)
	}
	return models.AnalysisRequest{
		Location:  r.Location,
		Latitude:  r.Latitude,
		Longitude: r.Longitude,
		DateFrom:  from,
		DateTo:    to,
		Activity:  models.Activity(r.ActivityType),
		Custom:    r.Thresholds,
	}, nil
}

func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("want YYYY-MM-DD, got %q", s)
	}
	return t, nil
}

func (s *Server) handleWeatherWindows(w http.ResponseWriter, r *http.Request) {
	var body weatherWindowsRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	req, err := body.toModel()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := s.analyzer.Analyze(r.Context(), req)
	if err != nil {
		var ve *analyzer.ValidationError
		if errors.As(err, &ve) {
			writeError(w, http.StatusBadRequest, ve.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, result)
}

type weatherRisksRequest struct {
	Latitude     float64 `json:"latitude"`
	Longitude    float64 `json:"longitude"`
	TargetDate   string  `json:"target_date"`
	ActivityType string  `json:"activity_type"`
}

func (s *Server) handleWeatherRisks(w http.ResponseWriter, r *http.Request) {
	var body weatherRisksRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	target, err := parseDate(body.TargetDate)
	if err != nil || target.IsZero() {
		writeError(w, http.StatusBadRequest, "target_date must be YYYY-MM-DD")
		return
	}

	risk, err := s.analyzer.AnalyzeDay(r.Context(), models.AnalysisRequest{
		Latitude:  body.Latitude,
		Longitude: body.Longitude,
		DateFrom:  target,
		Activity:  models.Activity(body.ActivityType),
	})
	if err != nil {
		var ve *analyzer.ValidationError
		if errors.As(err, &ve) {
			writeError(w, http.StatusBadRequest, ve.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, risk)
}

type alternativeDatesRequest struct {
	weatherWindowsRequest
	SearchRangeDays int `json:"search_range_days"`
}

type alternativeDatesResponse struct {
	Alternatives []models.ScoredCandidate `json:"alternatives"`
	PoolSize     int                      `json:"poolSize"`
}

// handleAlternativeDates runs the incremental scanner to completion and
// returns the final best candidates. The request context cancels the scan.
func (s *Server) handleAlternativeDates(w http.ResponseWriter, r *http.Request) {
	var body alternativeDatesRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	req, err := body.toModel()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	days, _, err := s.analyzer.Observations(r.Context(), req)
	if err != nil {
		var ve *analyzer.ValidationError
		if errors.As(err, &ve) {
			writeError(w, http.StatusBadRequest, ve.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	cfg := s.scanCfg
	if body.SearchRangeDays > 0 {
		cfg.SearchRangeDays = body.SearchRangeDays
	}
	sc := scanner.New(cfg, s.clock, scanner.FrameYield(s.clock))

	band := scoring.BandFor(req.Activity, req.Custom)
	pool := sc.BuildPool(days, band, req.DateFrom)
	best := sc.Run(r.Context(), pool, band, nil, nil)

	writeJSON(w, http.StatusOK, alternativeDatesResponse{
		Alternatives: best,
		PoolSize:     len(pool),
	})
}

func (s *Server) handleListRecentSearches(w http.ResponseWriter, r *http.Request) {
	list, err := s.recents.Load()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if list == nil {
		list = []models.RecentSearch{}
	}
	writeJSON(w, http.StatusOK, list)
}

type saveSearchRequest struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

func (s *Server) handleSaveRecentSearch(w http.ResponseWriter, r *http.Request) {
	var body saveSearchRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if body.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	if body.ID == "" {
		body.ID = uuid.New().String()
	}

	list, err := s.recents.Save(models.RecentSearch{
		ID:        body.ID,
		Name:      body.Name,
		Latitude:  body.Latitude,
		Longitude: body.Longitude,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
