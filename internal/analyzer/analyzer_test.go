package analyzer

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"github.com/alikhn/weatherwindow/internal/models"
	"github.com/alikhn/weatherwindow/internal/source"
	"github.com/alikhn/weatherwindow/internal/store"
)

type failingSource struct{}

func (failingSource) Name() string { return "nasa-power" }
func (failingSource) DailyRange(context.Context, float64, float64, time.Time, time.Time) ([]models.DailyObservation, error) {
	return nil, errors.New("connection refused")
}

type fixedSource struct {
	name string
	days []models.DailyObservation
}

func (f fixedSource) Name() string { return f.name }
func (f fixedSource) DailyRange(context.Context, float64, float64, time.Time, time.Time) ([]models.DailyObservation, error) {
	return f.days, nil
}

func almatyJulyRequest() models.AnalysisRequest {
	return models.AnalysisRequest{
		Location:  "Almaty",
		Latitude:  43.25,
		Longitude: 76.95,
		DateFrom:  time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC),
		DateTo:    time.Date(2025, 7, 31, 0, 0, 0, 0, time.UTC),
		Activity:  models.ActivityWedding,
	}
}

func TestValidate(t *testing.T) {
	base := almatyJulyRequest()

	tests := []struct {
		name    string
		mutate  func(*models.AnalysisRequest)
		wantErr bool
	}{
		{"valid", func(*models.AnalysisRequest) {}, false},
		{"missing dates", func(r *models.AnalysisRequest) { r.DateFrom, r.DateTo = time.Time{}, time.Time{} }, true},
		{"reversed range", func(r *models.AnalysisRequest) { r.DateFrom, r.DateTo = r.DateTo, r.DateFrom }, true},
		{"equal dates", func(r *models.AnalysisRequest) { r.DateTo = r.DateFrom }, true},
		{"latitude out of range", func(r *models.AnalysisRequest) { r.Latitude = 91 }, true},
		{"longitude out of range", func(r *models.AnalysisRequest) { r.Longitude = -181 }, true},
		{"unknown activity", func(r *models.AnalysisRequest) { r.Activity = "skydiving" }, true},
		{"empty activity is fine", func(r *models.AnalysisRequest) { r.Activity = "" }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := base
			tt.mutate(&req)
			err := Validate(req)
			if tt.wantErr && err == nil {
				t.Error("expected validation error")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if tt.wantErr {
				var ve *ValidationError
				if !errors.As(err, &ve) {
					t.Errorf("error %v is not a ValidationError", err)
				}
			}
		})
	}
}

func TestAnalyzeAlmatyWeddingJuly(t *testing.T) {
	a := New(source.NewSyntheticSource(), source.NewSyntheticSource())

	result, err := a.Analyze(context.Background(), almatyJulyRequest())
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	if result.WeatherWindow.TotalDays != 31 {
		t.Errorf("TotalDays = %d, want 31", result.WeatherWindow.TotalDays)
	}
	if len(result.BestDays) > 5 {
		t.Errorf("len(BestDays) = %d, want <= 5", len(result.BestDays))
	}
	for i, d := range result.BestDays {
		if d.SafetyScore < 0 || d.SafetyScore > 100 {
			t.Errorf("BestDays[%d].SafetyScore = %d, outside [0,100]", i, d.SafetyScore)
		}
		if i > 0 && d.SafetyScore > result.BestDays[i-1].SafetyScore {
			t.Errorf("BestDays not sorted descending at %d", i)
		}
	}
	if result.Location != "Almaty" {
		t.Errorf("Location = %q", result.Location)
	}
	if result.WeatherWindow.RiskLevel == "" || result.WeatherWindow.RiskLevel == models.RiskUnknown {
		t.Errorf("RiskLevel = %q, want a computed level", result.WeatherWindow.RiskLevel)
	}
	if result.Confidence <= 0 || result.Confidence > 100 {
		t.Errorf("Confidence = %v", result.Confidence)
	}
	if result.ID == "" {
		t.Error("result has no id")
	}
}

func TestAnalyzeDeterministicOnSyntheticData(t *testing.T) {
	a := New(source.NewSyntheticSource(), source.NewSyntheticSource())
	req := almatyJulyRequest()

	r1, err := a.Analyze(context.Background(), req)
	if err != nil {
		t.Fatal(err)
	}
	r2, _ := a.Analyze(context.Background(), req)

	if len(r1.BestDays) != len(r2.BestDays) {
		t.Fatal("best-day counts differ across identical runs")
	}
	for i := range r1.BestDays {
		if r1.BestDays[i].SafetyScore != r2.BestDays[i].SafetyScore || !r1.BestDays[i].Date.Equal(r2.BestDays[i].Date) {
			t.Errorf("run differs at BestDays[%d]", i)
		}
	}
	if r1.WeatherWindow != r2.WeatherWindow {
		t.Errorf("window summaries differ: %+v vs %+v", r1.WeatherWindow, r2.WeatherWindow)
	}
}

func TestAnalyzeFallsBackToSynthetic(t *testing.T) {
	a := New(failingSource{}, source.NewSyntheticSource())

	result, err := a.Analyze(context.Background(), almatyJulyRequest())
	if err != nil {
		t.Fatalf("fallback should absorb the upstream failure, got %v", err)
	}
	if len(result.DataSources) != 1 || result.DataSources[0] != "synthetic-fallback" {
		t.Errorf("DataSources = %v, want [synthetic-fallback]", result.DataSources)
	}
	if result.WeatherWindow.TotalDays != 31 {
		t.Errorf("TotalDays = %d, want 31 from fallback", result.WeatherWindow.TotalDays)
	}
}

func TestAnalyzeConvertsWindExactlyOnce(t *testing.T) {
	day := models.DailyObservation{
		Date:        time.Date(2025, 7, 5, 0, 0, 0, 0, time.UTC),
		Temperature: models.Float(22),
		WindSpeed:   models.Float(10),
		WindUnit:    models.WindMS,
		Humidity:    models.Float(50),
	}
	a := New(fixedSource{name: "nasa-power", days: []models.DailyObservation{day}}, source.NewSyntheticSource())

	req := almatyJulyRequest()
	result, err := a.Analyze(context.Background(), req)
	if err != nil {
		t.Fatal(err)
	}
	if len(result.BestDays) != 1 {
		t.Fatalf("len(BestDays) = %d", len(result.BestDays))
	}
	got := result.BestDays[0]
	if got.WindSpeed == nil || *got.WindSpeed != 36 {
		t.Errorf("wind = %v, want 36 km/h", got.WindSpeed)
	}
	if got.WindUnit != models.WindKmH {
		t.Errorf("unit = %s, want kmh", got.WindUnit)
	}
}

func TestAnalyzeUsesCache(t *testing.T) {
	day := models.DailyObservation{
		Date:        time.Date(2025, 7, 5, 0, 0, 0, 0, time.UTC),
		Temperature: models.Float(25),
	}

	st := setupSQLite(t)
	a := New(fixedSource{name: "nasa-power", days: []models.DailyObservation{day}}, source.NewSyntheticSource())
	a.SetCache(st, time.Hour)

	req := almatyJulyRequest()
	if _, err := a.Analyze(context.Background(), req); err != nil {
		t.Fatal(err)
	}

	// Second run must come from the cache even if the source now fails.
	a2 := New(failingSource{}, source.NewSyntheticSource())
	a2.SetCache(st, time.Hour)
	result, err := a2.Analyze(context.Background(), req)
	if err != nil {
		t.Fatal(err)
	}
	if len(result.DataSources) != 1 || result.DataSources[0] != "nasa-power" {
		t.Errorf("DataSources = %v, want cached nasa-power", result.DataSources)
	}
}

type fixedSummarizer struct{ text string }

func (f fixedSummarizer) Summarize(context.Context, models.AnalysisResult, models.Activity) (string, error) {
	return f.text, nil
}

func TestAnalyzeAttachesSummary(t *testing.T) {
	a := New(source.NewSyntheticSource(), source.NewSyntheticSource())
	a.SetSummarizer(fixedSummarizer{text: "A fine week for a wedding."})

	result, err := a.Analyze(context.Background(), almatyJulyRequest())
	if err != nil {
		t.Fatal(err)
	}
	if result.Summary != "A fine week for a wedding." {
		t.Errorf("Summary = %q", result.Summary)
	}
}

func TestAnalyzeDay(t *testing.T) {
	a := New(source.NewSyntheticSource(), source.NewSyntheticSource())

	req := almatyJulyRequest()
	req.DateTo = time.Time{}
	risk, err := a.AnalyzeDay(context.Background(), req)
	if err != nil {
		t.Fatalf("AnalyzeDay: %v", err)
	}
	if !risk.Date.Equal(req.DateFrom) {
		t.Errorf("risk date = %v, want %v", risk.Date, req.DateFrom)
	}
	if risk.SafetyScore < 0 || risk.SafetyScore > 100 {
		t.Errorf("score = %d", risk.SafetyScore)
	}
	if risk.Recommendation == "" {
		t.Error("missing recommendation")
	}
}

func setupSQLite(t *testing.T) *store.Store {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	st := store.New(db)
	if err := st.Migrate(); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return st
}
