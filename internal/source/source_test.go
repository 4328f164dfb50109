package source

import (
	"context"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
	"time"

	"github.com/alikhn/weatherwindow/internal/models"
)

const powerFixture = `{
	"properties": {
		"parameter": {
			"T2M":         {"20250701": 24.3, "20250702": 26.8, "20250703": -999},
			"PRECTOTCORR": {"20250701": 0.0,  "20250702": 4.2,  "20250703": 1.1},
			"WS2M":        {"20250701": 2.5,  "20250702": -999, "20250703": 3.0},
			"RH2M":        {"20250701": 45,   "20250702": 60,   "20250703": 71}
		}
	}
}`

func TestNASADailyRange(t *testing.T) {
	var gotQuery map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = map[string]string{
			"parameters": r.URL.Query().Get("parameters"),
			"community":  r.URL.Query().Get("community"),
			"start":      r.URL.Query().Get("start"),
			"end":        r.URL.Query().Get("end"),
		}
		w.Write([]byte(powerFixture))
	}))
	t.Cleanup(srv.Close)

	c := NewNASAPowerClientWithBase(srv.URL)
	from := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 7, 3, 0, 0, 0, 0, time.UTC)

	days, err := c.DailyRange(context.Background(), 43.25, 76.95, from, to)
	if err != nil {
		t.Fatalf("DailyRange: %v", err)
	}

	want := map[string]string{
		"parameters": "T2M,PRECTOTCORR,WS2M,RH2M",
		"community":  "AG",
		"start":      "20250701",
		"end":        "20250703",
	}
	if !reflect.DeepEqual(gotQuery, want) {
		t.Errorf("query = %v, want %v", gotQuery, want)
	}

	if len(days) != 3 {
		t.Fatalf("len(days) = %d, want 3", len(days))
	}
	if !days[0].Date.Before(days[1].Date) || !days[1].Date.Before(days[2].Date) {
		t.Error("days not sorted by date")
	}
	if days[0].Temperature == nil || *days[0].Temperature != 24.3 {
		t.Errorf("day 1 temperature = %v", days[0].Temperature)
	}
	if days[0].WindUnit != models.WindMS {
		t.Errorf("wind unit = %s, want ms", days[0].WindUnit)
	}

	// POWER fill values must become nil readings, not -999s.
	if days[1].WindSpeed != nil {
		t.Errorf("fill-value wind carried through: %v", *days[1].WindSpeed)
	}
	if days[2].Temperature != nil {
		t.Errorf("fill-value temperature carried through: %v", *days[2].Temperature)
	}
}

func TestNASADailyRangeClientErrorIsPermanent(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		http.Error(w, "bad request", http.StatusBadRequest)
	}))
	t.Cleanup(srv.Close)

	c := NewNASAPowerClientWithBase(srv.URL)
	from := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)

	if _, err := c.DailyRange(context.Background(), 0, 0, from, from); err == nil {
		t.Fatal("expected error on 400")
	}
	if calls != 1 {
		t.Errorf("400 was retried %d times, want a single permanent failure", calls)
	}
}

func TestNASADailyRangeMissingT2M(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"properties": {"parameter": {}}}`))
	}))
	t.Cleanup(srv.Close)

	c := NewNASAPowerClientWithBase(srv.URL)
	from := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)
	if _, err := c.DailyRange(context.Background(), 0, 0, from, from); err == nil {
		t.Fatal("expected error when T2M is missing")
	}
}

func TestSyntheticDeterministic(t *testing.T) {
	s := NewSyntheticSource()
	from := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 7, 31, 0, 0, 0, 0, time.UTC)

	a, err := s.DailyRange(context.Background(), 43.25, 76.95, from, to)
	if err != nil {
		t.Fatalf("DailyRange: %v", err)
	}
	b, _ := s.DailyRange(context.Background(), 43.25, 76.95, from, to)

	if len(a) != 31 {
		t.Fatalf("len(days) = %d, want 31", len(a))
	}
	if !reflect.DeepEqual(a, b) {
		t.Error("same request produced different synthetic data")
	}

	other, _ := s.DailyRange(context.Background(), -36.79, 146.98, from, to)
	if reflect.DeepEqual(a, other) {
		t.Error("different coordinates produced identical synthetic data")
	}
}

func TestSyntheticPlausibleRanges(t *testing.T) {
	s := NewSyntheticSource()
	from := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC)

	days, err := s.DailyRange(context.Background(), 43.25, 76.95, from, to)
	if err != nil {
		t.Fatalf("DailyRange: %v", err)
	}
	for _, d := range days {
		if d.Temperature == nil || *d.Temperature < -60 || *d.Temperature > 60 {
			t.Fatalf("implausible temperature on %v: %v", d.Date, d.Temperature)
		}
		if *d.Precipitation < 0 {
			t.Fatalf("negative precipitation on %v", d.Date)
		}
		if *d.WindSpeed < 0 || d.WindUnit != models.WindKmH {
			t.Fatalf("bad wind on %v: %v %s", d.Date, *d.WindSpeed, d.WindUnit)
		}
		if *d.Humidity < 10 || *d.Humidity > 100 {
			t.Fatalf("humidity out of range on %v: %v", d.Date, *d.Humidity)
		}
	}
}
