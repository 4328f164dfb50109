package window

import (
	"testing"
	"time"

	"github.com/alikhn/weatherwindow/internal/models"
)

func obs(temp, wind, rain, humidity *float64) models.DailyObservation {
	return models.DailyObservation{
		Date:          time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC),
		Temperature:   temp,
		WindSpeed:     wind,
		Precipitation: rain,
		Humidity:      humidity,
	}
}

func TestAggregateSkipsMissingReadings(t *testing.T) {
	days := []models.DailyObservation{
		obs(models.Float(30), nil, models.Float(2), nil),
		obs(models.Float(-5), models.Float(40), nil, models.Float(85)),
		obs(nil, nil, nil, nil),
	}

	ex := Aggregate(days)
	if !ex.HasTemp || ex.MaxTemp != 30 || ex.MinTemp != -5 {
		t.Errorf("temp extremes = [%v, %v], want [-5, 30]", ex.MinTemp, ex.MaxTemp)
	}
	if !ex.HasWind || ex.MaxWind != 40 {
		t.Errorf("max wind = %v, want 40", ex.MaxWind)
	}
	if !ex.HasRain || ex.MaxRain != 2 {
		t.Errorf("max rain = %v, want 2", ex.MaxRain)
	}
	if !ex.HasHumidity || ex.MaxHumidity != 85 {
		t.Errorf("max humidity = %v, want 85", ex.MaxHumidity)
	}
}

func TestAggregateEmpty(t *testing.T) {
	ex := Aggregate(nil)
	if ex.HasTemp || ex.HasWind || ex.HasRain || ex.HasHumidity {
		t.Errorf("empty aggregate claims data: %+v", ex)
	}
	if Flags(ex) != (models.ThresholdAnalysis{}) {
		t.Error("empty aggregate should raise no flags")
	}
}

func TestFlags(t *testing.T) {
	tests := []struct {
		name string
		ex   Extremes
		want models.ThresholdAnalysis
	}{
		{
			name: "heatwave window",
			ex:   Extremes{MaxTemp: 38, MinTemp: 20, HasTemp: true},
			want: models.ThresholdAnalysis{VeryHot: true},
		},
		{
			name: "boundary values raise nothing",
			ex: Extremes{
				MaxTemp: 35, MinTemp: -20, MaxWind: 25, MaxRain: 20, MaxHumidity: 80,
				HasTemp: true, HasWind: true, HasRain: true, HasHumidity: true,
			},
			want: models.ThresholdAnalysis{},
		},
		{
			name: "everything extreme",
			ex: Extremes{
				MaxTemp: 40, MinTemp: -25, MaxWind: 60, MaxRain: 35, MaxHumidity: 95,
				HasTemp: true, HasWind: true, HasRain: true, HasHumidity: true,
			},
			want: models.ThresholdAnalysis{
				VeryHot: true, VeryCold: true, VeryWindy: true, VeryWet: true, VeryUncomfortable: true,
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Flags(tt.ex); got != tt.want {
				t.Errorf("Flags() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func scored(scores ...int) []models.ScoredCandidate {
	out := make([]models.ScoredCandidate, len(scores))
	for i, s := range scores {
		out[i] = models.ScoredCandidate{SafetyScore: s}
	}
	return out
}

func TestSummarize(t *testing.T) {
	tests := []struct {
		name         string
		scores       []models.ScoredCandidate
		wantSuitable int
		wantRisk     models.RiskLevel
	}{
		{"empty window", nil, 0, models.RiskUnknown},
		{"all good", scored(90, 85, 70, 60), 4, models.RiskLow},
		{"half good", scored(90, 60, 30, 10), 2, models.RiskMedium},
		{"mostly bad", scored(90, 30, 20, 10), 1, models.RiskHigh},
		{"score 59 is not suitable", scored(59, 59, 59), 0, models.RiskHigh},
		{"exactly 70 percent is low", scored(60, 60, 60, 60, 60, 60, 60, 10, 10, 10), 7, models.RiskLow},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Summarize(tt.scores)
			if got.TotalDays != len(tt.scores) {
				t.Errorf("TotalDays = %d, want %d", got.TotalDays, len(tt.scores))
			}
			if got.SuitableDays != tt.wantSuitable {
				t.Errorf("SuitableDays = %d, want %d", got.SuitableDays, tt.wantSuitable)
			}
			if got.RiskLevel != tt.wantRisk {
				t.Errorf("RiskLevel = %s, want %s", got.RiskLevel, tt.wantRisk)
			}
		})
	}
}
