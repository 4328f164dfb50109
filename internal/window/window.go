// Package window aggregates a list of scored days into window-level
// extremes, risk flags and a summary.
package window

import (
	"github.com/alikhn/weatherwindow/internal/models"
)

// Window-level extreme-condition thresholds. Wind is km/h, rain mm/day.
const (
	veryHotTemp      = 35
	veryColdTemp     = -20
	veryWindySpeed   = 25
	veryWetRain      = 20
	veryHumidLevel   = 80
	suitableScoreMin = 60
)

// Risk level cutoffs on the suitable-day fraction.
const (
	lowRiskFraction    = 0.7
	mediumRiskFraction = 0.4
)

// Extremes holds window-wide aggregates over the numeric readings.
type Extremes struct {
	MaxTemp     float64
	MinTemp     float64
	MaxWind     float64
	MaxRain     float64
	MaxHumidity float64
	HasTemp     bool
	HasWind     bool
	HasRain     bool
	HasHumidity bool
}

// Aggregate computes extremes across the list, skipping nil readings.
func Aggregate(days []models.DailyObservation) Extremes {
	var ex Extremes
	for _, d := range days {
		if t := d.Temperature; t != nil {
			if !ex.HasTemp || *t > ex.MaxTemp {
				ex.MaxTemp = *t
			}
			if !ex.HasTemp || *t < ex.MinTemp {
				ex.MinTemp = *t
			}
			ex.HasTemp = true
		}
		if w := d.WindSpeed; w != nil {
			if !ex.HasWind || *w > ex.MaxWind {
				ex.MaxWind = *w
			}
			ex.HasWind = true
		}
		if p := d.Precipitation; p != nil {
			if !ex.HasRain || *p > ex.MaxRain {
				ex.MaxRain = *p
			}
			ex.HasRain = true
		}
		if h := d.Humidity; h != nil {
			if !ex.HasHumidity || *h > ex.MaxHumidity {
				ex.MaxHumidity = *h
			}
			ex.HasHumidity = true
		}
	}
	return ex
}

// Flags derives the five extreme-condition booleans from aggregates.
// Aggregates with no numeric data never raise a flag.
func Flags(ex Extremes) models.ThresholdAnalysis {
	return models.ThresholdAnalysis{
		VeryHot:           ex.HasTemp && ex.MaxTemp > veryHotTemp,
		VeryCold:          ex.HasTemp && ex.MinTemp < veryColdTemp,
		VeryWindy:         ex.HasWind && ex.MaxWind > veryWindySpeed,
		VeryWet:           ex.HasRain && ex.MaxRain > veryWetRain,
		VeryUncomfortable: ex.HasHumidity && ex.MaxHumidity > veryHumidLevel,
	}
}

// Summarize builds the window summary from scored days. A day counts as
// suitable at score >= 60. Risk level comes from the suitable fraction:
// >=70% low, >=40% medium, below that high. An empty window is unknown.
func Summarize(scored []models.ScoredCandidate) models.WeatherWindow {
	total := len(scored)
	if total == 0 {
		return models.WeatherWindow{RiskLevel: models.RiskUnknown}
	}

	suitable := 0
	for _, c := range scored {
		if c.SafetyScore >= suitableScoreMin {
			suitable++
		}
	}

	fraction := float64(suitable) / float64(total)
	risk := models.RiskHigh
	switch {
	case fraction >= lowRiskFraction:
		risk = models.RiskLow
	case fraction >= mediumRiskFraction:
		risk = models.RiskMedium
	}

	return models.WeatherWindow{
		TotalDays:    total,
		SuitableDays: suitable,
		RiskLevel:    risk,
	}
}
