package scoring

import (
	"fmt"
	"math"

	"github.com/alikhn/weatherwindow/internal/models"
)

// Penalty weights per dimension. Temperature deviations hurt the most,
// humidity the least.
const (
	weightTempHigh     = 5
	weightTempLow      = 5
	weightPrecip       = 3
	weightWind         = 2
	weightHumidityHigh = 1.5
	weightHumidityLow  = 1
)

// Score rates one day against a threshold band. It starts at 100 and
// subtracts a weighted penalty for each dimension that strictly exceeds its
// bound; a value exactly on the boundary is free. The result is rounded and
// clamped to [0,100]. Nil readings are treated as within bounds.
//
// Wind thresholds are km/h; call EnsureKmH on the observation first.
func Score(obs models.DailyObservation, band models.Thresholds) (int, []string) {
	score := 100.0
	var factors []string

	penalize := func(excess, weight float64, format string) {
		pts := excess * weight
		score -= pts
		factors = append(factors, fmt.Sprintf(format, int(math.Round(pts))))
	}

	if t := obs.Temperature; t != nil {
		if *t > band.MaxTemp {
			penalize(*t-band.MaxTemp, weightTempHigh, "Too hot (%d points)")
		} else if *t < band.MinTemp {
			penalize(band.MinTemp-*t, weightTempLow, "Too cold (%d points)")
		}
	}
	if p := obs.Precipitation; p != nil && *p > band.MaxRain {
		penalize(*p-band.MaxRain, weightPrecip, "Too rainy (%d points)")
	}
	if w := obs.WindSpeed; w != nil && *w > band.MaxWind {
		penalize(*w-band.MaxWind, weightWind, "Too windy (%d points)")
	}
	if h := obs.Humidity; h != nil {
		if *h > band.HumidityMax {
			penalize(*h-band.HumidityMax, weightHumidityHigh, "Too humid (%d points)")
		} else if *h < band.HumidityMin {
			penalize(band.HumidityMin-*h, weightHumidityLow, "Too dry (%d points)")
		}
	}

	final := int(math.Round(score))
	if final < 0 {
		final = 0
	}
	if final > 100 {
		final = 100
	}
	return final, factors
}

// Recommend maps a safety score to its category.
func Recommend(score int) models.Recommendation {
	switch {
	case score >= 80:
		return models.RecommendExcellent
	case score >= 60:
		return models.RecommendGood
	case score >= 40:
		return models.RecommendFair
	default:
		return models.RecommendPoor
	}
}

// ScoreCandidate scores a day and packages the full verdict.
func ScoreCandidate(obs models.DailyObservation, band models.Thresholds) models.ScoredCandidate {
	score, factors := Score(obs, band)
	if factors == nil {
		factors = []string{}
	}
	return models.ScoredCandidate{
		DailyObservation: obs,
		SafetyScore:      score,
		SafetyFactors:    factors,
		Recommendation:   Recommend(score),
	}
}
