// Package normalize reshapes heterogeneous analysis payloads into the
// canonical AnalysisResult. Backends and older clients disagree on casing
// (bestDays vs best_days) and on top-level shape (the bestDays shape vs the
// daily_analysis/top_recommendations shape); this layer tolerates all of
// them and defaults every missing field so consumers never see a nil slice
// or absent sub-object.
package normalize

import (
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/alikhn/weatherwindow/internal/models"
)

// dateFormats accepted for day and range fields, most common first.
var dateFormats = []string{
	"2006-01-02",
	time.RFC3339,
	"20060102",
	"2006/01/02",
}

// Default returns the safe empty result shape.
func Default() models.AnalysisResult {
	return models.AnalysisResult{
		BestDays:    []models.ScoredCandidate{},
		DataSources: []string{},
		WeatherWindow: models.WeatherWindow{
			RiskLevel: models.RiskUnknown,
		},
	}
}

// Result normalizes an arbitrary JSON payload. It never fails: invalid or
// non-object input yields the default shape with Error set. When a field is
// present under both a camelCase and a snake_case key, camelCase wins.
func Result(raw []byte) models.AnalysisResult {
	out := Default()

	if !gjson.ValidBytes(raw) {
		out.Error = "invalid payload"
		return out
	}
	root := gjson.ParseBytes(raw)
	if !root.IsObject() {
		out.Error = "payload is not an object"
		return out
	}

	if errField := pick(root, "error"); errField.Exists() && errField.String() != "" {
		out.Error = errField.String()
	}

	if days := pick(root, "bestDays", "best_days", "top_recommendations", "predictions", "daily_analysis"); days.IsArray() {
		for _, d := range days.Array() {
			out.BestDays = append(out.BestDays, candidate(d))
		}
	}

	if ww := pick(root, "weatherWindow", "weather_window", "weather_window_summary"); ww.IsObject() {
		out.WeatherWindow.TotalDays = int(pick(ww, "totalDays", "total_days").Int())
		out.WeatherWindow.SuitableDays = int(pick(ww, "suitableDays", "suitable_days").Int())
		if risk := pick(ww, "riskLevel", "risk_level", "overall_risk_level"); risk.Exists() {
			out.WeatherWindow.RiskLevel = riskLevel(risk.String())
		}
	}

	if ta := pick(root, "thresholdAnalysis", "threshold_analysis"); ta.IsObject() {
		out.ThresholdAnalysis = models.ThresholdAnalysis{
			VeryHot:           pick(ta, "veryHot", "very_hot").Bool(),
			VeryCold:          pick(ta, "veryCold", "very_cold").Bool(),
			VeryWindy:         pick(ta, "veryWindy", "very_windy").Bool(),
			VeryWet:           pick(ta, "veryWet", "very_wet").Bool(),
			VeryUncomfortable: pick(ta, "veryUncomfortable", "very_uncomfortable").Bool(),
		}
	}

	if src := pick(root, "dataSources", "data_sources", "nasaDataSources", "nasa_data_sources"); src.IsArray() {
		for _, s := range src.Array() {
			out.DataSources = append(out.DataSources, s.String())
		}
	}

	out.Location = pick(root, "location", "location_name").String()
	out.Confidence = pick(root, "confidence", "confidence_score").Float()
	out.Summary = pick(root, "summary", "recommendation_summary").String()
	out.ID = pick(root, "id", "analysis_id").String()

	if dr := pick(root, "dateRange", "date_range"); dr.IsObject() {
		out.DateRange.From = parseDate(pick(dr, "from", "start", "start_date", "dateFrom", "date_from").String())
		out.DateRange.To = parseDate(pick(dr, "to", "end", "end_date", "dateTo", "date_to").String())
	} else {
		out.DateRange.From = parseDate(pick(root, "startDate", "start_date").String())
		out.DateRange.To = parseDate(pick(root, "endDate", "end_date").String())
	}

	return out
}

// candidate normalizes one scored-day entry. One historical shape nests
// readings under predicted_conditions and calls the score suitability_score;
// the other is flat with safetyScore.
func candidate(d gjson.Result) models.ScoredCandidate {
	cond := d
	if pc := pick(d, "predictedConditions", "predicted_conditions", "conditions"); pc.IsObject() {
		cond = pc
	}

	c := models.ScoredCandidate{
		DailyObservation: models.DailyObservation{
			Date:          parseDate(pick(d, "date").String()),
			Temperature:   floatPtr(pick(cond, "temperature", "temp", "t2m")),
			Precipitation: floatPtr(pick(cond, "precipitation", "precip", "rain")),
			WindSpeed:     floatPtr(pick(cond, "windSpeed", "wind_speed", "wind")),
			Humidity:      floatPtr(pick(cond, "humidity", "relative_humidity")),
			CloudCover:    floatPtr(pick(cond, "cloudCover", "cloud_cover")),
			UVIndex:       floatPtr(pick(cond, "uvIndex", "uv_index")),
		},
		SafetyFactors: []string{},
	}

	if unit := pick(cond, "windUnit", "wind_unit"); unit.Exists() {
		c.WindUnit = models.WindUnit(unit.String())
	}

	score := pick(d, "safetyScore", "safety_score", "suitabilityScore", "suitability_score", "score")
	c.SafetyScore = clampScore(int(score.Int()))

	if factors := pick(d, "safetyFactors", "safety_factors", "factors", "risk_factors"); factors.IsArray() {
		for _, f := range factors.Array() {
			c.SafetyFactors = append(c.SafetyFactors, f.String())
		}
	}

	if rec := pick(d, "recommendation"); rec.Exists() {
		c.Recommendation = recommendation(rec.String())
	}

	return c
}

// pick returns the first existing key. Callers list camelCase variants
// before snake_case so camelCase is preferred when both are present.
func pick(obj gjson.Result, keys ...string) gjson.Result {
	for _, k := range keys {
		if v := obj.Get(k); v.Exists() {
			return v
		}
	}
	return gjson.Result{}
}

func floatPtr(v gjson.Result) *float64 {
	if !v.Exists() || (v.Type != gjson.Number) {
		return nil
	}
	f := v.Float()
	return &f
}

func clampScore(s int) int {
	if s < 0 {
		return 0
	}
	if s > 100 {
		return 100
	}
	return s
}

func parseDate(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	for _, layout := range dateFormats {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

func riskLevel(s string) models.RiskLevel {
	switch strings.ToLower(s) {
	case "low", "minimal":
		return models.RiskLow
	case "medium", "moderate":
		return models.RiskMedium
	case "high":
		return models.RiskHigh
	default:
		return models.RiskUnknown
	}
}

func recommendation(s string) models.Recommendation {
	switch {
	case strings.HasPrefix(strings.ToLower(s), "excellent"):
		return models.RecommendExcellent
	case strings.HasPrefix(strings.ToLower(s), "good"):
		return models.RecommendGood
	case strings.HasPrefix(strings.ToLower(s), "fair"):
		return models.RecommendFair
	case s == "":
		return ""
	default:
		return models.RecommendPoor
	}
}
