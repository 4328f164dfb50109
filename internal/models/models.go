package models

import (
	"time"
)

// Activity identifies the kind of outdoor event being planned.
type Activity string

const (
	ActivityWedding  Activity = "wedding"
	ActivityHiking   Activity = "hiking"
	ActivityFarming  Activity = "farming"
	ActivityFestival Activity = "festival"
	ActivityGeneral  Activity = "general"
	ActivityCustom   Activity = "custom"
)

// Valid reports whether the activity is one of the known kinds.
func (a Activity) Valid() bool {
	switch a {
	case ActivityWedding, ActivityHiking, ActivityFarming, ActivityFestival, ActivityGeneral, ActivityCustom:
		return true
	}
	return false
}

// Recommendation categorizes a safety score.
type Recommendation string

const (
	RecommendExcellent Recommendation = "excellent"
	RecommendGood      Recommendation = "good"
	RecommendFair      Recommendation = "fair"
	RecommendPoor      Recommendation = "poor"
)

// RiskLevel summarizes a whole weather window.
type RiskLevel string

const (
	RiskLow     RiskLevel = "low"
	RiskMedium  RiskLevel = "medium"
	RiskHigh    RiskLevel = "high"
	RiskUnknown RiskLevel = "unknown"
)

// WindUnit tags how a wind speed value is expressed. Conversion to km/h
// happens exactly once, at the point the tag flips.
type WindUnit string

const (
	WindKmH WindUnit = "kmh"
	WindMS  WindUnit = "ms"
)

// Thresholds is an activity's acceptable band. Wind and rain are upper
// bounds; humidity is a closed band. Wind thresholds are km/h.
type Thresholds struct {
	MinTemp     float64 `json:"minTemp"`
	MaxTemp     float64 `json:"maxTemp"`
	MaxWind     float64 `json:"maxWind"`
	MaxRain     float64 `json:"maxRain"`
	HumidityMin float64 `json:"humidityMin"`
	HumidityMax float64 `json:"humidityMax"`
}

// AnalysisRequest describes one analysis run. DateFrom must precede DateTo.
type AnalysisRequest struct {
	Location  string      `json:"location"`
	Latitude  float64     `json:"latitude"`
	Longitude float64     `json:"longitude"`
	DateFrom  time.Time   `json:"dateFrom"`
	DateTo    time.Time   `json:"dateTo"`
	Activity  Activity    `json:"activity"`
	Custom    *Thresholds `json:"custom,omitempty"` // only for ActivityCustom
}

// DailyObservation is one day's weather reading. Meteorological fields are
// pointers: an absent reading is nil and never penalized by scoring.
type DailyObservation struct {
	Date          time.Time `json:"date"`
	Temperature   *float64  `json:"temperature,omitempty"`
	Precipitation *float64  `json:"precipitation,omitempty"`
	WindSpeed     *float64  `json:"windSpeed,omitempty"`
	WindUnit      WindUnit  `json:"windUnit,omitempty"`
	Humidity      *float64  `json:"humidity,omitempty"`
	CloudCover    *float64  `json:"cloudCover,omitempty"`
	UVIndex       *float64  `json:"uvIndex,omitempty"`
}

// ScoredCandidate is a day plus its suitability verdict for an activity.
type ScoredCandidate struct {
	DailyObservation
	SafetyScore    int            `json:"safetyScore"`
	SafetyFactors  []string       `json:"safetyFactors"`
	Recommendation Recommendation `json:"recommendation"`
}

// WeatherWindow summarizes the analyzed date range.
type WeatherWindow struct {
	TotalDays    int       `json:"totalDays"`
	SuitableDays int       `json:"suitableDays"`
	RiskLevel    RiskLevel `json:"riskLevel"`
}

// ThresholdAnalysis holds the window-level extreme-condition flags.
type ThresholdAnalysis struct {
	VeryHot           bool `json:"veryHot"`
	VeryCold          bool `json:"veryCold"`
	VeryWindy         bool `json:"veryWindy"`
	VeryWet           bool `json:"veryWet"`
	VeryUncomfortable bool `json:"veryUncomfortable"`
}

// DateRange is the inclusive civil-date span of an analysis.
type DateRange struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

// AnalysisResult is the canonical output shape. Every field is always
// populated; consumers never see nil slices or missing sub-objects.
type AnalysisResult struct {
	ID                string            `json:"id,omitempty"`
	BestDays          []ScoredCandidate `json:"bestDays"`
	WeatherWindow     WeatherWindow     `json:"weatherWindow"`
	ThresholdAnalysis ThresholdAnalysis `json:"thresholdAnalysis"`
	DataSources       []string          `json:"dataSources"`
	Location          string            `json:"location"`
	DateRange         DateRange         `json:"dateRange"`
	Confidence        float64           `json:"confidence"`
	Summary           string            `json:"summary,omitempty"`
	Error             string            `json:"error,omitempty"`
}

// RecentSearch is one saved location selection.
type RecentSearch struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Latitude   float64   `json:"latitude"`
	Longitude  float64   `json:"longitude"`
	SearchedAt time.Time `json:"searchedAt"`
}

// Float returns a pointer to v. Convenience for building observations.
func Float(v float64) *float64 {
	return &v
}
