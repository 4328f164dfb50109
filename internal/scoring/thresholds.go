package scoring

import (
	"github.com/alikhn/weatherwindow/internal/models"
)

// comfortBands maps each activity to its acceptable weather band. Temperature
// in °C, wind in km/h, rain in mm/day, humidity in percent. Weddings are the
// fussiest, farming the most tolerant.
var comfortBands = map[models.Activity]models.Thresholds{
	models.ActivityWedding: {
		MinTemp: 18, MaxTemp: 28, MaxWind: 25, MaxRain: 5,
		HumidityMin: 30, HumidityMax: 70,
	},
	models.ActivityHiking: {
		MinTemp: 10, MaxTemp: 25, MaxWind: 40, MaxRain: 15,
		HumidityMin: 20, HumidityMax: 80,
	},
	models.ActivityFarming: {
		MinTemp: 0, MaxTemp: 35, MaxWind: 60, MaxRain: 40,
		HumidityMin: 20, HumidityMax: 90,
	},
	models.ActivityFestival: {
		MinTemp: 15, MaxTemp: 30, MaxWind: 30, MaxRain: 8,
		HumidityMin: 25, HumidityMax: 75,
	},
	models.ActivityGeneral: {
		MinTemp: 15, MaxTemp: 30, MaxWind: 35, MaxRain: 12,
		HumidityMin: 20, HumidityMax: 80,
	},
}

// BandFor returns the threshold band for an activity. Custom activities use
// the supplied band; unknown activities fall back to general.
func BandFor(activity models.Activity, custom *models.Thresholds) models.Thresholds {
	if activity == models.ActivityCustom && custom != nil {
		return *custom
	}
	if band, ok := comfortBands[activity]; ok {
		return band
	}
	return comfortBands[models.ActivityGeneral]
}
