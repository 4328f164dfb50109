package scoring

import (
	"github.com/alikhn/weatherwindow/internal/models"
)

// MSToKmH is the exact m/s to km/h conversion factor.
const MSToKmH = 3.6

// EnsureKmH converts an observation's wind speed to km/h if it is tagged as
// m/s, and retags it. Calling it again is a no-op, so a value merged from
// several code paths can never be converted twice. An untagged wind speed is
// assumed to already be km/h.
func EnsureKmH(obs *models.DailyObservation) {
	if obs.WindSpeed == nil {
		return
	}
	if obs.WindUnit == models.WindMS {
		v := *obs.WindSpeed * MSToKmH
		obs.WindSpeed = &v
		obs.WindUnit = models.WindKmH
	}
	if obs.WindUnit == "" {
		obs.WindUnit = models.WindKmH
	}
}
