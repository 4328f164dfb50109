package scoring

import "math"

// Rothfusz regression coefficients for the heat index, converted to °C.
var hiCoeff = [9]float64{
	-8.78469475556, 1.61139411, 2.33854883889, -0.14611605,
	-0.012308094, -0.0164248277778, 0.002211732, 0.00072546, -0.000003582,
}

// HeatIndex approximates apparent temperature for warm humid conditions.
// Below 27°C it returns the air temperature unchanged.
func HeatIndex(tempC, humidity float64) float64 {
	if tempC < 27 {
		return tempC
	}
	t, h := tempC, humidity
	return hiCoeff[0] +
		hiCoeff[1]*t + hiCoeff[2]*h +
		hiCoeff[3]*t*h + hiCoeff[4]*t*t + hiCoeff[5]*h*h +
		hiCoeff[6]*t*t*h + hiCoeff[7]*t*h*h + hiCoeff[8]*t*t*h*h
}

// WindChill approximates apparent temperature for cold windy conditions
// using the JAG/TI formula. Wind speed is km/h. Outside its validity range
// (temp above 10°C or wind below 4.8 km/h) it returns the air temperature.
func WindChill(tempC, windKmH float64) float64 {
	if tempC > 10 || windKmH < 4.8 {
		return tempC
	}
	v := math.Pow(windKmH, 0.16)
	return 13.12 + 0.6215*tempC - 11.37*v + 0.3965*tempC*v
}

// FeelsLike picks the applicable apparent-temperature approximation.
func FeelsLike(tempC float64, humidity, windKmH *float64) float64 {
	if tempC >= 27 && humidity != nil {
		return HeatIndex(tempC, *humidity)
	}
	if tempC <= 10 && windKmH != nil {
		return WindChill(tempC, *windKmH)
	}
	return tempC
}
