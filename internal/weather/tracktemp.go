package weather

import "math"

const (
	trackTempFactor   = 1.2
	maxSolarBonus     = 5.0
	maxTrackTempC     = 70.0
	solarPeakHour     = 12
	hoursPerSolarDay  = 24.0
	trackTempDecimals = 10.0
)

// EstimateTrackTemperature estimates the racing surface temperature from air
// temperature. hour is the local hour of day (0-23) or nil when unknown.
// The result never drops below airTemp and never exceeds 70°C unless the air
// itself is hotter.
func EstimateTrackTemperature(airTemp float64, hour *int) float64 {
	est := airTemp * trackTempFactor
	if hour != nil {
		est += solarBonus(*hour)
	}
	est = math.Min(est, maxTrackTempC)
	est = math.Max(est, airTemp)

	rounded := math.Round(est*trackTempDecimals) / trackTempDecimals
	if rounded < airTemp {
		rounded = math.Ceil(airTemp*trackTempDecimals) / trackTempDecimals
	}
	return rounded
}

// solarBonus is 0 at midnight and maxSolarBonus at solar noon.
func solarBonus(hour int) float64 {
	h := ((hour % 24) + 24) % 24
	phase := 2 * math.Pi * float64(h-solarPeakHour) / hoursPerSolarDay
	return maxSolarBonus * (1 + math.Cos(phase)) / 2
}
