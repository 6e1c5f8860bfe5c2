package weather

import "math"

// TemperatureRange returns the lowest and highest air temperature across the
// hourly series. Both are zero for an empty series.
func TemperatureRange(points []HourlyPoint) (lo, hi float64) {
	if len(points) == 0 {
		return 0, 0
	}
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, p := range points {
		lo = math.Min(lo, p.Temperature)
		hi = math.Max(hi, p.Temperature)
	}
	return lo, hi
}

// BucketForHour picks the index of the first point whose local hour matches
// hour, falling back to the first bucket.
func BucketForHour(points []HourlyPoint, hour int) int {
	for i, p := range points {
		if p.Time.Hour() == hour {
			return i
		}
	}
	return 0
}
