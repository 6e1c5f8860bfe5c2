package weather

import (
	"fmt"
	"math"
)

var compassPoints = [...]string{
	"N", "NNE", "NE", "ENE", "E", "ESE", "SE", "SSE",
	"S", "SSW", "SW", "WSW", "W", "WNW", "NW", "NNW",
}

// CompassPoint converts a bearing in degrees to a 16-point compass label.
func CompassPoint(deg float64) string {
	d := math.Mod(deg, 360)
	if d < 0 {
		d += 360
	}
	idx := int(math.Round(d/22.5)) % len(compassPoints)
	return compassPoints[idx]
}

// DescribeWind renders speed and direction, e.g. "12 km/h NW".
func DescribeWind(speedKmh, directionDeg float64) string {
	if speedKmh < 1 {
		return "calm"
	}
	return fmt.Sprintf("%.0f km/h %s", speedKmh, CompassPoint(directionDeg))
}
