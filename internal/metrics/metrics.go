package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Resolution outcomes.
const (
	OutcomeFresh    = "fresh"
	OutcomeCacheHit = "cache_hit"
	OutcomeDegraded = "degraded"
	OutcomeFailed   = "failed"
)

var (
	// Resolutions counts weather resolutions per event by outcome.
	Resolutions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "trackside",
		Name:      "weather_resolutions_total",
		Help:      "Weather resolutions by outcome",
	}, []string{"outcome"})

	// GeocodeRequests counts geocoding lookups by source and outcome.
	// source is "cache" or the backend name.
	GeocodeRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "trackside",
		Name:      "geocode_requests_total",
		Help:      "Geocoding lookups by source and outcome",
	}, []string{"source", "outcome"})

	// WeatherFetches counts weather provider calls by endpoint and outcome.
	WeatherFetches = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "trackside",
		Name:      "weather_fetches_total",
		Help:      "Weather provider calls by endpoint and outcome",
	}, []string{"endpoint", "outcome"})

	// SweptRecords is the number of records removed by the last expiry sweep.
	SweptRecords = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "trackside",
		Name:      "weather_cache_swept_records",
		Help:      "Records removed by the most recent expiry sweep",
	})
)

// MustRegister registers all collectors with reg.
func MustRegister(reg prometheus.Registerer) {
	reg.MustRegister(Resolutions, GeocodeRequests, WeatherFetches, SweptRecords)
}
