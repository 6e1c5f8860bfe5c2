package weather

import (
	"time"
)

// Condition represents a normalized high-level weather condition.
type Condition string

const (
	ConditionUnknown      Condition = "unknown"
	ConditionClear        Condition = "clear"
	ConditionCloudy       Condition = "cloudy"
	ConditionFog          Condition = "fog"
	ConditionDrizzle      Condition = "drizzle"
	ConditionRain         Condition = "rain"
	ConditionSnow         Condition = "snow"
	ConditionShowers      Condition = "showers"
	ConditionSnowShowers  Condition = "snow showers"
	ConditionThunderstorm Condition = "thunderstorm"
)

// Track is the venue an event runs at. Coordinates and address are optional hints.
type Track struct {
	Name      string
	Latitude  *float64
	Longitude *float64
	Address   string
}

// HasCoordinates reports whether both stored coordinates are present.
func (t Track) HasCoordinates() bool {
	return t.Latitude != nil && t.Longitude != nil
}

// Event is the slice of a racing event this package needs.
type Event struct {
	ID    string
	Name  string
	Date  time.Time
	Track Track
}

// GeocodeResult is a resolved location for a candidate string.
type GeocodeResult struct {
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	DisplayName string  `json:"displayName"`
}

// WeatherSnapshot is the normalized weather at the event's hour.
type WeatherSnapshot struct {
	Condition           Condition `json:"condition"`
	WindSpeed           float64   `json:"windSpeedKmh"`
	WindDirection       float64   `json:"windDirectionDeg"`
	Humidity            float64   `json:"humidityPercent"`
	AirTemperature      float64   `json:"airTempC"`
	PrecipitationChance float64   `json:"precipitationChancePercent"`
	Timestamp           time.Time `json:"timestamp"`
}

// ForecastEntry is a short-range outlook relative to the event time, e.g. "+15m".
type ForecastEntry struct {
	Label  string `json:"label"`
	Detail string `json:"detail"`
}

// HourlyPoint is one bucket of the day's hourly series.
type HourlyPoint struct {
	Time                time.Time
	Temperature         float64
	Humidity            float64
	WindSpeed           float64
	WindDirection       float64
	WeatherCode         int
	PrecipitationChance float64
}

// FetchResult is what a Provider returns for one event day.
type FetchResult struct {
	Current  WeatherSnapshot
	Forecast []ForecastEntry
	Hourly   []HourlyPoint
	MinTemp  float64
	MaxTemp  float64
}

// CacheRecord is one append-only row of resolved weather for an event.
type CacheRecord struct {
	ID               string
	EventID          string
	Latitude         float64
	Longitude        float64
	Snapshot         WeatherSnapshot
	TrackTemperature float64
	MinTemp          float64
	MaxTemp          float64
	Forecast         []ForecastEntry
	IsHistorical     bool
	CachedAt         time.Time
	ExpiresAt        time.Time
}

// Expired reports whether the record is no longer fresh at t.
func (r CacheRecord) Expired(t time.Time) bool {
	return !r.ExpiresAt.After(t)
}

// Result is the caller-facing view of an event's weather.
type Result struct {
	EventID                    string          `json:"eventId"`
	Condition                  Condition       `json:"condition"`
	WindDescription            string          `json:"windDescription"`
	HumidityPercent            float64         `json:"humidityPercent"`
	AirTempC                   float64         `json:"airTempC"`
	TrackTempC                 float64         `json:"trackTempC"`
	PrecipitationChancePercent float64         `json:"precipitationChancePercent"`
	AirTempMinC                float64         `json:"airTempMinC"`
	AirTempMaxC                float64         `json:"airTempMaxC"`
	Forecast                   []ForecastEntry `json:"forecast"`
	IsHistorical               bool            `json:"isHistorical"`
	IsCached                   bool            `json:"isCached"`
	CachedAt                   *time.Time      `json:"cachedAt,omitempty"`
}
