package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	"github.com/i474232898/trackside-weather/internal/metrics"
	"github.com/i474232898/trackside-weather/internal/weather"
)

const (
	openMeteoForecastURL = "https://api.open-meteo.com/v1/forecast"
	openMeteoArchiveURL  = "https://archive-api.open-meteo.com/v1/archive"

	openMeteoDateLayout = "2006-01-02"
	openMeteoTimeLayout = "2006-01-02T15:04"

	// Measured precipitation at or above this is reported as a certain chance
	// for archived days, which carry no probabilities.
	wetHourThresholdMm = 0.1

	// archiveLag is how far the archive trails real time. Past events newer
	// than this are served by the forecast endpoint, which keeps recent days.
	archiveLag = 5 * 24 * time.Hour
)

var (
	forecastHourlyFields = []string{
		"temperature_2m", "relative_humidity_2m", "wind_speed_10m",
		"wind_direction_10m", "weather_code", "precipitation_probability",
	}
	archiveHourlyFields = []string{
		"temperature_2m", "relative_humidity_2m", "wind_speed_10m",
		"wind_direction_10m", "weather_code", "precipitation",
	}

	forecastOffsets = []time.Duration{15 * time.Minute, 30 * time.Minute, 45 * time.Minute}
)

// OpenMeteoProvider implements the weather.Provider interface for Open-Meteo.
// Events older than the archive lag are served from the archive API,
// everything else from the forecast API.
type OpenMeteoProvider struct {
	name        string
	forecastURL string
	archiveURL  string
	timeout     time.Duration
	httpCfg     HTTPClientConfig
	forecastCB  *gobreaker.CircuitBreaker
	archiveCB   *gobreaker.CircuitBreaker
	now         func() time.Time
}

// NewOpenMeteoProvider creates the provider. timeout bounds a whole Fetch,
// retries included.
func NewOpenMeteoProvider(client *http.Client, timeout time.Duration) *OpenMeteoProvider {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &OpenMeteoProvider{
		name:        "openmeteo",
		forecastURL: openMeteoForecastURL,
		archiveURL:  openMeteoArchiveURL,
		timeout:     timeout,
		httpCfg: HTTPClientConfig{
			Client: client,
			Backoff: BackoffConfig{
				MaxRetries:      2,
				InitialInterval: 500 * time.Millisecond,
				MaxInterval:     2 * time.Second,
			},
		},
		forecastCB: newBreaker("openmeteo-forecast"),
		archiveCB:  newBreaker("openmeteo-archive"),
		now:        time.Now,
	}
}

func (p *OpenMeteoProvider) Name() string {
	return p.name
}

type openMeteoResponse struct {
	UTCOffsetSeconds int `json:"utc_offset_seconds"`
	Hourly           struct {
		Time                     []string   `json:"time"`
		Temperature              []*float64 `json:"temperature_2m"`
		Humidity                 []*float64 `json:"relative_humidity_2m"`
		WindSpeed                []*float64 `json:"wind_speed_10m"`
		WindDirection            []*float64 `json:"wind_direction_10m"`
		WeatherCode              []*int     `json:"weather_code"`
		PrecipitationProbability []*float64 `json:"precipitation_probability"`
		Precipitation            []*float64 `json:"precipitation"`
	} `json:"hourly"`
}

// Fetch returns the weather at eventTime's hour on its date, both taken in
// the venue's time zone. The venue offset is only known from the response,
// so the request spans the UTC day either side and the day is picked after.
func (p *OpenMeteoProvider) Fetch(ctx context.Context, lat, lon float64, eventTime time.Time) (weather.FetchResult, error) {
	archived := eventTime.Before(p.now().Add(-archiveLag))
	endpoint, baseURL, fields, cb := "forecast", p.forecastURL, forecastHourlyFields, p.forecastCB
	if archived {
		endpoint, baseURL, fields, cb = "archive", p.archiveURL, archiveHourlyFields, p.archiveCB
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	utcDay := eventTime.UTC()
	startDate := utcDay.AddDate(0, 0, -1).Format(openMeteoDateLayout)
	endDate := utcDay.AddDate(0, 0, 1).Format(openMeteoDateLayout)
	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("latitude", fmt.Sprintf("%.4f", lat))
		values.Set("longitude", fmt.Sprintf("%.4f", lon))
		values.Set("start_date", startDate)
		values.Set("end_date", endDate)
		values.Set("hourly", strings.Join(fields, ","))
		values.Set("timezone", "auto")
		values.Set("wind_speed_unit", "kmh")

		u := fmt.Sprintf("%s?%s", baseURL, values.Encode())
		return http.NewRequest(http.MethodGet, u, nil)
	}

	resp, err := doRequestWithResilience(ctx, p.httpCfg, cb, buildRequest)
	if err != nil {
		metrics.WeatherFetches.WithLabelValues(endpoint, "error").Inc()
		return weather.FetchResult{}, p.classify(err)
	}
	defer resp.Body.Close()

	var payload openMeteoResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		metrics.WeatherFetches.WithLabelValues(endpoint, "error").Inc()
		if isTimeout(err) {
			return weather.FetchResult{}, fmt.Errorf("%w: %v", weather.ErrWeatherTimeout, err)
		}
		return weather.FetchResult{}, &weather.WeatherParseError{Provider: p.name, Err: err}
	}

	points, err := payload.points(archived)
	if err != nil {
		metrics.WeatherFetches.WithLabelValues(endpoint, "error").Inc()
		return weather.FetchResult{}, &weather.WeatherParseError{Provider: p.name, Err: err}
	}

	metrics.WeatherFetches.WithLabelValues(endpoint, "ok").Inc()
	return buildFetchResult(points, eventTime), nil
}

func (p *OpenMeteoProvider) classify(err error) error {
	var se *statusError
	switch {
	case isTimeout(err):
		return fmt.Errorf("%w: %v", weather.ErrWeatherTimeout, err)
	case errors.As(err, &se):
		return &weather.WeatherProviderError{Provider: p.name, StatusCode: se.code, Err: err}
	default:
		return &weather.WeatherProviderError{Provider: p.name, Err: err}
	}
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

// points converts the parallel hourly arrays, skipping hours with missing
// core values.
func (r openMeteoResponse) points(archived bool) ([]weather.HourlyPoint, error) {
	h := r.Hourly
	if len(h.Time) == 0 {
		return nil, errors.New("empty hourly series")
	}

	zone := time.FixedZone("", r.UTCOffsetSeconds)
	points := make([]weather.HourlyPoint, 0, len(h.Time))
	for i, raw := range h.Time {
		ts, err := time.ParseInLocation(openMeteoTimeLayout, raw, zone)
		if err != nil {
			return nil, fmt.Errorf("hourly time %q: %w", raw, err)
		}
		temp, okT := floatAt(h.Temperature, i)
		hum, okH := floatAt(h.Humidity, i)
		ws, okW := floatAt(h.WindSpeed, i)
		wd, okD := floatAt(h.WindDirection, i)
		code, okC := intAt(h.WeatherCode, i)
		if !okT || !okH || !okW || !okD || !okC {
			continue
		}

		var chance float64
		if archived {
			if mm, ok := floatAt(h.Precipitation, i); ok && mm >= wetHourThresholdMm {
				chance = 100
			}
		} else {
			chance, _ = floatAt(h.PrecipitationProbability, i)
		}

		points = append(points, weather.HourlyPoint{
			Time:                ts,
			Temperature:         temp,
			Humidity:            hum,
			WindSpeed:           ws,
			WindDirection:       wd,
			WeatherCode:         code,
			PrecipitationChance: chance,
		})
	}
	if len(points) == 0 {
		return nil, errors.New("hourly series has no complete hours")
	}
	return points, nil
}

func floatAt(vals []*float64, i int) (float64, bool) {
	if i >= len(vals) || vals[i] == nil {
		return 0, false
	}
	return *vals[i], true
}

func intAt(vals []*int, i int) (int, bool) {
	if i >= len(vals) || vals[i] == nil {
		return 0, false
	}
	return *vals[i], true
}

func buildFetchResult(points []weather.HourlyPoint, eventTime time.Time) weather.FetchResult {
	// Every point carries the venue zone from utc_offset_seconds.
	local := eventTime.In(points[0].Time.Location())
	day := pointsOnDate(points, local)

	bucket := day[weather.BucketForHour(day, local.Hour())]
	current := snapshotFromPoint(bucket)
	lo, hi := weather.TemperatureRange(day)

	return weather.FetchResult{
		Current:  current,
		Forecast: buildForecast(points, current, local),
		Hourly:   day,
		MinTemp:  lo,
		MaxTemp:  hi,
	}
}

// pointsOnDate keeps the points on local's calendar date, or all of them
// when the series does not cover that date.
func pointsOnDate(points []weather.HourlyPoint, local time.Time) []weather.HourlyPoint {
	y, m, d := local.Date()
	var out []weather.HourlyPoint
	for _, pt := range points {
		if py, pm, pd := pt.Time.Date(); py == y && pm == m && pd == d {
			out = append(out, pt)
		}
	}
	if len(out) == 0 {
		return points
	}
	return out
}

func snapshotFromPoint(pt weather.HourlyPoint) weather.WeatherSnapshot {
	return weather.WeatherSnapshot{
		Condition:           mapOpenMeteoCondition(pt.WeatherCode),
		WindSpeed:           pt.WindSpeed,
		WindDirection:       pt.WindDirection,
		Humidity:            pt.Humidity,
		AirTemperature:      pt.Temperature,
		PrecipitationChance: pt.PrecipitationChance,
		Timestamp:           pt.Time,
	}
}

// buildForecast always yields one entry per offset. eventTime must be in the
// series' zone. Offsets past the end of the series repeat the current
// conditions as an estimate.
func buildForecast(points []weather.HourlyPoint, current weather.WeatherSnapshot, eventTime time.Time) []weather.ForecastEntry {
	const hourKey = "2006-01-02T15"
	byHour := make(map[string]weather.HourlyPoint, len(points))
	for _, pt := range points {
		byHour[pt.Time.Format(hourKey)] = pt
	}

	entries := make([]weather.ForecastEntry, 0, len(forecastOffsets))
	for _, off := range forecastOffsets {
		label := fmt.Sprintf("+%dm", int(off.Minutes()))
		target := eventTime.Add(off)

		if pt, ok := byHour[target.Format(hourKey)]; ok {
			entries = append(entries, weather.ForecastEntry{
				Label: label,
				Detail: fmt.Sprintf("%s, %.1f°C, %.0f%% rain",
					titleCase(mapOpenMeteoCondition(pt.WeatherCode)), pt.Temperature, pt.PrecipitationChance),
			})
			continue
		}
		entries = append(entries, weather.ForecastEntry{
			Label:  label,
			Detail: fmt.Sprintf("%s, %.1f°C (estimated)", titleCase(current.Condition), current.AirTemperature),
		})
	}
	return entries
}

func titleCase(c weather.Condition) string {
	s := string(c)
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// mapOpenMeteoCondition maps WMO weather interpretation codes.
func mapOpenMeteoCondition(code int) weather.Condition {
	switch {
	case code == 0:
		return weather.ConditionClear
	case code >= 1 && code <= 3:
		return weather.ConditionCloudy
	case code == 45 || code == 48:
		return weather.ConditionFog
	case code >= 51 && code <= 57:
		return weather.ConditionDrizzle
	case code >= 61 && code <= 67:
		return weather.ConditionRain
	case code >= 71 && code <= 77:
		return weather.ConditionSnow
	case code >= 80 && code <= 82:
		return weather.ConditionShowers
	case code == 85 || code == 86:
		return weather.ConditionSnowShowers
	case code >= 95 && code <= 99:
		return weather.ConditionThunderstorm
	default:
		return weather.ConditionUnknown
	}
}
