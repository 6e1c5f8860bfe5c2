package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/sony/gobreaker"

	"github.com/i474232898/trackside-weather/internal/weather"
)

const (
	nominatimURL = "https://nominatim.openstreetmap.org/search"

	// DefaultUserAgent identifies us as the Nominatim usage policy requires.
	DefaultUserAgent = "trackside-weather/1.0 (github.com/i474232898/trackside-weather)"
)

// NominatimGeocoder is a GeocodeBackend for OpenStreetMap Nominatim.
type NominatimGeocoder struct {
	baseURL   string
	userAgent string
	httpCfg   HTTPClientConfig
	circuit   *gobreaker.CircuitBreaker
}

// NewNominatimGeocoder creates the backend. Status errors are never retried
// here; the caller decides what a failure means.
func NewNominatimGeocoder(client *http.Client, userAgent string) *NominatimGeocoder {
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	return &NominatimGeocoder{
		baseURL:   nominatimURL,
		userAgent: userAgent,
		httpCfg: HTTPClientConfig{
			Client: client,
			Backoff: BackoffConfig{
				InitialInterval: time.Second,
			},
		},
		circuit: newBreaker("nominatim"),
	}
}

func (g *NominatimGeocoder) Name() string {
	return "nominatim"
}

type nominatimResponse struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}

// Geocode looks up a single best match for query.
func (g *NominatimGeocoder) Geocode(ctx context.Context, query string) (weather.GeocodeResult, error) {
	buildRequest := func() (*http.Request, error) {
		params := url.Values{}
		params.Set("q", query)
		params.Set("format", "json")
		params.Set("limit", "1")

		req, err := http.NewRequest(http.MethodGet, fmt.Sprintf("%s?%s", g.baseURL, params.Encode()), nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("User-Agent", g.userAgent)
		req.Header.Set("Accept", "application/json")
		return req, nil
	}

	resp, err := doRequestWithResilience(ctx, g.httpCfg, g.circuit, buildRequest)
	if err != nil {
		var se *statusError
		switch {
		case errors.As(err, &se):
			return weather.GeocodeResult{}, &weather.GeocodeProviderError{StatusCode: se.code, Err: err}
		case errors.Is(err, errCircuitOpen):
			return weather.GeocodeResult{}, &weather.GeocodeProviderError{Err: err}
		default:
			return weather.GeocodeResult{}, &weather.GeocodeTransportError{Err: err}
		}
	}
	defer resp.Body.Close()

	var results []nominatimResponse
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return weather.GeocodeResult{}, &weather.GeocodeTransportError{Err: fmt.Errorf("decoding response: %w", err)}
	}
	if len(results) == 0 {
		return weather.GeocodeResult{}, fmt.Errorf("%w for %q", weather.ErrGeocodeNoResults, query)
	}

	first := results[0]
	lat, err := strconv.ParseFloat(first.Lat, 64)
	if err != nil {
		return weather.GeocodeResult{}, &weather.GeocodeTransportError{Err: fmt.Errorf("parsing latitude: %w", err)}
	}
	lon, err := strconv.ParseFloat(first.Lon, 64)
	if err != nil {
		return weather.GeocodeResult{}, &weather.GeocodeTransportError{Err: fmt.Errorf("parsing longitude: %w", err)}
	}

	return weather.GeocodeResult{
		Latitude:    lat,
		Longitude:   lon,
		DisplayName: first.DisplayName,
	}, nil
}
