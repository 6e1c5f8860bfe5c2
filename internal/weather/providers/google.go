package providers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"

	"github.com/kelvins/geocoder"

	"github.com/i474232898/trackside-weather/internal/weather"
)

// GoogleGeocoder is a GeocodeBackend backed by the Google Geocoding API.
type GoogleGeocoder struct {
	apiKey string
	lookup func(geocoder.Address) (geocoder.Location, error)
}

// The geocoder package reads its API key from a package variable.
var googleKeyMu sync.Mutex

// NewGoogleGeocoder creates the backend.
func NewGoogleGeocoder(apiKey string) *GoogleGeocoder {
	return &GoogleGeocoder{apiKey: apiKey, lookup: geocoder.Geocoding}
}

func (g *GoogleGeocoder) Name() string {
	return "google"
}

// Geocode resolves query. The underlying library takes no context, so the
// call keeps running in the background if ctx ends first.
func (g *GoogleGeocoder) Geocode(ctx context.Context, query string) (weather.GeocodeResult, error) {
	if g.apiKey == "" {
		return weather.GeocodeResult{}, &weather.GeocodeProviderError{
			StatusCode: http.StatusUnauthorized,
			Err:        errors.New("google maps api key not configured"),
		}
	}

	type outcome struct {
		loc geocoder.Location
		err error
	}
	done := make(chan outcome, 1)
	go func() {
		googleKeyMu.Lock()
		geocoder.ApiKey = g.apiKey
		loc, err := g.lookup(geocoder.Address{Street: query})
		googleKeyMu.Unlock()
		done <- outcome{loc: loc, err: err}
	}()

	select {
	case <-ctx.Done():
		return weather.GeocodeResult{}, &weather.GeocodeTransportError{Err: ctx.Err()}
	case out := <-done:
		if out.err != nil {
			return weather.GeocodeResult{}, classifyGoogleError(out.err)
		}
		if out.loc.Latitude == 0 && out.loc.Longitude == 0 {
			return weather.GeocodeResult{}, weather.ErrGeocodeNoResults
		}
		return weather.GeocodeResult{
			Latitude:    out.loc.Latitude,
			Longitude:   out.loc.Longitude,
			DisplayName: query,
		}, nil
	}
}

// classifyGoogleError maps the library's status-text errors onto the
// geocoding error taxonomy.
func classifyGoogleError(err error) error {
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "no results"), strings.Contains(msg, "zero_results"):
		return weather.ErrGeocodeNoResults
	case strings.Contains(msg, "quota"), strings.Contains(msg, "over_query_limit"):
		return &weather.GeocodeProviderError{StatusCode: http.StatusTooManyRequests, Err: err}
	case strings.Contains(msg, "denied"), strings.Contains(msg, "invalid"):
		return &weather.GeocodeProviderError{StatusCode: http.StatusUnauthorized, Err: err}
	default:
		return &weather.GeocodeTransportError{Err: err}
	}
}
