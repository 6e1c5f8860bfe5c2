package weather

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrEventNotFound is returned when the event or its track does not exist.
	ErrEventNotFound = errors.New("event not found")

	// ErrCacheMiss is returned by stores when no record matches.
	ErrCacheMiss = errors.New("no cached weather for event")

	// ErrGeocodeNoResults means the provider answered but knows no such place.
	ErrGeocodeNoResults = errors.New("geocoding returned no results")

	// ErrWeatherTimeout means the weather provider did not answer in time.
	ErrWeatherTimeout = errors.New("weather provider timed out")
)

// GeocodeProviderError is an HTTP status failure from the geocoding provider
// (rate limit, auth, outage). Further candidates would hit the same wall.
type GeocodeProviderError struct {
	StatusCode int
	Err        error
}

func (e *GeocodeProviderError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("geocoding provider unavailable: %v", e.Err)
	}
	return fmt.Sprintf("geocoding provider returned status %d", e.StatusCode)
}

func (e *GeocodeProviderError) Unwrap() error { return e.Err }

// GeocodeTransportError wraps network-level failures talking to the geocoder.
type GeocodeTransportError struct {
	Err error
}

func (e *GeocodeTransportError) Error() string {
	return fmt.Sprintf("geocoding transport error: %v", e.Err)
}

func (e *GeocodeTransportError) Unwrap() error { return e.Err }

// WeatherProviderError is a failed call to the weather provider.
// StatusCode is 0 when no HTTP response was received.
type WeatherProviderError struct {
	Provider   string
	StatusCode int
	Err        error
}

func (e *WeatherProviderError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s returned status %d", e.Provider, e.StatusCode)
	}
	return fmt.Sprintf("%s request failed: %v", e.Provider, e.Err)
}

func (e *WeatherProviderError) Unwrap() error { return e.Err }

// WeatherParseError means the provider answered with a body we could not use.
type WeatherParseError struct {
	Provider string
	Err      error
}

func (e *WeatherParseError) Error() string {
	return fmt.Sprintf("%s response unusable: %v", e.Provider, e.Err)
}

func (e *WeatherParseError) Unwrap() error { return e.Err }

// ResolutionExhaustedError is returned when live resolution failed and no
// cached record exists to fall back on.
type ResolutionExhaustedError struct {
	EventID    string
	Candidates []string
	Err        error
}

func (e *ResolutionExhaustedError) Error() string {
	attempted := "none"
	if len(e.Candidates) > 0 {
		attempted = strings.Join(quoteAll(e.Candidates), ", ")
	}
	return fmt.Sprintf("weather resolution exhausted for event %s (candidates tried: %s): %v", e.EventID, attempted, e.Err)
}

func (e *ResolutionExhaustedError) Unwrap() error { return e.Err }

func quoteAll(items []string) []string {
	out := make([]string, len(items))
	for i, s := range items {
		out[i] = fmt.Sprintf("%q", s)
	}
	return out
}
