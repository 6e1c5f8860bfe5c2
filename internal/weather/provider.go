package weather

import (
	"context"
	"time"
)

// EventLookup loads an event together with its track hints.
// It returns ErrEventNotFound when either is missing.
type EventLookup interface {
	GetEventWithTrack(ctx context.Context, eventID string) (Event, error)
}

// Geocoder resolves a free-text candidate to coordinates.
// Errors are ErrGeocodeNoResults, *GeocodeProviderError or *GeocodeTransportError.
type Geocoder interface {
	Resolve(ctx context.Context, candidate string) (GeocodeResult, error)
}

// Provider abstracts the weather data source.
// Errors are *WeatherProviderError, *WeatherParseError or ErrWeatherTimeout.
type Provider interface {
	Name() string
	Fetch(ctx context.Context, lat, lon float64, eventTime time.Time) (FetchResult, error)
}

// Store is the contract the in-memory store and the SQLite store must satisfy.
// Getters return ErrCacheMiss when nothing matches.
type Store interface {
	Put(ctx context.Context, rec CacheRecord) error
	GetFresh(ctx context.Context, eventID string, now time.Time) (CacheRecord, error)
	GetLast(ctx context.Context, eventID string) (CacheRecord, error)
	SweepExpired(ctx context.Context, cutoff time.Time) (int, error)
}
