package providers

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/maypok86/otter/v2"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"

	"github.com/i474232898/trackside-weather/internal/metrics"
	"github.com/i474232898/trackside-weather/internal/weather"
)

const (
	geocodeCacheSize = 10_000

	// maxLimiterWait caps how long a detached lookup queues for a slot.
	maxLimiterWait = time.Minute
)

// GeocodeBackend performs one uncached, unthrottled lookup.
// Errors must use the weather geocoding error types.
type GeocodeBackend interface {
	Name() string
	Geocode(ctx context.Context, query string) (weather.GeocodeResult, error)
}

// GeocodingClient implements weather.Geocoder on top of a backend. It caches
// successful lookups by exact candidate string for its own lifetime and spaces
// outbound calls through the limiter. Entries never expire, so a wrong match
// sticks until the process restarts.
type GeocodingClient struct {
	backend GeocodeBackend
	limiter *rate.Limiter
	timeout time.Duration
	maxWait time.Duration
	cache   *otter.Cache[string, weather.GeocodeResult]
	flight  singleflight.Group
}

// NewRateLimiter allows one outbound call per interval with no burst.
// Nominatim's usage policy needs 1s.
func NewRateLimiter(interval time.Duration) *rate.Limiter {
	return rate.NewLimiter(rate.Every(interval), 1)
}

// NewGeocodingClient wires a backend with its own cache and limiter.
func NewGeocodingClient(backend GeocodeBackend, limiter *rate.Limiter, timeout time.Duration) *GeocodingClient {
	if limiter == nil {
		limiter = NewRateLimiter(time.Second)
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &GeocodingClient{
		backend: backend,
		limiter: limiter,
		timeout: timeout,
		maxWait: maxLimiterWait,
		cache: otter.Must(&otter.Options[string, weather.GeocodeResult]{
			MaximumSize: geocodeCacheSize,
		}),
	}
}

// Resolve returns coordinates for candidate.
func (c *GeocodingClient) Resolve(ctx context.Context, candidate string) (weather.GeocodeResult, error) {
	if strings.TrimSpace(candidate) == "" {
		return weather.GeocodeResult{}, fmt.Errorf("empty candidate: %w", weather.ErrGeocodeNoResults)
	}
	if res, ok := c.cache.GetIfPresent(candidate); ok {
		metrics.GeocodeRequests.WithLabelValues("cache", "ok").Inc()
		return res, nil
	}

	// The shared lookup outlives any single caller so that one caller giving
	// up does not fail the others; its result still lands in the cache.
	ch := c.flight.DoChan(candidate, func() (interface{}, error) {
		if res, ok := c.cache.GetIfPresent(candidate); ok {
			return res, nil
		}
		return c.lookup(context.WithoutCancel(ctx), candidate)
	})

	select {
	case <-ctx.Done():
		return weather.GeocodeResult{}, &weather.GeocodeTransportError{Err: ctx.Err()}
	case r := <-ch:
		if r.Err != nil {
			return weather.GeocodeResult{}, r.Err
		}
		return r.Val.(weather.GeocodeResult), nil
	}
}

func (c *GeocodingClient) lookup(ctx context.Context, candidate string) (weather.GeocodeResult, error) {
	waitCtx, cancelWait := context.WithTimeout(ctx, c.maxWait)
	err := c.limiter.Wait(waitCtx)
	cancelWait()
	if err != nil {
		return weather.GeocodeResult{}, &weather.GeocodeTransportError{Err: err}
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	res, err := c.backend.Geocode(ctx, candidate)
	if err != nil {
		metrics.GeocodeRequests.WithLabelValues(c.backend.Name(), "error").Inc()
		log.Printf("DEBUG: geocoder: %s lookup %q failed: %v", c.backend.Name(), candidate, err)
		return weather.GeocodeResult{}, err
	}

	metrics.GeocodeRequests.WithLabelValues(c.backend.Name(), "ok").Inc()
	c.cache.Set(candidate, res)
	return res, nil
}
