package weather

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/i474232898/trackside-weather/internal/metrics"
)

const (
	// HistoricalTTL applies to past events; observed weather does not change.
	HistoricalTTL = 7 * 24 * time.Hour
	// CurrentTTL applies to present and future events; forecasts move.
	CurrentTTL = time.Hour

	// ResolveTimeout bounds one shared resolution: rate-limited geocoding of
	// every candidate plus the weather fetch.
	ResolveTimeout = 2 * time.Minute
)

// Service orchestrates event lookup, geocoding, weather fetch and caching.
type Service struct {
	events   EventLookup
	store    Store
	geocoder Geocoder
	provider Provider

	now            func() time.Time
	resolveTimeout time.Duration
	flight         singleflight.Group
}

// NewService creates a new Service.
func NewService(events EventLookup, store Store, geocoder Geocoder, provider Provider) *Service {
	return &Service{
		events:   events,
		store:    store,
		geocoder: geocoder,
		provider: provider,

		now:            time.Now,
		resolveTimeout: ResolveTimeout,
	}
}

// ResolveWeatherForEvent returns weather for the event, from cache when a
// fresh record exists, otherwise live. When live resolution fails any
// previous record is served instead, even if expired. Only ErrEventNotFound
// and *ResolutionExhaustedError are returned for resolution failures, plus
// ctx.Err() when the caller gives up before the resolution finishes.
//
// Concurrent calls for the same event share a single resolution. It runs
// detached from every caller's cancellation, bounded by ResolveTimeout.
func (s *Service) ResolveWeatherForEvent(ctx context.Context, eventID string) (*Result, error) {
	ch := s.flight.DoChan(eventID, func() (interface{}, error) {
		rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.resolveTimeout)
		defer cancel()
		return s.resolve(rctx, eventID)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-ch:
		if r.Err != nil {
			return nil, r.Err
		}
		res := r.Val.(*Result)
		if r.Shared {
			// Callers must not alias each other's forecast slice.
			cp := *res
			cp.Forecast = append([]ForecastEntry(nil), res.Forecast...)
			return &cp, nil
		}
		return res, nil
	}
}

func (s *Service) resolve(ctx context.Context, eventID string) (*Result, error) {
	event, err := s.events.GetEventWithTrack(ctx, eventID)
	if err != nil {
		if errors.Is(err, ErrEventNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("loading event %s: %w", eventID, err)
	}

	now := s.now()
	rec, err := s.store.GetFresh(ctx, eventID, now)
	switch {
	case err == nil:
		metrics.Resolutions.WithLabelValues(metrics.OutcomeCacheHit).Inc()
		return toResult(rec, true), nil
	case !errors.Is(err, ErrCacheMiss):
		log.Printf("WARN: cache read failed for event %s, resolving live: %v", eventID, err)
	}

	loc, attempted, err := s.resolveLocation(ctx, event)
	if err != nil {
		return s.degrade(ctx, eventID, attempted, err)
	}

	fetched, err := s.provider.Fetch(ctx, loc.Latitude, loc.Longitude, event.Date)
	if err != nil {
		return s.degrade(ctx, eventID, attempted, err)
	}

	rec = s.newRecord(event, loc, fetched, now)
	if err := s.store.Put(ctx, rec); err != nil {
		// Fresh data is still good; it just won't be cached.
		log.Printf("ERROR: caching weather for event %s failed: %v", eventID, err)
		metrics.Resolutions.WithLabelValues(metrics.OutcomeFresh).Inc()
		res := toResult(rec, false)
		res.CachedAt = nil
		return res, nil
	}

	metrics.Resolutions.WithLabelValues(metrics.OutcomeFresh).Inc()
	return toResult(rec, false), nil
}

// SweepExpired removes every record that has expired by now.
func (s *Service) SweepExpired(ctx context.Context) (int, error) {
	n, err := s.store.SweepExpired(ctx, s.now())
	if err != nil {
		return 0, fmt.Errorf("sweeping expired weather: %w", err)
	}
	metrics.SweptRecords.Set(float64(n))
	return n, nil
}

func (s *Service) newRecord(event Event, loc GeocodeResult, fetched FetchResult, now time.Time) CacheRecord {
	historical := event.Date.Before(now)
	ttl := CurrentTTL
	if historical {
		ttl = HistoricalTTL
	}

	snap := fetched.Current
	hour := snap.Timestamp.Hour()
	if snap.Timestamp.IsZero() {
		hour = event.Date.Hour()
	}

	return CacheRecord{
		ID:               uuid.NewString(),
		EventID:          event.ID,
		Latitude:         loc.Latitude,
		Longitude:        loc.Longitude,
		Snapshot:         snap,
		TrackTemperature: EstimateTrackTemperature(snap.AirTemperature, &hour),
		MinTemp:          fetched.MinTemp,
		MaxTemp:          fetched.MaxTemp,
		Forecast:         fetched.Forecast,
		IsHistorical:     historical,
		CachedAt:         now,
		ExpiresAt:        now.Add(ttl),
	}
}

// degrade serves the most recent record regardless of expiry, or fails with
// the full diagnostic when there is none.
func (s *Service) degrade(ctx context.Context, eventID string, attempted []string, cause error) (*Result, error) {
	rec, err := s.store.GetLast(context.WithoutCancel(ctx), eventID)
	if err == nil {
		log.Printf("WARN: live weather for event %s failed, serving record cached at %s: %v",
			eventID, rec.CachedAt.Format(time.RFC3339), cause)
		metrics.Resolutions.WithLabelValues(metrics.OutcomeDegraded).Inc()
		return toResult(rec, true), nil
	}
	if !errors.Is(err, ErrCacheMiss) {
		log.Printf("ERROR: degraded cache read failed for event %s: %v", eventID, err)
	}

	metrics.Resolutions.WithLabelValues(metrics.OutcomeFailed).Inc()
	return nil, &ResolutionExhaustedError{
		EventID:    eventID,
		Candidates: attempted,
		Err:        cause,
	}
}

func toResult(rec CacheRecord, cached bool) *Result {
	cachedAt := rec.CachedAt
	// Stores may hand out their own backing array.
	forecast := append(make([]ForecastEntry, 0, len(rec.Forecast)), rec.Forecast...)
	return &Result{
		EventID:                    rec.EventID,
		Condition:                  rec.Snapshot.Condition,
		WindDescription:            DescribeWind(rec.Snapshot.WindSpeed, rec.Snapshot.WindDirection),
		HumidityPercent:            rec.Snapshot.Humidity,
		AirTempC:                   rec.Snapshot.AirTemperature,
		TrackTempC:                 rec.TrackTemperature,
		PrecipitationChancePercent: rec.Snapshot.PrecipitationChance,
		AirTempMinC:                rec.MinTemp,
		AirTempMaxC:                rec.MaxTemp,
		Forecast:                   forecast,
		IsHistorical:               rec.IsHistorical,
		IsCached:                   cached,
		CachedAt:                   &cachedAt,
	}
}
