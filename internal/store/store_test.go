package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/i474232898/trackside-weather/internal/database"
	"github.com/i474232898/trackside-weather/internal/weather"
)

var base = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

func record(id, eventID string, cachedAt time.Time, ttl time.Duration) weather.CacheRecord {
	return weather.CacheRecord{
		ID:        id,
		EventID:   eventID,
		Latitude:  -33.8,
		Longitude: 150.87,
		Snapshot: weather.WeatherSnapshot{
			Condition:           weather.ConditionCloudy,
			WindSpeed:           14,
			WindDirection:       200,
			Humidity:            65,
			AirTemperature:      21.5,
			PrecipitationChance: 10,
			Timestamp:           cachedAt.Add(-time.Hour),
		},
		TrackTemperature: 30.8,
		MinTemp:          15,
		MaxTemp:          26,
		Forecast: []weather.ForecastEntry{
			{Label: "+15m", Detail: "Cloudy, 21.5°C, 10% rain"},
		},
		IsHistorical: true,
		CachedAt:     cachedAt,
		ExpiresAt:    cachedAt.Add(ttl),
	}
}

// stores returns a fresh instance of every backend.
func stores(t *testing.T) map[string]weather.Store {
	t.Helper()
	db, err := database.Open(filepath.Join(t.TempDir(), "weather.db"))
	if err != nil {
		t.Fatalf("database.Open() error = %v", err)
	}
	t.Cleanup(func() { db.Close() })

	return map[string]weather.Store{
		"memory": NewMemoryStore(),
		"sqlite": NewSQLiteStore(db),
	}
}

func TestStoreMissOnEmpty(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			if _, err := s.GetFresh(ctx, "evt", base); !errors.Is(err, weather.ErrCacheMiss) {
				t.Errorf("GetFresh() error = %v, want ErrCacheMiss", err)
			}
			if _, err := s.GetLast(ctx, "evt"); !errors.Is(err, weather.ErrCacheMiss) {
				t.Errorf("GetLast() error = %v, want ErrCacheMiss", err)
			}
		})
	}
}

func TestStoreRoundTrip(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			want := record("r1", "evt", base, time.Hour)
			if err := s.Put(ctx, want); err != nil {
				t.Fatalf("Put() error = %v", err)
			}

			got, err := s.GetFresh(ctx, "evt", base.Add(time.Minute))
			if err != nil {
				t.Fatalf("GetFresh() error = %v", err)
			}
			if got.ID != want.ID || got.Snapshot.Condition != want.Snapshot.Condition ||
				got.Snapshot.AirTemperature != want.Snapshot.AirTemperature ||
				got.TrackTemperature != want.TrackTemperature || !got.IsHistorical {
				t.Errorf("GetFresh() = %+v, want %+v", got, want)
			}
			if !got.CachedAt.Equal(want.CachedAt) || !got.ExpiresAt.Equal(want.ExpiresAt) {
				t.Errorf("timestamps = %v/%v, want %v/%v", got.CachedAt, got.ExpiresAt, want.CachedAt, want.ExpiresAt)
			}
			if !got.Snapshot.Timestamp.Equal(want.Snapshot.Timestamp) {
				t.Errorf("observed = %v, want %v", got.Snapshot.Timestamp, want.Snapshot.Timestamp)
			}
			if len(got.Forecast) != 1 || got.Forecast[0] != want.Forecast[0] {
				t.Errorf("forecast = %+v", got.Forecast)
			}
		})
	}
}

func TestStoreFreshVersusLast(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			old := record("old", "evt", base, time.Hour)
			if err := s.Put(ctx, old); err != nil {
				t.Fatalf("Put() error = %v", err)
			}

			later := base.Add(2 * time.Hour)
			if _, err := s.GetFresh(ctx, "evt", later); !errors.Is(err, weather.ErrCacheMiss) {
				t.Errorf("GetFresh() after expiry error = %v, want ErrCacheMiss", err)
			}
			got, err := s.GetLast(ctx, "evt")
			if err != nil || got.ID != "old" {
				t.Fatalf("GetLast() = %v, %v; want expired record", got.ID, err)
			}

			// Expiry is exclusive: a record is stale exactly at ExpiresAt.
			if _, err := s.GetFresh(ctx, "evt", old.ExpiresAt); !errors.Is(err, weather.ErrCacheMiss) {
				t.Errorf("GetFresh() at ExpiresAt error = %v, want ErrCacheMiss", err)
			}
		})
	}
}

func TestStoreNewestWins(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			for i, id := range []string{"a", "b", "c"} {
				rec := record(id, "evt", base.Add(time.Duration(i)*time.Minute), time.Hour)
				if err := s.Put(ctx, rec); err != nil {
					t.Fatalf("Put(%s) error = %v", id, err)
				}
			}
			if err := s.Put(ctx, record("other", "evt-2", base.Add(time.Hour), time.Hour)); err != nil {
				t.Fatalf("Put(other) error = %v", err)
			}

			fresh, err := s.GetFresh(ctx, "evt", base.Add(5*time.Minute))
			if err != nil || fresh.ID != "c" {
				t.Errorf("GetFresh() = %q, %v; want c", fresh.ID, err)
			}
			last, err := s.GetLast(ctx, "evt")
			if err != nil || last.ID != "c" {
				t.Errorf("GetLast() = %q, %v; want c", last.ID, err)
			}
		})
	}
}

func TestStoreSweepExpired(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			recs := []weather.CacheRecord{
				record("short", "evt", base, time.Hour),
				record("long", "evt", base, 7*24*time.Hour),
				record("other", "evt-2", base, 30*time.Minute),
			}
			for _, r := range recs {
				if err := s.Put(ctx, r); err != nil {
					t.Fatalf("Put(%s) error = %v", r.ID, err)
				}
			}

			n, err := s.SweepExpired(ctx, base.Add(time.Hour))
			if err != nil {
				t.Fatalf("SweepExpired() error = %v", err)
			}
			if n != 2 {
				t.Errorf("SweepExpired() removed %d, want 2", n)
			}

			if got, err := s.GetLast(ctx, "evt"); err != nil || got.ID != "long" {
				t.Errorf("GetLast(evt) = %q, %v; want long", got.ID, err)
			}
			if _, err := s.GetLast(ctx, "evt-2"); !errors.Is(err, weather.ErrCacheMiss) {
				t.Errorf("GetLast(evt-2) error = %v, want ErrCacheMiss", err)
			}

			n, err = s.SweepExpired(ctx, base.Add(time.Hour))
			if err != nil || n != 0 {
				t.Errorf("second SweepExpired() = %d, %v; want 0", n, err)
			}
		})
	}
}

func TestMemoryStoreLen(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	for _, id := range []string{"a", "b"} {
		if err := s.Put(ctx, record(id, "evt", base, time.Hour)); err != nil {
			t.Fatalf("Put() error = %v", err)
		}
	}
	if s.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", s.Len())
	}
	if _, err := s.SweepExpired(ctx, base.Add(2*time.Hour)); err != nil {
		t.Fatalf("SweepExpired() error = %v", err)
	}
	if s.Len() != 0 {
		t.Errorf("Len() after sweep = %d, want 0", s.Len())
	}
}
