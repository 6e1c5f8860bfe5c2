package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/i474232898/trackside-weather/internal/weather"
)

// SQLiteStore persists weather records in the weather_cache table so the
// degraded-mode fallback survives restarts.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore wraps an open database whose schema is already in place.
func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

const recordColumns = `id, event_id, latitude, longitude, weather_condition, wind_speed,
	wind_direction, humidity, air_temp, precip_chance, observed_at, track_temp,
	air_temp_min, air_temp_max, forecast, is_historical, cached_at, expires_at`

// Put inserts rec as a new row.
func (s *SQLiteStore) Put(ctx context.Context, rec weather.CacheRecord) error {
	forecast, err := json.Marshal(rec.Forecast)
	if err != nil {
		return fmt.Errorf("encoding forecast: %w", err)
	}

	var observed sql.NullString
	if !rec.Snapshot.Timestamp.IsZero() {
		observed = sql.NullString{String: rec.Snapshot.Timestamp.Format(time.RFC3339), Valid: true}
	}

	_, err = s.db.ExecContext(ctx, `INSERT INTO weather_cache (`+recordColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.EventID, rec.Latitude, rec.Longitude, string(rec.Snapshot.Condition),
		rec.Snapshot.WindSpeed, rec.Snapshot.WindDirection, rec.Snapshot.Humidity,
		rec.Snapshot.AirTemperature, rec.Snapshot.PrecipitationChance, observed,
		rec.TrackTemperature, rec.MinTemp, rec.MaxTemp, string(forecast),
		rec.IsHistorical, rec.CachedAt.UnixNano(), rec.ExpiresAt.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("inserting weather record: %w", err)
	}
	return nil
}

// GetFresh returns the newest record for eventID that has not expired at now.
func (s *SQLiteStore) GetFresh(ctx context.Context, eventID string, now time.Time) (weather.CacheRecord, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+recordColumns+` FROM weather_cache
		WHERE event_id = ? AND expires_at > ?
		ORDER BY cached_at DESC, rowid DESC LIMIT 1`, eventID, now.UnixNano())
	return scanRecord(row)
}

// GetLast returns the newest record for eventID regardless of expiry.
func (s *SQLiteStore) GetLast(ctx context.Context, eventID string) (weather.CacheRecord, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+recordColumns+` FROM weather_cache
		WHERE event_id = ?
		ORDER BY cached_at DESC, rowid DESC LIMIT 1`, eventID)
	return scanRecord(row)
}

// SweepExpired deletes rows expired at cutoff.
func (s *SQLiteStore) SweepExpired(ctx context.Context, cutoff time.Time) (int, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM weather_cache WHERE expires_at <= ?`, cutoff.UnixNano())
	if err != nil {
		return 0, fmt.Errorf("sweeping weather records: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("counting swept records: %w", err)
	}
	return int(n), nil
}

func scanRecord(row *sql.Row) (weather.CacheRecord, error) {
	var (
		rec                 weather.CacheRecord
		condition, forecast string
		observed            sql.NullString
		cachedAt, expiresAt int64
	)
	err := row.Scan(&rec.ID, &rec.EventID, &rec.Latitude, &rec.Longitude, &condition,
		&rec.Snapshot.WindSpeed, &rec.Snapshot.WindDirection, &rec.Snapshot.Humidity,
		&rec.Snapshot.AirTemperature, &rec.Snapshot.PrecipitationChance, &observed,
		&rec.TrackTemperature, &rec.MinTemp, &rec.MaxTemp, &forecast,
		&rec.IsHistorical, &cachedAt, &expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return weather.CacheRecord{}, weather.ErrCacheMiss
	}
	if err != nil {
		return weather.CacheRecord{}, fmt.Errorf("reading weather record: %w", err)
	}

	rec.Snapshot.Condition = weather.Condition(condition)
	if observed.Valid {
		if ts, err := time.Parse(time.RFC3339, observed.String); err == nil {
			rec.Snapshot.Timestamp = ts
		}
	}
	if err := json.Unmarshal([]byte(forecast), &rec.Forecast); err != nil {
		return weather.CacheRecord{}, fmt.Errorf("decoding forecast: %w", err)
	}
	rec.CachedAt = time.Unix(0, cachedAt)
	rec.ExpiresAt = time.Unix(0, expiresAt)
	return rec, nil
}
