package events

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/i474232898/trackside-weather/internal/weather"
)

// SQLiteRepository reads events and tracks from the shared database.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a repository over an open database.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// GetEventWithTrack loads an event joined with its track.
func (r *SQLiteRepository) GetEventWithTrack(ctx context.Context, eventID string) (weather.Event, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT e.id, e.name, e.event_date, t.name, t.latitude, t.longitude, t.address
		FROM events e
		JOIN tracks t ON t.id = e.track_id
		WHERE e.id = ?`, eventID)

	var (
		ev       weather.Event
		date     string
		lat, lon sql.NullFloat64
		address  sql.NullString
	)
	err := row.Scan(&ev.ID, &ev.Name, &date, &ev.Track.Name, &lat, &lon, &address)
	if errors.Is(err, sql.ErrNoRows) {
		return weather.Event{}, fmt.Errorf("%w: %s", weather.ErrEventNotFound, eventID)
	}
	if err != nil {
		return weather.Event{}, fmt.Errorf("querying event %s: %w", eventID, err)
	}

	ev.Date, err = time.Parse(time.RFC3339, date)
	if err != nil {
		return weather.Event{}, fmt.Errorf("parsing date of event %s: %w", eventID, err)
	}
	if lat.Valid && lon.Valid {
		ev.Track.Latitude = &lat.Float64
		ev.Track.Longitude = &lon.Float64
	}
	ev.Track.Address = address.String
	return ev, nil
}

// Seed upserts every track and event in s inside one transaction.
func (r *SQLiteRepository) Seed(ctx context.Context, s *SeedFile) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting seed transaction: %w", err)
	}
	defer tx.Rollback()

	for _, t := range s.Tracks {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO tracks (id, name, latitude, longitude, address) VALUES (?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET name = excluded.name, latitude = excluded.latitude,
				longitude = excluded.longitude, address = excluded.address`,
			t.ID, t.Name, nullFloat(t.Latitude), nullFloat(t.Longitude), nullString(t.Address))
		if err != nil {
			return fmt.Errorf("seeding track %s: %w", t.ID, err)
		}
	}
	for _, e := range s.Events {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO events (id, name, event_date, track_id) VALUES (?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET name = excluded.name, event_date = excluded.event_date,
				track_id = excluded.track_id`,
			e.ID, e.Name, e.Date.Format(time.RFC3339), e.TrackID)
		if err != nil {
			return fmt.Errorf("seeding event %s: %w", e.ID, err)
		}
	}
	return tx.Commit()
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
