package database

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS tracks (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	latitude REAL,
	longitude REAL,
	address TEXT
);

CREATE TABLE IF NOT EXISTS events (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	event_date TEXT NOT NULL,
	track_id TEXT NOT NULL REFERENCES tracks(id)
);

CREATE TABLE IF NOT EXISTS weather_cache (
	id TEXT PRIMARY KEY,
	event_id TEXT NOT NULL,
	latitude REAL NOT NULL,
	longitude REAL NOT NULL,
	weather_condition TEXT NOT NULL,
	wind_speed REAL NOT NULL,
	wind_direction REAL NOT NULL,
	humidity REAL NOT NULL,
	air_temp REAL NOT NULL,
	precip_chance REAL NOT NULL,
	observed_at TEXT,
	track_temp REAL NOT NULL,
	air_temp_min REAL NOT NULL,
	air_temp_max REAL NOT NULL,
	forecast TEXT NOT NULL,
	is_historical INTEGER NOT NULL,
	cached_at INTEGER NOT NULL,
	expires_at INTEGER NOT NULL,
	CHECK (expires_at > cached_at)
);
CREATE INDEX IF NOT EXISTS idx_weather_cache_event ON weather_cache(event_id, cached_at);
CREATE INDEX IF NOT EXISTS idx_weather_cache_expiry ON weather_cache(expires_at);
`

// Open opens (creating if needed) the SQLite database at path and ensures
// the schema exists.
func Open(path string) (*sql.DB, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := EnsureSchema(db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// EnsureSchema creates all tables and indexes that do not exist yet.
func EnsureSchema(db *sql.DB) error {
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	return nil
}
