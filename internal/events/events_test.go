package events

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/i474232898/trackside-weather/internal/database"
	"github.com/i474232898/trackside-weather/internal/weather"
)

const seedYAML = `
tracks:
  - id: smp
    name: Sydney Motorsport Park
    latitude: -33.8034
    longitude: 150.871
  - id: wakefield
    name: Wakefield Park
    address: Braidwood Rd, Goulburn NSW
events:
  - id: 3f1c9d2e-8a4b-4c6d-9e0f-1a2b3c4d5e6f
    name: NSW Supersprint Round 2
    date: 2025-03-01T14:00:00+11:00
    track_id: smp
  - id: 7b8c9d0e-1f2a-4b3c-8d4e-5f6a7b8c9d0e
    name: Goulburn Club Day
    date: 2025-04-12T09:30:00+10:00
    track_id: wakefield
`

func TestParseSeed(t *testing.T) {
	s, err := ParseSeed([]byte(seedYAML))
	if err != nil {
		t.Fatalf("ParseSeed() error = %v", err)
	}
	if len(s.Tracks) != 2 || len(s.Events) != 2 {
		t.Fatalf("parsed %d tracks and %d events, want 2 and 2", len(s.Tracks), len(s.Events))
	}

	evs, err := s.Resolve()
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if !evs[0].Track.HasCoordinates() || *evs[0].Track.Latitude != -33.8034 {
		t.Errorf("first event track = %+v, want stored coordinates", evs[0].Track)
	}
	if evs[1].Track.HasCoordinates() || evs[1].Track.Address == "" {
		t.Errorf("second event track = %+v, want address only", evs[1].Track)
	}
	want := time.Date(2025, 3, 1, 3, 0, 0, 0, time.UTC)
	if !evs[0].Date.Equal(want) {
		t.Errorf("date = %v, want %v", evs[0].Date, want)
	}
}

func TestParseSeedRejectsBadReferences(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want string
	}{
		{
			name: "unknown track",
			doc:  "tracks: []\nevents:\n  - {id: e1, name: x, date: 2025-01-01T00:00:00Z, track_id: nope}\n",
			want: "unknown track",
		},
		{
			name: "missing date",
			doc:  "tracks:\n  - {id: t1, name: T}\nevents:\n  - {id: e1, name: x, track_id: t1}\n",
			want: "needs id and date",
		},
		{
			name: "unnamed track",
			doc:  "tracks:\n  - {id: t1}\n",
			want: "needs id and name",
		},
		{
			name: "not yaml",
			doc:  "tracks: [",
			want: "decoding seed file",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseSeed([]byte(tt.doc))
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("ParseSeed() error = %v, want containing %q", err, tt.want)
			}
		})
	}
}

func TestLoadSeed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.yaml")
	if err := os.WriteFile(path, []byte(seedYAML), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadSeed(path); err != nil {
		t.Fatalf("LoadSeed() error = %v", err)
	}
	if _, err := LoadSeed(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("LoadSeed() on missing file error = nil")
	}
}

type seededLookup interface {
	weather.EventLookup
	Seed(ctx context.Context, s *SeedFile) error
}

func repositories(t *testing.T) map[string]seededLookup {
	t.Helper()
	db, err := database.Open(filepath.Join(t.TempDir(), "events.db"))
	if err != nil {
		t.Fatalf("database.Open() error = %v", err)
	}
	t.Cleanup(func() { db.Close() })

	return map[string]seededLookup{
		"memory": NewMemoryRepository(),
		"sqlite": NewSQLiteRepository(db),
	}
}

func TestRepositoryGetEventWithTrack(t *testing.T) {
	seed, err := ParseSeed([]byte(seedYAML))
	if err != nil {
		t.Fatalf("ParseSeed() error = %v", err)
	}

	for name, repo := range repositories(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			if err := repo.Seed(ctx, seed); err != nil {
				t.Fatalf("Seed() error = %v", err)
			}
			// Seeding twice is an upsert.
			if err := repo.Seed(ctx, seed); err != nil {
				t.Fatalf("second Seed() error = %v", err)
			}

			ev, err := repo.GetEventWithTrack(ctx, "3f1c9d2e-8a4b-4c6d-9e0f-1a2b3c4d5e6f")
			if err != nil {
				t.Fatalf("GetEventWithTrack() error = %v", err)
			}
			if ev.Name != "NSW Supersprint Round 2" || ev.Track.Name != "Sydney Motorsport Park" {
				t.Errorf("event = %+v", ev)
			}
			if !ev.Track.HasCoordinates() || *ev.Track.Longitude != 150.871 {
				t.Errorf("track coordinates = %v,%v", ev.Track.Latitude, ev.Track.Longitude)
			}
			if !ev.Date.Equal(time.Date(2025, 3, 1, 3, 0, 0, 0, time.UTC)) {
				t.Errorf("date = %v", ev.Date)
			}

			addr, err := repo.GetEventWithTrack(ctx, "7b8c9d0e-1f2a-4b3c-8d4e-5f6a7b8c9d0e")
			if err != nil {
				t.Fatalf("GetEventWithTrack() error = %v", err)
			}
			if addr.Track.HasCoordinates() || addr.Track.Address != "Braidwood Rd, Goulburn NSW" {
				t.Errorf("track = %+v, want address only", addr.Track)
			}

			if _, err := repo.GetEventWithTrack(ctx, "missing"); !errors.Is(err, weather.ErrEventNotFound) {
				t.Errorf("GetEventWithTrack(missing) error = %v, want ErrEventNotFound", err)
			}
		})
	}
}
