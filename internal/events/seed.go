package events

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/i474232898/trackside-weather/internal/weather"
)

// SeedTrack is a track entry in the seed file.
type SeedTrack struct {
	ID        string   `yaml:"id"`
	Name      string   `yaml:"name"`
	Latitude  *float64 `yaml:"latitude,omitempty"`
	Longitude *float64 `yaml:"longitude,omitempty"`
	Address   string   `yaml:"address,omitempty"`
}

// SeedEvent is an event entry in the seed file.
type SeedEvent struct {
	ID      string    `yaml:"id"`
	Name    string    `yaml:"name"`
	Date    time.Time `yaml:"date"`
	TrackID string    `yaml:"track_id"`
}

// SeedFile is the YAML document loaded by LoadSeed.
type SeedFile struct {
	Tracks []SeedTrack `yaml:"tracks"`
	Events []SeedEvent `yaml:"events"`
}

// LoadSeed reads and validates a seed file.
func LoadSeed(path string) (*SeedFile, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading seed file: %w", err)
	}
	return ParseSeed(raw)
}

// ParseSeed decodes a seed document and checks its references.
func ParseSeed(raw []byte) (*SeedFile, error) {
	var s SeedFile
	if err := yaml.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("decoding seed file: %w", err)
	}
	if _, err := s.Resolve(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Resolve joins events with their tracks.
func (s *SeedFile) Resolve() ([]weather.Event, error) {
	tracks := make(map[string]SeedTrack, len(s.Tracks))
	for _, t := range s.Tracks {
		if t.ID == "" || t.Name == "" {
			return nil, fmt.Errorf("seed track needs id and name: %+v", t)
		}
		tracks[t.ID] = t
	}

	out := make([]weather.Event, 0, len(s.Events))
	for _, e := range s.Events {
		t, ok := tracks[e.TrackID]
		if !ok {
			return nil, fmt.Errorf("event %s references unknown track %q", e.ID, e.TrackID)
		}
		if e.ID == "" || e.Date.IsZero() {
			return nil, fmt.Errorf("seed event needs id and date: %+v", e)
		}
		out = append(out, weather.Event{
			ID:   e.ID,
			Name: e.Name,
			Date: e.Date,
			Track: weather.Track{
				Name:      t.Name,
				Latitude:  t.Latitude,
				Longitude: t.Longitude,
				Address:   t.Address,
			},
		})
	}
	return out, nil
}
