package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Geocoder backends.
const (
	GeocoderNominatim = "nominatim"
	GeocoderGoogle    = "google"
)

// Store drivers.
const (
	StoreMemory = "memory"
	StoreSQLite = "sqlite"
)

type AppConfig struct {
	Port string

	// HTTPTimeout bounds a whole weather fetch.
	HTTPTimeout time.Duration

	// Geocoding.
	Geocoder            string
	GoogleMapsAPIKey    string
	// GeocoderUserAgent is empty unless overridden; the Nominatim backend
	// then sends its own descriptive default.
	GeocoderUserAgent   string
	GeocoderTimeout     time.Duration
	GeocoderMinInterval time.Duration

	// Persistence.
	StoreDriver    string
	DatabasePath   string
	EventsSeedFile string

	// Background jobs.
	SweepInterval time.Duration
	WarmEventIDs  []string
	WarmInterval  time.Duration
}

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}
	cfg := &AppConfig{}

	cfg.Port = getenvDefault("PORT", "8080")
	cfg.GoogleMapsAPIKey = os.Getenv("GOOGLE_MAPS_API_KEY")
	cfg.GeocoderUserAgent = os.Getenv("GEOCODER_USER_AGENT")
	cfg.DatabasePath = getenvDefault("DATABASE_PATH", filepath.Join("data", "trackside-weather.db"))
	cfg.EventsSeedFile = os.Getenv("EVENTS_SEED_FILE")
	cfg.WarmEventIDs = splitList(os.Getenv("WARM_EVENT_IDS"))

	durations := []struct {
		key string
		def string
		dst *time.Duration
	}{
		{"HTTP_TIMEOUT", "15s", &cfg.HTTPTimeout},
		{"GEOCODER_TIMEOUT", "5s", &cfg.GeocoderTimeout},
		{"GEOCODER_MIN_INTERVAL", "1s", &cfg.GeocoderMinInterval},
		{"SWEEP_INTERVAL", "60m", &cfg.SweepInterval},
		{"WARM_INTERVAL", "30m", &cfg.WarmInterval},
	}
	for _, d := range durations {
		v, err := time.ParseDuration(getenvDefault(d.key, d.def))
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", d.key, err)
		}
		*d.dst = v
	}

	cfg.Geocoder = strings.ToLower(getenvDefault("GEOCODER", GeocoderNominatim))
	switch cfg.Geocoder {
	case GeocoderNominatim:
	case GeocoderGoogle:
		if cfg.GoogleMapsAPIKey == "" {
			return nil, fmt.Errorf("GEOCODER=google requires GOOGLE_MAPS_API_KEY")
		}
	default:
		return nil, fmt.Errorf("invalid GEOCODER %q: want %s or %s", cfg.Geocoder, GeocoderNominatim, GeocoderGoogle)
	}

	cfg.StoreDriver = strings.ToLower(getenvDefault("STORE_DRIVER", StoreMemory))
	if cfg.StoreDriver != StoreMemory && cfg.StoreDriver != StoreSQLite {
		return nil, fmt.Errorf("invalid STORE_DRIVER %q: want %s or %s", cfg.StoreDriver, StoreMemory, StoreSQLite)
	}

	return cfg, nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
