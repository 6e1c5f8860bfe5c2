package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	httpapi "github.com/i474232898/trackside-weather/internal/api/http"
	"github.com/i474232898/trackside-weather/internal/config"
	"github.com/i474232898/trackside-weather/internal/database"
	"github.com/i474232898/trackside-weather/internal/events"
	"github.com/i474232898/trackside-weather/internal/metrics"
	"github.com/i474232898/trackside-weather/internal/scheduler"
	"github.com/i474232898/trackside-weather/internal/store"
	"github.com/i474232898/trackside-weather/internal/weather"
	"github.com/i474232898/trackside-weather/internal/weather/providers"
)

type seeder interface {
	Seed(ctx context.Context, s *events.SeedFile) error
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// Shared HTTP client for outbound provider calls; per-call bounds come
	// from each client's context timeout.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}

	var (
		lookup     weather.EventLookup
		cacheStore weather.Store
		seedTarget seeder
		db         *sql.DB
	)
	switch cfg.StoreDriver {
	case config.StoreSQLite:
		db, err = database.Open(cfg.DatabasePath)
		if err != nil {
			log.Fatalf("failed to open database: %v", err)
		}
		defer db.Close()
		repo := events.NewSQLiteRepository(db)
		lookup, cacheStore, seedTarget = repo, store.NewSQLiteStore(db), repo
	default:
		repo := events.NewMemoryRepository()
		lookup, cacheStore, seedTarget = repo, store.NewMemoryStore(), repo
	}

	if cfg.EventsSeedFile != "" {
		seed, err := events.LoadSeed(cfg.EventsSeedFile)
		if err != nil {
			log.Fatalf("failed to load seed file: %v", err)
		}
		if err := seedTarget.Seed(context.Background(), seed); err != nil {
			log.Fatalf("failed to seed events: %v", err)
		}
		log.Printf("INFO: seeded %d tracks and %d events", len(seed.Tracks), len(seed.Events))
	}

	var backend providers.GeocodeBackend
	switch cfg.Geocoder {
	case config.GeocoderGoogle:
		backend = providers.NewGoogleGeocoder(cfg.GoogleMapsAPIKey)
	default:
		backend = providers.NewNominatimGeocoder(httpClient, cfg.GeocoderUserAgent)
	}
	geocoder := providers.NewGeocodingClient(backend, providers.NewRateLimiter(cfg.GeocoderMinInterval), cfg.GeocoderTimeout)
	provider := providers.NewOpenMeteoProvider(httpClient, cfg.HTTPTimeout)

	// Core service orchestrating lookup, geocoding, provider and cache.
	service := weather.NewService(lookup, cacheStore, geocoder, provider)

	sched := scheduler.New(service, cfg.SweepInterval, cfg.WarmEventIDs, cfg.WarmInterval)
	if err := sched.Start(); err != nil {
		log.Fatalf("failed to start scheduler: %v", err)
	}
	defer sched.Stop()

	registry := prometheus.NewRegistry()
	metrics.MustRegister(registry)

	app := fiber.New(fiber.Config{
		AppName:               "trackside-weather",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		// Long enough for rate-limited geocoding plus a weather fetch.
		WriteTimeout: 60 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error":   true,
				"message": err.Error(),
			})
		},
	})

	app.Use(logger.New())
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "trackside-weather",
		})
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	httpapi.RegisterRoutes(app, service)

	go func() {
		log.Printf("INFO: listening on :%s (geocoder=%s, store=%s)", cfg.Port, backend.Name(), cfg.StoreDriver)
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Printf("fiber server stopped: %v", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("error during shutdown: %v", err)
	}
}
