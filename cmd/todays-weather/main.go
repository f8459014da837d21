package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"

	httpapi "github.com/i474232898/todays-weather/internal/api/http"
	"github.com/i474232898/todays-weather/internal/config"
	"github.com/i474232898/todays-weather/internal/scheduler"
	"github.com/i474232898/todays-weather/internal/store"
	"github.com/i474232898/todays-weather/internal/weather"
	"github.com/i474232898/todays-weather/internal/weather/providers"
)

func main() {
	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// Shared HTTP client for outbound DataPoint calls.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}

	// In-memory document cache with configured retention.
	memStore := store.NewMemoryStore(cfg.StoreMaxAge)

	// DataPoint source with resilience (backoff + circuit breaker).
	datapoint := providers.NewDataPointProvider(httpClient, cfg.DataPointBaseURL, cfg.DataPointAPIKey, cfg.FetchRetries, providers.DataPointSites{
		ForecastSite:    cfg.ForecastSiteID,
		ObservationSite: cfg.ObservationSiteID,
		Region:          cfg.RegionID,
	})

	// Geocoding requires a Google API key; without one the configured
	// observation site is used as is.
	if cfg.Location != nil && cfg.GeocoderAPIKey != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		if _, err := providers.ResolveObservationSite(ctx, datapoint, providers.NewGoogleGeocoder(cfg.GeocoderAPIKey), *cfg.Location); err != nil {
			log.Printf("ERROR: could not resolve observation site for %s, keeping %s: %v", cfg.Location.Key(), cfg.ObservationSiteID, err)
		}
		cancel()
	}

	// Core service orchestrating source, cache and extraction.
	service := weather.NewService(memStore, datapoint, cfg.Fields, cfg.CacheMaxAge)

	// A field table file is reloaded when it changes.
	watchCtx, stopWatch := context.WithCancel(context.Background())
	defer stopWatch()
	if cfg.FieldsFile != "" {
		go func() {
			if err := config.WatchFields(watchCtx, cfg.FieldsFile, service.SetFields); err != nil {
				log.Printf("ERROR: field table watcher stopped: %v", err)
			}
		}()
	}

	// Scheduler that periodically refreshes the cached documents.
	sched := scheduler.New(
		[]weather.Kind{weather.KindForecast, weather.KindObservation, weather.KindNarrative},
		cfg.RefreshInterval,
		30*time.Second,
		service,
	)
	if err := sched.Start(); err != nil {
		log.Fatalf("failed to start scheduler: %v", err)
	}
	defer sched.Stop()

	// Basic app configuration
	app := fiber.New(fiber.Config{
		AppName:               "todays-weather",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          30 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			// Centralized error response
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

	// Global middleware
	app.Use(requestid.New(requestid.Config{
		Generator: uuid.NewString,
	}))
	app.Use(logger.New(logger.Config{
		Format: "${time} ${locals:requestid} ${status} - ${method} ${path} ${latency}\n",
	}))
	app.Use(recover.New())

	// Basic health endpoint
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "todays-weather",
			"sites":   datapoint.Sites(),
		})
	})

	// Page and API routes.
	httpapi.RegisterRoutes(app, service)

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Printf("fiber server stopped: %v", err)
		}
	}()
	log.Printf("INFO: listening on :%s", cfg.Port)

	// Wait for termination signal
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("error during shutdown: %v", err)
	}
}
