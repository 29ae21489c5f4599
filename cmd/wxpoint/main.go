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

	httpapi "github.com/wxpoint/wxpoint/internal/api/http"
	"github.com/wxpoint/wxpoint/internal/config"
	"github.com/wxpoint/wxpoint/internal/geo"
	"github.com/wxpoint/wxpoint/internal/scheduler"
	"github.com/wxpoint/wxpoint/internal/state"
	"github.com/wxpoint/wxpoint/internal/weather"
	"github.com/wxpoint/wxpoint/internal/weather/nws"
)

func main() {
	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// Shared HTTP client for outbound calls.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}

	// Outbound gateways with resilience (backoff + circuit breaker).
	gateway := nws.NewClient(httpClient, cfg.NWSBaseURL, cfg.UserAgent)
	resolver := geo.NewResolver(httpClient, cfg.GeocoderBaseURL, cfg.GeocoderCountry, cfg.UserAgent)

	// Device position, when the deployment pins one.
	var locator geo.Locator
	if cfg.DevicePosition != nil {
		locator = geo.FixedLocator{Position: *cfg.DevicePosition}
	}
	position := geo.NewPositionSource(locator, geo.DefaultPositionOptions())

	// Core aggregation and the view state it feeds.
	aggregator := weather.NewAggregator(gateway, resolver, position)
	manager := state.NewManager(aggregator)

	// Optional periodic refresh of the last query.
	refresher := scheduler.New(manager, cfg.RefreshInterval, cfg.HTTPTimeout)
	if err := refresher.Start(); err != nil {
		log.Fatalf("failed to start refresher: %v", err)
	}
	defer refresher.Stop()

	// Basic app configuration
	app := fiber.New(fiber.Config{
		AppName:               "wxpoint",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          10 * time.Second,
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
	app.Use(logger.New())
	app.Use(recover.New())

	// Basic health endpoint
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "wxpoint",
		})
	})

	// API routes.
	httpapi.RegisterRoutes(app, manager, gateway)

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Printf("fiber server stopped: %v", err)
		}
	}()

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
