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

	httpapi "github.com/yjleow/wbgt-bot/internal/api/http"
	"github.com/yjleow/wbgt-bot/internal/bot"
	"github.com/yjleow/wbgt-bot/internal/bot/telegram"
	"github.com/yjleow/wbgt-bot/internal/config"
	"github.com/yjleow/wbgt-bot/internal/scheduler"
	"github.com/yjleow/wbgt-bot/internal/session"
	"github.com/yjleow/wbgt-bot/internal/wbgt/upstream"
)

func main() {
	// Load configuration. A missing bot token is fatal before any event
	// processing begins.
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// Shared HTTP client for outbound calls.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}

	client := upstream.NewClient(httpClient, cfg.APIBaseURL)
	sessions := session.NewStore()

	adapter, err := telegram.New(cfg.BotToken)
	if err != nil {
		log.Fatalf("failed to connect to telegram: %v", err)
	}

	controller := bot.NewController(client, sessions, adapter, cfg.Mode)

	// Liveness server for the hosting platform, independent of
	// conversation processing.
	app := fiber.New(fiber.Config{
		AppName:               "wbgt-bot",
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

	httpapi.RegisterRoutes(app, client)

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Printf("fiber server stopped: %v", err)
		}
	}()

	keepalive := scheduler.NewKeepAlive(httpClient, cfg.KeepAliveURL, cfg.KeepAliveInterval)
	if err := keepalive.Start(); err != nil {
		log.Fatalf("failed to start keepalive: %v", err)
	}
	defer keepalive.Stop()

	// Wait for termination signal
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go adapter.Run(ctx, controller)
	log.Println("INFO: bot is running")

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("error during shutdown: %v", err)
	}
}
