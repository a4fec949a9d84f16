package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentryfiber "github.com/getsentry/sentry-go/fiber"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/enjpbridge/bridge-backend/internal/config"
	"github.com/enjpbridge/bridge-backend/internal/database"
	"github.com/enjpbridge/bridge-backend/internal/handlers"
	"github.com/enjpbridge/bridge-backend/internal/logging"
	"github.com/enjpbridge/bridge-backend/internal/middleware"
	"github.com/enjpbridge/bridge-backend/internal/push"
	"github.com/enjpbridge/bridge-backend/internal/routes"
	"github.com/enjpbridge/bridge-backend/internal/services"
	"github.com/enjpbridge/bridge-backend/internal/translate"
	"github.com/enjpbridge/bridge-backend/internal/ws"
	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
)

func main() {
	godotenv.Load()

	// Structured logging (JSON to stdout)
	logging.Setup()

	cfg := config.Load()

	if cfg.JWTSecret == "" {
		slog.Error("JWT_SECRET environment variable is required")
		os.Exit(1)
	}

	// Database
	if err := database.Connect(cfg); err != nil {
		slog.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	if err := database.Migrate(database.DB); err != nil {
		slog.Error("migration failed", "error", err)
		os.Exit(1)
	}

	// PostgreSQL log handler (ERROR+ async batch)
	pgLogHandler := logging.NewPGHandler(database.DB)
	slog.SetDefault(slog.New(logging.NewMultiHandler(
		slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}),
		pgLogHandler,
	)))

	// Log cleanup (30-day retention)
	cleanupDone := make(chan struct{})
	logging.StartCleanup(database.DB, cleanupDone)

	// Translation cache: Redis, or in-process memory when Redis is
	// unreachable at startup.
	var translationCache translate.Cache
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	pingCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		slog.Warn("redis unreachable, using in-memory translation cache", "addr", cfg.RedisAddr, "error", err)
		translationCache = translate.NewMemoryCache()
	} else {
		translationCache = translate.NewRedisCache(rdb)
	}
	cancel()

	translator := translate.NewClient(cfg.GoogleTranslateURL, cfg.MyMemoryURL, cfg.TranslateTimeout)
	pusher := push.NewExpoClient(cfg.ExpoPushURL, cfg.PushTimeout)

	// Services
	moderationService := services.NewModerationService(database.DB)
	userService := services.NewUserService(database.DB, moderationService)
	authService := services.NewAuthService(database.DB, cfg)
	chatService := services.NewChatService(database.DB, userService, moderationService)
	messageService := services.NewMessageService(database.DB, chatService, moderationService, translator, translationCache, pusher)
	purchaseService := services.NewPurchaseService(database.DB)

	// Realtime hub
	hub := ws.NewHub()
	go hub.Run()
	notifier := ws.NewHubNotifier(hub)
	chatService.SetNotifier(notifier)
	messageService.SetNotifier(notifier)

	// Handlers
	authHandler := handlers.NewAuthHandler(authService)
	userHandler := handlers.NewUserHandler(userService, purchaseService)
	chatHandler := handlers.NewChatHandler(chatService, messageService, userService)
	moderationHandler := handlers.NewModerationHandler(moderationService)
	webhookHandler := handlers.NewWebhookHandler(purchaseService, cfg.RevenueCatWebhookAuth)
	configHandler := handlers.NewRemoteConfigHandler(database.DB)
	healthHandler := handlers.NewHealthHandler()
	legalHandler := handlers.NewLegalHandler()

	if err := configHandler.SeedDefaults(); err != nil {
		slog.Error("remote config seeding failed", "error", err)
	}

	// Sentry error tracking
	if dsn := os.Getenv("SENTRY_DSN"); dsn != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              dsn,
			EnableTracing:    true,
			TracesSampleRate: 0.2,
			Environment:      os.Getenv("APP_ENV"),
		}); err != nil {
			slog.Error("sentry init failed", "error", err)
		} else {
			defer sentry.Flush(2 * time.Second)
		}
	}

	// Fiber app
	app := fiber.New(fiber.Config{
		BodyLimit:    4 * 1024 * 1024,
		ErrorHandler: customErrorHandler,
	})

	app.Use(sentryfiber.New(sentryfiber.Options{
		Repanic:         true,
		WaitForDelivery: false,
	}))

	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "${time} | ${status} | ${latency} | ${ip} | ${method} | ${path}\n",
	}))
	app.Use(middleware.CORS(cfg))
	app.Use(func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		c.Set("X-XSS-Protection", "1; mode=block")
		return c.Next()
	})

	routes.Setup(app, cfg, database.DB,
		authHandler, userHandler, chatHandler, moderationHandler,
		webhookHandler, configHandler, healthHandler, legalHandler, hub)

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "port", cfg.Port)
		if err := app.Listen(":" + cfg.Port); err != nil {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	<-quit
	slog.Info("shutting down server...")

	close(cleanupDone)
	pgLogHandler.Stop()
	sentry.Flush(2 * time.Second)

	if err := app.Shutdown(); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	rdb.Close()
	if sqlDB, err := database.DB.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			slog.Error("database close error", "error", err)
		}
	}

	slog.Info("server stopped")
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal server error"
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	// 5xx details stay in the logs, never in the response.
	if code >= 500 {
		slog.Error("unhandled server error", "method", c.Method(), "path", c.Path(), "error", err.Error())
		message = "Internal server error"
	}

	return c.Status(code).JSON(fiber.Map{
		"error":   true,
		"message": message,
	})
}
