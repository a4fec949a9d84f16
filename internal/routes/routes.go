package routes

import (
	"time"

	"github.com/enjpbridge/bridge-backend/internal/config"
	"github.com/enjpbridge/bridge-backend/internal/handlers"
	"github.com/enjpbridge/bridge-backend/internal/middleware"
	"github.com/enjpbridge/bridge-backend/internal/ws"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"gorm.io/gorm"
)

func Setup(
	app *fiber.App,
	cfg *config.Config,
	db *gorm.DB,
	authHandler *handlers.AuthHandler,
	userHandler *handlers.UserHandler,
	chatHandler *handlers.ChatHandler,
	moderationHandler *handlers.ModerationHandler,
	webhookHandler *handlers.WebhookHandler,
	configHandler *handlers.RemoteConfigHandler,
	healthHandler *handlers.HealthHandler,
	legalHandler *handlers.LegalHandler,
	hub *ws.Hub,
) {
	api := app.Group("/api")

	// General API rate limiter: 60 req/min per IP
	api.Use(limiter.New(limiter.Config{
		Max:               60,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))

	// Public
	api.Get("/health", healthHandler.Check)
	api.Get("/config", configHandler.GetConfig)
	api.Get("/legal/privacy", legalHandler.PrivacyPolicy)
	api.Get("/legal/terms", legalHandler.TermsOfService)

	// Auth endpoints get a stricter limit: 10 req/min per IP
	auth := api.Group("/auth")
	auth.Use(limiter.New(limiter.Config{
		Max:               10,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))
	auth.Post("/register", authHandler.Register)
	auth.Post("/login", authHandler.Login)
	auth.Post("/refresh", authHandler.Refresh)
	auth.Post("/apple", authHandler.AppleSignIn)

	// JWT is applied per route so the public routes above stay public.
	jwt := middleware.JWTProtected(cfg)

	api.Post("/auth/logout", jwt, authHandler.Logout)
	api.Delete("/auth/account", jwt, authHandler.DeleteAccount)

	// Profile and partner discovery
	api.Get("/users/me", jwt, userHandler.Me)
	api.Put("/users/me", jwt, userHandler.UpdateProfile)
	api.Put("/users/me/push-token", jwt, userHandler.RegisterPushToken)
	api.Get("/users/me/entitlement", jwt, userHandler.Entitlement)
	api.Get("/partners", jwt, userHandler.Discovery)

	// Chat lifecycle and messages
	api.Get("/chats", jwt, chatHandler.ListRooms)
	api.Post("/chats/request", jwt, chatHandler.RequestChat)
	api.Post("/chats/:id/accept", jwt, chatHandler.AcceptRequest)
	api.Post("/chats/:id/reject", jwt, chatHandler.RejectRequest)
	api.Get("/chats/:id/messages", jwt, chatHandler.ListMessages)
	api.Post("/chats/:id/messages", jwt, chatHandler.SendMessage)
	api.Post("/chats/:id/read", jwt, chatHandler.MarkRead)
	api.Post("/chats/:id/translations", jwt, chatHandler.Translations)

	// Moderation
	api.Post("/reports", jwt, moderationHandler.CreateReport)
	api.Post("/blocks", jwt, moderationHandler.BlockUser)

	// Admin panel
	admin := api.Group("/admin", jwt, middleware.AdminRequired(db, cfg))
	admin.Get("/moderation/reports", moderationHandler.ListReports)
	admin.Put("/moderation/reports/:id", moderationHandler.ActionReport)
	admin.Put("/config/:key", configHandler.SetConfigKey)
	admin.Delete("/config/:key", configHandler.DeleteConfigKey)

	// Webhooks authenticate with their own shared secret, no JWT
	api.Post("/webhooks/revenuecat", webhookHandler.HandleRevenueCat)

	// Realtime; token travels as a query param
	app.Use("/ws", ws.UpgradeMiddleware(cfg.JWTSecret))
	app.Get("/ws", ws.Handler(hub))
}
