package handlers

import (
	"crypto/subtle"
	"log/slog"

	"github.com/enjpbridge/bridge-backend/internal/dto"
	"github.com/enjpbridge/bridge-backend/internal/services"
	"github.com/gofiber/fiber/v2"
)

type WebhookHandler struct {
	purchaseService *services.PurchaseService
	webhookAuth     string
}

func NewWebhookHandler(purchaseService *services.PurchaseService, webhookAuth string) *WebhookHandler {
	return &WebhookHandler{
		purchaseService: purchaseService,
		webhookAuth:     webhookAuth,
	}
}

// HandleRevenueCat receives purchase lifecycle events. RevenueCat
// sends the configured secret in the Authorization header; comparison
// is constant-time.
func (h *WebhookHandler) HandleRevenueCat(c *fiber.Ctx) error {
	if h.webhookAuth == "" {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
			Error: true, Message: "Webhooks not configured",
		})
	}

	authHeader := c.Get("Authorization")
	if subtle.ConstantTimeCompare([]byte(authHeader), []byte(h.webhookAuth)) != 1 {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	var webhook dto.RevenueCatWebhook
	if err := c.BodyParser(&webhook); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid webhook payload",
		})
	}

	if err := h.purchaseService.HandleWebhookEvent(&webhook.Event); err != nil {
		slog.Error("webhook processing failed", "event_type", webhook.Event.Type, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to process webhook event",
		})
	}

	slog.Info("webhook processed", "event_type", webhook.Event.Type)
	return c.JSON(fiber.Map{"received": true})
}
