package handlers

import (
	"errors"

	"github.com/enjpbridge/bridge-backend/internal/authctx"
	"github.com/enjpbridge/bridge-backend/internal/dto"
	"github.com/enjpbridge/bridge-backend/internal/models"
	"github.com/enjpbridge/bridge-backend/internal/services"
	"github.com/gofiber/fiber/v2"
)

type UserHandler struct {
	userService     *services.UserService
	purchaseService *services.PurchaseService
}

func NewUserHandler(userService *services.UserService, purchaseService *services.PurchaseService) *UserHandler {
	return &UserHandler{userService: userService, purchaseService: purchaseService}
}

func toUserResponse(u *models.User) dto.UserResponse {
	return dto.UserResponse{
		ID:          u.ID,
		Email:       u.Email,
		DisplayName: u.DisplayName,
		Language:    u.Language,
		AdsRemoved:  u.AdsRemoved,
		IsAppleUser: u.AuthProvider == "apple",
	}
}

func toPartnerResponse(u *models.User) dto.PartnerResponse {
	return dto.PartnerResponse{
		ID:           u.ID,
		DisplayName:  u.DisplayName,
		Language:     u.Language,
		LastActiveAt: u.LastActiveAt,
	}
}

// Me returns the caller's profile. A missing row never 404s here; the
// app expects a usable profile right after sign-in even when the
// profile write is still in flight, so a default is synthesized.
func (h *UserHandler) Me(c *fiber.Ctx) error {
	userID, err := authctx.GetUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	user := h.userService.GetProfileWithRetry(userID, authctx.GetEmail(c))
	return c.JSON(toUserResponse(user))
}

func (h *UserHandler) UpdateProfile(c *fiber.Ctx) error {
	userID, err := authctx.GetUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	var req dto.UpdateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	user, err := h.userService.UpdateProfile(userID, req.DisplayName, req.Language)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidDisplayName), errors.Is(err, services.ErrInvalidLanguage):
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		case errors.Is(err, services.ErrProfileNotFound):
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: true, Message: "Profile not found",
			})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
				Error: true, Message: "Failed to update profile",
			})
		}
	}

	return c.JSON(toUserResponse(user))
}

func (h *UserHandler) RegisterPushToken(c *fiber.Ctx) error {
	userID, err := authctx.GetUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	var req dto.PushTokenRequest
	if err := c.BodyParser(&req); err != nil || req.PushToken == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "push_token is required",
		})
	}

	if err := h.userService.RegisterPushToken(userID, req.PushToken); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to register push token",
		})
	}

	return c.JSON(fiber.Map{"message": "Push token registered"})
}

// Discovery lists candidate partners: opposite-language users the
// caller has not blocked, most recently active first.
func (h *UserHandler) Discovery(c *fiber.Ctx) error {
	userID, err := authctx.GetUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	h.userService.TouchActivity(userID)

	users, err := h.userService.Discovery(userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to load partners",
		})
	}

	partners := make([]dto.PartnerResponse, 0, len(users))
	for i := range users {
		partners = append(partners, toPartnerResponse(&users[i]))
	}
	return c.JSON(fiber.Map{"partners": partners})
}

func (h *UserHandler) Entitlement(c *fiber.Ctx) error {
	userID, err := authctx.GetUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	adsRemoved, err := h.purchaseService.Entitlement(userID)
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: true, Message: "User not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to load entitlement",
		})
	}

	return c.JSON(dto.EntitlementResponse{AdsRemoved: adsRemoved})
}
