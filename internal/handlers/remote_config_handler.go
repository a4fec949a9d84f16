package handlers

import (
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/enjpbridge/bridge-backend/internal/dto"
	"github.com/enjpbridge/bridge-backend/internal/models"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type RemoteConfigHandler struct {
	db *gorm.DB
}

func NewRemoteConfigHandler(db *gorm.DB) *RemoteConfigHandler {
	return &RemoteConfigHandler{db: db}
}

func decodeConfigValue(cfg *models.RemoteConfig) interface{} {
	switch cfg.Type {
	case "bool":
		v, _ := strconv.ParseBool(cfg.Value)
		return v
	case "int":
		v, _ := strconv.Atoi(cfg.Value)
		return v
	case "json":
		var v interface{}
		json.Unmarshal([]byte(cfg.Value), &v)
		return v
	default:
		return cfg.Value
	}
}

// GetConfig returns the full config map the app reads at launch.
// Public, no auth: the client needs it before login.
func (h *RemoteConfigHandler) GetConfig(c *fiber.Ctx) error {
	var configs []models.RemoteConfig
	if err := h.db.Find(&configs).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to fetch configuration",
		})
	}

	result := make(map[string]interface{}, len(configs))
	for i := range configs {
		result[configs[i].Key] = decodeConfigValue(&configs[i])
	}
	return c.JSON(result)
}

// SetConfigKey upserts one key. Admin only.
func (h *RemoteConfigHandler) SetConfigKey(c *fiber.Ctx) error {
	key := c.Params("key")
	if key == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Key parameter is required",
		})
	}

	var payload struct {
		Value string `json:"value"`
		Type  string `json:"type"`
	}
	if err := c.BodyParser(&payload); err != nil || payload.Value == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Value is required",
		})
	}
	if payload.Type == "" {
		payload.Type = "string"
	}

	var config models.RemoteConfig
	err := h.db.Where("key = ?", key).First(&config).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		config = models.RemoteConfig{
			ID:    uuid.New(),
			Key:   key,
			Value: payload.Value,
			Type:  payload.Type,
		}
		if err := h.db.Create(&config).Error; err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
				Error: true, Message: "Failed to create config",
			})
		}
	case err != nil:
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to query config",
		})
	default:
		config.Value = payload.Value
		config.Type = payload.Type
		config.UpdatedAt = time.Now()
		if err := h.db.Save(&config).Error; err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
				Error: true, Message: "Failed to update config",
			})
		}
	}

	return c.JSON(fiber.Map{
		"error":   false,
		"message": "Config updated successfully",
		"config": fiber.Map{
			"key":   config.Key,
			"value": config.Value,
			"type":  config.Type,
		},
	})
}

// DeleteConfigKey removes one key. Admin only.
func (h *RemoteConfigHandler) DeleteConfigKey(c *fiber.Ctx) error {
	key := c.Params("key")
	if key == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Key parameter is required",
		})
	}

	result := h.db.Where("key = ?", key).Delete(&models.RemoteConfig{})
	if result.Error != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to delete config",
		})
	}
	if result.RowsAffected == 0 {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
			Error: true, Message: "Config not found",
		})
	}

	return c.JSON(fiber.Map{"error": false, "message": "Config deleted successfully"})
}

// SeedDefaults inserts the launch-time keys the app expects, keeping
// any value an operator already changed.
func (h *RemoteConfigHandler) SeedDefaults() error {
	defaults := []models.RemoteConfig{
		{Key: "maintenance_mode", Value: "false", Type: "bool"},
		{Key: "min_supported_version", Value: "1.0.0", Type: "string"},
		{Key: "supported_languages", Value: "en,ja", Type: "string"},
		{Key: "ads_banner_unit_id", Value: "", Type: "string"},
		{Key: "ads_interstitial_unit_id", Value: "", Type: "string"},
		{Key: "announcement_title", Value: "", Type: "string"},
		{Key: "announcement_message", Value: "", Type: "string"},
	}

	for _, cfg := range defaults {
		var existing models.RemoteConfig
		err := h.db.Where("key = ?", cfg.Key).First(&existing).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			cfg.ID = uuid.New()
			if err := h.db.Create(&cfg).Error; err != nil {
				return err
			}
		} else if err != nil {
			return err
		}
	}
	return nil
}
