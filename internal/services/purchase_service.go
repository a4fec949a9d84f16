package services

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/enjpbridge/bridge-backend/internal/dto"
	"github.com/enjpbridge/bridge-backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// EntitlementRemoveAds is the RevenueCat entitlement unlocking the
// ad-free experience, the only paid feature.
const EntitlementRemoveAds = "remove_ads"

// PurchaseService applies RevenueCat webhook events to the user's
// remove-ads flag and keeps an audit trail of the raw events.
type PurchaseService struct {
	db *gorm.DB
}

func NewPurchaseService(db *gorm.DB) *PurchaseService {
	return &PurchaseService{db: db}
}

func (s *PurchaseService) HandleWebhookEvent(event *dto.RevenueCatEvent) error {
	userID, err := uuid.Parse(event.AppUserID)
	if err != nil {
		// Anonymous RevenueCat IDs cannot be mapped to an account.
		slog.Warn("revenuecat event for unmappable app_user_id", "app_user_id", event.AppUserID, "type", event.Type)
		return nil
	}

	switch event.Type {
	case "INITIAL_PURCHASE", "NON_RENEWING_PURCHASE", "RENEWAL", "UNCANCELLATION":
		return s.applyEvent(userID, event, true)
	case "EXPIRATION":
		return s.applyEvent(userID, event, false)
	case "CANCELLATION":
		// Entitlement survives until the paid period expires; only the
		// audit row is written here.
		return s.recordEvent(s.db, userID, event)
	default:
		slog.Info("revenuecat event ignored", "type", event.Type)
		return nil
	}
}

func (s *PurchaseService) applyEvent(userID uuid.UUID, event *dto.RevenueCatEvent, adsRemoved bool) error {
	if !grantsRemoveAds(event) {
		return s.recordEvent(s.db, userID, event)
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.User{}).
			Where("id = ? AND deleted = false", userID).
			Update("ads_removed", adsRemoved)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			slog.Warn("revenuecat event for unknown user", "user_id", userID, "type", event.Type)
			return nil
		}
		return s.recordEvent(tx, userID, event)
	})
}

func grantsRemoveAds(event *dto.RevenueCatEvent) bool {
	if len(event.EntitlementIDs) == 0 {
		return true
	}
	for _, id := range event.EntitlementIDs {
		if id == EntitlementRemoveAds {
			return true
		}
	}
	return false
}

func (s *PurchaseService) recordEvent(tx *gorm.DB, userID uuid.UUID, event *dto.RevenueCatEvent) error {
	purchase := models.Purchase{
		ID:            uuid.New(),
		UserID:        userID,
		RevenueCatID:  event.OriginalAppUserID,
		ProductID:     event.ProductID,
		EventType:     event.Type,
		Store:         event.Store,
		PurchasedAt:   msToTime(event.PurchasedAtMs),
		ExpirationAt:  msToTime(event.ExpirationAtMs),
		TransactionID: event.TransactionID,
	}
	if err := tx.Create(&purchase).Error; err != nil {
		return fmt.Errorf("recording purchase event: %w", err)
	}
	return nil
}

// Entitlement returns whether the user currently has the ad-free
// entitlement.
func (s *PurchaseService) Entitlement(userID uuid.UUID) (bool, error) {
	var user models.User
	if err := s.db.Select("ads_removed").First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, ErrUserNotFound
		}
		return false, err
	}
	return user.AdsRemoved, nil
}

func msToTime(ms int64) time.Time {
	return time.Unix(ms/1000, (ms%1000)*int64(time.Millisecond))
}
