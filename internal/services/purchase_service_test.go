package services

import (
	"testing"
	"time"

	"github.com/enjpbridge/bridge-backend/internal/dto"
	"github.com/enjpbridge/bridge-backend/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func purchaseEvent(userID uuid.UUID, eventType string, entitlements ...string) *dto.RevenueCatEvent {
	return &dto.RevenueCatEvent{
		Type:           eventType,
		ID:             uuid.NewString(),
		AppUserID:      userID.String(),
		ProductID:      "bridge_remove_ads",
		EntitlementIDs: entitlements,
		Store:          "APP_STORE",
		PurchasedAtMs:  time.Now().UnixMilli(),
		TransactionID:  uuid.NewString(),
	}
}

func TestHandleWebhookInitialPurchase(t *testing.T) {
	db := newTestDB(t)
	svc := NewPurchaseService(db)
	user := createTestUser(t, db, "Alice", models.LanguageEnglish)

	err := svc.HandleWebhookEvent(purchaseEvent(user.ID, "INITIAL_PURCHASE", EntitlementRemoveAds))
	require.NoError(t, err)

	removed, err := svc.Entitlement(user.ID)
	require.NoError(t, err)
	assert.True(t, removed)

	var count int64
	require.NoError(t, db.Model(&models.Purchase{}).Where("user_id = ?", user.ID).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestHandleWebhookExpiration(t *testing.T) {
	db := newTestDB(t)
	svc := NewPurchaseService(db)
	user := createTestUser(t, db, "Alice", models.LanguageEnglish)

	require.NoError(t, svc.HandleWebhookEvent(purchaseEvent(user.ID, "INITIAL_PURCHASE", EntitlementRemoveAds)))
	require.NoError(t, svc.HandleWebhookEvent(purchaseEvent(user.ID, "EXPIRATION", EntitlementRemoveAds)))

	removed, err := svc.Entitlement(user.ID)
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestHandleWebhookCancellationKeepsEntitlement(t *testing.T) {
	db := newTestDB(t)
	svc := NewPurchaseService(db)
	user := createTestUser(t, db, "Alice", models.LanguageEnglish)

	require.NoError(t, svc.HandleWebhookEvent(purchaseEvent(user.ID, "INITIAL_PURCHASE", EntitlementRemoveAds)))
	require.NoError(t, svc.HandleWebhookEvent(purchaseEvent(user.ID, "CANCELLATION", EntitlementRemoveAds)))

	// Cancelling auto-renew does not revoke the paid period.
	removed, err := svc.Entitlement(user.ID)
	require.NoError(t, err)
	assert.True(t, removed)

	var count int64
	require.NoError(t, db.Model(&models.Purchase{}).Where("user_id = ?", user.ID).Count(&count).Error)
	assert.EqualValues(t, 2, count)
}

func TestHandleWebhookOtherEntitlement(t *testing.T) {
	db := newTestDB(t)
	svc := NewPurchaseService(db)
	user := createTestUser(t, db, "Alice", models.LanguageEnglish)

	err := svc.HandleWebhookEvent(purchaseEvent(user.ID, "INITIAL_PURCHASE", "some_other_perk"))
	require.NoError(t, err)

	removed, err := svc.Entitlement(user.ID)
	require.NoError(t, err)
	assert.False(t, removed)

	// The audit row is still written.
	var count int64
	require.NoError(t, db.Model(&models.Purchase{}).Where("user_id = ?", user.ID).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestHandleWebhookEmptyEntitlements(t *testing.T) {
	db := newTestDB(t)
	svc := NewPurchaseService(db)
	user := createTestUser(t, db, "Alice", models.LanguageEnglish)

	// Events without entitlement_ids still grant: the app sells a
	// single product.
	err := svc.HandleWebhookEvent(purchaseEvent(user.ID, "RENEWAL"))
	require.NoError(t, err)

	removed, err := svc.Entitlement(user.ID)
	require.NoError(t, err)
	assert.True(t, removed)
}

func TestHandleWebhookUnmappableUser(t *testing.T) {
	db := newTestDB(t)
	svc := NewPurchaseService(db)

	event := purchaseEvent(uuid.New(), "INITIAL_PURCHASE", EntitlementRemoveAds)
	event.AppUserID = "$RCAnonymousID:abc123"
	require.NoError(t, svc.HandleWebhookEvent(event))

	var count int64
	require.NoError(t, db.Model(&models.Purchase{}).Count(&count).Error)
	assert.EqualValues(t, 0, count)
}

func TestHandleWebhookUnknownUser(t *testing.T) {
	db := newTestDB(t)
	svc := NewPurchaseService(db)

	// Well-formed UUID with no matching account: ignored without error.
	require.NoError(t, svc.HandleWebhookEvent(purchaseEvent(uuid.New(), "INITIAL_PURCHASE", EntitlementRemoveAds)))
}

func TestHandleWebhookIgnoredType(t *testing.T) {
	db := newTestDB(t)
	svc := NewPurchaseService(db)
	user := createTestUser(t, db, "Alice", models.LanguageEnglish)

	require.NoError(t, svc.HandleWebhookEvent(purchaseEvent(user.ID, "TEST", EntitlementRemoveAds)))

	removed, err := svc.Entitlement(user.ID)
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestEntitlementUnknownUser(t *testing.T) {
	db := newTestDB(t)
	svc := NewPurchaseService(db)

	_, err := svc.Entitlement(uuid.New())
	assert.ErrorIs(t, err, ErrUserNotFound)
}
