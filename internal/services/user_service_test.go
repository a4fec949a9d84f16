package services

import (
	"testing"
	"time"

	"github.com/enjpbridge/bridge-backend/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateDisplayName(t *testing.T) {
	valid := []string{"Al", "Alice", "ひろゆき", "タロウ", "山田太郎", "User1234", "あーちゃん"}
	for _, name := range valid {
		assert.NoError(t, ValidateDisplayName(name), "expected %q to be accepted", name)
	}

	invalid := []string{"", "A", "あ", "ABCDEFGHIJK", "Alice!", "山田 太郎", "a@b"}
	for _, name := range invalid {
		assert.ErrorIs(t, ValidateDisplayName(name), ErrInvalidDisplayName, "expected %q to be rejected", name)
	}
}

func TestValidateLanguage(t *testing.T) {
	assert.NoError(t, ValidateLanguage(models.LanguageEnglish))
	assert.NoError(t, ValidateLanguage(models.LanguageJapanese))
	assert.ErrorIs(t, ValidateLanguage("fr"), ErrInvalidLanguage)
	assert.ErrorIs(t, ValidateLanguage(""), ErrInvalidLanguage)
}

func TestUpdateProfile(t *testing.T) {
	db := newTestDB(t)
	svc := NewUserService(db, NewModerationService(db))
	user := createTestUser(t, db, "Alice", models.LanguageEnglish)

	updated, err := svc.UpdateProfile(user.ID, "アリス", models.LanguageJapanese)
	require.NoError(t, err)
	assert.Equal(t, "アリス", updated.DisplayName)
	assert.Equal(t, models.LanguageJapanese, updated.Language)

	var stored models.User
	require.NoError(t, db.First(&stored, "id = ?", user.ID).Error)
	assert.Equal(t, "アリス", stored.DisplayName)
	assert.Equal(t, models.LanguageJapanese, stored.Language)
}

func TestUpdateProfilePartial(t *testing.T) {
	db := newTestDB(t)
	svc := NewUserService(db, NewModerationService(db))
	user := createTestUser(t, db, "Alice", models.LanguageEnglish)

	// Empty fields mean "leave unchanged".
	updated, err := svc.UpdateProfile(user.ID, "Alicia", "")
	require.NoError(t, err)
	assert.Equal(t, "Alicia", updated.DisplayName)
	assert.Equal(t, models.LanguageEnglish, updated.Language)

	updated, err = svc.UpdateProfile(user.ID, "", "")
	require.NoError(t, err)
	assert.Equal(t, "Alicia", updated.DisplayName)
}

func TestUpdateProfileValidation(t *testing.T) {
	db := newTestDB(t)
	svc := NewUserService(db, NewModerationService(db))
	user := createTestUser(t, db, "Alice", models.LanguageEnglish)

	_, err := svc.UpdateProfile(user.ID, "x", "")
	assert.ErrorIs(t, err, ErrInvalidDisplayName)

	_, err = svc.UpdateProfile(user.ID, "", "de")
	assert.ErrorIs(t, err, ErrInvalidLanguage)

	_, err = svc.UpdateProfile(uuid.New(), "Bob", "")
	assert.ErrorIs(t, err, ErrProfileNotFound)

	var stored models.User
	require.NoError(t, db.First(&stored, "id = ?", user.ID).Error)
	assert.Equal(t, "Alice", stored.DisplayName)
}

func TestRegisterPushToken(t *testing.T) {
	db := newTestDB(t)
	svc := NewUserService(db, NewModerationService(db))
	user := createTestUser(t, db, "Alice", models.LanguageEnglish)

	require.NoError(t, svc.RegisterPushToken(user.ID, "ExponentPushToken[abc]"))

	var stored models.User
	require.NoError(t, db.First(&stored, "id = ?", user.ID).Error)
	assert.Equal(t, "ExponentPushToken[abc]", stored.PushToken)
}

func TestDiscovery(t *testing.T) {
	db := newTestDB(t)
	moderation := NewModerationService(db)
	svc := NewUserService(db, moderation)

	viewer := createTestUser(t, db, "Alice", models.LanguageEnglish)
	hanako := createTestUser(t, db, "はなこ", models.LanguageJapanese)
	taro := createTestUser(t, db, "たろう", models.LanguageJapanese)
	blockedUser := createTestUser(t, db, "けん", models.LanguageJapanese)
	withdrawn := createTestUser(t, db, "ゆき", models.LanguageJapanese)
	sameLanguage := createTestUser(t, db, "Bob", models.LanguageEnglish)

	require.NoError(t, db.Model(withdrawn).Update("deleted", true).Error)
	require.NoError(t, moderation.BlockUser(viewer.ID, blockedUser.ID, "manual"))

	// taro was active more recently than hanako.
	require.NoError(t, db.Model(hanako).Update("last_active_at", time.Now().Add(-2*time.Hour)).Error)
	require.NoError(t, db.Model(taro).Update("last_active_at", time.Now().Add(-time.Minute)).Error)

	partners, err := svc.Discovery(viewer.ID)
	require.NoError(t, err)

	require.Len(t, partners, 2)
	assert.Equal(t, taro.ID, partners[0].ID)
	assert.Equal(t, hanako.ID, partners[1].ID)

	for _, p := range partners {
		assert.NotEqual(t, viewer.ID, p.ID)
		assert.NotEqual(t, sameLanguage.ID, p.ID)
	}
}

func TestDiscoveryUnknownViewer(t *testing.T) {
	db := newTestDB(t)
	svc := NewUserService(db, NewModerationService(db))

	_, err := svc.Discovery(uuid.New())
	assert.ErrorIs(t, err, ErrProfileNotFound)
}

func TestGetProfileWithRetrySynthesizesDefault(t *testing.T) {
	db := newTestDB(t)
	svc := NewUserService(db, NewModerationService(db))

	id := uuid.New()
	user := svc.GetProfileWithRetry(id, "ghost@example.com")

	require.NotNil(t, user)
	assert.Equal(t, id, user.ID)
	assert.Equal(t, "ghost@example.com", user.Email)
	assert.Equal(t, "Unknown", user.DisplayName)
	assert.Equal(t, models.LanguageEnglish, user.Language)
}
