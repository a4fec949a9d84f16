package services

import (
	"testing"
	"time"

	"github.com/enjpbridge/bridge-backend/internal/config"
	"github.com/enjpbridge/bridge-backend/internal/dto"
	"github.com/enjpbridge/bridge-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func newAuthFixture(t *testing.T) (*gorm.DB, *AuthService) {
	db := newTestDB(t)
	cfg := &config.Config{
		JWTSecret:        "test-secret",
		JWTAccessExpiry:  15 * time.Minute,
		JWTRefreshExpiry: 7 * 24 * time.Hour,
	}
	return db, NewAuthService(db, cfg)
}

func validRegister() *dto.RegisterRequest {
	return &dto.RegisterRequest{
		Email:       "alice@example.com",
		Password:    "secret99",
		DisplayName: "Alice",
		Language:    models.LanguageEnglish,
	}
}

func TestRegisterCreatesUserAndTokens(t *testing.T) {
	db, auth := newAuthFixture(t)

	resp, err := auth.Register(validRegister())
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.Equal(t, "Alice", resp.User.DisplayName)
	assert.Equal(t, models.LanguageEnglish, resp.User.Language)
	assert.False(t, resp.User.IsAppleUser)

	var user models.User
	require.NoError(t, db.First(&user, "email = ?", "alice@example.com").Error)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.Password), []byte("secret99")))
}

func TestRegisterValidation(t *testing.T) {
	_, auth := newAuthFixture(t)

	short := validRegister()
	short.Password = "abc"
	_, err := auth.Register(short)
	assert.ErrorIs(t, err, ErrInvalidPassword)

	long := validRegister()
	long.Password = "abcdefghijklmnopqrstu" // 21 chars
	_, err = auth.Register(long)
	assert.ErrorIs(t, err, ErrInvalidPassword)

	badName := validRegister()
	badName.DisplayName = "A" // below the 2-rune minimum
	_, err = auth.Register(badName)
	assert.ErrorIs(t, err, ErrInvalidDisplayName)

	symbols := validRegister()
	symbols.DisplayName = "Alice!"
	_, err = auth.Register(symbols)
	assert.ErrorIs(t, err, ErrInvalidDisplayName)

	badLang := validRegister()
	badLang.Language = "fr"
	_, err = auth.Register(badLang)
	assert.ErrorIs(t, err, ErrInvalidLanguage)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	_, auth := newAuthFixture(t)

	_, err := auth.Register(validRegister())
	require.NoError(t, err)

	dup := validRegister()
	dup.DisplayName = "ありす"
	_, err = auth.Register(dup)
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestLoginRoundTrip(t *testing.T) {
	_, auth := newAuthFixture(t)
	_, err := auth.Register(validRegister())
	require.NoError(t, err)

	resp, err := auth.Login(&dto.LoginRequest{Email: "Alice@Example.com", Password: "secret99"})
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", resp.User.Email)

	_, err = auth.Login(&dto.LoginRequest{Email: "alice@example.com", Password: "wrong"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginRejectsWithdrawnAccount(t *testing.T) {
	db, auth := newAuthFixture(t)
	_, err := auth.Register(validRegister())
	require.NoError(t, err)

	require.NoError(t, db.Model(&models.User{}).Where("email = ?", "alice@example.com").
		Update("deleted", true).Error)

	_, err = auth.Login(&dto.LoginRequest{Email: "alice@example.com", Password: "secret99"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestRefreshRotatesToken(t *testing.T) {
	_, auth := newAuthFixture(t)
	first, err := auth.Register(validRegister())
	require.NoError(t, err)

	second, err := auth.Refresh(&dto.RefreshRequest{RefreshToken: first.RefreshToken})
	require.NoError(t, err)
	assert.NotEqual(t, first.RefreshToken, second.RefreshToken)

	// The spent token does not work twice.
	_, err = auth.Refresh(&dto.RefreshRequest{RefreshToken: first.RefreshToken})
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestLogoutRevokesRefreshToken(t *testing.T) {
	_, auth := newAuthFixture(t)
	resp, err := auth.Register(validRegister())
	require.NoError(t, err)

	require.NoError(t, auth.Logout(&dto.LogoutRequest{RefreshToken: resp.RefreshToken}))

	_, err = auth.Refresh(&dto.RefreshRequest{RefreshToken: resp.RefreshToken})
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestDeleteAccountCascadesAndTombstones(t *testing.T) {
	db, auth := newAuthFixture(t)
	moderation := NewModerationService(db)
	users := NewUserService(db, moderation)
	chats := NewChatService(db, users, moderation)
	msgs := NewMessageService(db, chats, moderation, nil, nil, nil)

	aliceResp, err := auth.Register(validRegister())
	require.NoError(t, err)
	aliceID := aliceResp.User.ID

	yuki := createTestUser(t, db, "ゆき", models.LanguageJapanese)

	var alice models.User
	require.NoError(t, db.First(&alice, "id = ?", aliceID).Error)
	room := acceptedRoom(t, db, &alice, yuki)
	_, err = msgs.SendMessage(aliceID, room.ID, "hello", models.LanguageEnglish)
	require.NoError(t, err)
	require.NoError(t, moderation.BlockUser(aliceID, yuki.ID, "manual"))
	_, err = moderation.CreateReport(aliceID, yuki.ID, room.ID, models.ReportReasonSpam)
	require.NoError(t, err)

	require.NoError(t, auth.DeleteAccount(aliceID, "secret99"))

	var count int64
	db.Model(&models.Message{}).Count(&count)
	assert.EqualValues(t, 0, count)
	db.Model(&models.ChatRoom{}).Count(&count)
	assert.EqualValues(t, 0, count)
	db.Model(&models.Block{}).Count(&count)
	assert.EqualValues(t, 0, count)
	db.Model(&models.Report{}).Where("reporter_id = ?", aliceID).Count(&count)
	assert.EqualValues(t, 0, count)
	db.Model(&models.RefreshToken{}).Where("user_id = ?", aliceID).Count(&count)
	assert.EqualValues(t, 0, count)

	var tombstone models.User
	require.NoError(t, db.First(&tombstone, "id = ?", aliceID).Error)
	assert.True(t, tombstone.Deleted)
	assert.NotEqual(t, "alice@example.com", tombstone.Email)
	assert.Empty(t, tombstone.Password)
	assert.Empty(t, tombstone.PushToken)
}

func TestDeleteAccountRequiresPassword(t *testing.T) {
	_, auth := newAuthFixture(t)
	resp, err := auth.Register(validRegister())
	require.NoError(t, err)

	err = auth.DeleteAccount(resp.User.ID, "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	err = auth.DeleteAccount(resp.User.ID, "")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthErrorMessageBilingual(t *testing.T) {
	assert.Equal(t, "This email address is already registered",
		AuthErrorMessage(ErrEmailTaken, models.LanguageEnglish))
	assert.Equal(t, "このメールアドレスは既に登録されています",
		AuthErrorMessage(ErrEmailTaken, models.LanguageJapanese))

	assert.Equal(t, "メールアドレスまたはパスワードが正しくありません",
		AuthErrorMessage(ErrInvalidCredentials, models.LanguageJapanese))

	// Unknown errors fall back to the generic text.
	assert.Equal(t, "Something went wrong. Please try again later",
		AuthErrorMessage(gorm.ErrInvalidDB, models.LanguageEnglish))
}
