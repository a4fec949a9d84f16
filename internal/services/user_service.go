package services

import (
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"time"
	"unicode/utf8"

	"github.com/enjpbridge/bridge-backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrProfileNotFound    = errors.New("user profile not found")
	ErrInvalidDisplayName = errors.New("nickname must be 2-10 characters of English, Japanese or digits")
	ErrInvalidLanguage    = errors.New("language must be en or ja")
)

// displayNamePattern allows hiragana, katakana, kanji, Latin letters
// and digits, matching the signup rule shown in the app.
var displayNamePattern = regexp.MustCompile(`^[ぁ-んァ-ヶー一-龯a-zA-Z0-9]+$`)

const (
	profileFetchAttempts = 3
	profileFetchDelay    = 500 * time.Millisecond
)

// UserService is the user directory: profiles, push tokens and the
// partner discovery list.
type UserService struct {
	db         *gorm.DB
	moderation *ModerationService
}

func NewUserService(db *gorm.DB, moderation *ModerationService) *UserService {
	return &UserService{db: db, moderation: moderation}
}

// ValidateDisplayName enforces the 2-10 character nickname rule.
func ValidateDisplayName(name string) error {
	n := utf8.RuneCountInString(name)
	if n < 2 || n > 10 {
		return ErrInvalidDisplayName
	}
	if !displayNamePattern.MatchString(name) {
		return ErrInvalidDisplayName
	}
	return nil
}

// ValidateLanguage accepts the two supported profile languages.
func ValidateLanguage(lang string) error {
	if lang != models.LanguageEnglish && lang != models.LanguageJapanese {
		return ErrInvalidLanguage
	}
	return nil
}

// GetProfile loads one user by ID.
func (s *UserService) GetProfile(userID uuid.UUID) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}
	return &user, nil
}

// GetProfileWithRetry loads a profile right after login, retrying a
// few times with a fixed delay. If the row never shows up a default
// profile is synthesized so the session can proceed.
func (s *UserService) GetProfileWithRetry(userID uuid.UUID, email string) *models.User {
	for attempt := 1; attempt <= profileFetchAttempts; attempt++ {
		user, err := s.GetProfile(userID)
		if err == nil {
			return user
		}
		if !errors.Is(err, ErrProfileNotFound) {
			slog.Error("profile fetch failed", "user_id", userID.String(), "error", err)
		}
		if attempt < profileFetchAttempts {
			time.Sleep(profileFetchDelay)
		}
	}

	slog.Warn("profile missing after retries, synthesizing default", "user_id", userID.String())
	return &models.User{
		ID:          userID,
		Email:       email,
		DisplayName: "Unknown",
		Language:    models.LanguageEnglish,
	}
}

// UpdateProfile applies validated display-name and language changes.
func (s *UserService) UpdateProfile(userID uuid.UUID, displayName, language string) (*models.User, error) {
	user, err := s.GetProfile(userID)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if displayName != "" {
		if err := ValidateDisplayName(displayName); err != nil {
			return nil, err
		}
		updates["display_name"] = displayName
		user.DisplayName = displayName
	}
	if language != "" {
		if err := ValidateLanguage(language); err != nil {
			return nil, err
		}
		updates["language"] = language
		user.Language = language
	}
	if len(updates) == 0 {
		return user, nil
	}

	if err := s.db.Model(&models.User{}).Where("id = ?", userID).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("updating profile: %w", err)
	}
	return user, nil
}

// RegisterPushToken stores the device push token and refreshes the
// activity timestamp.
func (s *UserService) RegisterPushToken(userID uuid.UUID, token string) error {
	return s.db.Model(&models.User{}).Where("id = ?", userID).Updates(map[string]interface{}{
		"push_token":     token,
		"last_active_at": time.Now(),
	}).Error
}

// TouchActivity bumps the last-active timestamp used for discovery
// ordering.
func (s *UserService) TouchActivity(userID uuid.UUID) {
	if err := s.db.Model(&models.User{}).Where("id = ?", userID).
		Update("last_active_at", time.Now()).Error; err != nil {
		slog.Warn("activity touch failed", "user_id", userID.String(), "error", err)
	}
}

// Discovery lists candidate chat partners for the viewer: everyone
// speaking the other language, excluding the viewer, withdrawn users
// and users the viewer has blocked. Most recently active first.
func (s *UserService) Discovery(viewerID uuid.UUID) ([]models.User, error) {
	viewer, err := s.GetProfile(viewerID)
	if err != nil {
		return nil, err
	}

	blocked, err := s.moderation.BlockedIDs(viewerID)
	if err != nil {
		return nil, err
	}

	var candidates []models.User
	if err := s.db.
		Where("id <> ?", viewerID).
		Where("language <> ?", viewer.Language).
		Where("deleted = ?", false).
		Order("last_active_at DESC").
		Find(&candidates).Error; err != nil {
		return nil, err
	}

	result := make([]models.User, 0, len(candidates))
	for _, c := range candidates {
		if hasAny(blocked, c.ID) {
			continue
		}
		result = append(result, c)
	}
	return result, nil
}
