package services

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/enjpbridge/bridge-backend/internal/config"
	"github.com/enjpbridge/bridge-backend/internal/dto"
	"github.com/enjpbridge/bridge-backend/internal/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidPassword    = errors.New("password must be 6 to 20 characters")
	ErrInvalidToken       = errors.New("invalid or expired refresh token")
	ErrUserNotFound       = errors.New("user not found")
)

// AuthErrorMessage maps auth failures to the text shown in the app, in
// the caller's language.
func AuthErrorMessage(err error, language string) string {
	ja := language == models.LanguageJapanese
	switch {
	case errors.Is(err, ErrEmailTaken):
		if ja {
			return "このメールアドレスは既に登録されています"
		}
		return "This email address is already registered"
	case errors.Is(err, ErrInvalidCredentials):
		if ja {
			return "メールアドレスまたはパスワードが正しくありません"
		}
		return "Incorrect email address or password"
	case errors.Is(err, ErrInvalidPassword):
		if ja {
			return "パスワードは6〜20文字で入力してください"
		}
		return "Password must be 6 to 20 characters"
	case errors.Is(err, ErrInvalidDisplayName):
		if ja {
			return "ニックネームは2〜10文字のひらがな・カタカナ・漢字・英数字で入力してください"
		}
		return "Nickname must be 2 to 10 characters using letters, numbers or Japanese characters"
	case errors.Is(err, ErrInvalidToken):
		if ja {
			return "セッションの有効期限が切れました。再度ログインしてください"
		}
		return "Your session has expired. Please log in again"
	default:
		if ja {
			return "エラーが発生しました。しばらくしてからもう一度お試しください"
		}
		return "Something went wrong. Please try again later"
	}
}

type AuthService struct {
	db        *gorm.DB
	cfg       *config.Config
	appleJWKS *AppleJWKSClient
}

func NewAuthService(db *gorm.DB, cfg *config.Config) *AuthService {
	return &AuthService{
		db:        db,
		cfg:       cfg,
		appleJWKS: NewAppleJWKSClient(),
	}
}

func validPassword(password string) bool {
	n := len(password)
	return n >= 6 && n <= 20
}

func (s *AuthService) Register(req *dto.RegisterRequest) (*dto.AuthResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" {
		return nil, ErrInvalidCredentials
	}
	if !validPassword(req.Password) {
		return nil, ErrInvalidPassword
	}
	if err := ValidateDisplayName(req.DisplayName); err != nil {
		return nil, err
	}
	if err := ValidateLanguage(req.Language); err != nil {
		return nil, err
	}

	var existing models.User
	if err := s.db.Where("email = ?", email).First(&existing).Error; err == nil {
		return nil, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := models.User{
		ID:           uuid.New(),
		Email:        email,
		Password:     string(hash),
		DisplayName:  req.DisplayName,
		Language:     req.Language,
		AuthProvider: "email",
		LastActiveAt: time.Now(),
	}

	if err := s.db.Create(&user).Error; err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return s.generateTokenPair(&user)
}

func (s *AuthService) Login(req *dto.LoginRequest) (*dto.AuthResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	var user models.User
	if err := s.db.Where("email = ?", email).First(&user).Error; err != nil {
		return nil, ErrInvalidCredentials
	}
	// Withdrawn accounts keep their row but are not allowed back in.
	if user.Deleted {
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	s.db.Model(&user).Update("last_active_at", time.Now())
	return s.generateTokenPair(&user)
}

func (s *AuthService) Refresh(req *dto.RefreshRequest) (*dto.AuthResponse, error) {
	tokenHash := hashToken(req.RefreshToken)

	var stored models.RefreshToken
	if err := s.db.Where("token_hash = ? AND revoked = false", tokenHash).First(&stored).Error; err != nil {
		return nil, ErrInvalidToken
	}

	if time.Now().After(stored.ExpiresAt) {
		s.db.Model(&stored).Update("revoked", true)
		return nil, ErrInvalidToken
	}

	// Rotation: the presented token is spent whether or not the rest
	// of the exchange succeeds.
	s.db.Model(&stored).Update("revoked", true)

	var user models.User
	if err := s.db.First(&user, "id = ?", stored.UserID).Error; err != nil {
		return nil, ErrInvalidToken
	}
	if user.Deleted {
		return nil, ErrInvalidToken
	}

	return s.generateTokenPair(&user)
}

func (s *AuthService) Logout(req *dto.LogoutRequest) error {
	tokenHash := hashToken(req.RefreshToken)
	return s.db.Model(&models.RefreshToken{}).
		Where("token_hash = ?", tokenHash).
		Update("revoked", true).Error
}

// DeleteAccount removes everything the user produced and tombstones
// the user row so counterpart room lists can still recognize a
// withdrawn account. One transaction; a partial wipe never commits.
func (s *AuthService) DeleteAccount(userID uuid.UUID, password string) error {
	var user models.User
	if err := s.db.First(&user, "id = ?", userID).Error; err != nil {
		return ErrUserNotFound
	}

	if user.AuthProvider != "apple" {
		if password == "" {
			return ErrInvalidCredentials
		}
		if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
			return ErrInvalidCredentials
		}
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		var rooms []models.ChatRoom
		if err := tx.Where("participant1_id = ? OR participant2_id = ?", userID, userID).
			Find(&rooms).Error; err != nil {
			return err
		}
		for _, room := range rooms {
			if err := tx.Where("chat_room_id = ?", room.ID).Delete(&models.Message{}).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("participant1_id = ? OR participant2_id = ?", userID, userID).
			Delete(&models.ChatRoom{}).Error; err != nil {
			return err
		}
		if err := tx.Where("blocker_id = ? OR blocked_id = ?", userID, userID).
			Delete(&models.Block{}).Error; err != nil {
			return err
		}
		if err := tx.Where("reporter_id = ?", userID).Delete(&models.Report{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", userID).Delete(&models.RefreshToken{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", userID).Delete(&models.Purchase{}).Error; err != nil {
			return err
		}

		// The email is retired, not freed for rebinding to a fresh
		// account with the old identity.
		return tx.Model(&user).Updates(map[string]interface{}{
			"deleted":       true,
			"email":         fmt.Sprintf("deleted+%s@retired.local", user.ID),
			"password":      "",
			"push_token":    "",
			"apple_user_id": nil,
		}).Error
	})
}

func (s *AuthService) AppleSignIn(req *dto.AppleSignInRequest) (*dto.AuthResponse, error) {
	if req.IdentityToken == "" {
		return nil, ErrInvalidToken
	}

	claims, err := s.appleJWKS.VerifyToken(req.IdentityToken, s.cfg.AppleBundleID)
	if err != nil {
		slog.Error("apple token verification failed", "error", err)
		return nil, fmt.Errorf("failed to verify Apple identity token: %w", err)
	}

	appleUserID := claims.Sub
	email := claims.Email
	if email == "" {
		email = req.Email
	}
	if email == "" {
		email = appleUserID + "@privaterelay.appleid.com"
	}
	email = strings.ToLower(email)

	var user models.User
	err = s.db.Where("apple_user_id = ? OR email = ?", appleUserID, email).First(&user).Error

	if err != nil {
		displayName := req.FullName
		if ValidateDisplayName(displayName) != nil {
			displayName = "Unknown"
		}
		language := req.Language
		if ValidateLanguage(language) != nil {
			language = models.LanguageEnglish
		}

		user = models.User{
			ID:           uuid.New(),
			Email:        email,
			Password:     "",
			DisplayName:  displayName,
			Language:     language,
			AppleUserID:  &appleUserID,
			AuthProvider: "apple",
			LastActiveAt: time.Now(),
		}
		if err := s.db.Create(&user).Error; err != nil {
			return nil, fmt.Errorf("failed to create Apple user: %w", err)
		}
	} else {
		if user.Deleted {
			return nil, ErrInvalidCredentials
		}
		if user.AppleUserID == nil {
			s.db.Model(&user).Updates(map[string]interface{}{
				"apple_user_id": appleUserID,
				"auth_provider": "apple",
			})
			user.AppleUserID = &appleUserID
			user.AuthProvider = "apple"
		}
		s.db.Model(&user).Update("last_active_at", time.Now())
	}

	return s.generateTokenPair(&user)
}

func (s *AuthService) generateTokenPair(user *models.User) (*dto.AuthResponse, error) {
	accessToken, err := s.generateAccessToken(user)
	if err != nil {
		return nil, err
	}

	refreshToken, err := s.generateRefreshToken(user)
	if err != nil {
		return nil, err
	}

	return &dto.AuthResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User: dto.UserResponse{
			ID:          user.ID,
			Email:       user.Email,
			DisplayName: user.DisplayName,
			Language:    user.Language,
			AdsRemoved:  user.AdsRemoved,
			IsAppleUser: user.AuthProvider == "apple",
		},
	}, nil
}

func (s *AuthService) generateAccessToken(user *models.User) (string, error) {
	claims := jwt.MapClaims{
		"sub":           user.ID.String(),
		"email":         user.Email,
		"language":      user.Language,
		"is_apple_user": user.AuthProvider == "apple",
		"iat":           time.Now().Unix(),
		"exp":           time.Now().Add(s.cfg.JWTAccessExpiry).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.JWTSecret))
}

func (s *AuthService) generateRefreshToken(user *models.User) (string, error) {
	rawBytes := make([]byte, 32)
	if _, err := rand.Read(rawBytes); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}

	rawToken := base64.URLEncoding.EncodeToString(rawBytes)
	tokenHash := hashToken(rawToken)

	record := models.RefreshToken{
		ID:        uuid.New(),
		UserID:    user.ID,
		TokenHash: tokenHash,
		ExpiresAt: time.Now().Add(s.cfg.JWTRefreshExpiry),
	}

	if err := s.db.Create(&record).Error; err != nil {
		return "", fmt.Errorf("failed to store refresh token: %w", err)
	}

	return rawToken, nil
}

func hashToken(token string) string {
	h := sha256.Sum256([]byte(token))
	return fmt.Sprintf("%x", h)
}
