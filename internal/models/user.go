package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Supported profile languages. The app pairs speakers of different
// languages, so every user carries exactly one of these.
const (
	LanguageEnglish  = "en"
	LanguageJapanese = "ja"
)

// RejectionCounts maps a counterpart user ID to the number of times
// this user has rejected a chat request from them. Stored as JSONB.
type RejectionCounts map[string]int

func (rc RejectionCounts) Value() (driver.Value, error) {
	if rc == nil {
		return "{}", nil
	}
	b, err := json.Marshal(rc)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (rc *RejectionCounts) Scan(value interface{}) error {
	if value == nil {
		*rc = RejectionCounts{}
		return nil
	}
	var b []byte
	switch v := value.(type) {
	case []byte:
		b = v
	case string:
		b = []byte(v)
	default:
		return errors.New("rejection_counts: unsupported column type")
	}
	if len(b) == 0 {
		*rc = RejectionCounts{}
		return nil
	}
	return json.Unmarshal(b, rc)
}

// User is a chat participant profile.
//
// Deleted is the product-level withdrawal flag: withdrawn users keep
// their row (and rooms) until their own deletion cascade runs, but are
// hidden from discovery and room listings everywhere.
type User struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	Email           string          `gorm:"not null;size:255;uniqueIndex" json:"email"`
	Password        string          `gorm:"not null" json:"-"`
	DisplayName     string          `gorm:"not null;size:30" json:"display_name"`
	Language        string          `gorm:"not null;size:5;index" json:"language"`
	Role            string          `gorm:"size:20;default:'user'" json:"-"`
	PushToken       string          `gorm:"size:255" json:"-"`
	Deleted         bool            `gorm:"not null;default:false;index" json:"-"`
	AdsRemoved      bool            `gorm:"not null;default:false" json:"ads_removed"`
	RejectionCounts RejectionCounts `gorm:"type:jsonb" json:"-"`
	AppleUserID     *string         `gorm:"size:255;index" json:"-"`
	AuthProvider    string          `gorm:"size:50;default:'email'" json:"-"`
	LastActiveAt    time.Time       `json:"last_active_at"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// RejectionCount returns how many times this user has rejected the
// given counterpart.
func (u *User) RejectionCount(counterpartID uuid.UUID) int {
	if u.RejectionCounts == nil {
		return 0
	}
	return u.RejectionCounts[counterpartID.String()]
}

// IncrementRejection bumps the per-counterpart rejection counter and
// returns the new count.
func (u *User) IncrementRejection(counterpartID uuid.UUID) int {
	if u.RejectionCounts == nil {
		u.RejectionCounts = RejectionCounts{}
	}
	u.RejectionCounts[counterpartID.String()]++
	return u.RejectionCounts[counterpartID.String()]
}
