package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Purchase records a RevenueCat webhook event for the remove-ads
// entitlement. The effective entitlement is the AdsRemoved flag on the
// user; rows here are the audit trail.
type Purchase struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID        uuid.UUID `gorm:"type:uuid;index" json:"user_id"`
	RevenueCatID  string    `gorm:"index;size:255" json:"revenuecat_id"`
	ProductID     string    `gorm:"size:255" json:"product_id"`
	EventType     string    `gorm:"size:50" json:"event_type"`
	Store         string    `gorm:"size:50" json:"store"`
	PurchasedAt   time.Time `json:"purchased_at"`
	ExpirationAt  time.Time `json:"expiration_at"`
	TransactionID string    `gorm:"size:255" json:"transaction_id"`
	CreatedAt     time.Time `json:"created_at"`
}

func (p *Purchase) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
