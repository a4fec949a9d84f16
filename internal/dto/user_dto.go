package dto

import (
	"time"

	"github.com/google/uuid"
)

type UpdateProfileRequest struct {
	DisplayName string `json:"display_name,omitempty"`
	Language    string `json:"language,omitempty"`
}

type PushTokenRequest struct {
	PushToken string `json:"push_token"`
}

// PartnerResponse is one entry in the discovery list.
type PartnerResponse struct {
	ID           uuid.UUID `json:"id"`
	DisplayName  string    `json:"display_name"`
	Language     string    `json:"language"`
	LastActiveAt time.Time `json:"last_active_at"`
}

type EntitlementResponse struct {
	AdsRemoved bool `json:"ads_removed"`
}
