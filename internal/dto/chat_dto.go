package dto

import (
	"time"

	"github.com/google/uuid"
)

type RequestChatRequest struct {
	TargetID uuid.UUID `json:"target_id"`
}

// Request outcomes surfaced to the client so it can pick the right
// dialog.
const (
	RequestOutcomeCreated         = "created"
	RequestOutcomeAlreadyPending  = "already_requested"
	RequestOutcomePendingFromThem = "pending_from_them"
	RequestOutcomeAlreadyAccepted = "already_accepted"
)

type RequestChatResponse struct {
	Outcome string        `json:"outcome"`
	Room    *RoomResponse `json:"room,omitempty"`
}

// RoomResponse is one entry in the room list, with counterpart info
// and the viewer's own unread counter resolved.
type RoomResponse struct {
	ID            uuid.UUID  `json:"id"`
	Status        string     `json:"status"`
	RequestedBy   uuid.UUID  `json:"requested_by"`
	Partner       *PartnerResponse `json:"partner,omitempty"`
	LastMessage   string     `json:"last_message"`
	LastMessageAt time.Time  `json:"last_message_at"`
	Unread        int        `json:"unread"`
	AcceptedAt    *time.Time `json:"accepted_at,omitempty"`
}

type RejectResponse struct {
	RejectionCount int  `json:"rejection_count"`
	AutoBlocked    bool `json:"auto_blocked"`
}

type SendMessageRequest struct {
	Text string `json:"text"`
}

type MessageResponse struct {
	ID         uuid.UUID `json:"id"`
	SenderID   uuid.UUID `json:"sender_id"`
	SenderName string    `json:"sender_name"`
	Text       string    `json:"text"`
	CreatedAt  time.Time `json:"created_at"`
}

type TranslateRequest struct {
	MessageIDs []uuid.UUID `json:"message_ids"`
}

// TranslationsResponse maps message IDs to text translated into the
// viewer's language.
type TranslationsResponse struct {
	Translations map[string]string `json:"translations"`
}
