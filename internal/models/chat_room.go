package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Room lifecycle states. A rejected room is deleted as soon as either
// side re-requests, so "rejected" is effectively terminal.
const (
	RoomStatusPending  = "pending"
	RoomStatusAccepted = "accepted"
	RoomStatusRejected = "rejected"
)

// ChatRoom is a conversation between exactly two users. Participants
// are stored in canonical order (Participant1ID < Participant2ID by
// string comparison) so the unique index holds for the unordered pair.
type ChatRoom struct {
	ID             uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Participant1ID uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_chat_rooms_pair" json:"participant1_id"`
	Participant2ID uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_chat_rooms_pair" json:"participant2_id"`
	Status         string     `gorm:"not null;size:20;index" json:"status"`
	RequestedBy    uuid.UUID  `gorm:"type:uuid;not null" json:"requested_by"`
	RequestedAt    time.Time  `json:"requested_at"`
	AcceptedAt     *time.Time `json:"accepted_at,omitempty"`
	RejectedAt     *time.Time `json:"rejected_at,omitempty"`
	LastMessage    string     `gorm:"type:text" json:"last_message"`
	LastMessageAt  time.Time  `gorm:"index" json:"last_message_at"`
	Unread1        int        `gorm:"not null;default:0" json:"-"`
	Unread2        int        `gorm:"not null;default:0" json:"-"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

func (ChatRoom) TableName() string {
	return "chat_rooms"
}

func (r *ChatRoom) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// CanonicalPair orders two user IDs so the smaller string comes first.
func CanonicalPair(a, b uuid.UUID) (uuid.UUID, uuid.UUID) {
	if a.String() > b.String() {
		return b, a
	}
	return a, b
}

// HasParticipant reports whether the user is one of the two members.
func (r *ChatRoom) HasParticipant(userID uuid.UUID) bool {
	return r.Participant1ID == userID || r.Participant2ID == userID
}

// OtherParticipant returns the counterpart of the given member.
func (r *ChatRoom) OtherParticipant(userID uuid.UUID) uuid.UUID {
	if r.Participant1ID == userID {
		return r.Participant2ID
	}
	return r.Participant1ID
}

// UnreadFor returns the unread counter belonging to the given member.
func (r *ChatRoom) UnreadFor(userID uuid.UUID) int {
	if r.Participant1ID == userID {
		return r.Unread1
	}
	return r.Unread2
}

// UnreadColumn returns the column name of the member's unread counter,
// for targeted UPDATEs.
func (r *ChatRoom) UnreadColumn(userID uuid.UUID) string {
	if r.Participant1ID == userID {
		return "unread1"
	}
	return "unread2"
}
