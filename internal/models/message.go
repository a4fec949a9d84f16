package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MaxMessageLength is the hard cap on a chat message, in runes.
const MaxMessageLength = 500

// Message is a single chat message. Immutable once created; removed
// only by the account deletion cascade of a participant.
type Message struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ChatRoomID uuid.UUID `gorm:"type:uuid;not null;index" json:"chat_room_id"`
	SenderID   uuid.UUID `gorm:"type:uuid;not null;index" json:"sender_id"`
	SenderName string    `gorm:"not null;size:30" json:"sender_name"`
	Text       string    `gorm:"not null;type:text" json:"text"`
	CreatedAt  time.Time `gorm:"index" json:"created_at"`
}

func (m *Message) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}
