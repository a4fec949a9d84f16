package services

import (
	"github.com/enjpbridge/bridge-backend/internal/models"
	"github.com/google/uuid"
)

// Notifier pushes realtime events to connected clients. Implemented by
// the websocket hub; services treat it as optional and fire-and-forget.
type Notifier interface {
	NotifyNewMessage(room *models.ChatRoom, msg *models.Message)
	NotifyRoomStatus(room *models.ChatRoom, participants []uuid.UUID)
}
