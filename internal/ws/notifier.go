package ws

import (
	"log/slog"

	"github.com/enjpbridge/bridge-backend/internal/models"
	"github.com/google/uuid"
)

// HubNotifier implements services.Notifier on top of the hub.
type HubNotifier struct {
	hub *Hub
}

func NewHubNotifier(hub *Hub) *HubNotifier {
	return &HubNotifier{hub: hub}
}

func (n *HubNotifier) NotifyNewMessage(room *models.ChatRoom, msg *models.Message) {
	evt, err := NewEvent(EventTypeMessageNew, &room.ID, MessagePayload{
		ID:         msg.ID,
		ChatRoomID: msg.ChatRoomID,
		SenderID:   msg.SenderID,
		SenderName: msg.SenderName,
		Text:       msg.Text,
		CreatedAt:  msg.CreatedAt,
	})
	if err != nil {
		slog.Error("ws notifier marshal failed", "error", err)
		return
	}
	n.hub.SendToUsers([]uuid.UUID{room.Participant1ID, room.Participant2ID}, evt)
}

func (n *HubNotifier) NotifyRoomStatus(room *models.ChatRoom, participants []uuid.UUID) {
	evt, err := NewEvent(EventTypeRoomStatus, &room.ID, RoomStatusPayload{
		RoomID:      room.ID,
		Status:      room.Status,
		RequestedBy: room.RequestedBy,
	})
	if err != nil {
		slog.Error("ws notifier marshal failed", "error", err)
		return
	}
	n.hub.SendToUsers(participants, evt)
}
