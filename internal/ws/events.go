package ws

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Client → Server event types.
const (
	EventTypePing = "ping"
)

// Server → Client event types.
const (
	EventTypeMessageNew = "message.new"
	EventTypeRoomStatus = "room.status"
	EventTypePong       = "pong"
	EventTypeError      = "error"
)

// Event is the envelope for every websocket frame in both directions.
type Event struct {
	Type      string          `json:"type"`
	RoomID    *uuid.UUID      `json:"room_id,omitempty"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	Timestamp int64           `json:"ts,omitempty"`
}

type MessagePayload struct {
	ID         uuid.UUID `json:"id"`
	ChatRoomID uuid.UUID `json:"chat_room_id"`
	SenderID   uuid.UUID `json:"sender_id"`
	SenderName string    `json:"sender_name"`
	Text       string    `json:"text"`
	CreatedAt  time.Time `json:"created_at"`
}

type RoomStatusPayload struct {
	RoomID      uuid.UUID `json:"room_id"`
	Status      string    `json:"status"`
	RequestedBy uuid.UUID `json:"requested_by"`
}

type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// NewEvent builds a server→client event stamped with the current time.
func NewEvent(eventType string, roomID *uuid.UUID, payload any) (*Event, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return &Event{
		Type:      eventType,
		RoomID:    roomID,
		Payload:   data,
		Timestamp: time.Now().Unix(),
	}, nil
}
