package ws

import (
	"encoding/json"
	"log/slog"

	"github.com/google/uuid"
)

// Hub tracks connected clients and routes events to them. Events are
// addressed to users rather than rooms; both sides of a conversation
// are known server-side, so clients never subscribe to anything.
type Hub struct {
	// clients maps userID to the live connection. A reconnect replaces
	// the previous connection for that user.
	clients map[uuid.UUID]*Client

	register   chan *Client
	unregister chan *Client
	deliveries chan *delivery
}

type delivery struct {
	userIDs []uuid.UUID
	data    []byte
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[uuid.UUID]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		deliveries: make(chan *delivery, 256),
	}
}

// Run drives the hub's event loop. Call in a goroutine.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			if old, ok := h.clients[client.userID]; ok {
				close(old.send)
			}
			h.clients[client.userID] = client
			slog.Debug("ws client connected", "user_id", client.userID, "total", len(h.clients))

		case client := <-h.unregister:
			if current, ok := h.clients[client.userID]; ok && current == client {
				delete(h.clients, client.userID)
				close(client.send)
				slog.Debug("ws client disconnected", "user_id", client.userID, "total", len(h.clients))
			}

		case d := <-h.deliveries:
			for _, userID := range d.userIDs {
				client, ok := h.clients[userID]
				if !ok {
					continue
				}
				select {
				case client.send <- d.data:
				default:
					// Slow consumer; drop the connection rather than
					// block every other delivery.
					delete(h.clients, userID)
					close(client.send)
				}
			}
		}
	}
}

// SendToUsers marshals the event once and queues it for each of the
// given users that is currently connected.
func (h *Hub) SendToUsers(userIDs []uuid.UUID, event *Event) {
	data, err := json.Marshal(event)
	if err != nil {
		slog.Error("ws event marshal failed", "type", event.Type, "error", err)
		return
	}
	h.deliveries <- &delivery{userIDs: userIDs, data: data}
}
