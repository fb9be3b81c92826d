package socket

import (
	"encoding/json"
	"sync"

	"markhub/internal/bookmark/model"
	"markhub/pkg/logger"
)

const (
	InsertType = "INSERT" // a new bookmark was created
	UpdateType = "UPDATE" // title and/or url changed
	DeleteType = "DELETE" // bookmark removed; record carries only the id
)

// ChangeEvent is what subscribers receive on the wire. For deletes the
// record is populated with the id only.
type ChangeEvent struct {
	Type   string         `json:"type"`
	Record model.Bookmark `json:"record"`
}

// Envelope routes an event to a single owner's room. The owner id never
// appears in the serialized event.
type Envelope struct {
	OwnerID string
	Event   ChangeEvent
}

// Hub fans change events out to every open subscription of the owning user.
// Rooms are keyed by owner id; a user with three tabs open has three clients
// in one room, and all three receive every event — including events caused
// by that user's own mutations.
type Hub struct {
	Rooms      map[string]map[*Client]bool
	Broadcast  chan Envelope
	Register   chan *Client
	Unregister chan *Client
	mu         sync.Mutex
}

func NewHub() *Hub {
	return &Hub{
		Rooms:      make(map[string]map[*Client]bool),
		Broadcast:  make(chan Envelope),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
	}
}

// Publish hands a committed change to the hub for fan-out. Safe to call from
// any goroutine; delivery to subscribers is best-effort.
func (h *Hub) Publish(ownerID string, ev ChangeEvent) {
	h.Broadcast <- Envelope{OwnerID: ownerID, Event: ev}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.Register:
			h.mu.Lock()
			if h.Rooms[client.OwnerID] == nil {
				h.Rooms[client.OwnerID] = make(map[*Client]bool)
			}
			h.Rooms[client.OwnerID][client] = true
			h.mu.Unlock()
			logger.Sugar.Infof("Subscription opened for owner %s", client.OwnerID)

		case client := <-h.Unregister:
			h.mu.Lock()
			if _, ok := h.Rooms[client.OwnerID][client]; ok {
				delete(h.Rooms[client.OwnerID], client)
				close(client.Send)
				if len(h.Rooms[client.OwnerID]) == 0 {
					delete(h.Rooms, client.OwnerID)
					logger.Sugar.Infof("Closed empty room for owner %s", client.OwnerID)
				}
			}
			h.mu.Unlock()

		case env := <-h.Broadcast:
			payload, err := json.Marshal(env.Event)
			if err != nil {
				logger.Sugar.Errorf("Error marshalling change event: %v", err)
				continue
			}

			// Snapshot the recipients so the lock is not held during sends.
			h.mu.Lock()
			clientsToSend := make([]*Client, 0, len(h.Rooms[env.OwnerID]))
			for client := range h.Rooms[env.OwnerID] {
				clientsToSend = append(clientsToSend, client)
			}
			h.mu.Unlock()

			for _, client := range clientsToSend {
				select {
				case client.Send <- payload:
				default:
					// A full send buffer means the client is lagging badly.
					// Drop it rather than block the hub.
					logger.Sugar.Warnf("Subscriber for owner %s is lagging. Unregistering.", client.OwnerID)
					// Hand off to a goroutine: Run is busy in this case and
					// cannot receive on Unregister itself.
					go func(c *Client) { h.Unregister <- c }(client)
				}
			}
		}
	}
}
