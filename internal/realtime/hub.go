// Package realtime fans chat events out to websocket clients grouped by room.
package realtime

import (
	"sync"
	"time"

	"booking-system/pkg/logger"
)

// Event represents a message sent over WebSocket
type Event struct {
	Type      string      `json:"type"`
	Data      interface{} `json:"data"`
	Timestamp int64       `json:"timestamp"`
}

// NewEvent stamps an event with the current time
func NewEvent(eventType string, data interface{}) Event {
	return Event{Type: eventType, Data: data, Timestamp: time.Now().Unix()}
}

// Hub tracks the connected clients of every chat room
type Hub struct {
	mutex  sync.RWMutex
	rooms  map[string]map[*Client]struct{}
	logger *logger.Logger
}

func NewHub(log *logger.Logger) *Hub {
	return &Hub{
		rooms:  make(map[string]map[*Client]struct{}),
		logger: log.WithComponent("realtime"),
	}
}

func (h *Hub) join(c *Client) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	clients, ok := h.rooms[c.roomID]
	if !ok {
		clients = make(map[*Client]struct{})
		h.rooms[c.roomID] = clients
	}
	clients[c] = struct{}{}

	h.logger.Debug("client joined room", "room_id", c.roomID, "user_id", c.userID, "clients", len(clients))
}

func (h *Hub) leave(c *Client) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	h.removeLocked(c)
}

// removeLocked drops the client and closes its send channel; callers hold the write lock
func (h *Hub) removeLocked(c *Client) {
	clients, ok := h.rooms[c.roomID]
	if !ok {
		return
	}
	if _, ok := clients[c]; !ok {
		return
	}
	delete(clients, c)
	close(c.send)
	if len(clients) == 0 {
		delete(h.rooms, c.roomID)
	}
}

// Broadcast queues the event for every client in the room and returns how many
// received it. Clients whose buffer is full are disconnected.
func (h *Hub) Broadcast(roomID string, event Event) int {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	delivered := 0
	for c := range h.rooms[roomID] {
		select {
		case c.send <- event:
			delivered++
		default:
			h.logger.Warning("WebSocket client channel full", "room_id", roomID, "user_id", c.userID)
			h.removeLocked(c)
		}
	}
	return delivered
}

// ClientCount returns the number of clients connected to the room
func (h *Hub) ClientCount(roomID string) int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	return len(h.rooms[roomID])
}

// Close disconnects every client
func (h *Hub) Close() {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	for _, clients := range h.rooms {
		for c := range clients {
			h.removeLocked(c)
		}
	}
}
