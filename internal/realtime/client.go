package realtime

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 30 * time.Second
	maxMessageSize = 8192
	sendBuffer     = 100
)

// Inbound event types
const (
	EventMessage = "message"
	EventPing    = "ping"
	EventPong    = "pong"
	EventError   = "error"
)

// MessageHandler persists an inbound chat message and returns what is broadcast to the room
type MessageHandler func(ctx context.Context, userID int64, roomID, content string) (interface{}, error)

type inbound struct {
	Type    string `json:"type"`
	Content string `json:"content"`
}

// Client is one websocket connection bound to a room
type Client struct {
	hub       *Hub
	conn      *websocket.Conn
	roomID    string
	userID    int64
	send      chan Event
	onMessage MessageHandler
	closeOnce sync.Once
}

func NewClient(hub *Hub, conn *websocket.Conn, roomID string, userID int64, onMessage MessageHandler) *Client {
	return &Client{
		hub:       hub,
		conn:      conn,
		roomID:    roomID,
		userID:    userID,
		send:      make(chan Event, sendBuffer),
		onMessage: onMessage,
	}
}

// Serve joins the room and pumps messages until the connection closes
func (c *Client) Serve(ctx context.Context) {
	c.hub.join(c)

	done := make(chan struct{})
	go func() {
		defer close(done)
		c.writePump()
	}()

	c.readPump(ctx)
	c.hub.leave(c)
	<-done
}

func (c *Client) close() {
	c.closeOnce.Do(func() { _ = c.conn.Close() })
}

// reply queues an event for this client only
func (c *Client) reply(event Event) {
	c.hub.mutex.RLock()
	defer c.hub.mutex.RUnlock()

	if _, ok := c.hub.rooms[c.roomID][c]; !ok {
		return
	}
	select {
	case c.send <- event:
	default:
	}
}

func (c *Client) readPump(ctx context.Context) {
	defer c.close()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		messageType, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure, websocket.CloseNormalClosure) {
				c.hub.logger.Error("WebSocket error", "error", err.Error(), "room_id", c.roomID)
			}
			return
		}
		if messageType != websocket.TextMessage {
			continue
		}
		c.handle(ctx, message)
	}
}

func (c *Client) handle(ctx context.Context, message []byte) {
	var msg inbound
	if err := json.Unmarshal(message, &msg); err != nil {
		c.reply(NewEvent(EventError, "invalid message"))
		return
	}

	switch msg.Type {
	case EventPing:
		c.reply(NewEvent(EventPong, nil))

	case EventMessage:
		saved, err := c.onMessage(ctx, c.userID, c.roomID, msg.Content)
		if err != nil {
			c.reply(NewEvent(EventError, err.Error()))
			return
		}
		c.hub.Broadcast(c.roomID, NewEvent(EventMessage, saved))

	default:
		c.hub.logger.Warning("Unknown WebSocket message type", "type", msg.Type)
		c.reply(NewEvent(EventError, "unknown message type"))
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.close()
	}()

	for {
		select {
		case event, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(event); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
