package realtime

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"booking-system/pkg/logger"
)

func newChatServer(t *testing.T, hub *Hub) *httptest.Server {
	upgrader := websocket.Upgrader{}
	onMessage := func(_ context.Context, userID int64, roomID, content string) (interface{}, error) {
		if content == "" {
			return nil, errors.New("message content is required")
		}
		return map[string]interface{}{"room_id": roomID, "sender_id": userID, "content": content}, nil
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		var userID int64 = 1
		if r.URL.Query().Get("user") == "2" {
			userID = 2
		}
		NewClient(hub, conn, "room-1", userID, onMessage).Serve(context.Background())
	}))
	t.Cleanup(srv.Close)
	return srv
}

func dial(t *testing.T, srv *httptest.Server, user string) *websocket.Conn {
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/?user=" + user
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func readEvent(t *testing.T, conn *websocket.Conn) map[string]interface{} {
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(3*time.Second)))
	var event map[string]interface{}
	require.NoError(t, conn.ReadJSON(&event))
	return event
}

func TestHub_BroadcastsToRoom(t *testing.T) {
	hub := NewHub(logger.NewNop())
	srv := newChatServer(t, hub)

	alice := dial(t, srv, "1")
	bob := dial(t, srv, "2")
	require.Eventually(t, func() bool { return hub.ClientCount("room-1") == 2 }, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, alice.WriteJSON(map[string]string{"type": "message", "content": "szia"}))

	for _, conn := range []*websocket.Conn{alice, bob} {
		event := readEvent(t, conn)
		assert.Equal(t, EventMessage, event["type"])
		data := event["data"].(map[string]interface{})
		assert.Equal(t, "szia", data["content"])
		assert.EqualValues(t, 1, data["sender_id"])
	}
}

func TestHub_ErrorsGoOnlyToSender(t *testing.T) {
	hub := NewHub(logger.NewNop())
	srv := newChatServer(t, hub)

	alice := dial(t, srv, "1")
	require.Eventually(t, func() bool { return hub.ClientCount("room-1") == 1 }, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, alice.WriteJSON(map[string]string{"type": "message", "content": ""}))
	event := readEvent(t, alice)
	assert.Equal(t, EventError, event["type"])
	assert.Equal(t, "message content is required", event["data"])

	require.NoError(t, alice.WriteJSON(map[string]string{"type": "ping"}))
	assert.Equal(t, EventPong, readEvent(t, alice)["type"])
}

func TestHub_LeaveOnDisconnect(t *testing.T) {
	hub := NewHub(logger.NewNop())
	srv := newChatServer(t, hub)

	conn := dial(t, srv, "1")
	require.Eventually(t, func() bool { return hub.ClientCount("room-1") == 1 }, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, conn.Close())
	assert.Eventually(t, func() bool { return hub.ClientCount("room-1") == 0 }, 2*time.Second, 10*time.Millisecond)
	assert.Zero(t, hub.Broadcast("room-1", NewEvent(EventMessage, "nobody")))
}
