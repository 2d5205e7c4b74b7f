package handlers

import (
	"context"
	"errors"
	"net/http"

	"booking-system/internal/api/interfaces"
	"booking-system/internal/api/models"
	"booking-system/internal/realtime"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// ChatWebSocket upgrades a room member's connection and joins it to the room.
// The allowed origins are the CORS origins of the API.
func ChatWebSocket(services interfaces.Services) gin.HandlerFunc {
	allowed := make(map[string]struct{})
	for _, origin := range services.GetConfig().API.CORS.AllowedOrigins {
		allowed[origin] = struct{}{}
	}
	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" {
				return true
			}
			_, ok := allowed[origin]
			_, wildcard := allowed["*"]
			return ok || wildcard
		},
	}

	return func(c *gin.Context) {
		room, ok := memberRoom(c, services)
		if !ok {
			return
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			services.GetLogger().Error("WebSocket upgrade failed: %v", err)
			return
		}

		userID := currentUserID(c)
		log := services.GetLogger().WithFields(map[string]interface{}{
			"room_id":   room.ID,
			"user_id":   userID,
			"client_ip": getClientIP(c),
		})
		log.Info("WebSocket connection established")

		onMessage := func(ctx context.Context, userID int64, roomID, content string) (interface{}, error) {
			message, err := saveMessage(ctx, services, userID, roomID, content)
			if err != nil {
				var apiErr *models.APIError
				if errors.As(err, &apiErr) {
					return nil, apiErr
				}
				log.Error("Failed to save chat message: %v", err)
				return nil, errors.New("failed to save message")
			}
			return message, nil
		}

		realtime.NewClient(services.ChatHub(), conn, room.ID, userID, onMessage).Serve(c.Request.Context())
		log.Info("WebSocket client disconnected")
	}
}
