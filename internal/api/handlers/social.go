package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"unicode/utf8"

	"booking-system/internal/api/interfaces"
	"booking-system/internal/api/models"
	"booking-system/internal/database"
	"booking-system/internal/database/repositories"
	"booking-system/internal/metrics"
	"booking-system/internal/realtime"

	"github.com/gin-gonic/gin"
)

const maxMessageLength = 2000

// SendFriendRequest asks another user to become friends
func SendFriendRequest(services interfaces.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		otherID, ok := otherUser(c, services)
		if !ok {
			return
		}

		userID := currentUserID(c)
		friendship := &database.Friendship{RequesterID: userID, AddresseeID: otherID}

		ctx := c.Request.Context()
		friends := services.FriendshipRepository()
		if _, err := friends.Find(ctx, userID, otherID); err == nil {
			respondError(c, models.Conflict(models.ErrCodeConflict, "Friend request already exists"))
			return
		} else if !errors.Is(err, repositories.ErrNotFound) {
			fail(c, services, err, "load friendship")
			return
		}

		err := friends.Create(ctx, friendship)
		if errors.Is(err, repositories.ErrDuplicate) {
			respondError(c, models.Conflict(models.ErrCodeConflict, "Friend request already exists"))
			return
		}
		if err != nil {
			fail(c, services, err, "create friend request")
			return
		}

		respond(c, http.StatusCreated, "Friend request sent", friendship)
	}
}

// AcceptFriendRequest accepts a pending request sent by :userId
func AcceptFriendRequest(services interfaces.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		otherID, ok := paramID(c, "userId")
		if !ok {
			return
		}

		ctx := c.Request.Context()
		userID := currentUserID(c)
		friends := services.FriendshipRepository()

		friendship, err := friends.Find(ctx, userID, otherID)
		if errors.Is(err, repositories.ErrNotFound) ||
			(err == nil && (friendship.RequesterID != otherID || friendship.Status != database.FriendshipPending)) {
			respondError(c, models.NotFound(models.ErrCodeNotFound, "No pending request from this user"))
			return
		}
		if err != nil {
			fail(c, services, err, "load friendship")
			return
		}

		if err := friends.Accept(ctx, friendship.ID, userID); err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				respondError(c, models.NotFound(models.ErrCodeNotFound, "No pending request from this user"))
				return
			}
			fail(c, services, err, "accept friend request")
			return
		}

		friendship.Status = database.FriendshipAccepted
		respond(c, http.StatusOK, "Friend request accepted", friendship)
	}
}

// RemoveFriend rejects a request or ends a friendship with :userId
func RemoveFriend(services interfaces.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		otherID, ok := paramID(c, "userId")
		if !ok {
			return
		}

		ctx := c.Request.Context()
		userID := currentUserID(c)
		friends := services.FriendshipRepository()

		friendship, err := friends.Find(ctx, userID, otherID)
		if err == nil {
			err = friends.Delete(ctx, friendship.ID, userID)
		}
		if errors.Is(err, repositories.ErrNotFound) {
			respondError(c, models.NotFound(models.ErrCodeNotFound, "No friendship with this user"))
			return
		}
		if err != nil {
			fail(c, services, err, "remove friend")
			return
		}

		respond(c, http.StatusOK, "Friend removed", nil)
	}
}

// ListFriends returns accepted friends of the caller
func ListFriends(services interfaces.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		friends, err := services.FriendshipRepository().ListFriends(c.Request.Context(), currentUserID(c))
		if err != nil {
			fail(c, services, err, "list friends")
			return
		}
		respond(c, http.StatusOK, "", models.FriendsResponse{Friends: friends})
	}
}

// ListFriendRequests returns pending requests addressed to the caller
func ListFriendRequests(services interfaces.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		requests, err := services.FriendshipRepository().ListIncoming(c.Request.Context(), currentUserID(c))
		if err != nil {
			fail(c, services, err, "list friend requests")
			return
		}
		respond(c, http.StatusOK, "", models.FriendsResponse{Friends: requests})
	}
}

// OpenChatRoom returns the 1:1 room with another user, creating it on first use
func OpenChatRoom(services interfaces.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.ChatRoomRequest
		if !bindJSON(c, &req) {
			return
		}

		ctx := c.Request.Context()
		userID := currentUserID(c)
		if req.UserID == userID {
			respondError(c, models.BadRequest("Cannot chat with yourself"))
			return
		}
		if !activeUser(c, services, req.UserID) {
			return
		}

		allowed, err := canChat(ctx, services, userID, req.UserID)
		if err != nil {
			fail(c, services, err, "check chat permission")
			return
		}
		if !allowed {
			respondError(c, models.Forbidden(models.ErrCodeChatNotAllowed, "You can only chat with friends or people you had an appointment with"))
			return
		}

		room, created, err := services.ChatRepository().GetOrCreateRoom(ctx, userID, req.UserID)
		if err != nil {
			fail(c, services, err, "open chat room")
			return
		}

		status := http.StatusOK
		if created {
			status = http.StatusCreated
		}
		respond(c, status, "", room)
	}
}

// ListChatRooms returns the caller's rooms
func ListChatRooms(services interfaces.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		rooms, err := services.ChatRepository().ListRooms(c.Request.Context(), currentUserID(c))
		if err != nil {
			fail(c, services, err, "list chat rooms")
			return
		}
		respond(c, http.StatusOK, "", gin.H{"rooms": rooms})
	}
}

// ListMessages pages through a room's history, oldest first
func ListMessages(services interfaces.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		room, ok := memberRoom(c, services)
		if !ok {
			return
		}

		limit := queryInt(c, "limit", 50, 200)
		before := int64(queryInt(c, "before", 0, 0))

		messages, err := services.ChatRepository().ListMessages(c.Request.Context(), room.ID, before, limit)
		if err != nil {
			fail(c, services, err, "list messages")
			return
		}
		respond(c, http.StatusOK, "", gin.H{"messages": messages})
	}
}

// PostMessage stores a message and pushes it to the room's websocket clients
func PostMessage(services interfaces.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		room, ok := memberRoom(c, services)
		if !ok {
			return
		}

		var req models.MessageRequest
		if !bindJSON(c, &req) {
			return
		}

		message, err := saveMessage(c.Request.Context(), services, currentUserID(c), room.ID, req.Content)
		if err != nil {
			fail(c, services, err, "post message")
			return
		}

		services.ChatHub().Broadcast(room.ID, realtime.NewEvent(realtime.EventMessage, message))
		respond(c, http.StatusCreated, "", message)
	}
}

// saveMessage checks membership and length, then persists the message
func saveMessage(ctx context.Context, services interfaces.Services, userID int64, roomID, content string) (*database.Message, error) {
	content = strings.TrimSpace(content)
	if length := utf8.RuneCountInString(content); length == 0 || length > maxMessageLength {
		return nil, models.BadRequest(fmt.Sprintf("Message must be 1 to %d characters", maxMessageLength)).
			WithField("content", "length out of range")
	}

	chat := services.ChatRepository()
	room, err := chat.GetRoom(ctx, roomID)
	if errors.Is(err, repositories.ErrNotFound) || (err == nil && !room.HasMember(userID)) {
		return nil, models.NotFound(models.ErrCodeNotFound, "Chat room not found")
	}
	if err != nil {
		return nil, err
	}

	message := &database.Message{RoomID: roomID, SenderID: userID, Content: content}
	if err := chat.AddMessage(ctx, message); err != nil {
		return nil, err
	}
	metrics.RecordChatMessage()
	return message, nil
}

// memberRoom loads the :id room and checks that the caller is in it
func memberRoom(c *gin.Context, services interfaces.Services) (*database.ChatRoom, bool) {
	room, err := services.ChatRepository().GetRoom(c.Request.Context(), c.Param("id"))
	if errors.Is(err, repositories.ErrNotFound) || (err == nil && !room.HasMember(currentUserID(c))) {
		respondError(c, models.NotFound(models.ErrCodeNotFound, "Chat room not found"))
		return nil, false
	}
	if err != nil {
		fail(c, services, err, "load chat room")
		return nil, false
	}
	return room, true
}

func canChat(ctx context.Context, services interfaces.Services, a, b int64) (bool, error) {
	friends, err := services.FriendshipRepository().AreFriends(ctx, a, b)
	if err != nil || friends {
		return friends, err
	}
	return services.AppointmentRepository().SharesAppointment(ctx, a, b)
}

// otherUser parses :userId and checks it names another active user
func otherUser(c *gin.Context, services interfaces.Services) (int64, bool) {
	otherID, ok := paramID(c, "userId")
	if !ok {
		return 0, false
	}
	if otherID == currentUserID(c) {
		respondError(c, models.BadRequest("Cannot befriend yourself"))
		return 0, false
	}
	if !activeUser(c, services, otherID) {
		return 0, false
	}
	return otherID, true
}

func activeUser(c *gin.Context, services interfaces.Services, userID int64) bool {
	user, err := services.UserRepository().GetByID(c.Request.Context(), userID)
	if errors.Is(err, repositories.ErrNotFound) || (err == nil && !user.IsActive) {
		respondError(c, models.NotFound(models.ErrCodeNotFound, "User not found"))
		return false
	}
	if err != nil {
		fail(c, services, err, "load user")
		return false
	}
	return true
}
