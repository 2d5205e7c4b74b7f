package repositories

import (
	"context"
	"time"

	"booking-system/internal/database"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type ChatRepository struct {
	db sqlx.ExtContext
}

func NewChatRepository(db sqlx.ExtContext) *ChatRepository {
	return &ChatRepository{db: db}
}

// WithTx returns a repository bound to the transaction
func (r *ChatRepository) WithTx(tx *sqlx.Tx) *ChatRepository {
	return &ChatRepository{db: tx}
}

// GetOrCreateRoom returns the room of the pair, creating it on first use
func (r *ChatRepository) GetOrCreateRoom(ctx context.Context, a, b int64) (*database.ChatRoom, bool, error) {
	if a > b {
		a, b = b, a
	}

	room, err := r.findRoom(ctx, a, b)
	if err == nil {
		return room, false, nil
	}
	if err != ErrNotFound {
		return nil, false, err
	}

	room = &database.ChatRoom{ID: uuid.NewString(), User1ID: a, User2ID: b, CreatedAt: utc(time.Now())}
	query := r.db.Rebind(`INSERT INTO chat_rooms (id, user1_id, user2_id, created_at) VALUES (?, ?, ?, ?)`)
	if _, err := r.db.ExecContext(ctx, query, room.ID, room.User1ID, room.User2ID, room.CreatedAt); err != nil {
		if uniqueViolation(err) == ErrDuplicate {
			// lost a race with the other member
			room, err = r.findRoom(ctx, a, b)
			return room, false, err
		}
		return nil, false, err
	}
	return room, true, nil
}

func (r *ChatRepository) findRoom(ctx context.Context, a, b int64) (*database.ChatRoom, error) {
	var room database.ChatRoom
	query := r.db.Rebind(`SELECT id, user1_id, user2_id, created_at FROM chat_rooms WHERE user1_id = ? AND user2_id = ?`)
	if err := sqlx.GetContext(ctx, r.db, &room, query, a, b); err != nil {
		return nil, notFound(err)
	}
	return &room, nil
}

func (r *ChatRepository) GetRoom(ctx context.Context, roomID string) (*database.ChatRoom, error) {
	var room database.ChatRoom
	query := r.db.Rebind(`SELECT id, user1_id, user2_id, created_at FROM chat_rooms WHERE id = ?`)
	if err := sqlx.GetContext(ctx, r.db, &room, query, roomID); err != nil {
		return nil, notFound(err)
	}
	return &room, nil
}

// ListRooms returns the rooms the user belongs to
func (r *ChatRepository) ListRooms(ctx context.Context, userID int64) ([]database.ChatRoom, error) {
	query := r.db.Rebind(`
        SELECT id, user1_id, user2_id, created_at
        FROM chat_rooms
        WHERE user1_id = ? OR user2_id = ?
        ORDER BY created_at DESC, id ASC
    `)
	rooms := []database.ChatRoom{}
	err := sqlx.SelectContext(ctx, r.db, &rooms, query, userID, userID)
	return rooms, err
}

func (r *ChatRepository) AddMessage(ctx context.Context, m *database.Message) error {
	m.CreatedAt = utc(time.Now())
	query := r.db.Rebind(`INSERT INTO messages (room_id, sender_id, content, created_at) VALUES (?, ?, ?, ?) RETURNING id`)
	return r.db.QueryRowxContext(ctx, query, m.RoomID, m.SenderID, m.Content, m.CreatedAt).Scan(&m.ID)
}

// ListMessages returns up to limit messages older than beforeID, oldest first.
// A zero beforeID starts from the newest message.
func (r *ChatRepository) ListMessages(ctx context.Context, roomID string, beforeID int64, limit int) ([]database.Message, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	query := `SELECT id, room_id, sender_id, content, created_at FROM messages WHERE room_id = ?`
	args := []interface{}{roomID}
	if beforeID > 0 {
		query += " AND id < ?"
		args = append(args, beforeID)
	}
	query += " ORDER BY id DESC LIMIT ?"
	args = append(args, limit)

	messages := []database.Message{}
	if err := sqlx.SelectContext(ctx, r.db, &messages, r.db.Rebind(query), args...); err != nil {
		return nil, err
	}
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}
