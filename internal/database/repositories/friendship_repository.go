package repositories

import (
	"context"
	"time"

	"booking-system/internal/database"

	"github.com/jmoiron/sqlx"
)

const friendshipColumns = `id, requester_id, addressee_id, status, created_at, updated_at`

// Friend is an accepted friend with the friendship it comes from
type Friend struct {
	FriendshipID int64  `db:"friendship_id" json:"friendship_id"`
	UserID       int64  `db:"user_id" json:"user_id"`
	Username     string `db:"username" json:"username"`
	ProfilePic   string `db:"profile_pic" json:"profile_pic"`
	Role         string `db:"role" json:"role"`
}

type FriendshipRepository struct {
	db sqlx.ExtContext
}

func NewFriendshipRepository(db sqlx.ExtContext) *FriendshipRepository {
	return &FriendshipRepository{db: db}
}

// WithTx returns a repository bound to the transaction
func (r *FriendshipRepository) WithTx(tx *sqlx.Tx) *FriendshipRepository {
	return &FriendshipRepository{db: tx}
}

// Create stores a pending request
func (r *FriendshipRepository) Create(ctx context.Context, f *database.Friendship) error {
	if f.Status == "" {
		f.Status = database.FriendshipPending
	}
	f.CreatedAt = utc(time.Now())
	f.UpdatedAt = f.CreatedAt
	query := r.db.Rebind(`
        INSERT INTO friendships (requester_id, addressee_id, status, created_at, updated_at)
        VALUES (?, ?, ?, ?, ?)
        RETURNING id
    `)
	err := r.db.QueryRowxContext(ctx, query, f.RequesterID, f.AddresseeID, f.Status, f.CreatedAt, f.UpdatedAt).Scan(&f.ID)
	return uniqueViolation(err)
}

func (r *FriendshipRepository) GetByID(ctx context.Context, id int64) (*database.Friendship, error) {
	var f database.Friendship
	query := r.db.Rebind(`SELECT ` + friendshipColumns + ` FROM friendships WHERE id = ?`)
	if err := sqlx.GetContext(ctx, r.db, &f, query, id); err != nil {
		return nil, notFound(err)
	}
	return &f, nil
}

// Find returns the friendship between two users in either direction
func (r *FriendshipRepository) Find(ctx context.Context, a, b int64) (*database.Friendship, error) {
	var f database.Friendship
	query := r.db.Rebind(`
        SELECT ` + friendshipColumns + `
        FROM friendships
        WHERE (requester_id = ? AND addressee_id = ?) OR (requester_id = ? AND addressee_id = ?)
        LIMIT 1
    `)
	if err := sqlx.GetContext(ctx, r.db, &f, query, a, b, b, a); err != nil {
		return nil, notFound(err)
	}
	return &f, nil
}

// Accept flips a pending request addressed to addresseeID
func (r *FriendshipRepository) Accept(ctx context.Context, id, addresseeID int64) error {
	query := r.db.Rebind(`
        UPDATE friendships SET status = ?, updated_at = CURRENT_TIMESTAMP
        WHERE id = ? AND addressee_id = ? AND status = ?
    `)
	res, err := r.db.ExecContext(ctx, query, database.FriendshipAccepted, id, addresseeID, database.FriendshipPending)
	return affected(res, err)
}

// Delete removes a friendship or request the user takes part in
func (r *FriendshipRepository) Delete(ctx context.Context, id, userID int64) error {
	query := r.db.Rebind(`DELETE FROM friendships WHERE id = ? AND (requester_id = ? OR addressee_id = ?)`)
	res, err := r.db.ExecContext(ctx, query, id, userID, userID)
	return affected(res, err)
}

// AreFriends reports whether an accepted friendship exists
func (r *FriendshipRepository) AreFriends(ctx context.Context, a, b int64) (bool, error) {
	f, err := r.Find(ctx, a, b)
	if err == ErrNotFound {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return f.Status == database.FriendshipAccepted, nil
}

// ListFriends returns accepted friends of the user
func (r *FriendshipRepository) ListFriends(ctx context.Context, userID int64) ([]Friend, error) {
	query := r.db.Rebind(`
        SELECT f.id AS friendship_id, u.id AS user_id, u.username, u.profile_pic, u.role
        FROM friendships f
        JOIN users u ON u.id = CASE WHEN f.requester_id = ? THEN f.addressee_id ELSE f.requester_id END
        WHERE (f.requester_id = ? OR f.addressee_id = ?) AND f.status = ? AND u.is_active = ?
        ORDER BY u.username ASC
    `)
	friends := []Friend{}
	err := sqlx.SelectContext(ctx, r.db, &friends, query, userID, userID, userID, database.FriendshipAccepted, true)
	return friends, err
}

// ListIncoming returns pending requests addressed to the user
func (r *FriendshipRepository) ListIncoming(ctx context.Context, userID int64) ([]Friend, error) {
	query := r.db.Rebind(`
        SELECT f.id AS friendship_id, u.id AS user_id, u.username, u.profile_pic, u.role
        FROM friendships f
        JOIN users u ON u.id = f.requester_id
        WHERE f.addressee_id = ? AND f.status = ? AND u.is_active = ?
        ORDER BY f.created_at ASC, f.id ASC
    `)
	requests := []Friend{}
	err := sqlx.SelectContext(ctx, r.db, &requests, query, userID, database.FriendshipPending, true)
	return requests, err
}
