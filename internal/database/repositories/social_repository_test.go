package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"booking-system/internal/database"
	"booking-system/internal/testutil"
)

func TestFriendshipRepository_RequestAcceptDelete(t *testing.T) {
	db := testutil.OpenTestDB(t)
	repo := NewFriendshipRepository(db)
	ctx := context.Background()

	anna := testutil.InsertUser(t, db, "anna", database.RoleClient)
	bela := testutil.InsertUser(t, db, "bela", database.RoleWorker)

	f := &database.Friendship{RequesterID: anna, AddresseeID: bela}
	require.NoError(t, repo.Create(ctx, f))
	assert.False(t, f.CreatedAt.IsZero())
	assert.ErrorIs(t, repo.Create(ctx, &database.Friendship{RequesterID: anna, AddresseeID: bela}), ErrDuplicate)

	found, err := repo.Find(ctx, bela, anna)
	require.NoError(t, err)
	assert.Equal(t, f.ID, found.ID)

	incoming, err := repo.ListIncoming(ctx, bela)
	require.NoError(t, err)
	require.Len(t, incoming, 1)
	assert.Equal(t, "anna", incoming[0].Username)

	ok, err := repo.AreFriends(ctx, anna, bela)
	require.NoError(t, err)
	assert.False(t, ok)

	// only the addressee may accept
	assert.ErrorIs(t, repo.Accept(ctx, f.ID, anna), ErrNotFound)
	require.NoError(t, repo.Accept(ctx, f.ID, bela))

	ok, err = repo.AreFriends(ctx, bela, anna)
	require.NoError(t, err)
	assert.True(t, ok)

	friends, err := repo.ListFriends(ctx, anna)
	require.NoError(t, err)
	require.Len(t, friends, 1)
	assert.Equal(t, bela, friends[0].UserID)

	outsider := testutil.InsertUser(t, db, "csaba", database.RoleClient)
	assert.ErrorIs(t, repo.Delete(ctx, f.ID, outsider), ErrNotFound)
	require.NoError(t, repo.Delete(ctx, f.ID, anna))

	friends, err = repo.ListFriends(ctx, bela)
	require.NoError(t, err)
	assert.Empty(t, friends)
}

func TestChatRepository_RoomsAndMessages(t *testing.T) {
	db := testutil.OpenTestDB(t)
	repo := NewChatRepository(db)
	ctx := context.Background()

	anna := testutil.InsertUser(t, db, "anna", database.RoleClient)
	bela := testutil.InsertUser(t, db, "bela", database.RoleWorker)

	room, created, err := repo.GetOrCreateRoom(ctx, bela, anna)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, anna, room.User1ID)
	assert.Len(t, room.ID, 36)

	again, created, err := repo.GetOrCreateRoom(ctx, anna, bela)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, room.ID, again.ID)

	rooms, err := repo.ListRooms(ctx, bela)
	require.NoError(t, err)
	assert.Len(t, rooms, 1)

	for _, text := range []string{"szia", "mikor érsz rá?", "holnap 10-kor"} {
		require.NoError(t, repo.AddMessage(ctx, &database.Message{RoomID: room.ID, SenderID: anna, Content: text}))
	}

	messages, err := repo.ListMessages(ctx, room.ID, 0, 2)
	require.NoError(t, err)
	require.Len(t, messages, 2)
	assert.Equal(t, "mikor érsz rá?", messages[0].Content)
	assert.Equal(t, "holnap 10-kor", messages[1].Content)

	older, err := repo.ListMessages(ctx, room.ID, messages[0].ID, 10)
	require.NoError(t, err)
	require.Len(t, older, 1)
	assert.Equal(t, "szia", older[0].Content)

	_, err = repo.GetRoom(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAuditLogRepository_InsertAndFilter(t *testing.T) {
	db := testutil.OpenTestDB(t)
	repo := NewAuditLogRepository(db)
	ctx := context.Background()

	booked := &database.AuditLog{Action: "APPOINTMENT_BOOKED", UserID: "1", Resource: "appointment:1"}
	require.NoError(t, repo.InsertAuditLog(ctx, booked))
	assert.False(t, booked.CreatedAt.IsZero())
	require.NoError(t, repo.InsertAuditLog(ctx, &database.AuditLog{Action: "APPOINTMENT_CANCELLED", UserID: "2"}))

	logs, err := repo.GetAuditLogs(ctx, AuditFilter{Action: "APPOINTMENT_BOOKED"})
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, "appointment:1", logs[0].Resource)

	logs, err = repo.GetAuditLogs(ctx, AuditFilter{})
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, "APPOINTMENT_CANCELLED", logs[0].Action)

	since := booked.CreatedAt.Add(-time.Minute)
	logs, err = repo.GetAuditLogs(ctx, AuditFilter{StartTime: &since})
	require.NoError(t, err)
	assert.Len(t, logs, 2)

	until := booked.CreatedAt.Add(-time.Minute)
	logs, err = repo.GetAuditLogs(ctx, AuditFilter{EndTime: &until})
	require.NoError(t, err)
	assert.Empty(t, logs)
}
