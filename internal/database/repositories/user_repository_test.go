package repositories

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"booking-system/internal/database"
	"booking-system/internal/testutil"
)

func TestUserRepository_CreateAndLookup(t *testing.T) {
	db := testutil.OpenTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	user := &database.User{Username: "anna", Email: "anna@example.com", PasswordHash: "hash", Role: database.RoleClient}
	require.NoError(t, repo.Create(ctx, user))
	assert.NotZero(t, user.ID)
	assert.True(t, user.IsActive)
	assert.False(t, user.CreatedAt.IsZero())
	assert.Equal(t, user.CreatedAt, user.UpdatedAt)

	byEmail, err := repo.GetByEmail(ctx, "anna@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byEmail.ID)
	assert.True(t, user.CreatedAt.Equal(byEmail.CreatedAt))
	assert.Equal(t, database.RoleClient, byEmail.Role)

	byName, err := repo.GetByUsername(ctx, "anna")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byName.ID)

	_, err = repo.GetByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUserRepository_CreateDuplicate(t *testing.T) {
	db := testutil.OpenTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &database.User{Username: "bela", Email: "bela@example.com", PasswordHash: "x", Role: database.RoleWorker}))

	err := repo.Create(ctx, &database.User{Username: "bela2", Email: "bela@example.com", PasswordHash: "x", Role: database.RoleWorker})
	assert.ErrorIs(t, err, ErrDuplicate)
}

func TestUserRepository_UpdateAndDeactivate(t *testing.T) {
	db := testutil.OpenTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	id := testutil.InsertUser(t, db, "csaba", database.RoleClient)
	user, err := repo.GetByID(ctx, id)
	require.NoError(t, err)

	user.Username = "csaba_new"
	user.ProfilePic = "https://img.example.com/c.png"
	require.NoError(t, repo.UpdateUser(ctx, user))

	got, err := repo.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "csaba_new", got.Username)
	assert.Equal(t, "https://img.example.com/c.png", got.ProfilePic)

	require.NoError(t, repo.UpdateLastLogin(ctx, id))
	got, err = repo.GetByID(ctx, id)
	require.NoError(t, err)
	assert.NotNil(t, got.LastLogin)

	require.NoError(t, repo.DeactivateUser(ctx, id))
	assert.ErrorIs(t, repo.DeactivateUser(ctx, id), ErrNotFound)

	_, err = repo.GetByUsername(ctx, "csaba_new")
	assert.ErrorIs(t, err, ErrNotFound)

	// deactivated accounts remain addressable by id
	got, err = repo.GetByID(ctx, id)
	require.NoError(t, err)
	assert.False(t, got.IsActive)
}

func TestUserRepository_Profiles(t *testing.T) {
	db := testutil.OpenTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	clientID := testutil.InsertUser(t, db, "dora", database.RoleClient)
	workerID := testutil.InsertUser(t, db, "elek", database.RoleWorker)

	_, err := repo.GetClientProfile(ctx, clientID)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, repo.UpsertClientProfile(ctx, &database.ExtendedUser{UserID: clientID, FirstName: "Dora", City: "Szeged"}))
	require.NoError(t, repo.UpsertClientProfile(ctx, &database.ExtendedUser{UserID: clientID, FirstName: "Dora", City: "Pecs"}))

	cp, err := repo.GetClientProfile(ctx, clientID)
	require.NoError(t, err)
	assert.Equal(t, "Pecs", cp.City)

	require.NoError(t, repo.UpsertWorkerProfile(ctx, &database.ExtendedHair{UserID: workerID, Description: "fade specialist", ExperienceYears: 7}))
	wp, err := repo.GetWorkerProfile(ctx, workerID)
	require.NoError(t, err)
	assert.Equal(t, 7, wp.ExperienceYears)
	assert.Equal(t, "fade specialist", wp.Description)
}

func TestUserRepository_LockIsNoopOnSQLite(t *testing.T) {
	db := testutil.OpenTestDB(t)
	repo := NewUserRepository(db)

	assert.NoError(t, repo.Lock(context.Background(), 12345))
}
