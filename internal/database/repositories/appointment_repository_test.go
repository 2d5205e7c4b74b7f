package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"booking-system/internal/database"
	"booking-system/internal/testutil"
)

type bookingFixture struct {
	db                    *sqlx.DB
	client, worker, store int64
}

func newBookingFixture(t *testing.T) (*bookingFixture, func() *AppointmentRepository) {
	db := testutil.OpenTestDB(t)
	f := &bookingFixture{
		db:     db,
		client: testutil.InsertUser(t, db, "client", database.RoleClient),
		worker: testutil.InsertUser(t, db, "worker", database.RoleWorker),
	}
	f.store = testutil.InsertStore(t, db, f.worker, "Shop", 0, 0)
	return f, func() *AppointmentRepository { return NewAppointmentRepository(db) }
}

func TestAvailabilityRepository_Windows(t *testing.T) {
	db := testutil.OpenTestDB(t)
	repo := NewAvailabilityRepository(db)
	ctx := context.Background()

	worker := testutil.InsertUser(t, db, "worker", database.RoleWorker)
	store := testutil.InsertStore(t, db, worker, "Shop", 0, 0)

	w := &database.AvailabilityTime{WorkerID: worker, StoreID: store, StartTime: testutil.Hour(24), EndTime: testutil.Hour(28)}
	require.NoError(t, repo.Create(ctx, w))
	assert.False(t, w.CreatedAt.IsZero())
	testutil.InsertAvailability(t, db, worker, store, testutil.Hour(48), testutil.Hour(50))

	got, err := repo.GetByID(ctx, w.ID)
	require.NoError(t, err)
	assert.True(t, got.StartTime.Equal(testutil.Hour(24)))

	windows, err := repo.ListByWorker(ctx, worker, testutil.Hour(27), testutil.Hour(49))
	require.NoError(t, err)
	assert.Len(t, windows, 2)

	windows, err = repo.ListByWorker(ctx, worker, testutil.Hour(28), testutil.Hour(48))
	require.NoError(t, err)
	assert.Empty(t, windows, "touching windows do not intersect")

	found, err := repo.FindContaining(ctx, worker, testutil.Hour(25), testutil.Hour(28))
	require.NoError(t, err)
	assert.Equal(t, w.ID, found.ID)

	_, err = repo.FindContaining(ctx, worker, testutil.Hour(27), testutil.Hour(29))
	assert.ErrorIs(t, err, ErrNotFound)

	n, err := repo.DeleteEndedBefore(ctx, testutil.Hour(30))
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	assert.ErrorIs(t, repo.Delete(ctx, w.ID), ErrNotFound)
}

func TestAppointmentRepository_Lifecycle(t *testing.T) {
	f, newRepo := newBookingFixture(t)
	repo := newRepo()
	ctx := context.Background()

	a := &database.Appointment{ClientID: f.client, WorkerID: f.worker, StoreID: f.store,
		ServiceName: "haircut", StartTime: testutil.Hour(24), EndTime: testutil.Hour(25)}
	require.NoError(t, repo.Create(ctx, a))
	assert.Equal(t, database.AppointmentBooked, a.Status)
	assert.False(t, a.CreatedAt.IsZero())

	stored, err := repo.GetByID(ctx, a.ID)
	require.NoError(t, err)
	assert.True(t, a.CreatedAt.Equal(stored.CreatedAt))
	assert.True(t, a.UpdatedAt.Equal(stored.UpdatedAt))

	overlapping, err := repo.BookedForWorker(ctx, f.worker, testutil.Hour(24).Add(30*time.Minute), testutil.Hour(26))
	require.NoError(t, err)
	require.Len(t, overlapping, 1)

	overlapping, err = repo.BookedForClient(ctx, f.client, testutil.Hour(25), testutil.Hour(26))
	require.NoError(t, err)
	assert.Empty(t, overlapping)

	forClient, err := repo.ListForClient(ctx, f.client, AppointmentFilter{})
	require.NoError(t, err)
	require.Len(t, forClient, 1)
	assert.Equal(t, "haircut", forClient[0].ServiceName)

	forWorker, err := repo.ListForWorker(ctx, f.worker, AppointmentFilter{Status: database.AppointmentCancelled})
	require.NoError(t, err)
	assert.Empty(t, forWorker)

	require.NoError(t, repo.UpdateStatus(ctx, a.ID, database.AppointmentCancelled))
	assert.ErrorIs(t, repo.UpdateStatus(ctx, a.ID, database.AppointmentCancelled), ErrNotFound)

	overlapping, err = repo.BookedForWorker(ctx, f.worker, testutil.Hour(24), testutil.Hour(25))
	require.NoError(t, err)
	assert.Empty(t, overlapping, "cancelled appointments free the slot")

	shared, err := repo.SharesAppointment(ctx, f.worker, f.client)
	require.NoError(t, err)
	assert.True(t, shared)
}

func TestAppointmentRepository_CompleteEndedBefore(t *testing.T) {
	f, newRepo := newBookingFixture(t)
	repo := newRepo()
	ctx := context.Background()

	past := &database.Appointment{ClientID: f.client, WorkerID: f.worker, StoreID: f.store,
		StartTime: testutil.Hour(-3), EndTime: testutil.Hour(-2)}
	future := &database.Appointment{ClientID: f.client, WorkerID: f.worker, StoreID: f.store,
		StartTime: testutil.Hour(3), EndTime: testutil.Hour(4)}
	require.NoError(t, repo.Create(ctx, past))
	require.NoError(t, repo.Create(ctx, future))

	n, err := repo.CompleteEndedBefore(ctx, testutil.Hour(0))
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	got, err := repo.GetByID(ctx, past.ID)
	require.NoError(t, err)
	assert.Equal(t, database.AppointmentCompleted, got.Status)

	n, err = repo.CancelForUser(ctx, f.client, testutil.Hour(0))
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	got, err = repo.GetByID(ctx, future.ID)
	require.NoError(t, err)
	assert.Equal(t, database.AppointmentCancelled, got.Status)
}

func TestStoreScopedCleanup(t *testing.T) {
	f, newRepo := newBookingFixture(t)
	repo := newRepo()
	ctx := context.Background()
	db := f.db

	availability := NewAvailabilityRepository(db)
	testutil.InsertAvailability(t, db, f.worker, f.store, testutil.Hour(-4), testutil.Hour(-2))
	testutil.InsertAvailability(t, db, f.worker, f.store, testutil.Hour(-1), testutil.Hour(2))
	testutil.InsertAvailability(t, db, f.worker, f.store, testutil.Hour(24), testutil.Hour(28))

	other := testutil.InsertUser(t, db, "other", database.RoleWorker)
	otherStore := testutil.InsertStore(t, db, other, "Other", 0, 0)
	testutil.InsertAvailability(t, db, other, otherStore, testutil.Hour(24), testutil.Hour(28))

	past := &database.Appointment{ClientID: f.client, WorkerID: f.worker, StoreID: f.store,
		StartTime: testutil.Hour(-4), EndTime: testutil.Hour(-3)}
	upcoming := &database.Appointment{ClientID: f.client, WorkerID: f.worker, StoreID: f.store,
		StartTime: testutil.Hour(25), EndTime: testutil.Hour(26)}
	require.NoError(t, repo.Create(ctx, past))
	require.NoError(t, repo.Create(ctx, upcoming))

	count, err := repo.CountBookedAtStore(ctx, f.worker, f.store, testutil.Hour(0))
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	count, err = repo.CountBookedAtStore(ctx, f.worker, otherStore, testutil.Hour(0))
	require.NoError(t, err)
	assert.Zero(t, count)

	require.NoError(t, repo.UpdateStatus(ctx, upcoming.ID, database.AppointmentCancelled))
	count, err = repo.CountBookedAtStore(ctx, f.worker, f.store, testutil.Hour(0))
	require.NoError(t, err)
	assert.Zero(t, count)

	removed, err := availability.DeleteOpenAtStore(ctx, f.worker, f.store, testutil.Hour(0))
	require.NoError(t, err)
	assert.EqualValues(t, 2, removed, "ended windows stay as history")

	left, err := availability.ListByWorker(ctx, f.worker, testutil.Hour(-10), testutil.Hour(100))
	require.NoError(t, err)
	require.Len(t, left, 1)
	assert.True(t, left[0].EndTime.Equal(testutil.Hour(-2)))

	kept, err := availability.ListByWorker(ctx, other, testutil.Hour(0), testutil.Hour(100))
	require.NoError(t, err)
	assert.Len(t, kept, 1)
}

func TestAvailabilityRepository_FindContainingNeedsMembership(t *testing.T) {
	f, _ := newBookingFixture(t)
	db := f.db
	ctx := context.Background()

	availability := NewAvailabilityRepository(db)
	testutil.InsertAvailability(t, db, f.worker, f.store, testutil.Hour(24), testutil.Hour(28))

	_, err := availability.FindContaining(ctx, f.worker, testutil.Hour(25), testutil.Hour(26))
	require.NoError(t, err)

	require.NoError(t, NewStoreRepository(db).RemoveWorker(ctx, f.store, f.worker))
	_, err = availability.FindContaining(ctx, f.worker, testutil.Hour(25), testutil.Hour(26))
	assert.ErrorIs(t, err, ErrNotFound)
}
