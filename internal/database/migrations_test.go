package database_test

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"booking-system/internal/database"
	"booking-system/internal/testutil"
)

func TestRunMigrations_Idempotent(t *testing.T) {
	db := testutil.OpenTestDB(t)

	require.NoError(t, database.RunMigrations(db))

	for _, table := range database.Entities {
		var n int
		err := db.Get(&n, `SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?`, table)
		require.NoError(t, err)
		assert.Equal(t, 1, n, table)
	}
}

func TestRunMigrations_ReportsFailingStep(t *testing.T) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer mockDB.Close()

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS users").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS extended_users").WillReturnError(errors.New("disk full"))

	err = database.RunMigrations(sqlx.NewDb(mockDB, "sqlmock"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "migration 2 failed")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWithTx_RollsBackOnError(t *testing.T) {
	db := testutil.OpenTestDB(t)
	ctx := context.Background()
	boom := errors.New("boom")

	err := database.WithTx(ctx, db, func(tx *sqlx.Tx) error {
		if _, err := tx.Exec(`INSERT INTO users (username, email, password_hash) VALUES ('tx', 'tx@example.com', 'x')`); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	var n int
	require.NoError(t, db.Get(&n, `SELECT COUNT(*) FROM users`))
	assert.Zero(t, n)

	require.NoError(t, database.WithTx(ctx, db, func(tx *sqlx.Tx) error {
		_, err := tx.Exec(`INSERT INTO users (username, email, password_hash) VALUES ('tx', 'tx@example.com', 'x')`)
		return err
	}))
	require.NoError(t, db.Get(&n, `SELECT COUNT(*) FROM users`))
	assert.Equal(t, 1, n)
}
