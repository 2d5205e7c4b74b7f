package testutil

import (
	"fmt"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"

	"booking-system/internal/database"
	"booking-system/pkg/config"
)

var dbSeq atomic.Int64

// OpenTestDB opens a private in-memory SQLite database with all migrations applied.
// The database is closed through t.Cleanup.
func OpenTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	path := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", name, dbSeq.Add(1))

	db, err := database.NewConnection(&config.DatabaseConfig{Type: "sqlite", Path: path})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := database.RunMigrations(db); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return db
}

// InsertUser inserts an active user with a throwaway password hash and returns its id.
func InsertUser(t *testing.T, db *sqlx.DB, username, role string) int64 {
	t.Helper()
	var id int64
	err := db.QueryRowx(
		db.Rebind(`INSERT INTO users (username, email, password_hash, role) VALUES (?, ?, ?, ?) RETURNING id`),
		username, username+"@example.com", "x", role,
	).Scan(&id)
	if err != nil {
		t.Fatalf("insert user %s: %v", username, err)
	}
	return id
}

// InsertStore inserts a store owned by ownerID, registers the owner membership and returns the store id.
func InsertStore(t *testing.T, db *sqlx.DB, ownerID int64, name string, lat, lng float64) int64 {
	t.Helper()
	var id int64
	err := db.QueryRowx(
		db.Rebind(`INSERT INTO stores (owner_id, name, city, latitude, longitude) VALUES (?, ?, 'Budapest', ?, ?) RETURNING id`),
		ownerID, name, lat, lng,
	).Scan(&id)
	if err != nil {
		t.Fatalf("insert store %s: %v", name, err)
	}
	if _, err := db.Exec(db.Rebind(`INSERT INTO store_workers (store_id, worker_id, role) VALUES (?, ?, 'owner')`), id, ownerID); err != nil {
		t.Fatalf("insert store owner: %v", err)
	}
	return id
}

// InsertAvailability inserts an availability window and returns its id.
func InsertAvailability(t *testing.T, db *sqlx.DB, workerID, storeID int64, start, end time.Time) int64 {
	t.Helper()
	var id int64
	err := db.QueryRowx(
		db.Rebind(`INSERT INTO availability_times (worker_id, store_id, start_time, end_time) VALUES (?, ?, ?, ?) RETURNING id`),
		workerID, storeID, start.UTC(), end.UTC(),
	).Scan(&id)
	if err != nil {
		t.Fatalf("insert availability: %v", err)
	}
	return id
}

// Hour returns a UTC time the given number of whole hours from now, truncated to the hour.
func Hour(offset int) time.Time {
	return time.Now().UTC().Truncate(time.Hour).Add(time.Duration(offset) * time.Hour)
}
