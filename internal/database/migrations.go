package database

import (
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
)

// Entities lists every table the application registers, in creation order
var Entities = []string{
	"users",
	"extended_users",
	"extended_hair",
	"stores",
	"store_pictures",
	"store_workers",
	"friendships",
	"chat_rooms",
	"messages",
	"availability_times",
	"appointments",
	"audit_logs",
}

// RunMigrations executes database migrations
func RunMigrations(db *sqlx.DB) error {
	migrations := []string{
		createUsersTable,
		createExtendedUsersTable,
		createExtendedHairTable,
		createStoresTable,
		createStorePicturesTable,
		createStoreWorkersTable,
		createFriendshipsTable,
		createChatRoomsTable,
		createMessagesTable,
		createAvailabilityTimesTable,
		createAppointmentsTable,
		createAuditLogsTable,
	}
	migrations = append(migrations, createIndices...)

	for i, migration := range migrations {
		if _, err := db.Exec(dialect(db.DriverName(), migration)); err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}

	return nil
}

// dialect expands the {{id}} and {{ts}} column placeholders for the driver
func dialect(driver, stmt string) string {
	id := "INTEGER PRIMARY KEY AUTOINCREMENT"
	ts := "TIMESTAMP"
	if driver == DriverPostgres {
		id = "BIGSERIAL PRIMARY KEY"
		ts = "TIMESTAMPTZ"
	}
	return strings.NewReplacer("{{id}}", id, "{{ts}}", ts).Replace(stmt)
}

const createUsersTable = `
CREATE TABLE IF NOT EXISTS users (
    id {{id}},
    username VARCHAR(50) UNIQUE NOT NULL,
    email VARCHAR(255) UNIQUE NOT NULL,
    password_hash VARCHAR(255) NOT NULL,
    role VARCHAR(20) NOT NULL DEFAULT 'client',
    profile_pic TEXT NOT NULL DEFAULT '',
    is_active BOOLEAN NOT NULL DEFAULT TRUE,
    last_login {{ts}},
    created_at {{ts}} NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at {{ts}} NOT NULL DEFAULT CURRENT_TIMESTAMP
);`

const createExtendedUsersTable = `
CREATE TABLE IF NOT EXISTS extended_users (
    user_id BIGINT PRIMARY KEY REFERENCES users(id) ON DELETE CASCADE,
    first_name VARCHAR(100) NOT NULL DEFAULT '',
    last_name VARCHAR(100) NOT NULL DEFAULT '',
    phone VARCHAR(30) NOT NULL DEFAULT '',
    city VARCHAR(100) NOT NULL DEFAULT '',
    updated_at {{ts}} NOT NULL DEFAULT CURRENT_TIMESTAMP
);`

const createExtendedHairTable = `
CREATE TABLE IF NOT EXISTS extended_hair (
    user_id BIGINT PRIMARY KEY REFERENCES users(id) ON DELETE CASCADE,
    description TEXT NOT NULL DEFAULT '',
    specialties TEXT NOT NULL DEFAULT '',
    experience_years INTEGER NOT NULL DEFAULT 0,
    updated_at {{ts}} NOT NULL DEFAULT CURRENT_TIMESTAMP
);`

const createStoresTable = `
CREATE TABLE IF NOT EXISTS stores (
    id {{id}},
    owner_id BIGINT NOT NULL REFERENCES users(id),
    name VARCHAR(255) NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    address VARCHAR(255) NOT NULL DEFAULT '',
    city VARCHAR(100) NOT NULL DEFAULT '',
    phone VARCHAR(30) NOT NULL DEFAULT '',
    email VARCHAR(255) NOT NULL DEFAULT '',
    latitude DOUBLE PRECISION NOT NULL DEFAULT 0,
    longitude DOUBLE PRECISION NOT NULL DEFAULT 0,
    created_at {{ts}} NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at {{ts}} NOT NULL DEFAULT CURRENT_TIMESTAMP
);`

const createStorePicturesTable = `
CREATE TABLE IF NOT EXISTS store_pictures (
    id {{id}},
    store_id BIGINT NOT NULL REFERENCES stores(id) ON DELETE CASCADE,
    url TEXT NOT NULL,
    created_at {{ts}} NOT NULL DEFAULT CURRENT_TIMESTAMP
);`

const createStoreWorkersTable = `
CREATE TABLE IF NOT EXISTS store_workers (
    id {{id}},
    store_id BIGINT NOT NULL REFERENCES stores(id) ON DELETE CASCADE,
    worker_id BIGINT NOT NULL UNIQUE REFERENCES users(id),
    role VARCHAR(20) NOT NULL DEFAULT 'worker',
    joined_at {{ts}} NOT NULL DEFAULT CURRENT_TIMESTAMP
);`

const createFriendshipsTable = `
CREATE TABLE IF NOT EXISTS friendships (
    id {{id}},
    requester_id BIGINT NOT NULL REFERENCES users(id),
    addressee_id BIGINT NOT NULL REFERENCES users(id),
    status VARCHAR(20) NOT NULL DEFAULT 'pending',
    created_at {{ts}} NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at {{ts}} NOT NULL DEFAULT CURRENT_TIMESTAMP,
    UNIQUE (requester_id, addressee_id)
);`

const createChatRoomsTable = `
CREATE TABLE IF NOT EXISTS chat_rooms (
    id VARCHAR(36) PRIMARY KEY,
    user1_id BIGINT NOT NULL REFERENCES users(id),
    user2_id BIGINT NOT NULL REFERENCES users(id),
    created_at {{ts}} NOT NULL DEFAULT CURRENT_TIMESTAMP,
    UNIQUE (user1_id, user2_id)
);`

const createMessagesTable = `
CREATE TABLE IF NOT EXISTS messages (
    id {{id}},
    room_id VARCHAR(36) NOT NULL REFERENCES chat_rooms(id) ON DELETE CASCADE,
    sender_id BIGINT NOT NULL REFERENCES users(id),
    content TEXT NOT NULL,
    created_at {{ts}} NOT NULL DEFAULT CURRENT_TIMESTAMP
);`

const createAvailabilityTimesTable = `
CREATE TABLE IF NOT EXISTS availability_times (
    id {{id}},
    worker_id BIGINT NOT NULL REFERENCES users(id),
    store_id BIGINT NOT NULL REFERENCES stores(id) ON DELETE CASCADE,
    start_time {{ts}} NOT NULL,
    end_time {{ts}} NOT NULL,
    created_at {{ts}} NOT NULL DEFAULT CURRENT_TIMESTAMP
);`

const createAppointmentsTable = `
CREATE TABLE IF NOT EXISTS appointments (
    id {{id}},
    client_id BIGINT NOT NULL REFERENCES users(id),
    worker_id BIGINT NOT NULL REFERENCES users(id),
    store_id BIGINT NOT NULL REFERENCES stores(id),
    service_name VARCHAR(255) NOT NULL DEFAULT '',
    note TEXT NOT NULL DEFAULT '',
    start_time {{ts}} NOT NULL,
    end_time {{ts}} NOT NULL,
    status VARCHAR(20) NOT NULL DEFAULT 'booked',
    created_at {{ts}} NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at {{ts}} NOT NULL DEFAULT CURRENT_TIMESTAMP
);`

const createAuditLogsTable = `
CREATE TABLE IF NOT EXISTS audit_logs (
    id {{id}},
    action VARCHAR(100) NOT NULL,
    user_id VARCHAR(255) NOT NULL DEFAULT '',
    resource VARCHAR(255) NOT NULL DEFAULT '',
    details TEXT NOT NULL DEFAULT '',
    ip_address VARCHAR(45) NOT NULL DEFAULT '',
    created_at {{ts}} NOT NULL DEFAULT CURRENT_TIMESTAMP
);`

var createIndices = []string{
	`CREATE INDEX IF NOT EXISTS idx_stores_city ON stores(city)`,
	`CREATE INDEX IF NOT EXISTS idx_store_pictures_store ON store_pictures(store_id)`,
	`CREATE INDEX IF NOT EXISTS idx_friendships_addressee ON friendships(addressee_id, status)`,
	`CREATE INDEX IF NOT EXISTS idx_messages_room ON messages(room_id, created_at)`,
	`CREATE INDEX IF NOT EXISTS idx_availability_worker ON availability_times(worker_id, start_time)`,
	`CREATE INDEX IF NOT EXISTS idx_appointments_worker ON appointments(worker_id, status, start_time)`,
	`CREATE INDEX IF NOT EXISTS idx_appointments_client ON appointments(client_id, status, start_time)`,
	`CREATE INDEX IF NOT EXISTS idx_audit_logs_action ON audit_logs(action, created_at)`,
}
