package repositories

import (
	"context"
	"fmt"
	"time"

	"booking-system/internal/database"

	"github.com/jmoiron/sqlx"
)

const userColumns = `id, username, email, password_hash, role, profile_pic,
               is_active, last_login, created_at, updated_at`

type UserRepository struct {
	db sqlx.ExtContext
}

func NewUserRepository(db sqlx.ExtContext) *UserRepository {
	return &UserRepository{db: db}
}

// WithTx returns a repository bound to the transaction
func (r *UserRepository) WithTx(tx *sqlx.Tx) *UserRepository {
	return &UserRepository{db: tx}
}

func (r *UserRepository) Create(ctx context.Context, user *database.User) error {
	user.CreatedAt = utc(time.Now())
	user.UpdatedAt = user.CreatedAt
	query := r.db.Rebind(`
        INSERT INTO users (username, email, password_hash, role, profile_pic, created_at, updated_at)
        VALUES (?, ?, ?, ?, ?, ?, ?)
        RETURNING id
    `)
	err := r.db.QueryRowxContext(ctx, query, user.Username, user.Email, user.PasswordHash,
		user.Role, user.ProfilePic, user.CreatedAt, user.UpdatedAt).Scan(&user.ID)
	if err != nil {
		return uniqueViolation(err)
	}
	user.IsActive = true
	return nil
}

// GetByID retrieves a user by ID, active or not
func (r *UserRepository) GetByID(ctx context.Context, userID int64) (*database.User, error) {
	var user database.User
	query := r.db.Rebind(`SELECT ` + userColumns + ` FROM users WHERE id = ?`)
	if err := sqlx.GetContext(ctx, r.db, &user, query, userID); err != nil {
		return nil, notFound(err)
	}
	return &user, nil
}

// GetByEmail retrieves an active user by email
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*database.User, error) {
	var user database.User
	query := r.db.Rebind(`SELECT ` + userColumns + ` FROM users WHERE email = ? AND is_active = ?`)
	if err := sqlx.GetContext(ctx, r.db, &user, query, email, true); err != nil {
		return nil, notFound(err)
	}
	return &user, nil
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*database.User, error) {
	var user database.User
	query := r.db.Rebind(`SELECT ` + userColumns + ` FROM users WHERE username = ? AND is_active = ?`)
	if err := sqlx.GetContext(ctx, r.db, &user, query, username, true); err != nil {
		return nil, notFound(err)
	}
	return &user, nil
}

// UpdateUser updates the mutable account fields
func (r *UserRepository) UpdateUser(ctx context.Context, user *database.User) error {
	query := r.db.Rebind(`
        UPDATE users
        SET username = ?, email = ?, profile_pic = ?, updated_at = CURRENT_TIMESTAMP
        WHERE id = ?
    `)
	res, err := r.db.ExecContext(ctx, query, user.Username, user.Email, user.ProfilePic, user.ID)
	return affected(res, uniqueViolation(err))
}

// UpdatePassword updates user password
func (r *UserRepository) UpdatePassword(ctx context.Context, userID int64, passwordHash string) error {
	query := r.db.Rebind(`UPDATE users SET password_hash = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`)
	res, err := r.db.ExecContext(ctx, query, passwordHash, userID)
	return affected(res, err)
}

func (r *UserRepository) UpdateLastLogin(ctx context.Context, userID int64) error {
	query := r.db.Rebind(`
        UPDATE users
        SET last_login = CURRENT_TIMESTAMP, updated_at = CURRENT_TIMESTAMP
        WHERE id = ?
    `)
	_, err := r.db.ExecContext(ctx, query, userID)
	return err
}

// DeactivateUser deactivates a user
func (r *UserRepository) DeactivateUser(ctx context.Context, userID int64) error {
	query := r.db.Rebind(`UPDATE users SET is_active = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ? AND is_active = ?`)
	res, err := r.db.ExecContext(ctx, query, false, userID, true)
	return affected(res, err)
}

// Lock takes a row lock on the user for the rest of the transaction.
// SQLite serialises writers on its own, so this only acts on Postgres.
func (r *UserRepository) Lock(ctx context.Context, userID int64) error {
	if r.db.DriverName() != database.DriverPostgres {
		return nil
	}
	var id int64
	err := r.db.QueryRowxContext(ctx, r.db.Rebind(`SELECT id FROM users WHERE id = ? FOR UPDATE`), userID).Scan(&id)
	return notFound(err)
}

// UpsertClientProfile creates or replaces the client profile
func (r *UserRepository) UpsertClientProfile(ctx context.Context, p *database.ExtendedUser) error {
	query := r.db.Rebind(`
        INSERT INTO extended_users (user_id, first_name, last_name, phone, city)
        VALUES (?, ?, ?, ?, ?)
        ON CONFLICT (user_id) DO UPDATE SET
            first_name = excluded.first_name,
            last_name = excluded.last_name,
            phone = excluded.phone,
            city = excluded.city,
            updated_at = CURRENT_TIMESTAMP
    `)
	if _, err := r.db.ExecContext(ctx, query, p.UserID, p.FirstName, p.LastName, p.Phone, p.City); err != nil {
		return fmt.Errorf("upsert client profile: %w", err)
	}
	return nil
}

func (r *UserRepository) GetClientProfile(ctx context.Context, userID int64) (*database.ExtendedUser, error) {
	var p database.ExtendedUser
	query := r.db.Rebind(`SELECT user_id, first_name, last_name, phone, city, updated_at FROM extended_users WHERE user_id = ?`)
	if err := sqlx.GetContext(ctx, r.db, &p, query, userID); err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

// UpsertWorkerProfile creates or replaces the worker profile
func (r *UserRepository) UpsertWorkerProfile(ctx context.Context, p *database.ExtendedHair) error {
	query := r.db.Rebind(`
        INSERT INTO extended_hair (user_id, description, specialties, experience_years)
        VALUES (?, ?, ?, ?)
        ON CONFLICT (user_id) DO UPDATE SET
            description = excluded.description,
            specialties = excluded.specialties,
            experience_years = excluded.experience_years,
            updated_at = CURRENT_TIMESTAMP
    `)
	if _, err := r.db.ExecContext(ctx, query, p.UserID, p.Description, p.Specialties, p.ExperienceYears); err != nil {
		return fmt.Errorf("upsert worker profile: %w", err)
	}
	return nil
}

func (r *UserRepository) GetWorkerProfile(ctx context.Context, userID int64) (*database.ExtendedHair, error) {
	var p database.ExtendedHair
	query := r.db.Rebind(`SELECT user_id, description, specialties, experience_years, updated_at FROM extended_hair WHERE user_id = ?`)
	if err := sqlx.GetContext(ctx, r.db, &p, query, userID); err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}
