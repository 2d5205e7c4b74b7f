package repositories

import (
	"context"
	"time"

	"booking-system/internal/database"

	"github.com/jmoiron/sqlx"
)

const storeColumns = `id, owner_id, name, description, address, city, phone, email,
               latitude, longitude, created_at, updated_at`

// StoreFilter narrows store listings
type StoreFilter struct {
	City   string
	Query  string
	Limit  int
	Offset int
}

type StoreRepository struct {
	db sqlx.ExtContext
}

func NewStoreRepository(db sqlx.ExtContext) *StoreRepository {
	return &StoreRepository{db: db}
}

// WithTx returns a repository bound to the transaction
func (r *StoreRepository) WithTx(tx *sqlx.Tx) *StoreRepository {
	return &StoreRepository{db: tx}
}

// Create inserts the store; the caller registers the owner membership
func (r *StoreRepository) Create(ctx context.Context, store *database.Store) error {
	store.CreatedAt = utc(time.Now())
	store.UpdatedAt = store.CreatedAt
	query := r.db.Rebind(`
        INSERT INTO stores (owner_id, name, description, address, city, phone, email, latitude, longitude, created_at, updated_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
        RETURNING id
    `)
	return r.db.QueryRowxContext(ctx, query, store.OwnerID, store.Name, store.Description,
		store.Address, store.City, store.Phone, store.Email, store.Latitude, store.Longitude,
		store.CreatedAt, store.UpdatedAt).Scan(&store.ID)
}

func (r *StoreRepository) GetByID(ctx context.Context, storeID int64) (*database.Store, error) {
	var store database.Store
	query := r.db.Rebind(`SELECT ` + storeColumns + ` FROM stores WHERE id = ?`)
	if err := sqlx.GetContext(ctx, r.db, &store, query, storeID); err != nil {
		return nil, notFound(err)
	}
	return &store, nil
}

// GetByOwner returns the store owned by the user
func (r *StoreRepository) GetByOwner(ctx context.Context, ownerID int64) (*database.Store, error) {
	var store database.Store
	query := r.db.Rebind(`SELECT ` + storeColumns + ` FROM stores WHERE owner_id = ? ORDER BY id LIMIT 1`)
	if err := sqlx.GetContext(ctx, r.db, &store, query, ownerID); err != nil {
		return nil, notFound(err)
	}
	return &store, nil
}

func (r *StoreRepository) Update(ctx context.Context, store *database.Store) error {
	query := r.db.Rebind(`
        UPDATE stores
        SET name = ?, description = ?, address = ?, city = ?, phone = ?, email = ?,
            latitude = ?, longitude = ?, updated_at = CURRENT_TIMESTAMP
        WHERE id = ?
    `)
	res, err := r.db.ExecContext(ctx, query, store.Name, store.Description, store.Address, store.City,
		store.Phone, store.Email, store.Latitude, store.Longitude, store.ID)
	return affected(res, err)
}

// List retrieves stores with pagination and filtering
func (r *StoreRepository) List(ctx context.Context, filter StoreFilter) ([]database.Store, error) {
	query := `SELECT ` + storeColumns + ` FROM stores WHERE 1=1`
	args := []interface{}{}

	if filter.City != "" {
		query += " AND LOWER(city) = LOWER(?)"
		args = append(args, filter.City)
	}

	if filter.Query != "" {
		query += " AND LOWER(name) LIKE LOWER(?)"
		args = append(args, "%"+filter.Query+"%")
	}

	if filter.Limit <= 0 {
		filter.Limit = 50
	}
	query += " ORDER BY name ASC, id ASC LIMIT ? OFFSET ?"
	args = append(args, filter.Limit, filter.Offset)

	stores := []database.Store{}
	if err := sqlx.SelectContext(ctx, r.db, &stores, r.db.Rebind(query), args...); err != nil {
		return nil, err
	}
	return stores, nil
}

// ListAll returns every store, used for distance ranking
func (r *StoreRepository) ListAll(ctx context.Context) ([]database.Store, error) {
	stores := []database.Store{}
	err := sqlx.SelectContext(ctx, r.db, &stores, `SELECT `+storeColumns+` FROM stores ORDER BY id`)
	return stores, err
}

func (r *StoreRepository) AddPicture(ctx context.Context, picture *database.StorePicture) error {
	picture.CreatedAt = utc(time.Now())
	query := r.db.Rebind(`INSERT INTO store_pictures (store_id, url, created_at) VALUES (?, ?, ?) RETURNING id`)
	return r.db.QueryRowxContext(ctx, query, picture.StoreID, picture.URL, picture.CreatedAt).Scan(&picture.ID)
}

func (r *StoreRepository) DeletePicture(ctx context.Context, storeID, pictureID int64) error {
	query := r.db.Rebind(`DELETE FROM store_pictures WHERE id = ? AND store_id = ?`)
	res, err := r.db.ExecContext(ctx, query, pictureID, storeID)
	return affected(res, err)
}

func (r *StoreRepository) ListPictures(ctx context.Context, storeID int64) ([]database.StorePicture, error) {
	pictures := []database.StorePicture{}
	query := r.db.Rebind(`SELECT id, store_id, url, created_at FROM store_pictures WHERE store_id = ? ORDER BY id`)
	err := sqlx.SelectContext(ctx, r.db, &pictures, query, storeID)
	return pictures, err
}

// AddWorker connects a worker to a store; a worker belongs to at most one store
func (r *StoreRepository) AddWorker(ctx context.Context, storeID, workerID int64, role string) error {
	query := r.db.Rebind(`INSERT INTO store_workers (store_id, worker_id, role) VALUES (?, ?, ?)`)
	_, err := r.db.ExecContext(ctx, query, storeID, workerID, role)
	return uniqueViolation(err)
}

func (r *StoreRepository) RemoveWorker(ctx context.Context, storeID, workerID int64) error {
	query := r.db.Rebind(`DELETE FROM store_workers WHERE store_id = ? AND worker_id = ?`)
	res, err := r.db.ExecContext(ctx, query, storeID, workerID)
	return affected(res, err)
}

// GetMembership returns the store connection of a worker
func (r *StoreRepository) GetMembership(ctx context.Context, workerID int64) (*database.StoreWorker, error) {
	var m database.StoreWorker
	query := r.db.Rebind(`SELECT id, store_id, worker_id, role, joined_at FROM store_workers WHERE worker_id = ?`)
	if err := sqlx.GetContext(ctx, r.db, &m, query, workerID); err != nil {
		return nil, notFound(err)
	}
	return &m, nil
}

// ListWorkers returns the active workers of a store with their profiles
func (r *StoreRepository) ListWorkers(ctx context.Context, storeID int64) ([]database.WorkerSummary, error) {
	query := r.db.Rebind(`
        SELECT u.id AS user_id, u.username, u.profile_pic, sw.role AS store_role,
               COALESCE(h.description, '') AS description,
               COALESCE(h.specialties, '') AS specialties,
               COALESCE(h.experience_years, 0) AS experience_years
        FROM store_workers sw
        JOIN users u ON u.id = sw.worker_id
        LEFT JOIN extended_hair h ON h.user_id = u.id
        WHERE sw.store_id = ? AND u.is_active = ?
        ORDER BY sw.joined_at ASC, u.id ASC
    `)
	workers := []database.WorkerSummary{}
	err := sqlx.SelectContext(ctx, r.db, &workers, query, storeID, true)
	return workers, err
}
