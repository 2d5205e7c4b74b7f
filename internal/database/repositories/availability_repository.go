package repositories

import (
	"context"
	"time"

	"booking-system/internal/database"

	"github.com/jmoiron/sqlx"
)

const availabilityColumns = `id, worker_id, store_id, start_time, end_time, created_at`

type AvailabilityRepository struct {
	db sqlx.ExtContext
}

func NewAvailabilityRepository(db sqlx.ExtContext) *AvailabilityRepository {
	return &AvailabilityRepository{db: db}
}

// WithTx returns a repository bound to the transaction
func (r *AvailabilityRepository) WithTx(tx *sqlx.Tx) *AvailabilityRepository {
	return &AvailabilityRepository{db: tx}
}

func (r *AvailabilityRepository) Create(ctx context.Context, a *database.AvailabilityTime) error {
	a.StartTime, a.EndTime = utc(a.StartTime), utc(a.EndTime)
	a.CreatedAt = utc(time.Now())
	query := r.db.Rebind(`
        INSERT INTO availability_times (worker_id, store_id, start_time, end_time, created_at)
        VALUES (?, ?, ?, ?, ?)
        RETURNING id
    `)
	return r.db.QueryRowxContext(ctx, query, a.WorkerID, a.StoreID, a.StartTime, a.EndTime, a.CreatedAt).Scan(&a.ID)
}

func (r *AvailabilityRepository) GetByID(ctx context.Context, id int64) (*database.AvailabilityTime, error) {
	var a database.AvailabilityTime
	query := r.db.Rebind(`SELECT ` + availabilityColumns + ` FROM availability_times WHERE id = ?`)
	if err := sqlx.GetContext(ctx, r.db, &a, query, id); err != nil {
		return nil, notFound(err)
	}
	return &a, nil
}

func (r *AvailabilityRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM availability_times WHERE id = ?`), id)
	return affected(res, err)
}

// ListByWorker returns windows of the worker that intersect [from, to)
func (r *AvailabilityRepository) ListByWorker(ctx context.Context, workerID int64, from, to time.Time) ([]database.AvailabilityTime, error) {
	query := r.db.Rebind(`
        SELECT ` + availabilityColumns + `
        FROM availability_times
        WHERE worker_id = ? AND start_time < ? AND end_time > ?
        ORDER BY start_time ASC
    `)
	windows := []database.AvailabilityTime{}
	err := sqlx.SelectContext(ctx, r.db, &windows, query, workerID, utc(to), utc(from))
	return windows, err
}

// FindContaining returns a window of the worker at their current store that fully contains [start, end)
func (r *AvailabilityRepository) FindContaining(ctx context.Context, workerID int64, start, end time.Time) (*database.AvailabilityTime, error) {
	var a database.AvailabilityTime
	query := r.db.Rebind(`
        SELECT ` + availabilityColumns + `
        FROM availability_times
        WHERE worker_id = ? AND start_time <= ? AND end_time >= ?
          AND store_id IN (SELECT store_id FROM store_workers WHERE worker_id = ?)
        ORDER BY start_time ASC
        LIMIT 1
    `)
	if err := sqlx.GetContext(ctx, r.db, &a, query, workerID, utc(start), utc(end), workerID); err != nil {
		return nil, notFound(err)
	}
	return &a, nil
}

// DeleteOpenAtStore removes the worker's windows at the store that end after the given time
func (r *AvailabilityRepository) DeleteOpenAtStore(ctx context.Context, workerID, storeID int64, after time.Time) (int64, error) {
	query := r.db.Rebind(`DELETE FROM availability_times WHERE worker_id = ? AND store_id = ? AND end_time > ?`)
	res, err := r.db.ExecContext(ctx, query, workerID, storeID, utc(after))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// DeleteEndedBefore prunes windows that ended before cutoff
func (r *AvailabilityRepository) DeleteEndedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM availability_times WHERE end_time < ?`), utc(cutoff))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
