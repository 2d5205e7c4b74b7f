package repositories

import (
	"context"
	"time"

	"booking-system/internal/database"

	"github.com/jmoiron/sqlx"
)

const appointmentColumns = `id, client_id, worker_id, store_id, service_name, note,
               start_time, end_time, status, created_at, updated_at`

// AppointmentFilter narrows appointment listings
type AppointmentFilter struct {
	Status string
	From   *time.Time
	To     *time.Time
	Limit  int
	Offset int
}

type AppointmentRepository struct {
	db sqlx.ExtContext
}

func NewAppointmentRepository(db sqlx.ExtContext) *AppointmentRepository {
	return &AppointmentRepository{db: db}
}

// WithTx returns a repository bound to the transaction
func (r *AppointmentRepository) WithTx(tx *sqlx.Tx) *AppointmentRepository {
	return &AppointmentRepository{db: tx}
}

func (r *AppointmentRepository) Create(ctx context.Context, a *database.Appointment) error {
	a.StartTime, a.EndTime = utc(a.StartTime), utc(a.EndTime)
	if a.Status == "" {
		a.Status = database.AppointmentBooked
	}
	a.CreatedAt = utc(time.Now())
	a.UpdatedAt = a.CreatedAt
	query := r.db.Rebind(`
        INSERT INTO appointments (client_id, worker_id, store_id, service_name, note, start_time, end_time, status, created_at, updated_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
        RETURNING id
    `)
	return r.db.QueryRowxContext(ctx, query, a.ClientID, a.WorkerID, a.StoreID, a.ServiceName, a.Note,
		a.StartTime, a.EndTime, a.Status, a.CreatedAt, a.UpdatedAt).Scan(&a.ID)
}

func (r *AppointmentRepository) GetByID(ctx context.Context, id int64) (*database.Appointment, error) {
	var a database.Appointment
	query := r.db.Rebind(`SELECT ` + appointmentColumns + ` FROM appointments WHERE id = ?`)
	if err := sqlx.GetContext(ctx, r.db, &a, query, id); err != nil {
		return nil, notFound(err)
	}
	return &a, nil
}

// ListForClient lists the appointments booked by a client
func (r *AppointmentRepository) ListForClient(ctx context.Context, clientID int64, filter AppointmentFilter) ([]database.Appointment, error) {
	return r.list(ctx, "client_id", clientID, filter)
}

// ListForWorker lists the schedule of a worker
func (r *AppointmentRepository) ListForWorker(ctx context.Context, workerID int64, filter AppointmentFilter) ([]database.Appointment, error) {
	return r.list(ctx, "worker_id", workerID, filter)
}

func (r *AppointmentRepository) list(ctx context.Context, column string, id int64, filter AppointmentFilter) ([]database.Appointment, error) {
	query := `SELECT ` + appointmentColumns + ` FROM appointments WHERE ` + column + ` = ?`
	args := []interface{}{id}

	if filter.Status != "" {
		query += " AND status = ?"
		args = append(args, filter.Status)
	}

	if filter.From != nil {
		query += " AND start_time >= ?"
		args = append(args, utc(*filter.From))
	}

	if filter.To != nil {
		query += " AND start_time < ?"
		args = append(args, utc(*filter.To))
	}

	if filter.Limit <= 0 {
		filter.Limit = 100
	}
	query += " ORDER BY start_time ASC LIMIT ? OFFSET ?"
	args = append(args, filter.Limit, filter.Offset)

	appointments := []database.Appointment{}
	err := sqlx.SelectContext(ctx, r.db, &appointments, r.db.Rebind(query), args...)
	return appointments, err
}

// BookedForWorker returns booked appointments of the worker intersecting [from, to)
func (r *AppointmentRepository) BookedForWorker(ctx context.Context, workerID int64, from, to time.Time) ([]database.Appointment, error) {
	return r.booked(ctx, "worker_id", workerID, from, to)
}

// BookedForClient returns booked appointments of the client intersecting [from, to)
func (r *AppointmentRepository) BookedForClient(ctx context.Context, clientID int64, from, to time.Time) ([]database.Appointment, error) {
	return r.booked(ctx, "client_id", clientID, from, to)
}

func (r *AppointmentRepository) booked(ctx context.Context, column string, id int64, from, to time.Time) ([]database.Appointment, error) {
	query := r.db.Rebind(`
        SELECT ` + appointmentColumns + `
        FROM appointments
        WHERE ` + column + ` = ? AND status = ? AND start_time < ? AND end_time > ?
        ORDER BY start_time ASC
    `)
	appointments := []database.Appointment{}
	err := sqlx.SelectContext(ctx, r.db, &appointments, query, id, database.AppointmentBooked, utc(to), utc(from))
	return appointments, err
}

// UpdateStatus moves a booked appointment to a final status
func (r *AppointmentRepository) UpdateStatus(ctx context.Context, id int64, status string) error {
	query := r.db.Rebind(`UPDATE appointments SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ? AND status = ?`)
	res, err := r.db.ExecContext(ctx, query, status, id, database.AppointmentBooked)
	return affected(res, err)
}

// CompleteEndedBefore marks booked appointments that ended before cutoff as completed
func (r *AppointmentRepository) CompleteEndedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	query := r.db.Rebind(`UPDATE appointments SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE status = ? AND end_time <= ?`)
	res, err := r.db.ExecContext(ctx, query, database.AppointmentCompleted, database.AppointmentBooked, utc(cutoff))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// CancelForUser cancels every future booked appointment the user takes part in
func (r *AppointmentRepository) CancelForUser(ctx context.Context, userID int64, after time.Time) (int64, error) {
	query := r.db.Rebind(`
        UPDATE appointments SET status = ?, updated_at = CURRENT_TIMESTAMP
        WHERE status = ? AND start_time > ? AND (client_id = ? OR worker_id = ?)
    `)
	res, err := r.db.ExecContext(ctx, query, database.AppointmentCancelled, database.AppointmentBooked, utc(after), userID, userID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// CountBookedAtStore counts the worker's booked appointments at the store that have not ended by the given time
func (r *AppointmentRepository) CountBookedAtStore(ctx context.Context, workerID, storeID int64, after time.Time) (int, error) {
	var n int
	query := r.db.Rebind(`
        SELECT COUNT(*) FROM appointments
        WHERE worker_id = ? AND store_id = ? AND status = ? AND end_time > ?
    `)
	err := r.db.QueryRowxContext(ctx, query, workerID, storeID, database.AppointmentBooked, utc(after)).Scan(&n)
	return n, err
}

// SharesAppointment reports whether the two users ever had an appointment together
func (r *AppointmentRepository) SharesAppointment(ctx context.Context, a, b int64) (bool, error) {
	var n int
	query := r.db.Rebind(`
        SELECT COUNT(*) FROM appointments
        WHERE (client_id = ? AND worker_id = ?) OR (client_id = ? AND worker_id = ?)
    `)
	if err := r.db.QueryRowxContext(ctx, query, a, b, b, a).Scan(&n); err != nil {
		return false, err
	}
	return n > 0, nil
}
