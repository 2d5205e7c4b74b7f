package repositories

import (
	"context"
	"time"

	"booking-system/internal/database"

	"github.com/jmoiron/sqlx"
)

// AuditFilter narrows audit log listings
type AuditFilter struct {
	Action    string
	UserID    string
	StartTime *time.Time
	EndTime   *time.Time
	Limit     int
	Offset    int
}

type AuditLogRepository struct {
	db sqlx.ExtContext
}

func NewAuditLogRepository(db sqlx.ExtContext) *AuditLogRepository {
	return &AuditLogRepository{db: db}
}

// WithTx returns a repository bound to the transaction
func (r *AuditLogRepository) WithTx(tx *sqlx.Tx) *AuditLogRepository {
	return &AuditLogRepository{db: tx}
}

// InsertAuditLog inserts a new audit log entry
func (r *AuditLogRepository) InsertAuditLog(ctx context.Context, log *database.AuditLog) error {
	log.CreatedAt = utc(time.Now())
	query := r.db.Rebind(`
        INSERT INTO audit_logs (action, user_id, resource, details, ip_address, created_at)
        VALUES (?, ?, ?, ?, ?, ?)
        RETURNING id
    `)
	return r.db.QueryRowxContext(ctx, query, log.Action, log.UserID, log.Resource,
		log.Details, log.IPAddress, log.CreatedAt).Scan(&log.ID)
}

// GetAuditLogs retrieves audit logs with pagination and filtering
func (r *AuditLogRepository) GetAuditLogs(ctx context.Context, filter AuditFilter) ([]database.AuditLog, error) {
	query := `
        SELECT id, action, user_id, resource, details, ip_address, created_at
        FROM audit_logs
        WHERE 1=1
    `
	args := []interface{}{}

	if filter.Action != "" {
		query += " AND action = ?"
		args = append(args, filter.Action)
	}

	if filter.UserID != "" {
		query += " AND user_id = ?"
		args = append(args, filter.UserID)
	}

	if filter.StartTime != nil {
		query += " AND created_at >= ?"
		args = append(args, utc(*filter.StartTime))
	}

	if filter.EndTime != nil {
		query += " AND created_at <= ?"
		args = append(args, utc(*filter.EndTime))
	}

	if filter.Limit <= 0 {
		filter.Limit = 50
	}
	query += " ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?"
	args = append(args, filter.Limit, filter.Offset)

	logs := []database.AuditLog{}
	err := sqlx.SelectContext(ctx, r.db, &logs, r.db.Rebind(query), args...)
	return logs, err
}
