package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"authguard/internal/audit/domain"
)

// PostgresRepository implements Repository over Postgres via sqlx.
type PostgresRepository struct {
	db *sqlx.DB
}

// NewPostgresRepository returns an audit repository backed by the given db.
func NewPostgresRepository(db *sqlx.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, a *domain.AuditLog) error {
	const q = `
		INSERT INTO audit_logs (id, user_id, action, ip, metadata, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.db.ExecContext(ctx, q, a.ID, a.UserID, a.Action, a.IP, a.Metadata, a.CreatedAt)
	return err
}

func (r *PostgresRepository) ListByUser(ctx context.Context, userID string, limit, offset int32) ([]*domain.AuditLog, error) {
	const q = `
		SELECT id, user_id, action, ip, metadata, created_at
		FROM audit_logs WHERE user_id = $1
		ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	var list []*domain.AuditLog
	if err := r.db.SelectContext(ctx, &list, q, userID, limit, offset); err != nil {
		return nil, err
	}
	return list, nil
}
