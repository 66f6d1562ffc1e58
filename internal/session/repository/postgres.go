package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"authguard/internal/session/domain"
)

// PostgresRepository implements Repository over Postgres via sqlx.
type PostgresRepository struct {
	db *sqlx.DB
}

// NewPostgresRepository returns a session repository backed by the given db.
func NewPostgresRepository(db *sqlx.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, s *domain.Session) error {
	const q = `
		INSERT INTO sessions (id, user_id, refresh_token_hash, device_info, ip_address, user_agent, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.db.ExecContext(ctx, q,
		s.ID, s.UserID, s.RefreshTokenHash, s.DeviceInfo, s.IPAddress, s.UserAgent, s.ExpiresAt, s.CreatedAt)
	return err
}

func (r *PostgresRepository) GetByRefreshTokenHash(ctx context.Context, hash string) (*domain.Session, error) {
	const q = `
		SELECT id, user_id, refresh_token_hash, device_info, ip_address, user_agent, expires_at, created_at
		FROM sessions WHERE refresh_token_hash = $1`
	var s domain.Session
	if err := r.db.GetContext(ctx, &s, q, hash); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}

func (r *PostgresRepository) DeleteByRefreshTokenHash(ctx context.Context, hash string) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE refresh_token_hash = $1`, hash)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *PostgresRepository) DeleteAllByUser(ctx context.Context, userID string) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE user_id = $1`, userID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *PostgresRepository) ListByUser(ctx context.Context, userID string) ([]*domain.Session, error) {
	const q = `
		SELECT id, user_id, refresh_token_hash, device_info, ip_address, user_agent, expires_at, created_at
		FROM sessions WHERE user_id = $1 ORDER BY created_at DESC`
	var list []*domain.Session
	if err := r.db.SelectContext(ctx, &list, q, userID); err != nil {
		return nil, err
	}
	return list, nil
}
