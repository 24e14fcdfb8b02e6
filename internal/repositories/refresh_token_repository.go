package repositories

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"youapp-backend/internal/models"
)

var ErrTokenNotFound = errors.New("refresh token not found")

// RefreshTokenRepository abstracts the refresh-token collection.
type RefreshTokenRepository interface {
	Create(ctx context.Context, userID int64, expiresAt time.Time) (models.RefreshToken, error)
	GetByID(ctx context.Context, id int64) (models.RefreshToken, error)
}

// RefreshTokenRepo is a sqlx implementation of RefreshTokenRepository.
type RefreshTokenRepo struct {
	db *sqlx.DB
}

// NewRefreshTokenRepo constructs a RefreshTokenRepo.
func NewRefreshTokenRepo(db *sqlx.DB) *RefreshTokenRepo {
	return &RefreshTokenRepo{db: db}
}

// Create stores a new token record for the user. Tokens are never rotated on
// refresh; they only age out through expires_at.
func (r *RefreshTokenRepo) Create(ctx context.Context, userID int64, expiresAt time.Time) (models.RefreshToken, error) {
	var token models.RefreshToken
	query := `INSERT INTO refresh_tokens (user_id, is_revoked, expires_at)
        VALUES ($1, FALSE, $2)
        RETURNING id, user_id, is_revoked, expires_at, created_at`
	err := r.db.QueryRowxContext(ctx, query, userID, expiresAt).
		Scan(&token.ID, &token.UserID, &token.IsRevoked, &token.ExpiresAt, &token.CreatedAt)
	return token, err
}

// GetByID fetches a token record.
func (r *RefreshTokenRepo) GetByID(ctx context.Context, id int64) (models.RefreshToken, error) {
	var token models.RefreshToken
	err := r.db.GetContext(ctx, &token, `SELECT id, user_id, is_revoked, expires_at, created_at FROM refresh_tokens WHERE id=$1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return models.RefreshToken{}, ErrTokenNotFound
	}
	return token, err
}
