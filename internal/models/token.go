package models

import "time"

// RefreshToken is the server-side record backing a refresh JWT. The JWT carries
// the record id, not the user id.
type RefreshToken struct {
	ID        int64     `db:"id" json:"id"`
	UserID    int64     `db:"user_id" json:"user_id"`
	IsRevoked bool      `db:"is_revoked" json:"is_revoked"`
	ExpiresAt time.Time `db:"expires_at" json:"expires_at"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
