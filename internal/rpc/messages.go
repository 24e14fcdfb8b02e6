package rpc

import (
	"encoding/json"

	"youapp-backend/internal/models"
)

// Patterns consumed by the users service queue.
const (
	PatternUserLogin  = "user-login"
	PatternUserDetail = "user-detail"
)

// Auth levels for user-detail requests. AuthRequired makes a missing user an
// unauthorized reply instead of not-found.
const (
	AuthOptional = 0
	AuthRequired = 1
)

// Request is the envelope published to a service queue.
type Request struct {
	Pattern string          `json:"pattern"`
	Data    json.RawMessage `json:"data"`
}

// LoginRequest carries credentials for the user-login pattern.
type LoginRequest struct {
	UserIdentity string `json:"userIdentity"`
	Password     string `json:"password"`
}

// UserDetailRequest asks for a user by id. Auth selects the reply shape when
// the user is missing.
type UserDetailRequest struct {
	ID   int64 `json:"id"`
	Auth int   `json:"auth"`
}

// UserReply is the reply body for both user patterns. A zero Status with a nil
// User means the credentials did not match.
type UserReply struct {
	Status  int          `json:"status,omitempty"`
	Message string       `json:"message,omitempty"`
	User    *models.User `json:"user,omitempty"`
}
