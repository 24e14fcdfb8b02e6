package rpc

import (
	"context"
	"errors"
	"fmt"

	"youapp-backend/internal/models"
)

var (
	// ErrInvalidCredentials means the users service rejected the identity or
	// password. Callers must not reveal which.
	ErrInvalidCredentials = errors.New("invalid username or password")
	// ErrUserNotFound maps a 404-shaped reply.
	ErrUserNotFound = errors.New("user not found")
	// ErrUserUnauthorized maps a 401-shaped reply (auth-required lookups).
	ErrUserUnauthorized = errors.New("user unauthorized")
)

// Caller is the request/reply surface the typed client runs on.
type Caller interface {
	Call(ctx context.Context, pattern string, data any, out any) error
}

// UserDirectory is what handlers depend on to reach the users service.
type UserDirectory interface {
	Login(ctx context.Context, identity, password string) (*models.User, error)
	UserDetail(ctx context.Context, id int64, auth int) (*models.User, error)
}

// UsersClient wraps the raw bus client with the users service contract.
type UsersClient struct {
	caller Caller
}

// NewUsersClient constructs the wrapper.
func NewUsersClient(caller Caller) *UsersClient {
	return &UsersClient{caller: caller}
}

// Login validates credentials via the user-login pattern.
func (u *UsersClient) Login(ctx context.Context, identity, password string) (*models.User, error) {
	var reply UserReply
	err := u.caller.Call(ctx, PatternUserLogin, LoginRequest{UserIdentity: identity, Password: password}, &reply)
	if err != nil {
		return nil, err
	}
	if reply.Status >= 500 {
		return nil, fmt.Errorf("user-login failed with status %d: %s", reply.Status, reply.Message)
	}
	if reply.User == nil {
		return nil, ErrInvalidCredentials
	}
	return reply.User, nil
}

// UserDetail resolves a user by id via the user-detail pattern. The auth level
// selects whether a missing user reads as not-found or unauthorized.
func (u *UsersClient) UserDetail(ctx context.Context, id int64, auth int) (*models.User, error) {
	var reply UserReply
	err := u.caller.Call(ctx, PatternUserDetail, UserDetailRequest{ID: id, Auth: auth}, &reply)
	if err != nil {
		return nil, err
	}
	switch {
	case reply.Status == 404 || reply.User == nil && reply.Status == 0:
		return nil, &UserNotFoundError{ID: id, Message: reply.Message}
	case reply.Status == 401:
		return nil, ErrUserUnauthorized
	case reply.Status != 0 || reply.User == nil:
		return nil, fmt.Errorf("user-detail failed with status %d: %s", reply.Status, reply.Message)
	}
	return reply.User, nil
}

// UserNotFoundError keeps the missing id so handlers can surface the exact
// client-facing message. errors.Is(err, ErrUserNotFound) matches it.
type UserNotFoundError struct {
	ID      int64
	Message string
}

func (e *UserNotFoundError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("User with id %d is not found", e.ID)
}

func (e *UserNotFoundError) Is(target error) bool {
	return target == ErrUserNotFound
}
