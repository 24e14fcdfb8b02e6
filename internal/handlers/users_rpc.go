package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"youapp-backend/internal/pkg/passwords"
	"youapp-backend/internal/repositories"
	"youapp-backend/internal/rpc"
)

// UsersRPC answers the bus patterns other services depend on. Every reply,
// error shapes included, is an ordinary value so the consumer can acknowledge
// unconditionally.
type UsersRPC struct {
	repo repositories.UserRepository
}

// NewUsersRPC builds the RPC handler set.
func NewUsersRPC(repo repositories.UserRepository) *UsersRPC {
	return &UsersRPC{repo: repo}
}

// Register wires the patterns onto the server.
func (h *UsersRPC) Register(srv *rpc.Server) {
	srv.Handle(rpc.PatternUserLogin, h.handleUserLogin)
	srv.Handle(rpc.PatternUserDetail, h.handleUserDetail)
}

// handleUserLogin validates credentials. The reply carries the user on
// success and stays empty on any mismatch, so the caller cannot tell which
// check failed.
func (h *UsersRPC) handleUserLogin(ctx context.Context, data json.RawMessage) any {
	var req rpc.LoginRequest
	if err := json.Unmarshal(data, &req); err != nil {
		log.Printf("user-login bad payload: %v", err)
		return rpc.UserReply{}
	}

	user, err := h.repo.GetByIdentity(ctx, req.UserIdentity)
	if err != nil {
		// Only a missing user reads as a credential mismatch; a store failure
		// is reported distinctly so the caller does not turn it into a 401.
		if !errors.Is(err, repositories.ErrUserNotFound) {
			log.Printf("user-login lookup failed: %v", err)
			return rpc.UserReply{Status: 500, Message: "could not validate credentials"}
		}
		return rpc.UserReply{}
	}
	if !passwords.Matches(req.Password, user.Salt, user.Password) {
		return rpc.UserReply{}
	}
	return rpc.UserReply{User: &user}
}

// handleUserDetail resolves a user by id. The auth level picks the error
// shape for a missing user.
func (h *UsersRPC) handleUserDetail(ctx context.Context, data json.RawMessage) any {
	var req rpc.UserDetailRequest
	if err := json.Unmarshal(data, &req); err != nil {
		log.Printf("user-detail bad payload: %v", err)
		return rpc.UserReply{Status: 404, Message: "invalid user-detail payload"}
	}

	user, err := h.repo.GetByID(ctx, req.ID)
	if err != nil {
		if !errors.Is(err, repositories.ErrUserNotFound) {
			log.Printf("user-detail lookup failed: %v", err)
			return rpc.UserReply{Status: 500, Message: "could not load user"}
		}
		if req.Auth == rpc.AuthRequired {
			return rpc.UserReply{Status: 401, Message: "Unauthorized"}
		}
		return rpc.UserReply{Status: 404, Message: fmt.Sprintf("User with id %d is not found", req.ID)}
	}
	return rpc.UserReply{User: &user}
}
