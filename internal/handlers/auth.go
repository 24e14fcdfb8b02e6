package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"youapp-backend/internal/pkg/jwtauth"
	"youapp-backend/internal/repositories"
	"youapp-backend/internal/rpc"
	"youapp-backend/internal/telemetry"
)

// AuthHandler issues and refreshes tokens. Credential validation is delegated
// to the users service over the bus.
type AuthHandler struct {
	users      rpc.UserDirectory
	tokens     repositories.RefreshTokenRepository
	jwt        *jwtauth.Service
	refreshTTL time.Duration
	audit      *telemetry.AuditEmitter
}

// NewAuthHandler builds an AuthHandler.
func NewAuthHandler(users rpc.UserDirectory, tokens repositories.RefreshTokenRepository, jwt *jwtauth.Service, refreshTTL time.Duration, audit *telemetry.AuditEmitter) *AuthHandler {
	return &AuthHandler{
		users:      users,
		tokens:     tokens,
		jwt:        jwt,
		refreshTTL: refreshTTL,
		audit:      audit,
	}
}

// Welcome is the health string.
func (h *AuthHandler) Welcome(c *gin.Context) {
	c.String(http.StatusOK, "Welcome to Auth API!")
}

// Login validates credentials via the users service and issues both tokens.
// The failure shape is identical whether the identity or the password was
// wrong.
func (h *AuthHandler) Login(c *gin.Context) {
	var req struct {
		UserIdentity string `json:"userIdentity" binding:"required"`
		Password     string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}

	user, err := h.users.Login(c.Request.Context(), req.UserIdentity, req.Password)
	if err != nil {
		if errors.Is(err, rpc.ErrInvalidCredentials) {
			h.audit.Emit(c.Request.Context(), "WARN", "login rejected", requestIDFromContext(c), nil)
			fail(c, http.StatusUnauthorized, "Invalid username or password")
			return
		}
		fail(c, http.StatusBadGateway, "failed to validate credentials")
		return
	}

	record, err := h.tokens.Create(c.Request.Context(), user.ID, time.Now().Add(h.refreshTTL))
	if err != nil {
		fail(c, http.StatusInternalServerError, "could not store refresh token")
		return
	}

	accessToken, err := h.jwt.SignAccess(user.ID)
	if err != nil {
		fail(c, http.StatusInternalServerError, "could not sign access token")
		return
	}
	refreshToken, err := h.jwt.SignRefresh(record.ID)
	if err != nil {
		fail(c, http.StatusInternalServerError, "could not sign refresh token")
		return
	}

	h.audit.Emit(c.Request.Context(), "INFO", "login succeeded", requestIDFromContext(c), auditUserID(user))
	c.JSON(http.StatusCreated, gin.H{
		"statusCode":    http.StatusCreated,
		"access_token":  accessToken,
		"refresh_token": refreshToken,
	})
}

// Refresh mints a new access token from a refresh token. Record checks run in
// order: existence, revocation, expiry. The refresh token itself is not
// rotated.
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refresh_token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}

	tokenID, err := h.jwt.ParseRefresh(req.RefreshToken)
	if err != nil {
		if errors.Is(err, jwtauth.ErrExpired) {
			fail(c, http.StatusUnauthorized, "Refresh token expired")
			return
		}
		fail(c, http.StatusInternalServerError, "Failed to decode token")
		return
	}

	record, err := h.tokens.GetByID(c.Request.Context(), tokenID)
	if err != nil {
		if errors.Is(err, repositories.ErrTokenNotFound) {
			fail(c, http.StatusUnauthorized, "Refresh token is not found")
			return
		}
		fail(c, http.StatusInternalServerError, "could not load refresh token")
		return
	}
	if record.IsRevoked {
		fail(c, http.StatusUnauthorized, "Refresh token has been revoke")
		return
	}
	if time.Now().After(record.ExpiresAt) {
		fail(c, http.StatusUnauthorized, "Refresh token expired")
		return
	}

	accessToken, err := h.jwt.SignAccess(record.UserID)
	if err != nil {
		fail(c, http.StatusInternalServerError, "could not sign access token")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"statusCode":   http.StatusCreated,
		"access_token": accessToken,
	})
}
