package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"youapp-backend/internal/middleware"
	"youapp-backend/internal/models"
)

const requestIDContextKey = "request_id"

func requestIDFromContext(c *gin.Context) string {
	if val, ok := c.Get(requestIDContextKey); ok {
		if id, ok := val.(string); ok && id != "" {
			return id
		}
	}

	requestID := c.GetHeader("X-Request-ID")
	if requestID == "" {
		requestID = uuid.NewString()
	}
	c.Set(requestIDContextKey, requestID)
	return requestID
}

// fail writes the error envelope the services share.
func fail(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{
		"statusCode": status,
		"message":    message,
		"error":      http.StatusText(status),
	})
}

// currentUser fetches the user resolved by the auth middleware, failing the
// request when it is absent.
func currentUser(c *gin.Context) (*models.User, bool) {
	user, ok := middleware.CurrentUser(c)
	if !ok || user == nil {
		fail(c, http.StatusUnauthorized, "Unauthorized")
		return nil, false
	}
	return user, true
}

func auditUserID(user *models.User) *int64 {
	if user == nil {
		return nil
	}
	id := user.ID
	return &id
}
