package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"youapp-backend/internal/middleware"
	"youapp-backend/internal/telemetry"
)

// RegisterDebugRoutes wires debug-only endpoints.
func RegisterDebugRoutes(router *gin.Engine, emitter *telemetry.AuditEmitter, enabled bool) {
	if !enabled {
		return
	}

	router.GET("/debug/audit-test", func(c *gin.Context) {
		if emitter == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "audit emitter not configured"})
			return
		}
		var userID *int64
		if user, ok := middleware.CurrentUser(c); ok {
			userID = auditUserID(user)
		}
		emitter.Emit(c.Request.Context(), "INFO", "audit test", requestIDFromContext(c), userID)
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
}
