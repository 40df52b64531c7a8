package notifications

import (
	"github.com/gin-gonic/gin"

	"tenderdesk/tender-portal-backend/internal/auth"
)

// RegisterRoutes registers notification routes
func RegisterRoutes(r *gin.RouterGroup, handler *Handler, authService *auth.Service) {
	group := r.Group("/notifications", auth.RequireAuth(authService))
	{
		group.GET("", handler.List)
		group.PUT("/:id/read", handler.MarkRead)
		group.PUT("/read-all", handler.MarkAllRead)
		group.GET("/ws", handler.Connect)
	}
}
