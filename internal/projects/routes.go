package projects

import (
	"github.com/gin-gonic/gin"

	"tenderdesk/tender-portal-backend/internal/auth"
)

// RegisterRoutes registers project routes
func RegisterRoutes(r *gin.RouterGroup, handler *Handler, authService *auth.Service) {
	group := r.Group("/projects", auth.RequireAuth(authService))
	{
		group.GET("", handler.List)
		group.POST("", auth.RequireUserType(auth.UserTypeTender), handler.Create)
		group.GET("/my-projects", auth.RequireUserType(auth.UserTypeTender), handler.MyProjects)
		group.GET("/:id", handler.Get)
		group.PUT("/:id", auth.RequireUserType(auth.UserTypeTender), handler.Update)
		group.PATCH("/:id/status", auth.RequireUserType(auth.UserTypeTender), handler.UpdateStatus)
	}
}
