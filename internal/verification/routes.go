package verification

import (
	"github.com/gin-gonic/gin"

	"tenderdesk/tender-portal-backend/internal/auth"
)

// RegisterRoutes registers verification routes
func RegisterRoutes(r *gin.RouterGroup, handler *Handler, authService *auth.Service) {
	userGroup := r.Group("/user", auth.RequireAuth(authService))
	{
		userGroup.POST("/verify", handler.Verify)
		userGroup.PUT("/verify", handler.VerifyBatch)
		userGroup.GET("/verification-report", handler.Report)
	}

	adminGroup := r.Group("/admin", auth.RequireAuth(authService), auth.RequireUserType(auth.UserTypeAdmin))
	{
		adminGroup.POST("/approve-verification", handler.AdminReview)
		adminGroup.GET("/export-verifications", handler.Export)
	}
}
