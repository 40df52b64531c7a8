package auth

import "github.com/gin-gonic/gin"

// RegisterRoutes registers auth routes
func RegisterRoutes(r *gin.RouterGroup, handler *Handler, service *Service) {
	authGroup := r.Group("/auth")
	{
		authGroup.POST("/register", handler.Register)
		authGroup.POST("/login", handler.Login)
		authGroup.POST("/verify-email", handler.VerifyEmail)
		authGroup.GET("/me", RequireAuth(service), handler.Me)
	}
}
