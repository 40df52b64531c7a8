package bids

import (
	"github.com/gin-gonic/gin"

	"tenderdesk/tender-portal-backend/internal/auth"
)

// RegisterRoutes registers bid routes
func RegisterRoutes(r *gin.RouterGroup, handler *Handler, authService *auth.Service) {
	group := r.Group("/bids", auth.RequireAuth(authService))
	{
		group.GET("", handler.ListByProject)
		group.POST("", auth.RequireUserType(auth.UserTypeBidder), handler.Submit)
		group.GET("/my-bids", auth.RequireUserType(auth.UserTypeBidder), handler.MyBids)
		group.GET("/rankings", auth.RequireUserType(auth.UserTypeTender), handler.Rankings)
		group.POST("/analyze", auth.RequireUserType(auth.UserTypeTender), handler.Analyze)
		group.POST("/actions", auth.RequireUserType(auth.UserTypeTender), handler.Act)
		group.GET("/:id", handler.Get)
		group.PATCH("/:id/proposal", auth.RequireUserType(auth.UserTypeBidder), handler.UpdateProposal)
		group.DELETE("/:id", auth.RequireUserType(auth.UserTypeBidder), handler.Withdraw)
	}
}
