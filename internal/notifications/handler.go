package notifications

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"tenderdesk/tender-portal-backend/internal/auth"
	"tenderdesk/tender-portal-backend/internal/notifications/websocket"
	"tenderdesk/tender-portal-backend/pkg/apperrors"
)

type Handler struct {
	service Service
	hub     *websocket.Hub
	logger  *zap.Logger
}

func NewHandler(service Service, hub *websocket.Hub, logger *zap.Logger) *Handler {
	return &Handler{service: service, hub: hub, logger: logger}
}

func (h *Handler) List(c *gin.Context) {
	identity, _ := auth.IdentityFrom(c)

	limit, _ := strconv.ParseInt(c.DefaultQuery("limit", "50"), 10, 64)
	list, unread, err := h.service.List(c.Request.Context(), identity.UserID, limit)
	if err != nil {
		h.fail(c, err)
		return
	}
	if list == nil {
		list = []*Notification{}
	}

	c.JSON(http.StatusOK, gin.H{"notifications": list, "unreadCount": unread})
}

func (h *Handler) MarkRead(c *gin.Context) {
	identity, _ := auth.IdentityFrom(c)

	if err := h.service.MarkRead(c.Request.Context(), identity.UserID, c.Param("id")); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Notification marked as read"})
}

func (h *Handler) MarkAllRead(c *gin.Context) {
	identity, _ := auth.IdentityFrom(c)

	updated, err := h.service.MarkAllRead(c.Request.Context(), identity.UserID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "All notifications marked as read", "updated": updated})
}

// Connect upgrades the request to a websocket for live notifications
func (h *Handler) Connect(c *gin.Context) {
	identity, _ := auth.IdentityFrom(c)

	if err := h.hub.HandleConnection(c.Writer, c.Request, identity.UserID); err != nil {
		h.logger.Warn("websocket upgrade failed",
			zap.String("userId", identity.UserID),
			zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Could not establish websocket connection"})
	}
}

func (h *Handler) fail(c *gin.Context, err error) {
	status := apperrors.HTTPStatus(err)
	if status == http.StatusInternalServerError {
		h.logger.Error("notification request failed", zap.Error(err))
		c.JSON(status, gin.H{"error": "Internal server error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
