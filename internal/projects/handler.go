package projects

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"tenderdesk/tender-portal-backend/internal/auth"
	"tenderdesk/tender-portal-backend/pkg/apperrors"
)

type Handler struct {
	service Service
	logger  *zap.Logger
}

func NewHandler(service Service, logger *zap.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

func (h *Handler) Create(c *gin.Context) {
	identity, _ := auth.IdentityFrom(c)

	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	project, err := h.service.Create(c.Request.Context(), identity, req)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":   "Project created successfully",
		"projectId": project.ID.Hex(),
		"project":   project,
	})
}

func (h *Handler) Get(c *gin.Context) {
	project, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"project": project})
}

func (h *Handler) MyProjects(c *gin.Context) {
	identity, _ := auth.IdentityFrom(c)

	list, err := h.service.MyProjects(c.Request.Context(), identity)
	if err != nil {
		h.fail(c, err)
		return
	}
	if list == nil {
		list = []*Project{}
	}
	c.JSON(http.StatusOK, gin.H{"projects": list})
}

func (h *Handler) List(c *gin.Context) {
	limit, _ := strconv.ParseInt(c.DefaultQuery("limit", "50"), 10, 64)
	maxBudget, _ := strconv.ParseFloat(c.Query("maxBudget"), 64)

	list, err := h.service.ListOpen(c.Request.Context(), ListFilter{
		Status:    c.Query("status"),
		Category:  c.Query("category"),
		MaxBudget: maxBudget,
		Limit:     limit,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	if list == nil {
		list = []*Project{}
	}
	c.JSON(http.StatusOK, gin.H{"projects": list})
}

func (h *Handler) Update(c *gin.Context) {
	identity, _ := auth.IdentityFrom(c)

	var req UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	project, err := h.service.Update(c.Request.Context(), identity, c.Param("id"), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Project updated successfully", "project": project})
}

func (h *Handler) UpdateStatus(c *gin.Context) {
	identity, _ := auth.IdentityFrom(c)

	var req StatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	notified, err := h.service.UpdateStatus(c.Request.Context(), identity, c.Param("id"), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":         "Project status updated to " + req.Status,
		"projectId":       c.Param("id"),
		"status":          req.Status,
		"notifiedBidders": notified,
	})
}

func (h *Handler) fail(c *gin.Context, err error) {
	status := apperrors.HTTPStatus(err)
	if status == http.StatusInternalServerError {
		h.logger.Error("project request failed", zap.Error(err))
		c.JSON(status, gin.H{"error": "Internal server error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
