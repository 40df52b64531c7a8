package bids

import (
	"net/http"

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

func (h *Handler) Submit(c *gin.Context) {
	identity, _ := auth.IdentityFrom(c)

	var req SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	bid, err := h.service.Submit(c.Request.Context(), identity, req)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Bid submitted and analyzed successfully",
		"bidId":   bid.ID.Hex(),
		"aiScore": bid.AIScore,
		"bid":     bid,
	})
}

func (h *Handler) ListByProject(c *gin.Context) {
	identity, _ := auth.IdentityFrom(c)

	projectID := c.Query("projectId")
	if projectID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Project ID is required"})
		return
	}

	list, err := h.service.ListByProject(c.Request.Context(), identity, projectID)
	if err != nil {
		h.fail(c, err)
		return
	}
	if list == nil {
		list = []*Bid{}
	}
	c.JSON(http.StatusOK, gin.H{"bids": list})
}

func (h *Handler) MyBids(c *gin.Context) {
	identity, _ := auth.IdentityFrom(c)

	list, err := h.service.MyBids(c.Request.Context(), identity)
	if err != nil {
		h.fail(c, err)
		return
	}
	if list == nil {
		list = []*Bid{}
	}
	c.JSON(http.StatusOK, gin.H{"bids": list})
}

func (h *Handler) Get(c *gin.Context) {
	identity, _ := auth.IdentityFrom(c)

	bid, err := h.service.Get(c.Request.Context(), identity, c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bid": bid})
}

func (h *Handler) UpdateProposal(c *gin.Context) {
	identity, _ := auth.IdentityFrom(c)

	var req ProposalUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	bid, err := h.service.UpdateProposal(c.Request.Context(), identity, c.Param("id"), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Bid updated successfully",
		"aiScore": bid.AIScore,
		"bid":     bid,
	})
}

func (h *Handler) Withdraw(c *gin.Context) {
	identity, _ := auth.IdentityFrom(c)

	if err := h.service.Withdraw(c.Request.Context(), identity, c.Param("id")); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Bid withdrawn successfully"})
}

func (h *Handler) Act(c *gin.Context) {
	identity, _ := auth.IdentityFrom(c)

	var req ActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	bid, err := h.service.Act(c.Request.Context(), identity, req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Bid " + req.Action + " successful",
		"bidId":   req.BidID,
		"action":  req.Action,
		"bid":     bid,
	})
}

func (h *Handler) Analyze(c *gin.Context) {
	identity, _ := auth.IdentityFrom(c)

	var req struct {
		ProjectID string `json:"projectId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.service.Analyze(c.Request.Context(), identity, req.ProjectID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *Handler) Rankings(c *gin.Context) {
	identity, _ := auth.IdentityFrom(c)

	projectID := c.Query("projectId")
	if projectID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Project ID is required"})
		return
	}

	view, err := h.service.Rankings(c.Request.Context(), identity, projectID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *Handler) fail(c *gin.Context, err error) {
	status := apperrors.HTTPStatus(err)
	if status == http.StatusInternalServerError {
		h.logger.Error("bid request failed", zap.Error(err))
		c.JSON(status, gin.H{"error": "Internal server error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
