package verification

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"tenderdesk/tender-portal-backend/internal/auth"
	"tenderdesk/tender-portal-backend/pkg/apperrors"
)

type Handler struct {
	service *Service
	logger  *zap.Logger
}

func NewHandler(service *Service, logger *zap.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Verify runs a single-field verification for the authenticated company
func (h *Handler) Verify(c *gin.Context) {
	identity, _ := auth.IdentityFrom(c)

	var req VerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	outcome, err := h.service.Verify(c.Request.Context(), identity.UserID, req)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":           outcome.Result.Success,
		"data":              outcome.Result.Data,
		"error":             outcome.Result.Error,
		"confidence":        outcome.Result.Confidence,
		"overallPercentage": outcome.Overall,
	})
}

// VerifyBatch runs several field verifications in one call
func (h *Handler) VerifyBatch(c *gin.Context) {
	identity, _ := auth.IdentityFrom(c)

	var req BatchVerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	outcome, err := h.service.VerifyBatch(c.Request.Context(), identity.UserID, req)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":           true,
		"results":           outcome.Results,
		"overallPercentage": outcome.Overall,
	})
}

// AdminReview applies an approve/reject override (admin only)
func (h *Handler) AdminReview(c *gin.Context) {
	identity, _ := auth.IdentityFrom(c)

	var req AdminReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	outcome, err := h.service.AdminReview(c.Request.Context(), identity.UserID, identity.Email, req)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":           true,
		"newStatus":         outcome.NewStatus,
		"overallPercentage": outcome.Overall,
	})
}

// Report returns the verification report, as JSON or PDF
func (h *Handler) Report(c *gin.Context) {
	identity, _ := auth.IdentityFrom(c)

	report, err := h.service.BuildReport(c.Request.Context(), identity.UserID)
	if err != nil {
		h.fail(c, err)
		return
	}

	if c.Query("format") == "pdf" {
		buf, err := RenderReportPDF(report)
		if err != nil {
			h.fail(c, err)
			return
		}
		c.Header("Content-Disposition", `attachment; filename="verification-report.pdf"`)
		c.Data(http.StatusOK, "application/pdf", buf.Bytes())
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": report})
}

// Export streams the admin verification matrix as an xlsx workbook
func (h *Handler) Export(c *gin.Context) {
	companies, err := h.service.ListCompanies(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}

	buf, err := ExportMatrix(companies)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="verifications.xlsx"`)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}

func (h *Handler) fail(c *gin.Context, err error) {
	status := apperrors.HTTPStatus(err)
	if status == http.StatusInternalServerError {
		h.logger.Error("verification request failed", zap.Error(err))
		c.JSON(status, gin.H{"error": "Internal server error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
