package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"gemini-observatory/backend/internal/audit"
	auditrepo "gemini-observatory/backend/internal/audit/repository"
	"gemini-observatory/backend/internal/platform/httpx"
)

const (
	defaultPageSize = 50
	maxPageSize     = 500
)

// Handler serves GET /audit-logs for support staff and administrators.
type Handler struct {
	logger *audit.Logger
}

func NewHandler(logger *audit.Logger) *Handler {
	return &Handler{logger: logger}
}

func (h *Handler) List(c *gin.Context) {
	limit, offset := httpx.Page(c, defaultPageSize, maxPageSize)
	f := auditrepo.Filter{
		UserID:   c.Query("user_id"),
		Action:   c.Query("action"),
		Resource: c.Query("resource"),
	}
	entries, err := h.logger.List(c.Request.Context(), f, limit, offset)
	if err != nil {
		httpx.Fail(c, err, "failed to list audit logs")
		return
	}
	c.JSON(http.StatusOK, gin.H{"audit_logs": entries, "limit": limit, "offset": offset})
}
