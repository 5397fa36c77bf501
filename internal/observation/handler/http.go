package handler

import (
	"errors"
	"fmt"
	"net/http"
	"path"

	"github.com/gin-gonic/gin"

	"gemini-observatory/backend/internal/observation/service"
	"gemini-observatory/backend/internal/platform/httpx"
	progservice "gemini-observatory/backend/internal/program/service"
)

// Handler serves observation listings and frame downloads.
type Handler struct {
	svc *service.Service
}

func NewHandler(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

// List handles GET /programs/:id/observations.
func (h *Handler) List(c *gin.Context) {
	frames, err := h.svc.List(c.Request.Context(), httpx.Principal(c), c.Param("id"))
	if err != nil {
		h.fail(c, err, "failed to list observations")
		return
	}
	c.JSON(http.StatusOK, gin.H{"observations": frames})
}

// Content handles GET /observations/:id/content and streams the stored frame.
func (h *Handler) Content(c *gin.Context) {
	o, obj, err := h.svc.Open(c.Request.Context(), httpx.Principal(c), c.Param("id"))
	if err != nil {
		h.fail(c, err, "failed to open observation")
		return
	}
	defer obj.Close()

	contentType := obj.ContentType
	if contentType == "" {
		contentType = o.ContentType
	}
	c.DataFromReader(http.StatusOK, obj.Size, contentType, obj, map[string]string{
		"Content-Disposition": fmt.Sprintf(`attachment; filename="%s"`, path.Base(o.ObjectKey)),
		"X-Checksum-Sha256":   o.Checksum,
	})
}

func (h *Handler) fail(c *gin.Context, err error, msg string) {
	switch {
	case errors.Is(err, service.ErrObservationNotFound):
		httpx.Error(c, http.StatusNotFound, "observation not found")
	case errors.Is(err, progservice.ErrProgramNotFound):
		httpx.Error(c, http.StatusNotFound, "observing program not found")
	default:
		httpx.Fail(c, err, msg)
	}
}
