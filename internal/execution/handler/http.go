package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"gemini-observatory/backend/internal/execution"
	"gemini-observatory/backend/internal/platform/httpx"
	"gemini-observatory/backend/internal/program/domain"
)

// Handler serves the operator endpoints that run an approved program.
type Handler struct {
	engine *execution.Engine
}

func NewHandler(engine *execution.Engine) *Handler {
	return &Handler{engine: engine}
}

type executeRequest struct {
	Mode domain.ExecutionMode `json:"mode"`
}

type abortRequest struct {
	Reason string `json:"reason"`
}

// Execute handles POST /programs/:id/execute.
func (h *Handler) Execute(c *gin.Context) {
	var req executeRequest
	if !httpx.BindJSON(c, &req) {
		return
	}
	p, err := h.engine.Start(c.Request.Context(), httpx.Principal(c), c.Param("id"), req.Mode)
	if err != nil {
		h.fail(c, err, "failed to start execution")
		return
	}
	c.JSON(http.StatusAccepted, p)
}

// Capture handles POST /programs/:id/frames for interactive programs.
func (h *Handler) Capture(c *gin.Context) {
	o, p, err := h.engine.Capture(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err, "failed to capture frame")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"observation": o, "program": p})
}

// Abort handles POST /programs/:id/abort. The body is optional.
func (h *Handler) Abort(c *gin.Context) {
	var req abortRequest
	if c.Request.ContentLength > 0 && !httpx.BindJSON(c, &req) {
		return
	}
	p, err := h.engine.Abort(c.Request.Context(), httpx.Principal(c), c.Param("id"), req.Reason)
	if err != nil {
		h.fail(c, err, "failed to abort execution")
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *Handler) fail(c *gin.Context, err error, msg string) {
	switch {
	case errors.Is(err, execution.ErrProgramNotFound):
		httpx.Error(c, http.StatusNotFound, "observing program not found")
	case errors.Is(err, execution.ErrNotApproved):
		httpx.Error(c, http.StatusConflict, "Observing program must be approved before execution")
	case errors.Is(err, execution.ErrNotInteractive), errors.Is(err, domain.ErrInvalidTransition):
		httpx.Error(c, http.StatusConflict, err.Error())
	default:
		httpx.Fail(c, err, msg)
	}
}
