package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"gemini-observatory/backend/internal/platform/httpx"
	"gemini-observatory/backend/internal/program/domain"
	"gemini-observatory/backend/internal/program/repository"
	"gemini-observatory/backend/internal/program/service"
)

// Handler serves program submission (under /plans/:id/program) and review (under /programs).
type Handler struct {
	svc *service.Service
}

func NewHandler(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

type reviewRequest struct {
	Note string `json:"note"`
}

// Submit handles POST /plans/:id/program.
func (h *Handler) Submit(c *gin.Context) {
	var in domain.Input
	if !httpx.BindJSON(c, &in) {
		return
	}
	p, err := h.svc.Submit(c.Request.Context(), httpx.Principal(c), c.Param("id"), in)
	if err != nil {
		h.fail(c, err, "failed to submit program")
		return
	}
	c.JSON(http.StatusCreated, p)
}

// ForPlan handles GET /plans/:id/program.
func (h *Handler) ForPlan(c *gin.Context) {
	p, err := h.svc.GetByPlan(c.Request.Context(), httpx.Principal(c), c.Param("id"))
	if err != nil {
		h.fail(c, err, "failed to load program")
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *Handler) List(c *gin.Context) {
	f := repository.Filter{Status: domain.Status(c.Query("status")), SubmittedBy: c.Query("submitted_by")}
	programs, err := h.svc.List(c.Request.Context(), httpx.Principal(c), f)
	if err != nil {
		h.fail(c, err, "failed to list programs")
		return
	}
	c.JSON(http.StatusOK, gin.H{"programs": programs})
}

func (h *Handler) Get(c *gin.Context) {
	p, err := h.svc.Get(c.Request.Context(), httpx.Principal(c), c.Param("id"))
	if err != nil {
		h.fail(c, err, "failed to load program")
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *Handler) Approve(c *gin.Context) {
	var req reviewRequest
	if c.Request.ContentLength > 0 && !httpx.BindJSON(c, &req) {
		return
	}
	p, err := h.svc.Approve(c.Request.Context(), httpx.Principal(c), c.Param("id"), req.Note)
	if err != nil {
		h.fail(c, err, "failed to approve program")
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *Handler) Reject(c *gin.Context) {
	var req reviewRequest
	if !httpx.BindJSON(c, &req) {
		return
	}
	p, err := h.svc.Reject(c.Request.Context(), httpx.Principal(c), c.Param("id"), req.Note)
	if err != nil {
		h.fail(c, err, "failed to reject program")
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *Handler) fail(c *gin.Context, err error, msg string) {
	switch {
	case errors.Is(err, service.ErrProgramNotFound):
		httpx.Error(c, http.StatusNotFound, "observing program not found")
	case errors.Is(err, service.ErrPlanNotFound):
		httpx.Error(c, http.StatusNotFound, "science plan not found")
	case errors.Is(err, service.ErrPlanNotValidated):
		httpx.Error(c, http.StatusConflict, "Science plan must be validated before submission")
	case errors.Is(err, service.ErrAlreadySubmitted), errors.Is(err, domain.ErrInvalidTransition):
		httpx.Error(c, http.StatusConflict, err.Error())
	default:
		httpx.Fail(c, err, msg)
	}
}
