package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"gemini-observatory/backend/internal/plan/domain"
	"gemini-observatory/backend/internal/plan/repository"
	"gemini-observatory/backend/internal/plan/service"
	"gemini-observatory/backend/internal/platform/httpx"
)

// Handler serves the science plan endpoints under /plans.
type Handler struct {
	svc *service.Service
}

func NewHandler(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Create(c *gin.Context) {
	var d domain.Draft
	if !httpx.BindJSON(c, &d) {
		return
	}
	p, err := h.svc.Create(c.Request.Context(), httpx.Principal(c), d)
	if err != nil {
		h.fail(c, err, "failed to create plan")
		return
	}
	c.JSON(http.StatusCreated, p)
}

func (h *Handler) List(c *gin.Context) {
	f := repository.Filter{Status: domain.Status(c.Query("status")), OwnerID: c.Query("owner_id")}
	plans, err := h.svc.List(c.Request.Context(), httpx.Principal(c), f)
	if err != nil {
		h.fail(c, err, "failed to list plans")
		return
	}
	c.JSON(http.StatusOK, gin.H{"plans": plans})
}

func (h *Handler) Get(c *gin.Context) {
	p, err := h.svc.Get(c.Request.Context(), httpx.Principal(c), c.Param("id"))
	if err != nil {
		h.fail(c, err, "failed to load plan")
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *Handler) Update(c *gin.Context) {
	var d domain.Draft
	if !httpx.BindJSON(c, &d) {
		return
	}
	p, err := h.svc.Update(c.Request.Context(), httpx.Principal(c), c.Param("id"), d)
	if err != nil {
		h.fail(c, err, "failed to update plan")
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *Handler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), httpx.Principal(c), c.Param("id")); err != nil {
		h.fail(c, err, "failed to delete plan")
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) Simulate(c *gin.Context) {
	out, err := h.svc.Simulate(c.Request.Context(), httpx.Principal(c), c.Param("id"))
	if err != nil {
		h.fail(c, err, "failed to simulate plan")
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handler) Validate(c *gin.Context) {
	out, err := h.svc.Validate(c.Request.Context(), httpx.Principal(c), c.Param("id"))
	if err != nil {
		h.fail(c, err, "failed to validate plan")
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handler) Results(c *gin.Context) {
	results, err := h.svc.Results(c.Request.Context(), httpx.Principal(c), c.Param("id"))
	if err != nil {
		h.fail(c, err, "failed to list validations")
		return
	}
	c.JSON(http.StatusOK, gin.H{"validations": results})
}

func (h *Handler) fail(c *gin.Context, err error, msg string) {
	switch {
	case errors.Is(err, service.ErrPlanNotFound):
		httpx.Error(c, http.StatusNotFound, "science plan not found")
	case errors.Is(err, service.ErrPlanLocked):
		httpx.Error(c, http.StatusConflict, err.Error())
	default:
		httpx.Fail(c, err, msg)
	}
}
