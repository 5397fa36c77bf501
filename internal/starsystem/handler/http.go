package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	plandomain "gemini-observatory/backend/internal/plan/domain"
	"gemini-observatory/backend/internal/platform/httpx"
	"gemini-observatory/backend/internal/starsystem/service"
	"gemini-observatory/backend/internal/telescope"
)

// Handler serves the constellation catalogue and the telescope site profiles.
type Handler struct {
	svc   *service.Service
	scope *telescope.Telescope
}

func NewHandler(svc *service.Service, scope *telescope.Telescope) *Handler {
	return &Handler{svc: svc, scope: scope}
}

// List handles GET /star-systems. Optional filters: quadrant, latitude, or site (Hawaii|Chile).
func (h *Handler) List(c *gin.Context) {
	f := service.Filter{Quadrant: c.Query("quadrant")}
	if raw := c.Query("latitude"); raw != "" {
		lat, err := strconv.ParseFloat(raw, 64)
		if err != nil || lat < -90 || lat > 90 {
			httpx.Error(c, http.StatusBadRequest, "latitude must be a number between -90 and 90")
			return
		}
		f.Latitude = &lat
	}
	if raw := c.Query("site"); raw != "" {
		site, ok := h.scope.Site(plandomain.TelescopeLocation(raw))
		if !ok {
			httpx.Error(c, http.StatusBadRequest, "unknown telescope site")
			return
		}
		f.Latitude = &site.Latitude
	}
	systems, err := h.svc.Search(c.Request.Context(), f)
	if err != nil {
		httpx.Fail(c, err, "failed to list star systems")
		return
	}
	c.JSON(http.StatusOK, gin.H{"star_systems": systems})
}

// Get handles GET /star-systems/:name.
func (h *Handler) Get(c *gin.Context) {
	sys, err := h.svc.GetByName(c.Request.Context(), c.Param("name"))
	if errors.Is(err, service.ErrStarSystemNotFound) {
		httpx.Error(c, http.StatusNotFound, "star system not found")
		return
	}
	if err != nil {
		httpx.Fail(c, err, "failed to load star system")
		return
	}
	c.JSON(http.StatusOK, sys)
}

// Sites handles GET /telescope/sites.
func (h *Handler) Sites(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"sites": h.scope.Sites()})
}
