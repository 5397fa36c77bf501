package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	identityservice "gemini-observatory/backend/internal/identity/service"
	"gemini-observatory/backend/internal/platform/httpx"
	"gemini-observatory/backend/internal/user/domain"
	"gemini-observatory/backend/internal/user/service"
)

// Handler serves the caller's profile and the administrator's user management endpoints.
type Handler struct {
	users *service.UserService
	auth  *identityservice.AuthService
}

func NewHandler(users *service.UserService, auth *identityservice.AuthService) *Handler {
	return &Handler{users: users, auth: auth}
}

type createRequest struct {
	Username    string `json:"username"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name"`
	Role        string `json:"role"`
}

type roleRequest struct {
	Role string `json:"role"`
}

type statusRequest struct {
	Status domain.UserStatus `json:"status"`
}

// Me handles GET /users/me.
func (h *Handler) Me(c *gin.Context) {
	u, err := h.users.Get(c.Request.Context(), httpx.Principal(c).UserID)
	if err != nil {
		h.fail(c, err, "failed to load user")
		return
	}
	c.JSON(http.StatusOK, u)
}

// List handles GET /users with an optional role filter.
func (h *Handler) List(c *gin.Context) {
	var role domain.Role
	if raw := c.Query("role"); raw != "" {
		r, err := domain.ParseRole(raw)
		if err != nil {
			h.fail(c, err, "failed to list users")
			return
		}
		role = r
	}
	users, err := h.users.List(c.Request.Context(), role)
	if err != nil {
		h.fail(c, err, "failed to list users")
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users})
}

// Create handles POST /users.
func (h *Handler) Create(c *gin.Context) {
	var req createRequest
	if !httpx.BindJSON(c, &req) {
		return
	}
	role, err := domain.ParseRole(req.Role)
	if err != nil {
		h.fail(c, err, "failed to create user")
		return
	}
	u, err := h.auth.CreateUser(c.Request.Context(), identityservice.NewUserInput{
		Username:    req.Username,
		Password:    req.Password,
		DisplayName: req.DisplayName,
		Role:        role,
	})
	if err != nil {
		h.fail(c, err, "failed to create user")
		return
	}
	c.JSON(http.StatusCreated, u)
}

// SetRole handles PATCH /users/:id/role.
func (h *Handler) SetRole(c *gin.Context) {
	var req roleRequest
	if !httpx.BindJSON(c, &req) {
		return
	}
	role, err := domain.ParseRole(req.Role)
	if err != nil {
		h.fail(c, err, "failed to update role")
		return
	}
	u, err := h.users.SetRole(c.Request.Context(), httpx.Principal(c), c.Param("id"), role)
	if err != nil {
		h.fail(c, err, "failed to update role")
		return
	}
	c.JSON(http.StatusOK, u)
}

// SetStatus handles PATCH /users/:id/status.
func (h *Handler) SetStatus(c *gin.Context) {
	var req statusRequest
	if !httpx.BindJSON(c, &req) {
		return
	}
	u, err := h.users.SetStatus(c.Request.Context(), httpx.Principal(c), c.Param("id"), req.Status)
	if err != nil {
		h.fail(c, err, "failed to update status")
		return
	}
	c.JSON(http.StatusOK, u)
}

func (h *Handler) fail(c *gin.Context, err error, msg string) {
	switch {
	case errors.Is(err, service.ErrUserNotFound):
		httpx.Error(c, http.StatusNotFound, "user not found")
	case errors.Is(err, identityservice.ErrUsernameTaken), errors.Is(err, service.ErrSelfLockout):
		httpx.Error(c, http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrUnknownRole), errors.Is(err, domain.ErrInvalidUsername),
		errors.Is(err, domain.ErrInvalidStatus), errors.Is(err, identityservice.ErrWeakPassword):
		httpx.Error(c, http.StatusBadRequest, err.Error())
	default:
		httpx.Fail(c, err, msg)
	}
}
