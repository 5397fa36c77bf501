package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"gemini-observatory/backend/internal/identity/service"
	"gemini-observatory/backend/internal/platform/httpx"
	userdomain "gemini-observatory/backend/internal/user/domain"
)

// AuthHandler serves login, token refresh, logout and password change.
type AuthHandler struct {
	auth *service.AuthService
}

func NewAuthHandler(auth *service.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// TokenResponse is returned by login and refresh.
type TokenResponse struct {
	AccessToken      string           `json:"access_token"`
	RefreshToken     string           `json:"refresh_token"`
	TokenType        string           `json:"token_type"`
	ExpiresAt        time.Time        `json:"expires_at"`
	RefreshExpiresAt time.Time        `json:"refresh_expires_at"`
	User             *userdomain.User `json:"user"`
}

func tokenResponse(res *service.AuthResult) TokenResponse {
	return TokenResponse{
		AccessToken:      res.AccessToken,
		RefreshToken:     res.RefreshToken,
		TokenType:        "Bearer",
		ExpiresAt:        res.ExpiresAt,
		RefreshExpiresAt: res.RefreshExpiresAt,
		User:             res.User,
	}
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if !httpx.BindJSON(c, &req) {
		return
	}
	res, err := h.auth.Login(c.Request.Context(), req.Username, req.Password, c.ClientIP())
	if err != nil {
		h.fail(c, err, "failed to log in")
		return
	}
	c.JSON(http.StatusOK, tokenResponse(res))
}

func (h *AuthHandler) Refresh(c *gin.Context) {
	var req refreshRequest
	if !httpx.BindJSON(c, &req) {
		return
	}
	res, err := h.auth.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		h.fail(c, err, "failed to refresh token")
		return
	}
	c.JSON(http.StatusOK, tokenResponse(res))
}

// Logout revokes the session of the access token used for the request.
func (h *AuthHandler) Logout(c *gin.Context) {
	if err := h.auth.Logout(c.Request.Context(), httpx.Principal(c).SessionID); err != nil {
		h.fail(c, err, "failed to log out")
		return
	}
	c.Status(http.StatusNoContent)
}

// ChangePassword keeps the current session and revokes the caller's others.
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	var req changePasswordRequest
	if !httpx.BindJSON(c, &req) {
		return
	}
	p := httpx.Principal(c)
	if err := h.auth.ChangePassword(c.Request.Context(), p.UserID, p.SessionID, req.CurrentPassword, req.NewPassword); err != nil {
		h.fail(c, err, "failed to change password")
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *AuthHandler) fail(c *gin.Context, err error, msg string) {
	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		httpx.Error(c, http.StatusUnauthorized, "invalid username or password")
	case errors.Is(err, service.ErrInvalidRefreshToken), errors.Is(err, service.ErrRefreshTokenReuse):
		httpx.Error(c, http.StatusUnauthorized, err.Error())
	case errors.Is(err, service.ErrWeakPassword):
		httpx.Error(c, http.StatusBadRequest, err.Error())
	default:
		httpx.Fail(c, err, msg)
	}
}
