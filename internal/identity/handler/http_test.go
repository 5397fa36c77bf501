package handler

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"

	identityrepo "gemini-observatory/backend/internal/identity/repository"
	"gemini-observatory/backend/internal/identity/service"
	"gemini-observatory/backend/internal/platform/rbac"
	"gemini-observatory/backend/internal/security"
	sessionrepo "gemini-observatory/backend/internal/session/repository"
	userdomain "gemini-observatory/backend/internal/user/domain"
	userrepo "gemini-observatory/backend/internal/user/repository"
)

func init() { gin.SetMode(gin.TestMode) }

type env struct {
	router   *gin.Engine
	tokens   *security.TokenProvider
	sessions *sessionrepo.MemoryRepository
}

func newEnv(t *testing.T) env {
	t.Helper()
	tokens, err := security.NewTestTokenProvider()
	if err != nil {
		t.Fatalf("NewTestTokenProvider: %v", err)
	}
	sessions := sessionrepo.NewMemoryRepository()
	users := userrepo.NewMemoryRepository()
	auth := service.NewAuthService(users, identityrepo.NewMemoryRepository(users), sessions, security.NewHasher(4), tokens)
	if _, err := auth.CreateUser(context.Background(), service.NewUserInput{Username: "henrietta", Password: "correct-horse", Role: userdomain.RoleAstronomer}); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	h := NewAuthHandler(auth)

	r := gin.New()
	r.POST("/auth/login", h.Login)
	r.POST("/auth/refresh", h.Refresh)
	// Stands in for the bearer middleware: trusts the access token without checking the session.
	authed := r.Group("", func(c *gin.Context) {
		claims, err := tokens.ValidateAccess(c.GetHeader("X-Test-Token"))
		if err != nil {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}
		p := rbac.Principal{UserID: claims.UserID, Role: userdomain.Role(claims.Role), SessionID: claims.SessionID}
		c.Request = c.Request.WithContext(rbac.WithPrincipal(c.Request.Context(), p))
	})
	authed.POST("/auth/logout", h.Logout)
	authed.POST("/auth/password", h.ChangePassword)
	return env{router: r, tokens: tokens, sessions: sessions}
}

func (e env) do(path, body, token string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("X-Test-Token", token)
	}
	e.router.ServeHTTP(rec, req)
	return rec
}

func login(t *testing.T, e env) TokenResponse {
	t.Helper()
	rec := e.do("/auth/login", `{"username":"Henrietta","password":"correct-horse"}`, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("login status = %d, body %s", rec.Code, rec.Body.String())
	}
	var res TokenResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return res
}

func TestLogin(t *testing.T) {
	e := newEnv(t)
	res := login(t, e)
	if res.AccessToken == "" || res.RefreshToken == "" {
		t.Fatal("tokens should be set")
	}
	if res.TokenType != "Bearer" {
		t.Errorf("TokenType = %q", res.TokenType)
	}
	if res.User == nil || res.User.Role != userdomain.RoleAstronomer {
		t.Errorf("User = %+v", res.User)
	}

	rec := e.do("/auth/login", `{"username":"henrietta","password":"wrong"}`, "")
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("wrong password status = %d, want 401", rec.Code)
	}
	rec = e.do("/auth/login", `not json`, "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("malformed status = %d, want 400", rec.Code)
	}
}

func TestRefreshAndReuse(t *testing.T) {
	e := newEnv(t)
	first := login(t, e)

	rec := e.do("/auth/refresh", `{"refresh_token":"`+first.RefreshToken+`"}`, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("refresh status = %d, body %s", rec.Code, rec.Body.String())
	}
	rec = e.do("/auth/refresh", `{"refresh_token":"`+first.RefreshToken+`"}`, "")
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("reused refresh status = %d, want 401", rec.Code)
	}
}

func TestLogout(t *testing.T) {
	e := newEnv(t)
	res := login(t, e)
	claims, err := e.tokens.ValidateAccess(res.AccessToken)
	if err != nil {
		t.Fatalf("ValidateAccess: %v", err)
	}

	rec := e.do("/auth/logout", "", res.AccessToken)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("logout status = %d", rec.Code)
	}
	sess, err := e.sessions.GetByID(context.Background(), claims.SessionID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if sess != nil {
		t.Error("session should be deleted after logout")
	}
}

func TestChangePassword(t *testing.T) {
	e := newEnv(t)
	res := login(t, e)

	rec := e.do("/auth/password", `{"current_password":"correct-horse","new_password":"short"}`, res.AccessToken)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("weak password status = %d, want 400", rec.Code)
	}
	rec = e.do("/auth/password", `{"current_password":"correct-horse","new_password":"battery-staple"}`, res.AccessToken)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("change status = %d, body %s", rec.Code, rec.Body.String())
	}
	rec = e.do("/auth/login", `{"username":"henrietta","password":"battery-staple"}`, "")
	if rec.Code != http.StatusOK {
		t.Errorf("login with new password status = %d", rec.Code)
	}
}
