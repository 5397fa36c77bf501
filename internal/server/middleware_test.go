package server

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"gemini-observatory/backend/internal/audit"
	auditrepo "gemini-observatory/backend/internal/audit/repository"
	"gemini-observatory/backend/internal/logging"
	"gemini-observatory/backend/internal/metrics"
	"gemini-observatory/backend/internal/platform/httpx"
	"gemini-observatory/backend/internal/platform/rbac"
	"gemini-observatory/backend/internal/security"
	sessiondomain "gemini-observatory/backend/internal/session/domain"
	sessionrepo "gemini-observatory/backend/internal/session/repository"
	"gemini-observatory/backend/internal/telemetry"
	userdomain "gemini-observatory/backend/internal/user/domain"
)

func init() { gin.SetMode(gin.TestMode) }

func serve(r *gin.Engine, method, path string, header http.Header) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, nil)
	for k, v := range header {
		req.Header[k] = v
	}
	r.ServeHTTP(rec, req)
	return rec
}

func TestExtractBearer(t *testing.T) {
	testCases := []struct {
		header string
		want   string
	}{
		{"Bearer abc", "abc"},
		{"bearer  abc ", "abc"},
		{"BEARER abc", "abc"},
		{"Basic abc", ""},
		{"Bearer", ""},
		{"", ""},
	}
	for _, tc := range testCases {
		if got := extractBearer(tc.header); got != tc.want {
			t.Errorf("extractBearer(%q) = %q, want %q", tc.header, got, tc.want)
		}
	}
}

func TestAuthenticate(t *testing.T) {
	tokens, err := security.NewTestTokenProvider()
	if err != nil {
		t.Fatalf("NewTestTokenProvider: %v", err)
	}
	sessions := sessionrepo.NewMemoryRepository()
	ctx := context.Background()
	if err := sessions.Create(ctx, &sessiondomain.Session{ID: "s1", UserID: "u1", Role: "astronomer", ExpiresAt: time.Now().Add(time.Hour)}); err != nil {
		t.Fatalf("Create session: %v", err)
	}
	valid, err := tokens.IssueAccess("s1", "u1", "astronomer")
	if err != nil {
		t.Fatalf("IssueAccess: %v", err)
	}
	orphan, err := tokens.IssueAccess("gone", "u1", "astronomer")
	if err != nil {
		t.Fatalf("IssueAccess: %v", err)
	}

	r := gin.New()
	r.GET("/me", Authenticate(tokens, sessions), func(c *gin.Context) {
		p := httpx.Principal(c)
		c.JSON(http.StatusOK, gin.H{"user_id": p.UserID, "role": p.Role, "session_id": p.SessionID})
	})

	testCases := []struct {
		name   string
		header string
		want   int
	}{
		{"no header", "", http.StatusUnauthorized},
		{"garbage token", "Bearer nope", http.StatusUnauthorized},
		{"revoked session", "Bearer " + orphan.Token, http.StatusUnauthorized},
		{"valid", "Bearer " + valid.Token, http.StatusOK},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			h := http.Header{}
			if tc.header != "" {
				h.Set("Authorization", tc.header)
			}
			rec := serve(r, http.MethodGet, "/me", h)
			if rec.Code != tc.want {
				t.Fatalf("status = %d, want %d: %s", rec.Code, tc.want, rec.Body.String())
			}
			if tc.want == http.StatusOK && rec.Body.String() != `{"role":"astronomer","session_id":"s1","user_id":"u1"}` {
				t.Errorf("body = %s", rec.Body.String())
			}
		})
	}
}

type stubAuthorizer struct {
	allow bool
	err   error
}

func (s stubAuthorizer) Allow(context.Context, userdomain.Role, rbac.Action) (bool, error) {
	return s.allow, s.err
}

func TestRequireAction(t *testing.T) {
	testCases := []struct {
		name  string
		authz stubAuthorizer
		want  int
	}{
		{"allowed", stubAuthorizer{allow: true}, http.StatusOK},
		{"denied", stubAuthorizer{}, http.StatusForbidden},
		{"policy error", stubAuthorizer{err: errors.New("eval failed")}, http.StatusInternalServerError},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			r := gin.New()
			r.Use(RequestContext(logging.Discard()))
			r.GET("/x", RequireAction(tc.authz, rbac.ActionAuditRead), func(c *gin.Context) { c.Status(http.StatusOK) })
			if rec := serve(r, http.MethodGet, "/x", nil); rec.Code != tc.want {
				t.Errorf("status = %d, want %d", rec.Code, tc.want)
			}
		})
	}
}

func TestRequireAction_OPAPolicy(t *testing.T) {
	authz, err := rbac.NewOPAAuthorizer(context.Background())
	if err != nil {
		t.Fatalf("NewOPAAuthorizer: %v", err)
	}
	r := gin.New()
	r.GET("/audit/:role", func(c *gin.Context) {
		p := rbac.Principal{UserID: "u", Role: userdomain.Role(c.Param("role"))}
		c.Request = c.Request.WithContext(rbac.WithPrincipal(c.Request.Context(), p))
	}, RequireAction(authz, rbac.ActionAuditRead), func(c *gin.Context) { c.Status(http.StatusOK) })

	if rec := serve(r, http.MethodGet, "/audit/support_staff", nil); rec.Code != http.StatusOK {
		t.Errorf("support_staff audit.read = %d, want 200", rec.Code)
	}
	if rec := serve(r, http.MethodGet, "/audit/astronomer", nil); rec.Code != http.StatusForbidden {
		t.Errorf("astronomer audit.read = %d, want 403", rec.Code)
	}
}

func TestCORS(t *testing.T) {
	r := gin.New()
	r.Use(CORS([]string{"http://localhost:3000"}))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	h := http.Header{}
	h.Set("Origin", "http://localhost:3000")
	rec := serve(r, http.MethodOptions, "/x", h)
	if rec.Code != http.StatusNoContent {
		t.Errorf("preflight status = %d, want 204", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
		t.Errorf("allow origin = %q", got)
	}

	h.Set("Origin", "http://evil.test")
	rec = serve(r, http.MethodGet, "/x", h)
	if rec.Code != http.StatusOK || rec.Header().Get("Access-Control-Allow-Origin") != "" {
		t.Errorf("unknown origin: status %d, allow origin %q", rec.Code, rec.Header().Get("Access-Control-Allow-Origin"))
	}
}

func TestRequestContext_RequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestContext(logging.Discard()))
	r.GET("/x", func(c *gin.Context) {
		c.String(http.StatusOK, audit.ClientIP(c.Request.Context()))
	})

	rec := serve(r, http.MethodGet, "/x", nil)
	if rec.Header().Get(requestIDHeader) == "" {
		t.Error("request id should be generated")
	}
	if rec.Body.String() == "unknown" {
		t.Error("client IP should be set on the context")
	}

	h := http.Header{}
	h.Set(requestIDHeader, "req-42")
	rec = serve(r, http.MethodGet, "/x", h)
	if got := rec.Header().Get(requestIDHeader); got != "req-42" {
		t.Errorf("request id = %q, want req-42", got)
	}
}

func withPrincipal(p rbac.Principal) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request = c.Request.WithContext(rbac.WithPrincipal(c.Request.Context(), p))
	}
}

func TestAudit(t *testing.T) {
	repo := auditrepo.NewMemoryRepository()
	r := gin.New()
	api := r.Group("/api/v1", Audit(audit.NewLogger(repo)))
	caller := withPrincipal(rbac.Principal{UserID: "u1", Role: userdomain.RoleScienceObserver})
	api.POST("/programs/:id/approve", caller, func(c *gin.Context) { c.Status(http.StatusOK) })
	api.GET("/programs/:id", caller, func(c *gin.Context) { c.Status(http.StatusOK) })
	api.POST("/auth/login", func(c *gin.Context) { c.Status(http.StatusOK) })

	serve(r, http.MethodPost, "/api/v1/programs/p1/approve", nil)
	serve(r, http.MethodGet, "/api/v1/programs/p1", nil)
	serve(r, http.MethodPost, "/api/v1/auth/login", nil)

	logs, err := repo.List(context.Background(), auditrepo.Filter{}, 10, 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(logs) != 1 {
		t.Fatalf("audit entries = %d, want 1", len(logs))
	}
	got := logs[0]
	if got.UserID != "u1" || got.Action != "approve" || got.Resource != "program" || got.ResourceID != "p1" {
		t.Errorf("entry = %+v", got)
	}
	if got.Metadata != `{"status":200}` {
		t.Errorf("metadata = %q", got.Metadata)
	}
}

type captureEmitter struct {
	mu     sync.Mutex
	events []*telemetry.Event
	done   chan struct{}
}

func (c *captureEmitter) Emit(_ context.Context, e *telemetry.Event) error {
	c.mu.Lock()
	c.events = append(c.events, e)
	c.mu.Unlock()
	c.done <- struct{}{}
	return nil
}

func TestTelemetry(t *testing.T) {
	em := &captureEmitter{done: make(chan struct{}, 1)}
	r := gin.New()
	r.Use(RequestContext(logging.Discard()), Telemetry(em, "api"))
	r.GET("/api/v1/plans/:id", withPrincipal(rbac.Principal{UserID: "u1", Role: userdomain.RoleAstronomer, SessionID: "s1"}),
		func(c *gin.Context) { c.Status(http.StatusNotFound) })

	serve(r, http.MethodGet, "/api/v1/plans/p1", nil)
	select {
	case <-em.done:
	case <-time.After(2 * time.Second):
		t.Fatal("telemetry event not emitted")
	}
	em.mu.Lock()
	defer em.mu.Unlock()
	ev := em.events[0]
	if ev.EventType != telemetry.EventHTTPRequest || ev.Route != "/api/v1/plans/:id" || ev.Status != http.StatusNotFound {
		t.Errorf("event = %+v", ev)
	}
	if ev.UserID != "u1" || ev.Role != "astronomer" || ev.RequestID == "" {
		t.Errorf("event identity = %+v", ev)
	}
}

func TestMetricsMiddleware(t *testing.T) {
	m := metrics.New()
	r := gin.New()
	r.Use(Metrics(m))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/metrics", gin.WrapH(m.Handler()))

	serve(r, http.MethodGet, "/x", nil)
	serve(r, http.MethodGet, "/missing", nil)
	body := serve(r, http.MethodGet, "/metrics", nil).Body.String()
	for _, want := range []string{`route="/x"`, `route="unmatched"`} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics output missing %s", want)
		}
	}
}
