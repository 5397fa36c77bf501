package server

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"gemini-observatory/backend/internal/audit"
	"gemini-observatory/backend/internal/logging"
	"gemini-observatory/backend/internal/metrics"
	"gemini-observatory/backend/internal/platform/httpx"
	"gemini-observatory/backend/internal/platform/rbac"
	"gemini-observatory/backend/internal/security"
	sessiondomain "gemini-observatory/backend/internal/session/domain"
	"gemini-observatory/backend/internal/telemetry"
	userdomain "gemini-observatory/backend/internal/user/domain"
)

const (
	bearerPrefix    = "bearer "
	requestIDHeader = "X-Request-ID"
)

// TokenValidator validates access tokens.
type TokenValidator interface {
	ValidateAccess(token string) (security.Claims, error)
}

// SessionGetter loads sessions so logged-out tokens are rejected.
type SessionGetter interface {
	GetByID(ctx context.Context, id string) (*sessiondomain.Session, error)
}

// RequestContext assigns a request id, attaches a request-scoped logger and the client IP to the
// request context, and writes one access log line per request.
func RequestContext(log logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		reqID := c.GetHeader(requestIDHeader)
		if reqID == "" {
			reqID = uuid.New().String()
		}
		c.Header(requestIDHeader, reqID)

		entry := log.WithField("request_id", reqID)
		ctx := logging.WithLogger(c.Request.Context(), entry)
		ctx = audit.WithClientIP(ctx, c.ClientIP())
		c.Request = c.Request.WithContext(ctx)

		c.Next()

		fields := logrus.Fields{
			"method":  c.Request.Method,
			"path":    c.Request.URL.Path,
			"status":  c.Writer.Status(),
			"latency": time.Since(start).String(),
		}
		if p, ok := rbac.PrincipalFrom(c.Request.Context()); ok {
			fields["user_id"] = p.UserID
		}
		switch status := c.Writer.Status(); {
		case status >= http.StatusInternalServerError:
			entry.WithFields(fields).Error("request")
		case status >= http.StatusBadRequest:
			entry.WithFields(fields).Warn("request")
		default:
			entry.WithFields(fields).Info("request")
		}
	}
}

// CORS allows the configured browser origins and answers preflight requests.
func CORS(origins []string) gin.HandlerFunc {
	allowed := make(map[string]bool, len(origins))
	for _, o := range origins {
		allowed[o] = true
	}
	return func(c *gin.Context) {
		if origin := c.GetHeader("Origin"); allowed[origin] {
			h := c.Writer.Header()
			h.Set("Access-Control-Allow-Origin", origin)
			h.Set("Access-Control-Allow-Credentials", "true")
			h.Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization, X-Request-ID")
			h.Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
			h.Set("Access-Control-Expose-Headers", "X-Request-ID, X-Checksum-Sha256, Content-Disposition")
			h.Add("Vary", "Origin")
		}
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

// Metrics records request count and latency by matched route.
func Metrics(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.ObserveHTTP(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}

// Authenticate requires a valid Bearer access token whose session still exists, and puts the
// caller's Principal on the request context.
func Authenticate(tokens TokenValidator, sessions SessionGetter) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractBearer(c.GetHeader("Authorization"))
		if token == "" {
			httpx.Error(c, http.StatusUnauthorized, "missing or invalid authorization")
			return
		}
		claims, err := tokens.ValidateAccess(token)
		if err != nil {
			httpx.Error(c, http.StatusUnauthorized, "missing or invalid authorization")
			return
		}
		ctx := c.Request.Context()
		sess, err := sessions.GetByID(ctx, claims.SessionID)
		if err != nil {
			httpx.Fail(c, err, "failed to load session")
			return
		}
		if sess == nil || sess.UserID != claims.UserID || sess.Expired(time.Now().UTC()) {
			httpx.Error(c, http.StatusUnauthorized, "session expired or revoked")
			return
		}
		p := rbac.Principal{UserID: claims.UserID, Role: userdomain.Role(claims.Role), SessionID: claims.SessionID}
		ctx = rbac.WithPrincipal(ctx, p)
		ctx = logging.WithLogger(ctx, logging.FromContext(ctx).WithField("user_id", p.UserID))
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// RequireAction rejects callers whose role may not perform action.
func RequireAction(authz rbac.Authorizer, action rbac.Action) gin.HandlerFunc {
	return func(c *gin.Context) {
		p := httpx.Principal(c)
		ok, err := authz.Allow(c.Request.Context(), p.Role, action)
		if err != nil {
			httpx.Fail(c, err, "failed to evaluate authorization policy")
			return
		}
		if !ok {
			logging.FromContext(c.Request.Context()).WithFields(logrus.Fields{
				"role":   p.Role,
				"action": action,
			}).Info("authz: denied")
			httpx.Error(c, http.StatusForbidden, "forbidden")
			return
		}
		c.Next()
	}
}

// Audit writes one audit log entry after every authenticated mutating request.
func Audit(logger audit.AuditLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		if !audit.Mutating(c.Request.Method) || c.FullPath() == "" {
			return
		}
		p, ok := rbac.PrincipalFrom(c.Request.Context())
		if !ok {
			return
		}
		ar := audit.ParseRoute(c.Request.Method, c.FullPath())
		resourceID := c.Param("id")
		if resourceID == "" {
			resourceID = c.Param("name")
		}
		meta := fmt.Sprintf(`{"status":%d}`, c.Writer.Status())
		logger.LogEvent(c.Request.Context(), p.UserID, ar.Action, ar.Resource, resourceID, meta)
	}
}

// Telemetry emits one http_request event per API call without blocking the response.
func Telemetry(emitter telemetry.EventEmitter, source string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if emitter == nil {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()
		ev := &telemetry.Event{
			EventType: telemetry.EventHTTPRequest,
			Source:    source,
			RequestID: c.Writer.Header().Get(requestIDHeader),
			Method:    c.Request.Method,
			Route:     c.FullPath(),
			Status:    c.Writer.Status(),
			LatencyMS: time.Since(start).Milliseconds(),
			ClientIP:  c.ClientIP(),
			CreatedAt: start.UTC(),
		}
		if p, ok := rbac.PrincipalFrom(c.Request.Context()); ok {
			ev.UserID, ev.SessionID, ev.Role = p.UserID, p.SessionID, string(p.Role)
		}
		telemetry.EmitAsync(c.Request.Context(), emitter, ev)
	}
}

// extractBearer returns the token from an Authorization header value, or "" if missing or malformed.
func extractBearer(header string) string {
	v := strings.TrimSpace(header)
	if len(v) < len(bearerPrefix) || !strings.EqualFold(v[:len(bearerPrefix)], bearerPrefix) {
		return ""
	}
	return strings.TrimSpace(v[len(bearerPrefix):])
}
