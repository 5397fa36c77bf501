// Package server assembles the HTTP API and the gRPC health server.
package server

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"gemini-observatory/backend/internal/audit"
	audithandler "gemini-observatory/backend/internal/audit/handler"
	executionhandler "gemini-observatory/backend/internal/execution/handler"
	"gemini-observatory/backend/internal/health"
	identityhandler "gemini-observatory/backend/internal/identity/handler"
	"gemini-observatory/backend/internal/metrics"
	observationhandler "gemini-observatory/backend/internal/observation/handler"
	planhandler "gemini-observatory/backend/internal/plan/handler"
	"gemini-observatory/backend/internal/platform/rbac"
	programhandler "gemini-observatory/backend/internal/program/handler"
	progresshandler "gemini-observatory/backend/internal/progress/handler"
	starhandler "gemini-observatory/backend/internal/starsystem/handler"
	"gemini-observatory/backend/internal/telemetry"
	userhandler "gemini-observatory/backend/internal/user/handler"
)

// Handlers are the per-domain HTTP handlers mounted under /api/v1.
type Handlers struct {
	Auth         *identityhandler.AuthHandler
	Users        *userhandler.Handler
	Stars        *starhandler.Handler
	Plans        *planhandler.Handler
	Programs     *programhandler.Handler
	Execution    *executionhandler.Handler
	Observations *observationhandler.Handler
	Progress     *progresshandler.Handler
	Audit        *audithandler.Handler
}

// RouterConfig carries the cross-cutting dependencies of the router.
type RouterConfig struct {
	Tokens      TokenValidator
	Sessions    SessionGetter
	Authz       rbac.Authorizer
	Audit       audit.AuditLogger
	Telemetry   telemetry.EventEmitter
	Metrics     *metrics.Metrics
	Health      *health.Checker
	CORSOrigins []string
	Log         logrus.FieldLogger
}

// NewRouter builds the gin engine with every API route, /metrics, /healthz and /readyz.
func NewRouter(cfg RouterConfig, h Handlers) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), RequestContext(cfg.Log), CORS(cfg.CORSOrigins), Metrics(cfg.Metrics))

	r.GET("/healthz", cfg.Health.Liveness)
	r.GET("/readyz", cfg.Health.Readiness)
	if cfg.Metrics != nil {
		r.GET("/metrics", gin.WrapH(cfg.Metrics.Handler()))
	}

	api := r.Group("/api/v1", Telemetry(cfg.Telemetry, "api"), Audit(cfg.Audit))
	api.POST("/auth/login", h.Auth.Login)
	api.POST("/auth/refresh", h.Auth.Refresh)

	authed := api.Group("", Authenticate(cfg.Tokens, cfg.Sessions))
	can := func(a rbac.Action) gin.HandlerFunc { return RequireAction(cfg.Authz, a) }

	authed.POST("/auth/logout", h.Auth.Logout)
	authed.POST("/auth/password", h.Auth.ChangePassword)

	authed.GET("/users/me", h.Users.Me)
	users := authed.Group("/users", can(rbac.ActionUserManage))
	users.GET("", h.Users.List)
	users.POST("", h.Users.Create)
	users.PATCH("/:id/role", h.Users.SetRole)
	users.PATCH("/:id/status", h.Users.SetStatus)

	authed.GET("/star-systems", can(rbac.ActionCatalogRead), h.Stars.List)
	authed.GET("/star-systems/:name", can(rbac.ActionCatalogRead), h.Stars.Get)
	authed.GET("/telescope/sites", can(rbac.ActionCatalogRead), h.Stars.Sites)

	authed.POST("/plans", can(rbac.ActionPlanCreate), h.Plans.Create)
	authed.GET("/plans", can(rbac.ActionPlanRead), h.Plans.List)
	authed.GET("/plans/:id", can(rbac.ActionPlanRead), h.Plans.Get)
	authed.PUT("/plans/:id", can(rbac.ActionPlanUpdate), h.Plans.Update)
	authed.DELETE("/plans/:id", can(rbac.ActionPlanDelete), h.Plans.Delete)
	authed.POST("/plans/:id/simulate", can(rbac.ActionPlanSimulate), h.Plans.Simulate)
	authed.POST("/plans/:id/validate", can(rbac.ActionPlanValidate), h.Plans.Validate)
	authed.GET("/plans/:id/validations", can(rbac.ActionPlanRead), h.Plans.Results)
	authed.POST("/plans/:id/program", can(rbac.ActionProgramSubmit), h.Programs.Submit)
	authed.GET("/plans/:id/program", can(rbac.ActionProgramRead), h.Programs.ForPlan)

	authed.GET("/programs", can(rbac.ActionProgramRead), h.Programs.List)
	authed.GET("/programs/:id", can(rbac.ActionProgramRead), h.Programs.Get)
	authed.POST("/programs/:id/approve", can(rbac.ActionProgramReview), h.Programs.Approve)
	authed.POST("/programs/:id/reject", can(rbac.ActionProgramReview), h.Programs.Reject)
	authed.POST("/programs/:id/execute", can(rbac.ActionProgramExecute), h.Execution.Execute)
	authed.POST("/programs/:id/frames", can(rbac.ActionProgramCapture), h.Execution.Capture)
	authed.POST("/programs/:id/abort", can(rbac.ActionProgramAbort), h.Execution.Abort)
	authed.GET("/programs/:id/observations", can(rbac.ActionObservationRead), h.Observations.List)
	authed.GET("/programs/:id/progress", can(rbac.ActionProgressRead), h.Progress.Snapshot)
	authed.GET("/programs/:id/progress/stream", can(rbac.ActionProgressRead), h.Progress.StreamProgram)
	authed.GET("/progress/stream", can(rbac.ActionProgressRead), h.Progress.StreamAll)

	authed.GET("/observations/:id/content", can(rbac.ActionObservationRead), h.Observations.Content)

	authed.GET("/audit-logs", can(rbac.ActionAuditRead), h.Audit.List)

	return r
}
