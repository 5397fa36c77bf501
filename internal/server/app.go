package server

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"gemini-observatory/backend/internal/audit"
	audithandler "gemini-observatory/backend/internal/audit/handler"
	auditrepo "gemini-observatory/backend/internal/audit/repository"
	"gemini-observatory/backend/internal/execution"
	executionhandler "gemini-observatory/backend/internal/execution/handler"
	"gemini-observatory/backend/internal/health"
	identityhandler "gemini-observatory/backend/internal/identity/handler"
	identityrepo "gemini-observatory/backend/internal/identity/repository"
	identityservice "gemini-observatory/backend/internal/identity/service"
	"gemini-observatory/backend/internal/metrics"
	observationhandler "gemini-observatory/backend/internal/observation/handler"
	obsrepo "gemini-observatory/backend/internal/observation/repository"
	obsservice "gemini-observatory/backend/internal/observation/service"
	"gemini-observatory/backend/internal/observation/storage"
	planhandler "gemini-observatory/backend/internal/plan/handler"
	planrepo "gemini-observatory/backend/internal/plan/repository"
	planservice "gemini-observatory/backend/internal/plan/service"
	"gemini-observatory/backend/internal/platform/rbac"
	programhandler "gemini-observatory/backend/internal/program/handler"
	programrepo "gemini-observatory/backend/internal/program/repository"
	programservice "gemini-observatory/backend/internal/program/service"
	"gemini-observatory/backend/internal/progress"
	progresshandler "gemini-observatory/backend/internal/progress/handler"
	"gemini-observatory/backend/internal/security"
	sessionrepo "gemini-observatory/backend/internal/session/repository"
	"gemini-observatory/backend/internal/starsystem/cache"
	starhandler "gemini-observatory/backend/internal/starsystem/handler"
	starrepo "gemini-observatory/backend/internal/starsystem/repository"
	starservice "gemini-observatory/backend/internal/starsystem/service"
	"gemini-observatory/backend/internal/telemetry"
	"gemini-observatory/backend/internal/telescope"
	userhandler "gemini-observatory/backend/internal/user/handler"
	userrepo "gemini-observatory/backend/internal/user/repository"
	userservice "gemini-observatory/backend/internal/user/service"
)

// Backends are the external systems the API can use. A nil field selects the in-process
// replacement: memory repositories, memory sessions and cache, memory object store.
type Backends struct {
	DB        *sqlx.DB
	Redis     *redis.Client
	Objects   storage.Storage
	Sinks     []progress.Sink
	Telemetry telemetry.EventEmitter
}

// Options configure the application independent of its backends.
type Options struct {
	Tokens      *security.TokenProvider
	BcryptCost  int
	Execution   execution.Config
	CORSOrigins []string
	Metrics     *metrics.Metrics
	Log         logrus.FieldLogger
}

// App is the assembled API: the router plus the long-running parts the caller starts and stops.
type App struct {
	Router *gin.Engine
	Engine *execution.Engine
	Health *health.Checker
	Auth   *identityservice.AuthService
	Stars  *starservice.Service
	Hub    *progress.Hub
}

type repositories struct {
	users        userrepo.Repository
	identities   identityrepo.Repository
	sessions     sessionrepo.Repository
	stars        starrepo.Repository
	starCache    cache.Cache
	plans        planrepo.Repository
	programs     programrepo.Repository
	observations obsrepo.Repository
	audit        auditrepo.Repository
}

func newRepositories(b Backends) repositories {
	var r repositories
	if b.DB != nil {
		r.users = userrepo.NewPostgresRepository(b.DB)
		r.identities = identityrepo.NewPostgresRepository(b.DB)
		r.stars = starrepo.NewPostgresRepository(b.DB)
		r.plans = planrepo.NewPostgresRepository(b.DB)
		r.programs = programrepo.NewPostgresRepository(b.DB)
		r.observations = obsrepo.NewPostgresRepository(b.DB)
		r.audit = auditrepo.NewPostgresRepository(b.DB)
	} else {
		plans := planrepo.NewMemoryRepository()
		users := userrepo.NewMemoryRepository()
		r.users = users
		r.identities = identityrepo.NewMemoryRepository(users)
		r.stars = starrepo.NewMemoryRepository()
		r.plans = plans
		r.programs = programrepo.NewMemoryRepository(plans)
		r.observations = obsrepo.NewMemoryRepository()
		r.audit = auditrepo.NewMemoryRepository()
	}
	if b.Redis != nil {
		r.sessions = sessionrepo.NewRedisRepository(b.Redis)
		r.starCache = cache.NewRedisCache(b.Redis, cache.DefaultTTL)
	} else {
		r.sessions = sessionrepo.NewMemoryRepository()
		r.starCache = cache.NewMemoryCache(cache.DefaultTTL)
	}
	return r
}

// NewApp wires repositories, services, the execution engine and the router.
func NewApp(ctx context.Context, b Backends, o Options) (*App, error) {
	if o.Tokens == nil {
		return nil, fmt.Errorf("app: token provider is required")
	}
	log := o.Log
	if log == nil {
		log = logrus.StandardLogger()
	}
	repos := newRepositories(b)
	objects := b.Objects
	if objects == nil {
		objects = storage.NewMemoryStorage()
	}

	authz, err := rbac.NewOPAAuthorizer(ctx)
	if err != nil {
		return nil, err
	}
	scope, err := telescope.New()
	if err != nil {
		return nil, err
	}

	hub := progress.NewHub(log.WithField("component", "progress"), b.Sinks...)
	auth := identityservice.NewAuthService(repos.users, repos.identities, repos.sessions, security.NewHasher(o.BcryptCost), o.Tokens)
	users := userservice.NewUserService(repos.users, repos.sessions)
	stars := starservice.NewService(repos.stars, repos.starCache, log.WithField("component", "starsystem"))
	plans := planservice.NewService(repos.plans, stars, scope, o.Metrics, log.WithField("component", "plan"))
	programs := programservice.NewService(repos.programs, repos.plans, hub, o.Metrics, log.WithField("component", "program"))
	observations := obsservice.NewService(repos.observations, objects, programs, log.WithField("component", "observation"))
	engine := execution.NewEngine(repos.programs, repos.plans, repos.observations, objects, hub, o.Metrics,
		log.WithField("component", "execution"), o.Execution)
	auditLogger := audit.NewLogger(repos.audit)

	var pinger health.Pinger
	if b.DB != nil {
		pinger = b.DB
	}
	checker := health.NewChecker(pinger, authz, log.WithField("component", "health"))
	if b.Redis != nil {
		checker.Add("redis", func(ctx context.Context) error { return b.Redis.Ping(ctx).Err() })
	}
	if hc, ok := objects.(interface{ HealthCheck(context.Context) error }); ok {
		checker.Add("object_storage", hc.HealthCheck)
	}

	router := NewRouter(RouterConfig{
		Tokens:      o.Tokens,
		Sessions:    repos.sessions,
		Authz:       authz,
		Audit:       auditLogger,
		Telemetry:   b.Telemetry,
		Metrics:     o.Metrics,
		Health:      checker,
		CORSOrigins: o.CORSOrigins,
		Log:         log,
	}, Handlers{
		Auth:         identityhandler.NewAuthHandler(auth),
		Users:        userhandler.NewHandler(users, auth),
		Stars:        starhandler.NewHandler(stars, scope),
		Plans:        planhandler.NewHandler(plans),
		Programs:     programhandler.NewHandler(programs),
		Execution:    executionhandler.NewHandler(engine),
		Observations: observationhandler.NewHandler(observations),
		Progress:     progresshandler.NewHandler(hub, progress.NewTracker(programs)),
		Audit:        audithandler.NewHandler(auditLogger),
	})

	return &App{Router: router, Engine: engine, Health: checker, Auth: auth, Stars: stars, Hub: hub}, nil
}
