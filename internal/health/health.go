// Package health reports liveness and readiness over gRPC (grpc.health.v1) and HTTP.
package health

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

const checkTimeout = 2 * time.Second

// Pinger is used for readiness (e.g. *sqlx.DB).
type Pinger interface {
	PingContext(ctx context.Context) error
}

// PolicyChecker is used for readiness (e.g. the OPA authorizer).
type PolicyChecker interface {
	HealthCheck(ctx context.Context) error
}

// Checker runs the readiness checks. Nil dependencies are skipped.
type Checker struct {
	db     Pinger
	policy PolicyChecker
	extra  map[string]func(context.Context) error
	grpc   *health.Server
	log    logrus.FieldLogger
}

func NewChecker(db Pinger, policy PolicyChecker, log logrus.FieldLogger) *Checker {
	return &Checker{db: db, policy: policy, extra: make(map[string]func(context.Context) error), grpc: health.NewServer(), log: log}
}

// Add registers an additional named readiness check, e.g. object storage.
func (c *Checker) Add(name string, check func(context.Context) error) {
	c.extra[name] = check
}

// GRPCServer is the grpc.health.v1 implementation whose status Watch keeps current.
func (c *Checker) GRPCServer() healthpb.HealthServer {
	return c.grpc
}

// Check returns the first failing readiness check.
func (c *Checker) Check(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, checkTimeout)
	defer cancel()
	if c.db != nil {
		if err := c.db.PingContext(ctx); err != nil {
			return fmt.Errorf("database: %w", err)
		}
	}
	if c.policy != nil {
		if err := c.policy.HealthCheck(ctx); err != nil {
			return fmt.Errorf("policy: %w", err)
		}
	}
	for name, check := range c.extra {
		if err := check(ctx); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	return nil
}

// Refresh runs the checks once and updates the gRPC serving status.
func (c *Checker) Refresh(ctx context.Context) error {
	err := c.Check(ctx)
	st := healthpb.HealthCheckResponse_SERVING
	if err != nil {
		st = healthpb.HealthCheckResponse_NOT_SERVING
	}
	c.grpc.SetServingStatus("", st)
	return err
}

// Watch refreshes the gRPC serving status every interval until ctx is done, then marks it NOT_SERVING.
func (c *Checker) Watch(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	last := "unset"
	for {
		err := c.Refresh(ctx)
		state := ""
		if err != nil {
			state = err.Error()
		}
		if state != last {
			if err != nil {
				c.log.WithError(err).Warn("health: not ready")
			} else {
				c.log.Info("health: ready")
			}
		}
		last = state
		select {
		case <-ctx.Done():
			c.grpc.Shutdown()
			return
		case <-ticker.C:
		}
	}
}

// Liveness handles GET /healthz.
func (c *Checker) Liveness(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Readiness handles GET /readyz.
func (c *Checker) Readiness(ctx *gin.Context) {
	if err := c.Check(ctx.Request.Context()); err != nil {
		c.log.WithError(err).Warn("health: readiness check failed")
		ctx.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"status": "ready"})
}
