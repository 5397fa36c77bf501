// Package audit records who changed what. Entries are written best-effort: a failed write is
// logged and never fails the caller.
package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"gemini-observatory/backend/internal/audit/domain"
	auditrepo "gemini-observatory/backend/internal/audit/repository"
	"gemini-observatory/backend/internal/logging"
)

type contextKey struct{ name string }

var clientIPKey = contextKey{"client_ip"}

// WithClientIP returns a context carrying the caller's IP address.
func WithClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, clientIPKey, ip)
}

// ClientIP returns the IP set by WithClientIP, or "unknown".
func ClientIP(ctx context.Context) string {
	if ip, ok := ctx.Value(clientIPKey).(string); ok && ip != "" {
		return ip
	}
	return "unknown"
}

// AuditLogger writes a single audit event with explicit action and resource.
type AuditLogger interface {
	LogEvent(ctx context.Context, userID, action, resource, resourceID, metadata string)
}

// Logger implements AuditLogger using the audit repository.
type Logger struct {
	repo auditrepo.Repository
	now  func() time.Time
}

// NewLogger returns an AuditLogger that persists to repo. A nil repo disables auditing.
func NewLogger(repo auditrepo.Repository) *Logger {
	return &Logger{repo: repo, now: func() time.Time { return time.Now().UTC() }}
}

// LogEvent writes one audit log entry. Best-effort: errors are logged and not returned.
func (l *Logger) LogEvent(ctx context.Context, userID, action, resource, resourceID, metadata string) {
	if l == nil || l.repo == nil {
		return
	}
	entry := &domain.AuditLog{
		ID:         uuid.New().String(),
		UserID:     userID,
		Action:     action,
		Resource:   resource,
		ResourceID: resourceID,
		IP:         ClientIP(ctx),
		Metadata:   metadata,
		CreatedAt:  l.now(),
	}
	if err := l.repo.Create(ctx, entry); err != nil {
		logging.FromContext(ctx).WithError(err).WithFields(logrus.Fields{
			"action":   action,
			"resource": resource,
		}).Warn("audit: failed to log event")
	}
}

// List returns audit entries newest first.
func (l *Logger) List(ctx context.Context, f auditrepo.Filter, limit, offset int) ([]*domain.AuditLog, error) {
	out, err := l.repo.List(ctx, f, limit, offset)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []*domain.AuditLog{}
	}
	return out, nil
}
