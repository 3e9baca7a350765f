package logger

import (
	"context"
	"log/slog"
	"time"
)

// AuditEvent represents a security audit event
type AuditEvent struct {
	EventType     string
	UserID        string
	Username      string
	IPAddress     string
	Success       bool
	FailureReason string
}

// AuditLogger writes audit records through the application logger.
type AuditLogger struct {
	logger *slog.Logger
	now    func() time.Time
}

// NewAuditLogger creates a new audit logger
func NewAuditLogger(logger *slog.Logger) *AuditLogger {
	return &AuditLogger{
		logger: logger,
		now:    time.Now,
	}
}

// LogAuthAttempt logs login and registration attempts. Failures are
// written at warn level.
func (al *AuditLogger) LogAuthAttempt(ctx context.Context, event AuditEvent) {
	attrs := al.base("auth", event.EventType)
	attrs = append(attrs, slog.Bool("success", event.Success))

	if event.UserID != "" {
		attrs = append(attrs, slog.String("user_id", event.UserID))
	}
	if event.Username != "" {
		attrs = append(attrs, slog.String("username", event.Username))
	}
	if event.IPAddress != "" {
		attrs = append(attrs, slog.String("ip_address", event.IPAddress))
	}
	if event.FailureReason != "" {
		attrs = append(attrs, slog.String("failure_reason", event.FailureReason))
	}

	al.write(ctx, event.Success, attrs)
}

// LogPasswordChange logs password change and reset events
func (al *AuditLogger) LogPasswordChange(ctx context.Context, eventType, userID string, success bool) {
	attrs := al.base("password", eventType)
	attrs = append(attrs,
		slog.Bool("success", success),
		slog.String("user_id", userID),
	)
	al.write(ctx, success, attrs)
}

func (al *AuditLogger) base(auditType, eventType string) []slog.Attr {
	return []slog.Attr{
		slog.String("audit_type", auditType),
		slog.String("event_type", eventType),
		slog.String("timestamp", al.now().UTC().Format(time.RFC3339)),
	}
}

func (al *AuditLogger) write(ctx context.Context, success bool, attrs []slog.Attr) {
	level := slog.LevelInfo
	if !success {
		level = slog.LevelWarn
	}
	al.logger.LogAttrs(ctx, level, "audit", attrs...)
}
