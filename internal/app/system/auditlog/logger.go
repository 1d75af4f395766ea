// internal/app/system/auditlog/logger.go
package auditlog

import (
	"context"
	"net/http"
	"strconv"

	"github.com/dalemusser/pastoralhub/internal/app/store/audit"
	"github.com/dalemusser/pastoralhub/internal/app/system/ratelimit"
	"go.uber.org/zap"
)

// Config holds audit logging configuration.
type Config struct {
	// Auth controls logging for authentication events (login, logout, password).
	// Values: "all" (MongoDB + zap), "db" (MongoDB only), "log" (zap only), "off" (disabled)
	Auth string
	// Admin controls logging for administrative events (deletions, restores, user changes).
	// Values: "all" (MongoDB + zap), "db" (MongoDB only), "log" (zap only), "off" (disabled)
	Admin string
}

// Logger provides convenience methods for logging audit events.
// It logs to both MongoDB (via audit.Store) and structured logs (via zap).
type Logger struct {
	store  *audit.Store
	zapLog *zap.Logger
	config Config
}

// New creates a new audit Logger.
func New(store *audit.Store, zapLog *zap.Logger, config Config) *Logger {
	return &Logger{
		store:  store,
		zapLog: zapLog,
		config: config,
	}
}

func (l *Logger) logToZap(event audit.Event) {
	fields := []zap.Field{
		zap.Bool("audit", true),
		zap.String("category", event.Category),
		zap.String("event_type", event.EventType),
		zap.Bool("success", event.Success),
	}
	if event.IP != "" {
		fields = append(fields, zap.String("ip", event.IP))
	}
	if event.ActorID != "" {
		fields = append(fields, zap.String("actor_id", event.ActorID))
	}
	if event.EntityKind != "" {
		fields = append(fields, zap.String("entity_kind", event.EntityKind), zap.String("entity_id", event.EntityID))
	}
	if event.FailureReason != "" {
		fields = append(fields, zap.String("failure_reason", event.FailureReason))
	}
	for k, v := range event.Details {
		fields = append(fields, zap.String("detail_"+k, v))
	}

	if event.Success {
		l.zapLog.Info("audit event", fields...)
	} else {
		l.zapLog.Warn("audit event", fields...)
	}
}

// Log records an audit event based on configuration.
// A nil Logger is a no-op so tests and optional wiring can pass nil.
func (l *Logger) Log(ctx context.Context, event audit.Event) {
	if l == nil {
		return
	}

	var setting string
	switch event.Category {
	case audit.CategoryAuth:
		setting = l.config.Auth
	case audit.CategoryAdmin:
		setting = l.config.Admin
	default:
		setting = "all"
	}
	if setting == "" {
		setting = "all"
	}
	if setting == "off" {
		return
	}

	if setting == "all" || setting == "log" {
		l.logToZap(event)
	}

	if (setting == "all" || setting == "db") && l.store != nil {
		if err := l.store.Log(ctx, event); err != nil {
			l.zapLog.Error("failed to store audit event",
				zap.Error(err),
				zap.String("event_type", event.EventType),
			)
		}
	}
}

func requestEvent(r *http.Request, category, eventType string) audit.Event {
	e := audit.Event{Category: category, EventType: eventType, Success: true}
	if r != nil {
		e.IP = ratelimit.ClientIP(r)
		e.UserAgent = r.UserAgent()
	}
	return e
}

// --- Authentication Events ---

// LoginSuccess logs a successful sign-in.
func (l *Logger) LoginSuccess(ctx context.Context, r *http.Request, uid, email string) {
	e := requestEvent(r, audit.CategoryAuth, audit.EventLoginSuccess)
	e.ActorID = uid
	e.Details = map[string]string{"email": email}
	l.Log(ctx, e)
}

// LoginFailed logs a failed sign-in attempt.
func (l *Logger) LoginFailed(ctx context.Context, r *http.Request, eventType, email, reason string) {
	e := requestEvent(r, audit.CategoryAuth, eventType)
	e.Success = false
	e.FailureReason = reason
	e.Details = map[string]string{"email": email}
	l.Log(ctx, e)
}

func (l *Logger) Logout(ctx context.Context, r *http.Request, uid string) {
	e := requestEvent(r, audit.CategoryAuth, audit.EventLogout)
	e.ActorID = uid
	l.Log(ctx, e)
}

func (l *Logger) PasswordChanged(ctx context.Context, r *http.Request, uid string) {
	e := requestEvent(r, audit.CategoryAuth, audit.EventPasswordChanged)
	e.ActorID = uid
	l.Log(ctx, e)
}

// PasswordChangeRefused logs a password change refused because the sign-in is stale.
func (l *Logger) PasswordChangeRefused(ctx context.Context, r *http.Request, uid string) {
	e := requestEvent(r, audit.CategoryAuth, audit.EventPasswordChangeRefused)
	e.ActorID = uid
	e.Success = false
	e.FailureReason = "requires recent login"
	l.Log(ctx, e)
}

// MasterBootstrapped logs creation of the master profile on first sign-in.
func (l *Logger) MasterBootstrapped(ctx context.Context, uid, email string) {
	l.Log(ctx, audit.Event{
		Category:  audit.CategoryAuth,
		EventType: audit.EventMasterBootstrapped,
		ActorID:   uid,
		Success:   true,
		Details:   map[string]string{"email": email},
	})
}

// --- Admin Events ---

// CommunitiesSeeded logs how many seed communities were created.
func (l *Logger) CommunitiesSeeded(ctx context.Context, actorID string, created int) {
	l.Log(ctx, audit.Event{
		Category:  audit.CategoryAdmin,
		EventType: audit.EventCommunitySeeded,
		ActorID:   actorID,
		Success:   true,
		Details:   map[string]string{"created": strconv.Itoa(created)},
	})
}

// DeletionRequested logs a soft delete (entity moved to pending deletion).
func (l *Logger) DeletionRequested(ctx context.Context, r *http.Request, actorID, kind, id string) {
	e := requestEvent(r, audit.CategoryAdmin, audit.EventDeletionRequested)
	e.ActorID, e.EntityKind, e.EntityID = actorID, kind, id
	l.Log(ctx, e)
}

// Deleted logs a hard delete.
func (l *Logger) Deleted(ctx context.Context, r *http.Request, actorID, kind, id string) {
	e := requestEvent(r, audit.CategoryAdmin, audit.EventDeleted)
	e.ActorID, e.EntityKind, e.EntityID = actorID, kind, id
	l.Log(ctx, e)
}

// Restored logs a pending deletion being reverted.
func (l *Logger) Restored(ctx context.Context, r *http.Request, actorID, kind, id string) {
	e := requestEvent(r, audit.CategoryAdmin, audit.EventRestored)
	e.ActorID, e.EntityKind, e.EntityID = actorID, kind, id
	l.Log(ctx, e)
}

func (l *Logger) UserCreated(ctx context.Context, r *http.Request, actorID, uid, email string) {
	e := requestEvent(r, audit.CategoryAdmin, audit.EventUserCreated)
	e.ActorID, e.EntityKind, e.EntityID = actorID, "user", uid
	e.Details = map[string]string{"email": email}
	l.Log(ctx, e)
}

func (l *Logger) UserUpdated(ctx context.Context, r *http.Request, actorID, uid string) {
	e := requestEvent(r, audit.CategoryAdmin, audit.EventUserUpdated)
	e.ActorID, e.EntityKind, e.EntityID = actorID, "user", uid
	l.Log(ctx, e)
}
