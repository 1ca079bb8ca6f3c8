// internal/app/system/auditlog/logger.go
package auditlog

import (
	"context"
	"net/http"

	"github.com/dalemusser/studycircle/internal/app/store/audit"
	"github.com/dalemusser/studycircle/internal/app/system/ratelimit"
	"go.uber.org/zap"
)

// Config holds audit logging configuration.
type Config struct {
	// Membership controls logging for group and session transitions.
	// Values: "all" (store + zap), "db" (store only), "log" (zap only), "off" (disabled)
	Membership string
	// Auth controls logging for register, login and logout events.
	// Values: "all" (store + zap), "db" (store only), "log" (zap only), "off" (disabled)
	Auth string
}

// Logger provides convenience methods for logging audit events.
// It writes to the audit store and to structured logs (via zap).
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

// logToZap logs the event to zap with consistent structure.
func (l *Logger) logToZap(event audit.Event) {
	fields := []zap.Field{
		zap.Bool("audit", true),
		zap.String("category", event.Category),
		zap.String("event_type", event.EventType),
		zap.Bool("success", event.Success),
	}

	if event.ActorID != "" {
		fields = append(fields, zap.String("actor_id", event.ActorID))
	}
	if event.TargetUserID != "" {
		fields = append(fields, zap.String("target_user_id", event.TargetUserID))
	}
	if event.GroupID != "" {
		fields = append(fields, zap.String("group_id", event.GroupID))
	}
	if event.SessionID != "" {
		fields = append(fields, zap.String("session_id", event.SessionID))
	}
	if event.IP != "" {
		fields = append(fields, zap.String("ip", event.IP))
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
// If the logger is nil, this is a no-op (allows tests to use nil audit logger).
// Logging destination is controlled by config: "all", "db", "log", or "off".
func (l *Logger) Log(ctx context.Context, event audit.Event) {
	if l == nil {
		return
	}

	var setting string
	switch event.Category {
	case audit.CategoryAuth:
		setting = l.config.Auth
	case audit.CategoryMembership, audit.CategorySession:
		setting = l.config.Membership
	default:
		setting = "all"
	}

	if setting == "off" || setting == "" {
		return
	}

	if setting == "all" || setting == "log" {
		l.logToZap(event)
	}

	if setting == "all" || setting == "db" {
		if err := l.store.Log(ctx, event); err != nil {
			l.zapLog.Error("failed to store audit event",
				zap.Error(err),
				zap.String("event_type", event.EventType),
			)
		}
	}
}

// --- Membership Events ---

func (l *Logger) membership(ctx context.Context, eventType, actorID, targetID, groupID string, details map[string]string) {
	l.Log(ctx, audit.Event{
		Category:     audit.CategoryMembership,
		EventType:    eventType,
		ActorID:      actorID,
		TargetUserID: targetID,
		GroupID:      groupID,
		Success:      true,
		Details:      details,
	})
}

// GroupCreated logs a new group.
func (l *Logger) GroupCreated(ctx context.Context, actorID, groupID, name string) {
	l.membership(ctx, audit.EventGroupCreated, actorID, "", groupID, map[string]string{"group_name": name})
}

// GroupUpdated logs an edit by the owner.
func (l *Logger) GroupUpdated(ctx context.Context, actorID, groupID string) {
	l.membership(ctx, audit.EventGroupUpdated, actorID, "", groupID, nil)
}

// GroupDeleted logs a deleted group.
func (l *Logger) GroupDeleted(ctx context.Context, actorID, groupID, name string) {
	l.membership(ctx, audit.EventGroupDeleted, actorID, "", groupID, map[string]string{"group_name": name})
}

// MemberJoined logs a direct join to a public group.
func (l *Logger) MemberJoined(ctx context.Context, userID, groupID string) {
	l.membership(ctx, audit.EventMemberJoined, userID, userID, groupID, nil)
}

// JoinRequested logs a pending request on a private group.
func (l *Logger) JoinRequested(ctx context.Context, userID, groupID string) {
	l.membership(ctx, audit.EventJoinRequested, userID, userID, groupID, nil)
}

// RequestApproved logs the owner moving a requester onto the roster.
func (l *Logger) RequestApproved(ctx context.Context, actorID, targetID, groupID string) {
	l.membership(ctx, audit.EventRequestApproved, actorID, targetID, groupID, nil)
}

// RequestRejected logs the owner discarding a request.
func (l *Logger) RequestRejected(ctx context.Context, actorID, targetID, groupID string) {
	l.membership(ctx, audit.EventRequestRejected, actorID, targetID, groupID, nil)
}

// MemberLeft logs a member leaving.
func (l *Logger) MemberLeft(ctx context.Context, userID, groupID string) {
	l.membership(ctx, audit.EventMemberLeft, userID, userID, groupID, nil)
}

// MembershipDenied logs a refused membership operation. reason is the
// error kind that was returned to the caller.
func (l *Logger) MembershipDenied(ctx context.Context, actorID, targetID, groupID, action, reason string) {
	l.Log(ctx, audit.Event{
		Category:      audit.CategoryMembership,
		EventType:     audit.EventMembershipDenied,
		ActorID:       actorID,
		TargetUserID:  targetID,
		GroupID:       groupID,
		Success:       false,
		FailureReason: reason,
		Details:       map[string]string{"action": action},
	})
}

// --- Session Events ---

// SessionCreated logs a new study session.
func (l *Logger) SessionCreated(ctx context.Context, actorID, groupID, sessionID string) {
	l.Log(ctx, audit.Event{
		Category:  audit.CategorySession,
		EventType: audit.EventSessionCreated,
		ActorID:   actorID,
		GroupID:   groupID,
		SessionID: sessionID,
		Success:   true,
	})
}

// SessionCancelled logs a session deleted by its creator.
func (l *Logger) SessionCancelled(ctx context.Context, actorID, groupID, sessionID string) {
	l.Log(ctx, audit.Event{
		Category:  audit.CategorySession,
		EventType: audit.EventSessionCancelled,
		ActorID:   actorID,
		GroupID:   groupID,
		SessionID: sessionID,
		Success:   true,
	})
}

// RSVPSet logs an attendance declaration.
func (l *Logger) RSVPSet(ctx context.Context, actorID, sessionID, status string) {
	l.Log(ctx, audit.Event{
		Category:  audit.CategorySession,
		EventType: audit.EventRSVPSet,
		ActorID:   actorID,
		SessionID: sessionID,
		Success:   true,
		Details:   map[string]string{"status": status},
	})
}

// --- Authentication Events ---

func (l *Logger) auth(ctx context.Context, r *http.Request, eventType, userID string, success bool, reason string, details map[string]string) {
	if l == nil {
		return
	}
	l.Log(ctx, audit.Event{
		Category:      audit.CategoryAuth,
		EventType:     eventType,
		ActorID:       userID,
		IP:            ratelimit.ClientIP(r),
		Success:       success,
		FailureReason: reason,
		Details:       details,
	})
}

// Registered logs a new account.
func (l *Logger) Registered(ctx context.Context, r *http.Request, userID, email string) {
	l.auth(ctx, r, audit.EventRegistered, userID, true, "", map[string]string{"email": email})
}

// LoginSuccess logs a successful login.
func (l *Logger) LoginSuccess(ctx context.Context, r *http.Request, userID, email string) {
	l.auth(ctx, r, audit.EventLoginSuccess, userID, true, "", map[string]string{"email": email})
}

// LoginFailedUserNotFound logs a login attempt for an unknown email.
func (l *Logger) LoginFailedUserNotFound(ctx context.Context, r *http.Request, email string) {
	l.auth(ctx, r, audit.EventLoginFailedUserNotFound, "", false, "user not found", map[string]string{"email": email})
}

// LoginFailedPassword logs a wrong password for an existing account.
func (l *Logger) LoginFailedPassword(ctx context.Context, r *http.Request, userID, email string) {
	l.auth(ctx, r, audit.EventLoginFailedPassword, userID, false, "wrong password", map[string]string{"email": email})
}

// LoginFailedRateLimit logs an attempt refused by the login limiter.
func (l *Logger) LoginFailedRateLimit(ctx context.Context, r *http.Request, email, reason string) {
	l.auth(ctx, r, audit.EventLoginFailedRateLimit, "", false, reason, map[string]string{"email": email})
}

// Logout logs a logout.
func (l *Logger) Logout(ctx context.Context, r *http.Request, userID string) {
	l.auth(ctx, r, audit.EventLogout, userID, true, "", nil)
}
