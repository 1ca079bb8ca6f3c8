// internal/app/features/login/handler.go
package login

import (
	"context"
	"errors"
	"net/http"
	"time"

	uierrors "github.com/dalemusser/studycircle/internal/app/features/errors"
	"github.com/dalemusser/studycircle/internal/app/store/docstore"
	userstore "github.com/dalemusser/studycircle/internal/app/store/users"
	"github.com/dalemusser/studycircle/internal/app/system/apperr"
	"github.com/dalemusser/studycircle/internal/app/system/auditlog"
	"github.com/dalemusser/studycircle/internal/app/system/auth"
	"github.com/dalemusser/studycircle/internal/app/system/limits"
	"github.com/dalemusser/studycircle/internal/app/system/normalize"
	"github.com/dalemusser/studycircle/internal/app/system/ratelimit"
	"github.com/dalemusser/studycircle/internal/app/system/timeouts"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type Handler struct {
	Users      *userstore.Store
	SessionMgr *auth.SessionManager
	Tokens     *auth.TokenManager
	Limiter    *ratelimit.LoginLimiter
	AuditLog   *auditlog.Logger
	Log        *zap.Logger

	// BcryptCost is used when hashing new passwords.
	BcryptCost int
}

func NewHandler(
	users *userstore.Store,
	sessionMgr *auth.SessionManager,
	tokens *auth.TokenManager,
	limiter *ratelimit.LoginLimiter,
	audit *auditlog.Logger,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		Users:      users,
		SessionMgr: sessionMgr,
		Tokens:     tokens,
		Limiter:    limiter,
		AuditLog:   audit,
		Log:        logger,
		BcryptCost: bcrypt.DefaultCost,
	}
}

/*─────────────────────────────────────────────────────────────────────────────*
| Request / response bodies                                                   |
*─────────────────────────────────────────────────────────────────────────────*/

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name,omitempty"`

	// Register only.
	Department string `json:"department,omitempty"`
	Semester   string `json:"semester,omitempty"`
}

type authResponse struct {
	User      auth.User `json:"user"`
	Token     string    `json:"token,omitempty"`
	ExpiresAt time.Time `json:"expires_at,omitempty"`
}

// errBadCredentials is deliberately the same for unknown email and wrong
// password.
var errBadCredentials = apperr.New(apperr.KindUnauthenticated, "Invalid email or password.")

/*─────────────────────────────────────────────────────────────────────────────*
| POST /auth/login                                                            |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var c credentials
	if err := uierrors.DecodeJSONLimit(w, r, &c, limits.MaxAuthBodySize); err != nil {
		uierrors.WriteMalformed(w, "")
		return
	}
	email := normalize.Email(c.Email)
	if email == "" || c.Password == "" {
		uierrors.WriteError(w, r, h.Log, apperr.Validation("email and password are required"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	if !h.allow(ctx, w, r, email) {
		return
	}

	u, err := h.Users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			h.AuditLog.LoginFailedUserNotFound(ctx, r, email)
			uierrors.WriteError(w, r, h.Log, errBadCredentials)
			return
		}
		uierrors.WriteError(w, r, h.Log, apperr.Store("load user", err))
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(c.Password)); err != nil {
		h.AuditLog.LoginFailedPassword(ctx, r, u.ID, email)
		uierrors.WriteError(w, r, h.Log, errBadCredentials)
		return
	}

	if h.Limiter != nil {
		h.Limiter.ResetEmail(ctx, email)
	}
	h.AuditLog.LoginSuccess(ctx, r, u.ID, u.Email)
	h.signIn(w, r, auth.User{ID: u.ID, Email: u.Email}, http.StatusOK)
}

// allow applies the login limiter. It writes the 429 itself.
func (h *Handler) allow(ctx context.Context, w http.ResponseWriter, r *http.Request, email string) bool {
	if h.Limiter == nil {
		return true
	}
	ok, reason := h.Limiter.Check(r, email)
	if ok {
		return true
	}
	h.AuditLog.LoginFailedRateLimit(ctx, r, email, reason)
	h.Log.Warn("auth attempt throttled",
		zap.String("ip", ratelimit.ClientIP(r)),
		zap.String("reason", reason))
	uierrors.WriteTooManyRequests(w, "Too many attempts. Please wait a few minutes and try again.")
	return false
}

// signIn starts a cookie session and issues a bearer token for u.
func (h *Handler) signIn(w http.ResponseWriter, r *http.Request, u auth.User, status int) {
	if h.SessionMgr != nil {
		if err := h.SessionMgr.SignIn(w, r, u); err != nil {
			h.Log.Error("save session", zap.Error(err))
			uierrors.WriteError(w, r, h.Log, apperr.Store("save session", err))
			return
		}
	}
	resp := authResponse{User: u}
	if h.Tokens != nil {
		tok, exp, err := h.Tokens.Issue(u)
		if err != nil {
			h.Log.Error("issue token", zap.Error(err))
			uierrors.WriteError(w, r, h.Log, apperr.Store("issue token", err))
			return
		}
		resp.Token, resp.ExpiresAt = tok, exp
	}
	uierrors.WriteJSON(w, status, resp)
}
