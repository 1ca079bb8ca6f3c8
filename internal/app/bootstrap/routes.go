// internal/app/bootstrap/routes.go
package bootstrap

import (
	"context"
	"errors"
	"net/http"
	"time"

	errorsfeature "github.com/dalemusser/studycircle/internal/app/features/errors"
	groupsfeature "github.com/dalemusser/studycircle/internal/app/features/groups"
	healthfeature "github.com/dalemusser/studycircle/internal/app/features/health"
	loginfeature "github.com/dalemusser/studycircle/internal/app/features/login"
	logoutfeature "github.com/dalemusser/studycircle/internal/app/features/logout"
	profilefeature "github.com/dalemusser/studycircle/internal/app/features/profile"
	sessionsfeature "github.com/dalemusser/studycircle/internal/app/features/sessions"
	userinfofeature "github.com/dalemusser/studycircle/internal/app/features/userinfo"
	"github.com/dalemusser/studycircle/internal/app/services/membership"
	"github.com/dalemusser/studycircle/internal/app/services/rsvp"
	"github.com/dalemusser/studycircle/internal/app/store/audit"
	"github.com/dalemusser/studycircle/internal/app/store/docstore"
	groupstore "github.com/dalemusser/studycircle/internal/app/store/groups"
	sessionstore "github.com/dalemusser/studycircle/internal/app/store/studysessions"
	userstore "github.com/dalemusser/studycircle/internal/app/store/users"
	"github.com/dalemusser/studycircle/internal/app/system/auditlog"
	"github.com/dalemusser/studycircle/internal/app/system/auth"
	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// any Startup hooks have completed. Stores sit on the MongoDB Document
// Store; the membership and RSVP managers sit on the stores; handlers sit
// on the managers.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	ds := docstore.NewMongo(deps.MongoDatabase)
	return buildRouter(coreCfg.Env == "prod", appCfg, ds, deps, logger)
}

// buildRouter wires everything above the Document Store. It takes the store
// as a parameter so the whole tree can run on the in-memory implementation.
func buildRouter(secure bool, appCfg AppConfig, ds docstore.Store, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	users := userstore.New(ds)
	groups := groupstore.New(ds)
	studySessions := sessionstore.New(ds)
	auditStore := audit.New(ds)
	auditLog := auditlog.New(auditStore, logger, auditlog.Config{
		Membership: appCfg.AuditLogMembership,
		Auth:       appCfg.AuditLogAuth,
	})

	// The fetcher makes a deleted account lose access on its next request.
	fetcher := userstore.NewFetcher(users)
	sessionMgr, err := auth.NewSessionManager(appCfg.SessionKey, appCfg.SessionName, appCfg.SessionDomain,
		appCfg.SessionMaxAge, secure, fetcher, logger)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return nil, err
	}
	tokens, err := auth.NewTokenManager(appCfg.TokenSecret, appCfg.TokenTTL, fetcher)
	if err != nil {
		logger.Error("token manager init failed", zap.Error(err))
		return nil, err
	}

	memberships := membership.New(groups, auditLog, logger)
	rsvps := rsvp.New(studySessions, groups, auditLog, logger)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(logger))

	// Bearer tokens first, then the session cookie. Loads the caller into
	// context when either is present; RequireUser on each feature router
	// rejects anonymous callers.
	r.Use(auth.LoadUser(auth.Chain{tokens, sessionMgr}))

	errorsHandler := errorsfeature.NewHandler()
	r.NotFound(errorsHandler.NotFound)
	r.MethodNotAllowed(errorsHandler.MethodNotAllowed)

	// Health check endpoint for load balancers and orchestrators
	var cache healthfeature.Pinger
	if deps.Redis != nil {
		cache = healthfeature.RedisPinger(deps.Redis)
	}
	var database healthfeature.Pinger = healthfeature.PingFunc(docstorePing(ds))
	if deps.MongoClient != nil {
		database = healthfeature.MongoPinger(deps.MongoClient)
	}
	r.Mount("/health", healthfeature.Routes(healthfeature.NewHandler(database, cache, logger)))

	// Authentication
	loginHandler := loginfeature.NewHandler(users, sessionMgr, tokens, deps.LoginLimiter, auditLog, logger)
	loginHandler.BcryptCost = appCfg.BcryptCost
	logoutHandler := logoutfeature.NewHandler(sessionMgr, auditLog, logger)
	r.Route("/auth", func(ar chi.Router) {
		loginfeature.MountRoutes(ar, loginHandler)
		logoutfeature.MountRoutes(ar, logoutHandler)
		userinfofeature.MountRoutes(ar, userinfofeature.NewHandler())
		profilefeature.MountRoutes(ar, profilefeature.NewHandler(users, logger))
	})

	// Groups and their sessions
	sessionsHandler := sessionsfeature.NewHandler(rsvps, logger)
	groupsHandler := groupsfeature.NewHandler(memberships, auditStore, logger)
	r.Mount("/groups", groupsfeature.Routes(groupsHandler, sessionsHandler))
	r.Mount("/sessions", sessionsfeature.Routes(sessionsHandler))

	return r, nil
}

// docstorePing probes a Document Store with no client handle of its own.
// A missing document still proves the store answered.
func docstorePing(ds docstore.Store) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		_, err := ds.Get(ctx, groupstore.Collection, "000000000000000000000000")
		if errors.Is(err, docstore.ErrNotFound) {
			return nil
		}
		return err
	}
}

// requestLogger logs one line per request with the chi request id.
func requestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			logger.Debug("request",
				zap.String("request_id", middleware.GetReqID(r.Context())),
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("elapsed", time.Since(start)))
		})
	}
}
