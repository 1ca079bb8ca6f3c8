// internal/app/bootstrap/config.go
package bootstrap

import (
	"fmt"
	"time"

	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const (
	devSessionKey  = "dev-only-change-me-please-0123456789ABCDEF"
	devTokenSecret = "dev-only-token-secret-0123456789ABCDEF"

	// minSecretLen is the shortest signing key accepted in production.
	minSecretLen = 32
)

// appConfigKeys defines the configuration keys for StudyCircle.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, session_name, etc.
//   - Environment variables: STUDYCIRCLE_MONGO_URI, STUDYCIRCLE_SESSION_NAME, etc.
//   - Command-line flags: --mongo_uri, --session_name, etc.
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "studycircle", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size (default: 100)"},
	{Name: "mongo_min_pool_size", Default: 10, Desc: "MongoDB min connection pool size (default: 10)"},

	{Name: "session_key", Default: devSessionKey, Desc: "Session signing key (must be strong in production)"},
	{Name: "session_name", Default: "studycircle-session", Desc: "Session cookie name"},
	{Name: "session_domain", Default: "", Desc: "Session cookie domain (blank means current host)"},
	{Name: "session_max_age", Default: "720h", Desc: "Session cookie lifetime (e.g., 24h, 720h)"},

	{Name: "token_secret", Default: devTokenSecret, Desc: "Bearer token signing key (must be strong in production)"},
	{Name: "token_ttl", Default: "24h", Desc: "Bearer token lifetime (e.g., 1h, 24h)"},

	// Audit logging settings
	{Name: "audit_log_membership", Default: "all", Desc: "Group and session event logging: 'all' (db+log), 'db', 'log', or 'off'"},
	{Name: "audit_log_auth", Default: "all", Desc: "Auth event logging: 'all' (db+log), 'db', 'log', or 'off'"},

	{Name: "audit_retention", Default: "2160h", Desc: "How long audit events are kept (0 keeps them forever)"},
	{Name: "audit_prune_interval", Default: "1h", Desc: "How often expired audit events are deleted"},

	{Name: "timeout_short", Default: "5s", Desc: "Deadline for single-document store calls"},
	{Name: "timeout_medium", Default: "10s", Desc: "Deadline for list queries and login"},

	// Login throttling
	{Name: "redis_addr", Default: "", Desc: "Redis address for shared login counters (blank keeps them in memory)"},
	{Name: "login_ip_limit", Default: 20, Desc: "Login/register attempts per IP per minute"},
	{Name: "login_email_limit", Default: 5, Desc: "Login/register attempts per email per 5 minutes"},

	{Name: "bcrypt_cost", Default: bcrypt.DefaultCost, Desc: "bcrypt work factor for new passwords"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// WAFFLE's config.LoadWithAppConfig handles:
//   - Loading from .env files
//   - Loading from config.yaml/json/toml files
//   - Reading environment variables (WAFFLE_* for core, STUDYCIRCLE_* for app)
//   - Parsing command-line flags
//   - Merging with precedence: flags > env > files > defaults
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "STUDYCIRCLE", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		MongoURI:         appValues.String("mongo_uri"),
		MongoDatabase:    appValues.String("mongo_database"),
		MongoMaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),
		MongoMinPoolSize: uint64(appValues.Int("mongo_min_pool_size")),

		SessionKey:    appValues.String("session_key"),
		SessionName:   appValues.String("session_name"),
		SessionDomain: appValues.String("session_domain"),
		SessionMaxAge: appValues.Duration("session_max_age", 30*24*time.Hour),

		TokenSecret: appValues.String("token_secret"),
		TokenTTL:    appValues.Duration("token_ttl", 24*time.Hour),

		AuditLogMembership: appValues.String("audit_log_membership"),
		AuditLogAuth:       appValues.String("audit_log_auth"),
		AuditRetention:     appValues.Duration("audit_retention", 90*24*time.Hour),
		AuditPruneInterval: appValues.Duration("audit_prune_interval", time.Hour),

		TimeoutShort:  appValues.Duration("timeout_short", 5*time.Second),
		TimeoutMedium: appValues.Duration("timeout_medium", 10*time.Second),

		RedisAddr:       appValues.String("redis_addr"),
		LoginIPLimit:    appValues.Int("login_ip_limit"),
		LoginEmailLimit: appValues.Int("login_email_limit"),

		BcryptCost: appValues.Int("bcrypt_cost"),
	}

	return coreCfg, appCfg, nil
}

// ValidateConfig performs app-specific config validation.
//
// StudyCircle validates the MongoDB URI format to catch configuration
// errors early, before attempting to connect, and refuses to run in
// production with the development signing keys.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}
	if err := validateApp(appCfg, coreCfg.Env == "prod"); err != nil {
		logger.Error("invalid configuration", zap.Error(err))
		return err
	}
	return nil
}

// validateApp holds the checks that do not need WAFFLE's core config.
func validateApp(appCfg AppConfig, prod bool) error {
	if appCfg.MongoDatabase == "" {
		return fmt.Errorf("mongo_database must be set")
	}
	if appCfg.SessionKey == "" || appCfg.TokenSecret == "" {
		return fmt.Errorf("session_key and token_secret must be set")
	}
	if appCfg.LoginIPLimit < 1 || appCfg.LoginEmailLimit < 1 {
		return fmt.Errorf("login_ip_limit and login_email_limit must be positive")
	}
	if appCfg.BcryptCost < bcrypt.MinCost || appCfg.BcryptCost > bcrypt.MaxCost {
		return fmt.Errorf("bcrypt_cost must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost)
	}
	if appCfg.AuditRetention > 0 && appCfg.AuditPruneInterval <= 0 {
		return fmt.Errorf("audit_prune_interval must be positive when audit_retention is set")
	}
	if !prod {
		return nil
	}
	for name, v := range map[string]string{"session_key": appCfg.SessionKey, "token_secret": appCfg.TokenSecret} {
		if v == devSessionKey || v == devTokenSecret {
			return fmt.Errorf("%s still has its development default", name)
		}
		if len(v) < minSecretLen {
			return fmt.Errorf("%s must be at least %d characters in production", name, minSecretLen)
		}
	}
	if appCfg.SessionKey == appCfg.TokenSecret {
		return fmt.Errorf("session_key and token_secret must differ")
	}
	return nil
}
