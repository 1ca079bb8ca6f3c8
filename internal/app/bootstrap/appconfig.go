// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// These values come from environment variables, configuration files, or
// command-line flags (loaded in LoadConfig). WAFFLE's CoreConfig covers the
// framework-level settings (ports, TLS, logging level, CORS); everything
// specific to StudyCircle lives here.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase    string // Database name within MongoDB
	MongoMaxPoolSize uint64
	MongoMinPoolSize uint64

	// Cookie sessions
	SessionKey    string        // Secret key for signing session cookies (must be strong in production)
	SessionName   string        // Cookie name for sessions (default: studycircle-session)
	SessionDomain string        // Cookie domain (blank means current host)
	SessionMaxAge time.Duration // Cookie lifetime

	// Bearer tokens
	TokenSecret string        // HMAC key for signing bearer tokens
	TokenTTL    time.Duration // Token lifetime

	// Audit logging: "all", "db", "log" or "off"
	AuditLogMembership string
	AuditLogAuth       string
	AuditRetention     time.Duration // zero keeps events forever
	AuditPruneInterval time.Duration

	// Store call deadlines
	TimeoutShort  time.Duration
	TimeoutMedium time.Duration

	// Login throttling. RedisAddr empty keeps counters in process memory.
	RedisAddr       string
	LoginIPLimit    int // attempts per IP per minute
	LoginEmailLimit int // attempts per email per 5 minutes

	// BcryptCost is the work factor for new password hashes.
	BcryptCost int
}
