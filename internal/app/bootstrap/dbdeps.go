// internal/app/bootstrap/dbdeps.go
package bootstrap

import (
	"github.com/dalemusser/studycircle/internal/app/system/ratelimit"
	"github.com/dalemusser/studycircle/internal/app/system/workers"
	"github.com/go-redis/redis/v8"
	"go.mongodb.org/mongo-driver/mongo"
)

// DBDeps holds database/back-end dependencies for the app.
type DBDeps struct {
	MongoClient   *mongo.Client
	MongoDatabase *mongo.Database

	// Redis is nil when redis_addr is blank.
	Redis *redis.Client

	// LoginLimiter is backed by Redis when configured, else process memory.
	LoginLimiter *ratelimit.LoginLimiter

	// AuditRetention is nil when audit_retention is zero.
	AuditRetention *workers.AuditRetention
}
