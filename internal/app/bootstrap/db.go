// internal/app/bootstrap/db.go
package bootstrap

import (
	"context"
	"fmt"

	"github.com/dalemusser/studycircle/internal/app/store/audit"
	"github.com/dalemusser/studycircle/internal/app/store/docstore"
	"github.com/dalemusser/studycircle/internal/app/system/indexes"
	"github.com/dalemusser/studycircle/internal/app/system/ratelimit"
	"github.com/dalemusser/studycircle/internal/app/system/timeouts"
	"github.com/dalemusser/studycircle/internal/app/system/validators"
	"github.com/dalemusser/studycircle/internal/app/system/workers"
	"github.com/dalemusser/waffle/config"
	"github.com/go-redis/redis/v8"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

// ConnectDB opens the MongoDB client, the optional Redis client and the
// login limiter that sits on top of one of them.
func ConnectDB(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) (DBDeps, error) {
	opts := options.Client().
		ApplyURI(appCfg.MongoURI).
		SetMaxPoolSize(appCfg.MongoMaxPoolSize).
		SetMinPoolSize(appCfg.MongoMinPoolSize)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return DBDeps{}, fmt.Errorf("connect mongo: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, timeouts.DefaultMedium)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return DBDeps{}, fmt.Errorf("ping mongo: %w", err)
	}
	logger.Info("connected to MongoDB", zap.String("database", appCfg.MongoDatabase))

	deps := DBDeps{
		MongoClient:   client,
		MongoDatabase: client.Database(appCfg.MongoDatabase),
	}

	if appCfg.AuditRetention > 0 {
		deps.AuditRetention = workers.NewAuditRetention(
			audit.New(docstore.NewMongo(deps.MongoDatabase)), logger,
			appCfg.AuditPruneInterval, appCfg.AuditRetention)
	}

	if appCfg.RedisAddr == "" {
		deps.LoginLimiter = ratelimit.NewMemoryLoginLimiter(appCfg.LoginIPLimit, appCfg.LoginEmailLimit)
		logger.Info("login throttling uses in-memory counters")
		return deps, nil
	}

	deps.Redis = redis.NewClient(&redis.Options{Addr: appCfg.RedisAddr})
	if err := deps.Redis.Ping(pingCtx).Err(); err != nil {
		// The limiter fails open, so an unreachable Redis is not fatal.
		logger.Warn("redis ping failed; login throttling is degraded",
			zap.String("addr", appCfg.RedisAddr), zap.Error(err))
	}
	deps.LoginLimiter = ratelimit.NewRedisLoginLimiter(deps.Redis, appCfg.LoginIPLimit, appCfg.LoginEmailLimit, logger)
	logger.Info("login throttling uses Redis", zap.String("addr", appCfg.RedisAddr))
	return deps, nil
}

// EnsureSchema creates the indexes and $jsonSchema validators.
func EnsureSchema(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	if err := indexes.EnsureAll(ctx, deps.MongoDatabase); err != nil {
		logger.Error("ensure indexes failed", zap.Error(err))
		return err
	}
	if err := validators.EnsureAll(ctx, deps.MongoDatabase); err != nil {
		logger.Error("ensure validators failed", zap.Error(err))
		return err
	}
	return nil
}
