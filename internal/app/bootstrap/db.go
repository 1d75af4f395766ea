// internal/app/bootstrap/db.go
package bootstrap

import (
	"context"
	"fmt"

	"github.com/dalemusser/pastoralhub/internal/app/system/identity"
	"github.com/dalemusser/pastoralhub/internal/app/system/indexes"
	"github.com/dalemusser/pastoralhub/internal/app/system/suggest"
	"github.com/dalemusser/pastoralhub/internal/app/system/timeouts"
	"github.com/dalemusser/pastoralhub/internal/app/system/validators"
	"github.com/dalemusser/waffle/config"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

// ConnectDB opens MongoDB, the identity provider, the suggestion client
// and, when redis_addr is set, Redis. Any failure aborts startup and closes
// what was already opened.
func ConnectDB(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) (DBDeps, error) {
	opts := options.Client().
		ApplyURI(appCfg.MongoURI).
		SetMaxPoolSize(appCfg.MongoMaxPoolSize).
		SetMinPoolSize(appCfg.MongoMinPoolSize)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return DBDeps{}, fmt.Errorf("connect mongo: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, timeouts.Ping())
	err = client.Ping(pingCtx, readpref.Primary())
	cancel()
	if err != nil {
		_ = client.Disconnect(context.Background())
		return DBDeps{}, fmt.Errorf("ping mongo: %w", err)
	}
	db := client.Database(appCfg.MongoDatabase)
	logger.Info("connected to MongoDB", zap.String("database", appCfg.MongoDatabase))

	deps := DBDeps{MongoClient: client, MongoDatabase: db, Services: &Services{}}
	fail := func(err error) (DBDeps, error) {
		closeDeps(deps, logger)
		return DBDeps{}, err
	}

	switch appCfg.IdentityProvider {
	case ProviderFirebase:
		fb, err := identity.NewFirebase(ctx, identity.FirebaseConfig{
			ProjectID:       appCfg.FirebaseProjectID,
			CredentialsFile: appCfg.FirebaseCredentialsFile,
			APIKey:          appCfg.FirebaseAPIKey,
		})
		if err != nil {
			return fail(fmt.Errorf("connect firebase: %w", err))
		}
		deps.Identity = fb
	default:
		deps.Identity = identity.NewLocal(db)
	}
	logger.Info("identity provider ready", zap.String("provider", appCfg.IdentityProvider))

	deps.Suggester, err = suggest.NewGemini(ctx, appCfg.GeminiAPIKey, appCfg.GeminiModel)
	if err != nil {
		return fail(fmt.Errorf("create suggestion client: %w", err))
	}
	if appCfg.GeminiAPIKey == "" {
		logger.Warn("gemini_api_key not set; song suggestions are disabled")
	}

	if appCfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: appCfg.RedisAddr, Password: appCfg.RedisPassword})
		pingCtx, cancel := context.WithTimeout(ctx, timeouts.Ping())
		err := rdb.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			_ = rdb.Close()
			return fail(fmt.Errorf("ping redis: %w", err))
		}
		deps.Redis = rdb
		logger.Info("connected to Redis", zap.String("addr", appCfg.RedisAddr))
	}

	return deps, nil
}

// EnsureSchema attaches the collection validators, then creates every
// index the stores and the local identity provider rely on.
func EnsureSchema(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	if err := validators.EnsureAll(ctx, deps.MongoDatabase, logger); err != nil {
		return fmt.Errorf("ensure validators: %w", err)
	}
	return indexes.EnsureAll(ctx, deps.MongoDatabase, logger)
}
