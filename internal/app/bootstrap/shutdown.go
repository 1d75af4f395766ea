// internal/app/bootstrap/shutdown.go
package bootstrap

import (
	"context"

	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// Shutdown stops what Startup and BuildHandler started, then closes Redis and
// disconnects MongoDB.
func Shutdown(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	if s := deps.Services; s != nil {
		if s.Scheduler != nil {
			s.Scheduler.Stop(ctx)
		}
		if s.Stream != nil {
			s.Stream.Close()
		}
		if s.Directory != nil {
			s.Directory.Stop()
		}
		if s.LoginLimiter != nil {
			s.LoginLimiter.Stop()
		}
		if s.SuggestLimiter != nil {
			s.SuggestLimiter.Stop()
		}
	}
	if deps.Redis != nil {
		if err := deps.Redis.Close(); err != nil {
			logger.Warn("redis close failed", zap.Error(err))
		}
	}
	if deps.MongoClient != nil {
		logger.Info("disconnecting MongoDB client")
		if err := deps.MongoClient.Disconnect(ctx); err != nil {
			logger.Error("MongoDB disconnect failed", zap.Error(err))
			return err
		}
	}
	return nil
}

// closeDeps releases whatever ConnectDB opened before it failed.
func closeDeps(deps DBDeps, logger *zap.Logger) {
	if deps.Redis != nil {
		_ = deps.Redis.Close()
	}
	if deps.MongoClient != nil {
		if err := deps.MongoClient.Disconnect(context.Background()); err != nil {
			logger.Warn("MongoDB disconnect after failed connect", zap.Error(err))
		}
	}
}
