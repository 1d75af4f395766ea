// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"
	"errors"

	"github.com/dalemusser/pastoralhub/internal/app/directory"
	"github.com/dalemusser/pastoralhub/internal/app/store/audit"
	"github.com/dalemusser/pastoralhub/internal/app/system/tasks"
	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// Startup starts the five collection feeds and the job scheduler. Both
// outlive the startup context and are stopped by Shutdown.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	if deps.Services == nil {
		return errors.New("startup: DBDeps.Services not allocated")
	}

	dir := directory.New(deps.MongoDatabase, appCfg.FeedPollInterval, logger)
	dir.Start(context.WithoutCancel(ctx))
	deps.Services.Directory = dir

	sched := tasks.NewScheduler(logger)
	jobs := []tasks.Job{
		tasks.PendingDeletionDigestJob(dir.Users, dir.Members, logger),
		tasks.AuditRetentionJob(audit.New(deps.MongoDatabase), appCfg.AuditRetention, logger),
	}
	for _, j := range jobs {
		if err := sched.Add(j); err != nil {
			dir.Stop()
			return err
		}
	}
	sched.Start()
	deps.Services.Scheduler = sched

	return nil
}
