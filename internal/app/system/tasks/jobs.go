// internal/app/system/tasks/jobs.go
package tasks

import (
	"context"
	"time"

	"github.com/dalemusser/pastoralhub/internal/app/store/audit"
	memberstore "github.com/dalemusser/pastoralhub/internal/app/store/members"
	userstore "github.com/dalemusser/pastoralhub/internal/app/store/users"
	"github.com/dalemusser/pastoralhub/internal/app/system/timeouts"
	"github.com/dalemusser/pastoralhub/internal/domain/models"
	"go.uber.org/zap"
)

// PendingDeletionDigestJob logs, every hour, how many users and members wait
// in the maintenance queue for approval.
func PendingDeletionDigestJob(users *userstore.Store, members *memberstore.Store, logger *zap.Logger) Job {
	return Job{
		Name:    "pending-deletion-digest",
		Spec:    "@hourly",
		Timeout: timeouts.Medium(),
		Run: func(ctx context.Context) error {
			u, err := users.CountByStatus(ctx, models.StatusPendingDeletion)
			if err != nil {
				return err
			}
			m, err := members.CountByStatus(ctx, models.StatusPendingDeletion)
			if err != nil {
				return err
			}
			if u+m > 0 {
				logger.Info("deletion requests awaiting approval",
					zap.Int64("users", u),
					zap.Int64("members", m))
			}
			return nil
		},
	}
}

// AuditRetentionJob deletes audit events older than retention once a day.
// A non-positive retention keeps events forever and the job does nothing.
func AuditRetentionJob(store *audit.Store, retention time.Duration, logger *zap.Logger) Job {
	return Job{
		Name:    "audit-retention",
		Spec:    "@daily",
		Timeout: timeouts.Long(),
		Run: func(ctx context.Context) error {
			if retention <= 0 {
				return nil
			}
			n, err := store.PurgeBefore(ctx, time.Now().UTC().Add(-retention))
			if err != nil {
				return err
			}
			if n > 0 {
				logger.Info("purged old audit events",
					zap.Int64("count", n),
					zap.Duration("retention", retention))
			}
			return nil
		},
	}
}
