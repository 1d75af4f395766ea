package tasks_test

import (
	"context"
	"testing"
	"time"

	"github.com/dalemusser/pastoralhub/internal/app/store/audit"
	memberstore "github.com/dalemusser/pastoralhub/internal/app/store/members"
	userstore "github.com/dalemusser/pastoralhub/internal/app/store/users"
	"github.com/dalemusser/pastoralhub/internal/app/system/tasks"
	"github.com/dalemusser/pastoralhub/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestScheduler_AddRejectsBadSpec(t *testing.T) {
	s := tasks.NewScheduler(zap.NewNop())
	err := s.Add(tasks.Job{Name: "bad", Spec: "every tuesday", Run: func(context.Context) error { return nil }})
	assert.Error(t, err)
	assert.Equal(t, 0, s.Entries())
}

func TestScheduler_StartStop(t *testing.T) {
	s := tasks.NewScheduler(zap.NewNop())
	require.NoError(t, s.Add(tasks.Job{Name: "noop", Spec: "@every 1h", Run: func(context.Context) error { return nil }}))
	assert.Equal(t, 1, s.Entries())

	s.Start()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	s.Stop(ctx)
}

func TestAuditRetentionJob_PurgesOldEvents(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	store := audit.New(db)
	old := audit.Event{Category: audit.CategoryAuth, EventType: audit.EventLogout, Timestamp: time.Now().Add(-100 * 24 * time.Hour)}
	fresh := audit.Event{Category: audit.CategoryAuth, EventType: audit.EventLogout, Timestamp: time.Now()}
	require.NoError(t, store.Log(ctx, old))
	require.NoError(t, store.Log(ctx, fresh))

	job := tasks.AuditRetentionJob(store, 90*24*time.Hour, zap.NewNop())
	require.NoError(t, job.Run(ctx))

	n, err := store.CountByFilter(ctx, audit.QueryFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestAuditRetentionJob_ZeroRetentionKeepsAll(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	store := audit.New(db)
	require.NoError(t, store.Log(ctx, audit.Event{Category: audit.CategoryAuth, EventType: audit.EventLogout, Timestamp: time.Now().Add(-1000 * time.Hour)}))

	require.NoError(t, tasks.AuditRetentionJob(store, 0, zap.NewNop()).Run(ctx))

	n, err := store.CountByFilter(ctx, audit.QueryFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestPendingDeletionDigestJob_Runs(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	fx := testutil.NewFixtures(t, db)
	fx.CreateCommunity(ctx, "matriz", "Santa Rita")
	fx.CreatePendingMember(ctx, "Ana", "matriz")

	job := tasks.PendingDeletionDigestJob(userstore.New(db), memberstore.New(db), zap.NewNop())
	assert.Equal(t, "@hourly", job.Spec)
	assert.NoError(t, job.Run(ctx))
}
