// Package directory bundles the five document stores with their live
// snapshot feeds. Writes go through the stores; reads for lists and
// dashboards come from the feeds.
package directory

import (
	"context"
	"sync"
	"time"

	communitystore "github.com/dalemusser/pastoralhub/internal/app/store/communities"
	memberstore "github.com/dalemusser/pastoralhub/internal/app/store/members"
	trainingstore "github.com/dalemusser/pastoralhub/internal/app/store/soundtrainings"
	teamstore "github.com/dalemusser/pastoralhub/internal/app/store/teams"
	userstore "github.com/dalemusser/pastoralhub/internal/app/store/users"
	"github.com/dalemusser/pastoralhub/internal/app/system/livefeed"
	"github.com/dalemusser/pastoralhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type Directory struct {
	DB *mongo.Database

	Users       *userstore.Store
	Communities *communitystore.Store
	Members     *memberstore.Store
	Teams       *teamstore.Store
	Trainings   *trainingstore.Store

	UsersFeed       *livefeed.Feed[models.User]
	CommunitiesFeed *livefeed.Feed[models.Community]
	MembersFeed     *livefeed.Feed[models.Member]
	TeamsFeed       *livefeed.Feed[models.Team]
	TrainingsFeed   *livefeed.Feed[models.SoundTraining]

	log    *zap.Logger
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New builds the stores and feeds. Feeds do not follow changes until Start.
func New(db *mongo.Database, poll time.Duration, logger *zap.Logger) *Directory {
	d := &Directory{
		DB:          db,
		Users:       userstore.New(db),
		Communities: communitystore.New(db),
		Members:     memberstore.New(db),
		Teams:       teamstore.New(db),
		Trainings:   trainingstore.New(db),
		log:         logger,
	}
	d.UsersFeed = livefeed.New[models.User](userstore.CollectionName, d.Users.Collection(), d.Users.List, poll, logger)
	d.CommunitiesFeed = livefeed.New[models.Community](communitystore.CollectionName, d.Communities.Collection(), d.Communities.List, poll, logger)
	d.MembersFeed = livefeed.New[models.Member](memberstore.CollectionName, d.Members.Collection(), d.Members.List, poll, logger)
	d.TeamsFeed = livefeed.New[models.Team](teamstore.CollectionName, d.Teams.Collection(), d.Teams.List, poll, logger)
	d.TrainingsFeed = livefeed.New[models.SoundTraining](trainingstore.CollectionName, d.Trainings.Collection(), d.Trainings.List, poll, logger)
	return d
}

// Start runs every feed in its own goroutine until Stop.
func (d *Directory) Start(ctx context.Context) {
	ctx, d.cancel = context.WithCancel(ctx)
	runs := []func(context.Context){
		d.UsersFeed.Run,
		d.CommunitiesFeed.Run,
		d.MembersFeed.Run,
		d.TeamsFeed.Run,
		d.TrainingsFeed.Run,
	}
	for _, run := range runs {
		d.wg.Add(1)
		go func(run func(context.Context)) {
			defer d.wg.Done()
			run(ctx)
		}(run)
	}
	d.log.Info("directory feeds started", zap.Int("feeds", len(runs)))
}

// Stop ends all feeds and waits for them to return.
func (d *Directory) Stop() {
	if d.cancel == nil {
		return
	}
	d.cancel()
	d.wg.Wait()
	d.log.Info("directory feeds stopped")
}

// refresher is the part of a feed writers need.
type refresher interface {
	Refresh(ctx context.Context) error
	Name() string
}

// Touched reloads the feeds of collections a write just changed, so the
// writer's next read sees its own write. Failures are logged only; the
// change stream catches up.
func (d *Directory) Touched(ctx context.Context, feeds ...refresher) {
	for _, f := range feeds {
		if err := f.Refresh(ctx); err != nil {
			d.log.Warn("feed refresh after write failed", zap.String("feed", f.Name()), zap.Error(err))
		}
	}
}

// CommunityExists reports whether id names a stored community.
func (d *Directory) CommunityExists(ctx context.Context, id string) (bool, error) {
	return d.Communities.Exists(ctx, id)
}
