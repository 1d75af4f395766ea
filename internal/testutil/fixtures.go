package testutil

import (
	"context"
	"net/http"
	"testing"

	communitystore "github.com/dalemusser/pastoralhub/internal/app/store/communities"
	memberstore "github.com/dalemusser/pastoralhub/internal/app/store/members"
	trainingstore "github.com/dalemusser/pastoralhub/internal/app/store/soundtrainings"
	teamstore "github.com/dalemusser/pastoralhub/internal/app/store/teams"
	userstore "github.com/dalemusser/pastoralhub/internal/app/store/users"
	"github.com/dalemusser/pastoralhub/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/mongo"
)

// WithChiURLParam adds a chi URL parameter to the request context.
// Use this in handler tests that need to access chi.URLParam values.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.RouteContext(r.Context())
	if rctx == nil {
		rctx = chi.NewRouteContext()
	}
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// Fixtures provides helper methods for creating test data through the stores.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CreateCommunity creates a community with an explicit id.
func (f *Fixtures) CreateCommunity(ctx context.Context, id, name string) models.Community {
	f.t.Helper()
	c, err := communitystore.New(f.db).Create(ctx, models.Community{ID: id, Name: name, Address: "Comunidade"})
	if err != nil {
		f.t.Fatalf("failed to create test community: %v", err)
	}
	return c
}

// CreateUser creates a profile. Master implies admin.
func (f *Fixtures) CreateUser(ctx context.Context, id, email string, isAdmin, isMaster bool, modules ...models.Module) models.User {
	f.t.Helper()
	if len(modules) == 0 {
		modules = []models.Module{models.ModuleLiturgy}
	}
	u, err := userstore.New(f.db).Create(ctx, models.User{
		ID:             id,
		Username:       email,
		Name:           "User " + id,
		CommunityID:    models.CoordinationCommunityID,
		IsAdmin:        isAdmin,
		IsMaster:       isMaster,
		AllowedModules: modules,
	})
	if err != nil {
		f.t.Fatalf("failed to create test user: %v", err)
	}
	return u
}

// CreatePendingUser creates a profile already in PendingDeletion.
func (f *Fixtures) CreatePendingUser(ctx context.Context, id, email string) models.User {
	f.t.Helper()
	u := f.CreateUser(ctx, id, email, false, false)
	if err := userstore.New(f.db).SetStatus(ctx, id, models.StatusPendingDeletion); err != nil {
		f.t.Fatalf("failed to mark user pending: %v", err)
	}
	u.Status = models.StatusPendingDeletion
	return u
}

// CreateMember creates a serving member in the given community.
func (f *Fixtures) CreateMember(ctx context.Context, name, communityID string) models.Member {
	f.t.Helper()
	return f.CreateMemberWith(ctx, memberstore.Fields{Name: name, CommunityID: communityID, IsActive: true})
}

// CreateMemberWith creates a member from explicit fields.
func (f *Fixtures) CreateMemberWith(ctx context.Context, fields memberstore.Fields) models.Member {
	f.t.Helper()
	m, err := memberstore.New(f.db).Create(ctx, fields)
	if err != nil {
		f.t.Fatalf("failed to create test member: %v", err)
	}
	return m
}

// CreatePendingMember creates a member already in PendingDeletion.
func (f *Fixtures) CreatePendingMember(ctx context.Context, name, communityID string) models.Member {
	f.t.Helper()
	m := f.CreateMember(ctx, name, communityID)
	if err := memberstore.New(f.db).SetStatus(ctx, m.ID, models.StatusPendingDeletion); err != nil {
		f.t.Fatalf("failed to mark member pending: %v", err)
	}
	m.Status = models.StatusPendingDeletion
	return m
}

func (f *Fixtures) CreateTeam(ctx context.Context, name, communityID string, memberIDs ...string) models.Team {
	f.t.Helper()
	team, err := teamstore.New(f.db).Create(ctx, models.Team{Name: name, CommunityID: communityID, MemberIDs: memberIDs})
	if err != nil {
		f.t.Fatalf("failed to create test team: %v", err)
	}
	return team
}

func (f *Fixtures) CreateTraining(ctx context.Context, date, communityID string, memberIDs ...string) models.SoundTraining {
	f.t.Helper()
	st, err := trainingstore.New(f.db).Create(ctx, models.SoundTraining{Date: date, CommunityID: communityID, MemberIDs: memberIDs})
	if err != nil {
		f.t.Fatalf("failed to create test training: %v", err)
	}
	return st
}
