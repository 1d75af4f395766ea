package indexes_test

import (
	"testing"

	memberstore "github.com/dalemusser/pastoralhub/internal/app/store/members"
	userstore "github.com/dalemusser/pastoralhub/internal/app/store/users"
	"github.com/dalemusser/pastoralhub/internal/app/system/indexes"
	"github.com/dalemusser/pastoralhub/internal/domain/models"
	"github.com/dalemusser/pastoralhub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

func indexNames(t *testing.T, db *mongo.Database, coll string) map[string]bool {
	t.Helper()
	ctx, cancel := testutil.TestContext()
	defer cancel()

	cur, err := db.Collection(coll).Indexes().List(ctx)
	if err != nil {
		t.Fatalf("List indexes failed: %v", err)
	}
	defer cur.Close(ctx)

	names := make(map[string]bool)
	for cur.Next(ctx) {
		var idx bson.M
		if err := cur.Decode(&idx); err != nil {
			t.Fatalf("decode index: %v", err)
		}
		if name, ok := idx["name"].(string); ok {
			names[name] = true
		}
	}
	return names
}

func TestEnsureAll_Idempotent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := indexes.EnsureAll(ctx, db, zap.NewNop()); err != nil {
		t.Fatalf("first EnsureAll failed: %v", err)
	}
	if err := indexes.EnsureAll(ctx, db, zap.NewNop()); err != nil {
		t.Fatalf("second EnsureAll failed: %v", err)
	}
}

func TestEnsureAll_CreatesExpectedIndexes(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := indexes.EnsureAll(ctx, db, nil); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}

	want := map[string][]string{
		"users":           {"uniq_users_username", "idx_users_status"},
		"members":         {"idx_members_community", "idx_members_status", "idx_members_name_ci"},
		"teams":           {"idx_teams_community"},
		"sound_trainings": {"idx_sound_trainings_date"},
		"communities":     {"idx_communities_name_ci"},
		"audit_events":    {"idx_audit_timestamp"},
		"identities":      {"uniq_identities_email"},
	}
	for coll, names := range want {
		got := indexNames(t, db, coll)
		for _, n := range names {
			if !got[n] {
				t.Errorf("%s: missing index %s (have %v)", coll, n, got)
			}
		}
	}
}

func TestEnsureAll_UsernameUnique(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := indexes.EnsureAll(ctx, db, nil); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}
	users := userstore.New(db)
	if _, err := users.Create(ctx, models.User{ID: "a", Username: "ana@example.com", Name: "Ana"}); err != nil {
		t.Fatalf("first create: %v", err)
	}
	_, err := users.Create(ctx, models.User{ID: "b", Username: "ANA@example.com", Name: "Ana 2"})
	if err != userstore.ErrDuplicateUser {
		t.Fatalf("err = %v, want ErrDuplicateUser", err)
	}
}

func TestEnsureAll_ReplacesMisnamedIndex(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	// An older deployment created the same keys under another name.
	_, err := db.Collection(memberstore.CollectionName).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "community_id", Value: 1}},
		Options: options.Index().SetName("community_id_1_legacy"),
	})
	if err != nil {
		t.Fatalf("create legacy index: %v", err)
	}

	if err := indexes.EnsureAll(ctx, db, nil); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}
	got := indexNames(t, db, memberstore.CollectionName)
	if got["community_id_1_legacy"] || !got["idx_members_community"] {
		t.Errorf("index not renamed: %v", got)
	}
}
