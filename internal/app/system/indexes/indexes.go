// internal/app/system/indexes/indexes.go
package indexes

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dalemusser/pastoralhub/internal/app/store/audit"
	communitystore "github.com/dalemusser/pastoralhub/internal/app/store/communities"
	memberstore "github.com/dalemusser/pastoralhub/internal/app/store/members"
	trainingstore "github.com/dalemusser/pastoralhub/internal/app/store/soundtrainings"
	teamstore "github.com/dalemusser/pastoralhub/internal/app/store/teams"
	userstore "github.com/dalemusser/pastoralhub/internal/app/store/users"
	"github.com/dalemusser/pastoralhub/internal/app/system/identity"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

/*
EnsureAll is called at startup from EnsureSchema. Each index set is
idempotent. Errors are aggregated so every problem shows up in one run and
startup can fail fast.
*/
func EnsureAll(ctx context.Context, db *mongo.Database, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	sets := []struct {
		coll   string
		models []mongo.IndexModel
	}{
		{userstore.CollectionName, usersIndexes()},
		{communitystore.CollectionName, communitiesIndexes()},
		{memberstore.CollectionName, membersIndexes()},
		{teamstore.CollectionName, teamsIndexes()},
		{trainingstore.CollectionName, trainingsIndexes()},
		{audit.CollectionName, auditIndexes()},
		{identity.LocalCollection, identitiesIndexes()},
	}

	var problems []string
	for _, s := range sets {
		if err := ensureIndexSet(ctx, db.Collection(s.coll), s.models, logger); err != nil {
			problems = append(problems, s.coll+": "+err.Error())
		}
	}
	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

/* -------------------------------------------------------------------------- */
/* Core helper: reconcile a set of desired indexes for one collection         */
/* -------------------------------------------------------------------------- */

type existingIndex struct {
	Name   string `bson:"name"`
	Key    bson.D `bson:"key"`
	Unique *bool  `bson:"unique,omitempty"`
}

func keySig(keys bson.D) string {
	parts := make([]string, 0, len(keys))
	for _, kv := range keys {
		parts = append(parts, fmt.Sprintf("%s:%v", kv.Key, kv.Value))
	}
	return strings.Join(parts, ", ")
}

func isUnique(b *bool) bool { return b != nil && *b }

func listIndexes(ctx context.Context, coll *mongo.Collection) (map[string]existingIndex, error) {
	cur, err := coll.Indexes().List(ctx)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	out := map[string]existingIndex{}
	for cur.Next(ctx) {
		var idx existingIndex
		if err := cur.Decode(&idx); err != nil {
			continue
		}
		out[keySig(idx.Key)] = idx
	}
	return out, cur.Err()
}

// ensureIndexSet creates each desired index. An index with the same keys is
// reused when its uniqueness matches and its name matches (or no name was
// requested); otherwise it is dropped and recreated.
func ensureIndexSet(ctx context.Context, coll *mongo.Collection, models []mongo.IndexModel, logger *zap.Logger) error {
	existing, err := listIndexes(ctx, coll)
	if err != nil {
		// A collection that does not exist yet has no indexes to reconcile.
		existing = map[string]existingIndex{}
	}

	var errs []string
	for _, m := range models {
		var name string
		var unique *bool
		if m.Options != nil {
			if m.Options.Name != nil {
				name = *m.Options.Name
			}
			unique = m.Options.Unique
		}
		sig := keySig(m.Keys.(bson.D))
		start := time.Now()
		fields := []zap.Field{
			zap.String("collection", coll.Name()),
			zap.String("name", name),
			zap.String("keys", sig),
			zap.Bool("unique", isUnique(unique)),
		}

		if ex, ok := existing[sig]; ok {
			if isUnique(ex.Unique) == isUnique(unique) && (name == "" || ex.Name == name) {
				logger.Debug("reusing existing index", fields...)
				continue
			}
			if _, err := coll.Indexes().DropOne(ctx, ex.Name); err != nil {
				errs = append(errs, fmt.Sprintf("%s: drop %s failed: %v", name, ex.Name, err))
				continue
			}
			logger.Info("dropped mismatched index", append(fields, zap.String("dropped", ex.Name))...)
		}

		if _, err := coll.Indexes().CreateOne(ctx, m); err != nil {
			if isUnique(unique) && mongo.IsDuplicateKeyError(err) {
				errs = append(errs, fmt.Sprintf("%s: cannot create unique index (duplicates present)", name))
			} else {
				errs = append(errs, fmt.Sprintf("%s: %v", name, err))
			}
			logger.Warn("index ensure failed", append(fields, zap.Error(err))...)
			continue
		}
		logger.Info("index ensured", append(fields, zap.Duration("took", time.Since(start)))...)
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

/* -------------------------------------------------------------------------- */
/* Collection-specific index sets                                              */
/* -------------------------------------------------------------------------- */

func idx(name string, unique bool, keys ...bson.E) mongo.IndexModel {
	o := options.Index().SetName(name)
	if unique {
		o.SetUnique(true)
	}
	return mongo.IndexModel{Keys: bson.D(keys), Options: o}
}

func usersIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		// One profile per email-shaped username.
		idx("uniq_users_username", true, bson.E{Key: "username", Value: 1}),
		// Maintenance queue: pending deletions.
		idx("idx_users_status", false, bson.E{Key: "status", Value: 1}),
		idx("idx_users_name_ci", false, bson.E{Key: "name_ci", Value: 1}, bson.E{Key: "_id", Value: 1}),
	}
}

func communitiesIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		idx("idx_communities_name_ci", false, bson.E{Key: "name_ci", Value: 1}, bson.E{Key: "_id", Value: 1}),
	}
}

func membersIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		// Community delete guard counts by community_id.
		idx("idx_members_community", false, bson.E{Key: "community_id", Value: 1}),
		idx("idx_members_status", false, bson.E{Key: "status", Value: 1}),
		idx("idx_members_name_ci", false, bson.E{Key: "name_ci", Value: 1}, bson.E{Key: "_id", Value: 1}),
	}
}

func teamsIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		idx("idx_teams_community", false, bson.E{Key: "community_id", Value: 1}),
		idx("idx_teams_name_ci", false, bson.E{Key: "name_ci", Value: 1}, bson.E{Key: "_id", Value: 1}),
	}
}

func trainingsIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		idx("idx_sound_trainings_date", false, bson.E{Key: "date", Value: -1}),
		idx("idx_sound_trainings_community", false, bson.E{Key: "community_id", Value: 1}),
	}
}

func auditIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		// Retention purge and recent-first queries.
		idx("idx_audit_timestamp", false, bson.E{Key: "timestamp", Value: -1}),
		idx("idx_audit_actor_time", false, bson.E{Key: "actor_id", Value: 1}, bson.E{Key: "timestamp", Value: -1}),
		idx("idx_audit_category_type", false, bson.E{Key: "category", Value: 1}, bson.E{Key: "event_type", Value: 1}, bson.E{Key: "timestamp", Value: -1}),
	}
}

func identitiesIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		idx("uniq_identities_email", true, bson.E{Key: "email", Value: 1}),
	}
}
