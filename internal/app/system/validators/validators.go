// internal/app/system/validators/validators.go
package validators

import (
	"context"
	"errors"
	"strings"

	communitystore "github.com/dalemusser/pastoralhub/internal/app/store/communities"
	memberstore "github.com/dalemusser/pastoralhub/internal/app/store/members"
	trainingstore "github.com/dalemusser/pastoralhub/internal/app/store/soundtrainings"
	teamstore "github.com/dalemusser/pastoralhub/internal/app/store/teams"
	userstore "github.com/dalemusser/pastoralhub/internal/app/store/users"
	"github.com/dalemusser/pastoralhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// EnsureAll creates the directory collections (if missing) and tries to
// attach JSON-Schema validators. On servers that don't support
// collMod/validators (e.g. some DocumentDB versions), it logs and skips.
//
// Validation is "moderate": documents written by older clients that do not
// match are left alone until they are next updated.
func EnsureAll(ctx context.Context, db *mongo.Database, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	var problems []string

	ensure := func(coll string, schema bson.M) {
		if _, err := ensureCollection(ctx, db, coll, logger); err != nil {
			problems = append(problems, coll+": "+err.Error())
			return
		}
		if schema == nil {
			return
		}
		if err := setValidator(ctx, db, coll, schema); err != nil {
			if isNoSuchCommand(err) || isNotImplemented(err) {
				logger.Info("validator skipped (unsupported)", zap.String("collection", coll))
				return
			}
			problems = append(problems, coll+": "+err.Error())
			return
		}
		logger.Info("validator ensured", zap.String("collection", coll))
	}

	ensure(userstore.CollectionName, usersSchema())
	ensure(communitystore.CollectionName, communitiesSchema())
	ensure(memberstore.CollectionName, membersSchema())
	ensure(teamstore.CollectionName, teamsSchema())
	ensure(trainingstore.CollectionName, trainingsSchema())

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

/* ---------------------- collection helpers ---------------------- */

func collectionExists(ctx context.Context, db *mongo.Database, name string) (bool, error) {
	names, err := db.ListCollectionNames(ctx, bson.M{"name": name})
	if err != nil {
		return false, err
	}
	return len(names) > 0, nil
}

// ensureCollection idempotently makes sure name exists. created is true
// only when this call created it.
func ensureCollection(ctx context.Context, db *mongo.Database, name string, logger *zap.Logger) (created bool, err error) {
	exists, listErr := collectionExists(ctx, db, name)
	if listErr == nil && exists {
		return false, nil
	}
	// If listing failed, fall back to create-and-handle-race.
	if err := db.CreateCollection(ctx, name); err != nil {
		if isNamespaceExistsErr(err) {
			return false, nil
		}
		logger.Warn("createCollection failed", zap.String("collection", name), zap.Error(err))
		return false, err
	}
	logger.Info("created collection", zap.String("collection", name))
	return true, nil
}

func setValidator(ctx context.Context, db *mongo.Database, name string, validator bson.M) error {
	cmd := bson.D{
		{Key: "collMod", Value: name},
		{Key: "validator", Value: validator},
		{Key: "validationLevel", Value: "moderate"},
		{Key: "validationAction", Value: "error"},
	}
	var out bson.M
	return db.RunCommand(ctx, cmd).Decode(&out)
}

/* ------------------------- error helpers ------------------------- */

func isNamespaceExistsErr(err error) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && (ce.Code == 48 || strings.Contains(strings.ToLower(ce.Message), "already exists")) {
		return true
	}
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "already exists") || strings.Contains(s, "namespace exists")
}

func isNoSuchCommand(err error) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && (ce.Code == 59 || strings.Contains(strings.ToLower(ce.Message), "no such command")) {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "no such command")
}

func isNotImplemented(err error) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && (ce.Code == 115 ||
		strings.Contains(strings.ToLower(ce.Message), "not implemented") ||
		strings.Contains(strings.ToLower(ce.Message), "not supported")) {
		return true
	}
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "not implemented") || strings.Contains(s, "not supported")
}

/* ------------------------- JSON-Schema docs ---------------------- */

var nonBlank = bson.M{"bsonType": "string", "minLength": 1, "pattern": ".*\\S.*"}

func enumOf[T ~string](vals []T) bson.A {
	out := make(bson.A, 0, len(vals))
	for _, v := range vals {
		out = append(out, string(v))
	}
	return out
}

var statuses = bson.A{string(models.StatusActive), string(models.StatusPendingDeletion)}

// usersSchema also encodes that the master is always an administrator.
func usersSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"username", "community_id", "is_admin", "is_master", "status"},
			"properties": bson.M{
				"username":        nonBlank,
				"community_id":    bson.M{"bsonType": "string"},
				"is_admin":        bson.M{"bsonType": "bool"},
				"is_master":       bson.M{"bsonType": "bool"},
				"status":          bson.M{"enum": statuses},
				"allowed_modules": bson.M{"bsonType": bson.A{"array", "null"}, "items": bson.M{"enum": enumOf(models.AllModules)}},
			},
			"anyOf": bson.A{
				bson.M{"properties": bson.M{"is_master": bson.M{"enum": bson.A{false}}}},
				bson.M{"properties": bson.M{"is_admin": bson.M{"enum": bson.A{true}}}},
			},
		},
	}
}

func communitiesSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"name", "address"},
			"properties": bson.M{
				"name":    nonBlank,
				"address": nonBlank,
				"geo": bson.M{
					"bsonType": "object",
					"required": bson.A{"lat", "lng"},
					"properties": bson.M{
						"lat": bson.M{"bsonType": "double", "minimum": -90, "maximum": 90},
						"lng": bson.M{"bsonType": "double", "minimum": -180, "maximum": 180},
					},
				},
			},
		},
	}
}

func membersSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"name", "community_id", "status"},
			"properties": bson.M{
				"name":           nonBlank,
				"community_id":   nonBlank,
				"status":         bson.M{"enum": statuses},
				"role":           bson.M{"enum": enumOf(models.AllRoles)},
				"marital_status": bson.M{"enum": enumOf(models.AllMaritalStatuses)},
			},
		},
	}
}

func teamsSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"name", "community_id"},
			"properties": bson.M{
				"name":         nonBlank,
				"community_id": nonBlank,
				"member_ids":   bson.M{"bsonType": bson.A{"array", "null"}, "items": bson.M{"bsonType": "string"}},
			},
		},
	}
}

func trainingsSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"date", "community_id"},
			"properties": bson.M{
				"date":         bson.M{"bsonType": "string", "pattern": "^[0-9]{4}-[0-9]{2}-[0-9]{2}$"},
				"community_id": nonBlank,
				"member_ids":   bson.M{"bsonType": bson.A{"array", "null"}, "items": bson.M{"bsonType": "string"}},
			},
		},
	}
}
