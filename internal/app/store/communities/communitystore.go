package communitystore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/pastoralhub/internal/app/system/normalize"
	"github.com/dalemusser/pastoralhub/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const CollectionName = "communities"

var (
	ErrDuplicateCommunity = errors.New("a community with this name already exists")
	errEmptyID            = errors.New("community id cannot be derived from an empty name")
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection(CollectionName)}
}

func (s *Store) Collection() *mongo.Collection { return s.c }

func (s *Store) GetByID(ctx context.Context, id string) (models.Community, error) {
	var c models.Community
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&c); err != nil {
		return models.Community{}, err
	}
	return c, nil
}

// Exists reports whether a community with the given id is stored.
func (s *Store) Exists(ctx context.Context, id string) (bool, error) {
	if id == "" {
		return false, nil
	}
	n, err := s.c.CountDocuments(ctx, bson.M{"_id": id}, options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// List returns all communities ordered by name.
func (s *Store) List(ctx context.Context) ([]models.Community, error) {
	cur, err := s.c.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "name_ci", Value: 1}, {Key: "_id", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	out := []models.Community{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) Count(ctx context.Context) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{})
}

// Create inserts a community. When c.ID is empty it is derived from the name.
func (s *Store) Create(ctx context.Context, c models.Community) (models.Community, error) {
	c.Name = normalize.Name(c.Name)
	if c.ID == "" {
		c.ID = normalize.Slug(c.Name)
	}
	if c.ID == "" {
		return models.Community{}, errEmptyID
	}
	c.NameCI = text.Fold(c.Name)
	now := time.Now().UTC()
	c.CreatedAt = now
	c.UpdatedAt = now
	if _, err := s.c.InsertOne(ctx, c); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Community{}, ErrDuplicateCommunity
		}
		return models.Community{}, err
	}
	return c, nil
}

// InsertIfAbsent writes c under its explicit id only when no document with
// that id exists. Existing documents are never modified. Reports whether a
// document was created.
func (s *Store) InsertIfAbsent(ctx context.Context, c models.Community) (bool, error) {
	now := time.Now().UTC()
	doc := bson.M{
		"name":       c.Name,
		"name_ci":    text.Fold(c.Name),
		"address":    c.Address,
		"created_at": now,
		"updated_at": now,
	}
	if c.Geo != nil {
		doc["geo"] = *c.Geo
	}
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": c.ID},
		bson.M{"$setOnInsert": doc},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		if wafflemongo.IsDup(err) {
			// Lost a race with a concurrent insert of the same id.
			return false, nil
		}
		return false, err
	}
	return res.UpsertedCount > 0, nil
}

// Patch holds mutable community fields. The id never changes.
type Patch struct {
	Name     *string
	Address  *string
	Geo      *models.GeoPoint
	ClearGeo bool
}

// Update merges p into the community. Returns mongo.ErrNoDocuments if absent.
func (s *Store) Update(ctx context.Context, id string, p Patch) error {
	set := bson.M{"updated_at": time.Now().UTC()}
	update := bson.M{}
	if p.Name != nil {
		name := normalize.Name(*p.Name)
		set["name"] = name
		set["name_ci"] = text.Fold(name)
	}
	if p.Address != nil {
		set["address"] = *p.Address
	}
	if p.Geo != nil {
		set["geo"] = *p.Geo
	} else if p.ClearGeo {
		update["$unset"] = bson.M{"geo": ""}
	}
	update["$set"] = set
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		if wafflemongo.IsDup(err) {
			return ErrDuplicateCommunity
		}
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// Delete removes a community by id. Returns the number of documents deleted (0 or 1).
// Callers check member references first; the store does not.
func (s *Store) Delete(ctx context.Context, id string) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
