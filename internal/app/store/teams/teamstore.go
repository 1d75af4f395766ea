package teamstore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/pastoralhub/internal/app/system/normalize"
	"github.com/dalemusser/pastoralhub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const CollectionName = "teams"

var errNameRequired = errors.New("team name is required")

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection(CollectionName)}
}

func (s *Store) Collection() *mongo.Collection { return s.c }

func (s *Store) Create(ctx context.Context, t models.Team) (models.Team, error) {
	t.Name = normalize.Name(t.Name)
	if t.Name == "" {
		return models.Team{}, errNameRequired
	}
	now := time.Now().UTC()
	t.ID = primitive.NewObjectID().Hex()
	t.NameCI = text.Fold(t.Name)
	t.MemberIDs = dedupe(t.MemberIDs)
	t.CreatedAt = now
	t.UpdatedAt = now
	if _, err := s.c.InsertOne(ctx, t); err != nil {
		return models.Team{}, err
	}
	return t, nil
}

// Patch holds the mutable team fields. Nil means unchanged.
type Patch struct {
	Name        *string
	CommunityID *string
	MemberIDs   []string
}

// Update merges p into the team. Returns mongo.ErrNoDocuments if absent.
func (s *Store) Update(ctx context.Context, id string, p Patch) error {
	set := bson.M{"updated_at": time.Now().UTC()}
	if p.Name != nil {
		name := normalize.Name(*p.Name)
		if name == "" {
			return errNameRequired
		}
		set["name"] = name
		set["name_ci"] = text.Fold(name)
	}
	if p.CommunityID != nil {
		set["community_id"] = *p.CommunityID
	}
	if p.MemberIDs != nil {
		set["member_ids"] = dedupe(p.MemberIDs)
	}
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

func (s *Store) GetByID(ctx context.Context, id string) (models.Team, error) {
	var t models.Team
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&t); err != nil {
		return models.Team{}, err
	}
	return t, nil
}

// List returns all teams ordered by name.
func (s *Store) List(ctx context.Context) ([]models.Team, error) {
	cur, err := s.c.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "name_ci", Value: 1}, {Key: "_id", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	out := []models.Team{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Delete removes a team. Returns the number of documents deleted (0 or 1).
func (s *Store) Delete(ctx context.Context, id string) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

func dedupe(ids []string) []string {
	out := make([]string, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
