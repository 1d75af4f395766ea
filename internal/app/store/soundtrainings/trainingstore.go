package trainingstore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/pastoralhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const CollectionName = "sound_trainings"

// ErrBadDate is returned when a training date is not a YYYY-MM-DD calendar date.
var ErrBadDate = errors.New("date must be a valid YYYY-MM-DD calendar date")

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection(CollectionName)}
}

func (s *Store) Collection() *mongo.Collection { return s.c }

// ValidDate reports whether d is a real calendar date in DateLayout.
func ValidDate(d string) bool {
	_, err := time.Parse(models.DateLayout, d)
	return err == nil
}

func (s *Store) Create(ctx context.Context, st models.SoundTraining) (models.SoundTraining, error) {
	if !ValidDate(st.Date) {
		return models.SoundTraining{}, ErrBadDate
	}
	now := time.Now().UTC()
	st.ID = primitive.NewObjectID().Hex()
	if st.MemberIDs == nil {
		st.MemberIDs = []string{}
	}
	st.CreatedAt = now
	st.UpdatedAt = now
	if _, err := s.c.InsertOne(ctx, st); err != nil {
		return models.SoundTraining{}, err
	}
	return st, nil
}

// Patch holds mutable training fields. Nil means unchanged.
type Patch struct {
	Date        *string
	CommunityID *string
	MemberIDs   []string
}

// Update merges p into the training. Returns mongo.ErrNoDocuments if absent.
func (s *Store) Update(ctx context.Context, id string, p Patch) error {
	set := bson.M{"updated_at": time.Now().UTC()}
	if p.Date != nil {
		if !ValidDate(*p.Date) {
			return ErrBadDate
		}
		set["date"] = *p.Date
	}
	if p.CommunityID != nil {
		set["community_id"] = *p.CommunityID
	}
	if p.MemberIDs != nil {
		set["member_ids"] = p.MemberIDs
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

func (s *Store) GetByID(ctx context.Context, id string) (models.SoundTraining, error) {
	var st models.SoundTraining
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&st); err != nil {
		return models.SoundTraining{}, err
	}
	return st, nil
}

// List returns all trainings, most recent date first.
func (s *Store) List(ctx context.Context) ([]models.SoundTraining, error) {
	cur, err := s.c.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "date", Value: -1}, {Key: "_id", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	out := []models.SoundTraining{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Delete removes a training. Returns the number of documents deleted (0 or 1).
func (s *Store) Delete(ctx context.Context, id string) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
