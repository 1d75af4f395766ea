package userstore

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

// CollectionName is the users collection.
const CollectionName = "users"

var (
	// ErrDuplicateUser is returned when the id or username is already taken.
	ErrDuplicateUser = errors.New("a user with this email already exists")
	// ErrMasterMustBeAdmin is returned by writes that would leave a master without admin.
	ErrMasterMustBeAdmin = errors.New("the master account must remain an administrator")
	errIDRequired        = errors.New("user id is required")
	errBadModule         = errors.New("unknown module")
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection(CollectionName)}
}

// Collection exposes the underlying collection for change streams.
func (s *Store) Collection() *mongo.Collection { return s.c }

// GetByID loads a profile by identity uid. Returns mongo.ErrNoDocuments if absent.
func (s *Store) GetByID(ctx context.Context, id string) (models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&u); err != nil {
		return models.User{}, err
	}
	return u, nil
}

// GetByUsername loads a profile by its email-shaped username. Returns
// mongo.ErrNoDocuments if absent.
func (s *Store) GetByUsername(ctx context.Context, username string) (models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"username": normalize.Email(username)}).Decode(&u); err != nil {
		return models.User{}, err
	}
	return u, nil
}

// List returns every profile (any status) ordered by name.
func (s *Store) List(ctx context.Context) ([]models.User, error) {
	cur, err := s.c.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "name_ci", Value: 1}, {Key: "_id", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	out := []models.User{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListByStatus returns profiles in the given status ordered by name.
func (s *Store) ListByStatus(ctx context.Context, st models.Status) ([]models.User, error) {
	cur, err := s.c.Find(ctx, bson.M{"status": st}, options.Find().SetSort(bson.D{{Key: "name_ci", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	out := []models.User{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// prepare applies the invariants every stored profile satisfies.
func prepare(u *models.User) error {
	if u.ID == "" {
		return errIDRequired
	}
	u.Name = normalize.Name(u.Name)
	u.NameCI = text.Fold(u.Name)
	u.Username = normalize.Email(u.Username)
	u.Password = ""
	if u.IsMaster {
		u.IsAdmin = true
	}
	if u.Status == "" {
		u.Status = models.StatusActive
	}
	if len(u.AllowedModules) == 0 {
		u.AllowedModules = []models.Module{models.ModuleLiturgy}
	}
	for _, m := range u.AllowedModules {
		if !m.Valid() {
			return errBadModule
		}
	}
	if u.CommunityID == "" {
		u.CommunityID = models.CoordinationCommunityID
	}
	return nil
}

// Create inserts a new profile keyed by the identity uid.
func (s *Store) Create(ctx context.Context, u models.User) (models.User, error) {
	if err := prepare(&u); err != nil {
		return models.User{}, err
	}
	now := time.Now().UTC()
	u.CreatedAt = now
	u.UpdatedAt = now
	if _, err := s.c.InsertOne(ctx, u); err != nil {
		if wafflemongo.IsDup(err) {
			return models.User{}, ErrDuplicateUser
		}
		return models.User{}, err
	}
	return u, nil
}

// Set writes the whole profile under its explicit id, replacing any
// existing document (set-with-explicit-id).
func (s *Store) Set(ctx context.Context, u models.User) (models.User, error) {
	if err := prepare(&u); err != nil {
		return models.User{}, err
	}
	now := time.Now().UTC()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	u.UpdatedAt = now
	_, err := s.c.ReplaceOne(ctx, bson.M{"_id": u.ID}, u, options.Replace().SetUpsert(true))
	if err != nil {
		if wafflemongo.IsDup(err) {
			return models.User{}, ErrDuplicateUser
		}
		return models.User{}, err
	}
	return u, nil
}

// Patch lists the fields an administrator may change on a profile.
// Nil fields are left untouched.
type Patch struct {
	Name           *string
	CommunityID    *string
	IsAdmin        *bool
	AllowedModules []models.Module
}

// Update merges p into the profile. Returns mongo.ErrNoDocuments if the
// profile does not exist.
func (s *Store) Update(ctx context.Context, id string, p Patch) error {
	set := bson.M{"updated_at": time.Now().UTC()}
	filter := bson.M{"_id": id}
	if p.Name != nil {
		name := normalize.Name(*p.Name)
		set["name"] = name
		set["name_ci"] = text.Fold(name)
	}
	if p.CommunityID != nil {
		set["community_id"] = *p.CommunityID
	}
	if p.IsAdmin != nil {
		set["is_admin"] = *p.IsAdmin
		if !*p.IsAdmin {
			// A master can never lose admin; refuse rather than write.
			cur, err := s.GetByID(ctx, id)
			if err != nil {
				return err
			}
			if cur.IsMaster {
				return ErrMasterMustBeAdmin
			}
			filter["is_master"] = bson.M{"$ne": true}
		}
	}
	if p.AllowedModules != nil {
		if len(p.AllowedModules) == 0 {
			return errBadModule
		}
		for _, m := range p.AllowedModules {
			if !m.Valid() {
				return errBadModule
			}
		}
		set["allowed_modules"] = p.AllowedModules
	}
	res, err := s.c.UpdateOne(ctx, filter, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// SetStatus moves a profile between Active and PendingDeletion.
// Setting the status it already has is not an error.
func (s *Store) SetStatus(ctx context.Context, id string, st models.Status) error {
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"status":     st,
		"updated_at": time.Now().UTC(),
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// Delete removes a profile. Returns the number of documents deleted (0 or 1).
func (s *Store) Delete(ctx context.Context, id string) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// CountByStatus counts profiles in the given status.
func (s *Store) CountByStatus(ctx context.Context, st models.Status) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{"status": st})
}
