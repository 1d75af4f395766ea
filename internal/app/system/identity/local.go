package identity

import (
	"context"
	"errors"
	"fmt"
	"time"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"golang.org/x/crypto/bcrypt"
)

// LocalCollection holds credentials for the local provider.
const LocalCollection = "identities"

// BcryptCost is the hashing cost for stored passwords.
const BcryptCost = 12

type localIdentity struct {
	UID          string    `bson:"_id"`
	Email        string    `bson:"email"`
	PasswordHash string    `bson:"password_hash"`
	CreatedAt    time.Time `bson:"created_at"`
	UpdatedAt    time.Time `bson:"updated_at"`
}

// Local is a Provider backed by a Mongo collection of bcrypt hashes. It is
// used for development and self-hosted deployments without Firebase.
type Local struct {
	c *mongo.Collection
}

func NewLocal(db *mongo.Database) *Local {
	return &Local{c: db.Collection(LocalCollection)}
}

func (p *Local) SignIn(ctx context.Context, email, password string) (Identity, error) {
	var li localIdentity
	err := p.c.FindOne(ctx, bson.M{"email": normEmail(email)}).Decode(&li)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return Identity{}, ErrInvalidCredentials
	}
	if err != nil {
		return Identity{}, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(li.PasswordHash), []byte(password)); err != nil {
		return Identity{}, ErrInvalidCredentials
	}
	return Identity{UID: li.UID, Email: li.Email}, nil
}

func (p *Local) CreateIdentity(ctx context.Context, email, password string) (Identity, error) {
	if err := CheckPassword(password); err != nil {
		return Identity{}, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), BcryptCost)
	if err != nil {
		return Identity{}, fmt.Errorf("hash password: %w", err)
	}
	now := time.Now().UTC()
	li := localIdentity{
		UID:          primitive.NewObjectID().Hex(),
		Email:        normEmail(email),
		PasswordHash: string(hash),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if _, err := p.c.InsertOne(ctx, li); err != nil {
		if wafflemongo.IsDup(err) {
			return Identity{}, ErrEmailAlreadyExists
		}
		return Identity{}, err
	}
	return Identity{UID: li.UID, Email: li.Email}, nil
}

func (p *Local) ChangePassword(ctx context.Context, uid, newPassword string) error {
	if err := CheckPassword(newPassword); err != nil {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), BcryptCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	res, err := p.c.UpdateByID(ctx, uid, bson.M{"$set": bson.M{
		"password_hash": string(hash),
		"updated_at":    time.Now().UTC(),
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

func (p *Local) DeleteIdentity(ctx context.Context, uid string) error {
	_, err := p.c.DeleteOne(ctx, bson.M{"_id": uid})
	return err
}

// EnsureLocalIndexes creates the unique email index the local provider
// relies on for duplicate detection.
func EnsureLocalIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(LocalCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("uniq_identities_email"),
	})
	return err
}
