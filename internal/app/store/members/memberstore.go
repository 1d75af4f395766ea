package memberstore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/pastoralhub/internal/app/system/normalize"
	"github.com/dalemusser/pastoralhub/internal/app/system/phone"
	"github.com/dalemusser/pastoralhub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const CollectionName = "members"

var errNameRequired = errors.New("member name is required")

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection(CollectionName)}
}

func (s *Store) Collection() *mongo.Collection { return s.c }

// Fields are the member attributes editable through the member form.
// Status is not among them: it only moves through SetStatus.
type Fields struct {
	Name            string
	Email           string
	Phone           string
	Role            models.Role
	MaritalStatus   models.MaritalStatus
	ParticipatedECC bool
	PastoralWorks   []models.PastoralWork
	Instruments     []models.Instrument
	OtherInstrument string
	CommunityID     string
	IsActive        bool
}

// normalized applies the cross-field rules: ECC participation only applies
// to married members and the free-text instrument only to "Outro".
func (f Fields) normalized() Fields {
	f.Name = normalize.Name(f.Name)
	f.Email = normalize.Email(f.Email)
	if f.Role == "" {
		f.Role = models.RoleMember
	}
	if f.MaritalStatus != models.MaritalMarried {
		f.ParticipatedECC = false
	}
	hasOther := false
	for _, i := range f.Instruments {
		if i == models.InstrumentOther {
			hasOther = true
		}
	}
	if !hasOther {
		f.OtherInstrument = ""
	}
	if f.PastoralWorks == nil {
		f.PastoralWorks = []models.PastoralWork{}
	}
	if f.Instruments == nil {
		f.Instruments = []models.Instrument{}
	}
	return f
}

// Create inserts a new member in Active status.
func (s *Store) Create(ctx context.Context, f Fields) (models.Member, error) {
	f = f.normalized()
	if f.Name == "" {
		return models.Member{}, errNameRequired
	}
	now := time.Now().UTC()
	m := models.Member{
		ID:              primitive.NewObjectID().Hex(),
		Name:            f.Name,
		NameCI:          text.Fold(f.Name),
		Email:           f.Email,
		Phone:           f.Phone,
		Role:            f.Role,
		MaritalStatus:   f.MaritalStatus,
		ParticipatedECC: f.ParticipatedECC,
		PastoralWorks:   f.PastoralWorks,
		Instruments:     f.Instruments,
		OtherInstrument: f.OtherInstrument,
		CommunityID:     f.CommunityID,
		Status:          models.StatusActive,
		IsActive:        models.Bool(f.IsActive),
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if _, err := s.c.InsertOne(ctx, m); err != nil {
		return models.Member{}, err
	}
	return m, nil
}

// Patch lists member fields to change. Nil fields keep their stored value.
// The phone arrives in its two parts; a missing part is taken from the
// stored number.
type Patch struct {
	Name            *string
	Email           *string
	PhonePrefix     *string
	PhoneBody       *string
	Role            *models.Role
	MaritalStatus   *models.MaritalStatus
	ParticipatedECC *bool
	PastoralWorks   []models.PastoralWork
	Instruments     []models.Instrument
	OtherInstrument *string
	CommunityID     *string
	IsActive        *bool
}

// merge applies p on top of the stored member.
func (p Patch) merge(m models.Member) Fields {
	f := Fields{
		Name:            m.Name,
		Email:           m.Email,
		Phone:           m.Phone,
		Role:            m.Role,
		MaritalStatus:   m.MaritalStatus,
		ParticipatedECC: m.ParticipatedECC,
		PastoralWorks:   m.PastoralWorks,
		Instruments:     m.Instruments,
		OtherInstrument: m.OtherInstrument,
		CommunityID:     m.CommunityID,
		IsActive:        m.Serving(),
	}
	if p.Name != nil {
		f.Name = *p.Name
	}
	if p.Email != nil {
		f.Email = *p.Email
	}
	if p.PhonePrefix != nil || p.PhoneBody != nil {
		prefix, body := phone.Split(m.Phone)
		if p.PhonePrefix != nil {
			prefix = *p.PhonePrefix
		}
		if p.PhoneBody != nil {
			body = *p.PhoneBody
		}
		f.Phone = phone.Compose(prefix, body)
	}
	if p.Role != nil {
		f.Role = *p.Role
	}
	if p.MaritalStatus != nil {
		f.MaritalStatus = *p.MaritalStatus
	}
	if p.ParticipatedECC != nil {
		f.ParticipatedECC = *p.ParticipatedECC
	}
	if p.PastoralWorks != nil {
		f.PastoralWorks = p.PastoralWorks
	}
	if p.Instruments != nil {
		f.Instruments = p.Instruments
	}
	if p.OtherInstrument != nil {
		f.OtherInstrument = *p.OtherInstrument
	}
	if p.CommunityID != nil {
		f.CommunityID = *p.CommunityID
	}
	if p.IsActive != nil {
		f.IsActive = *p.IsActive
	}
	return f
}

// Update merges p into an existing member and writes the result. The
// cross-field rules run on the merged member, so a patch that only moves
// the marital status away from married still clears ECC participation.
// Status and creation time are preserved. Returns mongo.ErrNoDocuments if
// the member is absent.
func (s *Store) Update(ctx context.Context, id string, p Patch) error {
	cur, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	f := p.merge(cur).normalized()
	if f.Name == "" {
		return errNameRequired
	}
	set := bson.M{
		"name":             f.Name,
		"name_ci":          text.Fold(f.Name),
		"email":            f.Email,
		"phone":            f.Phone,
		"role":             f.Role,
		"marital_status":   f.MaritalStatus,
		"participated_ecc": f.ParticipatedECC,
		"pastoral_works":   f.PastoralWorks,
		"instruments":      f.Instruments,
		"other_instrument": f.OtherInstrument,
		"community_id":     f.CommunityID,
		"is_active":        f.IsActive,
		"updated_at":       time.Now().UTC(),
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

func (s *Store) GetByID(ctx context.Context, id string) (models.Member, error) {
	var m models.Member
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&m); err != nil {
		return models.Member{}, err
	}
	return m, nil
}

// List returns every member regardless of status, ordered by name.
func (s *Store) List(ctx context.Context) ([]models.Member, error) {
	return s.find(ctx, bson.M{})
}

// ListByStatus returns members in the given status, ordered by name.
func (s *Store) ListByStatus(ctx context.Context, st models.Status) ([]models.Member, error) {
	return s.find(ctx, bson.M{"status": st})
}

func (s *Store) find(ctx context.Context, filter bson.M) ([]models.Member, error) {
	cur, err := s.c.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "name_ci", Value: 1}, {Key: "_id", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	out := []models.Member{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// SetStatus moves a member between Active and PendingDeletion.
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

// Delete removes a member. Returns the number of documents deleted (0 or 1).
func (s *Store) Delete(ctx context.Context, id string) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// CountByCommunity counts members of any status that reference communityID.
func (s *Store) CountByCommunity(ctx context.Context, communityID string) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{"community_id": communityID})
}

func (s *Store) CountByStatus(ctx context.Context, st models.Status) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{"status": st})
}
