// internal/domain/models/member.go
package models

import "time"

// Member is a musician or singer serving in the ministry.
//
// IsActive is a pointer because older records omit it; absent means serving.
// Role is optional for the same reason; absent means RoleMember.
type Member struct {
	ID              string         `bson:"_id" json:"id"`
	Name            string         `bson:"name" json:"name"`
	NameCI          string         `bson:"name_ci" json:"-"`
	Email           string         `bson:"email,omitempty" json:"email,omitempty"`
	Phone           string         `bson:"phone,omitempty" json:"phone,omitempty"`
	Role            Role           `bson:"role,omitempty" json:"role,omitempty"`
	MaritalStatus   MaritalStatus  `bson:"marital_status,omitempty" json:"marital_status,omitempty"`
	ParticipatedECC bool           `bson:"participated_ecc" json:"participated_ecc"`
	PastoralWorks   []PastoralWork `bson:"pastoral_works" json:"pastoral_works"`
	Instruments     []Instrument   `bson:"instruments" json:"instruments"`
	OtherInstrument string         `bson:"other_instrument,omitempty" json:"other_instrument,omitempty"`
	CommunityID     string         `bson:"community_id" json:"community_id"`
	Status          Status         `bson:"status" json:"status"`
	IsActive        *bool          `bson:"is_active,omitempty" json:"is_active,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// EffectiveRole returns the member's role, defaulting to RoleMember.
func (m Member) EffectiveRole() Role {
	if m.Role == "" {
		return RoleMember
	}
	return m.Role
}

// Serving reports whether the member currently serves (IsActive != false).
func (m Member) Serving() bool {
	return m.IsActive == nil || *m.IsActive
}

// Listed reports whether the member shows up in ordinary lists.
func (m Member) Listed() bool {
	return m.Status == StatusActive
}

func (m Member) HasInstrument(i Instrument) bool { return contains(m.Instruments, i) }
func (m Member) HasPastoralWork(p PastoralWork) bool { return contains(m.PastoralWorks, p) }

// Bool returns a pointer to b; handy for IsActive literals.
func Bool(b bool) *bool { return &b }
