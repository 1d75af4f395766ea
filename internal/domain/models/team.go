// internal/domain/models/team.go
package models

import "time"

// DateLayout is the calendar-date format used for sound trainings.
const DateLayout = "2006-01-02"

// Team is a named group of members serving a community (Liturgy module).
// MemberIDs may reference members that no longer exist; readers skip those.
type Team struct {
	ID          string   `bson:"_id" json:"id"`
	Name        string   `bson:"name" json:"name"`
	NameCI      string   `bson:"name_ci" json:"-"`
	CommunityID string   `bson:"community_id" json:"community_id"`
	MemberIDs   []string `bson:"member_ids" json:"member_ids"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// SoundTraining records a dated sound-equipment training session.
type SoundTraining struct {
	ID          string   `bson:"_id" json:"id"`
	Date        string   `bson:"date" json:"date"` // YYYY-MM-DD
	CommunityID string   `bson:"community_id" json:"community_id"`
	MemberIDs   []string `bson:"member_ids" json:"member_ids"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// SongSuggestion is one AI-proposed song for a moment of the Mass.
type SongSuggestion struct {
	Part      string `json:"part"`
	Title     string `json:"title"`
	Artist    string `json:"artist"`
	Reasoning string `json:"reasoning"`
}
