// internal/app/features/shared/roster/roster.go
//
// Package roster resolves the member ids held by teams and sound trainings
// against the current members snapshot.
package roster

import "github.com/dalemusser/pastoralhub/internal/domain/models"

// Participant is a member reference resolved for display.
type Participant struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Index maps member id to member.
type Index map[string]models.Member

// NewIndex indexes a members snapshot.
func NewIndex(members []models.Member) Index {
	idx := make(Index, len(members))
	for _, m := range members {
		idx[m.ID] = m
	}
	return idx
}

// Resolve returns the participants for ids in their stored order.
// Ids with no member in the snapshot are dropped.
func (idx Index) Resolve(ids []string) []Participant {
	out := make([]Participant, 0, len(ids))
	for _, id := range ids {
		m, ok := idx[id]
		if !ok {
			continue
		}
		out = append(out, Participant{ID: m.ID, Name: m.Name})
	}
	return out
}

// Unknown returns the ids not present in the snapshot.
func (idx Index) Unknown(ids []string) []string {
	var out []string
	for _, id := range ids {
		if _, ok := idx[id]; !ok {
			out = append(out, id)
		}
	}
	return out
}
