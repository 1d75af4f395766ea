// internal/app/features/dashboard/summary.go
package dashboard

import (
	"github.com/dalemusser/pastoralhub/internal/domain/models"
)

// Inputs are the snapshots a summary is computed from.
type Inputs struct {
	Members      []models.Member
	Communities  []models.Community
	Teams        []models.Team
	Trainings    []models.SoundTraining
	Users        []models.User
	IncludeQueue bool
}

// CommunityCount is one row of the members-per-community panel.
type CommunityCount struct {
	CommunityID string `json:"community_id"`
	Name        string `json:"name"`
	Members     int    `json:"members"`
}

// Summary is the dashboard body.
type Summary struct {
	Module         models.Module    `json:"module"`
	ActiveMembers  int              `json:"active_members"`
	Communities    int              `json:"communities"`
	Teams          *int             `json:"teams,omitempty"`
	SoundTrainings int              `json:"sound_trainings"`
	PerCommunity   []CommunityCount `json:"per_community"`
	PendingQueue   *int             `json:"pending_deletions,omitempty"`
}

// Summarize counts members that are Active and serving, overall and per
// community, in community snapshot order. Teams is set only for Liturgy.
func Summarize(module models.Module, in Inputs) Summary {
	s := Summary{
		Module:         module,
		Communities:    len(in.Communities),
		SoundTrainings: len(in.Trainings),
		PerCommunity:   make([]CommunityCount, 0, len(in.Communities)),
	}

	per := make(map[string]int)
	for _, m := range in.Members {
		if m.Listed() && m.Serving() {
			s.ActiveMembers++
			per[m.CommunityID]++
		}
	}
	for _, c := range in.Communities {
		s.PerCommunity = append(s.PerCommunity, CommunityCount{CommunityID: c.ID, Name: c.Name, Members: per[c.ID]})
	}

	if module == models.ModuleLiturgy {
		n := len(in.Teams)
		s.Teams = &n
	}

	if in.IncludeQueue {
		n := 0
		for _, u := range in.Users {
			if u.Status.PendingDeletion() {
				n++
			}
		}
		for _, m := range in.Members {
			if m.Status.PendingDeletion() {
				n++
			}
		}
		s.PendingQueue = &n
	}
	return s
}
