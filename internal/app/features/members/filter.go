// internal/app/features/members/filter.go
package members

import (
	"net/url"
	"sort"
	"strings"

	"github.com/dalemusser/pastoralhub/internal/app/system/normalize"
	"github.com/dalemusser/pastoralhub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
)

// Filter is the set of list criteria. Empty fields match everything and
// the criteria are ANDed. Only members in Active status are ever listed.
type Filter struct {
	Instrument    models.Instrument
	PastoralWork  models.PastoralWork
	Community     string
	Role          models.Role
	MaritalStatus models.MaritalStatus
	ECC           string // "yes", "no" or "" (any)
	Active        string // "yes" (default), "no" or "all"
	Query         string // folded substring of the name
	Sort          string // "name" (default), "-name", "community"
}

// ParseFilter reads a Filter from query parameters.
func ParseFilter(q url.Values) Filter {
	f := Filter{
		Instrument:    models.Instrument(normalize.QueryParam(q.Get("instrument"))),
		PastoralWork:  models.PastoralWork(normalize.QueryParam(q.Get("pastoral_work"))),
		Community:     normalize.QueryParam(q.Get("community")),
		Role:          models.Role(normalize.QueryParam(q.Get("role"))),
		MaritalStatus: models.MaritalStatus(normalize.QueryParam(q.Get("marital_status"))),
		ECC:           strings.ToLower(normalize.QueryParam(q.Get("ecc"))),
		Active:        strings.ToLower(normalize.QueryParam(q.Get("active"))),
		Query:         text.Fold(normalize.QueryParam(q.Get("q"))),
		Sort:          normalize.QueryParam(q.Get("sort")),
	}
	if f.ECC != "yes" && f.ECC != "no" {
		f.ECC = ""
	}
	if f.Active != "no" && f.Active != "all" {
		f.Active = "yes"
	}
	return f
}

// Match reports whether m passes every criterion.
func (f Filter) Match(m models.Member) bool {
	if !m.Listed() {
		return false
	}
	if f.Instrument != "" && !m.HasInstrument(f.Instrument) {
		return false
	}
	if f.PastoralWork != "" && !m.HasPastoralWork(f.PastoralWork) {
		return false
	}
	if f.Community != "" && m.CommunityID != f.Community {
		return false
	}
	if f.Role != "" && m.EffectiveRole() != f.Role {
		return false
	}
	if f.MaritalStatus != "" && m.MaritalStatus != f.MaritalStatus {
		return false
	}
	switch f.ECC {
	case "yes":
		if !m.ParticipatedECC {
			return false
		}
	case "no":
		if m.ParticipatedECC {
			return false
		}
	}
	switch f.Active {
	case "yes":
		if !m.Serving() {
			return false
		}
	case "no":
		if m.Serving() {
			return false
		}
	}
	if f.Query != "" {
		ci := m.NameCI
		if ci == "" {
			ci = text.Fold(m.Name)
		}
		if !strings.Contains(ci, f.Query) {
			return false
		}
	}
	return true
}

// Apply returns the matching members in the requested order.
// communityName resolves ids for the "community" sort.
func (f Filter) Apply(all []models.Member, communityName func(id string) string) []models.Member {
	out := make([]models.Member, 0, len(all))
	for _, m := range all {
		if f.Match(m) {
			out = append(out, m)
		}
	}

	byName := func(a, b models.Member) bool {
		an, bn := text.Fold(a.Name), text.Fold(b.Name)
		if an != bn {
			return an < bn
		}
		return a.ID < b.ID
	}
	switch f.Sort {
	case "-name":
		sort.SliceStable(out, func(i, j int) bool { return byName(out[j], out[i]) })
	case "community":
		sort.SliceStable(out, func(i, j int) bool {
			ci, cj := text.Fold(communityName(out[i].CommunityID)), text.Fold(communityName(out[j].CommunityID))
			if ci != cj {
				return ci < cj
			}
			return byName(out[i], out[j])
		})
	default:
		sort.SliceStable(out, func(i, j int) bool { return byName(out[i], out[j]) })
	}
	return out
}
