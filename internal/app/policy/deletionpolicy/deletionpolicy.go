// Package deletionpolicy decides what a delete request turns into.
//
// Rules per entity kind:
//   - Member: master hard-deletes; anyone else requests a soft delete
//   - User: the master profile is never deleted; master hard-deletes;
//     admins request a soft delete; others are refused
//   - Team: admins (and the master) hard-delete; others are refused
//   - Community: master hard-deletes while no member references it
//   - SoundTraining: anyone who can see trainings hard-deletes
package deletionpolicy

import (
	"slices"

	"github.com/dalemusser/pastoralhub/internal/domain/models"
)

// Kind identifies the entity type being deleted.
type Kind string

const (
	KindMember        Kind = "member"
	KindUser          Kind = "user"
	KindTeam          Kind = "team"
	KindCommunity     Kind = "community"
	KindSoundTraining Kind = "sound_training"
)

// Tier is the outcome of a delete request.
type Tier string

const (
	Denied            Tier = "denied"
	RequestSoftDelete Tier = "soft"
	HardDelete        Tier = "hard"
)

// Reasons shown to the caller when a request is refused.
const (
	ReasonMasterImmune      = "the master profile cannot be deleted"
	ReasonUsersAdminOnly    = "only administrators can delete users"
	ReasonTeamsAdminOnly    = "only administrators can delete teams"
	ReasonCommunityMaster   = "only the master can delete communities"
	ReasonCommunityHasUsers = "this community still has members and cannot be deleted"
	ReasonUnknownKind       = "unknown entity type"
)

// Target carries the facts about the entity that the rules need.
type Target struct {
	// IsMaster marks the master user profile (users only).
	IsMaster bool
	// References counts members pointing at the entity (communities only).
	References int64
}

// Decision is the result of Decide. Reason is set when Tier is Denied.
type Decision struct {
	Tier   Tier
	Reason string
}

// Allowed reports whether the request may proceed to confirmation.
func (d Decision) Allowed() bool { return d.Tier != Denied }

type rule func(actor models.User, target Target) Decision

var rules = map[Kind]rule{
	KindMember: func(actor models.User, _ Target) Decision {
		if actor.IsMaster {
			return hard()
		}
		return Decision{Tier: RequestSoftDelete}
	},
	KindUser: func(actor models.User, target Target) Decision {
		switch {
		case target.IsMaster:
			return deny(ReasonMasterImmune)
		case actor.IsMaster:
			return hard()
		case actor.IsAdmin:
			return Decision{Tier: RequestSoftDelete}
		default:
			return deny(ReasonUsersAdminOnly)
		}
	},
	KindTeam: func(actor models.User, _ Target) Decision {
		if actor.IsAdmin || actor.IsMaster {
			return hard()
		}
		return deny(ReasonTeamsAdminOnly)
	},
	KindCommunity: func(actor models.User, target Target) Decision {
		if !actor.IsMaster {
			return deny(ReasonCommunityMaster)
		}
		if target.References > 0 {
			return deny(ReasonCommunityHasUsers)
		}
		return hard()
	},
	KindSoundTraining: func(models.User, Target) Decision {
		return hard()
	},
}

// Kinds lists every entity type with a deletion rule, in a stable order.
func Kinds() []Kind {
	kinds := make([]Kind, 0, len(rules))
	for k := range rules {
		kinds = append(kinds, k)
	}
	slices.Sort(kinds)
	return kinds
}

// Decide returns the tier for actor deleting an entity of kind described by
// target.
func Decide(kind Kind, actor models.User, target Target) Decision {
	r, ok := rules[kind]
	if !ok {
		return deny(ReasonUnknownKind)
	}
	return r(actor, target)
}

func hard() Decision              { return Decision{Tier: HardDelete} }
func deny(reason string) Decision { return Decision{Tier: Denied, Reason: reason} }
