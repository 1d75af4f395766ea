// internal/app/features/members/types.go
package members

import (
	"context"
	"strings"

	memberstore "github.com/dalemusser/pastoralhub/internal/app/store/members"
	"github.com/dalemusser/pastoralhub/internal/app/system/htmlsanitize"
	"github.com/dalemusser/pastoralhub/internal/app/system/phone"
	"github.com/dalemusser/pastoralhub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/validate"
)

// memberInput is the JSON body of create and update. Absent fields are nil:
// create fills them with defaults and update leaves them as stored.
// The phone arrives split into the country prefix and the local body.
type memberInput struct {
	Name            *string               `json:"name"`
	Email           *string               `json:"email"`
	PhonePrefix     *string               `json:"phone_prefix"`
	PhoneBody       *string               `json:"phone_body"`
	Role            *models.Role          `json:"role"`
	MaritalStatus   *models.MaritalStatus `json:"marital_status"`
	ParticipatedECC *bool                 `json:"participated_ecc"`
	PastoralWorks   []models.PastoralWork `json:"pastoral_works"`
	Instruments     []models.Instrument   `json:"instruments"`
	OtherInstrument *string               `json:"other_instrument"`
	CommunityID     *string               `json:"community_id"`
	IsActive        *bool                 `json:"is_active"`
}

// memberView is a member as returned by GET /members/{id}: the stored
// phone is split back into prefix and body for editing.
type memberView struct {
	models.Member
	PhonePrefix   string `json:"phone_prefix"`
	PhoneBody     string `json:"phone_body"`
	CommunityName string `json:"community_name"`
}

// listResponse is the body of GET /members.
type listResponse struct {
	Items   []listItem `json:"items"`
	Total   int        `json:"total"`
	Version uint64     `json:"version"`
}

type listItem struct {
	models.Member
	CommunityName string `json:"community_name"`
}

// fields validates a create body and converts it to store fields.
// It returns per-field messages when anything is invalid.
func (h *Handler) fields(ctx context.Context, in memberInput) (memberstore.Fields, map[string]string, error) {
	if in.Name == nil {
		in.Name = new(string)
	}
	if in.CommunityID == nil {
		in.CommunityID = new(string)
	}
	p, bad, err := h.patch(ctx, in)
	if err != nil || bad != nil {
		return memberstore.Fields{}, bad, err
	}

	active := true
	if p.IsActive != nil {
		active = *p.IsActive
	}
	return memberstore.Fields{
		Name:            *p.Name,
		Email:           deref(p.Email),
		Phone:           phone.Compose(deref(p.PhonePrefix), deref(p.PhoneBody)),
		Role:            deref(p.Role),
		MaritalStatus:   deref(p.MaritalStatus),
		ParticipatedECC: deref(p.ParticipatedECC),
		PastoralWorks:   p.PastoralWorks,
		Instruments:     p.Instruments,
		OtherInstrument: deref(p.OtherInstrument),
		CommunityID:     *p.CommunityID,
		IsActive:        active,
	}, nil, nil
}

// patch validates the fields present in an update body and converts them
// to a store patch. Cross-field rules are left to the store, which applies
// them to the merged member.
func (h *Handler) patch(ctx context.Context, in memberInput) (memberstore.Patch, map[string]string, error) {
	bad := map[string]string{}
	p := memberstore.Patch{
		PhonePrefix:     in.PhonePrefix,
		PhoneBody:       in.PhoneBody,
		Role:            in.Role,
		MaritalStatus:   in.MaritalStatus,
		ParticipatedECC: in.ParticipatedECC,
		PastoralWorks:   in.PastoralWorks,
		Instruments:     in.Instruments,
		IsActive:        in.IsActive,
	}

	if in.Name != nil {
		name := htmlsanitize.Text(*in.Name)
		if name == "" {
			bad["name"] = "Name is required."
		}
		p.Name = &name
	}
	if in.Email != nil {
		email := strings.TrimSpace(*in.Email)
		if email != "" && !validate.SimpleEmailValid(email) {
			bad["email"] = "Enter a valid email address."
		}
		p.Email = &email
	}
	if in.Role != nil && *in.Role != "" && !in.Role.Valid() {
		bad["role"] = "Unknown role."
	}
	if in.MaritalStatus != nil && *in.MaritalStatus != "" && !in.MaritalStatus.Valid() {
		bad["marital_status"] = "Unknown marital status."
	}
	for _, w := range in.PastoralWorks {
		if !w.Valid() {
			bad["pastoral_works"] = "Unknown pastoral work: " + string(w) + "."
			break
		}
	}
	for _, i := range in.Instruments {
		if !i.Valid() {
			bad["instruments"] = "Unknown instrument: " + string(i) + "."
			break
		}
	}
	if in.OtherInstrument != nil {
		other := htmlsanitize.Text(*in.OtherInstrument)
		p.OtherInstrument = &other
	}

	if in.CommunityID != nil {
		communityID := strings.TrimSpace(*in.CommunityID)
		if communityID == "" {
			bad["community_id"] = "Community is required."
		} else {
			ok, err := h.Dir.CommunityExists(ctx, communityID)
			if err != nil {
				return memberstore.Patch{}, nil, err
			}
			if !ok {
				bad["community_id"] = "Community does not exist."
			}
		}
		p.CommunityID = &communityID
	}

	if len(bad) > 0 {
		return memberstore.Patch{}, bad, nil
	}
	return p, nil, nil
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}
