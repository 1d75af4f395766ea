// internal/app/features/teams/teams.go
package teams

import (
	"context"
	"errors"
	"net/http"
	"strings"

	uierrors "github.com/dalemusser/pastoralhub/internal/app/features/errors"
	"github.com/dalemusser/pastoralhub/internal/app/features/shared/roster"
	"github.com/dalemusser/pastoralhub/internal/app/policy/deletionpolicy"
	teamstore "github.com/dalemusser/pastoralhub/internal/app/store/teams"
	"github.com/dalemusser/pastoralhub/internal/app/system/htmlsanitize"
	"github.com/dalemusser/pastoralhub/internal/app/system/timeouts"
	"github.com/dalemusser/pastoralhub/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// teamInput is the body of create and update. On update, absent fields
// keep their stored value.
type teamInput struct {
	Name        *string  `json:"name"`
	CommunityID *string  `json:"community_id"`
	MemberIDs   []string `json:"member_ids"`
}

// teamView is a team with its members resolved against the current
// members snapshot. Ids of deleted members are left out.
type teamView struct {
	models.Team
	Members []roster.Participant `json:"members"`
}

type listResponse struct {
	Items   []teamView `json:"items"`
	Total   int        `json:"total"`
	Version uint64     `json:"version"`
}

func (h *Handler) members(ctx context.Context) roster.Index {
	snap, err := h.Dir.MembersFeed.Snapshot(ctx)
	if err != nil {
		h.Log.Warn("members snapshot unavailable; team members not decorated", zap.Error(err))
	}
	return roster.NewIndex(snap.Items)
}

// ServeList answers every team, optionally filtered by ?community=.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	snap, err := h.Dir.TeamsFeed.Snapshot(ctx)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "teams snapshot failed", err, "could not load teams")
		return
	}
	community := strings.TrimSpace(r.URL.Query().Get("community"))
	idx := h.members(ctx)

	items := make([]teamView, 0, len(snap.Items))
	for _, t := range snap.Items {
		if community != "" && t.CommunityID != community {
			continue
		}
		items = append(items, teamView{Team: t, Members: idx.Resolve(t.MemberIDs)})
	}
	uierrors.RenderJSON(w, http.StatusOK, listResponse{Items: items, Total: len(items), Version: snap.Version})
}

func (h *Handler) ServeTeam(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	t, err := h.Dir.Teams.GetByID(ctx, id)
	if errors.Is(err, mongo.ErrNoDocuments) {
		uierrors.RenderNotFound(w, r, "team")
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "team lookup failed", err, "could not load team")
		return
	}
	uierrors.RenderJSON(w, http.StatusOK, teamView{Team: t, Members: h.members(ctx).Resolve(t.MemberIDs)})
}

// validate checks the fields present in in. On create every field is
// required.
func (h *Handler) validate(ctx context.Context, in *teamInput, creating bool) (map[string]string, error) {
	bad := map[string]string{}

	if in.Name != nil {
		name := htmlsanitize.Text(*in.Name)
		in.Name = &name
	}
	if (creating || in.Name != nil) && (in.Name == nil || *in.Name == "") {
		bad["name"] = "Team name is required."
	}

	if in.CommunityID != nil {
		c := strings.TrimSpace(*in.CommunityID)
		in.CommunityID = &c
	}
	switch {
	case (creating || in.CommunityID != nil) && (in.CommunityID == nil || *in.CommunityID == ""):
		bad["community_id"] = "Community is required."
	case in.CommunityID != nil:
		ok, err := h.Dir.CommunityExists(ctx, *in.CommunityID)
		if err != nil {
			return nil, err
		}
		if !ok {
			bad["community_id"] = "Community does not exist."
		}
	}

	if len(in.MemberIDs) > 0 {
		if unknown := h.members(ctx).Unknown(in.MemberIDs); len(unknown) > 0 {
			bad["member_ids"] = "Unknown members: " + strings.Join(unknown, ", ") + "."
		}
	}

	if len(bad) > 0 {
		return bad, nil
	}
	return nil, nil
}

func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var in teamInput
	if !uierrors.DecodeOr400(w, r, &in) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	bad, err := h.validate(ctx, &in, true)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "team validation lookup failed", err, "could not save team")
		return
	}
	if bad != nil {
		uierrors.RenderValidation(w, bad)
		return
	}

	t, err := h.Dir.Teams.Create(ctx, models.Team{Name: *in.Name, CommunityID: *in.CommunityID, MemberIDs: in.MemberIDs})
	if err != nil {
		h.ErrLog.LogServerError(w, r, "team insert failed", err, "could not save team")
		return
	}
	h.Dir.Touched(ctx, h.Dir.TeamsFeed)
	h.Log.Info("team created", zap.String("team_id", t.ID), zap.String("actor_id", actorID(r)))

	uierrors.RenderJSON(w, http.StatusCreated, teamView{Team: t, Members: h.members(ctx).Resolve(t.MemberIDs)})
}

// HandleUpdate merges the given fields into the team. An explicit empty
// member_ids list clears the roster.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var in teamInput
	if !uierrors.DecodeOr400(w, r, &in) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	bad, err := h.validate(ctx, &in, false)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "team validation lookup failed", err, "could not save team")
		return
	}
	if bad != nil {
		uierrors.RenderValidation(w, bad)
		return
	}

	err = h.Dir.Teams.Update(ctx, id, teamstore.Patch{Name: in.Name, CommunityID: in.CommunityID, MemberIDs: in.MemberIDs})
	if errors.Is(err, mongo.ErrNoDocuments) {
		uierrors.RenderNotFound(w, r, "team")
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "team update failed", err, "could not save team")
		return
	}
	h.Dir.Touched(ctx, h.Dir.TeamsFeed)

	t, err := h.Dir.Teams.GetByID(ctx, id)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "team reload failed", err, "team saved but could not be reloaded")
		return
	}
	uierrors.RenderJSON(w, http.StatusOK, teamView{Team: t, Members: h.members(ctx).Resolve(t.MemberIDs)})
}

// HandleDelete asks for confirmation of a team deletion. Administrators
// only.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	t, err := h.Dir.Teams.GetByID(ctx, id)
	if errors.Is(err, mongo.ErrNoDocuments) {
		uierrors.RenderNotFound(w, r, "team")
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "team lookup failed", err, "could not load team")
		return
	}

	h.Deletions.Request(w, r, deletionpolicy.KindTeam, t.ID, t.Name, deletionpolicy.Target{})
}
