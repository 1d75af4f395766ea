// internal/app/features/communities/communities.go
package communities

import (
	"context"
	"errors"
	"net/http"

	uierrors "github.com/dalemusser/pastoralhub/internal/app/features/errors"
	"github.com/dalemusser/pastoralhub/internal/app/policy/deletionpolicy"
	communitystore "github.com/dalemusser/pastoralhub/internal/app/store/communities"
	"github.com/dalemusser/pastoralhub/internal/app/system/htmlsanitize"
	"github.com/dalemusser/pastoralhub/internal/app/system/normalize"
	"github.com/dalemusser/pastoralhub/internal/app/system/timeouts"
	"github.com/dalemusser/pastoralhub/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type communityInput struct {
	Name     *string          `json:"name"`
	Address  *string          `json:"address"`
	Geo      *models.GeoPoint `json:"geo"`
	ClearGeo bool             `json:"clear_geo"`
}

type communityView struct {
	models.Community
	MemberCount int `json:"member_count"`
}

type listResponse struct {
	Items   []communityView `json:"items"`
	Total   int             `json:"total"`
	Version uint64          `json:"version"`
}

// memberCounts counts members of any status per community, from the
// members snapshot.
func (h *Handler) memberCounts(ctx context.Context) map[string]int {
	snap, err := h.Dir.MembersFeed.Snapshot(ctx)
	if err != nil {
		h.Log.Warn("members snapshot unavailable; counts omitted", zap.Error(err))
	}
	counts := make(map[string]int)
	for _, m := range snap.Items {
		counts[m.CommunityID]++
	}
	return counts
}

func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	snap, err := h.Dir.CommunitiesFeed.Snapshot(ctx)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "communities snapshot failed", err, "could not load communities")
		return
	}
	counts := h.memberCounts(ctx)

	items := make([]communityView, 0, len(snap.Items))
	for _, c := range snap.Items {
		items = append(items, communityView{Community: c, MemberCount: counts[c.ID]})
	}
	uierrors.RenderJSON(w, http.StatusOK, listResponse{Items: items, Total: len(items), Version: snap.Version})
}

func (h *Handler) ServeCommunity(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	c, err := h.Dir.Communities.GetByID(ctx, id)
	if errors.Is(err, mongo.ErrNoDocuments) {
		uierrors.RenderNotFound(w, r, "community")
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "community lookup failed", err, "could not load community")
		return
	}
	uierrors.RenderJSON(w, http.StatusOK, communityView{Community: c, MemberCount: h.memberCounts(ctx)[c.ID]})
}

// validate sanitizes in and checks it. On create name and address are
// required; on update only the fields present are checked.
func validate(in *communityInput, creating bool) map[string]string {
	bad := map[string]string{}

	if in.Name != nil {
		v := normalize.Name(htmlsanitize.Text(*in.Name))
		in.Name = &v
	}
	if (creating || in.Name != nil) && (in.Name == nil || *in.Name == "") {
		bad["name"] = "Name is required."
	} else if creating && normalize.Slug(*in.Name) == "" {
		bad["name"] = "Name must contain letters or digits."
	}

	if in.Address != nil {
		v := htmlsanitize.Text(*in.Address)
		in.Address = &v
	}
	if (creating || in.Address != nil) && (in.Address == nil || *in.Address == "") {
		bad["address"] = "Address is required."
	}

	if in.Geo != nil && !validGeo(*in.Geo) {
		bad["geo"] = "Coordinates are out of range."
	}

	if len(bad) > 0 {
		return bad
	}
	return nil
}

// HandleCreate inserts a community whose id is the slug of its name.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var in communityInput
	if !uierrors.DecodeOr400(w, r, &in) {
		return
	}
	if bad := validate(&in, true); bad != nil {
		uierrors.RenderValidation(w, bad)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	c := models.Community{Name: *in.Name, Address: *in.Address}
	if in.Geo != nil {
		g := roundGeo(*in.Geo)
		c.Geo = &g
	}
	c, err := h.Dir.Communities.Create(ctx, c)
	if errors.Is(err, communitystore.ErrDuplicateCommunity) {
		uierrors.RenderConflict(w, "a community with this name already exists")
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "community insert failed", err, "could not save community")
		return
	}
	h.Dir.Touched(ctx, h.Dir.CommunitiesFeed)
	h.Log.Info("community created", zap.String("community_id", c.ID), zap.String("actor_id", actorID(r)))

	uierrors.RenderJSON(w, http.StatusCreated, communityView{Community: c})
}

// HandleUpdate merges name, address and geo. The id never changes, even
// when the name does.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var in communityInput
	if !uierrors.DecodeOr400(w, r, &in) {
		return
	}
	if bad := validate(&in, false); bad != nil {
		uierrors.RenderValidation(w, bad)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	p := communitystore.Patch{Name: in.Name, Address: in.Address, ClearGeo: in.ClearGeo}
	if in.Geo != nil {
		g := roundGeo(*in.Geo)
		p.Geo = &g
	}
	err := h.Dir.Communities.Update(ctx, id, p)
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		uierrors.RenderNotFound(w, r, "community")
		return
	case errors.Is(err, communitystore.ErrDuplicateCommunity):
		uierrors.RenderConflict(w, "a community with this name already exists")
		return
	case err != nil:
		h.ErrLog.LogServerError(w, r, "community update failed", err, "could not save community")
		return
	}
	h.Dir.Touched(ctx, h.Dir.CommunitiesFeed)

	c, err := h.Dir.Communities.GetByID(ctx, id)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "community reload failed", err, "community saved but could not be reloaded")
		return
	}
	uierrors.RenderJSON(w, http.StatusOK, communityView{Community: c, MemberCount: h.memberCounts(ctx)[c.ID]})
}

// HandleDelete asks for confirmation, or refuses with 409 while any member
// (in any status) still belongs to the community.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	c, err := h.Dir.Communities.GetByID(ctx, id)
	if errors.Is(err, mongo.ErrNoDocuments) {
		uierrors.RenderNotFound(w, r, "community")
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "community lookup failed", err, "could not load community")
		return
	}
	refs, err := h.Dir.Members.CountByCommunity(ctx, id)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "community reference count failed", err, "could not check community members")
		return
	}

	h.Deletions.Request(w, r, deletionpolicy.KindCommunity, c.ID, c.Name, deletionpolicy.Target{References: refs})
}
