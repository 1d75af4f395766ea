// internal/app/features/soundtrainings/trainings.go
package soundtrainings

import (
	"context"
	"errors"
	"net/http"
	"sort"
	"strings"

	uierrors "github.com/dalemusser/pastoralhub/internal/app/features/errors"
	"github.com/dalemusser/pastoralhub/internal/app/features/shared/roster"
	"github.com/dalemusser/pastoralhub/internal/app/policy/deletionpolicy"
	trainingstore "github.com/dalemusser/pastoralhub/internal/app/store/soundtrainings"
	"github.com/dalemusser/pastoralhub/internal/app/system/timeouts"
	"github.com/dalemusser/pastoralhub/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type trainingInput struct {
	Date        *string  `json:"date"`
	CommunityID *string  `json:"community_id"`
	MemberIDs   []string `json:"member_ids"`
}

type trainingView struct {
	models.SoundTraining
	Participants []roster.Participant `json:"participants"`
}

type listResponse struct {
	Items   []trainingView `json:"items"`
	Total   int            `json:"total"`
	Version uint64         `json:"version"`
}

func (h *Handler) members(ctx context.Context) roster.Index {
	snap, err := h.Dir.MembersFeed.Snapshot(ctx)
	if err != nil {
		h.Log.Warn("members snapshot unavailable; participants not decorated", zap.Error(err))
	}
	return roster.NewIndex(snap.Items)
}

// ServeList answers every training, most recent first. ?community= filters.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	snap, err := h.Dir.TrainingsFeed.Snapshot(ctx)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "trainings snapshot failed", err, "could not load sound trainings")
		return
	}
	community := strings.TrimSpace(r.URL.Query().Get("community"))
	idx := h.members(ctx)

	items := make([]trainingView, 0, len(snap.Items))
	for _, st := range snap.Items {
		if community != "" && st.CommunityID != community {
			continue
		}
		items = append(items, trainingView{SoundTraining: st, Participants: idx.Resolve(st.MemberIDs)})
	}
	// Dates are YYYY-MM-DD, so string order is date order.
	sort.SliceStable(items, func(i, j int) bool { return items[i].Date > items[j].Date })

	uierrors.RenderJSON(w, http.StatusOK, listResponse{Items: items, Total: len(items), Version: snap.Version})
}

func (h *Handler) ServeTraining(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	st, err := h.Dir.Trainings.GetByID(ctx, id)
	if errors.Is(err, mongo.ErrNoDocuments) {
		uierrors.RenderNotFound(w, r, "sound training")
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "training lookup failed", err, "could not load sound training")
		return
	}
	uierrors.RenderJSON(w, http.StatusOK, trainingView{SoundTraining: st, Participants: h.members(ctx).Resolve(st.MemberIDs)})
}

func (h *Handler) validate(ctx context.Context, in *trainingInput, creating bool) (map[string]string, error) {
	bad := map[string]string{}

	if in.Date != nil {
		d := strings.TrimSpace(*in.Date)
		in.Date = &d
	}
	switch {
	case (creating || in.Date != nil) && (in.Date == nil || *in.Date == ""):
		bad["date"] = "Date is required."
	case in.Date != nil && !trainingstore.ValidDate(*in.Date):
		bad["date"] = "Enter a valid date (YYYY-MM-DD)."
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
	var in trainingInput
	if !uierrors.DecodeOr400(w, r, &in) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	bad, err := h.validate(ctx, &in, true)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "training validation lookup failed", err, "could not save sound training")
		return
	}
	if bad != nil {
		uierrors.RenderValidation(w, bad)
		return
	}

	st, err := h.Dir.Trainings.Create(ctx, models.SoundTraining{Date: *in.Date, CommunityID: *in.CommunityID, MemberIDs: in.MemberIDs})
	if err != nil {
		h.ErrLog.LogServerError(w, r, "training insert failed", err, "could not save sound training")
		return
	}
	h.Dir.Touched(ctx, h.Dir.TrainingsFeed)
	h.Log.Info("sound training created", zap.String("training_id", st.ID), zap.String("date", st.Date), zap.String("actor_id", actorID(r)))

	uierrors.RenderJSON(w, http.StatusCreated, trainingView{SoundTraining: st, Participants: h.members(ctx).Resolve(st.MemberIDs)})
}

func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var in trainingInput
	if !uierrors.DecodeOr400(w, r, &in) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	bad, err := h.validate(ctx, &in, false)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "training validation lookup failed", err, "could not save sound training")
		return
	}
	if bad != nil {
		uierrors.RenderValidation(w, bad)
		return
	}

	err = h.Dir.Trainings.Update(ctx, id, trainingstore.Patch{Date: in.Date, CommunityID: in.CommunityID, MemberIDs: in.MemberIDs})
	if errors.Is(err, mongo.ErrNoDocuments) {
		uierrors.RenderNotFound(w, r, "sound training")
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "training update failed", err, "could not save sound training")
		return
	}
	h.Dir.Touched(ctx, h.Dir.TrainingsFeed)

	st, err := h.Dir.Trainings.GetByID(ctx, id)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "training reload failed", err, "sound training saved but could not be reloaded")
		return
	}
	uierrors.RenderJSON(w, http.StatusOK, trainingView{SoundTraining: st, Participants: h.members(ctx).Resolve(st.MemberIDs)})
}

func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	st, err := h.Dir.Trainings.GetByID(ctx, id)
	if errors.Is(err, mongo.ErrNoDocuments) {
		uierrors.RenderNotFound(w, r, "sound training")
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "training lookup failed", err, "could not load sound training")
		return
	}

	h.Deletions.Request(w, r, deletionpolicy.KindSoundTraining, st.ID, st.Date, deletionpolicy.Target{})
}
