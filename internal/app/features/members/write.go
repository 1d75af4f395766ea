// internal/app/features/members/write.go
package members

import (
	"context"
	"errors"
	"net/http"

	uierrors "github.com/dalemusser/pastoralhub/internal/app/features/errors"
	"github.com/dalemusser/pastoralhub/internal/app/policy/deletionpolicy"
	"github.com/dalemusser/pastoralhub/internal/app/system/auth"
	"github.com/dalemusser/pastoralhub/internal/app/system/authz"
	"github.com/dalemusser/pastoralhub/internal/app/system/timeouts"
	"github.com/dalemusser/pastoralhub/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// HandleCreate validates and inserts a member. New members are Active and,
// unless the body says otherwise, serving.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var in memberInput
	if !uierrors.DecodeOr400(w, r, &in) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	f, bad, err := h.fields(ctx, in)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "member validation lookup failed", err, "could not save member")
		return
	}
	if bad != nil {
		uierrors.RenderValidation(w, bad)
		return
	}

	m, err := h.Dir.Members.Create(ctx, f)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "member insert failed", err, "could not save member")
		return
	}
	h.Dir.Touched(ctx, h.Dir.MembersFeed)

	h.Log.Info("member created",
		zap.String("member_id", m.ID),
		zap.String("community_id", m.CommunityID),
		zap.String("actor_id", actorID(r)))

	uierrors.RenderJSON(w, http.StatusCreated, m)
}

// HandleUpdate changes the fields present in the body and keeps the rest.
// Status and creation time are kept.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var in memberInput
	if !uierrors.DecodeOr400(w, r, &in) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	p, bad, err := h.patch(ctx, in)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "member validation lookup failed", err, "could not save member")
		return
	}
	if bad != nil {
		uierrors.RenderValidation(w, bad)
		return
	}

	if err := h.Dir.Members.Update(ctx, id, p); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			uierrors.RenderNotFound(w, r, "member")
			return
		}
		h.ErrLog.LogServerError(w, r, "member update failed", err, "could not save member")
		return
	}
	h.Dir.Touched(ctx, h.Dir.MembersFeed)

	m, err := h.Dir.Members.GetByID(ctx, id)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "member reload failed", err, "member saved but could not be reloaded")
		return
	}
	uierrors.RenderJSON(w, http.StatusOK, m)
}

// HandleDelete starts the delete workflow. The master deletes outright;
// anyone else requests a soft delete the master later approves or undoes.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	m, err := h.Dir.Members.GetByID(ctx, id)
	if errors.Is(err, mongo.ErrNoDocuments) {
		uierrors.RenderNotFound(w, r, "member")
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "member lookup failed", err, "could not load member")
		return
	}

	h.Deletions.Request(w, r, deletionpolicy.KindMember, m.ID, m.Name, deletionpolicy.Target{})
}

// HandleRestore returns a member to Active. Restoring an Active member is a
// no-op that still answers 200. Master only.
func (h *Handler) HandleRestore(w http.ResponseWriter, r *http.Request) {
	if !authz.IsMaster(r) {
		uierrors.RenderForbidden(w, r, "only the master can restore members")
		return
	}
	id := chi.URLParam(r, "id")

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := h.Dir.Members.SetStatus(ctx, id, models.StatusActive); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			uierrors.RenderNotFound(w, r, "member")
			return
		}
		h.ErrLog.LogServerError(w, r, "member restore failed", err, "could not restore member")
		return
	}
	h.Dir.Touched(ctx, h.Dir.MembersFeed)

	h.AuditLog.Restored(ctx, r, actorID(r), string(deletionpolicy.KindMember), id)

	m, err := h.Dir.Members.GetByID(ctx, id)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "member reload failed", err, "member restored but could not be reloaded")
		return
	}
	uierrors.RenderJSON(w, http.StatusOK, m)
}

func actorID(r *http.Request) string {
	if su, ok := auth.CurrentUser(r); ok {
		return su.ID
	}
	return ""
}
