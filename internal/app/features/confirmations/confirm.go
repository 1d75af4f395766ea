// internal/app/features/confirmations/confirm.go
package confirmations

import (
	"context"
	"errors"
	"net/http"

	uierrors "github.com/dalemusser/pastoralhub/internal/app/features/errors"
	"github.com/dalemusser/pastoralhub/internal/app/policy/deletionpolicy"
	"github.com/dalemusser/pastoralhub/internal/app/system/auth"
	"github.com/dalemusser/pastoralhub/internal/app/system/confirm"
	"github.com/dalemusser/pastoralhub/internal/app/system/timeouts"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type doneResponse struct {
	Kind     deletionpolicy.Kind `json:"kind"`
	TargetID string              `json:"target_id"`
	Tier     deletionpolicy.Tier `json:"tier"`
	Done     bool                `json:"done"`
}

// ServePending shows the caller's pending action, or 404 when there is none.
func (h *Handler) ServePending(w http.ResponseWriter, r *http.Request) {
	su, ok := auth.CurrentUser(r)
	if !ok {
		uierrors.RenderUnauthorized(w, r)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	a, err := h.Queue.Peek(ctx, su.ID)
	if errors.Is(err, confirm.ErrNoPending) {
		uierrors.RenderError(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "pending action lookup failed", err, "could not load the pending action")
		return
	}
	uierrors.RenderJSON(w, http.StatusOK, a)
}

// HandleCancel discards the caller's pending action. Always 204.
func (h *Handler) HandleCancel(w http.ResponseWriter, r *http.Request) {
	su, ok := auth.CurrentUser(r)
	if !ok {
		uierrors.RenderUnauthorized(w, r)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := h.Queue.Cancel(ctx, su.ID); err != nil {
		h.ErrLog.LogServerError(w, r, "pending action cancel failed", err, "could not cancel the pending action")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleConfirm takes the pending action matching the token and runs it.
// A mismatched token leaves the pending action in place.
func (h *Handler) HandleConfirm(w http.ResponseWriter, r *http.Request) {
	su, ok := auth.CurrentUser(r)
	if !ok {
		uierrors.RenderUnauthorized(w, r)
		return
	}
	token := chi.URLParam(r, "token")

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	a, err := h.Queue.Take(ctx, su.ID, token)
	switch {
	case errors.Is(err, confirm.ErrNoPending):
		uierrors.RenderError(w, http.StatusNotFound, err.Error())
		return
	case errors.Is(err, confirm.ErrTokenMismatch):
		uierrors.RenderConflict(w, err.Error())
		return
	case err != nil:
		h.ErrLog.LogServerError(w, r, "pending action take failed", err, "could not load the pending action")
		return
	}

	// The tier was fixed at request time. The actor's role may have changed
	// since, so the decision is made again against the current profile;
	// facts about the target are checked by each executor.
	if d := deletionpolicy.Decide(a.Kind, su.Profile, deletionpolicy.Target{}); d.Tier != a.Tier {
		h.Log.Info("confirmed action no longer permitted",
			zap.String("actor_id", su.ID),
			zap.String("kind", string(a.Kind)),
			zap.String("requested_tier", string(a.Tier)),
			zap.String("current_tier", string(d.Tier)))
		if !d.Allowed() {
			uierrors.RenderForbidden(w, r, d.Reason)
			return
		}
		uierrors.RenderConflict(w, "your permissions changed since the request; request the deletion again")
		return
	}

	err = h.Dispatcher.Execute(ctx, a)
	switch {
	case err == nil:
	case errors.Is(err, confirm.ErrRefused):
		uierrors.RenderConflict(w, err.Error())
		return
	case errors.Is(err, mongo.ErrNoDocuments):
		uierrors.RenderNotFound(w, r, string(a.Kind))
		return
	default:
		h.ErrLog.LogServerError(w, r, "confirmed action failed", err, "the action could not be completed")
		return
	}

	h.Log.Info("confirmed action executed",
		zap.String("actor_id", su.ID),
		zap.String("kind", string(a.Kind)),
		zap.String("target_id", a.TargetID),
		zap.String("tier", string(a.Tier)))
	uierrors.RenderJSON(w, http.StatusOK, doneResponse{Kind: a.Kind, TargetID: a.TargetID, Tier: a.Tier, Done: true})
}
