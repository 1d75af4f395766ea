// internal/app/features/session/account.go
package session

import (
	"context"
	"errors"
	"net/http"

	uierrors "github.com/dalemusser/pastoralhub/internal/app/features/errors"
	"github.com/dalemusser/pastoralhub/internal/app/system/auth"
	"github.com/dalemusser/pastoralhub/internal/app/system/identity"
	"github.com/dalemusser/pastoralhub/internal/app/system/timeouts"
	"github.com/dalemusser/pastoralhub/internal/domain/models"
	"go.uber.org/zap"
)

type moduleInput struct {
	Module models.Module `json:"module"`
}

// HandleModule switches the session's active module. Only modules in the
// profile's AllowedModules are accepted.
func (h *Handler) HandleModule(w http.ResponseWriter, r *http.Request) {
	su, ok := auth.CurrentUser(r)
	if !ok {
		uierrors.RenderUnauthorized(w, r)
		return
	}
	var in moduleInput
	if !uierrors.DecodeOr400(w, r, &in) {
		return
	}
	if !in.Module.Valid() || !su.Profile.HasModule(in.Module) {
		uierrors.RenderValidation(w, map[string]string{"module": "This module is not available to you."})
		return
	}
	if err := h.SessionMgr.SetModule(w, r, in.Module); err != nil {
		h.ErrLog.LogServerError(w, r, "session save failed", err, "could not switch module")
		return
	}
	uierrors.RenderJSON(w, http.StatusOK, newSessionView(su.Profile, in.Module))
}

type passwordInput struct {
	Password string `json:"password"`
}

// HandlePassword changes the caller's own password. A sign-in older than
// RecentLogin is refused and the session is ended so the user signs in
// again.
func (h *Handler) HandlePassword(w http.ResponseWriter, r *http.Request) {
	su, ok := auth.CurrentUser(r)
	if !ok {
		uierrors.RenderUnauthorized(w, r)
		return
	}
	var in passwordInput
	if !uierrors.DecodeOr400(w, r, &in) {
		return
	}
	if err := identity.CheckPassword(in.Password); err != nil {
		uierrors.RenderValidation(w, map[string]string{"password": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	if !su.SignedInWithin(h.RecentLogin) {
		h.refuseStale(ctx, w, r, su.ID)
		return
	}

	err := h.Identity.ChangePassword(ctx, su.ID, in.Password)
	switch {
	case errors.Is(err, identity.ErrRequiresRecentLogin):
		h.refuseStale(ctx, w, r, su.ID)
		return
	case errors.Is(err, identity.ErrWeakPassword):
		uierrors.RenderValidation(w, map[string]string{"password": err.Error()})
		return
	case err != nil:
		h.ErrLog.Log(w, r, http.StatusBadGateway, "password change failed", err, err.Error())
		return
	}

	h.AuditLog.PasswordChanged(ctx, r, su.ID)
	h.Log.Info("password changed", zap.String("uid", su.ID))
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) refuseStale(ctx context.Context, w http.ResponseWriter, r *http.Request, uid string) {
	if err := h.SessionMgr.SignOut(w, r); err != nil {
		h.Log.Warn("forced sign-out failed", zap.String("uid", uid), zap.Error(err))
	}
	h.AuditLog.PasswordChangeRefused(ctx, r, uid)
	uierrors.RenderError(w, http.StatusUnauthorized, identity.ErrRequiresRecentLogin.Error())
}
