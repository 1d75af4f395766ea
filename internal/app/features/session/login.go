// internal/app/features/session/login.go
package session

import (
	"context"
	"errors"
	"net/http"

	uierrors "github.com/dalemusser/pastoralhub/internal/app/features/errors"
	"github.com/dalemusser/pastoralhub/internal/app/store/audit"
	"github.com/dalemusser/pastoralhub/internal/app/system/auth"
	"github.com/dalemusser/pastoralhub/internal/app/system/identity"
	"github.com/dalemusser/pastoralhub/internal/app/system/normalize"
	"github.com/dalemusser/pastoralhub/internal/app/system/profiles"
	"github.com/dalemusser/pastoralhub/internal/app/system/timeouts"
	"go.uber.org/zap"
)

type loginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// HandleLogin verifies the credentials with the identity provider, resolves
// the profile and starts the session in the profile's first module.
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var in loginInput
	if !uierrors.DecodeOr400(w, r, &in) {
		return
	}
	email := normalize.Email(in.Email)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	if h.Limiter != nil {
		if ok, msg := h.Limiter.Check(r, email); !ok {
			h.AuditLog.LoginFailed(ctx, r, audit.EventLoginFailedRateLimit, email, "rate limited")
			uierrors.RenderError(w, http.StatusTooManyRequests, msg)
			return
		}
	}
	if email == "" || in.Password == "" {
		uierrors.RenderValidation(w, map[string]string{"email": "Email and password are required."})
		return
	}

	id, err := h.Identity.SignIn(ctx, email, in.Password)
	switch {
	case errors.Is(err, identity.ErrInvalidCredentials):
		h.AuditLog.LoginFailed(ctx, r, audit.EventLoginFailedCredentials, email, "invalid credentials")
		uierrors.RenderError(w, http.StatusUnauthorized, err.Error())
		return
	case err != nil:
		h.ErrLog.Log(w, r, http.StatusBadGateway, "identity sign-in failed", err, err.Error())
		return
	}

	u, err := h.Profiles.Resolve(ctx, id)
	switch {
	case errors.Is(err, profiles.ErrNoProfile):
		h.AuditLog.LoginFailed(ctx, r, audit.EventLoginFailedNoProfile, email, "no profile")
		uierrors.RenderError(w, http.StatusUnauthorized, "this account has no profile; ask an administrator")
		return
	case err != nil:
		h.ErrLog.LogServerError(w, r, "profile resolve failed", err, "could not load your profile")
		return
	}

	module := u.DefaultModule()
	if err := h.SessionMgr.SignIn(w, r, id.UID, id.Email, module); err != nil {
		h.ErrLog.LogServerError(w, r, "session save failed", err, "could not start the session")
		return
	}
	if h.Limiter != nil {
		h.Limiter.ResetEmail(email)
	}
	h.AuditLog.LoginSuccess(ctx, r, id.UID, id.Email)
	h.Log.Info("signed in", zap.String("uid", id.UID), zap.String("module", string(module)))

	uierrors.RenderJSON(w, http.StatusOK, newSessionView(u, module))
}

// HandleLogout clears the session. Signed out callers get 204 too.
func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if err := h.SessionMgr.SignOut(w, r); err != nil {
		h.ErrLog.LogServerError(w, r, "session clear failed", err, "could not sign out")
		return
	}
	if su, ok := auth.CurrentUser(r); ok {
		h.AuditLog.Logout(r.Context(), r, su.ID)
	}
	w.WriteHeader(http.StatusNoContent)
}
