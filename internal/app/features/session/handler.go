// internal/app/features/session/handler.go
package session

import (
	"net/http"
	"time"

	uierrors "github.com/dalemusser/pastoralhub/internal/app/features/errors"
	"github.com/dalemusser/pastoralhub/internal/app/system/auditlog"
	"github.com/dalemusser/pastoralhub/internal/app/system/auth"
	"github.com/dalemusser/pastoralhub/internal/app/system/authz"
	"github.com/dalemusser/pastoralhub/internal/app/system/identity"
	"github.com/dalemusser/pastoralhub/internal/app/system/profiles"
	"github.com/dalemusser/pastoralhub/internal/app/system/ratelimit"
	"github.com/dalemusser/pastoralhub/internal/domain/models"
	"go.uber.org/zap"
)

// DefaultRecentLogin is how fresh a sign-in must be to change the password.
const DefaultRecentLogin = 5 * time.Minute

// Handler signs identities in and out and manages the session's module.
type Handler struct {
	Identity    identity.Provider
	Profiles    *profiles.Manager
	SessionMgr  *auth.SessionManager
	Limiter     *ratelimit.LoginLimiter
	RecentLogin time.Duration
	Log         *zap.Logger
	ErrLog      *uierrors.ErrorLogger
	AuditLog    *auditlog.Logger
}

func NewHandler(idp identity.Provider, pm *profiles.Manager, sm *auth.SessionManager, limiter *ratelimit.LoginLimiter, recentLogin time.Duration, errLog *uierrors.ErrorLogger, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	if recentLogin <= 0 {
		recentLogin = DefaultRecentLogin
	}
	return &Handler{
		Identity:    idp,
		Profiles:    pm,
		SessionMgr:  sm,
		Limiter:     limiter,
		RecentLogin: recentLogin,
		Log:         logger,
		ErrLog:      errLog,
		AuditLog:    audit,
	}
}

// sessionView is what the client needs to draw navigation.
type sessionView struct {
	Profile models.User   `json:"profile"`
	Module  models.Module `json:"module"`
	Views   []authz.View  `json:"views"`
}

func newSessionView(u models.User, module models.Module) sessionView {
	return sessionView{Profile: u, Module: module, Views: authz.Views(u, module)}
}

// ServeSession answers the signed-in profile, module and permitted views.
func (h *Handler) ServeSession(w http.ResponseWriter, r *http.Request) {
	su, ok := auth.CurrentUser(r)
	if !ok {
		uierrors.RenderUnauthorized(w, r)
		return
	}
	uierrors.RenderJSON(w, http.StatusOK, newSessionView(su.Profile, su.Module))
}
