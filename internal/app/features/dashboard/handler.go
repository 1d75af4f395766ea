// internal/app/features/dashboard/handler.go
package dashboard

import (
	"context"
	"net/http"

	"github.com/dalemusser/pastoralhub/internal/app/directory"
	uierrors "github.com/dalemusser/pastoralhub/internal/app/features/errors"
	"github.com/dalemusser/pastoralhub/internal/app/system/auth"
	"github.com/dalemusser/pastoralhub/internal/app/system/timeouts"
	"github.com/dalemusser/pastoralhub/internal/domain/models"
	"go.uber.org/zap"
)

type Handler struct {
	Dir    *directory.Directory
	Log    *zap.Logger
	ErrLog *uierrors.ErrorLogger
}

func NewHandler(dir *directory.Directory, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Dir:    dir,
		Log:    logger,
		ErrLog: errLog,
	}
}

// ServeDashboard answers the overview for the caller's active module.
// Team counts exist only in the Liturgy module; the master also sees how
// many entries wait in the deletion queue.
func (h *Handler) ServeDashboard(w http.ResponseWriter, r *http.Request) {
	su, ok := auth.CurrentUser(r)
	if !ok {
		uierrors.RenderUnauthorized(w, r)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	in, err := h.load(ctx, su.Module == models.ModuleLiturgy, su.Profile.IsMaster)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "dashboard snapshots failed", err, "could not load the dashboard")
		return
	}

	s := Summarize(su.Module, in)
	h.Log.Debug("dashboard served",
		zap.String("actor_id", su.ID),
		zap.String("module", string(su.Module)))
	uierrors.RenderJSON(w, http.StatusOK, s)
}

// load reads the snapshots the summary needs for this caller.
func (h *Handler) load(ctx context.Context, liturgy, master bool) (Inputs, error) {
	var in Inputs

	members, err := h.Dir.MembersFeed.Snapshot(ctx)
	if err != nil {
		return in, err
	}
	communities, err := h.Dir.CommunitiesFeed.Snapshot(ctx)
	if err != nil {
		return in, err
	}
	trainings, err := h.Dir.TrainingsFeed.Snapshot(ctx)
	if err != nil {
		return in, err
	}
	in.Members, in.Communities, in.Trainings = members.Items, communities.Items, trainings.Items

	if liturgy {
		teams, err := h.Dir.TeamsFeed.Snapshot(ctx)
		if err != nil {
			return in, err
		}
		in.Teams = teams.Items
	}
	if master {
		users, err := h.Dir.UsersFeed.Snapshot(ctx)
		if err != nil {
			return in, err
		}
		in.Users = users.Items
		in.IncludeQueue = true
	}
	return in, nil
}
