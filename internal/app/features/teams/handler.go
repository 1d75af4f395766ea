// internal/app/features/teams/handler.go
package teams

import (
	"context"
	"net/http"

	"github.com/dalemusser/pastoralhub/internal/app/directory"
	uierrors "github.com/dalemusser/pastoralhub/internal/app/features/errors"
	"github.com/dalemusser/pastoralhub/internal/app/features/shared/deletion"
	"github.com/dalemusser/pastoralhub/internal/app/system/auditlog"
	"github.com/dalemusser/pastoralhub/internal/app/system/auth"
	"github.com/dalemusser/pastoralhub/internal/app/system/confirm"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler serves the Liturgy teams.
type Handler struct {
	Dir       *directory.Directory
	Deletions *deletion.Requester
	Log       *zap.Logger
	ErrLog    *uierrors.ErrorLogger
	AuditLog  *auditlog.Logger
}

func NewHandler(dir *directory.Directory, deletions *deletion.Requester, errLog *uierrors.ErrorLogger, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		Dir:       dir,
		Deletions: deletions,
		Log:       logger,
		ErrLog:    errLog,
		AuditLog:  audit,
	}
}

// Execute removes a team after confirmation. Teams have no soft tier.
func (h *Handler) Execute(ctx context.Context, a confirm.Action) error {
	n, err := h.Dir.Teams.Delete(ctx, a.TargetID)
	if err != nil {
		return err
	}
	if n == 0 {
		return mongo.ErrNoDocuments
	}
	h.Dir.Touched(ctx, h.Dir.TeamsFeed)
	h.AuditLog.Deleted(ctx, nil, a.ActorID, string(a.Kind), a.TargetID)
	h.Log.Info("team deleted", zap.String("team_id", a.TargetID), zap.String("actor_id", a.ActorID))
	return nil
}

func actorID(r *http.Request) string {
	if su, ok := auth.CurrentUser(r); ok {
		return su.ID
	}
	return ""
}
