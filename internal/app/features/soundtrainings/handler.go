// internal/app/features/soundtrainings/handler.go
package soundtrainings

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

// Handler serves sound-equipment training records.
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

// Execute removes a training after confirmation.
func (h *Handler) Execute(ctx context.Context, a confirm.Action) error {
	n, err := h.Dir.Trainings.Delete(ctx, a.TargetID)
	if err != nil {
		return err
	}
	if n == 0 {
		return mongo.ErrNoDocuments
	}
	h.Dir.Touched(ctx, h.Dir.TrainingsFeed)
	h.AuditLog.Deleted(ctx, nil, a.ActorID, string(a.Kind), a.TargetID)
	h.Log.Info("sound training deleted", zap.String("training_id", a.TargetID), zap.String("actor_id", a.ActorID))
	return nil
}

func actorID(r *http.Request) string {
	if su, ok := auth.CurrentUser(r); ok {
		return su.ID
	}
	return ""
}
