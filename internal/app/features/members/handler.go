// internal/app/features/members/handler.go
package members

import (
	"context"
	"errors"

	"github.com/dalemusser/pastoralhub/internal/app/directory"
	uierrors "github.com/dalemusser/pastoralhub/internal/app/features/errors"
	"github.com/dalemusser/pastoralhub/internal/app/features/shared/deletion"
	"github.com/dalemusser/pastoralhub/internal/app/policy/deletionpolicy"
	"github.com/dalemusser/pastoralhub/internal/app/system/auditlog"
	"github.com/dalemusser/pastoralhub/internal/app/system/confirm"
	"github.com/dalemusser/pastoralhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler is the feature-level handler for Members.
// Lists come from the members feed; writes go through the member store.
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

// Execute runs a confirmed member deletion. A soft delete parks the member
// in PendingDeletion; a hard delete removes the document.
func (h *Handler) Execute(ctx context.Context, a confirm.Action) error {
	switch a.Tier {
	case deletionpolicy.RequestSoftDelete:
		if err := h.Dir.Members.SetStatus(ctx, a.TargetID, models.StatusPendingDeletion); err != nil {
			return err
		}
		h.AuditLog.DeletionRequested(ctx, nil, a.ActorID, string(a.Kind), a.TargetID)
	case deletionpolicy.HardDelete:
		n, err := h.Dir.Members.Delete(ctx, a.TargetID)
		if err != nil {
			return err
		}
		if n == 0 {
			return mongo.ErrNoDocuments
		}
		h.AuditLog.Deleted(ctx, nil, a.ActorID, string(a.Kind), a.TargetID)
	default:
		return errors.New("member deletion: unsupported tier " + string(a.Tier))
	}
	h.Dir.Touched(ctx, h.Dir.MembersFeed)
	h.Log.Info("member deletion executed",
		zap.String("member_id", a.TargetID),
		zap.String("tier", string(a.Tier)),
		zap.String("actor_id", a.ActorID))
	return nil
}
