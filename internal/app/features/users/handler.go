// internal/app/features/users/handler.go
package users

import (
	"context"
	"errors"
	"net/http"

	"github.com/dalemusser/pastoralhub/internal/app/directory"
	uierrors "github.com/dalemusser/pastoralhub/internal/app/features/errors"
	"github.com/dalemusser/pastoralhub/internal/app/features/shared/deletion"
	"github.com/dalemusser/pastoralhub/internal/app/policy/deletionpolicy"
	"github.com/dalemusser/pastoralhub/internal/app/system/auditlog"
	"github.com/dalemusser/pastoralhub/internal/app/system/auth"
	"github.com/dalemusser/pastoralhub/internal/app/system/confirm"
	"github.com/dalemusser/pastoralhub/internal/app/system/identity"
	"github.com/dalemusser/pastoralhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler manages application profiles and their provider identities.
type Handler struct {
	Dir       *directory.Directory
	Identity  identity.Provider
	Deletions *deletion.Requester
	Log       *zap.Logger
	ErrLog    *uierrors.ErrorLogger
	AuditLog  *auditlog.Logger
}

func NewHandler(dir *directory.Directory, idp identity.Provider, deletions *deletion.Requester, errLog *uierrors.ErrorLogger, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		Dir:       dir,
		Identity:  idp,
		Deletions: deletions,
		Log:       logger,
		ErrLog:    errLog,
		AuditLog:  audit,
	}
}

// Execute runs a confirmed user deletion. The master profile is checked
// again because the target may have been promoted since the request.
// A hard delete removes the profile only; the identity stays with the
// provider and signs in to ErrNoProfile from then on.
func (h *Handler) Execute(ctx context.Context, a confirm.Action) error {
	u, err := h.Dir.Users.GetByID(ctx, a.TargetID)
	if err != nil {
		return err
	}
	if u.IsMaster {
		return confirm.Refuse(deletionpolicy.ReasonMasterImmune)
	}

	switch a.Tier {
	case deletionpolicy.RequestSoftDelete:
		if err := h.Dir.Users.SetStatus(ctx, u.ID, models.StatusPendingDeletion); err != nil {
			return err
		}
		h.AuditLog.DeletionRequested(ctx, nil, a.ActorID, string(a.Kind), u.ID)
	case deletionpolicy.HardDelete:
		n, err := h.Dir.Users.Delete(ctx, u.ID)
		if err != nil {
			return err
		}
		if n == 0 {
			return mongo.ErrNoDocuments
		}
		h.AuditLog.Deleted(ctx, nil, a.ActorID, string(a.Kind), u.ID)
	default:
		return errors.New("user deletion: unsupported tier " + string(a.Tier))
	}

	h.Dir.Touched(ctx, h.Dir.UsersFeed)
	h.Log.Info("user deletion executed",
		zap.String("user_id", u.ID),
		zap.String("tier", string(a.Tier)),
		zap.String("actor_id", a.ActorID))
	return nil
}

func actorID(r *http.Request) string {
	if su, ok := auth.CurrentUser(r); ok {
		return su.ID
	}
	return ""
}
