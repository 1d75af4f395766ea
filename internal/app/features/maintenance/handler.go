// internal/app/features/maintenance/handler.go
package maintenance

import (
	"github.com/dalemusser/pastoralhub/internal/app/directory"
	uierrors "github.com/dalemusser/pastoralhub/internal/app/features/errors"
	"github.com/dalemusser/pastoralhub/internal/app/features/shared/deletion"
	"github.com/dalemusser/pastoralhub/internal/app/system/auditlog"
	"go.uber.org/zap"
)

// Handler serves the master's deletion queue: users and members waiting in
// PendingDeletion, with restore and approve actions.
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
