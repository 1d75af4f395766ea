// internal/app/features/confirmations/handler.go
package confirmations

import (
	uierrors "github.com/dalemusser/pastoralhub/internal/app/features/errors"
	"github.com/dalemusser/pastoralhub/internal/app/system/confirm"
	"go.uber.org/zap"
)

// Handler shows, discards and runs the caller's pending action.
type Handler struct {
	Queue      *confirm.Queue
	Dispatcher *confirm.Dispatcher
	Log        *zap.Logger
	ErrLog     *uierrors.ErrorLogger
}

func NewHandler(q *confirm.Queue, d *confirm.Dispatcher, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{Queue: q, Dispatcher: d, Log: logger, ErrLog: errLog}
}
