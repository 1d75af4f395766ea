// internal/app/features/errors/logger.go
package errors

import (
	"net/http"

	"github.com/dalemusser/pastoralhub/internal/app/system/auth"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// ErrorLogger logs a failure with request context and answers the client
// with a safe message. Internal error text never reaches the client.
type ErrorLogger struct {
	log *zap.Logger
}

// NewErrorLogger wraps logger.
func NewErrorLogger(logger *zap.Logger) *ErrorLogger {
	return &ErrorLogger{log: logger}
}

// Log records err at error level and writes userMsg with status.
func (e *ErrorLogger) Log(w http.ResponseWriter, r *http.Request, status int, msg string, err error, userMsg string) {
	fields := []zap.Field{
		zap.Error(err),
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.Int("status", status),
	}
	if id := middleware.GetReqID(r.Context()); id != "" {
		fields = append(fields, zap.String("request_id", id))
	}
	if u, ok := auth.CurrentUser(r); ok {
		fields = append(fields, zap.String("actor_id", u.ID))
	}
	e.log.Error(msg, fields...)
	RenderError(w, status, userMsg)
}

// LogServerError is Log with status 500.
func (e *ErrorLogger) LogServerError(w http.ResponseWriter, r *http.Request, msg string, err error, userMsg string) {
	e.Log(w, r, http.StatusInternalServerError, msg, err, userMsg)
}
