// internal/app/features/confirmations/routes.go
package confirmations

import (
	"github.com/dalemusser/pastoralhub/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes is mounted at /confirm.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(auth.RequireSignedIn)

	r.Get("/", h.ServePending)
	r.Delete("/", h.HandleCancel)
	r.Post("/{token}", h.HandleConfirm)

	return r
}
