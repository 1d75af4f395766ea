// internal/app/features/maintenance/routes.go
package maintenance

import (
	"github.com/dalemusser/pastoralhub/internal/app/system/auth"
	"github.com/dalemusser/pastoralhub/internal/app/system/authz"
	"github.com/go-chi/chi/v5"
)

// Routes mounts the queue under /maintenance. Master only.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(auth.RequireSignedIn)
		pr.Use(authz.RequireView(authz.ViewMaintenance))

		pr.Get("/", h.ServeQueue)
		pr.Post("/{kind}/{id}/restore", h.HandleRestore)
		pr.Post("/{kind}/{id}/approve", h.HandleApprove)
	})

	return r
}
