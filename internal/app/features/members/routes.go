// internal/app/features/members/routes.go
package members

import (
	"github.com/dalemusser/pastoralhub/internal/app/system/auth"
	"github.com/dalemusser/pastoralhub/internal/app/system/authz"
	"github.com/go-chi/chi/v5"
)

// Routes mounts all member routes under the path where the caller mounts it.
// Typically: r.Mount("/members", members.Routes(handler))
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(auth.RequireSignedIn)
		pr.Use(authz.RequireView(authz.ViewMembers))

		pr.Get("/", h.ServeList)
		pr.Get("/export.csv", h.ServeExportCSV)
		pr.Post("/", h.HandleCreate)

		pr.Get("/{id}", h.ServeMember)
		pr.Put("/{id}", h.HandleUpdate)
		pr.Post("/{id}/delete", h.HandleDelete)
		pr.Post("/{id}/restore", h.HandleRestore)
	})

	return r
}
