// internal/app/features/communities/routes.go
package communities

import (
	"github.com/dalemusser/pastoralhub/internal/app/system/auth"
	"github.com/dalemusser/pastoralhub/internal/app/system/authz"
	"github.com/go-chi/chi/v5"
)

// Routes mounts the community routes. Reading is open to every signed-in
// user (forms need the community picker); changes need the communities view.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(auth.RequireSignedIn)

		pr.Get("/", h.ServeList)
		pr.Get("/{id}", h.ServeCommunity)

		pr.Group(func(mr chi.Router) {
			mr.Use(authz.RequireView(authz.ViewCommunities))

			mr.Post("/", h.HandleCreate)
			mr.Post("/locate", h.HandleLocate)
			mr.Put("/{id}", h.HandleUpdate)
			mr.Post("/{id}/delete", h.HandleDelete)
		})
	})

	return r
}
