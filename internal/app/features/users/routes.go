// internal/app/features/users/routes.go
package users

import (
	"github.com/dalemusser/pastoralhub/internal/app/system/auth"
	"github.com/dalemusser/pastoralhub/internal/app/system/authz"
	"github.com/go-chi/chi/v5"
)

// Routes mounts the user administration routes (administrators only).
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(auth.RequireSignedIn)
		pr.Use(authz.RequireView(authz.ViewUsers))

		pr.Get("/", h.ServeList)
		pr.Post("/", h.HandleCreate)
		pr.Get("/{id}", h.ServeUser)
		pr.Put("/{id}", h.HandleUpdate)
		pr.Post("/{id}/delete", h.HandleDelete)
		pr.Post("/{id}/restore", h.HandleRestore)
	})

	return r
}
