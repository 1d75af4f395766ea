// internal/app/features/session/routes.go
package session

import (
	"github.com/dalemusser/pastoralhub/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes is mounted at /session.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Post("/login", h.HandleLogin)
	r.Post("/logout", h.HandleLogout)

	r.Group(func(pr chi.Router) {
		pr.Use(auth.RequireSignedIn)
		pr.Get("/", h.ServeSession)
		pr.Put("/module", h.HandleModule)
		pr.Post("/password", h.HandlePassword)
	})

	return r
}
