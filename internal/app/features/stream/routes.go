// internal/app/features/stream/routes.go
package stream

import (
	"github.com/dalemusser/pastoralhub/internal/app/system/auth"
	"github.com/dalemusser/pastoralhub/internal/app/system/authz"
	"github.com/go-chi/chi/v5"
)

// Routes is mounted at /stream. Each collection is gated by the view of
// its list endpoint; communities are readable by every signed-in user.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(auth.RequireSignedIn)

	r.Get("/communities", h.ServeCommunities)
	r.With(authz.RequireView(authz.ViewMembers)).Get("/members", h.ServeMembers)
	r.With(authz.RequireView(authz.ViewTeams)).Get("/teams", h.ServeTeams)
	r.With(authz.RequireView(authz.ViewSoundTraining)).Get("/sound_trainings", h.ServeTrainings)
	r.With(authz.RequireView(authz.ViewUsers)).Get("/users", h.ServeUsers)

	return r
}
