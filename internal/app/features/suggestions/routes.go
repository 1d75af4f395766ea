// internal/app/features/suggestions/routes.go
package suggestions

import (
	"github.com/dalemusser/pastoralhub/internal/app/system/auth"
	"github.com/dalemusser/pastoralhub/internal/app/system/authz"
	"github.com/dalemusser/pastoralhub/internal/app/system/ratelimit"
	"github.com/go-chi/chi/v5"
)

// Routes is mounted at /suggestions. The AI view exists only in the
// Liturgy module.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(auth.RequireSignedIn)
		pr.Use(authz.RequireView(authz.ViewAI))
		if h.Limiter != nil {
			pr.Use(ratelimit.Middleware(h.Limiter, userKey, "Too many suggestion requests. Please wait a minute."))
		}

		pr.Post("/", h.HandleSuggest)
	})

	return r
}
