// internal/app/features/projects/routes.go
package projects

import (
	"github.com/go-chi/chi/v5"
	"github.com/thiraviyalingesh/company-chat/internal/app/system/auth"
)

// Routes mounts the project endpoints (typically under "/projects"
// from bootstrap). Listing is for any signed-in user; creation and
// deactivation are superadmin.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(auth.RequireSignedIn)
		pr.Get("/", h.ServeList)
		pr.Get("/{projectID}", h.ServeGet)
	})

	r.Group(func(pr chi.Router) {
		pr.Use(auth.RequireSignedIn)
		pr.Use(auth.RequireSuperAdmin)

		pr.Post("/", h.ServeCreate)
		pr.Post("/{projectID}/deactivate", h.ServeDeactivate)
	})

	return r
}
