// internal/app/features/members/routes.go
package members

import (
	"github.com/go-chi/chi/v5"
	"github.com/thiraviyalingesh/company-chat/internal/app/system/auth"
)

// Routes mounts the membership endpoints (typically under
// "/projects/{projectID}/members" from bootstrap). Fine-grained access
// is decided per handler against the memberships collection.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(auth.RequireSignedIn)

		pr.Get("/", h.ServeList)
		pr.Post("/", h.ServeAdd)
		pr.Put("/{userID}/role", h.ServeSetRole)
		pr.Delete("/{userID}", h.ServeRemove)
	})

	return r
}
