// internal/app/features/groups/routes.go
package groups

import (
	"github.com/go-chi/chi/v5"
	"github.com/thiraviyalingesh/company-chat/internal/app/system/auth"
)

// Routes mounts the group endpoints (typically under
// "/projects/{projectID}/groups" from bootstrap).
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(auth.RequireSignedIn)

		pr.Get("/", h.ServeList)
		pr.Post("/", h.ServeCreate)
		pr.Post("/{groupID}/members", h.ServeAddMembers)
		pr.Delete("/{groupID}/members/{userID}", h.ServeRemoveMember)
		pr.Delete("/{groupID}", h.ServeDelete)
	})

	return r
}
