// internal/app/features/users/routes.go
package users

import (
	"github.com/go-chi/chi/v5"
	"github.com/thiraviyalingesh/company-chat/internal/app/system/auth"
)

// Routes mounts the user endpoints (typically under "/users" from
// bootstrap). /me is for any signed-in user; the rest is superadmin.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(auth.RequireSignedIn)
		pr.Get("/me", h.ServeMe)
	})

	r.Group(func(pr chi.Router) {
		pr.Use(auth.RequireSignedIn)
		pr.Use(auth.RequireSuperAdmin)

		pr.Get("/", h.ServeList)
		pr.Post("/{userID}/block", h.ServeBlock)
		pr.Post("/{userID}/unblock", h.ServeUnblock)
	})

	return r
}
