// internal/app/features/signups/routes.go
package signups

import (
	"github.com/go-chi/chi/v5"
	"github.com/thiraviyalingesh/company-chat/internal/app/system/auth"
)

// Routes mounts the signup queue endpoints (typically under "/signups"
// from bootstrap). Superadmin only.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(auth.RequireSignedIn)
		pr.Use(auth.RequireSuperAdmin)

		pr.Get("/", h.ServeList)
		pr.Post("/{userID}/approve", h.ServeApprove)
		pr.Post("/{userID}/reject", h.ServeReject)
	})

	return r
}
