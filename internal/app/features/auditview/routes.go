// internal/app/features/auditview/routes.go
package auditview

import (
	"github.com/go-chi/chi/v5"
	"github.com/thiraviyalingesh/company-chat/internal/app/system/auth"
)

// Routes mounts the audit trail endpoints (typically under "/audit"
// from bootstrap). Superadmin only.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(auth.RequireSignedIn)
		pr.Use(auth.RequireSuperAdmin)

		pr.Get("/", h.ServeList)
	})

	return r
}
