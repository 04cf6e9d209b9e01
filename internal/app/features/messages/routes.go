// internal/app/features/messages/routes.go
package messages

import (
	"github.com/go-chi/chi/v5"
	"github.com/thiraviyalingesh/company-chat/internal/app/system/auth"
)

// Routes mounts the message endpoints (typically under
// "/groups/{groupID}/messages" from bootstrap).
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(auth.RequireSignedIn)

		pr.Get("/", h.ServeList)
		pr.Post("/", h.ServePost)
		pr.Delete("/{messageID}", h.ServeDelete)
	})

	return r
}
