// internal/app/features/authn/routes.go
package authn

import "github.com/go-chi/chi/v5"

// Routes mounts the unauthenticated auth endpoints (typically under
// "/auth" from bootstrap).
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Post("/signup", h.ServeSignup)
	r.Post("/request-code", h.ServeRequestCode)
	r.Post("/verify", h.ServeVerify)
	return r
}
