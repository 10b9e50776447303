// internal/app/features/register/routes.go
package register

import "github.com/go-chi/chi/v5"

// Routes returns the router for account registration.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.Serve)
	return r
}
