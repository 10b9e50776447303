// internal/app/features/userinfo/routes.go
package userinfo

import (
	"github.com/fixtrack/fixtrack/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes returns the router for the current-user endpoint.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(auth.RequireSignedIn)
	r.Get("/", h.Serve)
	return r
}
