// internal/app/features/technicians/routes.go
package technicians

import (
	"github.com/go-chi/chi/v5"

	"github.com/fixtrack/fixtrack/internal/app/policy/accesspolicy"
	"github.com/fixtrack/fixtrack/internal/app/system/auth"
	"github.com/fixtrack/fixtrack/internal/domain/models"
)

// Routes returns the router for the technicians collection. Writes are
// admin only.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(auth.RequireSignedIn)

	write := auth.RequireRole(accesspolicy.WriteRoles(accesspolicy.Technicians)...)

	r.Get("/", h.ServeList)
	r.Get("/{id}", h.ServeGet)
	r.With(write).Post("/", h.ServeCreate)
	r.With(write).Patch("/{id}", h.ServeUpdate)
	r.With(auth.RequireRole(models.RoleAdmin)).Delete("/{id}", h.ServeDelete)
	return r
}
