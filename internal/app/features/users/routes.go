// internal/app/features/users/routes.go
package users

import (
	"github.com/go-chi/chi/v5"

	"github.com/fixtrack/fixtrack/internal/app/system/auth"
	"github.com/fixtrack/fixtrack/internal/domain/models"
)

// Routes returns the router for user account records. The owner check
// on GET happens in the handler; role changes are admin only.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(auth.RequireSignedIn)

	r.Get("/{id}", h.ServeGet)
	r.With(auth.RequireRole(models.RoleAdmin)).Patch("/{id}/role", h.ServeSetRole)
	return r
}
