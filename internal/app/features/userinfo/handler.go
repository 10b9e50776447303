// internal/app/features/userinfo/handler.go
package userinfo

import (
	"net/http"

	"github.com/fixtrack/fixtrack/internal/app/system/auth"
	"github.com/fixtrack/fixtrack/internal/app/system/httpjson"
	"go.uber.org/zap"
)

type Handler struct {
	Log *zap.Logger
}

func NewHandler(logger *zap.Logger) *Handler {
	return &Handler{Log: logger}
}

type userinfoResponse struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	Role     string `json:"role"`
}

// Serve handles GET /userinfo, returning the current session principal.
// The RequireSignedIn middleware guarantees a user is present.
func (h *Handler) Serve(w http.ResponseWriter, r *http.Request) {
	u, ok := auth.CurrentUser(r)
	if !ok {
		httpjson.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	httpjson.Write(w, http.StatusOK, userinfoResponse{
		ID:       u.ID,
		Email:    u.Email,
		FullName: u.Name,
		Role:     u.Role,
	})
}
