// internal/app/features/logout/handler.go
package logout

import (
	"net/http"

	"github.com/fixtrack/fixtrack/internal/app/system/auditlog"
	"github.com/fixtrack/fixtrack/internal/app/system/auth"
	"github.com/fixtrack/fixtrack/internal/app/system/httpjson"
	"go.uber.org/zap"
)

type Handler struct {
	SessionMgr *auth.SessionManager
	Audit      *auditlog.Logger
	Log        *zap.Logger
}

func NewHandler(sessionMgr *auth.SessionManager, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{SessionMgr: sessionMgr, Audit: audit, Log: logger}
}

// Serve handles POST /logout. Signing out an already-anonymous session
// still succeeds.
func (h *Handler) Serve(w http.ResponseWriter, r *http.Request) {
	if u, ok := auth.CurrentUser(r); ok {
		h.Audit.Logout(r.Context(), r, u.ID)
	}

	if err := h.SessionMgr.SignOut(w, r); err != nil {
		h.Log.Error("session clear failed", zap.Error(err))
		httpjson.Write(w, http.StatusOK, false)
		return
	}
	httpjson.Write(w, http.StatusOK, true)
}
