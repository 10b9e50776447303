// internal/app/features/login/handler.go
package login

import (
	"context"
	"errors"
	"net/http"

	userstore "github.com/fixtrack/fixtrack/internal/app/store/users"
	"github.com/fixtrack/fixtrack/internal/app/system/auditlog"
	"github.com/fixtrack/fixtrack/internal/app/system/auth"
	"github.com/fixtrack/fixtrack/internal/app/system/httpjson"
	"github.com/fixtrack/fixtrack/internal/app/system/ratelimit"
	"github.com/fixtrack/fixtrack/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type Handler struct {
	Users      *userstore.Store
	SessionMgr *auth.SessionManager
	Limiter    *ratelimit.LoginLimiter
	Audit      *auditlog.Logger
	Log        *zap.Logger
}

func NewHandler(db *mongo.Database, sessionMgr *auth.SessionManager, limiter *ratelimit.LoginLimiter, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		Users:      userstore.New(db, logger),
		SessionMgr: sessionMgr,
		Limiter:    limiter,
		Audit:      audit,
		Log:        logger,
	}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	Role     string `json:"role"`
}

// Serve handles POST /login. A wrong email and a wrong password fail
// identically with 401. Repeated failures are throttled per IP and per
// account.
func (h *Handler) Serve(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.WriteError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if allowed, limitType := h.Limiter.Check(r, req.Email); !allowed {
		h.Audit.LoginRateLimited(ctx, r, req.Email, limitType)
		httpjson.WriteError(w, http.StatusTooManyRequests, "too many login attempts; try again later")
		return
	}

	u, err := h.Users.Authenticate(ctx, req.Email, req.Password)
	if errors.Is(err, userstore.ErrBadCredentials) {
		h.Audit.LoginFailed(ctx, r, req.Email)
		httpjson.WriteError(w, http.StatusUnauthorized, err.Error())
		return
	}
	if err != nil {
		httpjson.WriteFromErr(w, err, nil, h.Log)
		return
	}

	if err := h.SessionMgr.SignIn(w, r, &auth.SessionUser{
		ID:    u.ID.Hex(),
		Name:  u.FullName,
		Email: u.Email,
		Role:  u.Role,
	}); err != nil {
		h.Log.Error("session save failed", zap.Error(err))
		httpjson.WriteError(w, http.StatusInternalServerError, "internal error")
		return
	}

	h.Limiter.ResetEmail(u.Email)
	h.Audit.LoginSuccess(ctx, r, u.ID, u.Email)

	httpjson.Write(w, http.StatusOK, loginResponse{
		ID:       u.ID.Hex(),
		Email:    u.Email,
		FullName: u.FullName,
		Role:     u.Role,
	})
}
