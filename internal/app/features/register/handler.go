// internal/app/features/register/handler.go
package register

import (
	"context"
	"errors"
	"net/http"

	userstore "github.com/fixtrack/fixtrack/internal/app/store/users"
	"github.com/fixtrack/fixtrack/internal/app/system/auditlog"
	"github.com/fixtrack/fixtrack/internal/app/system/auth"
	"github.com/fixtrack/fixtrack/internal/app/system/httpjson"
	"github.com/fixtrack/fixtrack/internal/app/system/normalize"
	"github.com/fixtrack/fixtrack/internal/app/system/ratelimit"
	"github.com/fixtrack/fixtrack/internal/app/system/timeouts"
	"github.com/fixtrack/fixtrack/internal/domain/models"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type Handler struct {
	Users      *userstore.Store
	SessionMgr *auth.SessionManager
	Limiter    *ratelimit.Limiter
	Audit      *auditlog.Logger
	AdminEmail string // account that gets the admin role at registration
	Log        *zap.Logger
}

func NewHandler(db *mongo.Database, sessionMgr *auth.SessionManager, limiter *ratelimit.Limiter, audit *auditlog.Logger, adminEmail string, logger *zap.Logger) *Handler {
	return &Handler{
		Users:      userstore.New(db, logger),
		SessionMgr: sessionMgr,
		Limiter:    limiter,
		Audit:      audit,
		AdminEmail: normalize.Email(adminEmail),
		Log:        logger,
	}
}

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
}

type registerResponse struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	Role     string `json:"role"`
}

// Serve handles POST /register. New accounts get the staff role; the
// configured admin email gets admin. The fresh account is signed in.
func (h *Handler) Serve(w http.ResponseWriter, r *http.Request) {
	if !h.Limiter.Allow(ratelimit.ClientIP(r)) {
		httpjson.WriteError(w, http.StatusTooManyRequests, "too many registration attempts; try again later")
		return
	}

	var req registerRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.WriteError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	role := models.RoleStaff
	if h.AdminEmail != "" && normalize.Email(req.Email) == h.AdminEmail {
		role = models.RoleAdmin
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	u, err := h.Users.Create(ctx, req.Email, req.Password, req.FullName, role)
	if errors.Is(err, userstore.ErrDuplicateEmail) {
		httpjson.WriteError(w, http.StatusConflict, err.Error())
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
		h.Log.Error("session save failed after registration", zap.Error(err))
	}

	h.Audit.Registered(ctx, r, u.ID, u.Email, u.Role)

	httpjson.Write(w, http.StatusCreated, registerResponse{
		ID:       u.ID.Hex(),
		Email:    u.Email,
		FullName: u.FullName,
		Role:     u.Role,
	})
}
