// internal/app/features/users/handler.go
package users

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/fixtrack/fixtrack/internal/app/policy/accesspolicy"
	userstore "github.com/fixtrack/fixtrack/internal/app/store/users"
	"github.com/fixtrack/fixtrack/internal/app/system/auditlog"
	"github.com/fixtrack/fixtrack/internal/app/system/authz"
	"github.com/fixtrack/fixtrack/internal/app/system/httpjson"
	"github.com/fixtrack/fixtrack/internal/app/system/timeouts"
)

type Handler struct {
	Users *userstore.Store
	Audit *auditlog.Logger
	Log   *zap.Logger
}

func NewHandler(db *mongo.Database, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{Users: userstore.New(db, logger), Audit: audit, Log: logger}
}

// ServeGet handles GET /users/{id}. Admins may fetch any account;
// everyone else only their own.
func (h *Handler) ServeGet(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if !accesspolicy.CanWriteUser(r, id) {
		httpjson.WriteError(w, http.StatusForbidden, "forbidden")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	u, err := h.Users.GetByID(ctx, id)
	if err != nil {
		httpjson.WriteFromErr(w, err, userstore.ErrNotFound, h.Log)
		return
	}
	httpjson.Write(w, http.StatusOK, u)
}

type setRoleRequest struct {
	Role string `json:"role"`
}

// ServeSetRole handles PATCH /users/{id}/role. Admin only (enforced by
// route middleware). Role changes take effect on the target's next
// request because LoadSessionUser re-fetches the account.
func (h *Handler) ServeSetRole(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req setRoleRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.WriteError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	if err := h.Users.SetRole(ctx, id, req.Role); err != nil {
		httpjson.WriteFromErr(w, err, userstore.ErrNotFound, h.Log)
		return
	}

	u, err := h.Users.GetByID(ctx, id)
	if err != nil {
		httpjson.WriteFromErr(w, err, userstore.ErrNotFound, h.Log)
		return
	}

	if role, _, actorID, ok := authz.UserCtx(r); ok {
		h.Audit.RoleChanged(ctx, r, actorID, id, role, u.Role)
	}
	httpjson.Write(w, http.StatusOK, u)
}

func pathID(w http.ResponseWriter, r *http.Request) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		httpjson.WriteError(w, http.StatusBadRequest, "invalid user id")
		return primitive.NilObjectID, false
	}
	return id, true
}
