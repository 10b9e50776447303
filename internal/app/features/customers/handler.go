// internal/app/features/customers/handler.go
package customers

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/fixtrack/fixtrack/internal/app/policy/accesspolicy"
	customerstore "github.com/fixtrack/fixtrack/internal/app/store/customers"
	"github.com/fixtrack/fixtrack/internal/app/system/auditlog"
	"github.com/fixtrack/fixtrack/internal/app/system/authz"
	"github.com/fixtrack/fixtrack/internal/app/system/httpjson"
	"github.com/fixtrack/fixtrack/internal/app/system/paging"
	"github.com/fixtrack/fixtrack/internal/app/system/timeouts"
	"github.com/fixtrack/fixtrack/internal/domain/models"
)

type Handler struct {
	Customers *customerstore.Store
	Audit     *auditlog.Logger
	Log       *zap.Logger
}

func NewHandler(db *mongo.Database, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{Customers: customerstore.New(db), Audit: audit, Log: logger}
}

type createRequest struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
	Address string `json:"address"`
}

type updateRequest struct {
	Name    *string `json:"name"`
	Phone   *string `json:"phone"`
	Email   *string `json:"email"`
	Address *string `json:"address"`
}

// ServeList handles GET /customers with an optional ?name= prefix
// search. A name param present but blank returns an empty list without
// touching the database.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	page := paging.Find(r)

	if r.URL.Query().Has("name") {
		name := strings.TrimSpace(r.URL.Query().Get("name"))
		if name == "" {
			httpjson.Write(w, http.StatusOK, []models.Customer{})
			return
		}
		list, err := h.Customers.SearchByName(ctx, name, page)
		if err != nil {
			httpjson.WriteFromErr(w, err, customerstore.ErrNotFound, h.Log)
			return
		}
		httpjson.Write(w, http.StatusOK, list)
		return
	}

	list, err := h.Customers.List(ctx, page)
	if err != nil {
		httpjson.WriteFromErr(w, err, customerstore.ErrNotFound, h.Log)
		return
	}
	httpjson.Write(w, http.StatusOK, list)
}

// ServeGet handles GET /customers/{id}.
func (h *Handler) ServeGet(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	c, err := h.Customers.GetByID(ctx, id)
	if err != nil {
		httpjson.WriteFromErr(w, err, customerstore.ErrNotFound, h.Log)
		return
	}
	httpjson.Write(w, http.StatusOK, c)
}

// ServeCreate handles POST /customers.
func (h *Handler) ServeCreate(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.WriteError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	c, err := h.Customers.Add(ctx, models.Customer{
		Name:    req.Name,
		Phone:   req.Phone,
		Email:   req.Email,
		Address: req.Address,
	})
	if err != nil {
		httpjson.WriteFromErr(w, err, customerstore.ErrNotFound, h.Log)
		return
	}

	if role, _, actorID, ok := authz.UserCtx(r); ok {
		h.Audit.RecordCreated(ctx, r, actorID, role, accesspolicy.Customers, c.ID.Hex())
	}
	httpjson.Write(w, http.StatusCreated, c)
}

// ServeUpdate handles PATCH /customers/{id}. Absent fields are left as
// they are.
func (h *Handler) ServeUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req updateRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.WriteError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	c, err := h.Customers.Update(ctx, id, customerstore.Update{
		Name:    req.Name,
		Phone:   req.Phone,
		Email:   req.Email,
		Address: req.Address,
	})
	if err != nil {
		httpjson.WriteFromErr(w, err, customerstore.ErrNotFound, h.Log)
		return
	}

	if role, _, actorID, ok := authz.UserCtx(r); ok {
		h.Audit.RecordUpdated(ctx, r, actorID, role, accesspolicy.Customers, id.Hex())
	}
	httpjson.Write(w, http.StatusOK, c)
}

// ServeDelete handles DELETE /customers/{id}.
func (h *Handler) ServeDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	n, err := h.Customers.Delete(ctx, id)
	if err != nil {
		httpjson.WriteFromErr(w, err, customerstore.ErrNotFound, h.Log)
		return
	}
	if n == 0 {
		httpjson.WriteError(w, http.StatusNotFound, "customer not found")
		return
	}

	if role, _, actorID, ok := authz.UserCtx(r); ok {
		h.Audit.RecordDeleted(ctx, r, actorID, role, accesspolicy.Customers, id.Hex())
	}
	httpjson.Write(w, http.StatusOK, true)
}

func pathID(w http.ResponseWriter, r *http.Request) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		httpjson.WriteError(w, http.StatusBadRequest, "invalid customer id")
		return primitive.NilObjectID, false
	}
	return id, true
}
