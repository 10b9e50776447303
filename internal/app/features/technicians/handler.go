// internal/app/features/technicians/handler.go
package technicians

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/fixtrack/fixtrack/internal/app/policy/accesspolicy"
	technicianstore "github.com/fixtrack/fixtrack/internal/app/store/technicians"
	"github.com/fixtrack/fixtrack/internal/app/system/auditlog"
	"github.com/fixtrack/fixtrack/internal/app/system/authz"
	"github.com/fixtrack/fixtrack/internal/app/system/httpjson"
	"github.com/fixtrack/fixtrack/internal/app/system/paging"
	"github.com/fixtrack/fixtrack/internal/app/system/timeouts"
	"github.com/fixtrack/fixtrack/internal/domain/models"
)

type Handler struct {
	Technicians *technicianstore.Store
	Audit       *auditlog.Logger
	Log         *zap.Logger
}

func NewHandler(db *mongo.Database, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{Technicians: technicianstore.New(db), Audit: audit, Log: logger}
}

type createRequest struct {
	Name           string   `json:"name"`
	Phone          string   `json:"phone"`
	Email          string   `json:"email"`
	Specialization []string `json:"specialization"`
	Availability   *bool    `json:"availability"`
}

type updateRequest struct {
	Name           *string   `json:"name"`
	Phone          *string   `json:"phone"`
	Email          *string   `json:"email"`
	Specialization *[]string `json:"specialization"`
	Availability   *bool     `json:"availability"`
}

// ServeList handles GET /technicians with an optional ?availability=
// filter. A param present but blank returns an empty list; anything
// not parseable as a bool is a 400.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	page := paging.Find(r)

	if r.URL.Query().Has("availability") {
		raw := strings.TrimSpace(r.URL.Query().Get("availability"))
		if raw == "" {
			httpjson.Write(w, http.StatusOK, []models.Technician{})
			return
		}
		avail, err := strconv.ParseBool(raw)
		if err != nil {
			httpjson.WriteError(w, http.StatusBadRequest, "invalid availability value")
			return
		}
		list, err := h.Technicians.ByAvailability(ctx, avail, page)
		if err != nil {
			httpjson.WriteFromErr(w, err, technicianstore.ErrNotFound, h.Log)
			return
		}
		httpjson.Write(w, http.StatusOK, list)
		return
	}

	list, err := h.Technicians.List(ctx, page)
	if err != nil {
		httpjson.WriteFromErr(w, err, technicianstore.ErrNotFound, h.Log)
		return
	}
	httpjson.Write(w, http.StatusOK, list)
}

// ServeGet handles GET /technicians/{id}.
func (h *Handler) ServeGet(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	t, err := h.Technicians.GetByID(ctx, id)
	if err != nil {
		httpjson.WriteFromErr(w, err, technicianstore.ErrNotFound, h.Log)
		return
	}
	httpjson.Write(w, http.StatusOK, t)
}

// ServeCreate handles POST /technicians. The tech_id is minted server
// side; availability defaults to true when omitted.
func (h *Handler) ServeCreate(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.WriteError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	availability := true
	if req.Availability != nil {
		availability = *req.Availability
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	t, err := h.Technicians.Add(ctx, models.Technician{
		Name:           req.Name,
		Phone:          req.Phone,
		Email:          req.Email,
		Specialization: req.Specialization,
		Availability:   availability,
	})
	if err != nil {
		httpjson.WriteFromErr(w, err, technicianstore.ErrNotFound, h.Log)
		return
	}

	if role, _, actorID, ok := authz.UserCtx(r); ok {
		h.Audit.RecordCreated(ctx, r, actorID, role, accesspolicy.Technicians, t.ID.Hex())
	}
	httpjson.Write(w, http.StatusCreated, t)
}

// ServeUpdate handles PATCH /technicians/{id}. The tech_id is
// immutable.
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

	t, err := h.Technicians.Update(ctx, id, technicianstore.Update{
		Name:           req.Name,
		Phone:          req.Phone,
		Email:          req.Email,
		Specialization: req.Specialization,
		Availability:   req.Availability,
	})
	if err != nil {
		httpjson.WriteFromErr(w, err, technicianstore.ErrNotFound, h.Log)
		return
	}

	if role, _, actorID, ok := authz.UserCtx(r); ok {
		h.Audit.RecordUpdated(ctx, r, actorID, role, accesspolicy.Technicians, id.Hex())
	}
	httpjson.Write(w, http.StatusOK, t)
}

// ServeDelete handles DELETE /technicians/{id}.
func (h *Handler) ServeDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	n, err := h.Technicians.Delete(ctx, id)
	if err != nil {
		httpjson.WriteFromErr(w, err, technicianstore.ErrNotFound, h.Log)
		return
	}
	if n == 0 {
		httpjson.WriteError(w, http.StatusNotFound, "technician not found")
		return
	}

	if role, _, actorID, ok := authz.UserCtx(r); ok {
		h.Audit.RecordDeleted(ctx, r, actorID, role, accesspolicy.Technicians, id.Hex())
	}
	httpjson.Write(w, http.StatusOK, true)
}

func pathID(w http.ResponseWriter, r *http.Request) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		httpjson.WriteError(w, http.StatusBadRequest, "invalid technician id")
		return primitive.NilObjectID, false
	}
	return id, true
}
