// internal/app/features/repairs/handler.go
package repairs

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/fixtrack/fixtrack/internal/app/policy/accesspolicy"
	repairstore "github.com/fixtrack/fixtrack/internal/app/store/repairs"
	"github.com/fixtrack/fixtrack/internal/app/system/auditlog"
	"github.com/fixtrack/fixtrack/internal/app/system/authz"
	"github.com/fixtrack/fixtrack/internal/app/system/httpjson"
	"github.com/fixtrack/fixtrack/internal/app/system/paging"
	"github.com/fixtrack/fixtrack/internal/app/system/timeouts"
	"github.com/fixtrack/fixtrack/internal/domain/models"
)

type Handler struct {
	Repairs *repairstore.Store
	Audit   *auditlog.Logger
	Log     *zap.Logger
}

func NewHandler(db *mongo.Database, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{Repairs: repairstore.New(db), Audit: audit, Log: logger}
}

type createRequest struct {
	CustomerID   string   `json:"customer_id"`
	TechnicianID string   `json:"technician_id"`
	DeviceType   string   `json:"device_type"`
	Brand        string   `json:"brand"`
	Model        string   `json:"model"`
	Status       string   `json:"status"`
	Cost         float64  `json:"cost"`
	Tasks        []string `json:"tasks"`
}

type updateRequest struct {
	TechnicianID *string   `json:"technician_id"`
	DeviceType   *string   `json:"device_type"`
	Brand        *string   `json:"brand"`
	Model        *string   `json:"model"`
	Status       *string   `json:"status"`
	Cost         *float64  `json:"cost"`
	Tasks        *[]string `json:"tasks"`
}

// ServeList handles GET /repairs with optional ?status= and
// ?customer_id= filters. A filter param present but blank returns an
// empty list without touching the database.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page := paging.Find(r)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	switch {
	case q.Has("status"):
		status := strings.TrimSpace(q.Get("status"))
		if status == "" {
			httpjson.Write(w, http.StatusOK, []models.Repair{})
			return
		}
		list, err := h.Repairs.ByStatus(ctx, status, page)
		if err != nil {
			httpjson.WriteFromErr(w, err, repairstore.ErrNotFound, h.Log)
			return
		}
		httpjson.Write(w, http.StatusOK, list)

	case q.Has("customer_id"):
		raw := strings.TrimSpace(q.Get("customer_id"))
		if raw == "" {
			httpjson.Write(w, http.StatusOK, []models.Repair{})
			return
		}
		custID, err := primitive.ObjectIDFromHex(raw)
		if err != nil {
			httpjson.WriteError(w, http.StatusBadRequest, "invalid customer_id")
			return
		}
		list, err := h.Repairs.ByCustomer(ctx, custID, page)
		if err != nil {
			httpjson.WriteFromErr(w, err, repairstore.ErrNotFound, h.Log)
			return
		}
		httpjson.Write(w, http.StatusOK, list)

	default:
		list, err := h.Repairs.List(ctx, page)
		if err != nil {
			httpjson.WriteFromErr(w, err, repairstore.ErrNotFound, h.Log)
			return
		}
		httpjson.Write(w, http.StatusOK, list)
	}
}

// ServeGet handles GET /repairs/{id}.
func (h *Handler) ServeGet(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	rec, err := h.Repairs.GetByID(ctx, id)
	if err != nil {
		httpjson.WriteFromErr(w, err, repairstore.ErrNotFound, h.Log)
		return
	}
	httpjson.Write(w, http.StatusOK, rec)
}

// ServeCreate handles POST /repairs. The repair_id is minted server
// side; status defaults to pending when omitted.
func (h *Handler) ServeCreate(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.WriteError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	custID, err := primitive.ObjectIDFromHex(strings.TrimSpace(req.CustomerID))
	if err != nil {
		httpjson.WriteError(w, http.StatusBadRequest, "invalid customer_id")
		return
	}

	rec := models.Repair{
		CustomerID: custID,
		DeviceType: req.DeviceType,
		Brand:      req.Brand,
		Model:      req.Model,
		Status:     req.Status,
		Cost:       req.Cost,
		Tasks:      req.Tasks,
	}
	if s := strings.TrimSpace(req.TechnicianID); s != "" {
		techID, err := primitive.ObjectIDFromHex(s)
		if err != nil {
			httpjson.WriteError(w, http.StatusBadRequest, "invalid technician_id")
			return
		}
		rec.TechnicianID = &techID
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	created, err := h.Repairs.Add(ctx, rec)
	if err != nil {
		httpjson.WriteFromErr(w, err, repairstore.ErrNotFound, h.Log)
		return
	}

	if role, _, actorID, ok := authz.UserCtx(r); ok {
		h.Audit.RecordCreated(ctx, r, actorID, role, accesspolicy.Repairs, created.ID.Hex())
	}
	httpjson.Write(w, http.StatusCreated, created)
}

// ServeUpdate handles PATCH /repairs/{id}. The repair_id and
// customer_id are immutable; technician_id set to the empty string
// unassigns the technician.
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

	mut := repairstore.Update{
		DeviceType: req.DeviceType,
		Brand:      req.Brand,
		Model:      req.Model,
		Status:     req.Status,
		Cost:       req.Cost,
		Tasks:      req.Tasks,
	}
	if req.TechnicianID != nil {
		s := strings.TrimSpace(*req.TechnicianID)
		if s == "" {
			nilID := primitive.NilObjectID
			mut.TechnicianID = &nilID
		} else {
			techID, err := primitive.ObjectIDFromHex(s)
			if err != nil {
				httpjson.WriteError(w, http.StatusBadRequest, "invalid technician_id")
				return
			}
			mut.TechnicianID = &techID
		}
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	rec, err := h.Repairs.Update(ctx, id, mut)
	if err != nil {
		httpjson.WriteFromErr(w, err, repairstore.ErrNotFound, h.Log)
		return
	}

	if role, _, actorID, ok := authz.UserCtx(r); ok {
		h.Audit.RecordUpdated(ctx, r, actorID, role, accesspolicy.Repairs, id.Hex())
	}
	httpjson.Write(w, http.StatusOK, rec)
}

// ServeDelete handles DELETE /repairs/{id}.
func (h *Handler) ServeDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	n, err := h.Repairs.Delete(ctx, id)
	if err != nil {
		httpjson.WriteFromErr(w, err, repairstore.ErrNotFound, h.Log)
		return
	}
	if n == 0 {
		httpjson.WriteError(w, http.StatusNotFound, "repair not found")
		return
	}

	if role, _, actorID, ok := authz.UserCtx(r); ok {
		h.Audit.RecordDeleted(ctx, r, actorID, role, accesspolicy.Repairs, id.Hex())
	}
	httpjson.Write(w, http.StatusOK, true)
}

func pathID(w http.ResponseWriter, r *http.Request) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		httpjson.WriteError(w, http.StatusBadRequest, "invalid repair id")
		return primitive.NilObjectID, false
	}
	return id, true
}
