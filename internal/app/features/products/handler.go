// internal/app/features/products/handler.go
package products

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/fixtrack/fixtrack/internal/app/policy/accesspolicy"
	productstore "github.com/fixtrack/fixtrack/internal/app/store/products"
	"github.com/fixtrack/fixtrack/internal/app/system/auditlog"
	"github.com/fixtrack/fixtrack/internal/app/system/authz"
	"github.com/fixtrack/fixtrack/internal/app/system/httpjson"
	"github.com/fixtrack/fixtrack/internal/app/system/paging"
	"github.com/fixtrack/fixtrack/internal/app/system/timeouts"
	"github.com/fixtrack/fixtrack/internal/domain/models"
)

type Handler struct {
	Products *productstore.Store
	Audit    *auditlog.Logger
	Log      *zap.Logger
}

func NewHandler(db *mongo.Database, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{Products: productstore.New(db), Audit: audit, Log: logger}
}

type createRequest struct {
	Name     string  `json:"name"`
	Category string  `json:"category"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
	Supplier string  `json:"supplier"`
}

type updateRequest struct {
	Name     *string  `json:"name"`
	Category *string  `json:"category"`
	Quantity *int     `json:"quantity"`
	Price    *float64 `json:"price"`
	Supplier *string  `json:"supplier"`
}

// ServeList handles GET /products with an optional ?category= filter.
// A category param present but blank returns an empty list.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	page := paging.Find(r)

	if r.URL.Query().Has("category") {
		category := strings.TrimSpace(r.URL.Query().Get("category"))
		if category == "" {
			httpjson.Write(w, http.StatusOK, []models.Product{})
			return
		}
		list, err := h.Products.ByCategory(ctx, category, page)
		if err != nil {
			httpjson.WriteFromErr(w, err, productstore.ErrNotFound, h.Log)
			return
		}
		httpjson.Write(w, http.StatusOK, list)
		return
	}

	list, err := h.Products.List(ctx, page)
	if err != nil {
		httpjson.WriteFromErr(w, err, productstore.ErrNotFound, h.Log)
		return
	}
	httpjson.Write(w, http.StatusOK, list)
}

// ServeGet handles GET /products/{id}.
func (h *Handler) ServeGet(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	p, err := h.Products.GetByID(ctx, id)
	if err != nil {
		httpjson.WriteFromErr(w, err, productstore.ErrNotFound, h.Log)
		return
	}
	httpjson.Write(w, http.StatusOK, p)
}

// ServeCreate handles POST /products. The product_id is minted server
// side.
func (h *Handler) ServeCreate(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.WriteError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	p, err := h.Products.Add(ctx, models.Product{
		Name:     req.Name,
		Category: req.Category,
		Quantity: req.Quantity,
		Price:    req.Price,
		Supplier: req.Supplier,
	})
	if err != nil {
		httpjson.WriteFromErr(w, err, productstore.ErrNotFound, h.Log)
		return
	}

	if role, _, actorID, ok := authz.UserCtx(r); ok {
		h.Audit.RecordCreated(ctx, r, actorID, role, accesspolicy.Products, p.ID.Hex())
	}
	httpjson.Write(w, http.StatusCreated, p)
}

// ServeUpdate handles PATCH /products/{id}. The product_id is
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

	p, err := h.Products.Update(ctx, id, productstore.Update{
		Name:     req.Name,
		Category: req.Category,
		Quantity: req.Quantity,
		Price:    req.Price,
		Supplier: req.Supplier,
	})
	if err != nil {
		httpjson.WriteFromErr(w, err, productstore.ErrNotFound, h.Log)
		return
	}

	if role, _, actorID, ok := authz.UserCtx(r); ok {
		h.Audit.RecordUpdated(ctx, r, actorID, role, accesspolicy.Products, id.Hex())
	}
	httpjson.Write(w, http.StatusOK, p)
}

// ServeDelete handles DELETE /products/{id}.
func (h *Handler) ServeDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	n, err := h.Products.Delete(ctx, id)
	if err != nil {
		httpjson.WriteFromErr(w, err, productstore.ErrNotFound, h.Log)
		return
	}
	if n == 0 {
		httpjson.WriteError(w, http.StatusNotFound, "product not found")
		return
	}

	if role, _, actorID, ok := authz.UserCtx(r); ok {
		h.Audit.RecordDeleted(ctx, r, actorID, role, accesspolicy.Products, id.Hex())
	}
	httpjson.Write(w, http.StatusOK, true)
}

func pathID(w http.ResponseWriter, r *http.Request) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		httpjson.WriteError(w, http.StatusBadRequest, "invalid product id")
		return primitive.NilObjectID, false
	}
	return id, true
}
