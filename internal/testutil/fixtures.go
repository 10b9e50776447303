package testutil

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/dalemusser/waffle/pantry/text"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/fixtrack/fixtrack/internal/domain/models"
)

// WithChiURLParam adds a chi URL parameter to the request context.
// Use this in handler tests that need to access chi.URLParam values.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CreateCustomer inserts a test customer with the given name.
func (f *Fixtures) CreateCustomer(ctx context.Context, name string) models.Customer {
	f.t.Helper()

	now := time.Now().UTC()
	c := models.Customer{
		ID:        primitive.NewObjectID(),
		Name:      name,
		NameCI:    text.Fold(name),
		Phone:     "555-0100",
		Email:     "customer@test.com",
		Address:   "1 Test Street",
		CreatedAt: now,
		UpdatedAt: now,
	}

	if _, err := f.db.Collection("customers").InsertOne(ctx, c); err != nil {
		f.t.Fatalf("failed to create test customer: %v", err)
	}
	return c
}

// CreateRepair inserts a test repair for the given customer with the
// given status.
func (f *Fixtures) CreateRepair(ctx context.Context, customerID primitive.ObjectID, status string) models.Repair {
	f.t.Helper()

	now := time.Now().UTC()
	r := models.Repair{
		ID:         primitive.NewObjectID(),
		RepairID:   "jan" + primitive.NewObjectID().Hex()[:4],
		CustomerID: customerID,
		DeviceType: "smartphone",
		Brand:      "Acme",
		Model:      "A1",
		Status:     status,
		Cost:       49.99,
		Tasks:      []string{"replace screen"},
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if _, err := f.db.Collection("repairs").InsertOne(ctx, r); err != nil {
		f.t.Fatalf("failed to create test repair: %v", err)
	}
	return r
}

// CreateProduct inserts a test product in the given category.
func (f *Fixtures) CreateProduct(ctx context.Context, name, category string) models.Product {
	f.t.Helper()

	now := time.Now().UTC()
	p := models.Product{
		ID:         primitive.NewObjectID(),
		ProductID:  "PROD-" + primitive.NewObjectID().Hex()[:8],
		Name:       name,
		NameCI:     text.Fold(name),
		Category:   category,
		CategoryCI: text.Fold(category),
		Quantity:   10,
		Price:      9.99,
		Supplier:   "Test Supplies Inc",
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if _, err := f.db.Collection("products").InsertOne(ctx, p); err != nil {
		f.t.Fatalf("failed to create test product: %v", err)
	}
	return p
}

// CreateTechnician inserts a test technician with the given
// availability.
func (f *Fixtures) CreateTechnician(ctx context.Context, name string, available bool) models.Technician {
	f.t.Helper()

	now := time.Now().UTC()
	tech := models.Technician{
		ID:             primitive.NewObjectID(),
		TechID:         "TECH-" + primitive.NewObjectID().Hex()[:6],
		Name:           name,
		NameCI:         text.Fold(name),
		Phone:          "555-0199",
		Email:          "tech@test.com",
		Specialization: []string{"phones"},
		Availability:   available,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if _, err := f.db.Collection("technicians").InsertOne(ctx, tech); err != nil {
		f.t.Fatalf("failed to create test technician: %v", err)
	}
	return tech
}
