// internal/app/store/products/productstore.go
package productstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/text"
	"github.com/fixtrack/fixtrack/internal/app/system/htmlsanitize"
	"github.com/fixtrack/fixtrack/internal/app/system/inputval"
	"github.com/fixtrack/fixtrack/internal/app/system/normalize"
	"github.com/fixtrack/fixtrack/internal/app/system/secid"
	"github.com/fixtrack/fixtrack/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrNotFound is returned by Update and GetByID when no product has
// the given ID.
var ErrNotFound = errors.New("product not found")

// mintAttempts bounds the re-mint loop on product_id collisions.
const mintAttempts = 5

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("products")}
}

// Add normalizes and validates a new product, mints its product_id,
// stamps timestamps, and inserts it.
func (s *Store) Add(ctx context.Context, p models.Product) (models.Product, error) {
	now := time.Now().UTC()

	p.ID = primitive.NewObjectID()
	p.Name = normalize.Name(p.Name)
	p.NameCI = text.Fold(p.Name)
	p.Category = normalize.Name(p.Category)
	p.CategoryCI = text.Fold(p.Category)
	p.Supplier = htmlsanitize.Text(p.Supplier)
	p.CreatedAt = now
	p.UpdatedAt = now

	if verr := inputval.ValidateProduct(p); verr != nil {
		return models.Product{}, verr
	}

	var lastErr error
	for i := 0; i < mintAttempts; i++ {
		p.ProductID = secid.Product()
		_, err := s.c.InsertOne(ctx, p)
		if err == nil {
			return p, nil
		}
		if !wafflemongo.IsDup(err) {
			return models.Product{}, err
		}
		lastErr = err
	}
	return models.Product{}, fmt.Errorf("minting product_id: %w", lastErr)
}

// Update describes a partial product mutation. Nil fields keep the
// stored value.
type Update struct {
	Name     *string
	Category *string
	Quantity *int
	Price    *float64
	Supplier *string
}

// Update merges mut over the stored record, re-validates the merged
// result, and persists it with a fresh updated_at. Returns ErrNotFound
// when no product has the given ID.
func (s *Store) Update(ctx context.Context, id primitive.ObjectID, mut Update) (models.Product, error) {
	existing, err := s.GetByID(ctx, id)
	if err != nil {
		return models.Product{}, err
	}

	if mut.Name != nil {
		existing.Name = normalize.Name(*mut.Name)
		existing.NameCI = text.Fold(existing.Name)
	}
	if mut.Category != nil {
		existing.Category = normalize.Name(*mut.Category)
		existing.CategoryCI = text.Fold(existing.Category)
	}
	if mut.Quantity != nil {
		existing.Quantity = *mut.Quantity
	}
	if mut.Price != nil {
		existing.Price = *mut.Price
	}
	if mut.Supplier != nil {
		existing.Supplier = htmlsanitize.Text(*mut.Supplier)
	}
	existing.UpdatedAt = time.Now().UTC()

	if verr := inputval.ValidateProduct(existing); verr != nil {
		return models.Product{}, verr
	}

	_, err = s.c.UpdateByID(ctx, id, bson.M{"$set": bson.M{
		"name":        existing.Name,
		"name_ci":     existing.NameCI,
		"category":    existing.Category,
		"category_ci": existing.CategoryCI,
		"quantity":    existing.Quantity,
		"price":       existing.Price,
		"supplier":    existing.Supplier,
		"updated_at":  existing.UpdatedAt,
	}})
	if err != nil {
		return models.Product{}, err
	}
	return existing, nil
}

// GetByID returns a product by its ID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Product, error) {
	var p models.Product
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Product{}, ErrNotFound
	}
	if err != nil {
		return models.Product{}, err
	}
	return p, nil
}

// List returns all products in storage order.
func (s *Store) List(ctx context.Context, opts ...*options.FindOptions) ([]models.Product, error) {
	return s.find(ctx, bson.M{}, opts...)
}

// ByCategory returns all products in the given category. Matching is
// case-insensitive via the folded category_ci field.
func (s *Store) ByCategory(ctx context.Context, category string, opts ...*options.FindOptions) ([]models.Product, error) {
	return s.find(ctx, bson.M{"category_ci": text.Fold(normalize.Name(category))}, opts...)
}

// Delete removes a product by ID. Returns the number of documents
// deleted (0 or 1).
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

func (s *Store) find(ctx context.Context, filter bson.M, opts ...*options.FindOptions) ([]models.Product, error) {
	cur, err := s.c.Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.Product{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
