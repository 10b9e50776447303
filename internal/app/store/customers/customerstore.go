// internal/app/store/customers/customerstore.go
package customerstore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/waffle/pantry/text"
	"github.com/fixtrack/fixtrack/internal/app/system/htmlsanitize"
	"github.com/fixtrack/fixtrack/internal/app/system/inputval"
	"github.com/fixtrack/fixtrack/internal/app/system/normalize"
	"github.com/fixtrack/fixtrack/internal/app/system/search"
	"github.com/fixtrack/fixtrack/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrNotFound is returned by Update and GetByID when no customer has
// the given ID.
var ErrNotFound = errors.New("customer not found")

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("customers")}
}

// Add normalizes and validates a new customer, stamps timestamps, and
// inserts it. A *inputval.ValidationError is returned (and nothing is
// written) when any rule fails.
func (s *Store) Add(ctx context.Context, c models.Customer) (models.Customer, error) {
	now := time.Now().UTC()

	c.ID = primitive.NewObjectID()
	c.Name = normalize.Name(c.Name)
	c.NameCI = text.Fold(c.Name)
	c.Phone = normalize.Phone(c.Phone)
	c.Email = normalize.Email(c.Email)
	c.Address = htmlsanitize.Text(c.Address)
	c.CreatedAt = now
	c.UpdatedAt = now

	if verr := inputval.ValidateCustomer(c); verr != nil {
		return models.Customer{}, verr
	}

	if _, err := s.c.InsertOne(ctx, c); err != nil {
		return models.Customer{}, err
	}
	return c, nil
}

// Update describes a partial customer mutation. Nil fields keep the
// stored value.
type Update struct {
	Name    *string
	Phone   *string
	Email   *string
	Address *string
}

// Update merges mut over the stored record, re-validates the merged
// result, and persists it with a fresh updated_at. Returns ErrNotFound
// when no customer has the given ID; nothing is written when the
// merged record fails validation.
func (s *Store) Update(ctx context.Context, id primitive.ObjectID, mut Update) (models.Customer, error) {
	existing, err := s.GetByID(ctx, id)
	if err != nil {
		return models.Customer{}, err
	}

	if mut.Name != nil {
		existing.Name = normalize.Name(*mut.Name)
		existing.NameCI = text.Fold(existing.Name)
	}
	if mut.Phone != nil {
		existing.Phone = normalize.Phone(*mut.Phone)
	}
	if mut.Email != nil {
		existing.Email = normalize.Email(*mut.Email)
	}
	if mut.Address != nil {
		existing.Address = htmlsanitize.Text(*mut.Address)
	}
	existing.UpdatedAt = time.Now().UTC()

	if verr := inputval.ValidateCustomer(existing); verr != nil {
		return models.Customer{}, verr
	}

	_, err = s.c.UpdateByID(ctx, id, bson.M{"$set": bson.M{
		"name":       existing.Name,
		"name_ci":    existing.NameCI,
		"phone":      existing.Phone,
		"email":      existing.Email,
		"address":    existing.Address,
		"updated_at": existing.UpdatedAt,
	}})
	if err != nil {
		return models.Customer{}, err
	}
	return existing, nil
}

// GetByID returns a customer by its ID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Customer, error) {
	var c models.Customer
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&c)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Customer{}, ErrNotFound
	}
	if err != nil {
		return models.Customer{}, err
	}
	return c, nil
}

// List returns all customers in storage order.
func (s *Store) List(ctx context.Context, opts ...*options.FindOptions) ([]models.Customer, error) {
	return s.find(ctx, bson.M{}, opts...)
}

// SearchByName returns customers whose name starts with q,
// case-insensitively.
func (s *Store) SearchByName(ctx context.Context, q string, opts ...*options.FindOptions) ([]models.Customer, error) {
	return s.find(ctx, search.NamePrefix(q), opts...)
}

// Delete removes a customer by ID. Returns the number of documents
// deleted (0 or 1).
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

func (s *Store) find(ctx context.Context, filter bson.M, opts ...*options.FindOptions) ([]models.Customer, error) {
	cur, err := s.c.Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.Customer{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
