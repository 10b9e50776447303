// internal/app/store/technicians/technicianstore.go
package technicianstore

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

// ErrNotFound is returned by Update and GetByID when no technician has
// the given ID.
var ErrNotFound = errors.New("technician not found")

// mintAttempts bounds the re-mint loop on tech_id collisions.
const mintAttempts = 5

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("technicians")}
}

// Add normalizes and validates a new technician, mints their tech_id,
// stamps timestamps, and inserts the record.
func (s *Store) Add(ctx context.Context, t models.Technician) (models.Technician, error) {
	now := time.Now().UTC()

	t.ID = primitive.NewObjectID()
	t.Name = normalize.Name(t.Name)
	t.NameCI = text.Fold(t.Name)
	t.Specialization = htmlsanitize.List(t.Specialization)
	t.Email = normalize.Email(t.Email)
	t.Phone = normalize.Phone(t.Phone)
	t.CreatedAt = now
	t.UpdatedAt = now

	if verr := inputval.ValidateTechnician(t); verr != nil {
		return models.Technician{}, verr
	}

	var lastErr error
	for i := 0; i < mintAttempts; i++ {
		t.TechID = secid.Technician()
		_, err := s.c.InsertOne(ctx, t)
		if err == nil {
			return t, nil
		}
		if !wafflemongo.IsDup(err) {
			return models.Technician{}, err
		}
		lastErr = err
	}
	return models.Technician{}, fmt.Errorf("minting tech_id: %w", lastErr)
}

// Update describes a partial technician mutation. Nil fields keep the
// stored value.
type Update struct {
	Name           *string
	Specialization *[]string
	Availability   *bool
	Email          *string
	Phone          *string
}

// Update merges mut over the stored record, re-validates the merged
// result, and persists it with a fresh updated_at. Returns ErrNotFound
// when no technician has the given ID.
func (s *Store) Update(ctx context.Context, id primitive.ObjectID, mut Update) (models.Technician, error) {
	existing, err := s.GetByID(ctx, id)
	if err != nil {
		return models.Technician{}, err
	}

	if mut.Name != nil {
		existing.Name = normalize.Name(*mut.Name)
		existing.NameCI = text.Fold(existing.Name)
	}
	if mut.Specialization != nil {
		existing.Specialization = htmlsanitize.List(*mut.Specialization)
	}
	if mut.Availability != nil {
		existing.Availability = *mut.Availability
	}
	if mut.Email != nil {
		existing.Email = normalize.Email(*mut.Email)
	}
	if mut.Phone != nil {
		existing.Phone = normalize.Phone(*mut.Phone)
	}
	existing.UpdatedAt = time.Now().UTC()

	if verr := inputval.ValidateTechnician(existing); verr != nil {
		return models.Technician{}, verr
	}

	_, err = s.c.UpdateByID(ctx, id, bson.M{"$set": bson.M{
		"name":           existing.Name,
		"name_ci":        existing.NameCI,
		"specialization": existing.Specialization,
		"availability":   existing.Availability,
		"email":          existing.Email,
		"phone":          existing.Phone,
		"updated_at":     existing.UpdatedAt,
	}})
	if err != nil {
		return models.Technician{}, err
	}
	return existing, nil
}

// GetByID returns a technician by their ID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Technician, error) {
	var t models.Technician
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&t)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Technician{}, ErrNotFound
	}
	if err != nil {
		return models.Technician{}, err
	}
	return t, nil
}

// List returns all technicians in storage order.
func (s *Store) List(ctx context.Context, opts ...*options.FindOptions) ([]models.Technician, error) {
	return s.find(ctx, bson.M{}, opts...)
}

// ByAvailability returns all technicians whose availability flag
// matches available.
func (s *Store) ByAvailability(ctx context.Context, available bool, opts ...*options.FindOptions) ([]models.Technician, error) {
	return s.find(ctx, bson.M{"availability": available}, opts...)
}

// Delete removes a technician by ID. Returns the number of documents
// deleted (0 or 1).
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

func (s *Store) find(ctx context.Context, filter bson.M, opts ...*options.FindOptions) ([]models.Technician, error) {
	cur, err := s.c.Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.Technician{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
