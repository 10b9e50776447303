// internal/app/store/repairs/repairstore.go
package repairstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
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

// ErrNotFound is returned by Update and GetByID when no repair has the
// given ID.
var ErrNotFound = errors.New("repair not found")

// mintAttempts bounds the re-mint loop when a freshly minted repair_id
// collides with an existing one. The id space is small (12 months ×
// 9000 numbers), so collisions happen; five fresh draws make a
// persistent collision vanishingly unlikely at realistic volumes.
const mintAttempts = 5

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("repairs")}
}

// Add normalizes and validates a new repair ticket, mints its
// human-readable repair_id, stamps timestamps, and inserts it. The
// unique index on repair_id turns a collision into a duplicate-key
// error, which re-mints and retries up to mintAttempts times.
func (s *Store) Add(ctx context.Context, r models.Repair) (models.Repair, error) {
	now := time.Now().UTC()

	r.ID = primitive.NewObjectID()
	r.DeviceType = normalize.Name(r.DeviceType)
	r.Brand = normalize.Name(r.Brand)
	r.Model = normalize.Name(r.Model)
	r.Status = normalize.Status(r.Status)
	if r.Status == "" {
		r.Status = models.RepairPending
	}
	r.Tasks = htmlsanitize.List(r.Tasks)
	r.CreatedAt = now
	r.UpdatedAt = now

	if verr := inputval.ValidateRepair(r); verr != nil {
		return models.Repair{}, verr
	}

	var lastErr error
	for i := 0; i < mintAttempts; i++ {
		r.RepairID = secid.Repair(now)
		_, err := s.c.InsertOne(ctx, r)
		if err == nil {
			return r, nil
		}
		if !wafflemongo.IsDup(err) {
			return models.Repair{}, err
		}
		lastErr = err
	}
	return models.Repair{}, fmt.Errorf("minting repair_id: %w", lastErr)
}

// Update describes a partial repair mutation. Nil fields keep the
// stored value. TechnicianID distinguishes "leave alone" (nil) from
// "clear" (pointer to NilObjectID).
type Update struct {
	DeviceType   *string
	Brand        *string
	Model        *string
	Status       *string
	Cost         *float64
	Tasks        *[]string
	TechnicianID *primitive.ObjectID
}

// Update merges mut over the stored ticket, re-validates the merged
// result, and persists it with a fresh updated_at. Returns ErrNotFound
// when no repair has the given ID; nothing is written when the merged
// record fails validation. The repair_id and customer_id are fixed at
// creation and cannot be mutated.
func (s *Store) Update(ctx context.Context, id primitive.ObjectID, mut Update) (models.Repair, error) {
	existing, err := s.GetByID(ctx, id)
	if err != nil {
		return models.Repair{}, err
	}

	if mut.DeviceType != nil {
		existing.DeviceType = normalize.Name(*mut.DeviceType)
	}
	if mut.Brand != nil {
		existing.Brand = normalize.Name(*mut.Brand)
	}
	if mut.Model != nil {
		existing.Model = normalize.Name(*mut.Model)
	}
	if mut.Status != nil {
		existing.Status = normalize.Status(*mut.Status)
	}
	if mut.Cost != nil {
		existing.Cost = *mut.Cost
	}
	if mut.Tasks != nil {
		existing.Tasks = htmlsanitize.List(*mut.Tasks)
	}
	if mut.TechnicianID != nil {
		if mut.TechnicianID.IsZero() {
			existing.TechnicianID = nil
		} else {
			existing.TechnicianID = mut.TechnicianID
		}
	}
	existing.UpdatedAt = time.Now().UTC()

	if verr := inputval.ValidateRepair(existing); verr != nil {
		return models.Repair{}, verr
	}

	_, err = s.c.UpdateByID(ctx, id, bson.M{"$set": bson.M{
		"device_type":   existing.DeviceType,
		"brand":         existing.Brand,
		"model":         existing.Model,
		"status":        existing.Status,
		"cost":          existing.Cost,
		"tasks":         existing.Tasks,
		"technician_id": existing.TechnicianID,
		"updated_at":    existing.UpdatedAt,
	}})
	if err != nil {
		return models.Repair{}, err
	}
	return existing, nil
}

// GetByID returns a repair by its ID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Repair, error) {
	var r models.Repair
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&r)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Repair{}, ErrNotFound
	}
	if err != nil {
		return models.Repair{}, err
	}
	return r, nil
}

// List returns all repairs in storage order.
func (s *Store) List(ctx context.Context, opts ...*options.FindOptions) ([]models.Repair, error) {
	return s.find(ctx, bson.M{}, opts...)
}

// ByStatus returns all repairs with the given status. The empty slice
// (never nil) is returned when nothing matches.
func (s *Store) ByStatus(ctx context.Context, status string, opts ...*options.FindOptions) ([]models.Repair, error) {
	return s.find(ctx, bson.M{"status": normalize.Status(status)}, opts...)
}

// ByCustomer returns all repairs for the given customer.
func (s *Store) ByCustomer(ctx context.Context, customerID primitive.ObjectID, opts ...*options.FindOptions) ([]models.Repair, error) {
	return s.find(ctx, bson.M{"customer_id": customerID}, opts...)
}

// Delete removes a repair by ID. Returns the number of documents
// deleted (0 or 1).
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

func (s *Store) find(ctx context.Context, filter bson.M, opts ...*options.FindOptions) ([]models.Repair, error) {
	cur, err := s.c.Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.Repair{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
