// internal/app/system/validators/validators.go
package validators

import (
	"context"
	"errors"
	"strings"

	"github.com/fixtrack/fixtrack/internal/domain/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// EnsureAll creates collections (if missing) and tries to attach
// JSON-Schema validators. The schemas duplicate the inputval rules at
// the store boundary: a write that bypasses the application layer still
// cannot produce a document with a missing required field, an unknown
// status/role, or a negative cost. Enums are built from the models
// constants so the two enforcement points share one definition.
//
// On servers that don't support collMod/validators (e.g. some
// DocumentDB versions), we log and skip gracefully.
func EnsureAll(ctx context.Context, db *mongo.Database) error {
	var problems []string

	ensure := func(coll string, schema bson.M) {
		if _, err := ensureCollection(ctx, db, coll); err != nil {
			problems = append(problems, coll+": "+err.Error())
			return
		}
		if schema == nil {
			return
		}
		if err := setValidator(ctx, db, coll, schema); err != nil {
			if isNoSuchCommand(err) || isNotImplemented(err) {
				zap.L().Info("validator skipped (unsupported)", zap.String("collection", coll))
				return
			}
			problems = append(problems, coll+": "+err.Error())
		}
	}

	ensure("users", usersSchema())
	ensure("customers", customersSchema())
	ensure("repairs", repairsSchema())
	ensure("products", productsSchema())
	ensure("technicians", techniciansSchema())

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

/* ---------------------- collection helpers & logging ---------------------- */

// collectionExists returns true when <name> already exists.
// Uses ListCollectionNames to avoid "created collection" log when it didn't.
func collectionExists(ctx context.Context, db *mongo.Database, name string) (bool, error) {
	names, err := db.ListCollectionNames(ctx, bson.M{})
	if err != nil {
		return false, err
	}
	for _, n := range names {
		if n == name {
			return true, nil
		}
	}
	return false, nil
}

// ensureCollection idempotently makes sure <name> exists.
// Returns created==true only if we actually created it.
func ensureCollection(ctx context.Context, db *mongo.Database, name string) (created bool, err error) {
	exists, listErr := collectionExists(ctx, db, name)
	if listErr == nil && exists {
		zap.L().Info("collection exists", zap.String("collection", name))
		return false, nil
	}
	// If listing failed, fall back to create-and-handle-race.
	if err := db.CreateCollection(ctx, name); err != nil {
		// NamespaceExists / already exists is fine (race or prior run).
		if isNamespaceExistsErr(err) {
			zap.L().Info("collection exists", zap.String("collection", name))
			return false, nil
		}
		zap.L().Warn("createCollection failed", zap.String("collection", name), zap.Error(err))
		return false, err
	}
	zap.L().Info("created collection", zap.String("collection", name))
	return true, nil
}

/* ------------------------------ validators ------------------------------- */

func setValidator(ctx context.Context, db *mongo.Database, name string, validator bson.M) error {
	cmd := bson.D{
		{Key: "collMod", Value: name},
		{Key: "validator", Value: validator},
		{Key: "validationLevel", Value: "moderate"},
		{Key: "validationAction", Value: "error"},
	}
	var out bson.M
	if err := db.RunCommand(ctx, cmd).Decode(&out); err != nil {
		return err
	}
	zap.L().Info("validator ensured", zap.String("collection", name))
	return nil
}

/* ------------------------- error helpers ------------------------- */

func isNamespaceExistsErr(err error) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && (ce.Code == 48 || strings.Contains(strings.ToLower(ce.Message), "already exists")) {
		return true
	}
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "already exists") || strings.Contains(s, "namespace exists")
}

func isNoSuchCommand(err error) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && (ce.Code == 59 || strings.Contains(strings.ToLower(ce.Message), "no such command")) {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "no such command")
}

func isNotImplemented(err error) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && (ce.Code == 115 ||
		strings.Contains(strings.ToLower(ce.Message), "not implemented") ||
		strings.Contains(strings.ToLower(ce.Message), "not supported")) {
		return true
	}
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "not implemented") || strings.Contains(s, "not supported")
}

/* ------------------------- JSON-Schema docs ---------------------- */

func enumOf(values []string) bson.A {
	out := bson.A{}
	for _, v := range values {
		out = append(out, v)
	}
	return out
}

// nonBlank matches strings containing at least one non-whitespace char.
func nonBlank() bson.M {
	return bson.M{"bsonType": "string", "minLength": 1, "pattern": `.*\S.*`}
}

func usersSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"email", "password_hash", "full_name", "role", "status"},
			"properties": bson.M{
				"email":         nonBlank(),
				"password_hash": nonBlank(),
				"full_name":     nonBlank(),
				"role":          bson.M{"enum": enumOf(models.Roles)},
				"status":        bson.M{"enum": bson.A{"active", "disabled"}},
			},
		},
	}
}

func customersSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"name", "name_ci", "phone"},
			"properties": bson.M{
				"name":    nonBlank(),
				"name_ci": nonBlank(),
				"phone":   nonBlank(),
				"email":   bson.M{"bsonType": bson.A{"string", "null"}},
				"address": bson.M{"bsonType": bson.A{"string", "null"}},
			},
		},
	}
}

func repairsSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"repair_id", "customer_id", "device_type", "brand", "model", "status", "cost", "tasks"},
			"properties": bson.M{
				"repair_id":   nonBlank(),
				"customer_id": bson.M{"bsonType": "objectId"},
				"device_type": nonBlank(),
				"brand":       nonBlank(),
				"model":       nonBlank(),
				"status":      bson.M{"enum": enumOf(models.RepairStatuses)},
				"cost":        bson.M{"bsonType": bson.A{"double", "int", "long", "decimal"}, "minimum": 0},
				"tasks": bson.M{
					"bsonType": "array",
					"minItems": 1,
					"items":    bson.M{"bsonType": "string"},
				},
				"technician_id": bson.M{"bsonType": bson.A{"objectId", "null"}},
			},
		},
	}
}

func productsSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"product_id", "name", "name_ci", "category", "quantity", "price", "supplier"},
			"properties": bson.M{
				"product_id":  nonBlank(),
				"name":        nonBlank(),
				"name_ci":     nonBlank(),
				"category":    nonBlank(),
				"category_ci": nonBlank(),
				"quantity":    bson.M{"bsonType": bson.A{"int", "long"}, "minimum": 0},
				"price":       bson.M{"bsonType": bson.A{"double", "int", "long", "decimal"}, "minimum": 0},
				"supplier":    nonBlank(),
			},
		},
	}
}

func techniciansSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"tech_id", "name", "name_ci", "specialization", "availability", "phone"},
			"properties": bson.M{
				"tech_id": nonBlank(),
				"name":    nonBlank(),
				"name_ci": nonBlank(),
				"specialization": bson.M{
					"bsonType": "array",
					"minItems": 1,
					"items":    bson.M{"bsonType": "string"},
				},
				"availability": bson.M{"bsonType": "bool"},
				"email":        bson.M{"bsonType": bson.A{"string", "null"}},
				"phone":        nonBlank(),
			},
		},
	}
}
