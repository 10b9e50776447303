// internal/app/system/indexes/indexes.go
package indexes

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

/*
EnsureAll is called at startup. Each ensure* function is idempotent.
We aggregate errors so any problem is visible and startup can fail fast.

The unique indexes on repair_id, product_id, and tech_id back the
re-mint-and-retry policy in the stores: secondary IDs are minted
client-side, and a collision surfaces as a duplicate-key error instead
of a silent second document with the same printed ID.
*/
func EnsureAll(ctx context.Context, db *mongo.Database) error {
	var problems []string

	if err := ensureUsers(ctx, db); err != nil {
		problems = append(problems, "users: "+err.Error())
	}
	if err := ensureCustomers(ctx, db); err != nil {
		problems = append(problems, "customers: "+err.Error())
	}
	if err := ensureRepairs(ctx, db); err != nil {
		problems = append(problems, "repairs: "+err.Error())
	}
	if err := ensureProducts(ctx, db); err != nil {
		problems = append(problems, "products: "+err.Error())
	}
	if err := ensureTechnicians(ctx, db); err != nil {
		problems = append(problems, "technicians: "+err.Error())
	}
	if err := ensureAuditEvents(ctx, db); err != nil {
		problems = append(problems, "audit_events: "+err.Error())
	}

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

/* -------------------------------------------------------------------------- */
/* Core helper: reconcile a set of desired indexes for one collection         */
/* -------------------------------------------------------------------------- */

type existingIndex struct {
	Name   string `bson:"name"`
	Key    bson.D `bson:"key"`
	Unique *bool  `bson:"unique,omitempty"`
}

func keySig(keys bson.D) string {
	parts := make([]string, 0, len(keys))
	for _, kv := range keys {
		parts = append(parts, fmt.Sprintf("%s:%v", kv.Key, kv.Value))
	}
	return strings.Join(parts, ", ")
}

func sameBoolPtr(a, b *bool) bool {
	av := a != nil && *a
	bv := b != nil && *b
	return av == bv
}

func loadExisting(ctx context.Context, coll *mongo.Collection) (map[string]existingIndex, error) {
	out := map[string]existingIndex{} // key signature -> index
	cur, err := coll.Indexes().List(ctx)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	for cur.Next(ctx) {
		var idx existingIndex
		if err := cur.Decode(&idx); err != nil {
			zap.L().Warn("failed to decode existing index",
				zap.String("collection", coll.Name()),
				zap.Error(err))
			continue
		}
		out[keySig(idx.Key)] = idx
	}
	return out, cur.Err()
}

// ensureIndexSet reconciles the desired indexes against what exists:
// matching key+options indexes are reused, an options mismatch (e.g.
// upgrading to unique) drops and recreates, and missing indexes are
// created. Errors are aggregated per index.
func ensureIndexSet(ctx context.Context, coll *mongo.Collection, desired []mongo.IndexModel) error {
	existing, err := loadExisting(ctx, coll)
	if err != nil {
		// Collection may not exist yet; creation below will make it.
		existing = map[string]existingIndex{}
	}

	var errs []string
	for _, m := range desired {
		var name string
		var unique *bool
		if m.Options != nil {
			if m.Options.Name != nil {
				name = *m.Options.Name
			}
			unique = m.Options.Unique
		}
		sig := keySig(m.Keys.(bson.D))

		if ex, ok := existing[sig]; ok {
			if sameBoolPtr(unique, ex.Unique) {
				continue // same keys, same options: reuse
			}
			if _, err := coll.Indexes().DropOne(ctx, ex.Name); err != nil {
				errs = append(errs, fmt.Sprintf("%s(%s): drop failed: %v", coll.Name(), name, err))
				continue
			}
			zap.L().Info("index options changed; recreating",
				zap.String("collection", coll.Name()),
				zap.String("name", name),
				zap.String("keys", sig))
		}

		if _, err := coll.Indexes().CreateOne(ctx, m); err != nil {
			if isDuplicateKeyErr(err) && unique != nil && *unique {
				errs = append(errs, fmt.Sprintf("%s(%s): cannot create unique index (duplicates present)", coll.Name(), name))
			} else {
				errs = append(errs, fmt.Sprintf("%s(%s): %v", coll.Name(), name, err))
			}
			continue
		}
		zap.L().Info("index ensured",
			zap.String("collection", coll.Name()),
			zap.String("name", name),
			zap.String("keys", sig),
			zap.Bool("unique", unique != nil && *unique))
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

// Best-effort duplicate-detector (works cross-vendors)
func isDuplicateKeyErr(err error) bool {
	if err == nil {
		return false
	}
	var we mongo.WriteException
	if errors.As(err, &we) {
		for _, e := range we.WriteErrors {
			if e.Code == 11000 { // E11000 duplicate key error index
				return true
			}
		}
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && ce.Code == 11000 {
		return true
	}
	s := err.Error()
	return strings.Contains(s, "E11000") || strings.Contains(strings.ToLower(s), "duplicate key")
}

/* ----------------------------- per collection ----------------------------- */

func uniqueIdx(name string, keys bson.D) mongo.IndexModel {
	return mongo.IndexModel{
		Keys:    keys,
		Options: options.Index().SetName(name).SetUnique(true),
	}
}

func idx(name string, keys bson.D) mongo.IndexModel {
	return mongo.IndexModel{
		Keys:    keys,
		Options: options.Index().SetName(name),
	}
}

func ensureUsers(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("users"), []mongo.IndexModel{
		uniqueIdx("uniq_email", bson.D{{Key: "email", Value: 1}}),
		idx("by_role", bson.D{{Key: "role", Value: 1}}),
	})
}

func ensureCustomers(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("customers"), []mongo.IndexModel{
		idx("by_name_ci", bson.D{{Key: "name_ci", Value: 1}}),
		idx("by_phone", bson.D{{Key: "phone", Value: 1}}),
	})
}

func ensureRepairs(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("repairs"), []mongo.IndexModel{
		uniqueIdx("uniq_repair_id", bson.D{{Key: "repair_id", Value: 1}}),
		idx("by_status", bson.D{{Key: "status", Value: 1}}),
		idx("by_customer", bson.D{{Key: "customer_id", Value: 1}}),
		idx("by_technician", bson.D{{Key: "technician_id", Value: 1}}),
	})
}

func ensureProducts(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("products"), []mongo.IndexModel{
		uniqueIdx("uniq_product_id", bson.D{{Key: "product_id", Value: 1}}),
		idx("by_category_ci", bson.D{{Key: "category_ci", Value: 1}}),
	})
}

func ensureTechnicians(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("technicians"), []mongo.IndexModel{
		uniqueIdx("uniq_tech_id", bson.D{{Key: "tech_id", Value: 1}}),
		idx("by_availability", bson.D{{Key: "availability", Value: 1}}),
	})
}

func ensureAuditEvents(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("audit_events"), []mongo.IndexModel{
		idx("by_category_created", bson.D{{Key: "category", Value: 1}, {Key: "created_at", Value: -1}}),
		idx("by_actor", bson.D{{Key: "actor_id", Value: 1}}),
	})
}
