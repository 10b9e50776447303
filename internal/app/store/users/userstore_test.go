// internal/app/store/users/userstore_test.go
package userstore

import (
	"errors"
	"testing"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/fixtrack/fixtrack/internal/app/system/inputval"
	"github.com/fixtrack/fixtrack/internal/domain/models"
	"github.com/fixtrack/fixtrack/internal/testutil"
)

func uniqueEmailIndex() mongo.IndexModel {
	return mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	}
}

func TestCreate(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.TestContext(t)
	store := New(db, zap.NewNop())

	t.Run("normalizes email and hashes password", func(t *testing.T) {
		u, err := store.Create(ctx, "Ana@Example.COM", "hunter2!", "Ana Martins", models.RoleStaff)
		if err != nil {
			t.Fatalf("Create: %v", err)
		}
		if u.Email != "ana@example.com" {
			t.Errorf("Email = %q", u.Email)
		}
		if u.PasswordHash == "" || u.PasswordHash == "hunter2!" {
			t.Error("password must be stored hashed")
		}
		if u.Status != "active" {
			t.Errorf("Status = %q", u.Status)
		}
	})

	t.Run("duplicate email", func(t *testing.T) {
		// The unique index backs this in production; create it here so
		// the second insert collides.
		_, err := db.Collection("users").Indexes().CreateOne(ctx, uniqueEmailIndex())
		if err != nil {
			t.Fatalf("index: %v", err)
		}

		if _, err := store.Create(ctx, "dup@example.com", "pw", "First", models.RoleStaff); err != nil {
			t.Fatalf("first Create: %v", err)
		}
		_, err = store.Create(ctx, "DUP@example.com", "pw", "Second", models.RoleStaff)
		if !errors.Is(err, ErrDuplicateEmail) {
			t.Fatalf("want ErrDuplicateEmail, got %v", err)
		}
	})

	t.Run("missing password reported with other violations", func(t *testing.T) {
		_, err := store.Create(ctx, "bad-email", "", "", models.RoleStaff)
		verr := inputval.AsValidationError(err)
		if verr == nil {
			t.Fatalf("want ValidationError, got %v", err)
		}
		if len(verr.Errors) != 3 {
			t.Fatalf("got %d errors, want 3: %v", len(verr.Errors), verr.Errors)
		}
	})

	t.Run("unknown role rejected", func(t *testing.T) {
		_, err := store.Create(ctx, "x@example.com", "pw", "X", "superuser")
		if inputval.AsValidationError(err) == nil {
			t.Fatalf("want ValidationError, got %v", err)
		}
	})
}

func TestAuthenticate(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.TestContext(t)
	store := New(db, zap.NewNop())

	created, err := store.Create(ctx, "ana@example.com", "correct horse", "Ana", models.RoleStaff)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	t.Run("correct credentials", func(t *testing.T) {
		u, err := store.Authenticate(ctx, "ANA@example.com", "correct horse")
		if err != nil {
			t.Fatalf("Authenticate: %v", err)
		}
		if u.ID != created.ID {
			t.Error("wrong user returned")
		}
	})

	t.Run("wrong password and unknown email are indistinguishable", func(t *testing.T) {
		_, badPW := store.Authenticate(ctx, "ana@example.com", "wrong")
		_, badEmail := store.Authenticate(ctx, "nobody@example.com", "whatever")
		if !errors.Is(badPW, ErrBadCredentials) || !errors.Is(badEmail, ErrBadCredentials) {
			t.Fatalf("want ErrBadCredentials for both, got %v / %v", badPW, badEmail)
		}
	})

	t.Run("disabled account fails like bad credentials", func(t *testing.T) {
		_, err := db.Collection("users").UpdateByID(ctx, created.ID,
			bson.M{"$set": bson.M{"status": "disabled"}})
		if err != nil {
			t.Fatalf("disable: %v", err)
		}
		_, err = store.Authenticate(ctx, "ana@example.com", "correct horse")
		if !errors.Is(err, ErrBadCredentials) {
			t.Fatalf("want ErrBadCredentials, got %v", err)
		}
	})
}

func TestSetRole(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.TestContext(t)
	store := New(db, zap.NewNop())

	u, err := store.Create(ctx, "ana@example.com", "pw", "Ana", models.RoleStaff)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := store.SetRole(ctx, u.ID, " Admin "); err != nil {
		t.Fatalf("SetRole: %v", err)
	}
	got, err := store.GetByID(ctx, u.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Role != models.RoleAdmin {
		t.Errorf("Role = %q", got.Role)
	}

	if err := store.SetRole(ctx, u.ID, "superuser"); inputval.AsValidationError(err) == nil {
		t.Fatalf("want ValidationError, got %v", err)
	}
	if err := store.SetRole(ctx, primitive.NewObjectID(), models.RoleStaff); !errors.Is(err, ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}

func TestEnsureAdmin(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.TestContext(t)
	store := New(db, zap.NewNop())

	t.Run("missing account is not an error", func(t *testing.T) {
		if err := store.EnsureAdmin(ctx, "nobody@example.com"); err != nil {
			t.Fatalf("EnsureAdmin: %v", err)
		}
	})

	t.Run("existing account promoted", func(t *testing.T) {
		u, err := store.Create(ctx, "boss@example.com", "pw", "Boss", models.RoleStaff)
		if err != nil {
			t.Fatalf("Create: %v", err)
		}
		if err := store.EnsureAdmin(ctx, "Boss@Example.com"); err != nil {
			t.Fatalf("EnsureAdmin: %v", err)
		}
		got, err := store.GetByID(ctx, u.ID)
		if err != nil {
			t.Fatalf("GetByID: %v", err)
		}
		if got.Role != models.RoleAdmin {
			t.Errorf("Role = %q, want admin", got.Role)
		}
	})

	t.Run("blank email is a no-op", func(t *testing.T) {
		if err := store.EnsureAdmin(ctx, ""); err != nil {
			t.Fatalf("EnsureAdmin: %v", err)
		}
	})
}

func TestFetcher(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.TestContext(t)
	store := New(db, zap.NewNop())
	fetcher := NewFetcher(db)

	u, err := store.Create(ctx, "ana@example.com", "pw", "Ana Martins", models.RoleStaff)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	t.Run("active user", func(t *testing.T) {
		su := fetcher.FetchUser(ctx, u.ID.Hex())
		if su == nil {
			t.Fatal("FetchUser returned nil for an active user")
		}
		if su.Role != models.RoleStaff || su.Name != "Ana Martins" {
			t.Errorf("got %+v", su)
		}
	})

	t.Run("disabled user", func(t *testing.T) {
		if _, err := db.Collection("users").UpdateByID(ctx, u.ID,
			bson.M{"$set": bson.M{"status": "disabled"}}); err != nil {
			t.Fatalf("disable: %v", err)
		}
		if su := fetcher.FetchUser(ctx, u.ID.Hex()); su != nil {
			t.Fatalf("disabled user should fetch as nil, got %+v", su)
		}
	})

	t.Run("unknown and malformed IDs", func(t *testing.T) {
		if su := fetcher.FetchUser(ctx, primitive.NewObjectID().Hex()); su != nil {
			t.Error("unknown ID should fetch as nil")
		}
		if su := fetcher.FetchUser(ctx, "garbage"); su != nil {
			t.Error("malformed ID should fetch as nil")
		}
	})
}
