// internal/app/store/customers/customerstore_test.go
package customerstore

import (
	"errors"
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/fixtrack/fixtrack/internal/app/system/inputval"
	"github.com/fixtrack/fixtrack/internal/domain/models"
	"github.com/fixtrack/fixtrack/internal/testutil"
)

func TestAdd(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.TestContext(t)
	store := New(db)

	t.Run("normalizes and stamps", func(t *testing.T) {
		c, err := store.Add(ctx, models.Customer{
			Name:    "  José Martins  ",
			Phone:   " 555-0100 ",
			Email:   "Jose@Example.COM",
			Address: "<b>1 Main St</b>",
		})
		if err != nil {
			t.Fatalf("Add: %v", err)
		}
		if c.ID.IsZero() {
			t.Error("ID not set")
		}
		if c.Name != "José Martins" {
			t.Errorf("Name = %q", c.Name)
		}
		if c.NameCI != "jose martins" {
			t.Errorf("NameCI = %q", c.NameCI)
		}
		if c.Email != "jose@example.com" {
			t.Errorf("Email = %q", c.Email)
		}
		if c.Address != "1 Main St" {
			t.Errorf("Address = %q, markup should be stripped", c.Address)
		}
		if c.CreatedAt.IsZero() || c.UpdatedAt.IsZero() {
			t.Error("timestamps not stamped")
		}

		// Stored record matches the returned one.
		got, err := store.GetByID(ctx, c.ID)
		if err != nil {
			t.Fatalf("GetByID: %v", err)
		}
		if got.Name != c.Name || got.NameCI != c.NameCI {
			t.Errorf("stored %+v != returned %+v", got, c)
		}
	})

	t.Run("invalid record writes nothing", func(t *testing.T) {
		_, err := store.Add(ctx, models.Customer{Email: "bad"})
		if inputval.AsValidationError(err) == nil {
			t.Fatalf("want ValidationError, got %v", err)
		}

		list, err := store.List(ctx)
		if err != nil {
			t.Fatalf("List: %v", err)
		}
		for _, c := range list {
			if c.Email == "bad" {
				t.Fatal("invalid record was written")
			}
		}
	})
}

func TestUpdate(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.TestContext(t)
	store := New(db)
	fx := testutil.NewFixtures(t, db)

	existing := fx.CreateCustomer(ctx, "Ana Martins")

	t.Run("partial update keeps other fields", func(t *testing.T) {
		phone := "555-0222"
		got, err := store.Update(ctx, existing.ID, Update{Phone: &phone})
		if err != nil {
			t.Fatalf("Update: %v", err)
		}
		if got.Phone != "555-0222" {
			t.Errorf("Phone = %q", got.Phone)
		}
		if got.Name != existing.Name {
			t.Errorf("Name changed: %q", got.Name)
		}
		if !got.UpdatedAt.After(existing.UpdatedAt) {
			t.Error("UpdatedAt not refreshed")
		}
	})

	t.Run("name update refreshes name_ci", func(t *testing.T) {
		name := "Zoë Quinn"
		got, err := store.Update(ctx, existing.ID, Update{Name: &name})
		if err != nil {
			t.Fatalf("Update: %v", err)
		}
		if got.NameCI != "zoe quinn" {
			t.Errorf("NameCI = %q", got.NameCI)
		}
	})

	t.Run("merged record is validated", func(t *testing.T) {
		blank := "   "
		_, err := store.Update(ctx, existing.ID, Update{Name: &blank})
		if inputval.AsValidationError(err) == nil {
			t.Fatalf("want ValidationError, got %v", err)
		}
	})

	t.Run("unknown id", func(t *testing.T) {
		phone := "555-0001"
		_, err := store.Update(ctx, primitive.NewObjectID(), Update{Phone: &phone})
		if !errors.Is(err, ErrNotFound) {
			t.Fatalf("want ErrNotFound, got %v", err)
		}
	})
}

func TestSearchByName(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.TestContext(t)
	store := New(db)
	fx := testutil.NewFixtures(t, db)

	fx.CreateCustomer(ctx, "José Martins")
	fx.CreateCustomer(ctx, "Josephine Baker")
	fx.CreateCustomer(ctx, "Ana Martins")

	t.Run("prefix match is case and accent insensitive", func(t *testing.T) {
		got, err := store.SearchByName(ctx, "jose")
		if err != nil {
			t.Fatalf("SearchByName: %v", err)
		}
		if len(got) != 2 {
			t.Fatalf("got %d customers, want 2: %+v", len(got), got)
		}
	})

	t.Run("no match returns empty slice", func(t *testing.T) {
		got, err := store.SearchByName(ctx, "zzz")
		if err != nil {
			t.Fatalf("SearchByName: %v", err)
		}
		if got == nil || len(got) != 0 {
			t.Fatalf("got %v, want empty non-nil slice", got)
		}
	})
}

func TestListPaging(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.TestContext(t)
	store := New(db)
	fx := testutil.NewFixtures(t, db)

	for i := 0; i < 5; i++ {
		fx.CreateCustomer(ctx, "Customer")
	}

	got, err := store.List(ctx, options.Find().SetLimit(2).SetSkip(1))
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d customers, want 2", len(got))
	}
}

func TestDelete(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.TestContext(t)
	store := New(db)
	fx := testutil.NewFixtures(t, db)

	c := fx.CreateCustomer(ctx, "To Delete")

	n, err := store.Delete(ctx, c.ID)
	if err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if n != 1 {
		t.Fatalf("deleted %d, want 1", n)
	}

	if _, err := store.GetByID(ctx, c.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("want ErrNotFound after delete, got %v", err)
	}

	// Deleting again is a no-op.
	n, err = store.Delete(ctx, c.ID)
	if err != nil || n != 0 {
		t.Fatalf("second delete: n=%d err=%v", n, err)
	}
}
