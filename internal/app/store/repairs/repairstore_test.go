// internal/app/store/repairs/repairstore_test.go
package repairstore

import (
	"errors"
	"regexp"
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/fixtrack/fixtrack/internal/app/system/inputval"
	"github.com/fixtrack/fixtrack/internal/domain/models"
	"github.com/fixtrack/fixtrack/internal/testutil"
)

func TestAdd(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.TestContext(t)
	store := New(db)
	fx := testutil.NewFixtures(t, db)

	customer := fx.CreateCustomer(ctx, "Ana Martins")

	t.Run("mints repair_id and defaults status", func(t *testing.T) {
		r, err := store.Add(ctx, models.Repair{
			CustomerID: customer.ID,
			DeviceType: "laptop",
			Brand:      "Acme",
			Model:      "A1",
			Cost:       120,
			Tasks:      []string{"<b>replace keyboard</b>", "  clean fans  "},
		})
		if err != nil {
			t.Fatalf("Add: %v", err)
		}
		if !regexp.MustCompile(`^[a-z]{3}[1-9][0-9]{3}$`).MatchString(r.RepairID) {
			t.Errorf("RepairID = %q", r.RepairID)
		}
		if r.Status != models.RepairPending {
			t.Errorf("Status = %q, want default %q", r.Status, models.RepairPending)
		}
		if len(r.Tasks) != 2 || r.Tasks[0] != "replace keyboard" || r.Tasks[1] != "clean fans" {
			t.Errorf("Tasks = %v, markup should be stripped", r.Tasks)
		}
		if r.TechnicianID != nil {
			t.Error("TechnicianID should start unassigned")
		}
	})

	t.Run("status is normalized", func(t *testing.T) {
		r, err := store.Add(ctx, models.Repair{
			CustomerID: customer.ID,
			DeviceType: "tablet",
			Brand:      "Acme",
			Model:      "T2",
			Status:     " In-Progress ",
			Tasks:      []string{"diagnose"},
		})
		if err != nil {
			t.Fatalf("Add: %v", err)
		}
		if r.Status != models.RepairInProgress {
			t.Errorf("Status = %q", r.Status)
		}
	})

	t.Run("invalid status rejected", func(t *testing.T) {
		_, err := store.Add(ctx, models.Repair{
			CustomerID: customer.ID,
			DeviceType: "tablet",
			Brand:      "Acme",
			Model:      "T2",
			Status:     "waiting",
			Tasks:      []string{"diagnose"},
		})
		if inputval.AsValidationError(err) == nil {
			t.Fatalf("want ValidationError, got %v", err)
		}
	})
}

func TestUpdate(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.TestContext(t)
	store := New(db)
	fx := testutil.NewFixtures(t, db)

	customer := fx.CreateCustomer(ctx, "Ana Martins")
	existing := fx.CreateRepair(ctx, customer.ID, models.RepairPending)

	t.Run("status transition", func(t *testing.T) {
		status := models.RepairCompleted
		got, err := store.Update(ctx, existing.ID, Update{Status: &status})
		if err != nil {
			t.Fatalf("Update: %v", err)
		}
		if got.Status != models.RepairCompleted {
			t.Errorf("Status = %q", got.Status)
		}
		if got.RepairID != existing.RepairID {
			t.Error("RepairID must not change on update")
		}
		if got.CustomerID != customer.ID {
			t.Error("CustomerID must not change on update")
		}
	})

	t.Run("assign and clear technician", func(t *testing.T) {
		techID := primitive.NewObjectID()
		got, err := store.Update(ctx, existing.ID, Update{TechnicianID: &techID})
		if err != nil {
			t.Fatalf("assign: %v", err)
		}
		if got.TechnicianID == nil || *got.TechnicianID != techID {
			t.Fatalf("TechnicianID = %v, want %v", got.TechnicianID, techID)
		}

		unassign := primitive.NilObjectID
		got, err = store.Update(ctx, existing.ID, Update{TechnicianID: &unassign})
		if err != nil {
			t.Fatalf("clear: %v", err)
		}
		if got.TechnicianID != nil {
			t.Fatalf("TechnicianID = %v, want nil after clearing", got.TechnicianID)
		}
	})

	t.Run("emptying tasks rejected", func(t *testing.T) {
		empty := []string{}
		_, err := store.Update(ctx, existing.ID, Update{Tasks: &empty})
		if inputval.AsValidationError(err) == nil {
			t.Fatalf("want ValidationError, got %v", err)
		}
	})

	t.Run("unknown id", func(t *testing.T) {
		status := models.RepairCompleted
		_, err := store.Update(ctx, primitive.NewObjectID(), Update{Status: &status})
		if !errors.Is(err, ErrNotFound) {
			t.Fatalf("want ErrNotFound, got %v", err)
		}
	})
}

func TestFilters(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.TestContext(t)
	store := New(db)
	fx := testutil.NewFixtures(t, db)

	ana := fx.CreateCustomer(ctx, "Ana")
	ben := fx.CreateCustomer(ctx, "Ben")
	fx.CreateRepair(ctx, ana.ID, models.RepairPending)
	fx.CreateRepair(ctx, ana.ID, models.RepairCompleted)
	fx.CreateRepair(ctx, ben.ID, models.RepairPending)

	t.Run("by status", func(t *testing.T) {
		got, err := store.ByStatus(ctx, "Pending") // normalized before matching
		if err != nil {
			t.Fatalf("ByStatus: %v", err)
		}
		if len(got) != 2 {
			t.Fatalf("got %d repairs, want 2", len(got))
		}
	})

	t.Run("by customer", func(t *testing.T) {
		got, err := store.ByCustomer(ctx, ana.ID)
		if err != nil {
			t.Fatalf("ByCustomer: %v", err)
		}
		if len(got) != 2 {
			t.Fatalf("got %d repairs, want 2", len(got))
		}
	})

	t.Run("no match returns empty slice", func(t *testing.T) {
		got, err := store.ByStatus(ctx, models.RepairInProgress)
		if err != nil {
			t.Fatalf("ByStatus: %v", err)
		}
		if got == nil || len(got) != 0 {
			t.Fatalf("got %v, want empty non-nil slice", got)
		}
	})
}
