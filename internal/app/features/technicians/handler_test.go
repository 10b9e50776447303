// internal/app/features/technicians/handler_test.go
package technicians

import (
	"encoding/json"
	"net/http"
	"testing"

	"go.uber.org/zap"

	"github.com/fixtrack/fixtrack/internal/domain/models"
	"github.com/fixtrack/fixtrack/internal/testutil"
)

func newTestHandler(t *testing.T) (*Handler, *testutil.Fixtures) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	return NewHandler(db, nil, zap.NewNop()), testutil.NewFixtures(t, db)
}

func decodeData(t *testing.T, body string, dst any) {
	t.Helper()
	var env struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal([]byte(body), &env); err != nil {
		t.Fatalf("response is not an envelope: %v\n%s", err, body)
	}
	if err := json.Unmarshal(env.Data, dst); err != nil {
		t.Fatalf("decoding data: %v\n%s", err, body)
	}
}

func TestServeListAvailabilityFilter(t *testing.T) {
	h, fx := newTestHandler(t)
	ctx := testutil.TestContext(t)

	fx.CreateTechnician(ctx, "On Duty", true)
	fx.CreateTechnician(ctx, "Off Duty", false)

	list := func(t *testing.T, target string) *testutil.ResponseRecorder {
		t.Helper()
		rec := testutil.NewRecorder()
		h.ServeList(rec, testutil.NewAuthenticatedRequest("GET", target, testutil.AdminUser()))
		return rec
	}

	t.Run("available only", func(t *testing.T) {
		rec := list(t, "/technicians?availability=true")
		rec.AssertStatus(t, http.StatusOK)

		var got []models.Technician
		decodeData(t, rec.BodyString(), &got)
		if len(got) != 1 || got[0].Name != "On Duty" {
			t.Fatalf("got %+v", got)
		}
	})

	t.Run("blank value short-circuits", func(t *testing.T) {
		rec := list(t, "/technicians?availability=")
		rec.AssertStatus(t, http.StatusOK)

		var got []models.Technician
		decodeData(t, rec.BodyString(), &got)
		if len(got) != 0 {
			t.Fatalf("got %+v, want empty list", got)
		}
	})

	t.Run("non-bool value is 400", func(t *testing.T) {
		rec := list(t, "/technicians?availability=maybe")
		rec.AssertStatus(t, http.StatusBadRequest)
	})
}

func TestServeCreateDefaultsAvailability(t *testing.T) {
	h, _ := newTestHandler(t)

	body := `{"name":"Kim Diaz","phone":"555-0199","specialization":["phones"]}`
	rec := testutil.NewRecorder()
	h.ServeCreate(rec, testutil.NewAuthenticatedJSONRequest("POST", "/technicians", body, testutil.AdminUser()))
	rec.AssertStatus(t, http.StatusCreated)

	var got models.Technician
	decodeData(t, rec.BodyString(), &got)
	if !got.Availability {
		t.Error("availability should default to true")
	}
	if got.TechID == "" {
		t.Error("tech_id not minted")
	}
}
