// internal/app/features/customers/handler_test.go
package customers

import (
	"encoding/json"
	"net/http"
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"
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

func TestServeList(t *testing.T) {
	h, fx := newTestHandler(t)
	ctx := testutil.TestContext(t)

	fx.CreateCustomer(ctx, "José Martins")
	fx.CreateCustomer(ctx, "Ana Lopez")

	t.Run("lists everything", func(t *testing.T) {
		rec := testutil.NewRecorder()
		h.ServeList(rec, testutil.NewAuthenticatedRequest("GET", "/customers", testutil.StaffUser()))
		rec.AssertStatus(t, http.StatusOK)

		var got []models.Customer
		decodeData(t, rec.BodyString(), &got)
		if len(got) != 2 {
			t.Fatalf("got %d customers, want 2", len(got))
		}
	})

	t.Run("name prefix search", func(t *testing.T) {
		rec := testutil.NewRecorder()
		h.ServeList(rec, testutil.NewAuthenticatedRequest("GET", "/customers?name=jose", testutil.StaffUser()))
		rec.AssertStatus(t, http.StatusOK)

		var got []models.Customer
		decodeData(t, rec.BodyString(), &got)
		if len(got) != 1 || got[0].Name != "José Martins" {
			t.Fatalf("got %+v", got)
		}
	})

	t.Run("blank name short-circuits to empty list", func(t *testing.T) {
		rec := testutil.NewRecorder()
		h.ServeList(rec, testutil.NewAuthenticatedRequest("GET", "/customers?name=", testutil.StaffUser()))
		rec.AssertStatus(t, http.StatusOK)

		var got []models.Customer
		decodeData(t, rec.BodyString(), &got)
		if len(got) != 0 {
			t.Fatalf("got %+v, want empty list", got)
		}
	})

	t.Run("paging", func(t *testing.T) {
		rec := testutil.NewRecorder()
		h.ServeList(rec, testutil.NewAuthenticatedRequest("GET", "/customers?limit=1", testutil.StaffUser()))
		rec.AssertStatus(t, http.StatusOK)

		var got []models.Customer
		decodeData(t, rec.BodyString(), &got)
		if len(got) != 1 {
			t.Fatalf("got %d customers, want 1", len(got))
		}
	})
}

func TestServeGet(t *testing.T) {
	h, fx := newTestHandler(t)
	ctx := testutil.TestContext(t)

	c := fx.CreateCustomer(ctx, "Ana Martins")

	t.Run("found", func(t *testing.T) {
		r := testutil.NewAuthenticatedRequest("GET", "/customers/"+c.ID.Hex(), testutil.StaffUser())
		r = testutil.WithChiURLParam(r, "id", c.ID.Hex())
		rec := testutil.NewRecorder()
		h.ServeGet(rec, r)
		rec.AssertStatus(t, http.StatusOK)
		rec.AssertContains(t, "Ana Martins")
	})

	t.Run("unknown id is 404", func(t *testing.T) {
		id := primitive.NewObjectID().Hex()
		r := testutil.NewAuthenticatedRequest("GET", "/customers/"+id, testutil.StaffUser())
		r = testutil.WithChiURLParam(r, "id", id)
		rec := testutil.NewRecorder()
		h.ServeGet(rec, r)
		rec.AssertStatus(t, http.StatusNotFound)
	})

	t.Run("malformed id is 400", func(t *testing.T) {
		r := testutil.NewAuthenticatedRequest("GET", "/customers/nope", testutil.StaffUser())
		r = testutil.WithChiURLParam(r, "id", "nope")
		rec := testutil.NewRecorder()
		h.ServeGet(rec, r)
		rec.AssertStatus(t, http.StatusBadRequest)
	})
}

func TestServeCreate(t *testing.T) {
	h, _ := newTestHandler(t)

	t.Run("valid body is 201", func(t *testing.T) {
		body := `{"name":"Ana Martins","phone":"555-0100","email":"ana@example.com","address":"1 Main St"}`
		rec := testutil.NewRecorder()
		h.ServeCreate(rec, testutil.NewAuthenticatedJSONRequest("POST", "/customers", body, testutil.StaffUser()))
		rec.AssertStatus(t, http.StatusCreated)

		var got models.Customer
		decodeData(t, rec.BodyString(), &got)
		if got.ID.IsZero() {
			t.Error("created customer has no ID")
		}
		if got.NameCI != "ana martins" {
			t.Errorf("NameCI = %q", got.NameCI)
		}
	})

	t.Run("validation failure is 422 with rule list", func(t *testing.T) {
		rec := testutil.NewRecorder()
		h.ServeCreate(rec, testutil.NewAuthenticatedJSONRequest("POST", "/customers", `{"email":"bad"}`, testutil.StaffUser()))
		rec.AssertStatus(t, http.StatusUnprocessableEntity)
		rec.AssertContains(t, "name is required")
		rec.AssertContains(t, "phone is required")
	})

	t.Run("unknown field is 400", func(t *testing.T) {
		rec := testutil.NewRecorder()
		h.ServeCreate(rec, testutil.NewAuthenticatedJSONRequest("POST", "/customers", `{"name":"x","bogus":1}`, testutil.StaffUser()))
		rec.AssertStatus(t, http.StatusBadRequest)
	})
}

func TestServeUpdate(t *testing.T) {
	h, fx := newTestHandler(t)
	ctx := testutil.TestContext(t)

	c := fx.CreateCustomer(ctx, "Ana Martins")

	t.Run("partial update", func(t *testing.T) {
		r := testutil.NewAuthenticatedJSONRequest("PATCH", "/customers/"+c.ID.Hex(), `{"phone":"555-0222"}`, testutil.StaffUser())
		r = testutil.WithChiURLParam(r, "id", c.ID.Hex())
		rec := testutil.NewRecorder()
		h.ServeUpdate(rec, r)
		rec.AssertStatus(t, http.StatusOK)

		var got models.Customer
		decodeData(t, rec.BodyString(), &got)
		if got.Phone != "555-0222" {
			t.Errorf("Phone = %q", got.Phone)
		}
		if got.Name != "Ana Martins" {
			t.Errorf("Name changed: %q", got.Name)
		}
	})

	t.Run("unknown id is 404", func(t *testing.T) {
		id := primitive.NewObjectID().Hex()
		r := testutil.NewAuthenticatedJSONRequest("PATCH", "/customers/"+id, `{"phone":"555-0222"}`, testutil.StaffUser())
		r = testutil.WithChiURLParam(r, "id", id)
		rec := testutil.NewRecorder()
		h.ServeUpdate(rec, r)
		rec.AssertStatus(t, http.StatusNotFound)
	})
}

func TestServeDelete(t *testing.T) {
	h, fx := newTestHandler(t)
	ctx := testutil.TestContext(t)

	c := fx.CreateCustomer(ctx, "To Delete")

	t.Run("existing record", func(t *testing.T) {
		r := testutil.NewAuthenticatedRequest("DELETE", "/customers/"+c.ID.Hex(), testutil.AdminUser())
		r = testutil.WithChiURLParam(r, "id", c.ID.Hex())
		rec := testutil.NewRecorder()
		h.ServeDelete(rec, r)
		rec.AssertStatus(t, http.StatusOK)
	})

	t.Run("already gone is 404", func(t *testing.T) {
		r := testutil.NewAuthenticatedRequest("DELETE", "/customers/"+c.ID.Hex(), testutil.AdminUser())
		r = testutil.WithChiURLParam(r, "id", c.ID.Hex())
		rec := testutil.NewRecorder()
		h.ServeDelete(rec, r)
		rec.AssertStatus(t, http.StatusNotFound)
	})
}

// Routes-level access control: the middleware stack, not the handlers,
// enforces the permission matrix.
func TestRoutesAccessControl(t *testing.T) {
	h, fx := newTestHandler(t)
	ctx := testutil.TestContext(t)
	router := Routes(h)

	c := fx.CreateCustomer(ctx, "Ana Martins")

	tests := []struct {
		name   string
		method string
		target string
		body   string
		user   *testutil.TestUser // nil = anonymous
		want   int
	}{
		{"anonymous read", "GET", "/", "", nil, http.StatusUnauthorized},
		{"staff read", "GET", "/", "", ptr(testutil.StaffUser()), http.StatusOK},
		{"staff create", "POST", "/", `{"name":"B","phone":"555-0101"}`, ptr(testutil.StaffUser()), http.StatusCreated},
		{"anonymous create", "POST", "/", `{"name":"B","phone":"555-0101"}`, nil, http.StatusUnauthorized},
		{"staff delete forbidden", "DELETE", "/" + c.ID.Hex(), "", ptr(testutil.StaffUser()), http.StatusForbidden},
		{"admin delete", "DELETE", "/" + c.ID.Hex(), "", ptr(testutil.AdminUser()), http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var r *http.Request
			if tt.body != "" {
				r = testutil.NewJSONRequest(tt.method, tt.target, tt.body)
			} else {
				r = testutil.NewRequest(tt.method, tt.target)
			}
			if tt.user != nil {
				r = testutil.WithUser(r, *tt.user)
			}
			rec := testutil.NewRecorder()
			router.ServeHTTP(rec.ResponseRecorder, r)
			rec.AssertStatus(t, tt.want)
		})
	}
}

func ptr(u testutil.TestUser) *testutil.TestUser { return &u }
