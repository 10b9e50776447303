// internal/app/system/authz/authz_test.go
package authz

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/fixtrack/fixtrack/internal/app/system/auth"
)

func requestWithUser(id, role string) *http.Request {
	r := httptest.NewRequest("GET", "/customers", nil)
	return auth.WithTestUser(r, &auth.SessionUser{
		ID:   id,
		Name: "Test User",
		Role: role,
	})
}

func TestUserCtx(t *testing.T) {
	t.Run("no user in context", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/customers", nil)
		role, name, id, ok := UserCtx(r)
		if ok {
			t.Fatal("ok should be false without a user")
		}
		if role != "visitor" || name != "" || !id.IsZero() {
			t.Errorf("got (%q, %q, %v), want visitor defaults", role, name, id)
		}
	})

	t.Run("valid user", func(t *testing.T) {
		oid := primitive.NewObjectID()
		role, name, id, ok := UserCtx(requestWithUser(oid.Hex(), "Admin"))
		if !ok {
			t.Fatal("ok should be true")
		}
		if role != "admin" {
			t.Errorf("role = %q, want lowercased \"admin\"", role)
		}
		if name != "Test User" {
			t.Errorf("name = %q", name)
		}
		if id != oid {
			t.Errorf("id = %v, want %v", id, oid)
		}
	})

	t.Run("malformed user ID fails closed", func(t *testing.T) {
		role, _, id, ok := UserCtx(requestWithUser("not-a-hex-id", "admin"))
		if ok {
			t.Fatal("ok should be false for a malformed ID")
		}
		if role != "visitor" || !id.IsZero() {
			t.Errorf("got (%q, %v), want visitor defaults", role, id)
		}
	})
}

func TestHasAnyRole(t *testing.T) {
	r := requestWithUser(primitive.NewObjectID().Hex(), "staff")

	if !HasAnyRole(r, "staff", "admin") {
		t.Error("staff should match [staff admin]")
	}
	if HasAnyRole(r, "admin") {
		t.Error("staff should not match [admin]")
	}
	if HasAnyRole(httptest.NewRequest("GET", "/", nil), "staff") {
		t.Error("no user should never match")
	}
}

func TestIsAdminIsStaff(t *testing.T) {
	admin := requestWithUser(primitive.NewObjectID().Hex(), "admin")
	staff := requestWithUser(primitive.NewObjectID().Hex(), "staff")

	if !IsAdmin(admin) || IsAdmin(staff) {
		t.Error("IsAdmin wrong")
	}
	// Admins are not implicitly staff.
	if !IsStaff(staff) || IsStaff(admin) {
		t.Error("IsStaff wrong")
	}
}
