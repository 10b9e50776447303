// internal/app/system/auth/auth_test.go
package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"
)

const testKey = "0123456789abcdef0123456789abcdef"

func newTestManager(t *testing.T) *SessionManager {
	t.Helper()
	m, err := NewSessionManager(testKey, "test-session", "", false, zap.NewNop())
	if err != nil {
		t.Fatalf("NewSessionManager: %v", err)
	}
	return m
}

func TestNewSessionManagerRejectsEmptyKey(t *testing.T) {
	if _, err := NewSessionManager("", "s", "", false, zap.NewNop()); err == nil {
		t.Fatal("expected an error for an empty session key")
	}
}

func TestSignInRoundTrip(t *testing.T) {
	m := newTestManager(t)
	user := &SessionUser{ID: "64b0c0ffee0ddf00dabad101", Name: "Ana", Email: "ana@example.com", Role: "staff"}

	// Sign in and capture the cookie.
	rec := httptest.NewRecorder()
	if err := m.SignIn(rec, httptest.NewRequest("POST", "/login", nil), user); err != nil {
		t.Fatalf("SignIn: %v", err)
	}
	cookies := rec.Result().Cookies()
	if len(cookies) == 0 {
		t.Fatal("SignIn set no cookie")
	}

	// Replay the cookie through the middleware; no fetcher installed, so
	// the session payload is used as-is.
	var got *SessionUser
	handler := m.LoadSessionUser(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = CurrentUser(r)
	}))

	r := httptest.NewRequest("GET", "/userinfo", nil)
	for _, c := range cookies {
		r.AddCookie(c)
	}
	handler.ServeHTTP(httptest.NewRecorder(), r)

	if got == nil {
		t.Fatal("no user loaded from session")
	}
	if got.ID != user.ID || got.Email != user.Email || got.Role != user.Role {
		t.Errorf("loaded user = %+v, want %+v", got, user)
	}
}

func TestSignOutClearsSession(t *testing.T) {
	m := newTestManager(t)
	user := &SessionUser{ID: "64b0c0ffee0ddf00dabad101", Role: "staff"}

	rec := httptest.NewRecorder()
	if err := m.SignIn(rec, httptest.NewRequest("POST", "/login", nil), user); err != nil {
		t.Fatalf("SignIn: %v", err)
	}
	signedIn := rec.Result().Cookies()

	rec = httptest.NewRecorder()
	r := httptest.NewRequest("POST", "/logout", nil)
	for _, c := range signedIn {
		r.AddCookie(c)
	}
	if err := m.SignOut(rec, r); err != nil {
		t.Fatalf("SignOut: %v", err)
	}

	for _, c := range rec.Result().Cookies() {
		if c.Name == "test-session" && c.MaxAge >= 0 {
			t.Errorf("logout cookie MaxAge = %d, want negative", c.MaxAge)
		}
	}
}

type fetcherFunc func(ctx context.Context, userID string) *SessionUser

func (f fetcherFunc) FetchUser(ctx context.Context, userID string) *SessionUser {
	return f(ctx, userID)
}

func TestLoadSessionUserRefetches(t *testing.T) {
	m := newTestManager(t)
	user := &SessionUser{ID: "64b0c0ffee0ddf00dabad101", Role: "staff"}

	rec := httptest.NewRecorder()
	if err := m.SignIn(rec, httptest.NewRequest("POST", "/login", nil), user); err != nil {
		t.Fatalf("SignIn: %v", err)
	}
	cookies := rec.Result().Cookies()

	t.Run("fresh data replaces session payload", func(t *testing.T) {
		m.SetUserFetcher(fetcherFunc(func(ctx context.Context, id string) *SessionUser {
			return &SessionUser{ID: id, Role: "admin"} // role changed since sign-in
		}))

		var got *SessionUser
		h := m.LoadSessionUser(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got, _ = CurrentUser(r)
		}))
		r := httptest.NewRequest("GET", "/", nil)
		for _, c := range cookies {
			r.AddCookie(c)
		}
		h.ServeHTTP(httptest.NewRecorder(), r)

		if got == nil || got.Role != "admin" {
			t.Fatalf("got %+v, want refetched admin role", got)
		}
	})

	t.Run("deleted account fails closed", func(t *testing.T) {
		m.SetUserFetcher(fetcherFunc(func(ctx context.Context, id string) *SessionUser {
			return nil
		}))

		var ok bool
		h := m.LoadSessionUser(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, ok = CurrentUser(r)
		}))
		r := httptest.NewRequest("GET", "/", nil)
		for _, c := range cookies {
			r.AddCookie(c)
		}
		h.ServeHTTP(httptest.NewRecorder(), r)

		if ok {
			t.Fatal("stale session should not produce a user")
		}
	})
}

func TestRequireSignedIn(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	t.Run("anonymous gets 401", func(t *testing.T) {
		rec := httptest.NewRecorder()
		RequireSignedIn(next).ServeHTTP(rec, httptest.NewRequest("GET", "/customers", nil))
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("status = %d", rec.Code)
		}
		if !strings.Contains(rec.Body.String(), `"error"`) {
			t.Error("401 body should be the JSON envelope")
		}
	})

	t.Run("signed-in passes through", func(t *testing.T) {
		rec := httptest.NewRecorder()
		r := WithTestUser(httptest.NewRequest("GET", "/customers", nil), &SessionUser{ID: "x", Role: "staff"})
		RequireSignedIn(next).ServeHTTP(rec, r)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d", rec.Code)
		}
	})
}

func TestRequireRole(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	adminOnly := RequireRole("admin")(next)

	tests := []struct {
		name string
		user *SessionUser
		want int
	}{
		{"anonymous", nil, http.StatusUnauthorized},
		{"wrong role", &SessionUser{ID: "x", Role: "staff"}, http.StatusForbidden},
		{"right role", &SessionUser{ID: "x", Role: "admin"}, http.StatusOK},
		{"role matching is case-insensitive", &SessionUser{ID: "x", Role: "Admin"}, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("DELETE", "/customers/1", nil)
			if tt.user != nil {
				r = WithTestUser(r, tt.user)
			}
			rec := httptest.NewRecorder()
			adminOnly.ServeHTTP(rec, r)
			if rec.Code != tt.want {
				t.Fatalf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}
