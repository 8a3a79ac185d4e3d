package handler

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"foodshare/internal/jwttoken"
	"foodshare/internal/platform/middleware"
	"foodshare/internal/registry/service"
	"foodshare/internal/registry/store"
	id "foodshare/pkg/domain"
	"foodshare/pkg/testutil"
)

var tokens = jwttoken.NewService("test-signing-key", "test-issuer")

func newRegistryRouter(t *testing.T) chi.Router {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := service.New(store.NewInMemory(), store.NewInMemory())

	router := chi.NewRouter()
	router.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(tokens, logger))
		New(svc, logger).Register(r)
	})
	return router
}

func authed(t *testing.T, method, path, identity string, body io.Reader) *http.Request {
	t.Helper()
	req := httptest.NewRequest(method, path, body)
	token, err := tokens.GenerateToken(id.Identity(identity), time.Hour)
	if err != nil {
		t.Fatalf("failed to mint token: %v", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

func TestRegisterAndFetchDonor(t *testing.T) {
	router := newRegistryRouter(t)

	payload, _ := json.Marshal(map[string]string{"name": "Corner Bakery", "contact": "+31 6 1234"})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, authed(t, http.MethodPost, "/donors", "bakery@example.org", bytes.NewReader(payload)))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 registering, got %d: %s", rec.Code, rec.Body.String())
	}

	// Any authenticated caller may read the profile.
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, authed(t, http.MethodGet, "/donors/bakery@example.org", "someone-else@example.org", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 fetching, got %d", rec.Code)
	}
	var profile struct {
		Identity string `json:"identity"`
		Name     string `json:"name"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&profile); err != nil {
		t.Fatalf("failed to decode profile: %v", err)
	}
	if profile.Identity != "bakery@example.org" || profile.Name != "Corner Bakery" {
		t.Fatalf("unexpected profile: %+v", profile)
	}
}

func TestUnregisterDonor(t *testing.T) {
	router := newRegistryRouter(t)

	payload, _ := json.Marshal(map[string]string{"name": "Corner Bakery"})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, authed(t, http.MethodPost, "/donors", "bakery@example.org", bytes.NewReader(payload)))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 registering, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, authed(t, http.MethodDelete, "/donors", "bakery@example.org", nil))
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204 unregistering, got %d", rec.Code)
	}

	// A second unregister finds nothing.
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, authed(t, http.MethodDelete, "/donors", "bakery@example.org", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 on repeat unregister, got %d", rec.Code)
	}
}

func TestFetchUnknownRecipient(t *testing.T) {
	router := newRegistryRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, authed(t, http.MethodGet, "/recipients/nobody@example.org", "bakery@example.org", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

// TestHandlerWithInjectedIdentity exercises the handler directly, injecting
// the identity the way the auth middleware would.
func TestHandlerWithInjectedIdentity(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := service.New(store.NewInMemory(), store.NewInMemory())
	router := chi.NewRouter()
	New(svc, logger).Register(router)

	req := testutil.NewJSONRequest(t, http.MethodPost, "/recipients", map[string]string{"name": "Night Shelter"})
	req = testutil.WithIdentity(req, "shelter@example.org")
	req = testutil.WithTime(req, time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC))

	rr := testutil.DoRequest(router, req)
	testutil.AssertStatus(t, rr, http.StatusOK)

	profile := testutil.UnmarshalResponse[struct {
		Identity     string    `json:"identity"`
		RegisteredAt time.Time `json:"registered_at"`
	}](t, rr)
	if profile.Identity != "shelter@example.org" {
		t.Fatalf("unexpected identity %q", profile.Identity)
	}
	if !profile.RegisteredAt.Equal(time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)) {
		t.Fatalf("expected request-scoped registration time, got %v", profile.RegisteredAt)
	}

	// Without an injected identity the service rejects the call.
	rr = testutil.DoRequest(router, testutil.NewJSONRequest(t, http.MethodPost, "/recipients", map[string]string{"name": "x"}))
	testutil.AssertStatus(t, rr, http.StatusUnauthorized)
	testutil.AssertErrorCode(t, rr, "unauthorized")
}

func TestRegistryAuthRequired(t *testing.T) {
	router := newRegistryRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/donors", bytes.NewReader([]byte(`{"name":"x"}`)))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", rec.Code)
	}
}
