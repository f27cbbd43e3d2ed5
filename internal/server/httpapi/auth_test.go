package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/mkravets/auth-service/internal/common"
	"github.com/mkravets/auth-service/internal/server/auth"
	"github.com/mkravets/auth-service/internal/server/models"
)

func postJSON(e *testEnv, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return do(e, req)
}

func decodeErrors(t *testing.T, rec *httptest.ResponseRecorder) []apiError {
	t.Helper()
	var resp errorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding error body: %v (%s)", err, rec.Body.String())
	}
	return resp.Errors
}

func TestRegister_Success(t *testing.T) {
	e := newTestEnv(t)
	e.rm.u.createOut = &models.User{ID: 42}

	rec := postJSON(e, "/auth/register",
		`{"firstName":"Ada","lastName":"Lovelace","email":"ada@example.com","password":"secret123"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var body map[string]int64
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decoding body: %v", err)
	}
	if body["id"] != 42 {
		t.Fatalf("expected created id 42, got %d", body["id"])
	}

	cookies := rec.Result().Cookies()
	if len(cookies) != 2 {
		t.Fatalf("expected access and refresh cookies, got %d", len(cookies))
	}
	for _, c := range cookies {
		if !c.HttpOnly || !c.Secure || c.SameSite != http.SameSiteStrictMode || c.Path != "/" {
			t.Fatalf("cookie %s attributes wrong: %+v", c.Name, c)
		}
	}
}

func TestRegister_Validationshape(t *testing.T) {
	e := newTestEnv(t)

	rec := postJSON(e, "/auth/register", `{"firstName":"","lastName":"L","email":"nope","password":"short"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}

	errs := decodeErrors(t, rec)
	if len(errs) != 3 {
		t.Fatalf("expected 3 field errors, got %d: %+v", len(errs), errs)
	}
	paths := map[string]bool{}
	for _, fe := range errs {
		if fe.Type != errTypeValidation {
			t.Fatalf("expected ValidationError type, got %q", fe.Type)
		}
		paths[fe.Path] = true
	}
	for _, p := range []string{"firstName", "email", "password"} {
		if !paths[p] {
			t.Fatalf("missing field error for %q in %+v", p, errs)
		}
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	e := newTestEnv(t)
	e.rm.u.createErr = common.ErrEmailTaken

	rec := postJSON(e, "/auth/register",
		`{"firstName":"Ada","lastName":"Lovelace","email":"ada@example.com","password":"secret123"}`)
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
	if errs := decodeErrors(t, rec); len(errs) != 1 || errs[0].Type != errTypeConflict {
		t.Fatalf("expected one Conflict error, got %+v", errs)
	}
}

func TestLogin_InvalidCredentials(t *testing.T) {
	e := newTestEnv(t)
	e.rm.u.byEmailErr = common.ErrNotFound

	rec := postJSON(e, "/auth/login", `{"email":"ghost@example.com","password":"whatever1"}`)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if errs := decodeErrors(t, rec); len(errs) != 1 || errs[0].Type != errTypeUnauthenticated {
		t.Fatalf("expected one Unauthenticated error, got %+v", errs)
	}
}

func TestLogin_Success(t *testing.T) {
	e := newTestEnv(t)
	hash, err := auth.HashPassword("secret123")
	if err != nil {
		t.Fatalf("HashPassword error: %v", err)
	}
	e.rm.u.byEmailOut = &models.User{ID: 7, Email: "ada@example.com", PasswordHash: hash, Role: models.RoleCustomer}

	rec := postJSON(e, "/auth/login", `{"email":"ada@example.com","password":"secret123"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	// the password hash never serializes
	if strings.Contains(rec.Body.String(), "$2a$") {
		t.Fatalf("response leaks the password hash: %s", rec.Body.String())
	}
}

func TestInternalError_OpaqueOutsideDevMode(t *testing.T) {
	e := newTestEnv(t)
	e.rm.u.byEmailErr = errors.New("pq: connection refused at 10.0.0.5")

	rec := postJSON(e, "/auth/login", `{"email":"ada@example.com","password":"secret123"}`)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}

	errs := decodeErrors(t, rec)
	if len(errs) != 1 || errs[0].Type != errTypeInternal {
		t.Fatalf("expected one InternalError, got %+v", errs)
	}
	if errs[0].Ref == "" {
		t.Fatalf("500 responses must carry a correlation ref")
	}
	if strings.Contains(errs[0].Msg, "10.0.0.5") {
		t.Fatalf("500 message must not leak internals: %q", errs[0].Msg)
	}
}

func TestJWKSEndpoint(t *testing.T) {
	e := newTestEnv(t)

	req := httptest.NewRequest(http.MethodGet, "/.well-known/jwks.json", nil)
	rec := do(e, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var set auth.JWKSet
	if err := json.Unmarshal(rec.Body.Bytes(), &set); err != nil {
		t.Fatalf("decoding JWKS: %v", err)
	}
	if len(set.Keys) != 1 {
		t.Fatalf("expected one key, got %d", len(set.Keys))
	}
	kid, _ := e.keys.KeyID()
	if set.Keys[0].Kid != kid {
		t.Fatalf("kid mismatch: %q vs %q", set.Keys[0].Kid, kid)
	}
}

func TestHealthz(t *testing.T) {
	e := newTestEnv(t)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	if rec := do(e, req); rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestTenantCRUD_AdminOnly(t *testing.T) {
	e := newTestEnv(t)
	token := e.accessToken(t, 1, models.RoleAdmin, time.Hour)

	req := httptest.NewRequest(http.MethodPost, "/tenants/", strings.NewReader(`{"name":"Acme","address":"1 Main St"}`))
	req.Header.Set("Authorization", "Bearer "+token)
	rec := do(e, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	// missing name is a field error
	req = httptest.NewRequest(http.MethodPost, "/tenants/", strings.NewReader(`{"address":"1 Main St"}`))
	req.Header.Set("Authorization", "Bearer "+token)
	rec = do(e, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if errs := decodeErrors(t, rec); len(errs) != 1 || errs[0].Path != "name" {
		t.Fatalf("expected name field error, got %+v", errs)
	}
}

func TestCreateUser_RejectsUnknownRole(t *testing.T) {
	e := newTestEnv(t)
	token := e.accessToken(t, 1, models.RoleAdmin, time.Hour)

	req := httptest.NewRequest(http.MethodPost, "/users/", strings.NewReader(
		`{"firstName":"A","lastName":"B","email":"a@b.com","password":"secret123","role":"superuser"}`))
	req.Header.Set("Authorization", "Bearer "+token)
	rec := do(e, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if errs := decodeErrors(t, rec); len(errs) != 1 || errs[0].Path != "role" {
		t.Fatalf("expected role field error, got %+v", errs)
	}
}
