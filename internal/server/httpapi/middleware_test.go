package httpapi

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"database/sql"
	"encoding/json"
	"encoding/pem"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/mkravets/auth-service/internal/common"
	"github.com/mkravets/auth-service/internal/dbx"
	"github.com/mkravets/auth-service/internal/logging"
	"github.com/mkravets/auth-service/internal/server/auth"
	"github.com/mkravets/auth-service/internal/server/config"
	"github.com/mkravets/auth-service/internal/server/models"
	refreshtokensrepo "github.com/mkravets/auth-service/internal/server/repositories/refreshtokens"
	tenantsrepo "github.com/mkravets/auth-service/internal/server/repositories/tenants"
	usersrepo "github.com/mkravets/auth-service/internal/server/repositories/users"
	"github.com/mkravets/auth-service/internal/server/services"
)

// --- fakes ---

type fakeUsersRepo struct {
	createOut *models.User
	createErr error

	byEmailOut *models.User
	byEmailErr error

	byIDOut *models.User
	byIDErr error
}

func (f *fakeUsersRepo) Create(ctx context.Context, u *models.User) (*models.User, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	out := *u
	out.ID = f.createOut.ID
	return &out, nil
}

func (f *fakeUsersRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return f.byEmailOut, f.byEmailErr
}

func (f *fakeUsersRepo) GetByID(ctx context.Context, id int64) (*models.User, error) {
	return f.byIDOut, f.byIDErr
}

func (f *fakeUsersRepo) Update(ctx context.Context, u *models.User) error { return nil }
func (f *fakeUsersRepo) List(ctx context.Context) ([]models.User, error) { return nil, nil }
func (f *fakeUsersRepo) Delete(ctx context.Context, id int64) error      { return nil }

type fakeRefreshRepo struct {
	nextID  int64
	revoked []int64
	liveOut bool
	liveErr error
}

func (f *fakeRefreshRepo) Create(ctx context.Context, userID int64, validity time.Duration) (int64, error) {
	f.nextID++
	return f.nextID, nil
}

func (f *fakeRefreshRepo) Revoke(ctx context.Context, id int64) error {
	f.revoked = append(f.revoked, id)
	return nil
}

func (f *fakeRefreshRepo) IsLive(ctx context.Context, id, userID int64) (bool, error) {
	return f.liveOut, f.liveErr
}

type fakeTenantsRepo struct{}

func (f *fakeTenantsRepo) Create(ctx context.Context, t *models.Tenant) (*models.Tenant, error) {
	out := *t
	out.ID = 1
	return &out, nil
}
func (f *fakeTenantsRepo) GetByID(ctx context.Context, id int64) (*models.Tenant, error) {
	return nil, common.ErrNotFound
}
func (f *fakeTenantsRepo) Update(ctx context.Context, t *models.Tenant) error { return nil }
func (f *fakeTenantsRepo) List(ctx context.Context) ([]models.Tenant, error)  { return nil, nil }
func (f *fakeTenantsRepo) Delete(ctx context.Context, id int64) error         { return nil }

type fakeRepoManager struct {
	u  *fakeUsersRepo
	r  *fakeRefreshRepo
	tn *fakeTenantsRepo
}

func (m *fakeRepoManager) Users(db dbx.DBTX) usersrepo.Repository { return m.u }
func (m *fakeRepoManager) Tenants(db dbx.DBTX) tenantsrepo.Repository {
	return m.tn
}
func (m *fakeRepoManager) RefreshTokens(db dbx.DBTX) refreshtokensrepo.Repository {
	return m.r
}
func (m *fakeRepoManager) RunMigrations(ctx context.Context, db *sql.DB) error { return nil }

// --- fixture ---

type testEnv struct {
	server *Server
	rm     *fakeRepoManager
	keys   *auth.KeyProvider
	jwks   *httptest.Server
	mock   sqlmock.Sqlmock
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("rsa.GenerateKey error: %v", err)
	}
	pemStr := string(pem.EncodeToMemory(&pem.Block{
		Type:  "RSA PRIVATE KEY",
		Bytes: x509.MarshalPKCS1PrivateKey(key),
	}))
	kp := auth.NewKeyProvider(pemStr, "")

	jwksSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		set, err := kp.JWKS()
		if err != nil {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(set)
	}))
	t.Cleanup(jwksSrv.Close)

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	rm := &fakeRepoManager{
		u:  &fakeUsersRepo{},
		r:  &fakeRefreshRepo{liveOut: true},
		tn: &fakeTenantsRepo{},
	}

	cfg := &config.Config{
		Address:               "localhost:0",
		RefreshTokenSecret:    "refresh-secret",
		JWKSURI:               jwksSrv.URL,
		AccessTokenValidity:   time.Hour,
		RefreshTokenValidity:  24 * time.Hour,
		RefreshRecordValidity: 365 * 24 * time.Hour,
	}
	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))

	ts := services.NewTokenService(db, rm, kp, cfg, logger)
	us := services.NewUserService(db, rm, logger)
	tns := services.NewTenantService(db, rm, logger)

	return &testEnv{
		server: NewServer(cfg, logger, db, rm, kp, auth.NewJWKSClient(jwksSrv.URL), ts, us, tns),
		rm:     rm,
		keys:   kp,
		jwks:   jwksSrv,
		mock:   mock,
	}
}

func (e *testEnv) accessToken(t *testing.T, userID int64, role models.Role, validity time.Duration) string {
	t.Helper()
	key, err := e.keys.PrivateKey()
	if err != nil {
		t.Fatalf("PrivateKey error: %v", err)
	}
	kid, _ := e.keys.KeyID()
	token, err := auth.IssueAccessToken(key, kid, userID, role, validity)
	if err != nil {
		t.Fatalf("IssueAccessToken error: %v", err)
	}
	return token
}

func refreshToken(t *testing.T, secret string, userID, recordID int64, role models.Role) string {
	t.Helper()
	token, err := auth.IssueRefreshToken([]byte(secret), userID, role, recordID, time.Hour)
	if err != nil {
		t.Fatalf("IssueRefreshToken error: %v", err)
	}
	return token
}

func do(e *testEnv, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.server.router().ServeHTTP(rec, req)
	return rec
}

// --- extractToken ---

func TestExtractToken(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/auth/self", nil)
	if got := extractToken(req, common.AccessTokenCookieName); got != "" {
		t.Fatalf("expected empty token, got %q", got)
	}

	req.AddCookie(&http.Cookie{Name: common.AccessTokenCookieName, Value: "from-cookie"})
	if got := extractToken(req, common.AccessTokenCookieName); got != "from-cookie" {
		t.Fatalf("cookie token: got %q", got)
	}

	req.Header.Set("Authorization", "Bearer from-header")
	if got := extractToken(req, common.AccessTokenCookieName); got != "from-header" {
		t.Fatalf("header must win over cookie: got %q", got)
	}
}

// --- authentication ---

func TestAuthenticate_ValidToken(t *testing.T) {
	e := newTestEnv(t)
	e.rm.u.byIDOut = &models.User{ID: 7, Email: "a@x.com", Role: models.RoleCustomer}

	req := httptest.NewRequest(http.MethodGet, "/auth/self", nil)
	req.Header.Set("Authorization", "Bearer "+e.accessToken(t, 7, models.RoleCustomer, time.Hour))

	rec := do(e, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var user models.User
	if err := json.Unmarshal(rec.Body.Bytes(), &user); err != nil {
		t.Fatalf("decoding body: %v", err)
	}
	if user.ID != 7 {
		t.Fatalf("self must return the token's subject, got %d", user.ID)
	}
}

func TestAuthenticate_TokenFromCookie(t *testing.T) {
	e := newTestEnv(t)
	e.rm.u.byIDOut = &models.User{ID: 7, Role: models.RoleCustomer}

	req := httptest.NewRequest(http.MethodGet, "/auth/self", nil)
	req.AddCookie(&http.Cookie{
		Name:  common.AccessTokenCookieName,
		Value: e.accessToken(t, 7, models.RoleCustomer, time.Hour),
	})

	if rec := do(e, req); rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestAuthenticate_Failures(t *testing.T) {
	e := newTestEnv(t)

	otherKey, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("rsa.GenerateKey error: %v", err)
	}
	kid, _ := e.keys.KeyID()
	foreign, err := auth.IssueAccessToken(otherKey, kid, 7, models.RoleCustomer, time.Hour)
	if err != nil {
		t.Fatalf("IssueAccessToken error: %v", err)
	}

	tests := []struct {
		name  string
		token string
	}{
		{"missing token", ""},
		{"garbage token", "not-a-jwt"},
		{"expired token", e.accessToken(t, 7, models.RoleCustomer, -time.Minute)},
		{"foreign key", foreign},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/auth/self", nil)
			if tt.token != "" {
				req.Header.Set("Authorization", "Bearer "+tt.token)
			}
			if rec := do(e, req); rec.Code != http.StatusUnauthorized {
				t.Fatalf("expected 401, got %d", rec.Code)
			}
		})
	}
}

// --- refresh validation ---

func TestValidateRefresh_LiveRecord(t *testing.T) {
	e := newTestEnv(t)
	e.rm.u.byIDOut = &models.User{ID: 7, Role: models.RoleCustomer}
	e.mock.ExpectBegin()
	e.mock.ExpectCommit()

	req := httptest.NewRequest(http.MethodPost, "/auth/refresh", nil)
	req.AddCookie(&http.Cookie{
		Name:  common.RefreshTokenCookieName,
		Value: refreshToken(t, "refresh-secret", 7, 555, models.RoleCustomer),
	})

	rec := do(e, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if len(e.rm.r.revoked) != 1 || e.rm.r.revoked[0] != 555 {
		t.Fatalf("presented record must be revoked on rotation, got %v", e.rm.r.revoked)
	}

	// both cookies reissued
	cookies := rec.Result().Cookies()
	if len(cookies) != 2 {
		t.Fatalf("expected 2 cookies, got %d", len(cookies))
	}
}

func TestValidateRefresh_RevokedRecord(t *testing.T) {
	e := newTestEnv(t)
	e.rm.r.liveOut = false

	req := httptest.NewRequest(http.MethodPost, "/auth/refresh", nil)
	req.AddCookie(&http.Cookie{
		Name:  common.RefreshTokenCookieName,
		Value: refreshToken(t, "refresh-secret", 7, 555, models.RoleCustomer),
	})

	if rec := do(e, req); rec.Code != http.StatusUnauthorized {
		t.Fatalf("revoked record must look like a forged token: got %d", rec.Code)
	}
}

func TestValidateRefresh_WrongSecret(t *testing.T) {
	e := newTestEnv(t)

	req := httptest.NewRequest(http.MethodPost, "/auth/refresh", nil)
	req.AddCookie(&http.Cookie{
		Name:  common.RefreshTokenCookieName,
		Value: refreshToken(t, "some-other-secret", 7, 555, models.RoleCustomer),
	})

	if rec := do(e, req); rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestLogout_SkipsLivenessCheck(t *testing.T) {
	e := newTestEnv(t)
	e.rm.r.liveOut = false // already revoked

	req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	req.AddCookie(&http.Cookie{
		Name:  common.RefreshTokenCookieName,
		Value: refreshToken(t, "refresh-secret", 7, 555, models.RoleCustomer),
	})

	rec := do(e, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("logout with a revoked token must succeed, got %d", rec.Code)
	}

	// cookies cleared
	for _, c := range rec.Result().Cookies() {
		if c.MaxAge >= 0 || c.Value != "" {
			t.Fatalf("cookie %s must be cleared", c.Name)
		}
	}
}

// --- role gate ---

func TestRequireRole(t *testing.T) {
	e := newTestEnv(t)

	tests := []struct {
		name string
		role models.Role
		want int
	}{
		{"admin allowed", models.RoleAdmin, http.StatusOK},
		{"manager forbidden", models.RoleManager, http.StatusForbidden},
		{"customer forbidden", models.RoleCustomer, http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/users/", nil)
			req.Header.Set("Authorization", "Bearer "+e.accessToken(t, 1, tt.role, time.Hour))
			if rec := do(e, req); rec.Code != tt.want {
				t.Fatalf("expected %d, got %d", tt.want, rec.Code)
			}
		})
	}
}

func TestRequireRole_NoToken(t *testing.T) {
	e := newTestEnv(t)
	req := httptest.NewRequest(http.MethodGet, "/users/", nil)
	if rec := do(e, req); rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}
