// Package httpapi exposes the auth service over HTTP: the token endpoints,
// the admin CRUD surface, the JWKS document and a health probe. All responses
// are JSON; errors share one wire format produced by the boundary translator
// in errors.go.
package httpapi

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/mkravets/auth-service/internal/logging"
	"github.com/mkravets/auth-service/internal/server/auth"
	"github.com/mkravets/auth-service/internal/server/config"
	"github.com/mkravets/auth-service/internal/server/models"
	"github.com/mkravets/auth-service/internal/server/repositories/repomanager"
	"github.com/mkravets/auth-service/internal/server/services"
)

const shutdownTimeout = 10 * time.Second

type Server struct {
	address       string
	logger        logging.Logger
	db            *sql.DB
	repos         repomanager.RepositoryManager
	keys          *auth.KeyProvider
	verifier      *auth.JWKSClient
	tokens        *services.TokenService
	users         *services.UserService
	tenants       *services.TenantService
	refreshSecret []byte
	devMode       bool
}

func NewServer(
	cfg *config.Config,
	l logging.Logger,
	db *sql.DB,
	m repomanager.RepositoryManager,
	keys *auth.KeyProvider,
	verifier *auth.JWKSClient,
	ts *services.TokenService,
	us *services.UserService,
	tns *services.TenantService,
) *Server {
	return &Server{
		address:       cfg.Address,
		logger:        l.With("module", "http_server"),
		db:            db,
		repos:         m,
		keys:          keys,
		verifier:      verifier,
		tokens:        ts,
		users:         us,
		tenants:       tns,
		refreshSecret: []byte(cfg.RefreshTokenSecret),
		devMode:       cfg.DevMode,
	}
}

func (s *Server) router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Get("/.well-known/jwks.json", s.handleJWKS)

	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", s.handleRegister)
		r.Post("/login", s.handleLogin)
		r.With(s.validateRefresh).Post("/refresh", s.handleRefresh)
		r.With(s.parseRefresh).Post("/logout", s.handleLogout)
		r.With(s.authenticate).Get("/self", s.handleSelf)
	})

	r.Route("/tenants", func(r chi.Router) {
		r.Use(s.authenticate)
		r.Use(s.requireRole(models.RoleAdmin))
		r.Get("/", s.handleListTenants)
		r.Post("/", s.handleCreateTenant)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.handleGetTenant)
			r.Put("/", s.handleUpdateTenant)
			r.Delete("/", s.handleDeleteTenant)
		})
	})

	r.Route("/users", func(r chi.Router) {
		r.Use(s.authenticate)
		r.Use(s.requireRole(models.RoleAdmin))
		r.Get("/", s.handleListUsers)
		r.Post("/", s.handleCreateUser)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.handleGetUser)
			r.Put("/", s.handleUpdateUser)
			r.Delete("/", s.handleDeleteUser)
		})
	})

	return r
}

// Run serves until ctx is cancelled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    s.address,
		Handler: s.router(),
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(ctx, "shutdown error", "error", err.Error())
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.db.PingContext(r.Context()); err != nil {
		s.logger.Error(r.Context(), "health check failed", "error", err.Error())
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleJWKS publishes the verification keys. Resource servers poll this
// endpoint instead of sharing the private key.
func (s *Server) handleJWKS(w http.ResponseWriter, r *http.Request) {
	set, err := s.keys.JWKS()
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, set)
}
