// TenantService implements the admin-facing tenant management operations.
package services

import (
	"context"
	"database/sql"

	"github.com/mkravets/auth-service/internal/logging"
	"github.com/mkravets/auth-service/internal/server/models"
	"github.com/mkravets/auth-service/internal/server/repositories/repomanager"
)

// TenantService manages tenant records on behalf of admins.
type TenantService struct {
	db     *sql.DB
	repos  repomanager.RepositoryManager
	logger logging.Logger
}

// NewTenantService constructs a TenantService.
func NewTenantService(db *sql.DB, m repomanager.RepositoryManager, l logging.Logger) *TenantService {
	return &TenantService{db: db, repos: m, logger: l.With("module", "tenant_service")}
}

// Create inserts a tenant.
func (s *TenantService) Create(ctx context.Context, name, address string) (*models.Tenant, error) {
	tenant, err := s.repos.Tenants(s.db).Create(ctx, &models.Tenant{Name: name, Address: address})
	if err != nil {
		return nil, err
	}
	s.logger.Info(ctx, "tenant created", "id", tenant.ID)
	return tenant, nil
}

// Update rewrites name and address of a tenant.
func (s *TenantService) Update(ctx context.Context, id int64, name, address string) error {
	err := s.repos.Tenants(s.db).Update(ctx, &models.Tenant{ID: id, Name: name, Address: address})
	if err != nil {
		return err
	}
	s.logger.Info(ctx, "tenant updated", "id", id)
	return nil
}

// GetByID returns a single tenant.
func (s *TenantService) GetByID(ctx context.Context, id int64) (*models.Tenant, error) {
	return s.repos.Tenants(s.db).GetByID(ctx, id)
}

// List returns all tenants.
func (s *TenantService) List(ctx context.Context) ([]models.Tenant, error) {
	return s.repos.Tenants(s.db).List(ctx)
}

// Delete removes a tenant. Users referencing it keep existing with the
// reference cleared by the schema's ON DELETE SET NULL.
func (s *TenantService) Delete(ctx context.Context, id int64) error {
	if err := s.repos.Tenants(s.db).Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info(ctx, "tenant deleted", "id", id)
	return nil
}
