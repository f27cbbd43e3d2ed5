// Package tenants declares the repository contract for tenant records.
package tenants

import (
	"context"

	"github.com/mkravets/auth-service/internal/server/models"
)

// Repository defines persistence operations for tenants.
type Repository interface {
	// Create inserts a tenant and returns it with the assigned id.
	Create(ctx context.Context, tenant *models.Tenant) (*models.Tenant, error)

	// GetByID returns the tenant with this id, or common.ErrNotFound.
	GetByID(ctx context.Context, id int64) (*models.Tenant, error)

	// Update rewrites name and address of the tenant identified by tenant.ID,
	// or returns common.ErrNotFound.
	Update(ctx context.Context, tenant *models.Tenant) error

	// List returns all tenants.
	List(ctx context.Context) ([]models.Tenant, error)

	// Delete removes the tenant with this id, or common.ErrNotFound.
	// Users referencing the tenant keep existing with the reference cleared.
	Delete(ctx context.Context, id int64) error
}
