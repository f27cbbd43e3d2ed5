// Package users declares the repository contract for user records.
package users

import (
	"context"

	"github.com/mkravets/auth-service/internal/server/models"
)

// Repository defines persistence operations for users.
type Repository interface {
	// Create inserts a user and returns it with the assigned id.
	// A duplicate email yields common.ErrEmailTaken.
	Create(ctx context.Context, user *models.User) (*models.User, error)

	// GetByEmail returns the user with this email, or common.ErrNotFound.
	GetByEmail(ctx context.Context, email string) (*models.User, error)

	// GetByID returns the user with this id, or common.ErrNotFound.
	GetByID(ctx context.Context, id int64) (*models.User, error)

	// Update rewrites the mutable fields of the user identified by user.ID.
	// A duplicate email yields common.ErrEmailTaken; a missing row yields
	// common.ErrNotFound.
	Update(ctx context.Context, user *models.User) error

	// List returns all users.
	List(ctx context.Context) ([]models.User, error)

	// Delete removes the user with this id, or common.ErrNotFound.
	Delete(ctx context.Context, id int64) error
}
