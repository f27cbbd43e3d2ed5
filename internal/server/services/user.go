// UserService implements the admin-facing user management operations.
package services

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/mkravets/auth-service/internal/logging"
	"github.com/mkravets/auth-service/internal/server/auth"
	"github.com/mkravets/auth-service/internal/server/models"
	"github.com/mkravets/auth-service/internal/server/repositories/repomanager"
)

// CreateUserInput carries the validated fields of an admin create-user request.
type CreateUserInput struct {
	FirstName string
	LastName  string
	Email     string
	Password  string
	Role      models.Role
	TenantID  *int64
}

// UpdateUserInput carries the mutable fields of an admin update-user request.
type UpdateUserInput struct {
	FirstName string
	LastName  string
	Email     string
	Role      models.Role
	TenantID  *int64
}

// UserService manages user records on behalf of admins.
type UserService struct {
	db     *sql.DB
	repos  repomanager.RepositoryManager
	logger logging.Logger
}

// NewUserService constructs a UserService.
func NewUserService(db *sql.DB, m repomanager.RepositoryManager, l logging.Logger) *UserService {
	return &UserService{db: db, repos: m, logger: l.With("module", "user_service")}
}

// Create inserts a user with an explicit role and optional tenant reference.
func (s *UserService) Create(ctx context.Context, in CreateUserInput) (*models.User, error) {
	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	user, err := s.repos.Users(s.db).Create(ctx, &models.User{
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Email:        in.Email,
		PasswordHash: hash,
		Role:         in.Role,
		TenantID:     in.TenantID,
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "user created", "id", user.ID, "role", user.Role)
	return user, nil
}

// Update rewrites the mutable fields of the user.
func (s *UserService) Update(ctx context.Context, id int64, in UpdateUserInput) error {
	err := s.repos.Users(s.db).Update(ctx, &models.User{
		ID:        id,
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Email:     in.Email,
		Role:      in.Role,
		TenantID:  in.TenantID,
	})
	if err != nil {
		return err
	}

	s.logger.Info(ctx, "user updated", "id", id)
	return nil
}

// GetByID returns a single user.
func (s *UserService) GetByID(ctx context.Context, id int64) (*models.User, error) {
	return s.repos.Users(s.db).GetByID(ctx, id)
}

// List returns all users.
func (s *UserService) List(ctx context.Context) ([]models.User, error) {
	return s.repos.Users(s.db).List(ctx)
}

// Delete removes a user.
func (s *UserService) Delete(ctx context.Context, id int64) error {
	if err := s.repos.Users(s.db).Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info(ctx, "user deleted", "id", id)
	return nil
}
