// Package services contains server-side business logic. This file implements
// TokenService, which coordinates credential verification, token issuing and
// the persisted refresh-token records behind register/login/refresh/logout.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mkravets/auth-service/internal/common"
	"github.com/mkravets/auth-service/internal/dbx"
	"github.com/mkravets/auth-service/internal/logging"
	"github.com/mkravets/auth-service/internal/server/auth"
	"github.com/mkravets/auth-service/internal/server/config"
	"github.com/mkravets/auth-service/internal/server/models"
	"github.com/mkravets/auth-service/internal/server/repositories/repomanager"
)

// TokenPair bundles a short-lived access token and a long-lived refresh token.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// RegisterInput carries the validated fields of a registration request.
type RegisterInput struct {
	FirstName string
	LastName  string
	Email     string
	Password  string
}

// TokenService provides the authentication flows:
//   - Register: create a customer account and mint tokens
//   - Login: verify credentials and mint tokens
//   - Refresh: rotate the refresh token and mint a new pair
//   - Logout: revoke the presented refresh token
//   - Self: load the authenticated user's profile
type TokenService struct {
	db     *sql.DB
	repos  repomanager.RepositoryManager
	keys   *auth.KeyProvider
	logger logging.Logger

	refreshSecret   []byte
	accessValidity  time.Duration
	refreshValidity time.Duration
	recordValidity  time.Duration
}

// NewTokenService constructs a TokenService using repositories, key material
// and server config.
func NewTokenService(db *sql.DB, m repomanager.RepositoryManager, keys *auth.KeyProvider, cfg *config.Config, l logging.Logger) *TokenService {
	return &TokenService{
		db:              db,
		repos:           m,
		keys:            keys,
		logger:          l.With("module", "token_service"),
		refreshSecret:   []byte(cfg.RefreshTokenSecret),
		accessValidity:  cfg.AccessTokenValidity,
		refreshValidity: cfg.RefreshTokenValidity,
		recordValidity:  cfg.RefreshRecordValidity,
	}
}

// Register creates a new customer account and mints its first token pair.
// A taken email yields common.ErrEmailTaken.
func (s *TokenService) Register(ctx context.Context, in RegisterInput) (*models.User, *TokenPair, error) {
	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, nil, fmt.Errorf("hashing password: %w", err)
	}

	user, err := s.repos.Users(s.db).Create(ctx, &models.User{
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Email:        in.Email,
		PasswordHash: hash,
		Role:         models.RoleCustomer,
	})
	if err != nil {
		if errors.Is(err, common.ErrEmailTaken) {
			return nil, nil, common.ErrEmailTaken
		}
		return nil, nil, fmt.Errorf("creating user: %w", err)
	}

	s.logger.Info(ctx, "user registered", "id", user.ID)

	pair, err := s.generateTokenPair(ctx, user, s.db)
	if err != nil {
		return nil, nil, err
	}
	return user, pair, nil
}

// Login verifies the credentials and, on success, mints a new token pair.
// An unknown email and a wrong password both yield common.ErrInvalidCredentials
// so the response does not reveal which accounts exist.
func (s *TokenService) Login(ctx context.Context, email, password string) (*models.User, *TokenPair, error) {
	user, err := s.repos.Users(s.db).GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, nil, common.ErrInvalidCredentials
		}
		return nil, nil, fmt.Errorf("looking up user: %w", err)
	}

	if !auth.VerifyPassword(password, user.PasswordHash) {
		return nil, nil, common.ErrInvalidCredentials
	}

	s.logger.Info(ctx, "user logged in", "id", user.ID)

	pair, err := s.generateTokenPair(ctx, user, s.db)
	if err != nil {
		return nil, nil, err
	}
	return user, pair, nil
}

// Refresh rotates the presented refresh token: the old record is revoked and
// a new one issued inside one transaction, so a crash never leaves two live
// tokens for the same rotation. The refresh-validation middleware has already
// proven the old record live.
func (s *TokenService) Refresh(ctx context.Context, userID, recordID int64) (*TokenPair, error) {
	user, err := s.repos.Users(s.db).GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			// account deleted after the token was issued
			return nil, common.ErrUnauthenticated
		}
		return nil, fmt.Errorf("looking up user: %w", err)
	}

	var pair *TokenPair
	if err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.repos.RefreshTokens(tx).Revoke(ctx, recordID); err != nil {
			return fmt.Errorf("revoking refresh token: %w", err)
		}
		var genErr error
		pair, genErr = s.generateTokenPair(ctx, user, tx)
		return genErr
	}); err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "refresh token rotated", "user_id", userID, "old_id", recordID)
	return pair, nil
}

// Logout revokes the presented refresh token's record. Revoking an already
// revoked record is not an error.
func (s *TokenService) Logout(ctx context.Context, recordID int64) error {
	if err := s.repos.RefreshTokens(s.db).Revoke(ctx, recordID); err != nil {
		return fmt.Errorf("revoking refresh token: %w", err)
	}
	s.logger.Info(ctx, "refresh token revoked", "id", recordID)
	return nil
}

// Self returns the authenticated user's profile, or common.ErrNotFound if the
// account was deleted after the access token was issued.
func (s *TokenService) Self(ctx context.Context, userID int64) (*models.User, error) {
	return s.repos.Users(s.db).GetByID(ctx, userID)
}

// generateTokenPair persists a fresh refresh-token record and signs both
// tokens. The record insert comes first: the refresh JWT's jti is the
// record's assigned id.
func (s *TokenService) generateTokenPair(ctx context.Context, user *models.User, db dbx.DBTX) (*TokenPair, error) {
	key, err := s.keys.PrivateKey()
	if err != nil {
		return nil, err
	}
	kid, err := s.keys.KeyID()
	if err != nil {
		return nil, err
	}

	recordID, err := s.repos.RefreshTokens(db).Create(ctx, user.ID, s.recordValidity)
	if err != nil {
		return nil, fmt.Errorf("persisting refresh token: %w", err)
	}

	access, err := auth.IssueAccessToken(key, kid, user.ID, user.Role, s.accessValidity)
	if err != nil {
		return nil, fmt.Errorf("signing access token: %w", err)
	}

	refresh, err := auth.IssueRefreshToken(s.refreshSecret, user.ID, user.Role, recordID, s.refreshValidity)
	if err != nil {
		return nil, fmt.Errorf("signing refresh token: %w", err)
	}

	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}
