// Package refreshtokens provides a PostgreSQL-backed repository for the
// refresh-token records used in the authentication flow.
package refreshtokens

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mkravets/auth-service/internal/dbx"
)

// PostgresRepository implements the Repository contract over dbx.DBTX
// (satisfied by *sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a record for userID expiring at now+validity and returns
// the assigned id.
func (r *PostgresRepository) Create(ctx context.Context, userID int64, validity time.Duration) (int64, error) {
	query := `
		INSERT INTO refresh_tokens (user_id, expires_at)
		VALUES ($1, $2)
		RETURNING id
	`
	var id int64
	if err := r.db.QueryRowContext(ctx, query, userID, time.Now().Add(validity)).Scan(&id); err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return id, nil
}

// Revoke deletes a record by id. Deleting a missing row is not an error.
func (r *PostgresRepository) Revoke(ctx context.Context, id int64) error {
	query := `
		DELETE FROM refresh_tokens
		WHERE id = $1
	`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// IsLive reports whether a record with this id exists for this user.
func (r *PostgresRepository) IsLive(ctx context.Context, id, userID int64) (bool, error) {
	query := `
		SELECT 1
		FROM refresh_tokens
		WHERE id = $1 AND user_id = $2
	`
	var one int
	if err := r.db.QueryRowContext(ctx, query, id, userID).Scan(&one); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("db error: %w", err)
	}
	return true, nil
}
