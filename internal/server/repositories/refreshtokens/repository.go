// Package refreshtokens declares the repository contract for the server-side
// records backing refresh JWTs.
package refreshtokens

import (
	"context"
	"time"
)

// Repository defines operations for issuing, revoking, and liveness-checking
// refresh-token records. A record's existence is the sole source of truth for
// the validity of the JWT that carries its id.
type Repository interface {
	// Create inserts a record for userID with an expiry of now+validity and
	// returns the assigned id. Minting a refresh JWT requires the id first,
	// so creation always precedes signing.
	Create(ctx context.Context, userID int64, validity time.Duration) (int64, error)

	// Revoke deletes a record by id. Revoking a non-existent id is not an
	// error.
	Revoke(ctx context.Context, id int64) error

	// IsLive reports whether a record with this id exists and belongs to
	// userID. This is the revocation check used during refresh validation.
	IsLive(ctx context.Context, id, userID int64) (bool, error)
}
