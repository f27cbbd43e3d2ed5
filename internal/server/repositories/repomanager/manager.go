// Package repomanager vends repository implementations bound to a database
// handle and owns schema migrations.
package repomanager

import (
	"context"
	"database/sql"

	"github.com/mkravets/auth-service/internal/dbx"
	"github.com/mkravets/auth-service/internal/server/repositories/refreshtokens"
	"github.com/mkravets/auth-service/internal/server/repositories/tenants"
	"github.com/mkravets/auth-service/internal/server/repositories/users"
)

// RepositoryManager builds repositories over a DBTX, so a service can bind
// the same repository either to the pooled connection or to a transaction.
type RepositoryManager interface {
	Users(db dbx.DBTX) users.Repository
	Tenants(db dbx.DBTX) tenants.Repository
	RefreshTokens(db dbx.DBTX) refreshtokens.Repository

	RunMigrations(ctx context.Context, db *sql.DB) error
}
