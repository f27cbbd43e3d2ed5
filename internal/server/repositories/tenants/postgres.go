// Package tenants provides a PostgreSQL-backed repository for tenant records.
package tenants

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mkravets/auth-service/internal/common"
	"github.com/mkravets/auth-service/internal/dbx"
	"github.com/mkravets/auth-service/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, tenant *models.Tenant) (*models.Tenant, error) {
	query := `
		INSERT INTO tenants (name, address)
		VALUES ($1, $2)
		RETURNING id, created_at
	`
	err := r.db.QueryRowContext(ctx, query, tenant.Name, tenant.Address).
		Scan(&tenant.ID, &tenant.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return tenant, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*models.Tenant, error) {
	query := `
		SELECT id, name, address, created_at
		FROM tenants
		WHERE id = $1
	`
	tenant := &models.Tenant{}
	err := r.db.QueryRowContext(ctx, query, id).
		Scan(&tenant.ID, &tenant.Name, &tenant.Address, &tenant.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return tenant, nil
}

func (r *PostgresRepository) Update(ctx context.Context, tenant *models.Tenant) error {
	query := `
		UPDATE tenants
		SET name = $1, address = $2
		WHERE id = $3
	`
	res, err := r.db.ExecContext(ctx, query, tenant.Name, tenant.Address, tenant.ID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *PostgresRepository) List(ctx context.Context) ([]models.Tenant, error) {
	query := `
		SELECT id, name, address, created_at
		FROM tenants
		ORDER BY id
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var tenants []models.Tenant
	for rows.Next() {
		var t models.Tenant
		if err := rows.Scan(&t.ID, &t.Name, &t.Address, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		tenants = append(tenants, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return tenants, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id int64) error {
	query := `
		DELETE FROM tenants
		WHERE id = $1
	`
	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrNotFound
	}
	return nil
}
