package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Tenant is a customer workspace.
type Tenant struct {
	ID   uuid.UUID
	Slug string
	Name string
}

const getTenantQuery = `SELECT id, slug, name FROM tenants WHERE id = $1`

const getTenantBySlugQuery = `SELECT id, slug, name FROM tenants WHERE slug = $1`

const listTenantsQuery = `SELECT id, slug, name FROM tenants ORDER BY slug`

func (r *Repository) GetTenant(ctx context.Context, id uuid.UUID) (Tenant, error) {
	return r.scanTenant(r.pool.QueryRow(ctx, getTenantQuery, id))
}

func (r *Repository) GetTenantBySlug(ctx context.Context, slug string) (Tenant, error) {
	return r.scanTenant(r.pool.QueryRow(ctx, getTenantBySlugQuery, slug))
}

// ListTenants returns every tenant ordered by slug.
func (r *Repository) ListTenants(ctx context.Context) ([]Tenant, error) {
	rows, err := r.pool.Query(ctx, listTenantsQuery)
	if err != nil {
		return nil, fmt.Errorf("list tenants: %w", err)
	}
	defer rows.Close()

	var tenants []Tenant
	for rows.Next() {
		var t Tenant
		if err := rows.Scan(&t.ID, &t.Slug, &t.Name); err != nil {
			return nil, fmt.Errorf("scan tenant: %w", err)
		}
		tenants = append(tenants, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list tenants: %w", err)
	}
	return tenants, nil
}

func (r *Repository) scanTenant(row pgx.Row) (Tenant, error) {
	var t Tenant
	if err := row.Scan(&t.ID, &t.Slug, &t.Name); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Tenant{}, ErrNotFound
		}
		return Tenant{}, fmt.Errorf("get tenant: %w", err)
	}
	return t, nil
}
