// Package repository stores the per-tenant tag dictionary.
package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Mapping translates one external tag into a funnel stage.
type Mapping struct {
	ExternalTag   string  `json:"externalTag"`
	InternalStage string  `json:"internalStage"`
	DisplayLabel  string  `json:"displayLabel"`
	Description   *string `json:"description,omitempty"`
	DisplayOrder  int     `json:"displayOrder"`
}

// Reader loads active mappings.
type Reader interface {
	ListActive(ctx context.Context, tenantID uuid.UUID) ([]Mapping, error)
}

// Writer replaces a tenant's dictionary.
type Writer interface {
	Replace(ctx context.Context, tenantID uuid.UUID, mappings []Mapping) error
}

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const listActiveQuery = `
	SELECT external_tag, internal_stage, display_label, description, display_order
	FROM tenant_tag_mappings
	WHERE tenant_id = $1 AND active = true
	ORDER BY display_order, external_tag`

func (r *Repository) ListActive(ctx context.Context, tenantID uuid.UUID) ([]Mapping, error) {
	rows, err := r.pool.Query(ctx, listActiveQuery, tenantID)
	if err != nil {
		return nil, fmt.Errorf("list tag mappings: %w", err)
	}
	defer rows.Close()

	items := make([]Mapping, 0)
	for rows.Next() {
		var m Mapping
		if err := rows.Scan(&m.ExternalTag, &m.InternalStage, &m.DisplayLabel, &m.Description, &m.DisplayOrder); err != nil {
			return nil, fmt.Errorf("scan tag mapping: %w", err)
		}
		items = append(items, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tag mappings: %w", err)
	}
	return items, nil
}

const deactivateQuery = `UPDATE tenant_tag_mappings SET active = false WHERE tenant_id = $1`

const upsertQuery = `
	INSERT INTO tenant_tag_mappings (tenant_id, external_tag, internal_stage, display_label, description, display_order, active)
	VALUES ($1, $2, $3, $4, $5, $6, true)
	ON CONFLICT (tenant_id, external_tag) DO UPDATE SET
		internal_stage = EXCLUDED.internal_stage,
		display_label = EXCLUDED.display_label,
		description = EXCLUDED.description,
		display_order = EXCLUDED.display_order,
		active = true`

// Replace deactivates every mapping of the tenant and upserts the given set
// in a single transaction.
func (r *Repository) Replace(ctx context.Context, tenantID uuid.UUID, mappings []Mapping) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	batch := &pgx.Batch{}
	batch.Queue(deactivateQuery, tenantID)
	for _, m := range mappings {
		batch.Queue(upsertQuery, tenantID, m.ExternalTag, m.InternalStage, m.DisplayLabel, m.Description, m.DisplayOrder)
	}

	results := tx.SendBatch(ctx, batch)
	for i := 0; i < batch.Len(); i++ {
		if _, err := results.Exec(); err != nil {
			_ = results.Close()
			return fmt.Errorf("replace tag mappings: %w", err)
		}
	}
	if err := results.Close(); err != nil {
		return fmt.Errorf("replace tag mappings: %w", err)
	}

	return tx.Commit(ctx)
}

var (
	_ Reader = (*Repository)(nil)
	_ Writer = (*Repository)(nil)
)
