package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// PageParams selects one page of rows created in [Start, EndExclusive).
type PageParams struct {
	TenantID     uuid.UUID
	Start        time.Time
	EndExclusive time.Time
	Limit        int
	Offset       int
}

// LeadRow is a raw row of the leads table.
type LeadRow struct {
	ID          uuid.UUID
	Name        *string
	CompanyName *string
	Phone       *string
	Email       *string
	CurrentTags []string
	Metadata    map[string]any
	Status      *string
	Origin      *string
	CreatedAt   *time.Time
	UpdatedAt   *time.Time
}

const listLeadsPageQuery = `
	SELECT id, nome, nome_empresa, telefone, email, tags_atuais, metadados,
		status, origem, criado_em, atualizado_em
	FROM leads
	WHERE empresa_id = $1 AND criado_em >= $2 AND criado_em < $3
	ORDER BY criado_em DESC, id DESC
	LIMIT $4 OFFSET $5`

func (r *Repository) ListLeadsPage(ctx context.Context, params PageParams) ([]LeadRow, error) {
	rows, err := r.pool.Query(ctx, listLeadsPageQuery,
		params.TenantID, params.Start, params.EndExclusive, params.Limit, params.Offset)
	if err != nil {
		return nil, fmt.Errorf("list leads page: %w", err)
	}
	defer rows.Close()

	items := make([]LeadRow, 0, params.Limit)
	for rows.Next() {
		var (
			item     LeadRow
			metaJSON []byte
		)
		if err := rows.Scan(
			&item.ID, &item.Name, &item.CompanyName, &item.Phone, &item.Email,
			&item.CurrentTags, &metaJSON, &item.Status, &item.Origin,
			&item.CreatedAt, &item.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan lead: %w", err)
		}
		if len(metaJSON) > 0 {
			// Metadata written by external tools is not always an object;
			// anything else is treated as absent.
			_ = json.Unmarshal(metaJSON, &item.Metadata)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list leads page: %w", err)
	}
	return items, nil
}
