package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ConversationSummaryRow is a raw row of a conversation summary table.
type ConversationSummaryRow struct {
	LeadID    uuid.UUID
	Tag       *string
	Source    *string
	CreatedAt *time.Time
	UpdatedAt *time.Time
}

func listConversationSummariesQuery(table string) string {
	return `
	SELECT lead_id, tag, source, criado_em, atualizado_em
	FROM ` + pgx.Identifier{table}.Sanitize() + `
	WHERE empresa_id = $1 AND lead_id = ANY($2::uuid[])
	ORDER BY atualizado_em DESC NULLS LAST`
}

func (r *Repository) ListConversationSummaries(ctx context.Context, table string, tenantID uuid.UUID, leadIDs []uuid.UUID) ([]ConversationSummaryRow, error) {
	if len(leadIDs) == 0 {
		return []ConversationSummaryRow{}, nil
	}

	rows, err := r.pool.Query(ctx, listConversationSummariesQuery(table), tenantID, leadIDs)
	if err != nil {
		return nil, fmt.Errorf("list conversation summaries from %s: %w", table, err)
	}
	defer rows.Close()

	items := make([]ConversationSummaryRow, 0, len(leadIDs))
	for rows.Next() {
		var item ConversationSummaryRow
		if err := rows.Scan(&item.LeadID, &item.Tag, &item.Source, &item.CreatedAt, &item.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan conversation summary: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list conversation summaries from %s: %w", table, err)
	}
	return items, nil
}
