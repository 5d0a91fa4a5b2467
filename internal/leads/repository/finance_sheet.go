package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// FinanceSheetRow is a raw row of the collections spreadsheet table.
// Amounts are stored as typed by the operators.
type FinanceSheetRow struct {
	ID                     uuid.UUID
	Name                   *string
	CompanyName            *string
	CNPJ                   *string
	Phone                  *string
	PendingAmount          *string
	RecoveredByAIAmount    *string
	RecoveredByHumanAmount *string
	Tag                    *string
	Attendant              *string
	ConversationHistory    *string
	CreatedAt              *time.Time
}

const listFinanceSheetPageQuery = `
	SELECT id, nome, nome_empresa, cnpj, telefone,
		valor_em_aberto, valor_recuperado_ia, valor_recuperado_humano,
		tag, atendente, historico_conversa, criado_em
	FROM financeiro_sieg
	WHERE empresa_id = $1 AND criado_em >= $2 AND criado_em < $3
	ORDER BY criado_em DESC, id DESC
	LIMIT $4 OFFSET $5`

func (r *Repository) ListFinanceSheetPage(ctx context.Context, params PageParams) ([]FinanceSheetRow, error) {
	rows, err := r.pool.Query(ctx, listFinanceSheetPageQuery,
		params.TenantID, params.Start, params.EndExclusive, params.Limit, params.Offset)
	if err != nil {
		return nil, fmt.Errorf("list finance sheet page: %w", err)
	}
	defer rows.Close()

	items := make([]FinanceSheetRow, 0, params.Limit)
	for rows.Next() {
		var item FinanceSheetRow
		if err := rows.Scan(
			&item.ID, &item.Name, &item.CompanyName, &item.CNPJ, &item.Phone,
			&item.PendingAmount, &item.RecoveredByAIAmount, &item.RecoveredByHumanAmount,
			&item.Tag, &item.Attendant, &item.ConversationHistory, &item.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan finance sheet row: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list finance sheet page: %w", err)
	}
	return items, nil
}
