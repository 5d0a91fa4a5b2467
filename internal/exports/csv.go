package exports

import (
	"encoding/csv"
	"io"
	"strings"
	"time"

	leadsdomain "github.com/ZionTraffic/zion-flux-sub000/internal/leads/domain"
	leadsservice "github.com/ZionTraffic/zion-flux-sub000/internal/leads/service"
)

var boardHeaders = []string{
	"id",
	"nome",
	"telefone",
	"email",
	"produto",
	"origem",
	"estagio",
	"estagio_titulo",
	"entrada",
	"data_referencia",
	"valor_pendente",
	"recuperado_ia",
	"recuperado_humano",
	"tags",
	"fonte_tag",
}

// WriteBoardCSV writes every lead of board in fetch order and returns the
// number of data rows.
func WriteBoardCSV(w io.Writer, board leadsservice.Board) (int, error) {
	writer := csv.NewWriter(w)
	if err := writer.Write(boardHeaders); err != nil {
		return 0, err
	}

	for _, lead := range board.AllLeads {
		record := []string{
			lead.ID.String(),
			lead.Name,
			lead.Phone,
			lead.Email,
			lead.ProductInterest,
			lead.OriginChannel,
			string(lead.Stage),
			board.Labels[lead.Stage].Title,
			lead.EnteredAt.Format(time.RFC3339),
			lead.ReferenceDate,
			lead.PendingAmount,
			lead.RecoveredByAIAmount,
			lead.RecoveredByHumanAmount,
			strings.Join(lead.Tags, "|"),
			lead.TagSource.String(),
		}
		if err := writer.Write(record); err != nil {
			return 0, err
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return 0, err
	}
	return len(board.AllLeads), nil
}

// FileName names an export by its inclusive day range.
func FileName(window leadsdomain.Window) string {
	start := leadsdomain.ReferenceDate(window.Start)
	end := leadsdomain.ReferenceDate(window.EndExclusive.AddDate(0, 0, -1))
	return "leads_" + start + "_" + end + ".csv"
}
