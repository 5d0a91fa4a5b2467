package domain

import (
	"strings"
	"time"

	"github.com/ZionTraffic/zion-flux-sub000/platform/phone"
	"github.com/google/uuid"
)

// FinanceSheetOrigin is the origin channel reported for finance sheet rows.
const FinanceSheetOrigin = "SIEG"

var paymentProofMarkers = []string{
	"comprovante", "pix", "pagamento", "paguei", "transferi", "boleto",
	".jpg", ".jpeg", ".png", ".pdf", "image/", "wa.me", "whatsapp",
}

var suspensionMarkers = []string{"passivel de suspensao", "suspensao"}

// FinanceSheetRow is one row of the collections spreadsheet table.
type FinanceSheetRow struct {
	ID                     uuid.UUID
	Name                   string
	CompanyName            string
	CNPJ                   string
	Phone                  string
	PendingAmount          string
	RecoveredByAIAmount    string
	RecoveredByHumanAmount string
	Tag                    string
	Attendant              string
	ConversationHistory    string
	CreatedAt              time.Time
}

// ClassifyFinanceSheet derives the stage of a collections row. Terminal tags
// win, then an assigned attendant, then evidence found in the transcript.
func ClassifyFinanceSheet(tag, attendant, history string) LeadStage {
	upperTag := strings.ToUpper(tag)
	foldedHistory := Fold(history)

	switch {
	case strings.Contains(upperTag, "T5") || strings.Contains(upperTag, "SUSPENS"):
		return StageDiscarded
	case strings.Contains(upperTag, "T3") || strings.Contains(upperTag, "PAGO"):
		return StageQualified
	case strings.TrimSpace(attendant) != "":
		return StageFollowup
	case containsAny(foldedHistory, suspensionMarkers):
		return StageDiscarded
	case containsAny(foldedHistory, paymentProofMarkers):
		return StageQualified
	case strings.Contains(upperTag, "T2") || strings.Contains(upperTag, "QUALIFICANDO"):
		return StageQualifying
	case strings.Contains(history, "You:"):
		return StageQualifying
	default:
		return StageNewLead
	}
}

func containsAny(text string, markers []string) bool {
	for _, marker := range markers {
		if strings.Contains(text, marker) {
			return true
		}
	}
	return false
}

// CompanyKey identifies the company a row belongs to: the CNPJ when present,
// otherwise the normalized phone number.
func (r FinanceSheetRow) CompanyKey() string {
	if cnpj := strings.TrimSpace(r.CNPJ); cnpj != "" {
		return "cnpj:" + cnpj
	}
	return "tel:" + phone.Key(r.Phone)
}

// Lead converts the row to a classified lead.
func (r FinanceSheetRow) Lead(now time.Time) Lead {
	enteredAt := r.CreatedAt
	if enteredAt.IsZero() {
		enteredAt = now
	}
	name := firstNonBlank(r.Name, r.CompanyName, "Sem nome")

	lead := Lead{
		ID:                     r.ID,
		Name:                   name,
		Phone:                  r.Phone,
		ProductInterest:        r.CNPJ,
		OriginChannel:          FinanceSheetOrigin,
		Stage:                  ClassifyFinanceSheet(r.Tag, r.Attendant, r.ConversationHistory),
		EnteredAt:              enteredAt,
		ReferenceDate:          ReferenceDate(enteredAt),
		PendingAmount:          r.PendingAmount,
		RecoveredByAIAmount:    r.RecoveredByAIAmount,
		RecoveredByHumanAmount: r.RecoveredByHumanAmount,
	}
	if strings.TrimSpace(r.Tag) != "" {
		lead.Tags = []string{r.Tag}
	}
	return lead
}

// CompanyDeduper keeps one representative lead per company: the most
// advanced stage, ties broken by the larger open amount.
type CompanyDeduper struct {
	index map[string]int
	leads []Lead
}

func NewCompanyDeduper() *CompanyDeduper {
	return &CompanyDeduper{index: make(map[string]int)}
}

// Offer records lead under key, replacing the current representative when
// lead is preferable.
func (d *CompanyDeduper) Offer(key string, lead Lead) {
	pos, ok := d.index[key]
	if !ok {
		d.index[key] = len(d.leads)
		d.leads = append(d.leads, lead)
		return
	}
	current := d.leads[pos]
	switch {
	case lead.Stage.Rank() > current.Stage.Rank():
		d.leads[pos] = lead
	case lead.Stage.Rank() == current.Stage.Rank() &&
		ParseAmount(lead.PendingAmount) > ParseAmount(current.PendingAmount):
		d.leads[pos] = lead
	}
}

// Board returns the representatives in first-seen order.
func (d *CompanyDeduper) Board() Board {
	board := NewBoard()
	for _, lead := range d.leads {
		board.Add(lead)
	}
	return board
}

func firstNonBlank(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
