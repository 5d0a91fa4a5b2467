package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeAliases(t *testing.T) {
	tests := []struct {
		input string
		want  LeadStage
	}{
		{"t1", StageNewLead},
		{"novo lead", StageNewLead},
		{"Novo-Lead", StageNewLead},
		{"t2", StageQualifying},
		{"qualificação", StageQualifying},
		{"Qualificacao", StageQualifying},
		{"qualificaçao", StageQualifying},
		{"  qualificando ", StageQualifying},
		{"T3", StageQualified},
		{"qualificado(a)", StageQualified},
		{"qualificados", StageQualified},
		{"t4", StageFollowup},
		{"follow-up", StageFollowup},
		{"t5", StageDiscarded},
		{"desqualificado(a)", StageDiscarded},
		{"descartados", StageDiscarded},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize([]string{tt.input}, ""))
		})
	}
}

func TestNormalizeCanonicalIdentity(t *testing.T) {
	for _, stage := range Stages() {
		assert.Equal(t, stage, Normalize([]string{string(stage)}, ""))
		assert.Equal(t, stage, Normalize([]string{string(stage)}, "sieg"))
	}
}

func TestNormalizeCanonicalIsCaseSensitive(t *testing.T) {
	// "QUALIFIED" is not canonical and matches no alias or rule.
	assert.Equal(t, StageNewLead, Normalize([]string{"QUALIFIED"}, ""))
}

func TestNormalizeEmptyInput(t *testing.T) {
	assert.Equal(t, StageNewLead, Normalize(nil, ""))
	assert.Equal(t, StageNewLead, Normalize([]string{}, "asf"))
	assert.Equal(t, StageNewLead, Normalize([]string{"", "   "}, "sieg"))
}

func TestNormalizeFirstHitWins(t *testing.T) {
	assert.Equal(t, StageQualified, Normalize([]string{"", "t3", "t5"}, ""))
	assert.Equal(t, StageDiscarded, Normalize([]string{"desqualificado", "qualified"}, ""))
}

func TestNormalizeTenantRules(t *testing.T) {
	tests := []struct {
		name string
		tag  string
		slug string
		want LeadStage
	}{
		{"sieg paid", "T3 - PAGO", "sieg", StageQualified},
		{"sieg disqualified", "T5 desqualificado", "sieg", StageDiscarded},
		{"sieg transfer", "T4 - Transferido", "sieg", StageFollowup},
		{"sieg answered", "T2 - Respondeu", "sieg", StageQualifying},
		{"sieg alias slug", "lead pago via pix", "sieg-pre-vendas", StageQualified},
		{"asf qualified", "T3 - Qualificado", "asf", StageQualified},
		{"asf heuristic desqualificado hits qualificado first", "T5 - desqualificado", "asf", StageQualified},
		{"asf qualifying", "T2 - Qualificando", "asf", StageQualifying},
		{"unknown slug falls back to generic", "T3 - PAGO", "acme", StageNewLead},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize([]string{tt.tag}, tt.slug))
		})
	}
}

func TestNormalizeGenericRules(t *testing.T) {
	tests := []struct {
		tag  string
		want LeadStage
	}{
		{"Lead Desqualificado pelo SDR", StageQualified},
		{"lead qualificado", StageQualified},
		{"em follow up", StageFollowup},
		{"lead desqualificada", StageDiscarded},
		{"em qualificação", StageQualifying},
		{"aguardando retorno", StageNewLead},
	}

	for _, tt := range tests {
		t.Run(tt.tag, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize([]string{tt.tag}, ""))
		})
	}
}

func TestNormalizeQualificadoRuleWinsOverDesqual(t *testing.T) {
	assert.Equal(t, StageQualified, Normalize([]string{"T5 desqualificado"}, "asf"))
	assert.Equal(t, StageQualified, Normalize([]string{"T3 - T5 revisar"}, "asf"))
	assert.Equal(t, StageDiscarded, Normalize([]string{"T5 - revisar"}, "asf"))

	assert.Equal(t, StageDiscarded, Normalize([]string{"desqualificado"}, "asf"))
	assert.Equal(t, StageDiscarded, Normalize([]string{"t5"}, "asf"))
	assert.Equal(t, StageDiscarded, Normalize([]string{"desqualificado"}, ""))
}

func TestNormalizeHeuristicUsesFirstNonEmptyCandidate(t *testing.T) {
	got := Normalize([]string{"", "em follow up", "lead qualificado"}, "")
	assert.Equal(t, StageFollowup, got)
}

func TestResolveLabels(t *testing.T) {
	sieg := ResolveLabels("sieg")
	assert.Contains(t, sieg[StageQualified].Title, "Pago")
	assert.Equal(t, sieg, ResolveLabels("sieg-pre-vendas"))

	generic := ResolveLabels("")
	assert.Equal(t, "Qualificados", generic[StageQualified].Title)
	assert.Len(t, generic, 5)

	asf := ResolveLabels("asf")
	assert.Equal(t, "T3 - Qualificado", asf[StageQualified].Title)
	assert.Equal(t, "Follow-up", asf[StageFollowup].Title)

	assert.Equal(t, generic, ResolveLabels("unknown-tenant"))
}

func TestResolveLabelsReturnsCopy(t *testing.T) {
	labels := ResolveLabels("")
	labels[StageQualified] = StageLabel{Title: "mutated"}

	assert.Equal(t, "Qualificados", ResolveLabels("")[StageQualified].Title)
}
