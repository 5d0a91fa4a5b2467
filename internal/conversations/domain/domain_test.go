package domain

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMessagesBothFormats(t *testing.T) {
	raw := []byte(`[
		{"role":"user","content":"Oi, quero saber o preço"},
		"Bot: Olá! Posso ajudar",
		"You: Sim, por favor",
		"mensagem solta",
		{"foo":1}
	]`)

	got := ParseMessages(raw)
	require.Len(t, got, 5)
	assert.Equal(t, Message{Role: RoleUser, Content: "Oi, quero saber o preço"}, got[0])
	assert.Equal(t, Message{Role: RoleAssistant, Content: "Olá! Posso ajudar"}, got[1])
	assert.Equal(t, Message{Role: RoleUser, Content: "Sim, por favor"}, got[2])
	assert.Equal(t, Message{Role: RoleAssistant, Content: "mensagem solta"}, got[3])
	assert.Equal(t, RoleAssistant, got[4].Role)
	assert.JSONEq(t, `{"foo":1}`, got[4].Content)
}

func TestParseMessagesNonArray(t *testing.T) {
	assert.Empty(t, ParseMessages([]byte(`{"role":"user"}`)))
	assert.Empty(t, ParseMessages([]byte(`not json`)))
}

func TestStatusForTag(t *testing.T) {
	tests := []struct {
		tag  string
		want Status
	}{
		{"", StatusDiscarded},
		{"T2 - Qualificando", StatusFollowUp},
		{"T5 - Desqualificado", StatusDiscarded},
		{"T3 - Qualificado", StatusQualified},
		{"T4 - Follow-up", StatusQualified},
		{"Em atendimento", StatusFollowUp},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, StatusForTag(tt.tag), tt.tag)
	}
}

func TestAnalyzeSentiment(t *testing.T) {
	tests := []struct {
		name     string
		messages []Message
		want     SentimentResult
	}{
		{
			name:     "no lead messages",
			messages: []Message{{Role: RoleAssistant, Content: "excelente"}},
			want:     SentimentResult{Sentiment: SentimentNeutral, Score: 0, Intensity: IntensityLow},
		},
		{
			name:     "strong positive",
			messages: []Message{{Role: RoleUser, Content: "Excelente, adorei!"}},
			want:     SentimentResult{Sentiment: SentimentPositive, Score: 100, Intensity: IntensityLow},
		},
		{
			name: "mild negative averaged",
			messages: []Message{
				{Role: RoleUser, Content: "achei caro"},
				{Role: RoleUser, Content: "tudo"},
				{Role: RoleUser, Content: "hmm"},
			},
			want: SentimentResult{Sentiment: SentimentNeutral, Score: -13, Intensity: IntensityMedium},
		},
		{
			name:     "negative with embedded keyword",
			messages: []Message{{Role: RoleUser, Content: "péssimo"}},
			want:     SentimentResult{Sentiment: SentimentNegative, Score: -40, Intensity: IntensityLow},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, AnalyzeSentiment(tt.messages))
		})
	}
}

func TestSummarize(t *testing.T) {
	assert.Equal(t, "Conversa iniciada - aguardando mensagens", Summarize(nil))
	assert.Equal(t, "Conversa com 1 mensagem(ns) - conteúdo em processamento",
		Summarize([]Message{{Role: RoleUser, Content: "undefined"}}))
	assert.Equal(t, "Conversa com 1 mensagens do assistente",
		Summarize([]Message{{Role: RoleAssistant, Content: "Olá"}}))

	long := strings.Repeat("á", 90)
	got := Summarize([]Message{{Role: RoleUser, Content: long}, {Role: RoleUser, Content: "ok"}})
	assert.Equal(t, "2 mensagens do lead. Iniciou com: \""+strings.Repeat("á", 80)+"...\"", got)
}

func TestCSATLabel(t *testing.T) {
	assert.Equal(t, "Satisfeito", CSATLabel("5"))
	assert.Equal(t, "Satisfeito", CSATLabel("4"))
	assert.Equal(t, "Pouco Satisfeito", CSATLabel("3,5"))
	assert.Equal(t, "Insatisfeito", CSATLabel("1"))
	assert.Equal(t, "Satisfeito", CSATLabel(" Satisfeito "))
	assert.Equal(t, "-", CSATLabel(""))
}

func TestAnalyze(t *testing.T) {
	start := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	end := start.Add(90 * time.Second)

	conv, ok := Analyze(Transcript{
		ID:        7,
		Phone:     "5511999990000",
		Tag:       "T3 - Qualificado",
		Messages:  []byte(`["You: quero"]`),
		CSAT:      "4",
		StartedAt: &start,
		EndedAt:   &end,
		CreatedAt: start.Add(-time.Hour),
	})
	require.True(t, ok)
	assert.Equal(t, "Lead 5511999990000", conv.LeadName)
	assert.Equal(t, StatusQualified, conv.Status)
	assert.True(t, conv.Qualified)
	assert.Equal(t, int64(90), conv.DurationSeconds)
	assert.Equal(t, "Satisfeito", conv.CSAT)

	_, ok = Analyze(Transcript{Phone: "", Messages: []byte(`[]`)})
	assert.False(t, ok)
	_, ok = Analyze(Transcript{Phone: "1", Messages: []byte(`null`)})
	assert.False(t, ok)

	conv, ok = Analyze(Transcript{Phone: "1", Tag: "T5 - Desqualificado", Messages: []byte(`[]`)})
	require.True(t, ok)
	assert.False(t, conv.Qualified)
	assert.Zero(t, conv.DurationSeconds)
}

func TestComputeStats(t *testing.T) {
	convs := []Conversation{
		{Status: StatusQualified, DurationSeconds: 60},
		{Status: StatusFollowUp, DurationSeconds: 120},
		{Status: StatusDiscarded},
		{Status: StatusQualified},
	}

	stats := ComputeStats(convs, 0, 0)
	assert.Equal(t, 4, stats.Total)
	assert.Equal(t, 2, stats.Qualified)
	assert.InDelta(t, 50.0, stats.ConversionRate, 1e-9)
	assert.InDelta(t, 45.0, stats.AverageDuration, 1e-9)

	stats = ComputeStats(convs, 10, 3)
	assert.Equal(t, 10, stats.Total)
	assert.InDelta(t, 30.0, stats.ConversionRate, 1e-9)

	assert.Equal(t, Stats{}, ComputeStats(nil, 0, 0))
}
