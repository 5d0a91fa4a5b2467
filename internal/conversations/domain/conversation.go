// Package domain derives dashboard analytics from stored conversation
// transcripts.
package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Status is the coarse outcome shown on conversation cards.
type Status string

const (
	StatusQualified Status = "qualified"
	StatusFollowUp  Status = "follow-up"
	StatusDiscarded Status = "discarded"
)

const summaryPreviewRunes = 80

// StatusForTag maps a conversation tag to a Status. Disqualification is
// tested before qualification because one tag contains the other.
func StatusForTag(tag string) Status {
	t := strings.ToLower(strings.TrimSpace(tag))
	switch {
	case t == "":
		return StatusDiscarded
	case strings.Contains(t, "qualificando") || strings.Contains(t, "t2"):
		return StatusFollowUp
	case strings.Contains(t, "desqualificado") || strings.Contains(t, "t5"):
		return StatusDiscarded
	case strings.Contains(t, "qualificado") || strings.Contains(t, "t3") || strings.Contains(t, "t4"):
		return StatusQualified
	default:
		return StatusFollowUp
	}
}

// Summarize produces the one-line card summary of a transcript.
func Summarize(messages []Message) string {
	if len(messages) == 0 {
		return "Conversa iniciada - aguardando mensagens"
	}

	var valid, fromLead []Message
	for _, m := range messages {
		if !m.hasContent() {
			continue
		}
		valid = append(valid, m)
		if m.Role == RoleUser {
			fromLead = append(fromLead, m)
		}
	}
	if len(valid) == 0 {
		return fmt.Sprintf("Conversa com %d mensagem(ns) - conteúdo em processamento", len(messages))
	}
	if len(fromLead) == 0 {
		return fmt.Sprintf("Conversa com %d mensagens do assistente", len(valid))
	}

	preview := []rune(fromLead[0].Content)
	suffix := ""
	if len(preview) > summaryPreviewRunes {
		preview = preview[:summaryPreviewRunes]
		suffix = "..."
	}
	return fmt.Sprintf("%d mensagens do lead. Iniciou com: \"%s%s\"", len(fromLead), string(preview), suffix)
}

// DurationSeconds is the whole seconds between start and end, or zero when
// either is unknown.
func DurationSeconds(start, end *time.Time) int64 {
	if start == nil || end == nil {
		return 0
	}
	return int64(end.Sub(*start) / time.Second)
}

// CSATLabel turns a stored satisfaction grade into its label. Numeric grades
// map to Satisfeito (4+), Pouco Satisfeito (3+) or Insatisfeito; text is
// passed through; blank yields "-".
func CSATLabel(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "-"
	}
	grade, err := strconv.ParseFloat(strings.ReplaceAll(raw, ",", "."), 64)
	if err != nil {
		return raw
	}
	switch {
	case grade >= 4:
		return "Satisfeito"
	case grade >= 3:
		return "Pouco Satisfeito"
	default:
		return "Insatisfeito"
	}
}

// Conversation is one analyzed transcript.
type Conversation struct {
	ID              int64
	LeadName        string
	Phone           string
	Tag             string
	Status          Status
	Qualified       bool
	Sentiment       SentimentResult
	Summary         string
	StartedAt       time.Time
	EndedAt         *time.Time
	DurationSeconds int64
	Messages        []Message
	CSAT            string
	Analyst         string
}

// Stats are the headline numbers of a conversation list.
type Stats struct {
	Total           int     `json:"totalConversations"`
	Qualified       int     `json:"qualified"`
	ConversionRate  float64 `json:"conversionRate"`
	AverageDuration float64 `json:"averageDuration"`
}

// ComputeStats prefers the database counts when they are available, as the
// listed rows may be capped or filtered.
func ComputeStats(conversations []Conversation, totalCount, qualifiedCount int) Stats {
	var qualified int
	var duration int64
	for _, c := range conversations {
		if c.Status == StatusQualified {
			qualified++
		}
		duration += c.DurationSeconds
	}

	stats := Stats{Total: len(conversations), Qualified: qualified}
	if totalCount > 0 {
		stats.Total = totalCount
	}
	if qualifiedCount > 0 {
		stats.Qualified = qualifiedCount
	}
	if stats.Total > 0 {
		stats.ConversionRate = float64(stats.Qualified) / float64(stats.Total) * 100
	}
	if len(conversations) > 0 {
		stats.AverageDuration = float64(duration) / float64(len(conversations))
	}
	return stats
}

// Transcript is a stored conversation before analysis.
type Transcript struct {
	ID        int64
	LeadName  string
	Phone     string
	Tag       string
	Messages  []byte
	CSAT      string
	Analyst   string
	StartedAt *time.Time
	EndedAt   *time.Time
	CreatedAt time.Time
}

// Analyze derives the card fields of t. Transcripts without a phone or
// without a stored message field are skipped.
func Analyze(t Transcript) (Conversation, bool) {
	if strings.TrimSpace(t.Phone) == "" || len(t.Messages) == 0 || string(t.Messages) == "null" {
		return Conversation{}, false
	}

	messages := ParseMessages(t.Messages)
	started := t.CreatedAt
	if t.StartedAt != nil {
		started = *t.StartedAt
	}

	name := strings.TrimSpace(t.LeadName)
	if name == "" {
		name = "Lead " + t.Phone
	}

	status := StatusForTag(t.Tag)
	return Conversation{
		ID:              t.ID,
		LeadName:        name,
		Phone:           t.Phone,
		Tag:             t.Tag,
		Status:          status,
		Qualified:       status == StatusQualified,
		Sentiment:       AnalyzeSentiment(messages),
		Summary:         Summarize(messages),
		StartedAt:       started,
		EndedAt:         t.EndedAt,
		DurationSeconds: DurationSeconds(&started, t.EndedAt),
		Messages:        messages,
		CSAT:            CSATLabel(t.CSAT),
		Analyst:         t.Analyst,
	}, true
}
