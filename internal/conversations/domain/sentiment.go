package domain

import (
	"math"
	"strings"
)

type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNeutral  Sentiment = "neutral"
	SentimentNegative Sentiment = "negative"
)

type Intensity string

const (
	IntensityLow    Intensity = "baixa"
	IntensityMedium Intensity = "média"
	IntensityHigh   Intensity = "alta"
)

// SentimentResult scores the lead's side of a conversation.
// Score ranges from -100 to 100.
type SentimentResult struct {
	Sentiment Sentiment `json:"sentiment"`
	Score     int       `json:"score"`
	Intensity Intensity `json:"intensity"`
}

var sentimentWeights = map[string]int{
	"excelente": 3, "maravilhoso": 3, "perfeito": 3, "incrível": 3, "amei": 3, "adorei": 3,
	"ótimo": 2, "bom": 2, "gostei": 2, "interessado": 2, "quero": 2, "legal": 2, "bacana": 2, "boa": 2,
	"sim": 1, "obrigado": 1, "ok": 1, "certo": 1, "entendi": 1, "beleza": 1,

	"péssimo": -3, "horrível": -3, "impossível": -3, "desisto": -3, "nunca": -3, "terrível": -3,
	"ruim": -2, "problema": -2, "difícil": -2, "caro": -2, "complicado": -2, "confuso": -2,
	"não": -1, "desculpa": -1, "mas": -1, "porém": -1,
}

// AnalyzeSentiment sums weighted keyword occurrences over the lead's
// messages and normalizes by the number of those messages.
func AnalyzeSentiment(messages []Message) SentimentResult {
	total, count := 0, 0
	for _, m := range messages {
		if m.Role != RoleUser {
			continue
		}
		count++
		content := strings.ToLower(m.Content)
		for word, weight := range sentimentWeights {
			total += strings.Count(content, word) * weight
		}
	}
	if count == 0 {
		return SentimentResult{Sentiment: SentimentNeutral, Intensity: IntensityLow}
	}

	normalized := float64(total) / float64(count)
	result := SentimentResult{
		Score:     clamp(roundHalfUp(normalized*20), -100, 100),
		Sentiment: SentimentNeutral,
		Intensity: IntensityHigh,
	}
	switch {
	case normalized > 1:
		result.Sentiment = SentimentPositive
	case normalized < -1:
		result.Sentiment = SentimentNegative
	}
	switch {
	case count <= 2:
		result.Intensity = IntensityLow
	case count <= 5:
		result.Intensity = IntensityMedium
	}
	return result
}

// roundHalfUp rounds .5 toward positive infinity.
func roundHalfUp(v float64) int {
	return int(math.Floor(v + 0.5))
}

func clamp(v, lo, hi int) int {
	return max(lo, min(hi, v))
}
