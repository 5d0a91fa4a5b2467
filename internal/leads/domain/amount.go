package domain

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

var amountNoise = regexp.MustCompile(`[^0-9,.\-]`)

// ParseAmount converts a currency string into a number. It accepts
// Brazilian ("R$ 1.234,56") and plain ("1234.56") notation. Dots that only
// ever precede groups of exactly three digits are thousands separators, so
// "1.601" is 1601. Anything unparseable is 0.
func ParseAmount(raw string) float64 {
	cleaned := amountNoise.ReplaceAllString(raw, "")
	if cleaned == "" {
		return 0
	}

	if idx := strings.LastIndex(cleaned, ","); idx >= 0 {
		whole := strings.NewReplacer(".", "", ",", "").Replace(cleaned[:idx])
		cleaned = whole + "." + cleaned[idx+1:]
	} else if isThousandsGrouped(cleaned) {
		cleaned = strings.ReplaceAll(cleaned, ".", "")
	}

	value, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || math.IsNaN(value) || math.IsInf(value, 0) {
		return 0
	}
	return value
}

func isThousandsGrouped(value string) bool {
	parts := strings.Split(value, ".")
	if len(parts) < 2 {
		return false
	}
	for _, group := range parts[1:] {
		if len(group) != 3 {
			return false
		}
	}
	return true
}
