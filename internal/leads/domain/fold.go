package domain

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// canonical lowercases and trims a raw tag.
func canonical(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

// Fold lowercases, trims and strips combining marks so that
// "Qualificação" and "qualificacao" compare equal.
func Fold(value string) string {
	lowered := canonical(value)
	if isASCII(lowered) {
		return lowered
	}
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, lowered)
	if err != nil {
		return lowered
	}
	return folded
}

func isASCII(value string) bool {
	for i := 0; i < len(value); i++ {
		if value[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}
