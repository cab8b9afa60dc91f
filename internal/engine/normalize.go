package engine

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Normalize canonicalizes answer text for comparison: lowercase, trim
// surrounding whitespace, then NFD-decompose and strip combining diacritical
// marks, so "Più " and "piu" compare equal.
func Normalize(text string) string {
	lowered := strings.ToLower(strings.TrimSpace(text))
	decomposed := norm.NFD.String(lowered)

	var b strings.Builder
	b.Grow(len(decomposed))
	for _, r := range decomposed {
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// ValidateAnswer reports whether the typed input matches the canonical answer
// after normalization. There is no partial credit; two strings that both
// normalize to empty are considered equal.
func ValidateAnswer(userInput, correctAnswer string) bool {
	return Normalize(userInput) == Normalize(correctAnswer)
}
