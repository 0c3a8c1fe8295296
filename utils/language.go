package utils

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Language is the conversation language detected from the user's message.
type Language string

const (
	LanguageHebrew  Language = "he"
	LanguageEnglish Language = "en"
)

// DetectLanguage classifies text as Hebrew or English based on script.
// Any character in the Hebrew range wins; everything else falls back to
// English, which also covers digits-only answers.
func DetectLanguage(text string) Language {
	for _, r := range text {
		if unicode.Is(unicode.Hebrew, r) {
			return LanguageHebrew
		}
	}
	return LanguageEnglish
}

var foldTransformer = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Fold lowercases text and strips diacritics (including Hebrew niqqud) so
// enumerated values match regardless of accents or pointing.
func Fold(text string) string {
	folded, _, err := transform.String(foldTransformer, text)
	if err != nil {
		folded = text
	}
	return strings.ToLower(strings.TrimSpace(folded))
}

// DigitsOnly strips everything but ASCII digits, tolerating separators like
// spaces and hyphens in ID numbers.
func DigitsOnly(text string) string {
	var b strings.Builder
	for _, r := range text {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
