package language

import (
	"strings"
	"unicode"
)

var englishStopWords = []string{"the", "and", "you", "that", "was", "for", "are", "with", "this", "have", "hello"}

const (
	spanishChars = "áéíóúñ"
	frenchChars  = "àâäçéèêëîïôöùûüÿ"
	germanChars  = "äöüß"
)

// Detect guesses the language of text from character sets and English stop
// words. Rules are checked in a fixed order and the first hit wins, so mixed
// text can be misclassified.
func Detect(text string) (string, bool) {
	lower := strings.ToLower(text)
	switch {
	case containsCyrillic(lower):
		return "ru", true
	case containsAnyWord(lower, englishStopWords):
		return "en", true
	case strings.ContainsAny(lower, spanishChars):
		return "es", true
	case strings.ContainsAny(lower, frenchChars):
		return "fr", true
	case strings.ContainsAny(lower, germanChars):
		return "de", true
	}
	return "", false
}

func containsCyrillic(s string) bool {
	for _, r := range s {
		if unicode.Is(unicode.Cyrillic, r) {
			return true
		}
	}
	return false
}

func containsAnyWord(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
