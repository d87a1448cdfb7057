package language

import "strings"

const DefaultCode = "en"

var recognitionLocales = map[string]string{
	"ru": "ru-RU",
	"en": "en-US",
	"es": "es-ES",
	"fr": "fr-FR",
	"de": "de-DE",
}

// Slot is one side of the configured language pair.
type Slot struct {
	Code   string
	Locale string
}

// NewSlot resolves the recognition locale for code. An explicit locale wins
// over the built-in table; unknown codes fall back to English.
func NewSlot(code, locale string) Slot {
	code = strings.ToLower(strings.TrimSpace(code))
	if locale = strings.TrimSpace(locale); locale != "" {
		return Slot{Code: code, Locale: locale}
	}
	if l, ok := recognitionLocales[code]; ok {
		return Slot{Code: code, Locale: l}
	}
	return Slot{Code: DefaultCode, Locale: recognitionLocales[DefaultCode]}
}

func IsSupported(code string) bool {
	_, ok := recognitionLocales[code]
	return ok
}

func Supported() []string {
	return []string{"ru", "en", "es", "fr", "de"}
}
