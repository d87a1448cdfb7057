package language

import "github.com/foxseedlab/tsuyaku/internal/dialogue"

// Attribute maps a detected language onto the configured pair and returns who
// spoke and which language the utterance should be translated into.
func Attribute(detected, lang1, lang2 string) (dialogue.Speaker, string) {
	switch detected {
	case lang1:
		return dialogue.Speaker1, lang2
	case lang2:
		return dialogue.Speaker2, lang1
	}
	if prefix(detected) == prefix(lang1) {
		return dialogue.Speaker1, lang2
	}
	return dialogue.Speaker2, lang1
}

func prefix(code string) string {
	if len(code) < 2 {
		return code
	}
	return code[:2]
}
